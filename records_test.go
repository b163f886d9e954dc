package simdcsv

import (
	"testing"

	"github.com/go-test/deep"
	"github.com/stretchr/testify/assert"
)

func TestByteRecord_PushFieldAndGet(t *testing.T) {
	r := NewByteRecord()
	r.PushField([]byte("a"))
	r.PushField([]byte("bb"))
	r.PushField(nil)

	assert.Equal(t, 3, r.Len())

	f0, ok := r.Get(0)
	assert.True(t, ok)
	assert.Equal(t, "a", string(f0))

	f2, ok := r.Get(2)
	assert.True(t, ok)
	assert.Equal(t, "", string(f2))

	_, ok = r.Get(3)
	assert.False(t, ok)
}

func TestByteRecord_Equal(t *testing.T) {
	a := NewByteRecordFromStrings("x", "y")
	b := NewByteRecordFromStrings("x", "y")
	c := NewByteRecordFromStrings("x", "z")

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestByteRecord_Clear(t *testing.T) {
	r := NewByteRecordFromStrings("a", "b")
	r.Clear()
	assert.True(t, r.IsEmpty())
	assert.Equal(t, 0, r.Len())
}

func TestByteRecord_Reverse(t *testing.T) {
	r := NewByteRecordFromStrings("abc", "def", "g")
	r.Reverse()

	if diff := deep.Equal(r.Fields(), [][]byte{[]byte("g"), []byte("fed"), []byte("cba")}); diff != nil {
		t.Error(diff)
	}
}

func TestByteRecord_ReverseRoundTrip(t *testing.T) {
	original := NewByteRecordFromStrings("one", "two", "three")
	r := NewByteRecordFromStrings("one", "two", "three")
	r.Reverse()
	r.Reverse()

	assert.True(t, original.Equal(r))
}

func TestZeroCopyByteRecord_Fields(t *testing.T) {
	slice := []byte("a,b,c\n")
	rec := newZeroCopyByteRecord(slice, []int{1, 3}, '"')

	assert.Equal(t, 3, rec.Len())
	if diff := deep.Equal(rec.Fields(), [][]byte{[]byte("a"), []byte("b"), []byte("c")}); diff != nil {
		t.Error(diff)
	}
}

// TestZeroCopyByteRecord_RawQuotesPreserved mirrors the behavior observed
// in zero_copy_reader.rs's own fixtures: raw field access leaves quoting
// and escaping intact; only Unescape decodes it.
func TestZeroCopyByteRecord_RawQuotesPreserved(t *testing.T) {
	slice := []byte(`"john"` + "\n")
	rec := newZeroCopyByteRecord(slice, nil, '"')

	raw, ok := rec.Get(0)
	assert.True(t, ok)
	assert.Equal(t, `"john"`, string(raw))

	unescaped, ok := rec.Unescape(0)
	assert.True(t, ok)
	assert.Equal(t, "john", string(unescaped))
}

func TestZeroCopyByteRecord_UnescapeDoubledQuotes(t *testing.T) {
	slice := []byte(`"he said ""hi"""` + "\n")
	rec := newZeroCopyByteRecord(slice, nil, '"')

	unescaped, ok := rec.Unescape(0)
	assert.True(t, ok)
	assert.Equal(t, `he said "hi"`, string(unescaped))
}

func TestZeroCopyByteRecord_ToByteRecord(t *testing.T) {
	slice := []byte(`a,"b,c",d` + "\n")
	rec := newZeroCopyByteRecord(slice, []int{1, 7}, '"')

	owned := rec.ToByteRecord()
	if diff := deep.Equal(owned.Fields(), [][]byte{[]byte("a"), []byte("b,c"), []byte("d")}); diff != nil {
		t.Error(diff)
	}
}

func TestZeroCopyByteRecord_Parts(t *testing.T) {
	slice := []byte("a,b\n")
	rec := newZeroCopyByteRecord(slice, []int{1}, '"')

	seps, data := rec.Parts()
	assert.Equal(t, []int{1}, seps)
	assert.Equal(t, "a,b", string(data))

	// Mutating the returned copies must not affect rec's own state.
	seps[0] = 99
	data[0] = 'z'
	got, _ := rec.Get(0)
	assert.Equal(t, "a", string(got))
}
