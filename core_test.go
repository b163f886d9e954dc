package simdcsv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func readAllSplit(t *testing.T, input string) []string {
	t.Helper()

	c := newCoreReader(',', '"')
	data := []byte(input)
	pos := 0

	var out []string
	for {
		result, n := c.splitRecord(data[pos:])
		switch result {
		case readEnd:
			return out
		case readSkip, readInputEmpty:
			pos += n
			if result == readInputEmpty {
				return out
			}
		case readRecord:
			out = append(out, string(data[pos:pos+n]))
			pos += n
		}
	}
}

func TestCoreReader_SplitRecord(t *testing.T) {
	got := readAllSplit(t, "a,b,c\nd,e,f\n")
	assert.Equal(t, []string{"a,b,c\n", "d,e,f\n"}, got)
}

func TestCoreReader_SplitRecord_LeadingBlankLines(t *testing.T) {
	got := readAllSplit(t, "\n\na,b\n")
	assert.Equal(t, []string{"a,b\n"}, got)
}

func TestCoreReader_SplitRecord_QuotedNewline(t *testing.T) {
	got := readAllSplit(t, "a,\"b\nc\",d\ne,f,g\n")
	assert.Equal(t, []string{"a,\"b\nc\",d\n", "e,f,g\n"}, got)
}

func TestCoreReader_Comment(t *testing.T) {
	c := newCoreReader(',', '"')
	c.setComment('#')

	data := []byte("# this is a comment\na,b,c\n# another comment\nd,e,f\n")

	var records []string
	pos := 0
	for {
		result, n := c.splitRecord(data[pos:])
		switch result {
		case readEnd:
			assert.Equal(t, []string{"a,b,c\n", "d,e,f\n"}, records)
			return
		case readSkip, readInputEmpty:
			pos += n
			if result == readInputEmpty {
				t.Fatalf("unexpected input-empty before EOF")
			}
		case readRecord:
			records = append(records, string(data[pos:pos+n]))
			pos += n
		}
	}
}

func TestCoreReader_CommentSpansRefill(t *testing.T) {
	c := newCoreReader(',', '"')
	c.setComment('#')

	// Feed the comment line in two chunks, simulating a buffer refill
	// mid-comment, then the rest of the stream in the same second chunk.
	chunk1 := []byte("# long comment that keeps")
	chunk2 := []byte(" going across a refill\na,b\n")

	result, n := c.splitRecord(chunk1)
	assert.Equal(t, readInputEmpty, result)
	assert.Equal(t, len(chunk1), n)
	assert.True(t, c.inComment)

	result, n = c.splitRecord(chunk2)
	assert.Equal(t, readSkip, result)
	assert.False(t, c.inComment)
	remaining := chunk2[n:]

	result, n = c.splitRecord(remaining)
	assert.Equal(t, readRecord, result)
	assert.Equal(t, "a,b\n", string(remaining[:n]))
}

func TestCoreReader_ReadRecord_NoTrailingNewline(t *testing.T) {
	c := newCoreReader(',', '"')
	record := NewByteRecord()
	rb := wrapByteRecordBuilder(record)

	result, _ := c.readRecord([]byte("a,b,c"), rb)
	assert.Equal(t, readInputEmpty, result)

	result, _ = c.readRecord(nil, rb)
	assert.Equal(t, readRecord, result)
	assert.Equal(t, [][]byte{[]byte("a"), []byte("b"), []byte("c")}, record.Fields())
}

func TestCoreReader_ReadRecord_DoubledQuotes(t *testing.T) {
	c := newCoreReader(',', '"')
	record := NewByteRecord()
	rb := wrapByteRecordBuilder(record)

	result, _ := c.readRecord([]byte(`a,"he said ""hi""",c`+"\n"), rb)
	assert.Equal(t, readRecord, result)
	assert.Equal(t, [][]byte{[]byte("a"), []byte(`he said "hi"`), []byte("c")}, record.Fields())
}
