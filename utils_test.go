package simdcsv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrimTrailingCRLF(t *testing.T) {
	assert.Equal(t, "a,b", string(trimTrailingCRLF([]byte("a,b\r\n"))))
	assert.Equal(t, "a,b", string(trimTrailingCRLF([]byte("a,b\n"))))
	assert.Equal(t, "a,b", string(trimTrailingCRLF([]byte("a,b"))))
}

func TestTrimTrailingCR(t *testing.T) {
	assert.Equal(t, "a,b", string(trimTrailingCR([]byte("a,b\r"))))
	assert.Equal(t, "a,b", string(trimTrailingCR([]byte("a,b"))))
}

func TestTrimBOM(t *testing.T) {
	assert.Equal(t, 3, trimBOM([]byte("\xEF\xBB\xBFabc")))
	assert.Equal(t, 0, trimBOM([]byte("abc")))
	assert.Equal(t, 0, trimBOM([]byte("\xEF\xBB")))
}

func TestUnquoted(t *testing.T) {
	inner, ok := unquoted([]byte(`"hello"`), '"')
	assert.True(t, ok)
	assert.Equal(t, "hello", string(inner))

	_, ok = unquoted([]byte("hello"), '"')
	assert.False(t, ok)

	_, ok = unquoted([]byte(`"`), '"')
	assert.False(t, ok)
}

func TestUnescape(t *testing.T) {
	assert.Equal(t, `he said "hi"`, string(unescape([]byte(`he said ""hi""`), '"')))
	assert.Equal(t, "plain", string(unescape([]byte("plain"), '"')))
}

func TestUnescapeTo(t *testing.T) {
	out := unescapeTo([]byte(`a""b`), '"', []byte("prefix-"))
	assert.Equal(t, `prefix-a"b`, string(out))
}
