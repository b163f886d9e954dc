package simdcsv

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReverseReader_YieldsReverseOrder(t *testing.T) {
	input := "a,b\nc,d\ne,f\n"
	src := bytes.NewReader([]byte(input))

	opts := DefaultReaderOptions()
	opts.HasHeaders = false
	opts.SkipBOM = false

	rr := NewReverseReader(src, int64(len(input)), 0, opts)

	var got [][]string
	for rec := range rr.ByteRecords() {
		got = append(got, fieldsAsStrings(rec))
	}

	require.Equal(t, [][]string{
		{"e", "f"},
		{"c", "d"},
		{"a", "b"},
	}, got)
}

func TestReverseReader_StopsAtOffset(t *testing.T) {
	input := "name,age\nalice,30\nbob,40\n"
	src := bytes.NewReader([]byte(input))

	opts := DefaultReaderOptions()
	opts.HasHeaders = false
	opts.SkipBOM = false

	headerEnd := int64(len("name,age\n"))
	rr := NewReverseReader(src, int64(len(input)), headerEnd, opts)

	var got [][]string
	for rec := range rr.ByteRecords() {
		got = append(got, fieldsAsStrings(rec))
	}

	require.Equal(t, [][]string{
		{"bob", "40"},
		{"alice", "30"},
	}, got)
}
