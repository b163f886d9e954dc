package simdcsv

import (
	"bytes"
	"testing"

	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestWriter_WriteByteRecord ports original_source/src/writer.rs's own
// test_write_byte_record fixture.
func TestWriter_WriteByteRecord(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	require.NoError(t, w.WriteByteRecord(NewByteRecordFromStrings("city", "country", "pop")))
	require.NoError(t, w.WriteByteRecord(NewByteRecordFromStrings("Boston", "United States", "4628910")))
	require.NoError(t, w.Flush())

	want := "city,country,pop\nBoston,United States,4628910\n"
	assert.Equal(t, want, buf.String())
}

func TestWriter_QuotesFieldsContainingDelimiter(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	require.NoError(t, w.Write([]string{"a,b", "c"}))
	require.NoError(t, w.Flush())

	assert.Equal(t, "\"a,b\",c\n", buf.String())
}

func TestWriter_DoublesEmbeddedQuotes(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	require.NoError(t, w.Write([]string{`he said "hi"`}))
	require.NoError(t, w.Flush())

	assert.Equal(t, "\"he said \"\"hi\"\"\"\n", buf.String())
}

func TestWriter_QuotesFieldsContainingNewline(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	require.NoError(t, w.Write([]string{"line1\nline2"}))
	require.NoError(t, w.Flush())

	assert.Equal(t, "\"line1\nline2\"\n", buf.String())
}

func TestWriter_UseCRLF(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultWriterOptions()
	opts.UseCRLF = true
	w := NewWriterWithOptions(&buf, opts)

	require.NoError(t, w.Write([]string{"a", "b"}))
	require.NoError(t, w.Flush())

	assert.Equal(t, "a,b\r\n", buf.String())
}

// TestWriter_EmptySingleFieldQuoted is a spec-only supplement with no
// Rust precedent: a lone empty field would otherwise read back
// indistinguishable from a blank line.
func TestWriter_EmptySingleFieldQuoted(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	require.NoError(t, w.Write([]string{""}))
	require.NoError(t, w.Flush())

	assert.Equal(t, "\"\"\n", buf.String())
}

// TestWriter_EmptySingleFieldThenMismatchIsCaught guards against a
// regression where writing a lone empty field first left hasWritten
// false, silently disabling field-count enforcement for the rest of the
// stream.
func TestWriter_EmptySingleFieldThenMismatchIsCaught(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	require.NoError(t, w.Write([]string{""}))

	err := w.Write([]string{"a", "b"})
	require.Error(t, err)

	var csvErr *Error
	require.ErrorAs(t, err, &csvErr)
	assert.Equal(t, KindUnequalLengths, csvErr.Kind)
}

func TestWriter_RigidFieldCountMismatch(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	require.NoError(t, w.Write([]string{"a", "b"}))
	err := w.Write([]string{"c", "d", "e"})
	require.Error(t, err)

	var csvErr *Error
	require.ErrorAs(t, err, &csvErr)
	assert.Equal(t, KindUnequalLengths, csvErr.Kind)
	assert.Equal(t, err, w.Error())
}

func TestWriter_FlexibleAllowsFieldCountChange(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultWriterOptions()
	opts.Flexible = true
	w := NewWriterWithOptions(&buf, opts)

	require.NoError(t, w.Write([]string{"a", "b"}))
	require.NoError(t, w.Write([]string{"c", "d", "e"}))
	require.NoError(t, w.Flush())

	assert.Equal(t, "a,b\nc,d,e\n", buf.String())
}

func TestWriter_WriteAll(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	require.NoError(t, w.WriteAll([][]string{
		{"a", "b"},
		{"c", "d"},
	}))

	assert.Equal(t, "a,b\nc,d\n", buf.String())
}

// TestWriter_CompressLZ4RoundTripsThroughReader exercises the lz4 wiring
// end-to-end: records written with CompressLZ4 set are decompressed via
// an lz4 reader and come back out of Reader unchanged.
func TestWriter_CompressLZ4RoundTripsThroughReader(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultWriterOptions()
	opts.CompressLZ4 = true
	w := NewWriterWithOptions(&buf, opts)

	want := [][]string{
		{"name", "note"},
		{"alice", "said \"hi\", bye"},
		{"bob", "plain"},
	}
	require.NoError(t, w.WriteAll(want))

	lzr := lz4.NewReader(&buf)
	readerOpts := DefaultReaderOptions()
	readerOpts.HasHeaders = false
	r := NewReaderWithOptions(lzr, readerOpts)

	records, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, len(want))
	for i, rec := range want {
		assert.Equal(t, rec, fieldsAsStrings(records[i]))
	}
}

func TestWriter_RoundTripsThroughReader(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	require.NoError(t, w.WriteByteRecord(NewByteRecordFromStrings("name", "note")))
	require.NoError(t, w.WriteByteRecord(NewByteRecordFromStrings("alice", "said \"hi\", bye")))
	require.NoError(t, w.Flush())

	opts := DefaultReaderOptions()
	opts.HasHeaders = false
	r := NewReaderWithOptions(bytes.NewReader(buf.Bytes()), opts)
	records, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"alice", "said \"hi\", bye"}, fieldsAsStrings(records[1]))
}
