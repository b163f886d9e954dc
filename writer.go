package simdcsv

import (
	"bufio"
	"bytes"
	"io"

	"github.com/pierrec/lz4/v4"
)

// WriterOptions configures Writer construction.
type WriterOptions struct {
	// Delimiter is the field separator byte. Default ','.
	Delimiter byte
	// Quote is the quoting byte. Default '"'.
	Quote byte
	// BufferCapacity, if non-zero, sizes the output buffer. Default
	// (zero) uses bufio's own default size.
	BufferCapacity int
	// Flexible disables the field-count-matches-first-record check.
	// Default false.
	Flexible bool
	// UseCRLF writes "\r\n" instead of "\n" as the record terminator.
	UseCRLF bool
	// CompressLZ4, if true, wraps the destination in an lz4.Writer so
	// records are compressed as they are written. This Writer's Flush
	// closes the lz4.Writer, which finalizes the lz4 frame; the original
	// io.Writer itself is never closed by this Writer.
	CompressLZ4 bool
}

// DefaultWriterOptions returns the conventional comma/double-quote CSV
// configuration.
func DefaultWriterOptions() WriterOptions {
	return WriterOptions{Delimiter: ',', Quote: '"'}
}

// quoteScanUnroll is the chunk width the scalar quote-decision scan
// unrolls over; fields shorter than this fall back to a plain
// byte-at-a-time loop, matching the quoteScanImpl's own short-input path.
const quoteScanUnroll = 8

// quoteScanFn decides whether field contains any byte marked in
// mustQuote. delimiter/quote are also passed through directly (alongside
// the table) since a vectorized implementation compares against actual
// byte values rather than indices into the table. Overridden by
// writer_avx512.go when vectorized compares are available.
type quoteScanFn func(field []byte, delimiter, quote byte, mustQuote *[256]bool) bool

var (
	quoteScanName              = "scalar"
	quoteScanImpl quoteScanFn = scalarQuoteScan
)

func scalarQuoteScan(field []byte, delimiter, quote byte, mustQuote *[256]bool) bool {
	n := len(field)
	if n < quoteScanUnroll {
		for _, b := range field {
			if mustQuote[b] {
				return true
			}
		}
		return false
	}

	i := 0
	for ; i+quoteScanUnroll <= n; i += quoteScanUnroll {
		if mustQuote[field[i]] || mustQuote[field[i+1]] || mustQuote[field[i+2]] || mustQuote[field[i+3]] ||
			mustQuote[field[i+4]] || mustQuote[field[i+5]] || mustQuote[field[i+6]] || mustQuote[field[i+7]] {
			return true
		}
	}
	for ; i < n; i++ {
		if mustQuote[field[i]] {
			return true
		}
	}
	return false
}

// Writer emits records as CSV, using a precomputed 256-entry lookup
// table ("must-quote" bytes: the configured delimiter, quote, CR and LF)
// to decide per field whether quoting is required. Unless Flexible, the
// field count of the first record written is recorded and enforced
// against every subsequent record.
type Writer struct {
	delimiter byte
	quote     byte
	flexible  bool
	useCRLF   bool

	mustQuote [256]bool

	lz *lz4.Writer
	w  *bufio.Writer

	fieldCount int
	hasWritten bool
	index      uint64
	err        error
}

// NewWriter returns a Writer using DefaultWriterOptions, writing to w.
func NewWriter(w io.Writer) *Writer {
	return NewWriterWithOptions(w, DefaultWriterOptions())
}

// NewWriterWithOptions returns a Writer configured by opts, writing to w.
func NewWriterWithOptions(w io.Writer, opts WriterOptions) *Writer {
	wr := &Writer{
		delimiter: opts.Delimiter,
		quote:     opts.Quote,
		flexible:  opts.Flexible,
		useCRLF:   opts.UseCRLF,
	}

	dest := w
	if opts.CompressLZ4 {
		wr.lz = lz4.NewWriter(w)
		dest = wr.lz
	}

	if opts.BufferCapacity > 0 {
		wr.w = bufio.NewWriterSize(dest, opts.BufferCapacity)
	} else {
		wr.w = bufio.NewWriter(dest)
	}

	wr.mustQuote[opts.Delimiter] = true
	wr.mustQuote[opts.Quote] = true
	wr.mustQuote['\n'] = true
	wr.mustQuote['\r'] = true
	return wr
}

// Instructions reports which quote-decision scan is active ("scalar" or
// "avx512"), mirroring the package-level Instructions.
func (w *Writer) Instructions() string { return quoteScanName }

func (w *Writer) fieldNeedsQuote(field []byte) bool {
	if len(field) == 0 {
		return false
	}
	return quoteScanImpl(field, w.delimiter, w.quote, &w.mustQuote)
}

func (w *Writer) writeField(field []byte) error {
	if w.fieldNeedsQuote(field) {
		return w.writeQuotedField(field)
	}
	_, err := w.w.Write(field)
	return err
}

// writeQuotedField writes field wrapped in quote bytes, doubling every
// embedded quote byte as it goes.
func (w *Writer) writeQuotedField(field []byte) error {
	if err := w.w.WriteByte(w.quote); err != nil {
		return err
	}

	i := 0
	for i < len(field) {
		offset := bytes.IndexByte(field[i:], w.quote)
		if offset < 0 {
			if _, err := w.w.Write(field[i:]); err != nil {
				return err
			}
			break
		}
		if _, err := w.w.Write(field[i : i+offset+1]); err != nil {
			return err
		}
		if err := w.w.WriteByte(w.quote); err != nil {
			return err
		}
		i += offset + 1
	}

	return w.w.WriteByte(w.quote)
}

func (w *Writer) writeLineEnding() error {
	if w.useCRLF {
		_, err := w.w.WriteString("\r\n")
		return err
	}
	return w.w.WriteByte('\n')
}

func (w *Writer) checkFieldCount(n int) error {
	if w.flexible {
		return nil
	}
	if !w.hasWritten {
		w.fieldCount = n
		return nil
	}
	if n != w.fieldCount {
		return UnequalLengthsError(w.fieldCount, n, 0, w.index, false)
	}
	return nil
}

func (w *Writer) writeFields(fields [][]byte) error {
	if w.err != nil {
		return w.err
	}

	if err := w.checkFieldCount(len(fields)); err != nil {
		w.err = err
		return err
	}

	// A lone empty field would otherwise be indistinguishable from an
	// empty line on read-back, so it is emitted quoted.
	if len(fields) == 1 && len(fields[0]) == 0 {
		w.err = w.writeQuotedField(fields[0])
		if w.err == nil {
			w.err = w.writeLineEnding()
		}
		w.index++
		w.hasWritten = true
		return w.err
	}

	last := len(fields) - 1
	for i, field := range fields {
		if w.err = w.writeField(field); w.err != nil {
			return w.err
		}
		if i != last {
			if w.err = w.w.WriteByte(w.delimiter); w.err != nil {
				return w.err
			}
		}
	}

	w.err = w.writeLineEnding()
	w.index++
	w.hasWritten = true
	return w.err
}

// Write writes a single record, one string per field.
func (w *Writer) Write(record []string) error {
	fields := make([][]byte, len(record))
	for i, f := range record {
		fields[i] = []byte(f)
	}
	return w.writeFields(fields)
}

// WriteByteRecord writes an owned ByteRecord.
func (w *Writer) WriteByteRecord(record *ByteRecord) error {
	return w.writeFields(record.Fields())
}

// WriteZeroCopyByteRecord writes a borrowed ZeroCopyByteRecord's raw
// (already-escaped) fields back out unescaped and freshly decided for
// quoting, rather than passing its on-wire bytes through verbatim.
func (w *Writer) WriteZeroCopyByteRecord(record *ZeroCopyByteRecord) error {
	n := record.Len()
	fields := make([][]byte, n)
	for i := 0; i < n; i++ {
		fields[i], _ = record.Unescape(i)
	}
	return w.writeFields(fields)
}

// WriteAll writes every record via Write and then flushes.
func (w *Writer) WriteAll(records [][]string) error {
	for _, record := range records {
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return w.Flush()
}

// Flush writes any buffered data to the underlying io.Writer.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	if w.err = w.w.Flush(); w.err != nil {
		return w.err
	}
	if w.lz != nil {
		w.err = w.lz.Close()
	}
	return w.err
}

// Error reports any error encountered by a previous Write or Flush.
func (w *Writer) Error() error { return w.err }
