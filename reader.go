package simdcsv

import "io"

// ReaderOptions configures Reader, ZeroCopyReader and ReverseReader
// construction. The zero value is not directly usable; use
// DefaultReaderOptions as a starting point.
type ReaderOptions struct {
	// Delimiter is the field separator byte. Default ','.
	Delimiter byte
	// Quote is the quoting byte. Default '"'.
	Quote byte
	// BufferCapacity, if non-zero, sizes the streaming window. Default
	// (zero) uses bufio's own default size. Values below 16 give a
	// 16-byte window, bufio's minimum.
	BufferCapacity int
	// Flexible disables the field-count-matches-headers check. Default
	// false.
	Flexible bool
	// HasHeaders treats the first record as a header record, excluded
	// from the regular read sequence and exposed via ByteHeaders
	// instead. Default true.
	HasHeaders bool
	// SkipBOM strips a leading UTF-8 byte order mark before reading.
	// Default true.
	SkipBOM bool
	// Comment, if non-nil, marks a byte that, as the first byte of a
	// record, causes that record to be skipped through the next '\n'
	// with no field data produced. Unset by default.
	Comment *byte
	// MaxInputSize caps how many bytes may be consumed from r before
	// reads start failing with ErrInputTooLarge. 0 uses
	// DefaultMaxInputSize; a negative value disables the limit.
	MaxInputSize int64
}

// DefaultReaderOptions returns the conventional comma/double-quote CSV
// configuration, with headers and BOM-stripping enabled.
func DefaultReaderOptions() ReaderOptions {
	return ReaderOptions{
		Delimiter:  ',',
		Quote:      '"',
		HasHeaders: true,
		SkipBOM:    true,
	}
}

func (o ReaderOptions) newBuffer(r io.Reader) *scratchBuffer {
	if o.BufferCapacity > 0 {
		return newScratchBufferSize(o.BufferCapacity, r)
	}
	return newScratchBuffer(r)
}

// newCoreReaderFor builds a coreReader and applies an optional comment
// byte, shared by every constructor in this file.
func newCoreReaderFor(delimiter, quote byte, comment *byte) *coreReader {
	c := newCoreReader(delimiter, quote)
	if comment != nil {
		c.setComment(*comment)
	}
	return c
}

// fieldPosition records where a field begins, for FieldPos: line is the
// 1-indexed number of the record among those parsed so far, and column
// is 1 plus the field's absolute byte offset in the stream.
type fieldPosition struct {
	line   int
	column int
}

// Reader streams owned ByteRecord values out of r, enforcing (unless
// Flexible) that every record has the same number of fields as the
// header/first record.
type Reader struct {
	buffer *scratchBuffer
	inner  *coreReader

	headers *ByteRecord

	flexible          bool
	hasRead           bool
	mustReemitHeaders bool
	skipBOM           bool
	index             uint64
	maxInputSize      int64

	lineNumber     int
	fieldPositions []fieldPosition
}

// NewReader returns a Reader using DefaultReaderOptions.
func NewReader(r io.Reader) *Reader {
	return NewReaderWithOptions(r, DefaultReaderOptions())
}

// NewReaderWithOptions returns a Reader configured by opts.
func NewReaderWithOptions(r io.Reader, opts ReaderOptions) *Reader {
	return &Reader{
		buffer:            opts.newBuffer(r),
		inner:             newCoreReaderFor(opts.Delimiter, opts.Quote, opts.Comment),
		headers:           NewByteRecord(),
		flexible:          opts.Flexible,
		mustReemitHeaders: !opts.HasHeaders,
		skipBOM:           opts.SkipBOM,
		maxInputSize:      resolveMaxInputSize(opts.MaxInputSize),
	}
}

func (r *Reader) onFirstRead() error {
	if r.hasRead {
		return nil
	}

	if r.skipBOM {
		input, err := r.buffer.fillBuf()
		if err != nil {
			return err
		}
		r.buffer.consume(trimBOM(input))
	}

	record, err := r.readByteRecordImpl()
	if err != nil {
		return err
	}
	if record != nil {
		r.headers = record
	} else {
		r.mustReemitHeaders = false
	}

	r.hasRead = true
	return nil
}

// ByteHeaders returns the header record (empty if HasHeaders was false
// and the input was empty).
func (r *Reader) ByteHeaders() (*ByteRecord, error) {
	if err := r.onFirstRead(); err != nil {
		return nil, err
	}
	return r.headers, nil
}

func (r *Reader) checkFieldCount(pos int64, written int) error {
	if r.flexible {
		return nil
	}

	headersLen := r.headers.Len()

	if r.hasRead && written != headersLen {
		return UnequalLengthsError(headersLen, written, uint64(pos), r.index, true)
	}
	return nil
}

func (r *Reader) readByteRecordImpl() (*ByteRecord, error) {
	record := NewByteRecord()
	rb := wrapByteRecordBuilder(record)

	r.buffer.reset()
	pos := r.buffer.position()

	for {
		input, err := r.buffer.fillBuf()
		if err != nil {
			return nil, newIOError(err)
		}

		if r.maxInputSize >= 0 && r.buffer.position()+int64(len(input)) > r.maxInputSize {
			return nil, ErrInputTooLarge
		}

		result, n := r.inner.readRecord(input, rb)

		switch result {
		case readEnd:
			r.buffer.consume(n)
			return nil, nil
		case readSkip:
			r.buffer.consume(n)
		case readInputEmpty:
			r.buffer.save()
		case readRecord:
			r.buffer.consume(n)
			r.index++
			if err := r.checkFieldCount(pos, record.Len()); err != nil {
				return nil, err
			}
			r.recordFieldPositions(pos, record)
			return record, nil
		}
	}
}

// recordFieldPositions snapshots where each field of the just-parsed
// record begins, for FieldPos. recordStart is the absolute stream offset
// the record's first byte was read from.
func (r *Reader) recordFieldPositions(recordStart int64, record *ByteRecord) {
	r.lineNumber++

	n := record.Len()
	if cap(r.fieldPositions) >= n {
		r.fieldPositions = r.fieldPositions[:n]
	} else {
		r.fieldPositions = make([]fieldPosition, n)
	}

	for i := 0; i < n; i++ {
		start, _ := record.fieldBounds(i)
		r.fieldPositions[i] = fieldPosition{line: r.lineNumber, column: int(recordStart) + start + 1}
	}
}

// FieldPos reports where the field at the given index begins within the
// most recently parsed record. line is the 1-indexed record number (one
// per parsed record, not a count of physical lines, so quoted newlines
// and skipped blank or comment lines do not advance it). column is
// 1-indexed and counts bytes from the start of the stream, not from the
// start of the line: it is the offset at which reading of the record
// began plus the field's start within the record's decoded data, so
// quote bytes removed while decoding earlier fields are not counted.
// Panics if the index is out of range.
func (r *Reader) FieldPos(field int) (line, column int) {
	if field < 0 || field >= len(r.fieldPositions) {
		panic("out of range index passed to FieldPos")
	}
	p := r.fieldPositions[field]
	return p.line, p.column
}

// InputOffset returns the byte offset of the end of the most recently
// read row.
func (r *Reader) InputOffset() int64 {
	return r.buffer.position()
}

// ReadByteRecord reads the next record, or returns (nil, nil) at EOF.
func (r *Reader) ReadByteRecord() (*ByteRecord, error) {
	if err := r.onFirstRead(); err != nil {
		return nil, err
	}

	if r.mustReemitHeaders {
		r.mustReemitHeaders = false
		return r.headers, nil
	}

	return r.readByteRecordImpl()
}

// ReadAll reads every remaining record into a slice.
func (r *Reader) ReadAll() ([]*ByteRecord, error) {
	var out []*ByteRecord
	for {
		rec, err := r.ReadByteRecord()
		if err != nil {
			return out, err
		}
		if rec == nil {
			return out, nil
		}
		out = append(out, rec)
	}
}

// Records returns an iterator (range-over-func, Go 1.23+) over the
// remaining records. Iteration stops early, without error, on the first
// read failure; use ReadByteRecord directly when errors must be
// observed.
func (r *Reader) Records() func(yield func(*ByteRecord) bool) {
	return func(yield func(*ByteRecord) bool) {
		for {
			rec, err := r.ReadByteRecord()
			if err != nil || rec == nil {
				return
			}
			if !yield(rec) {
				return
			}
		}
	}
}

// ZeroCopyReader streams borrowed ZeroCopyByteRecord views out of r. Each
// returned record is only valid until the next read call.
type ZeroCopyReader struct {
	buffer *scratchBuffer
	inner  *coreReader

	byteHeaders      *ByteRecord
	rawHeaderSeps    []int
	rawHeaderSlice   []byte
	seps             []int
	quote            byte

	flexible          bool
	hasRead           bool
	mustReemitHeaders bool
	skipBOM           bool
	index             uint64
	maxInputSize      int64
}

// NewZeroCopyReader returns a ZeroCopyReader using DefaultReaderOptions.
func NewZeroCopyReader(r io.Reader) *ZeroCopyReader {
	return NewZeroCopyReaderWithOptions(r, DefaultReaderOptions())
}

// NewZeroCopyReaderWithOptions returns a ZeroCopyReader configured by
// opts.
func NewZeroCopyReaderWithOptions(r io.Reader, opts ReaderOptions) *ZeroCopyReader {
	return &ZeroCopyReader{
		buffer:            opts.newBuffer(r),
		inner:             newCoreReaderFor(opts.Delimiter, opts.Quote, opts.Comment),
		byteHeaders:       NewByteRecord(),
		quote:             opts.Quote,
		maxInputSize:      resolveMaxInputSize(opts.MaxInputSize),
		flexible:          opts.Flexible,
		mustReemitHeaders: !opts.HasHeaders,
		skipBOM:           opts.SkipBOM,
	}
}

func (r *ZeroCopyReader) onFirstRead() error {
	if r.hasRead {
		return nil
	}

	if r.skipBOM {
		input, err := r.buffer.fillBuf()
		if err != nil {
			return err
		}
		r.buffer.consume(trimBOM(input))
	}

	record, err := r.readByteRecordImpl()
	if err != nil {
		return err
	}
	if record != nil {
		r.rawHeaderSeps, r.rawHeaderSlice = record.Parts()
		r.byteHeaders = record.ToByteRecord()
	} else {
		r.mustReemitHeaders = false
	}

	r.hasRead = true
	return nil
}

// ByteHeaders returns the header record.
func (r *ZeroCopyReader) ByteHeaders() (*ByteRecord, error) {
	if err := r.onFirstRead(); err != nil {
		return nil, err
	}
	return r.byteHeaders, nil
}

// Position returns the total number of bytes consumed from the
// underlying stream so far.
func (r *ZeroCopyReader) Position() int64 {
	return r.buffer.position()
}

func (r *ZeroCopyReader) checkFieldCount(pos int64, written int) error {
	if r.flexible {
		return nil
	}

	headersLen := len(r.rawHeaderSeps) + 1

	if r.hasRead && written != headersLen {
		return UnequalLengthsError(headersLen, written, uint64(pos), r.index, true)
	}
	return nil
}

func (r *ZeroCopyReader) readByteRecordImpl() (*ZeroCopyByteRecord, error) {
	r.buffer.reset()
	r.seps = r.seps[:0]

	pos := r.buffer.position()

	for {
		sepsOffset := len(r.buffer.saved())
		input, err := r.buffer.fillBuf()
		if err != nil {
			return nil, newIOError(err)
		}

		if r.maxInputSize >= 0 && r.buffer.position()+int64(len(input)) > r.maxInputSize {
			return nil, ErrInputTooLarge
		}

		result, n := r.inner.splitRecordAndFindSeparators(input, sepsOffset, &r.seps)

		switch result {
		case readEnd:
			r.buffer.consume(n)
			return nil, nil
		case readSkip:
			r.buffer.consume(n)
		case readInputEmpty:
			r.buffer.save()
		case readRecord:
			r.index++
			if err := r.checkFieldCount(pos, len(r.seps)+1); err != nil {
				return nil, err
			}
			rec := newZeroCopyByteRecord(r.buffer.flush(n), r.seps, r.quote)
			return &rec, nil
		}
	}
}

// ReadByteRecord reads the next record, or returns (nil, nil) at EOF. The
// returned record is only valid until the next call to ReadByteRecord.
func (r *ZeroCopyReader) ReadByteRecord() (*ZeroCopyByteRecord, error) {
	if err := r.onFirstRead(); err != nil {
		return nil, err
	}

	if r.mustReemitHeaders {
		r.mustReemitHeaders = false
		rec := newZeroCopyByteRecord(r.rawHeaderSlice, r.rawHeaderSeps, r.quote)
		return &rec, nil
	}

	return r.readByteRecordImpl()
}

// SplitterOptions configures Splitter construction.
type SplitterOptions struct {
	Delimiter      byte
	Quote          byte
	BufferCapacity int
	HasHeaders     bool
	SkipBOM        bool
	// Comment, if non-nil, marks a byte that, as the first byte of a
	// record, causes that record to be skipped through the next '\n'.
	Comment *byte
}

// DefaultSplitterOptions mirrors DefaultReaderOptions.
func DefaultSplitterOptions() SplitterOptions {
	return SplitterOptions{Delimiter: ',', Quote: '"', HasHeaders: true, SkipBOM: true}
}

// Splitter streams raw, whole, still-quoted-and-escaped record slices
// without imposing a field-count check — the narrowest and cheapest
// streaming reader in this package, useful for record counting or
// passing whole rows through unexamined.
type Splitter struct {
	buffer *scratchBuffer
	inner  *coreReader

	headers           []byte
	hasRead           bool
	hasHeaders        bool
	mustReemitHeaders bool
	skipBOM           bool
}

// NewSplitter returns a Splitter using DefaultSplitterOptions.
func NewSplitter(r io.Reader) *Splitter {
	return NewSplitterWithOptions(r, DefaultSplitterOptions())
}

// NewSplitterWithOptions returns a Splitter configured by opts.
func NewSplitterWithOptions(r io.Reader, opts SplitterOptions) *Splitter {
	buf := newScratchBuffer(r)
	if opts.BufferCapacity > 0 {
		buf = newScratchBufferSize(opts.BufferCapacity, r)
	}
	return &Splitter{
		buffer:            buf,
		inner:             newCoreReaderFor(opts.Delimiter, opts.Quote, opts.Comment),
		hasHeaders:        opts.HasHeaders,
		mustReemitHeaders: !opts.HasHeaders,
		skipBOM:           opts.SkipBOM,
	}
}

// HasHeaders reports whether the first record is treated as a header.
func (s *Splitter) HasHeaders() bool { return s.hasHeaders }

func (s *Splitter) onFirstRead() error {
	if s.hasRead {
		return nil
	}

	if s.skipBOM {
		input, err := s.buffer.fillBuf()
		if err != nil {
			return err
		}
		s.buffer.consume(trimBOM(input))
	}

	record, err := s.splitRecordImpl()
	if err != nil {
		return err
	}
	if record != nil {
		s.headers = append([]byte(nil), record...)
	} else {
		s.mustReemitHeaders = false
	}

	s.hasRead = true
	return nil
}

// ByteHeaders returns the raw header bytes (quotes/escaping intact).
func (s *Splitter) ByteHeaders() ([]byte, error) {
	if err := s.onFirstRead(); err != nil {
		return nil, err
	}
	return s.headers, nil
}

// CountRecords counts the remaining records (including a header, if any,
// that has not already been consumed).
func (s *Splitter) CountRecords() (uint64, error) {
	if err := s.onFirstRead(); err != nil {
		return 0, err
	}
	s.buffer.reset()

	var count uint64
	if s.mustReemitHeaders {
		count++
		s.mustReemitHeaders = false
	}

	for {
		input, err := s.buffer.fillBuf()
		if err != nil {
			return count, newIOError(err)
		}

		result, n := s.inner.splitRecord(input)
		s.buffer.consume(n)

		switch result {
		case readEnd:
			return count, nil
		case readInputEmpty, readSkip:
			continue
		case readRecord:
			count++
		}
	}
}

func (s *Splitter) splitRecordImpl() ([]byte, error) {
	s.buffer.reset()

	for {
		input, err := s.buffer.fillBuf()
		if err != nil {
			return nil, newIOError(err)
		}

		result, n := s.inner.splitRecord(input)

		switch result {
		case readEnd:
			s.buffer.consume(n)
			return nil, nil
		case readSkip:
			s.buffer.consume(n)
		case readInputEmpty:
			s.buffer.save()
		case readRecord:
			return trimTrailingCRLF(s.buffer.flush(n)), nil
		}
	}
}

// SplitRecord returns the next raw record slice, or (nil, nil) at EOF.
// The returned slice is only valid until the next read call.
func (s *Splitter) SplitRecord() ([]byte, error) {
	if err := s.onFirstRead(); err != nil {
		return nil, err
	}

	if s.mustReemitHeaders {
		s.mustReemitHeaders = false
		return s.headers, nil
	}

	return s.splitRecordImpl()
}

// position returns how far into the stream the next record to be
// returned starts, or 0 while a header record is still pending reemission
// (matching the convention that a not-yet-emitted header is considered to
// start the stream).
func (s *Splitter) position() int64 {
	if s.mustReemitHeaders {
		return 0
	}
	return s.buffer.position()
}

// SplitRecordWithPosition returns the next raw record slice together
// with the absolute byte offset it starts at, for callers building their
// own record-index structures.
func (s *Splitter) SplitRecordWithPosition() (int64, []byte, error) {
	if err := s.onFirstRead(); err != nil {
		return 0, nil, err
	}

	pos := s.position()

	if s.mustReemitHeaders {
		s.mustReemitHeaders = false
		return pos, s.headers, nil
	}

	record, err := s.splitRecordImpl()
	if err != nil {
		return 0, nil, err
	}
	return pos, record, nil
}
