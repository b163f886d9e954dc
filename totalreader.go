package simdcsv

// TotalReaderOptions configures TotalReader construction.
type TotalReaderOptions struct {
	Delimiter  byte
	Quote      byte
	HasHeaders bool
	// Comment, if non-nil, marks a byte that, as the first byte of a
	// record, causes that record to be skipped through the next '\n'.
	Comment *byte
	// MaxInputSize caps how many bytes the backing slice may contain; the
	// whole slice is already resident, so this is checked once at
	// construction rather than incrementally. 0 uses DefaultMaxInputSize;
	// a negative value disables the limit.
	MaxInputSize int64
}

// DefaultTotalReaderOptions mirrors DefaultReaderOptions.
func DefaultTotalReaderOptions() TotalReaderOptions {
	return TotalReaderOptions{Delimiter: ',', Quote: '"', HasHeaders: true}
}

// TotalReader reads CSV records out of a byte slice already resident in
// memory (e.g. a memory-mapped file), with no buffering layer at all —
// the whole-input counterpart to the streaming Reader.
type TotalReader struct {
	inner *coreReader

	bytes []byte
	pos   int

	headers    *ByteRecord
	hasRead    bool
	hasHeaders bool
}

// NewTotalReader returns a TotalReader using DefaultTotalReaderOptions.
func NewTotalReader(bytes []byte) (*TotalReader, error) {
	return NewTotalReaderWithOptions(bytes, DefaultTotalReaderOptions())
}

// NewTotalReaderWithOptions returns a TotalReader configured by opts, or
// ErrInputTooLarge if bytes exceeds opts.MaxInputSize.
func NewTotalReaderWithOptions(bytes []byte, opts TotalReaderOptions) (*TotalReader, error) {
	maxInputSize := resolveMaxInputSize(opts.MaxInputSize)
	if maxInputSize >= 0 && int64(len(bytes)) > maxInputSize {
		return nil, ErrInputTooLarge
	}

	return &TotalReader{
		inner:      newCoreReaderFor(opts.Delimiter, opts.Quote, opts.Comment),
		bytes:      bytes,
		headers:    NewByteRecord(),
		hasHeaders: opts.HasHeaders,
	}, nil
}

func (r *TotalReader) onFirstRead() {
	if r.hasRead {
		return
	}

	bomLen := trimBOM(r.bytes)
	r.pos += bomLen

	headers := NewByteRecord()
	hasData := r.readByteRecordImpl(headers)

	if hasData && !r.hasHeaders {
		r.pos = bomLen
	}

	r.headers = headers
	r.hasRead = true
}

// ByteHeaders returns the header record.
func (r *TotalReader) ByteHeaders() *ByteRecord {
	r.onFirstRead()
	return r.headers
}

// CountRecords counts every record in the input, excluding the header
// row if HasHeaders is set.
func (r *TotalReader) CountRecords() uint64 {
	// With HasHeaders set, onFirstRead has already moved pos past the
	// header row, so it is not counted below.
	r.onFirstRead()

	var count uint64

	for {
		result, n := r.inner.splitRecord(r.bytes[r.pos:])
		r.pos += n

		switch result {
		case readEnd:
			return count
		case readInputEmpty, readSkip:
			continue
		case readRecord:
			count++
		}
	}
}

// SplitRecord returns the next raw record slice, or (nil, false) at EOF.
func (r *TotalReader) SplitRecord() ([]byte, bool) {
	r.onFirstRead()

	start := r.pos

	for {
		result, n := r.inner.splitRecord(r.bytes[r.pos:])
		r.pos += n

		switch result {
		case readEnd:
			return nil, false
		case readInputEmpty, readSkip:
			continue
		case readRecord:
			return r.bytes[start:r.pos], true
		}
	}
}

func (r *TotalReader) readByteRecordImpl(record *ByteRecord) bool {
	record.Clear()
	rb := wrapByteRecordBuilder(record)

	for {
		result, n := r.inner.readRecord(r.bytes[r.pos:], rb)
		r.pos += n

		switch result {
		case readEnd:
			return false
		case readInputEmpty, readSkip:
			continue
		case readRecord:
			return true
		}
	}
}

// ReadByteRecord reads the next record into record (clearing it first),
// returning false at EOF.
func (r *TotalReader) ReadByteRecord(record *ByteRecord) bool {
	r.onFirstRead()
	return r.readByteRecordImpl(record)
}

// ByteRecords returns an iterator (range-over-func) over every remaining
// record. Each yielded record is a fresh copy, safe to retain.
func (r *TotalReader) ByteRecords() func(yield func(*ByteRecord) bool) {
	return func(yield func(*ByteRecord) bool) {
		record := NewByteRecord()
		for r.ReadByteRecord(record) {
			cloned := NewByteRecordFromFields(record.Fields()...)
			if !yield(cloned) {
				return
			}
		}
	}
}
