package simdcsv

import "io"

// reverseIOReader adapts a seekable source into an io.Reader that yields
// the source's bytes in reverse order: each Read call seeks backwards by
// the requested length, reads that many bytes, and reverses them in
// place before returning. Driving the ordinary core state machine over
// this adapter then produces records in reverse file order, each with
// its field sequence and field byte content also reversed — ReverseReader
// undoes that second reversal.
type reverseIOReader struct {
	input io.ReadSeeker

	// offset is the absolute position reads must not go past; ptr is the
	// absolute position the next read ends at (exclusive), counting down
	// towards offset.
	offset int64
	ptr    int64
}

// newReverseIOReader reads input backwards starting at filesize down to
// offset.
func newReverseIOReader(input io.ReadSeeker, filesize, offset int64) *reverseIOReader {
	return &reverseIOReader{input: input, offset: offset, ptr: filesize}
}

func (r *reverseIOReader) Read(buf []byte) (int, error) {
	want := int64(len(buf))

	if r.ptr == r.offset {
		return 0, io.EOF
	}

	if r.offset+want > r.ptr {
		remaining := r.ptr - r.offset

		if _, err := r.input.Seek(r.offset, io.SeekStart); err != nil {
			return 0, err
		}
		if _, err := io.ReadFull(r.input, buf[:remaining]); err != nil {
			return 0, err
		}
		reverseInPlace(buf[:remaining])

		r.ptr = r.offset
		return int(remaining), nil
	}

	newPos := r.ptr - want
	if _, err := r.input.Seek(newPos, io.SeekStart); err != nil {
		return 0, err
	}
	if _, err := io.ReadFull(r.input, buf); err != nil {
		return 0, err
	}
	reverseInPlace(buf)

	r.ptr = newPos
	return len(buf), nil
}

func reverseInPlace(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}

// ReverseReader streams owned ByteRecord values from the end of a
// seekable source towards its start, in exactly the reverse order
// Reader would produce reading forwards, in amortized linear time.
type ReverseReader struct {
	buffer *scratchBuffer
	inner  *coreReader
	index  uint64
}

// NewReverseReader reads input backwards, starting at filesize and
// stopping at offset (typically the position just past a header record,
// or 0), using opts for delimiter/quote/buffering configuration.
func NewReverseReader(input io.ReadSeeker, filesize, offset int64, opts ReaderOptions) *ReverseReader {
	rev := newReverseIOReader(input, filesize, offset)
	return &ReverseReader{
		buffer: opts.newBuffer(rev),
		inner:  newCoreReaderFor(opts.Delimiter, opts.Quote, opts.Comment),
	}
}

// ReadByteRecord reads the next record (in reverse file order), or
// returns (nil, nil) at the adapter's offset boundary.
func (r *ReverseReader) ReadByteRecord() (*ByteRecord, error) {
	record := NewByteRecord()
	rb := wrapByteRecordBuilder(record)

	r.buffer.reset()

	for {
		input, err := r.buffer.fillBuf()
		if err != nil {
			return nil, newIOError(err)
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
			record.Reverse()
			return record, nil
		}
	}
}

// ByteRecords returns an iterator (range-over-func) over every remaining
// record in reverse file order.
func (r *ReverseReader) ByteRecords() func(yield func(*ByteRecord) bool) {
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
