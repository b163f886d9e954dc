package simdcsv

import (
	"bufio"
	"io"
)

// scratchBuffer is the streaming window every buffered reader in this
// package scans through. The fast path never copies: callers read
// directly out of the underlying bufio.Reader's internal buffer via
// fillBuf. When a record straddles two buffer windows, save copies the
// already-scanned remainder into scratch so the next fillBuf's bytes can
// be appended onto it instead of losing what came before.
type scratchBuffer struct {
	inner   *bufio.Reader
	scratch []byte

	nextConsume    int
	hasNextConsume bool

	// pos counts total bytes ever consumed/discarded from the
	// underlying stream, i.e. the current absolute read position.
	pos int64
}

// newScratchBuffer wraps r with the default bufio window size.
func newScratchBuffer(r io.Reader) *scratchBuffer {
	return &scratchBuffer{inner: bufio.NewReader(r)}
}

// newScratchBufferSize wraps r with an explicit window size. bufio raises
// any size below 16 to 16, so the window is never smaller than 16 bytes.
func newScratchBufferSize(size int, r io.Reader) *scratchBuffer {
	return &scratchBuffer{inner: bufio.NewReaderSize(r, size)}
}

// fillBuf returns the currently buffered bytes, reading more from the
// underlying source only if the buffer is empty. The returned slice is
// only valid until the next consume/save/flush/fillBuf call.
func (s *scratchBuffer) fillBuf() ([]byte, error) {
	if s.inner.Buffered() == 0 {
		if _, err := s.inner.Peek(1); err != nil && err != io.EOF {
			return nil, err
		}
	}
	b, err := s.inner.Peek(s.inner.Buffered())
	if err != nil && err != io.EOF {
		return nil, err
	}
	return b, nil
}

// consume advances past amt already-scanned bytes of the current window
// without copying them anywhere.
func (s *scratchBuffer) consume(amt int) {
	_, _ = s.inner.Discard(amt)
	s.pos += int64(amt)
}

// save copies the entire remaining buffered window into scratch and
// consumes it, for when a record does not finish before the window runs
// out and scanning must continue into freshly filled bytes.
func (s *scratchBuffer) save() {
	b, _ := s.inner.Peek(s.inner.Buffered())
	s.scratch = append(s.scratch, b...)
	_, _ = s.inner.Discard(len(b))
	s.pos += int64(len(b))
}

// hasSomethingSaved reports whether a spill is in progress.
func (s *scratchBuffer) hasSomethingSaved() bool {
	return len(s.scratch) > 0
}

// saved returns the bytes accumulated by save so far.
func (s *scratchBuffer) saved() []byte {
	return s.scratch
}

// reset clears any spilled bytes and, if flush deferred a consume because
// nothing had been spilled yet, performs that deferred consume now.
func (s *scratchBuffer) reset() {
	s.scratch = s.scratch[:0]
	if s.hasNextConsume {
		_, _ = s.inner.Discard(s.nextConsume)
		s.pos += int64(s.nextConsume)
		s.hasNextConsume = false
	}
}

// position returns the total number of bytes consumed from the
// underlying stream so far, including a pending deferred consume left by
// flush (applied lazily by reset, but already logically "past" from the
// caller's point of view: flush only ever hands back a just-completed
// record's bytes).
func (s *scratchBuffer) position() int64 {
	if s.hasNextConsume {
		return s.pos + int64(s.nextConsume)
	}
	return s.pos
}

// flush returns the first amt bytes of a just-completed record. When
// nothing has been spilled, it returns a zero-copy slice straight out of
// the bufio window and defers the consume until reset (so the slice
// stays valid for the caller's use); once something has been spilled, it
// appends the remaining amt bytes onto scratch and returns that instead.
func (s *scratchBuffer) flush(amt int) []byte {
	b, _ := s.inner.Peek(s.inner.Buffered())

	if len(s.scratch) == 0 {
		s.nextConsume = amt
		s.hasNextConsume = true
		return b[:amt]
	}

	s.scratch = append(s.scratch, b[:amt]...)
	_, _ = s.inner.Discard(amt)
	s.pos += int64(amt)
	return s.scratch
}
