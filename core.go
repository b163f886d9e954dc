package simdcsv

import "bytes"

// readResult is the outcome of a single call into the core state machine.
// A caller loops calling one of the three entry points until it sees
// readEnd or readRecord, treating readInputEmpty/readSkip as "call again
// with more bytes" / "call again from the advanced position".
type readResult int

const (
	// readInputEmpty means the input slice was fully consumed without
	// completing a record; streaming callers must supply more bytes,
	// whole-buffer callers call again with the now-empty remainder, which
	// reports any pending final record as readRecord before readEnd.
	readInputEmpty readResult = iota
	// readSkip means a single leading CR or LF byte between records, or a
	// whole comment line, was consumed and silently absorbed; call again
	// from the new position.
	readSkip
	// readRecord means a complete record ended at the returned position.
	readRecord
	// readEnd means there is no more input and no partial record pending.
	readEnd
)

// readState is the 3-state machine driving every entry point below.
type readState int

const (
	stateUnquoted readState = iota
	stateQuoted
	stateQuote
)

// coreReader is the byte-driven record splitter shared by every streaming
// and whole-buffer reader in this package. Splitting records does not
// actually require knowing the field delimiter — only the quote byte and
// the record terminator matter for that — but a single coreReader value
// backs both plain splitting and separator-recording, so the delimiter is
// carried regardless.
type coreReader struct {
	delimiter byte
	quote     byte
	state     readState

	// recordWasRead starts true so that empty input does not count as
	// one (nonexistent) record.
	recordWasRead bool

	// comment/hasComment configure optional comment-line skipping; a
	// record whose first byte is comment is skipped through the next
	// '\n' and produces no field data. inComment spans buffer refills
	// when a comment line is longer than what a single call sees.
	comment    byte
	hasComment bool
	inComment  bool

	searcher Searcher
}

// newCoreReader builds a coreReader for the given delimiter/quote pair.
func newCoreReader(delimiter, quote byte) *coreReader {
	return &coreReader{
		delimiter:     delimiter,
		quote:         quote,
		state:         stateUnquoted,
		recordWasRead: true,
		searcher:      NewSearcher(delimiter, '\n', quote),
	}
}

// setComment enables comment-line skipping for records starting with b.
func (c *coreReader) setComment(b byte) {
	c.comment = b
	c.hasComment = true
}

// leadingSkip handles the shared prologue of every entry point: a
// comment line resumed from a previous call, empty input, a leading bare
// CR or LF immediately following a completed record, and the start of a
// new comment line. handled is false when the caller must fall through
// into the main scan loop.
func (c *coreReader) leadingSkip(input []byte) (res readResult, n int, handled bool) {
	if c.inComment {
		if len(input) == 0 {
			c.inComment = false
			c.recordWasRead = true
			return readEnd, 0, true
		}
		offset := bytes.IndexByte(input, '\n')
		if offset < 0 {
			return readInputEmpty, len(input), true
		}
		c.inComment = false
		return readSkip, offset + 1, true
	}

	if len(input) == 0 {
		if !c.recordWasRead {
			c.recordWasRead = true
			return readRecord, 0, true
		}
		return readEnd, 0, true
	}

	if c.recordWasRead {
		if input[0] == '\n' || input[0] == '\r' {
			return readSkip, 1, true
		}

		if c.hasComment && input[0] == c.comment {
			if offset := bytes.IndexByte(input, '\n'); offset >= 0 {
				return readSkip, offset + 1, true
			}
			c.inComment = true
			return readInputEmpty, len(input), true
		}
	}

	return 0, 0, false
}

// indexByteOrQuote finds the first position of either '\n' or the quote
// byte in data, or -1 if neither occurs. This is the two-needle
// specialization the Unquoted state uses when it does not need to record
// delimiter positions — the narrow counterpart to the 3-byte Searcher.
func (c *coreReader) indexByteOrQuote(data []byte) int {
	i := bytes.IndexByte(data, '\n')
	j := bytes.IndexByte(data, c.quote)
	switch {
	case i < 0:
		return j
	case j < 0:
		return i
	case i < j:
		return i
	default:
		return j
	}
}

// splitRecord advances over one record in input without recording field
// boundaries, returning how many bytes were consumed. Used by callers
// that only need record counts or the record as a whole slice
// (TotalReader, Splitter).
func (c *coreReader) splitRecord(input []byte) (readResult, int) {
	if res, n, handled := c.leadingSkip(input); handled {
		return res, n
	}

	c.recordWasRead = false
	pos := 0

	for pos < len(input) {
		switch c.state {
		case stateUnquoted:
			if input[pos] == c.quote {
				c.state = stateQuoted
				pos++
				continue
			}

			offset := c.indexByteOrQuote(input[pos:])
			if offset < 0 {
				return readInputEmpty, len(input)
			}
			pos += offset
			b := input[pos]
			pos++

			if b == '\n' {
				c.recordWasRead = true
				return readRecord, pos
			}
			// b is guaranteed to be the quote byte.
			c.state = stateQuoted

		case stateQuoted:
			offset := bytes.IndexByte(input[pos:], c.quote)
			if offset < 0 {
				return readInputEmpty, len(input)
			}
			pos += offset + 1
			c.state = stateQuote

		case stateQuote:
			b := input[pos]
			pos++

			switch {
			case b == c.quote:
				c.state = stateQuoted
			case b == '\n':
				c.recordWasRead = true
				c.state = stateUnquoted
				return readRecord, pos
			default:
				c.state = stateUnquoted
			}
		}
	}

	return readInputEmpty, len(input)
}

// splitRecordAndFindSeparators behaves like splitRecord but additionally
// appends the absolute byte offset (sepsOffset + local offset) of every
// field delimiter found in this record to seps, using the vectorized
// 3-byte Searcher instead of the 2-byte specialization since delimiter
// positions must now be distinguished from quote/newline.
func (c *coreReader) splitRecordAndFindSeparators(input []byte, sepsOffset int, seps *[]int) (readResult, int) {
	if res, n, handled := c.leadingSkip(input); handled {
		return res, n
	}

	c.recordWasRead = false
	pos := 0

	for pos < len(input) {
		switch c.state {
		case stateUnquoted:
			if input[pos] == c.quote {
				c.state = stateQuoted
				pos++
				continue
			}

			lastOffset := 0
			it := c.searcher.Search(input[pos:])
			for {
				offset, ok := it.Next()
				if !ok {
					break
				}
				lastOffset = offset + 1
				b := input[pos+offset]

				if b == c.delimiter {
					*seps = append(*seps, sepsOffset+pos+offset)
					continue
				}

				if b == '\n' {
					c.recordWasRead = true
					return readRecord, pos + lastOffset
				}

				// b is guaranteed to be the quote byte.
				c.state = stateQuoted
				break
			}

			if lastOffset > 0 {
				pos += lastOffset
			} else {
				return readInputEmpty, len(input)
			}

		case stateQuoted:
			offset := bytes.IndexByte(input[pos:], c.quote)
			if offset < 0 {
				return readInputEmpty, len(input)
			}
			pos += offset + 1
			c.state = stateQuote

		case stateQuote:
			b := input[pos]
			pos++

			switch {
			case b == c.quote:
				c.state = stateQuoted
			case b == c.delimiter:
				*seps = append(*seps, sepsOffset+pos-1)
				c.state = stateUnquoted
			case b == '\n':
				c.recordWasRead = true
				c.state = stateUnquoted
				return readRecord, pos
			default:
				c.state = stateUnquoted
			}
		}
	}

	return readInputEmpty, len(input)
}

// readRecord behaves like splitRecordAndFindSeparators but materializes
// field content into rb as it goes, including quote-doubling unescape
// and trailing-CR trimming, instead of only recording delimiter offsets.
func (c *coreReader) readRecord(input []byte, rb *byteRecordBuilder) (readResult, int) {
	if c.inComment {
		if len(input) == 0 {
			c.inComment = false
			c.recordWasRead = true
			return readEnd, 0
		}
		offset := bytes.IndexByte(input, '\n')
		if offset < 0 {
			return readInputEmpty, len(input)
		}
		c.inComment = false
		return readSkip, offset + 1
	}

	if len(input) == 0 {
		if !c.recordWasRead {
			c.recordWasRead = true
			// Handles streams that do not end with a trailing newline.
			rb.finalizeField()
			return readRecord, 0
		}
		return readEnd, 0
	}

	if c.recordWasRead {
		if input[0] == '\n' || input[0] == '\r' {
			return readSkip, 1
		}

		if c.hasComment && input[0] == c.comment {
			if offset := bytes.IndexByte(input, '\n'); offset >= 0 {
				return readSkip, offset + 1
			}
			c.inComment = true
			return readInputEmpty, len(input)
		}
	}

	c.recordWasRead = false
	pos := 0

	for pos < len(input) {
		switch c.state {
		case stateUnquoted:
			if input[pos] == c.quote {
				c.state = stateQuoted
				pos++
				continue
			}

			lastOffset := 0
			it := c.searcher.Search(input[pos:])
			for {
				offset, ok := it.Next()
				if !ok {
					break
				}
				lastOffset = offset + 1
				b := input[pos+offset]

				// Content is not copied yet here, to avoid many tiny
				// copies; it is appended once below, after the loop.
				if b == c.delimiter {
					rb.finalizeFieldPreemptively(offset)
					continue
				}

				if b == '\n' {
					rb.extendFromSlice(trimTrailingCR(input[pos : pos+offset]))
					rb.finalizeField()
					c.recordWasRead = true
					return readRecord, pos + lastOffset
				}

				// b is guaranteed to be the quote byte.
				c.state = stateQuoted
				rb.bump()
				break
			}

			if lastOffset > 0 {
				rb.extendFromSlice(input[pos : pos+lastOffset])
				pos += lastOffset
			} else {
				rb.extendFromSlice(input[pos:])
				return readInputEmpty, len(input)
			}

		case stateQuoted:
			offset := bytes.IndexByte(input[pos:], c.quote)
			if offset < 0 {
				rb.extendFromSlice(input[pos:])
				return readInputEmpty, len(input)
			}
			rb.extendFromSlice(input[pos : pos+offset])
			pos += offset + 1
			c.state = stateQuote

		case stateQuote:
			b := input[pos]
			pos++

			switch {
			case b == c.quote:
				c.state = stateQuoted
				rb.pushByte(b)
			case b == c.delimiter:
				rb.finalizeField()
				c.state = stateUnquoted
			case b == '\n':
				c.recordWasRead = true
				c.state = stateUnquoted
				rb.finalizeField()
				return readRecord, pos
			default:
				c.state = stateUnquoted
			}
		}
	}

	rb.extendFromSlice(input[pos:])
	return readInputEmpty, len(input)
}
