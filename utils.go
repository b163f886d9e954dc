package simdcsv

import "bytes"

// trimTrailingCRLF strips a single trailing LF and, if present
// immediately before it, a single trailing CR. Used when a raw consumed
// record slice still carries its terminator.
func trimTrailingCRLF(slice []byte) []byte {
	n := len(slice)

	hasLF := n >= 1 && slice[n-1] == '\n'
	hasCR := hasLF && n >= 2 && slice[n-2] == '\r'

	n -= boolToInt(hasLF) + boolToInt(hasCR)

	return slice[:n]
}

// trimTrailingCR strips a single trailing CR byte, used on field content
// that has already had its LF terminator excluded by the caller (a CRLF
// line ending leaves the CR attached to the last field).
func trimTrailingCR(slice []byte) []byte {
	if n := len(slice); n >= 1 && slice[n-1] == '\r' {
		return slice[:n-1]
	}
	return slice
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// bomBytes is the UTF-8 byte order mark.
var bomBytes = []byte{0xEF, 0xBB, 0xBF}

// trimBOM reports the number of leading bytes (0 or 3) that make up a
// UTF-8 byte order mark at the start of slice.
func trimBOM(slice []byte) int {
	if len(slice) >= 3 && bytes.Equal(slice[:3], bomBytes) {
		return 3
	}
	return 0
}

// unquoted returns the interior of cell if cell is fully wrapped in a
// pair of quote bytes, and false otherwise.
func unquoted(cell []byte, quote byte) ([]byte, bool) {
	n := len(cell)
	if n >= 2 && cell[0] == quote && cell[n-1] == quote {
		return cell[1 : n-1], true
	}
	return nil, false
}

// unescape undoes quote-doubling in cell, returning cell itself
// unmodified (no allocation) when no doubled quote is present.
func unescape(cell []byte, quote byte) []byte {
	n := len(cell)
	var output []byte
	pos := 0

	for pos < n {
		offset := bytes.IndexByte(cell[pos:], quote)
		if offset < 0 {
			break
		}

		if output == nil {
			output = make([]byte, 0, n)
		}

		output = append(output, cell[pos:pos+offset+1]...)

		// The byte immediately after a quote inside escaped content is
		// assumed to always be another quote.
		pos += offset + 2
	}

	if output == nil {
		return cell
	}

	return append(output, cell[pos:]...)
}

// unescapeTo undoes quote-doubling in cell, appending the result to out.
func unescapeTo(cell []byte, quote byte, out []byte) []byte {
	n := len(cell)
	pos := 0

	for pos < n {
		offset := bytes.IndexByte(cell[pos:], quote)
		if offset < 0 {
			break
		}

		out = append(out, cell[pos:pos+offset+1]...)
		pos += offset + 2
	}

	return append(out, cell[pos:]...)
}
