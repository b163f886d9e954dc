package simdcsv

import (
	"errors"
	"fmt"
)

// ErrInputTooLarge is returned by TotalReader construction and by Reader's
// read calls when the input exceeds the configured MaxInputSize.
//
// Note: unlike encoding/csv, the CoreReader state machine never rejects
// malformed quoting (ErrBareQuote/ErrQuote do not exist here) — it applies
// the documented tolerant rules instead (see Error's doc comment).
var ErrInputTooLarge = errors.New("input exceeds maximum allowed size")

// DefaultMaxInputSize is the default maximum input size accepted when
// ReaderOptions.MaxInputSize/TotalReaderOptions.MaxInputSize is left at
// its zero value (2GiB). A negative value disables the limit entirely.
const DefaultMaxInputSize = 2 * 1024 * 1024 * 1024

// resolveMaxInputSize applies the MaxInputSize convention shared by
// ReaderOptions and TotalReaderOptions: 0 means DefaultMaxInputSize,
// negative means unlimited.
func resolveMaxInputSize(configured int64) int64 {
	if configured == 0 {
		return DefaultMaxInputSize
	}
	return configured
}

// ErrorKind distinguishes the structural failures that can flow out of a
// reader, writer or seeker, beyond a plain wrapped I/O error.
type ErrorKind int

const (
	// KindIO wraps an error returned by the underlying byte source/sink.
	KindIO ErrorKind = iota
	// KindUnequalLengths indicates a non-flexible reader or writer saw a
	// record whose field count did not match the established count.
	KindUnequalLengths
	// KindOutOfBounds indicates a Seeker was asked to locate a record at
	// a position outside the addressable stream range.
	KindOutOfBounds
)

// Error is the error type returned by this package's structural failures.
// Use errors.As to recover the kind-specific fields. There is no kind for
// malformed quoting: the core state machine never rejects input, and
// stray or mid-field quotes are parsed by its tolerant rules into
// best-effort records.
type Error struct {
	Kind ErrorKind

	// Io is set when Kind == KindIO.
	Io error

	// UnequalLengths fields, set when Kind == KindUnequalLengths.
	Expected int
	Actual   int
	HasPos   bool
	ByteOff  uint64
	RecIndex uint64

	// OutOfBounds fields, set when Kind == KindOutOfBounds.
	Pos   uint64
	Start uint64
	End   uint64
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindIO:
		return e.Io.Error()
	case KindUnequalLengths:
		if e.HasPos {
			return fmt.Sprintf(
				"csv: record %d (byte %d): found record with %d fields, but the previous record has %d fields",
				e.RecIndex, e.ByteOff, e.Actual, e.Expected,
			)
		}
		return fmt.Sprintf(
			"csv: found record with %d fields, but the previous record has %d fields",
			e.Actual, e.Expected,
		)
	case KindOutOfBounds:
		return fmt.Sprintf("csv: pos %d is out of bounds (should be >= %d and < %d)", e.Pos, e.Start, e.End)
	default:
		return "csv: unknown error"
	}
}

func (e *Error) Unwrap() error {
	if e.Kind == KindIO {
		return e.Io
	}
	return nil
}

// IsIOError reports whether err wraps an underlying I/O error.
func (e *Error) IsIOError() bool { return e.Kind == KindIO }

func newIOError(err error) *Error {
	return &Error{Kind: KindIO, Io: err}
}

// UnequalLengthsError constructs the UnequalLengths structural error.
// When hasPos is true, byteOff and recIndex give the record's location.
func UnequalLengthsError(expected, actual int, byteOff, recIndex uint64, hasPos bool) *Error {
	return &Error{
		Kind:     KindUnequalLengths,
		Expected: expected,
		Actual:   actual,
		HasPos:   hasPos,
		ByteOff:  byteOff,
		RecIndex: recIndex,
	}
}

// OutOfBoundsError constructs the Seeker's OutOfBounds structural error.
func OutOfBoundsError(pos, start, end uint64) *Error {
	return &Error{Kind: KindOutOfBounds, Pos: pos, Start: start, End: end}
}
