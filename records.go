package simdcsv

import "fmt"

// ByteRecord is an owned CSV record: a single contiguous data buffer plus
// a non-decreasing list of [start,end) bounds, one pair per field. Owning
// its bytes makes it safe to hold onto past the next read call, unlike
// ZeroCopyByteRecord.
type ByteRecord struct {
	data   []byte
	bounds [][2]int
	start  int
}

// NewByteRecord returns an empty ByteRecord.
func NewByteRecord() *ByteRecord {
	return &ByteRecord{}
}

// NewByteRecordFromFields builds an owned record from already-split
// field values, copying their bytes.
func NewByteRecordFromFields(fields ...[]byte) *ByteRecord {
	r := NewByteRecord()
	for _, f := range fields {
		r.PushField(f)
	}
	return r
}

// NewByteRecordFromStrings is the string convenience form of
// NewByteRecordFromFields, handy in tests.
func NewByteRecordFromStrings(fields ...string) *ByteRecord {
	r := NewByteRecord()
	for _, f := range fields {
		r.PushField([]byte(f))
	}
	return r
}

// Len returns the number of fields.
func (r *ByteRecord) Len() int { return len(r.bounds) }

// IsEmpty reports whether the record has no fields.
func (r *ByteRecord) IsEmpty() bool { return r.Len() == 0 }

// Clear resets the record to empty, retaining its underlying capacity.
func (r *ByteRecord) Clear() {
	r.data = r.data[:0]
	r.bounds = r.bounds[:0]
	r.start = 0
}

// AsSlice returns the record's entire backing buffer, fields and all,
// with no field boundaries marked.
func (r *ByteRecord) AsSlice() []byte { return r.data }

// Get returns field i, or false if i is out of range.
func (r *ByteRecord) Get(i int) ([]byte, bool) {
	if i < 0 || i >= len(r.bounds) {
		return nil, false
	}
	b := r.bounds[i]
	return r.data[b[0]:b[1]], true
}

// fieldBounds returns field i's [start,end) bounds within the record's
// own backing buffer, for callers that need raw offsets rather than
// content (Reader.FieldPos).
func (r *ByteRecord) fieldBounds(i int) (int, int) {
	b := r.bounds[i]
	return b[0], b[1]
}

// Fields returns every field as a slice of slices, all borrowed from the
// record's own backing buffer.
func (r *ByteRecord) Fields() [][]byte {
	out := make([][]byte, len(r.bounds))
	for i, b := range r.bounds {
		out[i] = r.data[b[0]:b[1]]
	}
	return out
}

// PushField appends a complete field, copying bytes.
func (r *ByteRecord) PushField(bytes []byte) {
	r.extendFromSlice(bytes)
	r.finalizeField()
}

// Equal reports whether two records have the same fields in the same
// order, independent of their backing buffer layout.
func (r *ByteRecord) Equal(other *ByteRecord) bool {
	if r.Len() != other.Len() {
		return false
	}
	for i, b := range r.bounds {
		ob := other.bounds[i]
		if string(r.data[b[0]:b[1]]) != string(other.data[ob[0]:ob[1]]) {
			return false
		}
	}
	return true
}

// String renders the record the way a failing test assertion wants to
// see it: a quoted, escaped field list.
func (r *ByteRecord) String() string {
	fields := r.Fields()
	rendered := make([]fmt.Stringer, len(fields))
	for i, f := range fields {
		rendered[i] = debugBytes(f)
	}
	return fmt.Sprintf("ByteRecord(%v)", rendered)
}

// Reverse reverses both the field order and each field's byte content in
// place. ReverseReader uses this to undo the byte-reversal performed by
// its I/O adapter: a record read off a reversed stream comes out with its
// fields in reverse order and each field's bytes reversed, and this
// restores the original orientation.
func (r *ByteRecord) Reverse() {
	n := len(r.bounds)
	newData := make([]byte, 0, len(r.data))
	newBounds := make([][2]int, n)

	for i := 0; i < n; i++ {
		b := r.bounds[n-1-i]
		field := r.data[b[0]:b[1]]
		start := len(newData)
		for j := len(field) - 1; j >= 0; j-- {
			newData = append(newData, field[j])
		}
		newBounds[i] = [2]int{start, len(newData)}
	}

	r.data = newData
	r.bounds = newBounds
	r.start = len(newData)
}

func (r *ByteRecord) extendFromSlice(slice []byte) {
	r.data = append(r.data, slice...)
}

func (r *ByteRecord) pushByte(b byte) {
	r.data = append(r.data, b)
}

// finalizeField closes off the field that has been accumulating in data
// since the last finalize call.
func (r *ByteRecord) finalizeField() {
	start := r.start
	r.start = len(r.data)
	r.bounds = append(r.bounds, [2]int{start, r.start})
}

// finalizeFieldIncludingDelimiter closes off a field whose delimiter has
// been seen but whose content, up to and including the delimiter's
// offset within the as-yet-unappended tail, has not been copied into
// data yet — the caller appends that tail separately afterwards.
func (r *ByteRecord) finalizeFieldIncludingDelimiter(offset int) {
	start := r.start
	r.start = len(r.data) + offset
	r.bounds = append(r.bounds, [2]int{start, r.start})
	r.start++
}

// bump advances the pending field's start cursor by one, used when a
// quote opens immediately inside what was thought to be unquoted content.
func (r *ByteRecord) bump() {
	r.start++
}

// byteRecordBuilder adapts a *ByteRecord to the narrower set of
// operations the core state machine needs, named to match the state
// machine's own vocabulary (finalizeFieldPreemptively, bump) rather than
// ByteRecord's own method names.
type byteRecordBuilder struct {
	record *ByteRecord
}

func wrapByteRecordBuilder(r *ByteRecord) *byteRecordBuilder {
	return &byteRecordBuilder{record: r}
}

func (b *byteRecordBuilder) extendFromSlice(slice []byte) { b.record.extendFromSlice(slice) }
func (b *byteRecordBuilder) pushByte(c byte)               { b.record.pushByte(c) }
func (b *byteRecordBuilder) finalizeField()                { b.record.finalizeField() }
func (b *byteRecordBuilder) bump()                         { b.record.bump() }

func (b *byteRecordBuilder) finalizeFieldPreemptively(offset int) {
	b.record.finalizeFieldIncludingDelimiter(offset)
}

// ZeroCopyByteRecord is a borrowed view over one record's raw bytes: the
// trimmed record slice plus the absolute offsets of its delimiters.
// Fields are returned verbatim (quotes and doubled-quote escaping left
// intact) unless explicitly unescaped, since most callers never need the
// decoded form and paying to decode every field upfront would defeat the
// point of a zero-copy reader.
type ZeroCopyByteRecord struct {
	slice []byte
	seps  []int
	quote byte
}

// newZeroCopyByteRecord wraps slice (trimming its trailing terminator)
// together with the absolute delimiter offsets found within it.
func newZeroCopyByteRecord(slice []byte, seps []int, quote byte) ZeroCopyByteRecord {
	return ZeroCopyByteRecord{slice: trimTrailingCRLF(slice), seps: seps, quote: quote}
}

// Len returns the number of fields.
func (r ZeroCopyByteRecord) Len() int { return len(r.seps) + 1 }

// IsEmpty reports whether the record has no fields. In practice this
// never happens for a well-formed record: even a blank line has one
// empty field.
func (r ZeroCopyByteRecord) IsEmpty() bool { return r.Len() == 0 }

// AsSlice returns the trimmed record's entire backing slice.
func (r ZeroCopyByteRecord) AsSlice() []byte { return r.slice }

// bounds returns the [start,end) byte range of field i, relative to
// r.slice. seps are expected to already be relative to the same record
// window that r.slice was cut from — callers are responsible for
// resetting their offset base at the start of each record.
func (r ZeroCopyByteRecord) bounds(i int) (int, int, bool) {
	n := len(r.seps)
	if i < 0 || i > n {
		return 0, 0, false
	}

	start := 0
	if i > 0 {
		start = r.seps[i-1] + 1
	}

	end := len(r.slice)
	if i < n {
		end = r.seps[i]
	}

	return start, end, true
}

// Get returns field i's raw (still possibly quoted/escaped) bytes.
func (r ZeroCopyByteRecord) Get(i int) ([]byte, bool) {
	start, end, ok := r.bounds(i)
	if !ok {
		return nil, false
	}
	return r.slice[start:end], true
}

// Fields returns every field's raw bytes.
func (r ZeroCopyByteRecord) Fields() [][]byte {
	out := make([][]byte, r.Len())
	for i := range out {
		out[i], _ = r.Get(i)
	}
	return out
}

// Unescape returns field i with surrounding quotes removed (if the field
// was quoted) and doubled quotes collapsed, allocating only if the field
// actually requires it.
func (r ZeroCopyByteRecord) Unescape(i int) ([]byte, bool) {
	field, ok := r.Get(i)
	if !ok {
		return nil, false
	}
	if inner, wasQuoted := unquoted(field, r.quote); wasQuoted {
		return unescape(inner, r.quote), true
	}
	return field, true
}

// ToByteRecord copies this view into a fully owned, unescaped
// ByteRecord, unescaping straight into the destination buffer rather
// than through an intermediate per-field allocation.
func (r ZeroCopyByteRecord) ToByteRecord() *ByteRecord {
	out := NewByteRecord()
	for i := 0; i < r.Len(); i++ {
		field, _ := r.Get(i)
		if inner, wasQuoted := unquoted(field, r.quote); wasQuoted {
			out.data = unescapeTo(inner, r.quote, out.data)
		} else {
			out.data = append(out.data, field...)
		}
		out.finalizeField()
	}
	return out
}

// Parts returns a copy of the record's separator offsets and raw slice,
// for callers (such as the header cache in Reader/ZeroCopyReader) that
// need to retain a record past the next read call without paying for a
// full unescape.
func (r ZeroCopyByteRecord) Parts() ([]int, []byte) {
	seps := make([]int, len(r.seps))
	copy(seps, r.seps)
	slice := make([]byte, len(r.slice))
	copy(slice, r.slice)
	return seps, slice
}

// String renders the record the way a failing test assertion wants to
// see it.
func (r ZeroCopyByteRecord) String() string {
	fields := r.Fields()
	rendered := make([]fmt.Stringer, len(fields))
	for i, f := range fields {
		rendered[i] = debugBytes(f)
	}
	return fmt.Sprintf("ZeroCopyByteRecord(%v)", rendered)
}
