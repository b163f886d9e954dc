package simdcsv

import (
	"bytes"
	"io"
	"math"
	"sort"
)

// SeekerOptions configures Seeker construction.
type SeekerOptions struct {
	Delimiter      byte
	Quote          byte
	BufferCapacity int
	HasHeaders     bool

	// SampleSize bounds how many records are read from the front of the
	// stream to build the initial SeekerSample. Default 128.
	SampleSize uint64
	// LookaheadFactor scales MaxRecordSize into the size of the scratch
	// window FindRecordAfter reads to locate a boundary. Default 32.
	LookaheadFactor uint64
}

// DefaultSeekerOptions mirrors the conventional comma/double-quote CSV
// configuration.
func DefaultSeekerOptions() SeekerOptions {
	return SeekerOptions{
		Delimiter:       ',',
		Quote:           '"',
		HasHeaders:      true,
		SampleSize:      128,
		LookaheadFactor: 32,
	}
}

func (o SeekerOptions) sampleReaderOptions() ReaderOptions {
	return ReaderOptions{
		Delimiter:      o.Delimiter,
		Quote:          o.Quote,
		BufferCapacity: o.BufferCapacity,
		HasHeaders:     o.HasHeaders,
		SkipBOM:        true,
	}
}

// SeekerSample summarizes a sample of records read from the current
// position of a seekable source: enough to estimate a total record
// count and to seed the heuristics FindRecordAfter uses to locate record
// boundaries at arbitrary byte offsets without a full scan.
type SeekerSample struct {
	headers *ByteRecord

	recordCount         uint64
	maxRecordSize        uint64
	medianRecordSize     uint64
	firstRecordStartPos  int64
	fieldsMeanSizes      []float64
	fileLen              int64
	hasReachedEOF        bool
}

// Headers returns the header record captured while sampling.
func (s *SeekerSample) Headers() *ByteRecord { return s.headers }

// RecordCount returns the number of records actually sampled.
func (s *SeekerSample) RecordCount() uint64 { return s.recordCount }

// FirstRecordStartPos returns the absolute byte offset of the first data
// record (past any header and BOM).
func (s *SeekerSample) FirstRecordStartPos() int64 { return s.firstRecordStartPos }

// FileLen returns the total stream length in bytes.
func (s *SeekerSample) FileLen() int64 { return s.fileLen }

// HasReachedEOF reports whether sampling exhausted the stream, making
// RecordCount an exact total rather than an estimate.
func (s *SeekerSample) HasReachedEOF() bool { return s.hasReachedEOF }

// sampleSeekerSample reads up to sampleSize records from r via a
// ZeroCopyReader configured by ropts. Returns (nil, nil) if not even one
// record could be read.
func sampleSeekerSample(r io.ReadSeeker, ropts ReaderOptions, sampleSize uint64) (*SeekerSample, error) {
	initialPos, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}

	zr := NewZeroCopyReaderWithOptions(r, ropts)
	headers, err := zr.ByteHeaders()
	if err != nil {
		return nil, err
	}
	firstRecordStartPos := initialPos + zr.Position()

	var sampled uint64
	var recordSizes []uint64
	var fieldsSizes [][]int

	for sampled < sampleSize {
		record, err := zr.ReadByteRecord()
		if err != nil {
			return nil, err
		}
		if record == nil {
			break
		}

		recordSizes = append(recordSizes, uint64(len(record.AsSlice()))+1)

		sizes := make([]int, record.Len())
		for i := range sizes {
			field, _ := record.Get(i)
			sizes[i] = len(field)
		}
		fieldsSizes = append(fieldsSizes, sizes)

		sampled++
	}

	if sampled == 0 {
		return nil, nil
	}

	next, err := zr.ReadByteRecord()
	if err != nil {
		return nil, err
	}
	hasReachedEOF := next == nil

	fileLen, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}

	nFields := headers.Len()
	fieldsMeanSizes := make([]float64, nFields)
	for i := 0; i < nFields; i++ {
		var sum int
		for _, sizes := range fieldsSizes {
			sum += sizes[i]
		}
		fieldsMeanSizes[i] = float64(sum) / float64(len(fieldsSizes))
	}

	sort.Slice(recordSizes, func(i, j int) bool { return recordSizes[i] < recordSizes[j] })

	return &SeekerSample{
		headers:             headers,
		recordCount:         sampled,
		maxRecordSize:        recordSizes[len(recordSizes)-1],
		medianRecordSize:     recordSizes[len(recordSizes)/2],
		firstRecordStartPos:  firstRecordStartPos,
		fieldsMeanSizes:      fieldsMeanSizes,
		fileLen:              fileLen,
		hasReachedEOF:        hasReachedEOF,
	}, nil
}

// Seeker locates record boundaries at arbitrary byte offsets in a
// seekable source without a full scan, using a SeekerSample taken up
// front plus bounded lookahead reads. It holds sole access to its
// source for its lifetime.
type Seeker struct {
	inner  io.ReadSeeker
	sample *SeekerSample
	opts   SeekerOptions
}

// NewSeeker samples r and returns a Seeker, or (nil, nil) if r contains
// no records at all.
func NewSeeker(r io.ReadSeeker, opts SeekerOptions) (*Seeker, error) {
	sample, err := sampleSeekerSample(r, opts.sampleReaderOptions(), opts.SampleSize)
	if err != nil {
		return nil, err
	}
	if sample == nil {
		return nil, nil
	}
	return &Seeker{inner: r, sample: sample, opts: opts}, nil
}

// Sample returns the SeekerSample taken at construction.
func (s *Seeker) Sample() *SeekerSample { return s.sample }

// IntoInner returns (and relinquishes the Seeker's claim on) the
// underlying source.
func (s *Seeker) IntoInner() io.ReadSeeker { return s.inner }

// ApproxCount returns the sampled count directly if sampling reached
// EOF, otherwise an estimate based on the median sampled record size.
func (s *Seeker) ApproxCount() uint64 {
	if s.sample.hasReachedEOF {
		return s.sample.recordCount
	}
	span := float64(s.sample.fileLen - s.sample.firstRecordStartPos)
	return uint64(math.Ceil(span / float64(s.sample.medianRecordSize)))
}

func (s *Seeker) lookaheadReaderOptions() ReaderOptions {
	return ReaderOptions{
		Delimiter:  s.opts.Delimiter,
		Quote:      s.opts.Quote,
		Flexible:   true,
		HasHeaders: false,
	}
}

// FindRecordAfter locates a record boundary after pos, returning the
// absolute start offset and value of the second record parsed from pos
// (the first one is skipped, since pos may fall inside it, so a record
// starting exactly at pos is not the one returned). When pos equals
// FirstRecordStartPos, the record at pos itself is returned.
// Returns (0, nil, nil) if no boundary could be confidently located
// within the lookahead window.
func (s *Seeker) FindRecordAfter(pos int64) (int64, *ByteRecord, error) {
	start := s.sample.firstRecordStartPos
	end := s.sample.fileLen

	if pos < start || pos >= end {
		return 0, nil, OutOfBoundsError(uint64(pos), uint64(start), uint64(end))
	}

	if pos == start {
		if _, err := s.inner.Seek(pos, io.SeekStart); err != nil {
			return 0, nil, err
		}
		zr := NewZeroCopyReaderWithOptions(s.inner, s.lookaheadReaderOptions())
		rec, err := zr.ReadByteRecord()
		if err != nil {
			return 0, nil, err
		}
		if rec == nil {
			return 0, nil, nil
		}
		return pos, rec.ToByteRecord(), nil
	}

	windowSize := s.opts.LookaheadFactor * s.sample.maxRecordSize
	if windowSize == 0 {
		windowSize = 4096
	}

	if _, err := s.inner.Seek(pos, io.SeekStart); err != nil {
		return 0, nil, err
	}
	scratch := make([]byte, windowSize)
	n, err := io.ReadFull(s.inner, scratch)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return 0, nil, err
	}
	scratch = scratch[:n]

	ropts := s.lookaheadReaderOptions()
	headerFieldCount := s.sample.headers.Len()

	unquotedOffset, unquotedRec, unquotedOK := lookahead(scratch, ropts, headerFieldCount)

	quotedData := make([]byte, 0, len(scratch)+1)
	quotedData = append(quotedData, s.opts.Quote)
	quotedData = append(quotedData, scratch...)
	quotedOffset, quotedRec, quotedOK := lookahead(quotedData, ropts, headerFieldCount)
	// The injected prefix is exactly one quote byte, so subtracting 1 maps
	// the quoted hypothesis's offset back onto scratch.
	if quotedOK {
		quotedOffset--
	}

	switch {
	case unquotedOK && !quotedOK:
		return pos + unquotedOffset, unquotedRec, nil
	case quotedOK && !unquotedOK:
		return pos + quotedOffset, quotedRec, nil
	case unquotedOK && quotedOK:
		if unquotedOffset == quotedOffset {
			return pos + unquotedOffset, unquotedRec, nil
		}
		uSim := cosineSimilarity(fieldLengths(unquotedRec), s.sample.fieldsMeanSizes)
		qSim := cosineSimilarity(fieldLengths(quotedRec), s.sample.fieldsMeanSizes)
		if uSim >= qSim {
			return pos + unquotedOffset, unquotedRec, nil
		}
		return pos + quotedOffset, quotedRec, nil
	default:
		return 0, nil, nil
	}
}

// lookahead reads records out of data (a standalone, flexible,
// header-less hypothesis about where record boundaries fall) and
// returns the second record observed — its offset within data and its
// value — provided at least two records beyond the first were read and
// all but possibly the last of those had exactly headerFieldCount
// fields.
func lookahead(data []byte, ropts ReaderOptions, headerFieldCount int) (int64, *ByteRecord, bool) {
	zr := NewZeroCopyReaderWithOptions(bytes.NewReader(data), ropts)

	const maxObserved = 4
	var offsets []int64
	var records []*ByteRecord

	for len(records) < maxObserved {
		before := zr.Position()
		rec, err := zr.ReadByteRecord()
		if err != nil || rec == nil {
			break
		}
		offsets = append(offsets, before)
		records = append(records, rec.ToByteRecord())
	}

	if len(records) < 3 {
		return 0, nil, false
	}

	beyond := records[1:]
	for i := 0; i < len(beyond)-1; i++ {
		if beyond[i].Len() != headerFieldCount {
			return 0, nil, false
		}
	}

	return offsets[1], records[1], true
}

func fieldLengths(r *ByteRecord) []float64 {
	fields := r.Fields()
	out := make([]float64, len(fields))
	for i, f := range fields {
		out[i] = float64(len(f))
	}
	return out
}

func cosineSimilarity(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Segments partitions [FirstRecordStartPos, FileLen) into up to count
// contiguous byte ranges whose internal splits align to record
// boundaries, suitable for parallelizing reads across independent
// handles on the same underlying file. count is capped to avoid
// overlapping lookahead windows; stops early (returning fewer segments)
// if a split point's boundary cannot be confidently located.
func (s *Seeker) Segments(count int) ([][2]int64, error) {
	start := s.sample.firstRecordStartPos
	end := s.sample.fileLen

	capVal := 1
	denom := s.sample.maxRecordSize * s.opts.LookaheadFactor
	if denom > 0 {
		if c := int(uint64(end)/denom) - 1; c > capVal {
			capVal = c
		}
	}
	if count > capVal {
		count = capVal
	}
	if count < 1 {
		count = 1
	}

	adjustedLen := end - start

	bounds := []int64{start}
	for i := 1; i < count; i++ {
		fileOffset := start + int64(float64(i)/float64(count)*float64(adjustedLen))
		offset, rec, err := s.FindRecordAfter(fileOffset)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			break
		}
		bounds = append(bounds, offset)
	}
	bounds = append(bounds, end)

	segments := make([][2]int64, 0, len(bounds)-1)
	for i := 0; i < len(bounds)-1; i++ {
		segments = append(segments, [2]int64{bounds[i], bounds[i+1]})
	}
	return segments, nil
}

// LastByteRecord reads [FirstRecordStartPos, FileLen) backwards with a
// ReverseReader and returns the very last record in the stream.
func (s *Seeker) LastByteRecord() (*ByteRecord, error) {
	rr := NewReverseReader(s.inner, s.sample.fileLen, s.sample.firstRecordStartPos, ReaderOptions{
		Delimiter:  s.opts.Delimiter,
		Quote:      s.opts.Quote,
		HasHeaders: false,
	})
	return rr.ReadByteRecord()
}
