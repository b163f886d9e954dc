package simdcsv

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seekerFixture(n int) string {
	var buf bytes.Buffer
	buf.WriteString("name,age\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&buf, "person%d,%d\n", i, 20+i%50)
	}
	return buf.String()
}

func TestSeeker_ApproxCount_ExactWhenSampleReachesEOF(t *testing.T) {
	input := seekerFixture(10)
	opts := DefaultSeekerOptions()
	opts.SampleSize = 128

	s, err := NewSeeker(bytes.NewReader([]byte(input)), opts)
	require.NoError(t, err)
	require.NotNil(t, s)

	assert.True(t, s.Sample().HasReachedEOF())
	assert.Equal(t, uint64(10), s.ApproxCount())
}

func TestSeeker_ApproxCount_EstimateWhenSampleTruncated(t *testing.T) {
	input := seekerFixture(1000)
	opts := DefaultSeekerOptions()
	opts.SampleSize = 20

	s, err := NewSeeker(bytes.NewReader([]byte(input)), opts)
	require.NoError(t, err)
	require.NotNil(t, s)

	assert.False(t, s.Sample().HasReachedEOF())
	approx := s.ApproxCount()
	// An estimate from a near-uniform-size fixture (11 to 13 byte
	// records) should land close to the true count without being exact.
	assert.InDelta(t, 1000, approx, 200)
}

func TestSeeker_FindRecordAfter_AtFirstRecordStart(t *testing.T) {
	input := seekerFixture(50)
	s, err := NewSeeker(bytes.NewReader([]byte(input)), DefaultSeekerOptions())
	require.NoError(t, err)
	require.NotNil(t, s)

	start := s.Sample().FirstRecordStartPos()
	offset, rec, err := s.FindRecordAfter(start)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, start, offset)
	assert.Equal(t, "person0", string(rec.Fields()[0]))
}

func TestSeeker_FindRecordAfter_OutOfBounds(t *testing.T) {
	input := seekerFixture(5)
	s, err := NewSeeker(bytes.NewReader([]byte(input)), DefaultSeekerOptions())
	require.NoError(t, err)
	require.NotNil(t, s)

	_, _, err = s.FindRecordAfter(int64(len(input)) + 100)
	require.Error(t, err)

	var csvErr *Error
	require.ErrorAs(t, err, &csvErr)
	assert.Equal(t, KindOutOfBounds, csvErr.Kind)
}

func TestSeeker_Segments_CoverWholeFile(t *testing.T) {
	input := seekerFixture(500)
	s, err := NewSeeker(bytes.NewReader([]byte(input)), DefaultSeekerOptions())
	require.NoError(t, err)
	require.NotNil(t, s)

	segments, err := s.Segments(4)
	require.NoError(t, err)
	require.NotEmpty(t, segments)

	assert.Equal(t, s.Sample().FirstRecordStartPos(), segments[0][0])
	assert.Equal(t, s.Sample().FileLen(), segments[len(segments)-1][1])

	for i := 1; i < len(segments); i++ {
		assert.Equal(t, segments[i-1][1], segments[i][0])
	}
}

func TestSeeker_LastByteRecord(t *testing.T) {
	input := seekerFixture(30)
	s, err := NewSeeker(bytes.NewReader([]byte(input)), DefaultSeekerOptions())
	require.NoError(t, err)
	require.NotNil(t, s)

	rec, err := s.LastByteRecord()
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "person29", string(rec.Fields()[0]))
}

func TestNewSeeker_EmptyInput(t *testing.T) {
	s, err := NewSeeker(bytes.NewReader(nil), DefaultSeekerOptions())
	require.NoError(t, err)
	assert.Nil(t, s)
}
