//go:build goexperiment.simd && amd64

package simdcsv

import (
	"simd/archsimd"

	"golang.org/x/sys/cpu"
)

// init overrides the quote-decision dispatch with the AVX-512 tier under
// the same conditions searcher_avx512.go does for the Searcher.
func init() {
	if cpu.X86.HasAVX512F && cpu.X86.HasAVX512BW && cpu.X86.HasAVX512VL {
		quoteScanImpl = avx512QuoteScan
		quoteScanName = "avx512"
	}
}

// avx512QuoteScan checks 64-byte lanes of field against the delimiter,
// quote, '\n' and '\r' bytes at once, reducing the four comparison masks
// with a single OR chain before testing for any set bit. Falls back to
// the scalar tier for the trailing partial lane.
func avx512QuoteScan(field []byte, delimiter, quote byte, mustQuote *[256]bool) bool {
	vDelim := archsimd.BroadcastUint8x64(delimiter)
	vQuote := archsimd.BroadcastUint8x64(quote)
	vNL := archsimd.BroadcastUint8x64('\n')
	vCR := archsimd.BroadcastUint8x64('\r')

	i := 0
	for ; i+avx512Lanes <= len(field); i += avx512Lanes {
		chunk := archsimd.LoadUint8x64(field[i : i+avx512Lanes])
		mask := chunk.Equal(vDelim).Or(chunk.Equal(vQuote)).Or(chunk.Equal(vNL)).Or(chunk.Equal(vCR))
		if mask.ToBitMask() != 0 {
			return true
		}
	}

	if i < len(field) {
		return scalarQuoteScan(field[i:], delimiter, quote, mustQuote)
	}
	return false
}
