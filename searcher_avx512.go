//go:build goexperiment.simd && amd64

package simdcsv

import (
	"simd/archsimd"

	"golang.org/x/sys/cpu"
)

// init overrides the package-level dispatch vars with the AVX-512 tier
// when both the build carries the experimental simd package (amd64 +
// GOEXPERIMENT=simd, enforced by the build tag above) and the running CPU
// actually supports the instructions archsimd will emit. Mirrors the
// teacher's simd_scanner.go pattern of gating a global at init time on a
// cpu.X86.Has* check rather than re-testing on every call.
func init() {
	if cpu.X86.HasAVX512F && cpu.X86.HasAVX512BW && cpu.X86.HasAVX512VL {
		searchTripleFn = avx512TripleSearch
		searchTierName = "avx512"
	}
}

// avx512Lanes is the width of a single archsimd byte vector register used
// below (512 bits / 8 bits per lane).
const avx512Lanes = 64

// avx512TripleSearch scans data in 64-byte vector lanes, comparing every
// lane against all three needle bytes at once and reducing the three
// comparison masks with a single OR before the first set bit is located.
// Falls back to the scalar tier for the final partial lane.
func avx512TripleSearch(data []byte, n1, n2, n3 byte) int {
	v1 := archsimd.BroadcastUint8x64(n1)
	v2 := archsimd.BroadcastUint8x64(n2)
	v3 := archsimd.BroadcastUint8x64(n3)

	i := 0
	for ; i+avx512Lanes <= len(data); i += avx512Lanes {
		chunk := archsimd.LoadUint8x64(data[i : i+avx512Lanes])
		mask := chunk.Equal(v1).Or(chunk.Equal(v2)).Or(chunk.Equal(v3))
		if bits := mask.ToBitMask(); bits != 0 {
			return i + trailingZeros64(bits)
		}
	}

	if i < len(data) {
		if rel := scalarTripleSearch(data[i:], n1, n2, n3); rel >= 0 {
			return i + rel
		}
	}
	return -1
}

// trailingZeros64 counts trailing zero bits in a lane mask, i.e. the
// index of the first matching lane.
func trailingZeros64(x uint64) int {
	if x == 0 {
		return 64
	}
	n := 0
	for x&1 == 0 {
		x >>= 1
		n++
	}
	return n
}
