// Command simdcsv-info reports which dispatch tier this build of simdcsv
// will use for structural-byte scanning and quote decisions, along with
// the CPU features that informed that choice.
package main

import (
	"fmt"

	"github.com/csvcore/simdcsv"
	"github.com/klauspost/cpuid/v2"
)

func main() {
	fmt.Printf("CPU: %s\n", cpuid.CPU.BrandName)
	fmt.Printf("  AVX512F:  %v\n", cpuid.CPU.Supports(cpuid.AVX512F))
	fmt.Printf("  AVX512BW: %v\n", cpuid.CPU.Supports(cpuid.AVX512BW))
	fmt.Printf("  AVX512VL: %v\n", cpuid.CPU.Supports(cpuid.AVX512VL))
	fmt.Printf("  SSE2:     %v\n", cpuid.CPU.Supports(cpuid.SSE2))
	fmt.Println()
	fmt.Printf("searcher tier: %s\n", simdcsv.Instructions())

	var w simdcsv.Writer
	fmt.Printf("writer tier:   %s\n", w.Instructions())
}
