package emath

import(
	"fmt"

	"github.com/klauspost/cpuid"
	"github.com/pbnjay/memory"
)

// DescribeHost is a one-line summary of the machine doing the math,
// for the startup log.
func DescribeHost(b Backend) string {
	simd := "none"
	if cpuid.CPU.AVX2() {
		simd = "avx2"
	} else if cpuid.CPU.AVX() {
		simd = "avx"
	}

	return fmt.Sprintf("backend=%s cpu=%q cores=%d/%d simd=%s mem=%dMB free=%dMB",
		b.Name(), cpuid.CPU.BrandName, cpuid.CPU.PhysicalCores, cpuid.CPU.LogicalCores, simd,
		memory.TotalMemory()/1024/1024, memory.FreeMemory()/1024/1024)
}
