// Package cpu reports the processor features that the kernel table uses to
// pick its implementations.
//
// Detection happens once per process. The result is a plain value, so it can
// be copied, compared, and replaced by a synthetic one in tests.
package cpu

import (
	"runtime"
	"strings"
	"sync"

	"github.com/klauspost/cpuid/v2"
	xcpu "golang.org/x/sys/cpu"
)

// X86 holds the x86 features of interest.
type X86 struct {
	SSE2      bool
	SSE42     bool // CRC32 instruction
	PCLMULQDQ bool // carry-less multiply, used by folding CRC-32
	AVX2      bool
	BMI2      bool
	POPCNT    bool
}

// ARM64 holds the arm64 features of interest.
type ARM64 struct {
	ASIMD bool
	CRC32 bool
	PMULL bool
}

// Features describes a processor. The zero value is a processor with no
// known architecture and no optional features; kernels resolved from it are
// the scalar reference implementations.
type Features struct {
	Arch  string
	X86   X86
	ARM64 ARM64

	Vendor   string
	Brand    string
	X64Level int // x86-64 microarchitecture level, 0 if unknown
}

var detect = sync.OnceValue(probe)

// Detect returns the features of the processor the program is running on.
func Detect() Features {
	return detect()
}

// Generic returns a Features value with no architecture and no optional
// features.
func Generic() Features {
	return Features{}
}

func probe() Features {
	f := Features{
		Arch:     runtime.GOARCH,
		Vendor:   cpuid.CPU.VendorString,
		Brand:    strings.TrimSpace(cpuid.CPU.BrandName),
		X64Level: cpuid.CPU.X64Level(),
	}
	switch runtime.GOARCH {
	case "amd64", "386":
		f.X86 = X86{
			SSE2:      xcpu.X86.HasSSE2,
			SSE42:     xcpu.X86.HasSSE42,
			PCLMULQDQ: xcpu.X86.HasPCLMULQDQ,
			AVX2:      xcpu.X86.HasAVX2,
			BMI2:      xcpu.X86.HasBMI2,
			POPCNT:    xcpu.X86.HasPOPCNT,
		}
	case "arm64":
		f.ARM64 = ARM64{
			ASIMD: xcpu.ARM64.HasASIMD,
			CRC32: xcpu.ARM64.HasCRC32,
			PMULL: xcpu.ARM64.HasPMULL,
		}
	}
	return f
}

// HasCRC32 reports whether the processor has a CRC-32 instruction.
func (f Features) HasCRC32() bool {
	return f.X86.SSE42 || f.ARM64.CRC32
}

// HasCLMUL reports whether the processor has a carry-less multiply.
func (f Features) HasCLMUL() bool {
	return f.X86.PCLMULQDQ || f.ARM64.PMULL
}

// String lists the architecture and the enabled features, for example
// "amd64 sse2 sse4.2 pclmulqdq avx2".
func (f Features) String() string {
	if f.Arch == "" {
		return "generic"
	}
	parts := []string{f.Arch}
	add := func(ok bool, name string) {
		if ok {
			parts = append(parts, name)
		}
	}
	add(f.X86.SSE2, "sse2")
	add(f.X86.SSE42, "sse4.2")
	add(f.X86.PCLMULQDQ, "pclmulqdq")
	add(f.X86.AVX2, "avx2")
	add(f.X86.BMI2, "bmi2")
	add(f.X86.POPCNT, "popcnt")
	add(f.ARM64.ASIMD, "asimd")
	add(f.ARM64.CRC32, "crc32")
	add(f.ARM64.PMULL, "pmull")
	return strings.Join(parts, " ")
}
