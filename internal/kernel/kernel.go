// Package kernel holds the hot inner loops of the compressor behind a table
// of function values.
//
// Every slot has a fixed numeric contract and several interchangeable
// implementations. Resolve picks one implementation per slot from a set of
// processor features; the result is immutable and is handed to each stream
// when it is created.
package kernel

import (
	"sync"

	"github.com/andybalholm/zpack/internal/cpu"
)

// A Table is a set of kernels selected for one processor.
// Tables are never modified after Resolve returns them.
type Table struct {
	// Adler32 updates a running Adler-32 checksum (RFC 1950) with p.
	Adler32 func(adler uint32, p []byte) uint32

	// CRC32 updates a running IEEE CRC-32 (RFC 1952) with p.
	CRC32 func(crc uint32, p []byte) uint32

	// MatchLen returns the length of the common prefix of a and b, never
	// more than the length of the shorter slice.
	MatchLen func(a, b []byte) int

	// ChunkCopy appends n bytes to dst, copying from dist bytes before the
	// end of dst. The source and destination may overlap (dist < n), in
	// which case the pattern repeats, as in an LZ77 back-reference.
	ChunkCopy func(dst []byte, dist, n int) []byte

	// Hash maps the bytes of b (3 or 4 of them) to a value in [0, 1<<bits).
	// It must be a pure function of its arguments.
	Hash func(b []byte, bits uint) uint32

	// SlideHash subtracts w from every entry of tab, replacing entries that
	// would go negative with 0.
	SlideHash func(tab []uint16, w uint16)

	Names Names
}

// Names records which implementation fills each slot of a Table.
type Names struct {
	Adler32   string
	CRC32     string
	MatchLen  string
	ChunkCopy string
	Hash      string
	SlideHash string
}

var (
	generic  = sync.OnceValue(func() *Table { return Resolve(cpu.Generic()) })
	resolved = sync.OnceValue(func() *Table { return Resolve(cpu.Detect()) })
)

// Default returns the table for the running processor. Detection and
// resolution happen on the first call; every call returns the same pointer.
func Default() *Table {
	return resolved()
}

// Generic returns the table of scalar reference kernels.
func Generic() *Table {
	return generic()
}

// Resolve selects kernels for a processor with the features f.
func Resolve(f cpu.Features) *Table {
	t := new(Table)

	switch f.Arch {
	case "amd64", "arm64", "ppc64le", "riscv64", "loong64":
		t.MatchLen, t.Names.MatchLen = matchLen64, "word64"
	case "386", "arm", "mipsle", "wasm":
		t.MatchLen, t.Names.MatchLen = matchLen32, "word32"
	default:
		t.MatchLen, t.Names.MatchLen = matchLenBytewise, "bytewise"
	}

	if f.X86.SSE2 || f.ARM64.ASIMD {
		t.Adler32, t.Names.Adler32 = adler32Unrolled, "unrolled16"
	} else {
		t.Adler32, t.Names.Adler32 = adler32Scalar, "scalar"
	}

	switch {
	case f.X86.SSE42 && f.X86.PCLMULQDQ:
		t.CRC32, t.Names.CRC32 = crc32Stdlib, "clmul"
	case f.ARM64.CRC32:
		t.CRC32, t.Names.CRC32 = crc32Stdlib, "armv8"
	case f.Arch != "":
		t.CRC32, t.Names.CRC32 = crc32Stdlib, "slicing8"
	default:
		t.CRC32, t.Names.CRC32 = crc32Bytewise, "bytewise"
	}

	switch {
	case f.HasCRC32():
		t.Hash, t.Names.Hash = hashCRC32C, "crc32c"
	case f.Arch != "":
		t.Hash, t.Names.Hash = hashMultiply, "multiply"
	default:
		t.Hash, t.Names.Hash = hashShift, "shift"
	}

	if f.Arch != "" {
		t.ChunkCopy, t.Names.ChunkCopy = chunkCopyDoubling, "chunked"
		t.SlideHash, t.Names.SlideHash = slideHashUnrolled, "unrolled8"
	} else {
		t.ChunkCopy, t.Names.ChunkCopy = chunkCopyBytewise, "bytewise"
		t.SlideHash, t.Names.SlideHash = slideHashScalar, "scalar"
	}

	return t
}
