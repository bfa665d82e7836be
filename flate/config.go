package flate

import (
	"fmt"
	"log"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/andybalholm/zpack/internal/kernel"
)

// Compression levels.
const (
	NoCompression      = 0
	BestSpeed          = 1
	BestCompression    = 9
	DefaultCompression = -1
)

// Flush controls how much of the buffered input Deflate pushes out.
type Flush int

const (
	// NoFlush lets the compressor decide when to end blocks.
	NoFlush Flush = iota
	// SyncFlush ends the current block and appends an empty stored block,
	// so that everything written so far can be decoded.
	SyncFlush
	// FullFlush is like SyncFlush, and also forgets the history, so that
	// decoding can restart from this point.
	FullFlush
	// Finish ends the stream.
	Finish
)

func (f Flush) String() string {
	switch f {
	case NoFlush:
		return "none"
	case SyncFlush:
		return "sync"
	case FullFlush:
		return "full"
	case Finish:
		return "finish"
	}
	return fmt.Sprintf("Flush(%d)", int(f))
}

// Strategy tunes the match search for particular kinds of data.
type Strategy int

const (
	DefaultStrategy Strategy = iota
	// Filtered drops short matches, for data that is mostly small
	// values with a somewhat random distribution.
	Filtered
	// HuffmanOnly disables matching entirely.
	HuffmanOnly
	// RLE looks only for runs of the previous byte (distance 1).
	RLE
	// Fixed always uses the fixed Huffman codes.
	Fixed
)

var strategyNames = []string{"default", "filtered", "huffman", "rle", "fixed"}

func (s Strategy) String() string {
	if s >= 0 && int(s) < len(strategyNames) {
		return strategyNames[s]
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// ParseStrategy returns the Strategy with the given name.
func ParseStrategy(name string) (Strategy, error) {
	for i, n := range strategyNames {
		if n == name {
			return Strategy(i), nil
		}
	}
	return 0, fmt.Errorf("%q: %w", name, ErrInvalidStrategy)
}

// Format is the container around the DEFLATE data.
type Format int

const (
	Raw  Format = iota // RFC 1951
	Zlib               // RFC 1950
	Gzip               // RFC 1952
)

var formatNames = []string{"raw", "zlib", "gzip"}

func (f Format) String() string {
	if f >= 0 && int(f) < len(formatNames) {
		return formatNames[f]
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ParseFormat returns the Format with the given name.
func ParseFormat(name string) (Format, error) {
	for i, n := range formatNames {
		if n == name {
			return Format(i), nil
		}
	}
	return 0, fmt.Errorf("%q: %w", name, ErrInvalidFormat)
}

// GzipHeader holds the optional fields of a gzip member header.
// Name and Comment must be representable in Latin-1 and may not contain
// NUL. OS is written as given; 255 means unknown.
type GzipHeader struct {
	Name    string
	Comment string
	ModTime time.Time
	Extra   []byte
	OS      byte
}

// Config holds the parameters of a compression stream.
type Config struct {
	// Level is DefaultCompression (6), or 0 (stored) through 9.
	Level int
	// WindowBits is the base-two logarithm of the window size, 8 to 15.
	// 8 is only allowed for Zlib and is raised to 9.
	WindowBits int
	// MemLevel, 1 to 9, sizes the hash table and the symbol buffer.
	MemLevel int
	Strategy Strategy
	Format   Format

	// Dictionary is a preset dictionary (Raw and Zlib only).
	Dictionary []byte
	// Header is the gzip header (Gzip only). Nil writes a minimal header.
	Header *GzipHeader

	// Kernels overrides the kernel table. Nil means kernel.Default().
	Kernels *kernel.Table
	// Logger, if set, receives a line for every block written.
	Logger *log.Logger
}

// DefaultConfig returns the configuration zlib uses for deflateInit.
func DefaultConfig() Config {
	return Config{
		Level:      DefaultCompression,
		WindowBits: 15,
		MemLevel:   8,
	}
}

// Validate reports every invalid field of c.
func (c *Config) Validate() error {
	var result *multierror.Error
	if c.Level < DefaultCompression || c.Level > BestCompression {
		result = multierror.Append(result, fmt.Errorf("level %d: %w", c.Level, ErrInvalidLevel))
	}
	if c.WindowBits < 8 || c.WindowBits > 15 {
		result = multierror.Append(result, fmt.Errorf("window bits %d: %w", c.WindowBits, ErrInvalidWindowBits))
	} else if c.WindowBits == 8 && c.Format != Zlib {
		result = multierror.Append(result, fmt.Errorf("window bits 8 with %v: %w", c.Format, ErrInvalidWindowBits))
	}
	if c.MemLevel < 1 || c.MemLevel > 9 {
		result = multierror.Append(result, fmt.Errorf("memory level %d: %w", c.MemLevel, ErrInvalidMemLevel))
	}
	if c.Strategy < DefaultStrategy || c.Strategy > Fixed {
		result = multierror.Append(result, fmt.Errorf("%v: %w", c.Strategy, ErrInvalidStrategy))
	}
	if c.Format < Raw || c.Format > Gzip {
		result = multierror.Append(result, fmt.Errorf("%v: %w", c.Format, ErrInvalidFormat))
	}
	if c.Dictionary != nil && c.Format == Gzip {
		result = multierror.Append(result, ErrDictionaryFormat)
	}
	if c.Header != nil {
		if c.Format != Gzip {
			result = multierror.Append(result, fmt.Errorf("header with %v: %w", c.Format, ErrHeaderField))
		}
		if err := c.Header.Validate(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// Validate reports every field of h that cannot be written.
func (h *GzipHeader) Validate() error {
	var result *multierror.Error
	if err := checkLatin1("name", h.Name); err != nil {
		result = multierror.Append(result, err)
	}
	if err := checkLatin1("comment", h.Comment); err != nil {
		result = multierror.Append(result, err)
	}
	if len(h.Extra) > 0xffff {
		result = multierror.Append(result, fmt.Errorf("extra field of %d bytes: %w", len(h.Extra), ErrHeaderField))
	}
	if !h.ModTime.IsZero() && (h.ModTime.Unix() < 0 || h.ModTime.Unix() > 1<<32-1) {
		result = multierror.Append(result, fmt.Errorf("modification time %v: %w", h.ModTime, ErrHeaderField))
	}
	return result.ErrorOrNil()
}

func checkLatin1(field, s string) error {
	for _, r := range s {
		if r == 0 || r > 0xff {
			return fmt.Errorf("%s %q: %w", field, s, ErrHeaderField)
		}
	}
	return nil
}

// appendLatin1 appends s in Latin-1, followed by a NUL.
func appendLatin1(dst []byte, s string) []byte {
	for _, r := range s {
		dst = append(dst, byte(r))
	}
	return append(dst, 0)
}
