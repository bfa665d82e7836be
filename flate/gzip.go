package flate

import (
	"encoding/binary"

	"github.com/andybalholm/zpack"
	"github.com/andybalholm/zpack/internal/kernel"
)

func appendZlibHeader(dst []byte, wBits, level int, strategy Strategy, hasDict bool) []byte {
	header := uint16(8+(wBits-8)<<4) << 8
	var levelFlags uint16
	switch {
	case strategy >= HuffmanOnly || level < 2:
		levelFlags = 0
	case level < 6:
		levelFlags = 1
	case level == 6:
		levelFlags = 2
	default:
		levelFlags = 3
	}
	header |= levelFlags << 6
	if hasDict {
		header |= 0x20 // FDICT
	}
	if r := header % 31; r != 0 {
		header += 31 - r
	}
	return binary.BigEndian.AppendUint16(dst, header)
}

const (
	gzipFlagExtra   = 1 << 2
	gzipFlagName    = 1 << 3
	gzipFlagComment = 1 << 4
)

func appendGzipHeader(dst []byte, h *GzipHeader, level int, strategy Strategy) []byte {
	var flags byte
	var mtime uint32
	os := byte(255) // unknown
	if h != nil {
		if len(h.Extra) > 0 {
			flags |= gzipFlagExtra
		}
		if h.Name != "" {
			flags |= gzipFlagName
		}
		if h.Comment != "" {
			flags |= gzipFlagComment
		}
		if !h.ModTime.IsZero() {
			mtime = uint32(h.ModTime.Unix())
		}
		os = h.OS
	}

	var xfl byte
	switch {
	case level == BestCompression:
		xfl = 2
	case level < 2 || strategy >= HuffmanOnly:
		xfl = 4
	}

	dst = append(dst,
		0x1f, 0x8b, // magic number
		8, // CM = flate
		flags,
	)
	dst = binary.LittleEndian.AppendUint32(dst, mtime)
	dst = append(dst, xfl, os)
	if h != nil {
		if len(h.Extra) > 0 {
			dst = binary.LittleEndian.AppendUint16(dst, uint16(len(h.Extra)))
			dst = append(dst, h.Extra...)
		}
		if h.Name != "" {
			dst = appendLatin1(dst, h.Name)
		}
		if h.Comment != "" {
			dst = appendLatin1(dst, h.Comment)
		}
	}
	return dst
}

// NewGZIPEncoder returns a zpack.Encoder that produces gzip output with a
// minimal header.
func NewGZIPEncoder() zpack.Encoder {
	return &containerEncoder{
		f:      NewEncoder(),
		format: Gzip,
		k:      kernel.Default(),
	}
}

// NewGZIPEncoderHeader is like NewGZIPEncoder, but writes h as the header.
func NewGZIPEncoderHeader(h *GzipHeader) (zpack.Encoder, error) {
	if h != nil {
		if err := h.Validate(); err != nil {
			return nil, err
		}
	}
	e := NewGZIPEncoder().(*containerEncoder)
	e.header = h
	return e, nil
}

// NewZlibEncoder returns a zpack.Encoder that produces zlib output.
func NewZlibEncoder() zpack.Encoder {
	e := &containerEncoder{
		f:      NewEncoder(),
		format: Zlib,
		k:      kernel.Default(),
	}
	e.Reset()
	return e
}

type containerEncoder struct {
	f      *Encoder
	format Format
	header *GzipHeader
	k      *kernel.Table

	wroteHeader bool
	sum         uint32
	length      uint32
}

func (e *containerEncoder) Reset() {
	e.f.Reset()
	e.wroteHeader = false
	e.length = 0
	e.sum = 0
	if e.format == Zlib {
		e.sum = 1
	}
}

func (e *containerEncoder) Encode(dst []byte, src []byte, matches []zpack.Match, lastBlock bool) []byte {
	if !e.wroteHeader {
		if e.format == Zlib {
			dst = appendZlibHeader(dst, 15, 6, DefaultStrategy, false)
		} else {
			dst = appendGzipHeader(dst, e.header, 6, DefaultStrategy)
		}
		e.wroteHeader = true
	}

	dst = e.f.Encode(dst, src, matches, lastBlock)

	e.length += uint32(len(src))
	if e.format == Zlib {
		e.sum = e.k.Adler32(e.sum, src)
	} else {
		e.sum = e.k.CRC32(e.sum, src)
	}

	if lastBlock {
		if e.format == Zlib {
			dst = binary.BigEndian.AppendUint32(dst, e.sum)
		} else {
			dst = binary.LittleEndian.AppendUint32(dst, e.sum)
			dst = binary.LittleEndian.AppendUint32(dst, e.length)
		}
	}
	return dst
}
