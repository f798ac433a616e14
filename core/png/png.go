// Package png implements the PNG container codec spec.md §4.1 describes:
// a chunk walker that collects tEXt/iTXt metadata (and IHDR dimensions)
// while leaving every other chunk untouched, and a writer that rebuilds
// the file with replacement text chunks spliced in.
//
// Both halves generalize the teacher's readPNGChunks/editPNG/
// writePNGChunks/crc32PNG quartet in core/image/image.go: same
// signature-then-length-type-data-crc loop, same CRC table-building
// style, extended to keep every non-text chunk byte-for-byte instead of
// discarding them.
package png

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/alex-voss/sdmeta/core"
	"github.com/alex-voss/sdmeta/core/binutil"
)

var (
	ErrInvalidSignature = errors.New("png: invalid signature")
	ErrNoIHDRChunk      = errors.New("png: missing IHDR chunk")
	ErrCorruptedChunk   = errors.New("png: corrupted chunk")
)

// rawChunk is every chunk as read from the file, before tEXt/iTXt ones are
// split out into core.PNGChunk.
type rawChunk struct {
	typ  [4]byte
	data []byte
}

// Dimensions is IHDR's width/height, used by the public Read to backfill
// a parser's zero width/height (spec.md invariant 4).
type Dimensions struct {
	Width, Height uint32
}

// Result is everything Read recovers from a PNG file.
type Result struct {
	Chunks []core.PNGChunk
	Dims   Dimensions
	raw    []rawChunk // every chunk in file order, for Write's passthrough
}

// Read walks chunks {length:u32be, type:4 ASCII, data, crc:u32}, collects
// tEXt/iTXt, and stops at IEND (spec.md §4.1). A magic mismatch yields
// ErrInvalidSignature; a declared length overrunning the buffer yields
// ErrCorruptedChunk.
func Read(buf []byte) (Result, error) {
	var res Result
	if !binutil.IsPNG(buf) {
		return res, ErrInvalidSignature
	}
	c := binutil.NewCursor(buf)
	if _, err := c.Bytes(len(binutil.PNGSignature)); err != nil {
		return res, ErrInvalidSignature
	}

	sawIHDR := false
	for {
		length, err := c.U32BE()
		if err != nil {
			return res, fmt.Errorf("%w: truncated chunk length", ErrCorruptedChunk)
		}
		typBytes, err := c.Bytes(4)
		if err != nil {
			return res, fmt.Errorf("%w: truncated chunk type", ErrCorruptedChunk)
		}
		data, err := c.Bytes(int(length))
		if err != nil {
			return res, fmt.Errorf("%w: chunk length %d overruns buffer", ErrCorruptedChunk, length)
		}
		if _, err := c.U32BE(); err != nil {
			return res, fmt.Errorf("%w: truncated CRC", ErrCorruptedChunk)
		}

		var typ [4]byte
		copy(typ[:], typBytes)
		res.raw = append(res.raw, rawChunk{typ: typ, data: append([]byte{}, data...)})

		switch string(typ[:]) {
		case "IHDR":
			sawIHDR = true
			if len(data) >= 8 {
				rc := binutil.NewCursor(data)
				w, _ := rc.U32BE()
				h, _ := rc.U32BE()
				res.Dims = Dimensions{Width: w, Height: h}
			}
		case "tEXt":
			chunk, ok := parseTEXt(data)
			if ok {
				res.Chunks = append(res.Chunks, chunk)
			}
		case "iTXt":
			chunk, ok := parseITXt(data)
			if ok {
				res.Chunks = append(res.Chunks, chunk)
			}
		case "IEND":
			if !sawIHDR {
				return res, ErrNoIHDRChunk
			}
			return res, nil
		}
	}
}

// parseTEXt splits on the first NUL; keyword is Latin-1, text is UTF-8 if
// strictly valid, else Latin-1 (spec.md §4.1, "Avoid Latin-1 pitfalls").
func parseTEXt(data []byte) (core.PNGChunk, bool) {
	i := bytes.IndexByte(data, 0)
	if i < 0 {
		return core.PNGChunk{}, false
	}
	keyword, err := binutil.DecodeLatin1(data[:i])
	if err != nil {
		return core.PNGChunk{}, false
	}
	rest := data[i+1:]
	var text string
	if binutil.IsStrictUTF8(rest) {
		text = string(rest)
	} else {
		text, err = binutil.DecodeLatin1(rest)
		if err != nil {
			return core.PNGChunk{}, false
		}
	}
	return core.PNGChunk{Kind: core.PNGText, Keyword: keyword, Text: text}, true
}

// parseITXt splits keyword\0 compressionFlag compressionMethod languageTag\0
// translatedKeyword\0 text, all UTF-8. Compressed text is not decoded: the
// chunk is returned with an empty Text and its compressed bytes are not
// kept (compressed iTXt is an explicit Non-goal, spec.md §9).
func parseITXt(data []byte) (core.PNGChunk, bool) {
	i := bytes.IndexByte(data, 0)
	if i < 0 {
		return core.PNGChunk{}, false
	}
	keyword := string(data[:i])
	rest := data[i+1:]
	if len(rest) < 2 {
		return core.PNGChunk{}, false
	}
	compressionFlag := int(rest[0])
	compressionMethod := int(rest[1])
	rest = rest[2:]

	j := bytes.IndexByte(rest, 0)
	if j < 0 {
		return core.PNGChunk{}, false
	}
	languageTag := string(rest[:j])
	rest = rest[j+1:]

	k := bytes.IndexByte(rest, 0)
	if k < 0 {
		return core.PNGChunk{}, false
	}
	translatedKeyword := string(rest[:k])
	text := rest[k+1:]

	chunk := core.PNGChunk{
		Kind:              core.PNGInternationalText,
		Keyword:           keyword,
		CompressionFlag:   compressionFlag,
		CompressionMethod: compressionMethod,
		LanguageTag:       languageTag,
		TranslatedKeyword: translatedKeyword,
	}
	if compressionFlag == 0 {
		chunk.Text = string(text)
	}
	// compressionFlag==1: Text left empty, raw bytes dropped (Non-goal).
	return chunk, true
}
