package png

import (
	"bytes"
	"encoding/binary"

	"github.com/alex-voss/sdmeta/core"
	"github.com/alex-voss/sdmeta/core/binutil"
)

// MaxKeywordBytes and MinKeywordBytes bound a tEXt/iTXt keyword's Latin-1
// byte length (spec.md invariant 3).
const (
	MinKeywordBytes = 1
	MaxKeywordBytes = 79
)

// ErrInvalidKeyword is returned by Write when a supplied chunk's keyword
// violates invariant 3 (1-79 Latin-1 bytes).
var ErrInvalidKeyword = errFmt("png: keyword must be 1-79 Latin-1 bytes")

func errFmt(s string) error { return &pngError{s} }

type pngError struct{ msg string }

func (e *pngError) Error() string { return e.msg }

// Write rebuilds the PNG: signature+IHDR unchanged, then the supplied
// metadata chunks in the order given, then every non-text chunk from the
// original in original order, ending at IEND (spec.md §4.1 "Writer").
// Every emitted chunk's CRC is recomputed over type‖data. The original
// buffer is never mutated; Write always allocates a fresh output buffer.
func Write(original []byte, chunks []core.PNGChunk) ([]byte, error) {
	if !binutil.IsPNG(original) {
		return nil, ErrInvalidSignature
	}
	parsed, err := Read(original)
	if err != nil && err != ErrNoIHDRChunk {
		return nil, err
	}

	var ihdr *rawChunk
	var rest []rawChunk
	for i := range parsed.raw {
		rc := parsed.raw[i]
		switch string(rc.typ[:]) {
		case "IHDR":
			c := rc
			ihdr = &c
		case "tEXt", "iTXt":
			// dropped: replaced wholesale by the supplied chunks.
		default:
			rest = append(rest, rc)
		}
	}
	if ihdr == nil {
		return nil, ErrNoIHDRChunk
	}

	for _, c := range chunks {
		if !binutil.IsLatin1Safe(c.Keyword) {
			return nil, ErrInvalidKeyword
		}
		// Every Latin-1 rune encodes to exactly one byte.
		if n := len([]rune(c.Keyword)); n < MinKeywordBytes || n > MaxKeywordBytes {
			return nil, ErrInvalidKeyword
		}
	}

	var buf bytes.Buffer
	buf.Write(binutil.PNGSignature)
	writeChunk(&buf, ihdr.typ, ihdr.data)
	for _, c := range chunks {
		typ, data, err := encodeChunk(c)
		if err != nil {
			return nil, err
		}
		writeChunk(&buf, typ, data)
	}
	for _, rc := range rest {
		writeChunk(&buf, rc.typ, rc.data)
	}
	return buf.Bytes(), nil
}

func writeChunk(buf *bytes.Buffer, typ [4]byte, data []byte) {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(data)))
	buf.Write(lenBuf[:])
	buf.Write(typ[:])
	buf.Write(data)
	var crcBuf [4]byte
	binary.BigEndian.PutUint32(crcBuf[:], CRC32(typ, data))
	buf.Write(crcBuf[:])
}

// encodeChunk chooses tEXt vs iTXt by byte range: ASCII-safe Latin-1 text
// uses tEXt; anything with a byte >= 0x80 or a non-Latin-1 codepoint uses
// iTXt with compressionFlag=0, languageTag="", translatedKeyword=""
// (spec.md §4.1).
func encodeChunk(c core.PNGChunk) (typ [4]byte, data []byte, err error) {
	if c.Kind == core.PNGInternationalText || needsITXt(c.Text) {
		return encodeITXt(c)
	}
	return encodeTEXt(c)
}

func needsITXt(text string) bool {
	if !binutil.IsLatin1Safe(text) {
		return true
	}
	for i := 0; i < len(text); i++ {
		if text[i] >= 0x80 {
			return true
		}
	}
	return false
}

func encodeTEXt(c core.PNGChunk) (typ [4]byte, data []byte, err error) {
	copy(typ[:], "tEXt")
	kw, err := binutil.EncodeLatin1(c.Keyword)
	if err != nil {
		return typ, nil, err
	}
	txt, err := binutil.EncodeLatin1(c.Text)
	if err != nil {
		return typ, nil, err
	}
	var buf bytes.Buffer
	buf.Write(kw)
	buf.WriteByte(0)
	buf.Write(txt)
	return typ, buf.Bytes(), nil
}

func encodeITXt(c core.PNGChunk) (typ [4]byte, data []byte, err error) {
	copy(typ[:], "iTXt")
	var buf bytes.Buffer
	buf.WriteString(c.Keyword)
	buf.WriteByte(0)
	buf.WriteByte(0) // compressionFlag=0
	buf.WriteByte(0) // compressionMethod=0
	buf.WriteString(c.LanguageTag)
	buf.WriteByte(0)
	buf.WriteString(c.TranslatedKeyword)
	buf.WriteByte(0)
	buf.WriteString(c.Text)
	return typ, buf.Bytes(), nil
}
