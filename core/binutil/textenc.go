package binutil

import (
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// DecodeLatin1 decodes ISO-8859-1 (Latin-1) bytes to a Go string, using
// golang.org/x/text/encoding/charmap rather than a hand-rolled byte loop —
// the domain-stack dependency named in SPEC_FULL.md §4.
func DecodeLatin1(b []byte) (string, error) {
	return charmap.ISO8859_1.NewDecoder().String(string(b))
}

// EncodeLatin1 encodes s to ISO-8859-1 bytes. Returns an error if s
// contains a codepoint outside Latin-1's range.
func EncodeLatin1(s string) ([]byte, error) {
	out, err := charmap.ISO8859_1.NewEncoder().String(s)
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

// IsLatin1Safe reports whether every rune in s is encodable as a single
// Latin-1 byte (spec.md §4.1: "text with any byte ≥ 0x80 or non-Latin-1
// codepoints is written as iTXt").
func IsLatin1Safe(s string) bool {
	for _, r := range s {
		if r > 0xFF {
			return false
		}
	}
	return true
}

// IsStrictUTF8 reports whether b is valid UTF-8 — used by the PNG tEXt
// reader's "try UTF-8 first, fall back to Latin-1" rule (spec.md §3).
// Pure-ASCII input is valid UTF-8 and therefore reports true.
func IsStrictUTF8(b []byte) bool { return utf8.Valid(b) }

// DecodeUTF16 decodes a UTF-16 byte slice (no BOM) to a string, given an
// explicit endianness. Used by the EXIF UserComment decoder, which
// determines endianness itself per spec.md §4.2 rather than relying on a
// BOM.
func DecodeUTF16(b []byte, bigEndian bool) (string, error) {
	if len(b)%2 != 0 {
		b = b[:len(b)-1]
	}
	units := make([]uint16, len(b)/2)
	for i := range units {
		if bigEndian {
			units[i] = uint16(b[2*i])<<8 | uint16(b[2*i+1])
		} else {
			units[i] = uint16(b[2*i]) | uint16(b[2*i+1])<<8
		}
	}
	return string(utf16.Decode(units)), nil
}

// EncodeUTF16LE encodes s as little-endian UTF-16 bytes (no BOM).
func EncodeUTF16LE(s string) []byte {
	units := utf16.Encode([]rune(s))
	out := make([]byte, len(units)*2)
	for i, u := range units {
		out[2*i] = byte(u)
		out[2*i+1] = byte(u >> 8)
	}
	return out
}
