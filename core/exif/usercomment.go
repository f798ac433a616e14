package exif

import (
	"regexp"
	"strings"

	"github.com/alex-voss/sdmeta/core/binutil"
)

var (
	designatorUnicode = []byte("UNICODE\x00")
	designatorASCII   = []byte("ASCII\x00\x00\x00")
)

// DecodeUserComment implements spec.md §4.2's encoding-designator switch:
// an 8-byte prefix selects UTF-16 ("UNICODE\0", autodetecting endianness),
// ASCII ("ASCII\0\0\0"), or — for anything else, including ComfyUI emitters
// that omit the prefix entirely — a strict-UTF-8 attempt over the whole
// payload. Terminating NULs are trimmed from the result.
func DecodeUserComment(raw []byte) (string, bool) {
	if len(raw) < 8 {
		s := trimNUL(string(raw))
		return s, binutil.IsStrictUTF8(raw)
	}
	prefix, payload := raw[:8], raw[8:]

	switch {
	case string(prefix) == string(designatorUnicode):
		bigEndian := payloadIsBigEndianUTF16(payload)
		s, err := binutil.DecodeUTF16(payload, bigEndian)
		if err != nil {
			return "", false
		}
		return trimNUL(s), true
	case string(prefix) == string(designatorASCII):
		return trimNUL(string(payload)), true
	default:
		if binutil.IsStrictUTF8(raw) {
			return trimNUL(string(raw)), true
		}
		return "", false
	}
}

// payloadIsBigEndianUTF16 autodetects UTF-16 endianness by inspecting
// whether byte 0 or byte 1 of the first code unit is NUL, per spec.md
// §4.2 ("autodetect endianness by inspecting whether byte 0 or byte 1 of
// the character payload is NUL").
func payloadIsBigEndianUTF16(payload []byte) bool {
	if len(payload) < 2 {
		return false
	}
	if payload[0] == 0 && payload[1] != 0 {
		return true
	}
	return false
}

func trimNUL(s string) string {
	return strings.TrimRight(s, "\x00")
}

// EncodeUserComment builds the 8-byte-prefixed tag payload for text,
// choosing ASCII when the text is ASCII-safe and UNICODE/UTF-16LE
// otherwise (spec.md §4.2 "Emit"). JSON payloads intended for ComfyUI
// compatibility should call EncodeUserCommentRaw instead, which omits the
// prefix.
func EncodeUserComment(text string) []byte {
	if isASCII(text) {
		out := make([]byte, 0, 8+len(text)+1)
		out = append(out, designatorASCII...)
		out = append(out, text...)
		out = append(out, 0)
		return out
	}
	out := make([]byte, 0, 8+len(text)*2+2)
	out = append(out, designatorUnicode...)
	out = append(out, binutil.EncodeUTF16LE(text)...)
	out = append(out, 0, 0)
	return out
}

// EncodeUserCommentRaw writes text as raw UTF-8 with no encoding prefix,
// matching spec.md §4.2's "JSON payloads may be emitted as raw UTF-8
// without prefix for ComfyUI compatibility".
func EncodeUserCommentRaw(text string) []byte {
	return []byte(text)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 0x7F {
			return false
		}
	}
	return true
}

var prefixPattern = regexp.MustCompile(`^([A-Za-z]+):\s`)

// SplitPrefix extracts a leading "Workflow: " / "Prompt: " style prefix
// from a decoded ImageDescription/Make string, per spec.md §4.2. It
// returns the prefix (including the trailing ": ") and the remainder.
func SplitPrefix(s string) (prefix, rest string) {
	m := prefixPattern.FindStringIndex(s)
	if m == nil {
		return "", s
	}
	return s[m[0]:m[1]], s[m[1]:]
}
