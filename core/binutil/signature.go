package binutil

import "bytes"

// PNGSignature is the fixed 8-byte PNG magic (spec.md §4.1).
var PNGSignature = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

// IsPNG reports whether b begins with the PNG signature, generalizing the
// teacher's inline detectMagic PNG case (core/detect.go) into a reusable
// probe.
func IsPNG(b []byte) bool { return bytes.HasPrefix(b, PNGSignature) }

// IsJPEG reports whether b begins with the JPEG SOI marker pair.
func IsJPEG(b []byte) bool {
	return len(b) >= 2 && b[0] == 0xFF && b[1] == 0xD8
}

// IsWebP reports whether b begins with a RIFF....WEBP header.
func IsWebP(b []byte) bool {
	return len(b) >= 12 && bytes.Equal(b[0:4], []byte("RIFF")) && bytes.Equal(b[8:12], []byte("WEBP"))
}

// DetectFormatName mirrors the teacher's detectMagic dispatch (core/detect.go),
// narrowed to the three containers sdmeta supports.
func DetectFormatName(b []byte) string {
	switch {
	case IsPNG(b):
		return "png"
	case IsJPEG(b):
		return "jpeg"
	case IsWebP(b):
		return "webp"
	default:
		return "unknown"
	}
}
