// Package jpeg implements the JPEG container codec spec.md §4.1 describes:
// a marker-segment walker that extracts COM and EXIF APP1 metadata while
// passing every other segment through untouched, including the
// entropy-coded scan after SOS, and a writer that splices replacement
// COM/APP1 segments in after SOI.
//
// Generalizes the teacher's parseJPEGSegments/writeJPEGSegments/
// extractJPEGSegment (core/image/image.go) — same marker/length/payload
// walk — extended to also byte-walk the SOS entropy-coded scan (the
// teacher's version only ever reads up to SOS, since it never needs to
// round-trip the compressed image data).
package jpeg

import (
	"bytes"
	"errors"

	"github.com/alex-voss/sdmeta/core"
	"github.com/alex-voss/sdmeta/core/binutil"
	"github.com/alex-voss/sdmeta/core/exif"
)

var (
	ErrInvalidSignature = errors.New("jpeg: invalid signature")
	ErrCorruptedSegment  = errors.New("jpeg: corrupted marker segment")
)

const (
	markerSOI = 0xD8
	markerEOI = 0xD9
	markerSOS = 0xDA
	markerCOM = 0xFE
	markerAPP0 = 0xE0
	markerAPP1 = 0xE1
)

func isStandalone(marker byte) bool {
	if marker == markerSOI || marker == markerEOI {
		return true
	}
	return marker >= 0xD0 && marker <= 0xD7 // RSTn
}

// segment is every marker segment as read from the file, before COM/EXIF
// APP1 are split out into core.Segment.
type segment struct {
	marker  byte
	payload []byte // empty for standalone markers
	isScan  bool   // true for the SOS header+entropy-coded-data blob
}

// Result is everything Read recovers from a JPEG file.
type Result struct {
	Segments []core.Segment
	segs     []segment // every segment in file order, for Write's passthrough
}

// Read walks marker segments per spec.md §4.1: COM becomes a
// SourceJPEGComment segment; an APP1 beginning "Exif\0\0" is handed to the
// EXIF engine; SOS is followed by a byte-by-byte scan of the
// entropy-coded data (FF 00 as an escaped FF) until the next real marker;
// SOI/EOI/RSTn are standalone.
func Read(buf []byte) (Result, error) {
	var res Result
	if !binutil.IsJPEG(buf) {
		return res, ErrInvalidSignature
	}
	pos := 0
	for pos < len(buf) {
		if buf[pos] != 0xFF {
			return res, ErrCorruptedSegment
		}
		if pos+1 >= len(buf) {
			return res, ErrCorruptedSegment
		}
		marker := buf[pos+1]
		pos += 2

		if isStandalone(marker) {
			res.segs = append(res.segs, segment{marker: marker})
			if marker == markerEOI {
				return res, nil
			}
			continue
		}

		if pos+2 > len(buf) {
			return res, ErrCorruptedSegment
		}
		length := int(buf[pos])<<8 | int(buf[pos+1])
		if length < 2 || pos+length > len(buf) {
			return res, ErrCorruptedSegment
		}
		payload := buf[pos+2 : pos+length]
		pos += length

		if marker == markerSOS {
			scanStart := pos
			for pos < len(buf)-1 {
				if buf[pos] == 0xFF && buf[pos+1] != 0x00 && !(buf[pos+1] >= 0xD0 && buf[pos+1] <= 0xD7) {
					break
				}
				pos++
			}
			scanData := buf[scanStart:pos]
			full := append(append([]byte{}, payload...), scanData...)
			res.segs = append(res.segs, segment{marker: marker, payload: full, isScan: true})
			continue
		}

		res.segs = append(res.segs, segment{marker: marker, payload: append([]byte{}, payload...)})

		switch marker {
		case markerCOM:
			res.Segments = append(res.Segments, core.Segment{Source: core.SourceJPEGComment, Data: string(payload)})
		case markerAPP1:
			if bytes.HasPrefix(payload, []byte("Exif\x00\x00")) {
				res.Segments = append(res.Segments, exifSegments(payload[6:])...)
			}
		}
	}
	return res, ErrCorruptedSegment
}

// exifSegments hands an APP1 EXIF payload to the exif engine and
// translates its Block into core.Segment entries. ImageDescription/Make
// are read via the goexif-backed ExtractStringTags first (the teacher's
// ViewEXIF/viewJPEG read exactly this way), falling back to Parse's
// hand-rolled fields when goexif can't decode the block; UserComment
// always goes through Parse, since goexif's Tag.String() collapses the
// raw encoding-designator bytes DecodeUserComment needs.
func exifSegments(tiffBlock []byte) []core.Segment {
	block, err := exif.Parse(tiffBlock)
	if err != nil {
		return nil
	}

	imageDescription, hasImageDescription := block.ImageDescription, block.HasImageDescription
	make_, hasMake := block.Make, block.HasMake
	if tags := exif.ExtractStringTags(tiffBlock); tags.Decoded {
		imageDescription, hasImageDescription = tags.ImageDescription, tags.HasImageDescription
		make_, hasMake = tags.Make, tags.HasMake
	}

	var out []core.Segment
	if hasImageDescription {
		prefix, rest := exif.SplitPrefix(imageDescription)
		out = append(out, core.Segment{Source: core.SourceEXIFImageDescription, Data: rest, Prefix: prefix})
	}
	if hasMake {
		prefix, rest := exif.SplitPrefix(make_)
		out = append(out, core.Segment{Source: core.SourceEXIFMake, Data: rest, Prefix: prefix})
	}
	if block.HasUserComment {
		if text, ok := exif.DecodeUserComment(block.UserCommentRaw); ok {
			out = append(out, core.Segment{Source: core.SourceEXIFUserComment, Data: text})
		}
	}
	return out
}
