package jpeg

import (
	"bytes"

	"github.com/alex-voss/sdmeta/core"
	"github.com/alex-voss/sdmeta/core/exif"
)

// Write parses the original, drops any existing COM and EXIF APP1,
// inserts replacement APP1/COM segments immediately after SOI (or after
// an existing JFIF APP0 if present), and passes every other segment
// through byte-for-byte, re-emitting the final EOI (spec.md §4.1
// "Writer"). segments should use only SourceEXIF*/SourceJPEGComment
// entries; EXIF segments are merged into a single APP1.
func Write(original []byte, segments []core.Segment) ([]byte, error) {
	parsed, err := Read(original)
	if err != nil && err != ErrCorruptedSegment {
		return nil, err
	}
	if len(parsed.segs) == 0 {
		return nil, ErrInvalidSignature
	}

	var kept []segment
	for _, s := range parsed.segs {
		if s.marker == markerCOM || (s.marker == markerAPP1 && bytes.HasPrefix(s.payload, []byte("Exif\x00\x00"))) {
			continue // dropped: replaced wholesale by the supplied segments
		}
		kept = append(kept, s)
	}

	var buf bytes.Buffer
	buf.WriteByte(0xFF)
	buf.WriteByte(0xD8) // SOI

	skip := 1 // kept[0] is SOI, already written above
	if len(kept) > 1 && kept[1].marker == markerAPP0 {
		writeSegment(&buf, kept[1])
		skip = 2
	}

	for _, s := range buildReplacementSegments(segments) {
		writeSegment(&buf, s)
	}

	for i := skip; i < len(kept); i++ {
		writeSegment(&buf, kept[i])
	}

	return buf.Bytes(), nil
}

func writeSegment(buf *bytes.Buffer, s segment) {
	buf.WriteByte(0xFF)
	buf.WriteByte(s.marker)
	if isStandalone(s.marker) {
		return
	}
	length := len(s.payload) + 2
	buf.WriteByte(byte(length >> 8))
	buf.WriteByte(byte(length & 0xFF))
	buf.Write(s.payload)
}

// buildReplacementSegments groups EXIF segments into a single APP1 and
// turns a SourceJPEGComment segment into a COM marker.
func buildReplacementSegments(segments []core.Segment) []segment {
	var comment *core.Segment
	fields := exif.EmitFields{}
	for i := range segments {
		s := segments[i]
		switch s.Source {
		case core.SourceJPEGComment:
			comment = &s
		case core.SourceEXIFImageDescription:
			fields.ImageDescription = s.Prefix + s.Data
			fields.HasImageDescription = true
		case core.SourceEXIFMake:
			fields.Make = s.Prefix + s.Data
			fields.HasMake = true
		case core.SourceEXIFUserComment:
			fields.UserComment = s.Data
			fields.HasUserComment = true
		}
	}

	var out []segment
	if fields.HasImageDescription || fields.HasMake || fields.HasUserComment {
		tiffBlock := exif.Build(fields)
		payload := append([]byte("Exif\x00\x00"), tiffBlock...)
		out = append(out, segment{marker: markerAPP1, payload: payload})
	}
	if comment != nil {
		out = append(out, segment{marker: markerCOM, payload: []byte(comment.Data)})
	}
	return out
}
