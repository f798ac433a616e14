// Package webp implements the WebP container codec spec.md §4.1 describes:
// a RIFF chunk walker that extracts the EXIF chunk (handing it to the EXIF
// engine) while preserving VP8/VP8L/VP8X/ALPH/ANIM/ANMF/ICCP/XMP chunks
// untouched, and a writer that repositions a replacement EXIF chunk per
// the format's ordering rule.
//
// Generalizes the teacher's viewWebP/stripWebP RIFF walk
// (core/image/image.go) — same offset/size/pad loop — into a full
// roundtrip writer the teacher's read-only/strip-only version never
// needed.
package webp

import (
	"bytes"
	"encoding/binary"
	"errors"

	"github.com/alex-voss/sdmeta/core"
	"github.com/alex-voss/sdmeta/core/binutil"
	"github.com/alex-voss/sdmeta/core/exif"
)

var (
	ErrInvalidRiffStructure = errors.New("webp: invalid RIFF structure")
)

type chunk struct {
	typ  [4]byte
	data []byte
}

// Result is everything Read recovers from a WebP file.
type Result struct {
	Segments []core.Segment
	chunks   []chunk // every chunk in file order, excluding the 12-byte RIFF/WEBP header
}

// Read walks RIFF chunks {type:4 ASCII, size:u32le, data, pad:0-or-1}
// (spec.md §4.1). Extracts EXIF (handed to the EXIF engine); every other
// chunk type is preserved untouched.
func Read(buf []byte) (Result, error) {
	var res Result
	if !binutil.IsWebP(buf) {
		return res, ErrInvalidRiffStructure
	}
	pos := 12
	for pos+8 <= len(buf) {
		var typ [4]byte
		copy(typ[:], buf[pos:pos+4])
		size := binary.LittleEndian.Uint32(buf[pos+4 : pos+8])
		pos += 8
		if pos+int(size) > len(buf) {
			return res, ErrInvalidRiffStructure
		}
		data := buf[pos : pos+int(size)]
		pos += int(size)
		if size%2 == 1 {
			pos++ // padding byte
		}

		res.chunks = append(res.chunks, chunk{typ: typ, data: append([]byte{}, data...)})

		if string(typ[:]) == "EXIF" {
			res.Segments = append(res.Segments, exifSegments(data)...)
		}
	}
	return res, nil
}

// exifSegments hands an EXIF chunk's TIFF block to the exif engine.
// ImageDescription/Make are read via the goexif-backed ExtractStringTags
// first, falling back to Parse's hand-rolled fields when goexif can't
// decode the block; UserComment always goes through Parse (see
// jpeg.exifSegments for why).
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

// Write removes any existing EXIF chunk, synthesizes a fresh one if
// segments are supplied, and inserts it after VP8X/ICCP and before
// VP8/VP8L (spec.md §4.1 "Writer"). Recomputes the outer RIFF size and
// maintains even-byte padding.
func Write(original []byte, segments []core.Segment) ([]byte, error) {
	parsed, err := Read(original)
	if err != nil {
		return nil, err
	}

	var kept []chunk
	for _, c := range parsed.chunks {
		if string(c.typ[:]) == "EXIF" {
			continue
		}
		kept = append(kept, c)
	}

	fields := exif.EmitFields{}
	for _, s := range segments {
		switch s.Source {
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

	var exifChunk *chunk
	if fields.HasImageDescription || fields.HasMake || fields.HasUserComment {
		tiffBlock := exif.Build(fields)
		var typ [4]byte
		copy(typ[:], "EXIF")
		exifChunk = &chunk{typ: typ, data: tiffBlock}
	}

	insertAt := len(kept) // default: append at the end
	for i, c := range kept {
		t := string(c.typ[:])
		if t == "VP8 " || t == "VP8L" {
			insertAt = i
			break
		}
	}

	var ordered []chunk
	ordered = append(ordered, kept[:insertAt]...)
	if exifChunk != nil {
		ordered = append(ordered, *exifChunk)
	}
	ordered = append(ordered, kept[insertAt:]...)

	var body bytes.Buffer
	for _, c := range ordered {
		writeChunk(&body, c)
	}

	var out bytes.Buffer
	out.WriteString("RIFF")
	var sizeBuf [4]byte
	binary.LittleEndian.PutUint32(sizeBuf[:], uint32(4+body.Len())) // "WEBP" + chunks
	out.Write(sizeBuf[:])
	out.WriteString("WEBP")
	out.Write(body.Bytes())
	return out.Bytes(), nil
}

func writeChunk(buf *bytes.Buffer, c chunk) {
	buf.Write(c.typ[:])
	var sizeBuf [4]byte
	binary.LittleEndian.PutUint32(sizeBuf[:], uint32(len(c.data)))
	buf.Write(sizeBuf[:])
	buf.Write(c.data)
	if len(c.data)%2 == 1 {
		buf.WriteByte(0)
	}
}
