package exif

import (
	"bytes"
	"fmt"

	goexif "github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// tagDump accumulates decoded tag values keyed by field name, in the same
// shape as the teacher's exifWalker (core/image/image.go): a map plus a
// Walk method satisfying goexif's tiff.Walker interface.
type tagDump struct {
	fields map[string]string
}

func (w *tagDump) Walk(name goexif.FieldName, tag *tiff.Tag) error {
	switch tag.Type {
	case tiff.DTAscii, tiff.DTUndefined:
		// StringVal is the ASCII text up to its first NUL; String() would
		// return it JSON-quoted.
		if s, err := tag.StringVal(); err == nil {
			w.fields[string(name)] = s
			return nil
		}
		w.fields[string(name)] = tag.String()
	default:
		w.fields[string(name)] = tag.String()
	}
	return nil
}

// DumpTags decodes a full "Exif\0\0"-prefixed or bare-TIFF block with
// github.com/rwcarlsen/goexif and returns every field it recognizes as a
// string, keyed by EXIF field name. It is the library-backed counterpart
// to Parse: Parse hand-walks the IFD to get at raw tag bytes (required
// for UserComment's encoding prefix, which goexif's Tag.String() already
// collapses to text), while DumpTags exercises goexif directly wherever a
// plain string dump is enough, exactly as the teacher's ViewEXIF
// (core/jpg/exif.go) and viewJPEG (core/image/image.go) do.
func DumpTags(block []byte) (map[string]string, error) {
	r := bytes.NewReader(withExifPrefix(block))
	x, err := goexif.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("exif: goexif decode: %w", err)
	}
	w := &tagDump{fields: make(map[string]string)}
	if err := x.Walk(w); err != nil {
		return nil, fmt.Errorf("exif: goexif walk: %w", err)
	}
	return w.fields, nil
}

// StringTags is ExtractStringTags's result: the ImageDescription/Make
// fields goexif decoded, plus whether goexif managed to decode the block
// at all (Decoded=false tells the caller to fall back to Parse's
// hand-rolled IFD walk instead of trusting the zero values below).
type StringTags struct {
	ImageDescription    string
	HasImageDescription bool
	Make                string
	HasMake             bool
	Decoded             bool
}

// ExtractStringTags is the goexif-backed ImageDescription/Make decode
// path jpeg.exifSegments/webp.exifSegments call first (the teacher's own
// ViewEXIF/viewJPEG use goexif for exactly this plain string-tag read).
// UserComment is not returned here: goexif's Tag.String() collapses the
// encoding-designator prefix DecodeUserComment needs, so UserComment
// always comes from Parse's raw-byte walk regardless of what goexif
// reports.
func ExtractStringTags(block []byte) StringTags {
	tags, err := DumpTags(block)
	if err != nil {
		return StringTags{}
	}
	out := StringTags{Decoded: true}
	if v, ok := tags["ImageDescription"]; ok {
		out.ImageDescription, out.HasImageDescription = v, true
	}
	if v, ok := tags["Make"]; ok {
		out.Make, out.HasMake = v, true
	}
	return out
}

// withExifPrefix ensures block carries the "Exif\0\0" prefix goexif.Decode
// expects; Parse's callers pass bare TIFF (no prefix), so this restores it
// rather than duplicating goexif's parsing from scratch.
func withExifPrefix(block []byte) []byte {
	prefix := []byte("Exif\x00\x00")
	if bytes.HasPrefix(block, prefix) {
		return block
	}
	out := make([]byte, 0, len(prefix)+len(block))
	out = append(out, prefix...)
	out = append(out, block...)
	return out
}
