// Package exif implements the EXIF/TIFF engine spec.md §4.2 describes:
// locating ImageDescription, Make, and (via the Exif sub-IFD) UserComment
// inside a TIFF block, decoding UserComment's 8-byte encoding designator,
// and reconstructing a minimal TIFF block on write.
//
// The IFD walk is hand-rolled over core/binutil, in the same manual
// byte-cursor style the teacher uses for every structural walk it does
// itself (readPNGChunks, parseJPEGSegments, viewWebP in
// core/image/image.go) — the teacher only reaches for
// github.com/rwcarlsen/goexif where a plain tag dump suffices (see
// DumpTags/ExtractStringTags below), never for anything that needs the
// entry's raw bytes the way UserComment's encoding prefix does.
package exif

import (
	"fmt"

	"github.com/alex-voss/sdmeta/core/binutil"
)

// Tag IDs this engine cares about (spec.md §4.2).
const (
	tagImageDescription = 0x010E
	tagMake              = 0x010F
	tagExifIFDPointer     = 0x8769
	tagUserComment        = 0x9286
)

// TIFF entry data types and their byte sizes (TIFF 6.0 §2).
const (
	typeByte      = 1
	typeASCII     = 2
	typeShort     = 3
	typeLong      = 4
	typeRational  = 5
	typeUndefined = 7
)

func typeSize(t uint16) int {
	switch t {
	case typeByte, typeASCII, typeUndefined:
		return 1
	case typeShort:
		return 2
	case typeLong:
		return 4
	case typeRational:
		return 8
	default:
		return 1
	}
}

// Block is the result of parsing a TIFF block's IFD0 (and, when present,
// its Exif sub-IFD).
type Block struct {
	ImageDescription    string
	HasImageDescription bool
	Make                string
	HasMake              bool
	// UserCommentRaw is the full tag payload (encoding designator + text
	// bytes), as found — callers call DecodeUserComment on it.
	UserCommentRaw    []byte
	HasUserComment    bool
}

type ifdEntry struct {
	tag           uint16
	typ           uint16
	count         uint32
	valueOrOffset uint32
	// rawOffsetBytes holds the 4 bytes at the entry's value/offset slot,
	// needed when the value is inline (count*size <= 4).
	rawOffsetBytes [4]byte
}

// Parse walks IFD0 of a TIFF block (spec.md §4.2). data must start at the
// byte-order mark ("II" or "MM"); JPEG/WebP codecs strip their own
// container-specific prefix ("Exif\0\0" / none) before calling this.
func Parse(data []byte) (Block, error) {
	var b Block
	if len(data) < 8 {
		return b, fmt.Errorf("%w: TIFF block too short", errShort)
	}

	bigEndian, err := byteOrder(data[0:2])
	if err != nil {
		return b, err
	}
	rd := newTiffReader(data, bigEndian)

	magic, err := rd.u16(2)
	if err != nil || magic != 42 {
		return b, fmt.Errorf("%w: bad TIFF magic", errShort)
	}
	ifd0Offset, err := rd.u32(4)
	if err != nil {
		return b, err
	}

	entries, err := readIFD(rd, int(ifd0Offset))
	if err != nil {
		return b, err
	}

	var exifIFDOffset uint32
	var hasExifIFD bool
	for _, e := range entries {
		switch e.tag {
		case tagImageDescription:
			if s, ok := rd.stringValue(e); ok {
				b.ImageDescription = s
				b.HasImageDescription = true
			}
		case tagMake:
			if s, ok := rd.stringValue(e); ok {
				b.Make = s
				b.HasMake = true
			}
		case tagExifIFDPointer:
			exifIFDOffset = e.valueOrOffset
			hasExifIFD = true
		}
	}

	if hasExifIFD {
		subEntries, err := readIFD(rd, int(exifIFDOffset))
		if err == nil {
			for _, e := range subEntries {
				if e.tag == tagUserComment {
					if raw, ok := rd.rawValue(e); ok {
						b.UserCommentRaw = raw
						b.HasUserComment = true
					}
				}
			}
		}
	}

	return b, nil
}

func byteOrder(mark []byte) (bigEndian bool, err error) {
	switch string(mark) {
	case "II":
		return false, nil
	case "MM":
		return true, nil
	default:
		return false, fmt.Errorf("%w: unrecognised byte order mark", errShort)
	}
}

type tiffReader struct {
	data      []byte
	bigEndian bool
}

func newTiffReader(data []byte, bigEndian bool) *tiffReader {
	return &tiffReader{data: data, bigEndian: bigEndian}
}

func (r *tiffReader) u16(off int) (uint16, error) {
	c := &binutil.Cursor{Buf: r.data, Pos: off}
	if r.bigEndian {
		return c.U16BE()
	}
	return c.U16LE()
}

func (r *tiffReader) u32(off int) (uint32, error) {
	c := &binutil.Cursor{Buf: r.data, Pos: off}
	if r.bigEndian {
		return c.U32BE()
	}
	return c.U32LE()
}

// readIFD reads a single IFD's entry list at byte offset off (spec.md
// §4.2: "{tag:u16, type:u16, count:u32, valueOrOffset:u32}").
func readIFD(r *tiffReader, off int) ([]ifdEntry, error) {
	if off <= 0 || off+2 > len(r.data) {
		return nil, fmt.Errorf("%w: IFD offset out of bounds", errShort)
	}
	count, err := r.u16(off)
	if err != nil {
		return nil, err
	}
	entries := make([]ifdEntry, 0, count)
	base := off + 2
	for i := 0; i < int(count); i++ {
		entOff := base + i*12
		if entOff+12 > len(r.data) {
			break // out-of-bounds entry: skip silently per spec.md §4.2
		}
		tag, _ := r.u16(entOff)
		typ, _ := r.u16(entOff + 2)
		cnt, _ := r.u32(entOff + 4)
		valOff, _ := r.u32(entOff + 8)
		var raw [4]byte
		copy(raw[:], r.data[entOff+8:entOff+12])
		entries = append(entries, ifdEntry{tag: tag, typ: typ, count: cnt, valueOrOffset: valOff, rawOffsetBytes: raw})
	}
	return entries, nil
}

// rawValue returns the entry's raw byte payload, resolving an out-of-line
// offset when the value doesn't fit inline. Out-of-bounds offsets return
// ok=false (spec.md §4.2: "silently skipped").
func (r *tiffReader) rawValue(e ifdEntry) (data []byte, ok bool) {
	size := typeSize(e.typ) * int(e.count)
	if size <= 4 {
		return append([]byte{}, e.rawOffsetBytes[:size]...), true
	}
	start := int(e.valueOrOffset)
	if start < 0 || start+size > len(r.data) {
		return nil, false
	}
	return append([]byte{}, r.data[start:start+size]...), true
}

// stringValue decodes an ASCII/undefined entry's value as a NUL-trimmed
// UTF-8 string (spec.md §4.2: "ImageDescription / Make ... UTF-8 with
// trailing NUL stripped").
func (r *tiffReader) stringValue(e ifdEntry) (string, bool) {
	raw, ok := r.rawValue(e)
	if !ok {
		return "", false
	}
	for len(raw) > 0 && raw[len(raw)-1] == 0 {
		raw = raw[:len(raw)-1]
	}
	return string(raw), true
}

var errShort = fmt.Errorf("exif: truncated or malformed TIFF block")
