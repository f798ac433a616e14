package exif

import (
	"bytes"
	"encoding/binary"
)

// EmitFields selects what Build writes into a fresh TIFF block.
type EmitFields struct {
	ImageDescription    string
	HasImageDescription bool
	Make                string
	HasMake              bool
	// UserComment, when set, is written with an encoding prefix chosen by
	// EncodeUserComment unless RawUserComment is true, in which case it is
	// written as bare UTF-8 (spec.md §4.2, ComfyUI JSON compatibility).
	UserComment    string
	HasUserComment bool
	RawUserComment bool
}

// Build reconstructs a minimal "II"-byte-order TIFF block: a two-entry
// IFD0 for ImageDescription/Make when supplied, and an Exif sub-IFD
// pointer plus sub-IFD for UserComment when supplied (spec.md §4.2
// "Emit"). This generalizes the teacher's buildMinimalEXIF
// (core/image/image.go), which already rebuilds an IFD0 from a field map
// for JPEG EXIF editing — Build adds the Exif sub-IFD pointer/UserComment
// half that editor never needed.
//
// The output is not guaranteed byte-identical to any original TIFF block
// (padding, offset reuse, and entry ordering may differ); spec.md §9 only
// requires content equivalence on round-trip, not byte-exactness.
func Build(f EmitFields) []byte {
	type entry struct {
		tag   uint16
		typ   uint16
		count uint32
		value []byte // resolved bytes; inlined if <=4, else placed in the value area
	}

	var ifd0 []entry
	if f.HasImageDescription {
		ifd0 = append(ifd0, entry{tag: tagImageDescription, typ: typeASCII, count: uint32(len(f.ImageDescription) + 1), value: nulTerminate(f.ImageDescription)})
	}
	if f.HasMake {
		ifd0 = append(ifd0, entry{tag: tagMake, typ: typeASCII, count: uint32(len(f.Make) + 1), value: nulTerminate(f.Make)})
	}

	var exifIFD []entry
	if f.HasUserComment {
		var payload []byte
		if f.RawUserComment {
			payload = EncodeUserCommentRaw(f.UserComment)
		} else {
			payload = EncodeUserComment(f.UserComment)
		}
		exifIFD = append(exifIFD, entry{tag: tagUserComment, typ: typeUndefined, count: uint32(len(payload)), value: payload})
	}

	hasExifIFD := len(exifIFD) > 0
	numIFD0Entries := len(ifd0)
	if hasExifIFD {
		numIFD0Entries++ // for the Exif IFD pointer entry
	}

	// Layout: header(8) | IFD0 header+entries+next-offset | IFD0 value area
	//        | [Exif IFD header+entries+next-offset | Exif IFD value area]
	const headerSize = 8
	ifd0HeaderSize := 2 + numIFD0Entries*12 + 4
	ifd0Start := headerSize
	ifd0ValueStart := ifd0Start + ifd0HeaderSize

	var ifd0Values bytes.Buffer
	ifd0Entries := make([]entry, len(ifd0))
	copy(ifd0Entries, ifd0)
	inlineOrOffset := func(valueStart int, values *bytes.Buffer, e entry) (inline [4]byte, offset uint32, isInline bool) {
		if len(e.value) <= 4 {
			copy(inline[:], e.value)
			return inline, 0, true
		}
		off := uint32(valueStart + values.Len())
		values.Write(e.value)
		return inline, off, false
	}

	exifIFDStart := ifd0ValueStart + ifd0Values.Len()

	var buf bytes.Buffer
	buf.WriteString("II")
	buf.Write([]byte{0x2A, 0x00})
	binary.Write(&buf, binary.LittleEndian, uint32(ifd0Start))

	var ifd0Body bytes.Buffer
	binary.Write(&ifd0Body, binary.LittleEndian, uint16(numIFD0Entries))
	for _, e := range ifd0 {
		inline, offset, isInline := inlineOrOffset(ifd0ValueStart, &ifd0Values, e)
		binary.Write(&ifd0Body, binary.LittleEndian, e.tag)
		binary.Write(&ifd0Body, binary.LittleEndian, e.typ)
		binary.Write(&ifd0Body, binary.LittleEndian, e.count)
		if isInline {
			ifd0Body.Write(inline[:])
		} else {
			binary.Write(&ifd0Body, binary.LittleEndian, offset)
		}
	}
	if hasExifIFD {
		// recompute exifIFDStart now that ifd0Values is final length
		exifIFDStart = ifd0ValueStart + ifd0Values.Len()
		binary.Write(&ifd0Body, binary.LittleEndian, tagExifIFDPointer)
		binary.Write(&ifd0Body, binary.LittleEndian, uint16(typeLong))
		binary.Write(&ifd0Body, binary.LittleEndian, uint32(1))
		binary.Write(&ifd0Body, binary.LittleEndian, uint32(exifIFDStart))
	}
	binary.Write(&ifd0Body, binary.LittleEndian, uint32(0)) // next IFD offset

	buf.Write(ifd0Body.Bytes())
	buf.Write(ifd0Values.Bytes())

	if hasExifIFD {
		exifValueStart := exifIFDStart + 2 + len(exifIFD)*12 + 4
		var exifValues bytes.Buffer
		var exifBody bytes.Buffer
		binary.Write(&exifBody, binary.LittleEndian, uint16(len(exifIFD)))
		for _, e := range exifIFD {
			inline, offset, isInline := inlineOrOffset(exifValueStart, &exifValues, e)
			binary.Write(&exifBody, binary.LittleEndian, e.tag)
			binary.Write(&exifBody, binary.LittleEndian, e.typ)
			binary.Write(&exifBody, binary.LittleEndian, e.count)
			if isInline {
				exifBody.Write(inline[:])
			} else {
				binary.Write(&exifBody, binary.LittleEndian, offset)
			}
		}
		binary.Write(&exifBody, binary.LittleEndian, uint32(0))
		buf.Write(exifBody.Bytes())
		buf.Write(exifValues.Bytes())
	}

	return buf.Bytes()
}

func nulTerminate(s string) []byte {
	b := make([]byte, len(s)+1)
	copy(b, s)
	return b
}
