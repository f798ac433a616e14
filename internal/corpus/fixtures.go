package corpus

import (
	"bytes"
	"encoding/binary"

	"github.com/alex-voss/sdmeta/core/png"
)

// MinimalPNG synthesizes a valid 1x1 PNG with the given keyword/text pairs
// spliced in as tEXt chunks, IHDR first and IEND last — the smallest fixture
// core/png.Read will accept. Built by hand the same way the teacher's
// writePNGChunk/crc32PNG do (core/image/image.go), since there is no
// on-disk sample corpus in this retrieval pack to draw a fixture from.
func MinimalPNG(chunks [][2]string) []byte {
	var buf bytes.Buffer
	buf.Write([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A})

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], 1) // width
	binary.BigEndian.PutUint32(ihdr[4:8], 1) // height
	ihdr[8] = 8    // bit depth
	ihdr[9] = 2    // color type: truecolor
	ihdr[10] = 0   // compression
	ihdr[11] = 0   // filter
	ihdr[12] = 0   // interlace
	writeChunk(&buf, "IHDR", ihdr)

	for _, kv := range chunks {
		keyword, text := kv[0], kv[1]
		data := append(append([]byte(keyword), 0), []byte(text)...)
		writeChunk(&buf, "tEXt", data)
	}

	writeChunk(&buf, "IEND", nil)
	return buf.Bytes()
}

func writeChunk(buf *bytes.Buffer, typ string, data []byte) {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(data)))
	buf.Write(lenBuf[:])
	buf.WriteString(typ)
	buf.Write(data)
	var t [4]byte
	copy(t[:], typ)
	var crcBuf [4]byte
	binary.BigEndian.PutUint32(crcBuf[:], png.CRC32(t, data))
	buf.Write(crcBuf[:])
}

// MinimalJPEG synthesizes a JPEG with just SOI, an optional APP1/COM
// payload, a minimal SOS+entropy stub, and EOI — enough for
// core/jpeg.Read's segment walk to exercise its SOI, APP1, COM, SOS-scan
// and EOI handling without a real compressed image.
func MinimalJPEG(app1 []byte, comment string) []byte {
	var buf bytes.Buffer
	buf.Write([]byte{0xFF, 0xD8}) // SOI

	if len(app1) > 0 {
		writeSegment(&buf, 0xE1, app1)
	}
	if comment != "" {
		writeSegment(&buf, 0xFE, []byte(comment))
	}

	// SOS header (trivial: 1 component) + escaped entropy data
	sos := []byte{0x01, 0x01, 0x00, 0x00, 0x3F, 0x00}
	writeSegment(&buf, 0xDA, sos)
	buf.Write([]byte{0xAB, 0xFF, 0x00, 0xCD}) // entropy data with an escaped FF
	buf.Write([]byte{0xFF, 0xD9})             // EOI
	return buf.Bytes()
}

func writeSegment(buf *bytes.Buffer, marker byte, payload []byte) {
	buf.WriteByte(0xFF)
	buf.WriteByte(marker)
	length := len(payload) + 2
	buf.WriteByte(byte(length >> 8))
	buf.WriteByte(byte(length & 0xFF))
	buf.Write(payload)
}

// MinimalWebP synthesizes a lossy WebP (VP8 chunk stub) with an optional
// EXIF chunk, maintaining RIFF even-byte padding.
func MinimalWebP(exifData []byte) []byte {
	var body bytes.Buffer
	writeRiffChunk(&body, "VP8 ", []byte{0x00, 0x01, 0x02, 0x03})
	if len(exifData) > 0 {
		writeRiffChunk(&body, "EXIF", exifData)
	}

	var out bytes.Buffer
	out.WriteString("RIFF")
	var sizeBuf [4]byte
	binary.LittleEndian.PutUint32(sizeBuf[:], uint32(4+body.Len()))
	out.Write(sizeBuf[:])
	out.WriteString("WEBP")
	out.Write(body.Bytes())
	return out.Bytes()
}

func writeRiffChunk(buf *bytes.Buffer, typ string, data []byte) {
	buf.WriteString(typ)
	var sizeBuf [4]byte
	binary.LittleEndian.PutUint32(sizeBuf[:], uint32(len(data)))
	buf.Write(sizeBuf[:])
	buf.Write(data)
	if len(data)%2 == 1 {
		buf.WriteByte(0)
	}
}
