package webp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alex-voss/sdmeta/core"
	"github.com/alex-voss/sdmeta/core/exif"
	"github.com/alex-voss/sdmeta/core/webp"
	"github.com/alex-voss/sdmeta/internal/corpus"
)

func TestReadEXIFChunk(t *testing.T) {
	tiffBlock := exif.Build(exif.EmitFields{UserComment: "a prompt", HasUserComment: true})
	buf := corpus.MinimalWebP(tiffBlock)

	res, err := webp.Read(buf)
	require.NoError(t, err)
	require.Len(t, res.Segments, 1)
	assert.Equal(t, core.SourceEXIFUserComment, res.Segments[0].Source)
	assert.Equal(t, "a prompt", res.Segments[0].Data)
}

func TestReadInvalidRiffStructure(t *testing.T) {
	_, err := webp.Read([]byte("not a webp"))
	assert.ErrorIs(t, err, webp.ErrInvalidRiffStructure)
}

func TestWriteRoundTrip(t *testing.T) {
	original := corpus.MinimalWebP(nil)

	out, err := webp.Write(original, []core.Segment{
		{Source: core.SourceEXIFUserComment, Data: "new prompt"},
	})
	require.NoError(t, err)

	res, err := webp.Read(out)
	require.NoError(t, err)
	require.Len(t, res.Segments, 1)
	assert.Equal(t, "new prompt", res.Segments[0].Data)
}

func TestWriteReplacesExistingEXIF(t *testing.T) {
	oldTiff := exif.Build(exif.EmitFields{UserComment: "old", HasUserComment: true})
	original := corpus.MinimalWebP(oldTiff)

	out, err := webp.Write(original, []core.Segment{
		{Source: core.SourceEXIFUserComment, Data: "fresh"},
	})
	require.NoError(t, err)

	res, err := webp.Read(out)
	require.NoError(t, err)
	require.Len(t, res.Segments, 1)
	assert.Equal(t, "fresh", res.Segments[0].Data)
}

func TestWriteMaintainsEvenPadding(t *testing.T) {
	original := corpus.MinimalWebP(nil)

	out, err := webp.Write(original, []core.Segment{
		{Source: core.SourceEXIFUserComment, Data: "four"}, // 8-byte designator + 4 + NUL = 13 bytes, so a 57-byte (odd) TIFF payload
	})
	require.NoError(t, err)
	assert.Equal(t, 0, len(out)%2)
}
