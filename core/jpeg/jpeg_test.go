package jpeg_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alex-voss/sdmeta/core"
	"github.com/alex-voss/sdmeta/core/exif"
	"github.com/alex-voss/sdmeta/core/jpeg"
	"github.com/alex-voss/sdmeta/internal/corpus"
)

func TestReadCOMSegment(t *testing.T) {
	buf := corpus.MinimalJPEG(nil, "Steps: 20, Sampler: Euler")

	res, err := jpeg.Read(buf)
	require.NoError(t, err)
	require.Len(t, res.Segments, 1)
	assert.Equal(t, core.SourceJPEGComment, res.Segments[0].Source)
	assert.Equal(t, "Steps: 20, Sampler: Euler", res.Segments[0].Data)
}

func TestReadEXIFUserCommentSegment(t *testing.T) {
	tiffBlock := exif.Build(exif.EmitFields{UserComment: "a prompt", HasUserComment: true})
	app1 := append([]byte("Exif\x00\x00"), tiffBlock...)
	buf := corpus.MinimalJPEG(app1, "")

	res, err := jpeg.Read(buf)
	require.NoError(t, err)
	require.Len(t, res.Segments, 1)
	assert.Equal(t, core.SourceEXIFUserComment, res.Segments[0].Source)
	assert.Equal(t, "a prompt", res.Segments[0].Data)
}

func TestReadInvalidSignature(t *testing.T) {
	_, err := jpeg.Read([]byte("not a jpeg"))
	assert.ErrorIs(t, err, jpeg.ErrInvalidSignature)
}

func TestReadTrailingLoneFFDoesNotPanic(t *testing.T) {
	buf := append([]byte{0xFF, 0xD8}, 0xFF)

	res, err := jpeg.Read(buf)
	assert.ErrorIs(t, err, jpeg.ErrCorruptedSegment)
	assert.Empty(t, res.Segments)
}

func TestWriteRoundTrip(t *testing.T) {
	original := corpus.MinimalJPEG(nil, "old comment")

	out, err := jpeg.Write(original, []core.Segment{
		{Source: core.SourceEXIFUserComment, Data: "new prompt text"},
	})
	require.NoError(t, err)

	res, err := jpeg.Read(out)
	require.NoError(t, err)
	require.Len(t, res.Segments, 1)
	assert.Equal(t, core.SourceEXIFUserComment, res.Segments[0].Source)
	assert.Equal(t, "new prompt text", res.Segments[0].Data)
}

func TestWriteDropsExistingComAndAPP1(t *testing.T) {
	tiffBlock := exif.Build(exif.EmitFields{UserComment: "old", HasUserComment: true})
	app1 := append([]byte("Exif\x00\x00"), tiffBlock...)
	original := corpus.MinimalJPEG(app1, "old comment")

	out, err := jpeg.Write(original, nil)
	require.NoError(t, err)

	res, err := jpeg.Read(out)
	require.NoError(t, err)
	assert.Empty(t, res.Segments)
}
