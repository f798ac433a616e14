package png_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alex-voss/sdmeta/core"
	"github.com/alex-voss/sdmeta/core/png"
	"github.com/alex-voss/sdmeta/internal/corpus"
)

func TestReadTEXtChunk(t *testing.T) {
	buf := corpus.MinimalPNG([][2]string{{"parameters", "a lovely cat, Steps: 20"}})

	res, err := png.Read(buf)
	require.NoError(t, err)
	require.Len(t, res.Chunks, 1)
	assert.Equal(t, core.PNGText, res.Chunks[0].Kind)
	assert.Equal(t, "parameters", res.Chunks[0].Keyword)
	assert.Equal(t, "a lovely cat, Steps: 20", res.Chunks[0].Text)
	assert.Equal(t, uint32(1), res.Dims.Width)
	assert.Equal(t, uint32(1), res.Dims.Height)
}

func TestReadInvalidSignature(t *testing.T) {
	_, err := png.Read([]byte("not a png"))
	assert.ErrorIs(t, err, png.ErrInvalidSignature)
}

func TestReadCorruptedChunkLength(t *testing.T) {
	buf := corpus.MinimalPNG(nil)
	// Corrupt the IHDR chunk's declared length to overrun the buffer.
	buf[8] = 0xFF
	_, err := png.Read(buf)
	assert.ErrorIs(t, err, png.ErrCorruptedChunk)
}

func TestWriteRoundTrip(t *testing.T) {
	original := corpus.MinimalPNG([][2]string{{"Title", "old"}})

	out, err := png.Write(original, []core.PNGChunk{
		{Kind: core.PNGText, Keyword: "parameters", Text: "Steps: 20, Sampler: Euler"},
	})
	require.NoError(t, err)

	res, err := png.Read(out)
	require.NoError(t, err)
	require.Len(t, res.Chunks, 1)
	assert.Equal(t, "parameters", res.Chunks[0].Keyword)
	assert.Equal(t, "Steps: 20, Sampler: Euler", res.Chunks[0].Text)
}

func TestWriteChoosesITXtForNonLatin1Text(t *testing.T) {
	original := corpus.MinimalPNG(nil)

	out, err := png.Write(original, []core.PNGChunk{
		{Kind: core.PNGText, Keyword: "prompt", Text: "猫の写真"},
	})
	require.NoError(t, err)

	res, err := png.Read(out)
	require.NoError(t, err)
	require.Len(t, res.Chunks, 1)
	assert.Equal(t, core.PNGInternationalText, res.Chunks[0].Kind)
	assert.Equal(t, "猫の写真", res.Chunks[0].Text)
}

func TestWriteRejectsOversizedKeyword(t *testing.T) {
	original := corpus.MinimalPNG(nil)
	longKeyword := ""
	for i := 0; i < 80; i++ {
		longKeyword += "a"
	}

	_, err := png.Write(original, []core.PNGChunk{{Keyword: longKeyword, Text: "x"}})
	assert.ErrorIs(t, err, png.ErrInvalidKeyword)
}

func TestWriteNeverMutatesOriginal(t *testing.T) {
	original := corpus.MinimalPNG([][2]string{{"Title", "old"}})
	originalCopy := append([]byte{}, original...)

	_, err := png.Write(original, []core.PNGChunk{{Keyword: "parameters", Text: "Steps: 1"}})
	require.NoError(t, err)
	assert.Equal(t, originalCopy, original)
}
