package sdmeta_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sdmeta "github.com/alex-voss/sdmeta"
	"github.com/alex-voss/sdmeta/core"
	"github.com/alex-voss/sdmeta/internal/corpus"
)

func a1111PNG() []byte {
	return corpus.MinimalPNG([][2]string{
		{"parameters", "a lovely cat\nNegative prompt: blurry\nSteps: 20, Sampler: Euler a, CFG scale: 7, Seed: 42, Size: 512x512, Model: foo"},
	})
}

func TestReadA1111PNGSuccess(t *testing.T) {
	result := sdmeta.Read(a1111PNG())
	require.Equal(t, core.StatusSuccess, result.Status)
	assert.Equal(t, core.SoftwareSDWebUI, result.Metadata.Software)
	assert.Equal(t, "a lovely cat", result.Metadata.Base.Prompt)
	assert.Equal(t, 512, result.Metadata.Base.Width)
}

func TestReadEmptyPNG(t *testing.T) {
	result := sdmeta.Read(corpus.MinimalPNG(nil))
	assert.Equal(t, core.StatusEmpty, result.Status)
}

func TestReadUnrecognizedPNG(t *testing.T) {
	result := sdmeta.Read(corpus.MinimalPNG([][2]string{{"Unrelated", "nothing useful"}}))
	assert.Equal(t, core.StatusUnrecognized, result.Status)
}

func TestReadInvalidContainer(t *testing.T) {
	result := sdmeta.Read([]byte("not an image"))
	assert.Equal(t, core.StatusInvalid, result.Status)
}

func TestWriteSameFormatRoundTrip(t *testing.T) {
	original := a1111PNG()
	result := sdmeta.Read(original)
	require.Equal(t, core.StatusSuccess, result.Status)

	out, warnings, err := sdmeta.Write(original, result, sdmeta.WriteOptions{})
	require.NoError(t, err)
	assert.Empty(t, warnings)

	reread := sdmeta.Read(out)
	require.Equal(t, core.StatusSuccess, reread.Status)
	assert.Equal(t, "a lovely cat", reread.Metadata.Base.Prompt)
}

// TestWriteEmptyIntoNovelAIPNGStripsAllKnownChunks covers the scenario
// spec.md §8 calls out: writing an empty result into a non-empty NovelAI
// PNG yields a PNG bearing none of Title/Software/Source/Comment/
// parameters/prompt/workflow.
func TestWriteEmptyIntoNovelAIPNGStripsAllKnownChunks(t *testing.T) {
	original := corpus.MinimalPNG([][2]string{
		{"Title", "a cat"},
		{"Software", "NovelAI"},
		{"Source", "NovelAI Diffusion"},
		{"Comment", `{"prompt":"a cat","uc":"blurry","steps":28,"scale":5,"seed":1,"sampler":"k_euler"}`},
	})

	empty := core.ParseResult{Status: core.StatusEmpty, Raw: core.RawMetadata{Format: core.FormatPNG}}
	out, warnings, err := sdmeta.Write(original, empty, sdmeta.WriteOptions{})
	require.NoError(t, err)
	assert.Empty(t, warnings)

	reread := sdmeta.Read(out)
	assert.Equal(t, core.StatusEmpty, reread.Status)
	assert.Empty(t, reread.Raw.Chunks)

	forbidden := []string{"Title", "Software", "Source", "Comment", "parameters", "prompt", "workflow"}
	for _, e := range core.EntriesFromRaw(reread.Raw) {
		for _, f := range forbidden {
			assert.NotEqual(t, f, e.Keyword)
		}
	}
}

func TestWriteCrossFormatConvertsA1111(t *testing.T) {
	original := a1111PNG()
	result := sdmeta.Read(original)
	require.Equal(t, core.StatusSuccess, result.Status)

	targetJPEG := corpus.MinimalJPEG(nil, "")
	out, warnings, err := sdmeta.Write(targetJPEG, result, sdmeta.WriteOptions{})
	require.NoError(t, err)
	assert.Empty(t, warnings)

	reread := sdmeta.Read(out)
	require.Equal(t, core.StatusSuccess, reread.Status)
	assert.Equal(t, "a lovely cat", reread.Metadata.Base.Prompt)
}

func TestWriteUnrecognizedCrossFormatWithoutForceWarns(t *testing.T) {
	result := core.ParseResult{
		Status: core.StatusUnrecognized,
		Raw:    core.RawMetadata{Format: core.FormatPNG, Chunks: []core.PNGChunk{{Kind: core.PNGText, Keyword: "Unrelated", Text: "x"}}},
	}

	targetJPEG := corpus.MinimalJPEG(nil, "")
	out, warnings, err := sdmeta.Write(targetJPEG, result, sdmeta.WriteOptions{})
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, core.WarningUnrecognizedCrossFormat, warnings[0].Reason)

	reread := sdmeta.Read(out)
	assert.Equal(t, core.StatusEmpty, reread.Status)
}

func TestEmbedWritesA1111TextIntoPNG(t *testing.T) {
	original := corpus.MinimalPNG(nil)

	out, err := sdmeta.Embed(original, core.EmbedMetadata{
		Base: core.BaseMetadata{Prompt: "a dog", Sampling: &core.SamplingInfo{Steps: 30, HasSteps: true}},
	})
	require.NoError(t, err)

	result := sdmeta.Read(out)
	require.Equal(t, core.StatusSuccess, result.Status)
	assert.Equal(t, "a dog", result.Metadata.Base.Prompt)
	assert.Equal(t, 30, result.Metadata.Base.Sampling.Steps)
}

func TestStringifySuccessResult(t *testing.T) {
	result := sdmeta.Read(a1111PNG())
	require.Equal(t, core.StatusSuccess, result.Status)

	text := sdmeta.Stringify(result)
	assert.Contains(t, text, "a lovely cat")
	assert.Contains(t, text, "Steps: 20")
}

func TestStringifyUnrecognizedJoinsRawEntries(t *testing.T) {
	result := sdmeta.Read(corpus.MinimalPNG([][2]string{{"Unrelated", "nothing useful"}}))
	require.Equal(t, core.StatusUnrecognized, result.Status)

	text := sdmeta.Stringify(result)
	assert.Equal(t, "Unrelated: nothing useful", text)
}

func TestStringifyEmptyIsBlank(t *testing.T) {
	result := sdmeta.Read(corpus.MinimalPNG(nil))
	require.Equal(t, core.StatusEmpty, result.Status)
	assert.Empty(t, sdmeta.Stringify(result))
}
