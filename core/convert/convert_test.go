package convert_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alex-voss/sdmeta/core"
	"github.com/alex-voss/sdmeta/core/convert"
	"github.com/alex-voss/sdmeta/core/tools"
)

func TestConvertIdentityReturnsRawUnchanged(t *testing.T) {
	result := core.ParseResult{Status: core.StatusSuccess, Raw: core.RawMetadata{Format: core.FormatPNG}}
	raw, warnings, err := convert.Convert(result, core.FormatPNG)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, core.FormatPNG, raw.Format)
}

func TestConvertUnrecognizedCrossFormatWarns(t *testing.T) {
	result := core.ParseResult{Status: core.StatusUnrecognized, Raw: core.RawMetadata{Format: core.FormatPNG}}
	raw, warnings, err := convert.Convert(result, core.FormatJPEG)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, core.WarningUnrecognizedCrossFormat, warnings[0].Reason)
	assert.Empty(t, raw.Chunks)
	assert.Empty(t, raw.Segments)
}

func TestConvertEmptyProducesEmptyContainer(t *testing.T) {
	result := core.ParseResult{Status: core.StatusEmpty, Raw: core.RawMetadata{Format: core.FormatPNG}}
	raw, warnings, err := convert.Convert(result, core.FormatJPEG)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, core.FormatJPEG, raw.Format)
	assert.Empty(t, raw.Chunks)
}

func TestConvertA1111FamilyPNGToJPEG(t *testing.T) {
	result := core.ParseResult{
		Status: core.StatusSuccess,
		Raw:    core.RawMetadata{Format: core.FormatPNG},
		Metadata: core.GenerationMetadata{
			Software: core.SoftwareSDWebUI,
			Base: core.BaseMetadata{
				Prompt: "a cat",
				Sampling: &core.SamplingInfo{
					Steps: 20, HasSteps: true,
				},
			},
		},
	}
	raw, warnings, err := convert.Convert(result, core.FormatJPEG)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, raw.Segments, 1)
	assert.Equal(t, core.SourceEXIFUserComment, raw.Segments[0].Source)
	assert.Contains(t, raw.Segments[0].Data, "a cat")
	assert.Contains(t, raw.Segments[0].Data, "Steps: 20")
}

func TestConvertNovelAIPNGToJPEG(t *testing.T) {
	result := core.ParseResult{
		Status: core.StatusSuccess,
		Raw:    core.RawMetadata{Format: core.FormatPNG},
		Metadata: core.GenerationMetadata{
			Software: core.SoftwareNovelAI,
			Base:     core.BaseMetadata{Prompt: "a cat", NegativePrompt: "blurry"},
		},
	}
	raw, _, err := convert.Convert(result, core.FormatJPEG)
	require.NoError(t, err)
	require.Len(t, raw.Segments, 1)
	assert.Contains(t, raw.Segments[0].Data, "a cat")
	assert.Contains(t, raw.Segments[0].Data, `"Software":"NovelAI"`)
}

// TestConvertNovelAICharacterPromptsRoundTripPNGWebPPNG covers spec.md
// scenario (d): a NovelAI PNG with three character prompts converted to
// WebP and back must still carry Software:"NovelAI" and all three
// character prompts, not just the bare prompt/negative-prompt text.
func TestConvertNovelAICharacterPromptsRoundTripPNGWebPPNG(t *testing.T) {
	original := core.GenerationMetadata{
		Software: core.SoftwareNovelAI,
		Base: core.BaseMetadata{
			Prompt:         "a shrine maiden",
			NegativePrompt: "blurry",
			Sampling:       &core.SamplingInfo{Scheduler: "karras", HasScheduler: true},
		},
		CharacterPrompts: []core.CharacterPrompt{
			{Prompt: "character one", Center: &core.Coord{X: 0.1, Y: 0.2}},
			{Prompt: "character two", Center: &core.Coord{X: 0.5, Y: 0.5}},
			{Prompt: "character three"},
		},
		HasUseCoords: true, UseCoords: true,
		HasUseOrder: true, UseOrder: true,
	}
	result := core.ParseResult{Status: core.StatusSuccess, Raw: core.RawMetadata{Format: core.FormatPNG}, Metadata: original}

	webpRaw, warnings, err := convert.Convert(result, core.FormatWebP)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, webpRaw.Segments, 1)

	reparsed, matched, err := tools.JPEGRegistry.Dispatch(nil, webpRaw.Segments)
	require.NoError(t, err)
	require.True(t, matched)
	assert.Equal(t, core.SoftwareNovelAI, reparsed.Software)
	require.Len(t, reparsed.CharacterPrompts, 3)

	pngRaw, warnings, err := convert.Convert(
		core.ParseResult{Status: core.StatusSuccess, Raw: webpRaw, Metadata: reparsed},
		core.FormatPNG,
	)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	entries := core.EntriesFromRaw(pngRaw)
	final, matched, err := tools.PNGRegistry.Dispatch(entries, nil)
	require.NoError(t, err)
	require.True(t, matched)
	assert.Equal(t, core.SoftwareNovelAI, final.Software)
	require.Len(t, final.CharacterPrompts, 3)
}
