package a1111_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alex-voss/sdmeta/core"
	"github.com/alex-voss/sdmeta/core/a1111"
)

func TestTokenizeFullDocument(t *testing.T) {
	raw := "a lovely cat\nNegative prompt: blurry, low quality\nSteps: 20, Sampler: Euler a, CFG scale: 7, Seed: 42, Size: 512x768, Model: foo"

	doc := a1111.Tokenize(raw)
	assert.Equal(t, "a lovely cat", doc.Prompt)
	require.True(t, doc.HasNegative)
	assert.Equal(t, "blurry, low quality", doc.NegativePrompt)

	require.NotEmpty(t, doc.Settings)
	byKey := map[string]string{}
	for _, s := range doc.Settings {
		byKey[s.Key] = s.Value
	}
	assert.Equal(t, "20", byKey["Steps"])
	assert.Equal(t, "Euler a", byKey["Sampler"])
	assert.Equal(t, "7", byKey["CFG scale"])
	assert.Equal(t, "42", byKey["Seed"])
	assert.Equal(t, "512x768", byKey["Size"])
	assert.Equal(t, "foo", byKey["Model"])
}

func TestTokenizePromptOnly(t *testing.T) {
	doc := a1111.Tokenize("just a prompt, nothing else")
	assert.Equal(t, "just a prompt, nothing else", doc.Prompt)
	assert.False(t, doc.HasNegative)
	assert.Empty(t, doc.Settings)
}

func TestTokenizeCharacterBlock(t *testing.T) {
	raw := "main prompt\n# Character 1 [0.25, 0.5]:\nred hair girl\n# Character 2:\nblue hair boy\nNegative prompt: bad anatomy"

	doc := a1111.Tokenize(raw)
	assert.Equal(t, "main prompt", doc.Prompt)
	require.Len(t, doc.CharacterPrompts, 2)
	assert.Equal(t, "red hair girl", doc.CharacterPrompts[0].Prompt)
	require.NotNil(t, doc.CharacterPrompts[0].Center)
	assert.Equal(t, 0.25, doc.CharacterPrompts[0].Center.X)
	assert.Equal(t, "blue hair boy", doc.CharacterPrompts[1].Prompt)
	assert.Nil(t, doc.CharacterPrompts[1].Center)
	assert.Equal(t, "bad anatomy", doc.NegativePrompt)
}

func TestSettingsLineHonorsQuotesAndBraces(t *testing.T) {
	raw := `prompt text
Steps: 20, Sampler: Euler, Lora hashes: "foo: abc123, bar: def456", Size: 512x512`

	doc := a1111.Tokenize(raw)
	byKey := map[string]string{}
	for _, s := range doc.Settings {
		byKey[s.Key] = s.Value
	}
	assert.Equal(t, `"foo: abc123, bar: def456"`, byKey["Lora hashes"])
	assert.Equal(t, "512x512", byKey["Size"])
}

func TestEmitCanonicalOrder(t *testing.T) {
	base := core.BaseMetadata{
		Width: 512, Height: 768,
		Model: &core.ModelInfo{Name: "foo", Hash: "abc"},
		Sampling: &core.SamplingInfo{
			Steps: 20, HasSteps: true,
			Sampler: "Euler a", HasSampler: true,
			CFGScale: 7, HasCFGScale: true,
			Seed: 42, HasSeed: true,
		},
	}

	text := a1111.Emit("a cat", "", false, nil, base, nil)
	assert.Equal(t, "a cat\nSteps: 20, Sampler: Euler a, CFG scale: 7, Seed: 42, Size: 512x768, Model hash: abc, Model: foo", text)
}

func TestEmitMergesExtrasPreservingSlotPosition(t *testing.T) {
	base := core.BaseMetadata{
		Sampling: &core.SamplingInfo{Steps: 20, HasSteps: true},
	}
	extras := []core.ExtraField{
		{Key: "Steps", Value: 30},
		{Key: "Version", Value: "f2.0.1"},
	}

	text := a1111.Emit("prompt", "", false, nil, base, extras)
	assert.Equal(t, "prompt\nSteps: 30, Version: f2.0.1", text)
}
