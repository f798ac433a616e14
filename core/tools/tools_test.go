package tools_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alex-voss/sdmeta/core"
	"github.com/alex-voss/sdmeta/core/tools"
)

func TestPNGRegistryNovelAI(t *testing.T) {
	entries := []core.Entry{
		{Keyword: "Software", Text: "NovelAI"},
		{Keyword: "Comment", Text: `{"prompt":"a cat","uc":"blurry","steps":28,"scale":5,"seed":1,"sampler":"k_euler"}`},
	}
	meta, matched, err := tools.PNGRegistry.Dispatch(entries, nil)
	require.NoError(t, err)
	require.True(t, matched)
	assert.Equal(t, core.SoftwareNovelAI, meta.Software)
	assert.Equal(t, "a cat", meta.Base.Prompt)
	assert.Equal(t, 28, meta.Base.Sampling.Steps)
}

func TestPNGRegistryComfyUI(t *testing.T) {
	entries := []core.Entry{
		{Keyword: "prompt", Text: `{"3":{"class_type":"KSampler","inputs":{"seed":1,"steps":20,"cfg":7,"sampler_name":"euler","scheduler":"normal","positive":["4",0],"negative":["5",0],"model":["6",0],"latent_image":["7",0]}},"4":{"class_type":"CLIPTextEncode","inputs":{"text":"a cat"}},"5":{"class_type":"CLIPTextEncode","inputs":{"text":"blurry"}},"6":{"class_type":"CheckpointLoaderSimple","inputs":{"ckpt_name":"model.safetensors"}},"7":{"class_type":"EmptyLatentImage","inputs":{"width":512,"height":512}}}`},
	}
	meta, matched, err := tools.PNGRegistry.Dispatch(entries, nil)
	require.NoError(t, err)
	require.True(t, matched)
	assert.Equal(t, core.SoftwareComfyUI, meta.Software)
	assert.Equal(t, "a cat", meta.Base.Prompt)
	assert.Equal(t, "blurry", meta.Base.NegativePrompt)
	assert.Equal(t, "model.safetensors", meta.Base.Model.Name)
	assert.Equal(t, 512, meta.Base.Width)
	assert.Len(t, meta.Nodes, 5)
}

func TestPNGRegistryA1111Fallback(t *testing.T) {
	entries := []core.Entry{
		{Keyword: "parameters", Text: "a cat\nNegative prompt: blurry\nSteps: 20, Sampler: Euler, Version: f2.1.0"},
	}
	meta, matched, err := tools.PNGRegistry.Dispatch(entries, nil)
	require.NoError(t, err)
	require.True(t, matched)
	assert.Equal(t, core.SoftwareForge, meta.Software)
	assert.Equal(t, "a cat", meta.Base.Prompt)
}

func TestPNGRegistryNoMatch(t *testing.T) {
	entries := []core.Entry{{Keyword: "Unrelated", Text: "nothing useful"}}
	_, matched, err := tools.PNGRegistry.Dispatch(entries, nil)
	require.NoError(t, err)
	assert.False(t, matched)
}

func TestJPEGRegistryA1111(t *testing.T) {
	segments := []core.Segment{
		{Source: core.SourceEXIFUserComment, Data: "a cat\nSteps: 10, Sampler: DPM++ 2M"},
	}
	meta, matched, err := tools.JPEGRegistry.Dispatch(nil, segments)
	require.NoError(t, err)
	require.True(t, matched)
	assert.Equal(t, core.SoftwareSDWebUI, meta.Software)
}
