package tools

import (
	json "github.com/goccy/go-json"

	"github.com/alex-voss/sdmeta/core"
)

// invokeAIMetadata is InvokeAI's invokeai_metadata JSON shape (spec.md
// §4.5 "InvokeAI ... parsers. Each decodes its specific JSON shape.").
type invokeAIMetadata struct {
	PositivePrompt string  `json:"positive_prompt"`
	NegativePrompt string  `json:"negative_prompt"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	Steps          int     `json:"steps"`
	CFGScale       float64 `json:"cfg_scale"`
	Seed           int64   `json:"seed"`
	Scheduler      string  `json:"scheduler"`
	Model          *struct {
		Name string `json:"name"`
		Hash string `json:"hash"`
	} `json:"model"`
}

// ParseInvokeAI decodes the invokeai_metadata PNG entry.
func ParseInvokeAI(entries []core.Entry, _ []core.Segment) (core.GenerationMetadata, error) {
	raw, ok := entryText(entries, "invokeai_metadata")
	if !ok {
		return core.GenerationMetadata{}, core.ErrUnsupportedFormat
	}
	var m invokeAIMetadata
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return core.GenerationMetadata{}, core.ErrUnsupportedFormat
	}

	base := core.BaseMetadata{
		Prompt:         m.PositivePrompt,
		NegativePrompt: m.NegativePrompt,
		Width:          m.Width,
		Height:         m.Height,
		Sampling: &core.SamplingInfo{
			Steps: m.Steps, HasSteps: true,
			CFGScale: m.CFGScale, HasCFGScale: true,
			Seed: m.Seed, HasSeed: true,
			Scheduler: m.Scheduler, HasScheduler: m.Scheduler != "",
		},
	}
	if m.Model != nil {
		base.Model = &core.ModelInfo{Name: m.Model.Name, Hash: m.Model.Hash}
	}
	return core.GenerationMetadata{Software: core.SoftwareInvokeAI, Base: base}, nil
}

// tensorArtMetadata is TensorArt's generation_data JSON shape.
type tensorArtMetadata struct {
	Prompt         string  `json:"prompt"`
	NegativePrompt string  `json:"negativePrompt"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	Steps          int     `json:"steps"`
	CFGScale       float64 `json:"cfgScale"`
	Seed           int64   `json:"seed"`
	Sampler        string  `json:"sampler"`
	Model          string  `json:"model"`
}

// ParseTensorArt decodes the generation_data PNG entry. TensorArt is part
// of the ComfyUI family (spec.md §3 IsComfyUIFamily); when a `prompt` node
// graph entry is also present, it's attached as Nodes.
func ParseTensorArt(entries []core.Entry, _ []core.Segment) (core.GenerationMetadata, error) {
	raw, ok := entryText(entries, "generation_data")
	if !ok {
		return core.GenerationMetadata{}, core.ErrUnsupportedFormat
	}
	var m tensorArtMetadata
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return core.GenerationMetadata{}, core.ErrUnsupportedFormat
	}

	meta := core.GenerationMetadata{
		Software: core.SoftwareTensorArt,
		Base: core.BaseMetadata{
			Prompt: m.Prompt, NegativePrompt: m.NegativePrompt,
			Width: m.Width, Height: m.Height,
			Model: modelOrNil(m.Model, ""),
			Sampling: &core.SamplingInfo{
				Steps: m.Steps, HasSteps: true,
				CFGScale: m.CFGScale, HasCFGScale: true,
				Seed: m.Seed, HasSeed: true,
				Sampler: m.Sampler, HasSampler: m.Sampler != "",
			},
		},
	}
	if graph, ok := entryText(entries, "prompt"); ok {
		if withGraph, err := parseComfyGraph(graph); err == nil {
			meta.Nodes = withGraph.Nodes
		}
	}
	return meta, nil
}

// stabilityMatrixProject is Stability-Matrix's smproj JSON shape.
type stabilityMatrixProject struct {
	Prompt         string  `json:"prompt"`
	NegativePrompt string  `json:"negativePrompt"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	Steps          int     `json:"steps"`
	CFGScale       float64 `json:"cfgScale"`
	Seed           int64   `json:"seed"`
	ModelName      string  `json:"modelName"`
}

// ParseStabilityMatrix decodes the smproj PNG entry (ComfyUI family).
func ParseStabilityMatrix(entries []core.Entry, _ []core.Segment) (core.GenerationMetadata, error) {
	raw, ok := entryText(entries, "smproj")
	if !ok {
		return core.GenerationMetadata{}, core.ErrUnsupportedFormat
	}
	var m stabilityMatrixProject
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return core.GenerationMetadata{}, core.ErrUnsupportedFormat
	}
	meta := core.GenerationMetadata{
		Software: core.SoftwareStabilityMatrix,
		Base: core.BaseMetadata{
			Prompt: m.Prompt, NegativePrompt: m.NegativePrompt,
			Width: m.Width, Height: m.Height,
			Model: modelOrNil(m.ModelName, ""),
			Sampling: &core.SamplingInfo{
				Steps: m.Steps, HasSteps: true,
				CFGScale: m.CFGScale, HasCFGScale: true,
				Seed: m.Seed, HasSeed: true,
			},
		},
	}
	if graph, ok := entryText(entries, "prompt"); ok {
		if withGraph, err := parseComfyGraph(graph); err == nil {
			meta.Nodes = withGraph.Nodes
		}
	}
	return meta, nil
}

// ruinedFooocusMetadata is Ruined-Fooocus's parameters JSON shape.
type ruinedFooocusMetadata struct {
	Software       string  `json:"software"`
	Prompt         string  `json:"prompt"`
	NegativePrompt string  `json:"negative_prompt"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	Steps          int     `json:"steps"`
	CFGScale       float64 `json:"cfg"`
	Seed           int64   `json:"seed"`
	Sampler        string  `json:"sampler_name"`
	BaseModel      string  `json:"base_model_name"`
}

// ParseRuinedFooocus decodes the JSON `parameters` PNG entry carrying
// `"software":"RuinedFooocus"` (spec.md §4.3).
func ParseRuinedFooocus(entries []core.Entry, _ []core.Segment) (core.GenerationMetadata, error) {
	raw, ok := entryText(entries, "parameters")
	if !ok {
		return core.GenerationMetadata{}, core.ErrUnsupportedFormat
	}
	var m ruinedFooocusMetadata
	if err := json.Unmarshal([]byte(raw), &m); err != nil || m.Software != "RuinedFooocus" {
		return core.GenerationMetadata{}, core.ErrUnsupportedFormat
	}
	return core.GenerationMetadata{
		Software: core.SoftwareRuinedFooocus,
		Base: core.BaseMetadata{
			Prompt: m.Prompt, NegativePrompt: m.NegativePrompt,
			Width: m.Width, Height: m.Height,
			Model: modelOrNil(m.BaseModel, ""),
			Sampling: &core.SamplingInfo{
				Steps: m.Steps, HasSteps: true,
				CFGScale: m.CFGScale, HasCFGScale: true,
				Seed: m.Seed, HasSeed: true,
				Sampler: m.Sampler, HasSampler: m.Sampler != "",
			},
		},
	}, nil
}

func modelOrNil(name, hash string) *core.ModelInfo {
	if name == "" && hash == "" {
		return nil
	}
	return &core.ModelInfo{Name: name, Hash: hash}
}
