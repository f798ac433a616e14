package tools

import (
	json "github.com/goccy/go-json"

	"github.com/alex-voss/sdmeta/core"
)

// swarmUIParams is the sui_image_params JSON block SwarmUI embeds
// (spec.md §4.5 "SwarmUI parser").
type swarmUIParams struct {
	SuiImageParams struct {
		Prompt         string  `json:"prompt"`
		NegativePrompt string  `json:"negativeprompt"`
		Width          int     `json:"width"`
		Height         int     `json:"height"`
		Steps          int     `json:"steps"`
		CFGScale       float64 `json:"cfgscale"`
		Seed           int64   `json:"seed"`
		Sampler        string  `json:"sampler"`
		Scheduler      string  `json:"scheduler"`
		Model          string  `json:"model"`
	} `json:"sui_image_params"`
}

// ParseSwarmUI recognizes the sui_image_params JSON block in the
// `parameters` PNG entry; if a `prompt` entry carrying a node graph is
// also present, attaches it as Nodes (spec.md §4.5).
func ParseSwarmUI(entries []core.Entry, _ []core.Segment) (core.GenerationMetadata, error) {
	raw, ok := entryText(entries, "parameters")
	if !ok {
		return core.GenerationMetadata{}, core.ErrUnsupportedFormat
	}
	meta, err := parseSwarmUIParams(raw)
	if err != nil {
		return core.GenerationMetadata{}, err
	}
	if graph, ok := entryText(entries, "prompt"); ok {
		if withGraph, err := parseComfyGraph(graph); err == nil {
			meta.Nodes = withGraph.Nodes
		}
	}
	return meta, nil
}

// ParseSwarmUISegment recognizes the same JSON block from the EXIF
// UserComment segment, for JPEG/WebP containers.
func ParseSwarmUISegment(_ []core.Entry, segments []core.Segment) (core.GenerationMetadata, error) {
	s, ok := segmentText(segments, core.SourceEXIFUserComment)
	if !ok {
		return core.GenerationMetadata{}, core.ErrUnsupportedFormat
	}
	return parseSwarmUIParams(s)
}

func parseSwarmUIParams(raw string) (core.GenerationMetadata, error) {
	var p swarmUIParams
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return core.GenerationMetadata{}, core.ErrUnsupportedFormat
	}
	params := p.SuiImageParams
	return core.GenerationMetadata{
		Software: core.SoftwareSwarmUI,
		Base: core.BaseMetadata{
			Prompt: params.Prompt, NegativePrompt: params.NegativePrompt,
			Width: params.Width, Height: params.Height,
			Model: modelOrNil(params.Model, ""),
			Sampling: &core.SamplingInfo{
				Steps: params.Steps, HasSteps: true,
				CFGScale: params.CFGScale, HasCFGScale: true,
				Seed: params.Seed, HasSeed: true,
				Sampler: params.Sampler, HasSampler: params.Sampler != "",
				Scheduler: params.Scheduler, HasScheduler: params.Scheduler != "",
			},
		},
	}, nil
}
