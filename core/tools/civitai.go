package tools

import (
	json "github.com/goccy/go-json"

	"github.com/alex-voss/sdmeta/core"
)

// civitaiResourceStack is Civitai's exported JSON shape: an A1111-like
// body plus a `resource-stack`/`civitai:` resource manifest (spec.md
// §4.3 JPEG/WebP rule, §4.5 "Civitai parser").
type civitaiResourceStack struct {
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

// ParseCivitaiSegment decodes the civitai:/resource-stack JSON shape from
// the EXIF UserComment segment.
func ParseCivitaiSegment(_ []core.Entry, segments []core.Segment) (core.GenerationMetadata, error) {
	s, ok := segmentText(segments, core.SourceEXIFUserComment)
	if !ok {
		return core.GenerationMetadata{}, core.ErrUnsupportedFormat
	}
	var m civitaiResourceStack
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return core.GenerationMetadata{}, core.ErrUnsupportedFormat
	}
	return core.GenerationMetadata{
		Software: core.SoftwareCivitai,
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
	}, nil
}
