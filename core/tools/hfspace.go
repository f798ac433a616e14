package tools

import (
	json "github.com/goccy/go-json"

	"github.com/alex-voss/sdmeta/core"
)

// hfSpaceMetadata is the HF-Space JSON shape (spec.md §4.5 "HF-Space ...
// parsers. Each decodes its specific JSON shape."). On a cross-format
// write the converter re-serializes this same JSON shape from the parsed
// record; the original bytes are not copied.
type hfSpaceMetadata struct {
	Prompt         string  `json:"prompt"`
	NegativePrompt string  `json:"negative_prompt"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	Steps          int     `json:"num_inference_steps"`
	CFGScale       float64 `json:"guidance_scale"`
	Seed           int64   `json:"seed"`
	Model          string  `json:"model_id"`
}

// ParseHFSpace decodes the `parameters`/UserComment JSON payload HF-Space
// writes. Reachable from either container via the generic JSON text
// passed in raw.
func ParseHFSpace(raw string) (core.GenerationMetadata, error) {
	var m hfSpaceMetadata
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return core.GenerationMetadata{}, core.ErrUnsupportedFormat
	}
	return core.GenerationMetadata{
		Software: core.SoftwareHFSpace,
		Base: core.BaseMetadata{
			Prompt: m.Prompt, NegativePrompt: m.NegativePrompt,
			Width: m.Width, Height: m.Height,
			Model: modelOrNil(m.Model, ""),
			Sampling: &core.SamplingInfo{
				Steps: m.Steps, HasSteps: true,
				CFGScale: m.CFGScale, HasCFGScale: true,
				Seed: m.Seed, HasSeed: true,
			},
		},
	}, nil
}
