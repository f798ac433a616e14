package tools

import (
	json "github.com/goccy/go-json"

	"github.com/alex-voss/sdmeta/core"
)

// novelAICommentV3 is the Comment JSON shape NovelAI embeds (spec.md
// §4.5 "NovelAI parser"). v4_prompt is only present on v4-family
// generations and carries per-character captions.
type novelAICommentV3 struct {
	Prompt         string  `json:"prompt"`
	UC             string  `json:"uc"`
	Steps          int     `json:"steps"`
	Scale          float64 `json:"scale"`
	Seed           int64   `json:"seed"`
	Sampler        string  `json:"sampler"`
	NoiseSchedule  string  `json:"noise_schedule"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	V4Prompt       *struct {
		Caption struct {
			CharCaptions []struct {
				CharCaption string `json:"char_caption"`
				Centers     []struct {
					X float64 `json:"x"`
					Y float64 `json:"y"`
				} `json:"centers"`
			} `json:"char_captions"`
		} `json:"caption"`
		UseCoords bool `json:"use_coords"`
		UseOrder  bool `json:"use_order"`
	} `json:"v4_prompt"`
}

// ParseNovelAIPNG reads the Comment (JSON) PNG entry (spec.md §4.5). The
// Software entry is checked by the PNGRegistry rule, not here.
func ParseNovelAIPNG(entries []core.Entry, _ []core.Segment) (core.GenerationMetadata, error) {
	comment, ok := entryText(entries, "Comment")
	if !ok {
		return core.GenerationMetadata{}, core.ErrUnsupportedFormat
	}
	return parseNovelAIComment(comment)
}

// ParseNovelAISegment reads the UserComment segment's JSON as the
// NovelAI Comment shape, for JPEG/WebP containers (spec.md §4.5/§4.3).
func ParseNovelAISegment(_ []core.Entry, segments []core.Segment) (core.GenerationMetadata, error) {
	s, ok := segmentText(segments, core.SourceEXIFUserComment)
	if !ok {
		return core.GenerationMetadata{}, core.ErrUnsupportedFormat
	}
	return parseNovelAIComment(s)
}

func parseNovelAIComment(comment string) (core.GenerationMetadata, error) {
	var c novelAICommentV3
	if err := json.Unmarshal([]byte(comment), &c); err != nil {
		return core.GenerationMetadata{}, core.ErrUnsupportedFormat
	}

	meta := core.GenerationMetadata{
		Software: core.SoftwareNovelAI,
		Base: core.BaseMetadata{
			Prompt:         c.Prompt,
			NegativePrompt: c.UC,
			Width:          c.Width,
			Height:         c.Height,
			Sampling: &core.SamplingInfo{
				Steps: c.Steps, HasSteps: true,
				CFGScale: c.Scale, HasCFGScale: true,
				Seed: c.Seed, HasSeed: true,
				Sampler: c.Sampler, HasSampler: c.Sampler != "",
				Scheduler: c.NoiseSchedule, HasScheduler: c.NoiseSchedule != "",
			},
		},
	}

	if c.V4Prompt != nil {
		meta.HasUseCoords = true
		meta.UseCoords = c.V4Prompt.UseCoords
		meta.HasUseOrder = true
		meta.UseOrder = c.V4Prompt.UseOrder
		for _, cc := range c.V4Prompt.Caption.CharCaptions {
			cp := core.CharacterPrompt{Prompt: cc.CharCaption}
			if len(cc.Centers) > 0 {
				cp.Center = &core.Coord{X: cc.Centers[0].X, Y: cc.Centers[0].Y}
			}
			meta.CharacterPrompts = append(meta.CharacterPrompts, cp)
		}
	}

	return meta, nil
}

// StripNovelAINulCorruption removes the known NovelAI description
// NUL-prefix corruption (spec.md §4.6) so the converter can correct it
// when re-emitting into another container.
func StripNovelAINulCorruption(s string) string {
	for len(s) > 0 && s[0] == 0 {
		s = s[1:]
	}
	return s
}
