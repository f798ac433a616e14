// Package convert implements the cross-format converter spec.md §4.6
// describes: given a ParseResult and a target container format, produce
// a RawMetadata in that format, dispatching per the source software.
package convert

import (
	json "github.com/goccy/go-json"

	"github.com/alex-voss/sdmeta/core"
	"github.com/alex-voss/sdmeta/core/a1111"
	"github.com/alex-voss/sdmeta/core/tools"
)

// Convert produces a RawMetadata in target, per spec.md §4.6's dispatch
// table. A non-nil Warning accompanies an unrecognized-cross-format drop
// (carried as a value, not an error, per spec.md §7).
func Convert(result core.ParseResult, target core.Format) (core.RawMetadata, []core.Warning, error) {
	if result.Raw.Format == target {
		return result.Raw, nil, nil
	}

	switch result.Status {
	case core.StatusEmpty:
		return emptyRaw(target), nil, nil

	case core.StatusUnrecognized:
		return emptyRaw(target), []core.Warning{{Reason: core.WarningUnrecognizedCrossFormat}}, nil

	case core.StatusSuccess:
		raw, err := convertSuccess(result.Metadata, target)
		return raw, nil, err

	default:
		return emptyRaw(target), nil, core.ErrInvalidParseResult
	}
}

func emptyRaw(target core.Format) core.RawMetadata {
	return core.RawMetadata{Format: target}
}

func convertSuccess(meta core.GenerationMetadata, target core.Format) (core.RawMetadata, error) {
	switch meta.Software {
	case core.SoftwareNovelAI:
		return convertNovelAI(meta, target)
	default:
		if core.IsComfyUIFamily(meta.Software) {
			return convertComfyUIFamily(meta, target)
		}
		if meta.Software == core.SoftwareSwarmUI {
			return convertSwarmUI(meta, target)
		}
		if meta.Software == core.SoftwareHFSpace || meta.Software == core.SoftwareRuinedFooocus {
			return convertJSONPassthroughFamily(meta, target)
		}
		return convertA1111Family(meta, target)
	}
}

// novelAIComment is the emitted shape of the Comment field NovelAI reads
// back (spec.md §4.5's novelAICommentV3, inverted for writing). Software
// and v4Prompt are carried here too: spec.md §4.6 requires the JPEG/WebP
// UserComment segment to hold "the Comment JSON plus Software field", and
// the JPEG/WebP novelai detection rule (spec.md §4.3) keys on
// `"Software":"NovelAI"`/`"v4_prompt"`/`"noise_schedule"` being present in
// that same JSON, so a round-tripped record must carry all three.
type novelAIComment struct {
	Prompt        string           `json:"prompt"`
	UC            string           `json:"uc"`
	Steps         int              `json:"steps,omitempty"`
	Scale         float64          `json:"scale,omitempty"`
	Seed          int64            `json:"seed,omitempty"`
	Sampler       string           `json:"sampler,omitempty"`
	NoiseSchedule string           `json:"noise_schedule,omitempty"`
	Width         int              `json:"width,omitempty"`
	Height        int              `json:"height,omitempty"`
	Software      string           `json:"Software"`
	V4Prompt      *novelAIV4Prompt `json:"v4_prompt,omitempty"`
}

type novelAIV4Prompt struct {
	Caption   novelAIV4Caption `json:"caption"`
	UseCoords bool             `json:"use_coords"`
	UseOrder  bool             `json:"use_order"`
}

type novelAIV4Caption struct {
	CharCaptions []novelAICharCaption `json:"char_captions"`
}

type novelAICharCaption struct {
	CharCaption string            `json:"char_caption"`
	Centers     []novelAIV4Center `json:"centers,omitempty"`
}

type novelAIV4Center struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func convertNovelAI(meta core.GenerationMetadata, target core.Format) (core.RawMetadata, error) {
	// spec.md §4.6: "description field is corrected if prior raw contained
	// the known NovelAI NUL-prefix corruption."
	description := tools.StripNovelAINulCorruption(meta.Base.Prompt)

	c := novelAIComment{
		Prompt:   meta.Base.Prompt,
		UC:       meta.Base.NegativePrompt,
		Width:    meta.Base.Width,
		Height:   meta.Base.Height,
		Software: "NovelAI",
	}
	if meta.Base.Sampling != nil {
		s := meta.Base.Sampling
		c.Steps, c.Scale, c.Seed, c.Sampler = s.Steps, s.CFGScale, s.Seed, s.Sampler
		c.NoiseSchedule = s.Scheduler
	}
	if len(meta.CharacterPrompts) > 0 {
		v4 := &novelAIV4Prompt{UseCoords: meta.UseCoords, UseOrder: meta.UseOrder}
		for _, cp := range meta.CharacterPrompts {
			cc := novelAICharCaption{CharCaption: cp.Prompt}
			if cp.Center != nil {
				cc.Centers = []novelAIV4Center{{X: cp.Center.X, Y: cp.Center.Y}}
			}
			v4.Caption.CharCaptions = append(v4.Caption.CharCaptions, cc)
		}
		c.V4Prompt = v4
	}
	commentJSON, err := json.Marshal(c)
	if err != nil {
		return core.RawMetadata{}, err
	}

	switch target {
	case core.FormatPNG:
		return core.RawMetadata{Format: target, Chunks: []core.PNGChunk{
			{Kind: core.PNGText, Keyword: "Title", Text: description},
			{Kind: core.PNGText, Keyword: "Software", Text: "NovelAI"},
			{Kind: core.PNGText, Keyword: "Source", Text: "NovelAI Diffusion"},
			{Kind: core.PNGText, Keyword: "Comment", Text: string(commentJSON)},
		}}, nil
	default:
		return core.RawMetadata{Format: target, Segments: []core.Segment{
			{Source: core.SourceEXIFUserComment, Data: string(commentJSON)},
		}}, nil
	}
}

// comfyJSONPayload is the JPEG/WebP UserComment JSON carrying both the
// node graph and workflow (spec.md §4.6 "ComfyUI-family").
type comfyJSONPayload struct {
	Prompt   map[string]core.ComfyNode `json:"prompt"`
	Workflow map[string]core.ComfyNode `json:"workflow"`
}

func convertComfyUIFamily(meta core.GenerationMetadata, target core.Format) (core.RawMetadata, error) {
	nodesJSON, err := json.Marshal(meta.Nodes)
	if err != nil {
		return core.RawMetadata{}, err
	}

	switch target {
	case core.FormatPNG:
		return core.RawMetadata{Format: target, Chunks: []core.PNGChunk{
			{Kind: core.PNGText, Keyword: "prompt", Text: string(nodesJSON)},
			{Kind: core.PNGText, Keyword: "workflow", Text: string(nodesJSON)},
		}}, nil
	default:
		payload := comfyJSONPayload{Prompt: meta.Nodes, Workflow: meta.Nodes}
		payloadJSON, err := json.Marshal(payload)
		if err != nil {
			return core.RawMetadata{}, err
		}
		return core.RawMetadata{Format: target, Segments: []core.Segment{
			{Source: core.SourceEXIFUserComment, Data: string(payloadJSON)},
		}}, nil
	}
}

func convertSwarmUI(meta core.GenerationMetadata, target core.Format) (core.RawMetadata, error) {
	params := swarmParamsFromBase(meta.Base)
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return core.RawMetadata{}, err
	}

	switch target {
	case core.FormatPNG:
		chunks := []core.PNGChunk{{Kind: core.PNGText, Keyword: "parameters", Text: string(paramsJSON)}}
		if meta.Nodes != nil {
			nodesJSON, err := json.Marshal(meta.Nodes)
			if err == nil {
				chunks = append(chunks, core.PNGChunk{Kind: core.PNGText, Keyword: "prompt", Text: string(nodesJSON)})
			}
		}
		return core.RawMetadata{Format: target, Chunks: chunks}, nil
	default:
		return core.RawMetadata{Format: target, Segments: []core.Segment{
			{Source: core.SourceEXIFUserComment, Data: string(paramsJSON)},
		}}, nil
	}
}

type swarmUIParamsWrapper struct {
	SuiImageParams swarmUIParamsBody `json:"sui_image_params"`
}

type swarmUIParamsBody struct {
	Prompt         string  `json:"prompt"`
	NegativePrompt string  `json:"negativeprompt,omitempty"`
	Width          int     `json:"width,omitempty"`
	Height         int     `json:"height,omitempty"`
	Steps          int     `json:"steps,omitempty"`
	CFGScale       float64 `json:"cfgscale,omitempty"`
	Seed           int64   `json:"seed,omitempty"`
}

func swarmParamsFromBase(base core.BaseMetadata) swarmUIParamsWrapper {
	body := swarmUIParamsBody{Prompt: base.Prompt, NegativePrompt: base.NegativePrompt, Width: base.Width, Height: base.Height}
	if base.Sampling != nil {
		body.Steps, body.CFGScale, body.Seed = base.Sampling.Steps, base.Sampling.CFGScale, base.Sampling.Seed
	}
	return swarmUIParamsWrapper{SuiImageParams: body}
}

// hfSpacePassthroughBody and ruinedFooocusPassthroughBody re-serialize the
// two tools' own JSON shapes, since "pass the JSON payload through
// textually between containers" (spec.md §4.6) has no byte-identical
// original to copy once the value has gone through GenerationMetadata —
// the converter only ever sees the parsed record, not the source bytes.
type hfSpacePassthroughBody struct {
	Prompt         string  `json:"prompt"`
	NegativePrompt string  `json:"negative_prompt,omitempty"`
	Width          int     `json:"width,omitempty"`
	Height         int     `json:"height,omitempty"`
	Steps          int     `json:"num_inference_steps,omitempty"`
	CFGScale       float64 `json:"guidance_scale,omitempty"`
	Seed           int64   `json:"seed,omitempty"`
	Model          string  `json:"model_id,omitempty"`
}

type ruinedFooocusPassthroughBody struct {
	Software string `json:"software"`
	Prompt   string `json:"prompt"`
	Negative string `json:"negative_prompt,omitempty"`
}

func convertJSONPassthroughFamily(meta core.GenerationMetadata, target core.Format) (core.RawMetadata, error) {
	var payload []byte
	var err error
	if meta.Software == core.SoftwareHFSpace {
		body := hfSpacePassthroughBody{Prompt: meta.Base.Prompt, NegativePrompt: meta.Base.NegativePrompt, Width: meta.Base.Width, Height: meta.Base.Height}
		if meta.Base.Model != nil {
			body.Model = meta.Base.Model.Name
		}
		if meta.Base.Sampling != nil {
			body.Steps, body.CFGScale, body.Seed = meta.Base.Sampling.Steps, meta.Base.Sampling.CFGScale, meta.Base.Sampling.Seed
		}
		payload, err = json.Marshal(body)
	} else {
		payload, err = json.Marshal(ruinedFooocusPassthroughBody{Software: "RuinedFooocus", Prompt: meta.Base.Prompt, Negative: meta.Base.NegativePrompt})
	}
	if err != nil {
		return core.RawMetadata{}, err
	}

	switch target {
	case core.FormatPNG:
		return core.RawMetadata{Format: target, Chunks: []core.PNGChunk{
			{Kind: core.PNGText, Keyword: "parameters", Text: string(payload)},
		}}, nil
	default:
		return core.RawMetadata{Format: target, Segments: []core.Segment{
			{Source: core.SourceEXIFUserComment, Data: string(payload)},
		}}, nil
	}
}

// convertA1111Family covers sd-webui/forge/forge-neo/sd-next/civitai/
// easydiffusion/fooocus and any other standard tool: PNG emits a
// `parameters` chunk, JPEG/WebP emits a UserComment segment, both
// carrying the rebuilt A1111 text (spec.md §4.6).
func convertA1111Family(meta core.GenerationMetadata, target core.Format) (core.RawMetadata, error) {
	text := a1111.Emit(meta.Base.Prompt, meta.Base.NegativePrompt, meta.Base.NegativePrompt != "", meta.CharacterPrompts, meta.Base, nil)

	switch target {
	case core.FormatPNG:
		return core.RawMetadata{Format: target, Chunks: []core.PNGChunk{
			{Kind: core.PNGText, Keyword: "parameters", Text: text},
		}}, nil
	default:
		return core.RawMetadata{Format: target, Segments: []core.Segment{
			{Source: core.SourceEXIFUserComment, Data: text},
		}}, nil
	}
}
