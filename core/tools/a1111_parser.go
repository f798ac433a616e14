package tools

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/alex-voss/sdmeta/core"
	"github.com/alex-voss/sdmeta/core/a1111"
)

// ParseA1111FromEntries runs the tokenizer on the `parameters` PNG entry
// (spec.md §4.5 "A1111 parser").
func ParseA1111FromEntries(entries []core.Entry, _ []core.Segment) (core.GenerationMetadata, error) {
	raw, ok := entryText(entries, "parameters")
	if !ok {
		return core.GenerationMetadata{}, core.ErrUnsupportedFormat
	}
	return parseA1111Text(raw)
}

// ParseA1111FromSegments runs the tokenizer on the EXIF UserComment string
// (falling back to the JPEG COM segment), for JPEG/WebP containers.
func ParseA1111FromSegments(_ []core.Entry, segments []core.Segment) (core.GenerationMetadata, error) {
	raw, ok := segmentText(segments, core.SourceEXIFUserComment)
	if !ok {
		raw, ok = segmentText(segments, core.SourceJPEGComment)
	}
	if !ok {
		return core.GenerationMetadata{}, core.ErrUnsupportedFormat
	}
	return parseA1111Text(raw)
}

func parseA1111Text(raw string) (core.GenerationMetadata, error) {
	doc := a1111.Tokenize(raw)

	base := core.BaseMetadata{Prompt: doc.Prompt}
	if doc.HasNegative {
		base.NegativePrompt = doc.NegativePrompt
	}

	sampling := &core.SamplingInfo{}
	model := &core.ModelInfo{}
	hires := &core.HiresInfo{}
	var versionValue string

	for _, s := range doc.Settings {
		switch s.Key {
		case "Steps":
			if n, err := strconv.Atoi(s.Value); err == nil {
				sampling.Steps, sampling.HasSteps = n, true
			}
		case "Sampler":
			sampling.Sampler, sampling.HasSampler = s.Value, true
		case "Schedule type":
			sampling.Scheduler, sampling.HasScheduler = s.Value, true
		case "CFG scale":
			if f, err := strconv.ParseFloat(s.Value, 64); err == nil {
				sampling.CFGScale, sampling.HasCFGScale = f, true
			}
		case "Seed":
			if n, err := strconv.ParseInt(s.Value, 10, 64); err == nil {
				sampling.Seed, sampling.HasSeed = n, true
			}
		case "Size":
			if w, h, ok := parseSize(s.Value); ok {
				base.Width, base.Height = w, h
			}
		case "Model hash":
			model.Hash = s.Value
		case "Model":
			model.Name = s.Value
		case "Clip skip":
			if n, err := strconv.Atoi(s.Value); err == nil {
				sampling.ClipSkip, sampling.HasClipSkip = n, true
			}
		case "Denoising strength":
			if f, err := strconv.ParseFloat(s.Value, 64); err == nil {
				hires.Denoise, hires.HasDenoise = f, true
			}
		case "Hires upscale":
			if f, err := strconv.ParseFloat(s.Value, 64); err == nil {
				hires.Scale, hires.HasScale = f, true
			}
		case "Hires steps":
			if n, err := strconv.Atoi(s.Value); err == nil {
				hires.Steps, hires.HasSteps = n, true
			}
		case "Hires upscaler":
			hires.Upscaler, hires.HasUpscaler = s.Value, true
		case "Version":
			versionValue = s.Value
		}
	}

	base.Sampling = sampling
	if model.Hash != "" || model.Name != "" {
		base.Model = model
	}
	if hires.HasDenoise || hires.HasScale || hires.HasSteps || hires.HasUpscaler {
		base.Hires = hires
	}

	meta := core.GenerationMetadata{
		Software:         softwareFromVersion(versionValue),
		Base:             base,
		CharacterPrompts: doc.CharacterPrompts,
	}
	return meta, nil
}

func parseSize(v string) (w, h int, ok bool) {
	parts := strings.SplitN(v, "x", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	wi, errW := strconv.Atoi(strings.TrimSpace(parts[0]))
	hi, errH := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errW != nil || errH != nil {
		return 0, 0, false
	}
	return wi, hi, true
}

var forgeVersionRe = regexp.MustCompile(`^f\d`)

// softwareFromVersion chooses the software tag by matching the Version:
// extra, falling back to sd-webui (spec.md §4.3/§4.5).
func softwareFromVersion(v string) core.Software {
	switch {
	case v == "":
		return core.SoftwareSDWebUI
	case v == "neo":
		return core.SoftwareForgeNeo
	case forgeVersionRe.MatchString(v):
		return core.SoftwareForge
	case v == "ComfyUI":
		return core.SoftwareSDWebUI
	case v == "sd-next" || v == "SD.Next":
		return core.SoftwareSDNext
	case v == "easydiffusion" || v == "EasyDiffusion":
		return core.SoftwareEasyDiffusion
	case v == "fooocus" || v == "Fooocus":
		return core.SoftwareFooocus
	case v == "civitai" || v == "Civitai":
		return core.SoftwareCivitai
	case v == "hf-space" || v == "HF-Space":
		return core.SoftwareHFSpace
	default:
		return core.SoftwareSDWebUI
	}
}
