// Package sdmeta reads, writes, converts, and stringifies AI-image
// generation metadata embedded in PNG, JPEG, and WebP files, across the
// tool ecosystem spec.md §4.3/§4.5 enumerates (NovelAI, ComfyUI and its
// derivatives, the A1111 family, InvokeAI, SwarmUI, Civitai, HF-Space,
// Ruined-Fooocus).
//
// Read/Write/Embed/Stringify are the public surface (spec.md §4.7),
// orchestrating core/binutil's signature probe, the per-container codecs
// (core/png, core/jpeg, core/webp), the EXIF engine (core/exif), the
// software detector and per-tool parsers (core/tools), the A1111
// tokenizer/emitter (core/a1111), and the cross-format converter
// (core/convert) — mirroring the teacher's core.Handler entry points
// (View/Edit/Strip) at the same "one call does the whole pipeline" grain.
package sdmeta

import (
	"fmt"

	"github.com/alex-voss/sdmeta/core"
	"github.com/alex-voss/sdmeta/core/a1111"
	"github.com/alex-voss/sdmeta/core/binutil"
	"github.com/alex-voss/sdmeta/core/convert"
	"github.com/alex-voss/sdmeta/core/jpeg"
	"github.com/alex-voss/sdmeta/core/png"
	"github.com/alex-voss/sdmeta/core/tools"
	"github.com/alex-voss/sdmeta/core/webp"
)

// WriteOptions controls Write's behavior when source and target formats
// differ or the source metadata is unrecognized (spec.md §4.7).
type WriteOptions struct {
	// Force routes an unrecognized cross-format write through Convert
	// instead of dropping it directly. The outcome is the same either way:
	// the unrecognized raw metadata is not copied into the target, the
	// target is written with empty metadata, and a
	// WarningUnrecognizedCrossFormat warning is returned.
	Force bool
}

// Read orchestrates codec -> detector -> parser and fills width/height
// from IHDR on PNG when a parser omitted them (spec.md §4.7).
func Read(data []byte) core.ParseResult {
	format := binutil.DetectFormatName(data)

	switch format {
	case "png":
		return readPNG(data)
	case "jpeg":
		return readJPEG(data)
	case "webp":
		return readWebP(data)
	default:
		return core.ParseResult{Status: core.StatusInvalid, Message: "unrecognized container signature"}
	}
}

func readPNG(data []byte) core.ParseResult {
	res, err := png.Read(data)
	if err != nil {
		return core.ParseResult{Status: core.StatusInvalid, Message: fmt.Sprintf("png: %v", err)}
	}
	raw := core.RawMetadata{Format: core.FormatPNG, Chunks: res.Chunks}
	if len(res.Chunks) == 0 {
		return core.ParseResult{Status: core.StatusEmpty, Raw: raw}
	}

	entries := core.EntriesFromRaw(raw)
	meta, matched, err := tools.PNGRegistry.Dispatch(entries, nil)
	if err != nil {
		return core.ParseResult{Status: core.StatusInvalid, Message: err.Error()}
	}
	if !matched {
		return core.ParseResult{Status: core.StatusUnrecognized, Raw: raw}
	}

	fillDimensions(&meta.Base, res.Dims)
	return core.ParseResult{Status: core.StatusSuccess, Metadata: meta, Raw: raw}
}

func readJPEG(data []byte) core.ParseResult {
	res, err := jpeg.Read(data)
	if err != nil {
		return core.ParseResult{Status: core.StatusInvalid, Message: fmt.Sprintf("jpeg: %v", err)}
	}
	return readSegmentBased(core.FormatJPEG, res.Segments)
}

func readWebP(data []byte) core.ParseResult {
	res, err := webp.Read(data)
	if err != nil {
		return core.ParseResult{Status: core.StatusInvalid, Message: fmt.Sprintf("webp: %v", err)}
	}
	return readSegmentBased(core.FormatWebP, res.Segments)
}

func readSegmentBased(format core.Format, segments []core.Segment) core.ParseResult {
	raw := core.RawMetadata{Format: format, Segments: segments}
	if len(segments) == 0 {
		return core.ParseResult{Status: core.StatusEmpty, Raw: raw}
	}

	meta, matched, err := tools.JPEGRegistry.Dispatch(nil, segments)
	if err != nil {
		return core.ParseResult{Status: core.StatusInvalid, Message: err.Error()}
	}
	if !matched {
		return core.ParseResult{Status: core.StatusUnrecognized, Raw: raw}
	}
	return core.ParseResult{Status: core.StatusSuccess, Metadata: meta, Raw: raw}
}

// fillDimensions implements spec.md invariant 4: a parser that left
// width/height at 0 gets them backfilled from IHDR.
func fillDimensions(base *core.BaseMetadata, dims png.Dimensions) {
	if base.Width == 0 {
		base.Width = int(dims.Width)
	}
	if base.Height == 0 {
		base.Height = int(dims.Height)
	}
}

// Write writes result's raw metadata into data. If result.Raw.Format
// equals the container format data is in, the raw metadata is written
// directly; otherwise Convert is invoked first (spec.md §4.7).
func Write(data []byte, result core.ParseResult, opts WriteOptions) ([]byte, []core.Warning, error) {
	format := binutil.DetectFormatName(data)
	target := core.Format(format)
	if target == core.FormatUnknown {
		return nil, nil, core.ErrInvalidSignature
	}

	raw := result.Raw
	var warnings []core.Warning
	if raw.Format != target {
		if result.Status == core.StatusUnrecognized && !opts.Force {
			raw = core.RawMetadata{Format: target}
			warnings = append(warnings, core.Warning{Reason: core.WarningUnrecognizedCrossFormat})
		} else {
			converted, w, err := convert.Convert(result, target)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: %v", core.ErrWriteFailed, err)
			}
			raw, warnings = converted, w
		}
	}

	out, err := writeRaw(data, raw)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", core.ErrWriteFailed, err)
	}
	return out, warnings, nil
}

func writeRaw(data []byte, raw core.RawMetadata) ([]byte, error) {
	switch raw.Format {
	case core.FormatPNG:
		return png.Write(data, raw.Chunks)
	case core.FormatJPEG:
		return jpeg.Write(data, raw.Segments)
	case core.FormatWebP:
		return webp.Write(data, raw.Segments)
	default:
		return nil, core.ErrUnsupportedFormat
	}
}

// Embed synthesizes A1111 text from meta+extras and writes it into the
// detected container (spec.md §4.7).
func Embed(data []byte, meta core.EmbedMetadata) ([]byte, error) {
	format := binutil.DetectFormatName(data)
	target := core.Format(format)
	if target == core.FormatUnknown {
		return nil, core.ErrInvalidSignature
	}

	text := a1111.Emit(meta.Base.Prompt, meta.Base.NegativePrompt, meta.Base.NegativePrompt != "", meta.CharacterPrompts, meta.Base, meta.Extras)

	var raw core.RawMetadata
	switch target {
	case core.FormatPNG:
		raw = core.RawMetadata{Format: target, Chunks: []core.PNGChunk{
			{Kind: core.PNGText, Keyword: "parameters", Text: text},
		}}
	default:
		raw = core.RawMetadata{Format: target, Segments: []core.Segment{
			{Source: core.SourceEXIFUserComment, Data: text},
		}}
	}

	out, err := writeRaw(data, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrWriteFailed, err)
	}
	return out, nil
}

// Stringify renders the canonical textual form of a ParseResult: A1111
// text for a success result, raw-join for unrecognized, empty string for
// empty/invalid (spec.md §4.7).
func Stringify(result core.ParseResult) string {
	switch result.Status {
	case core.StatusSuccess:
		m := result.Metadata
		return a1111.Emit(m.Base.Prompt, m.Base.NegativePrompt, m.Base.NegativePrompt != "", m.CharacterPrompts, m.Base, nil)
	case core.StatusUnrecognized:
		return rawJoin(result.Raw)
	default:
		return ""
	}
}

// StringifyEmbed renders an EmbedMetadata the same way Write/Embed would
// synthesize its A1111 text.
func StringifyEmbed(meta core.EmbedMetadata) string {
	return a1111.Emit(meta.Base.Prompt, meta.Base.NegativePrompt, meta.Base.NegativePrompt != "", meta.CharacterPrompts, meta.Base, meta.Extras)
}

// StringifyGeneration renders a bare GenerationMetadata the same way a
// success ParseResult would stringify.
func StringifyGeneration(meta core.GenerationMetadata) string {
	return a1111.Emit(meta.Base.Prompt, meta.Base.NegativePrompt, meta.Base.NegativePrompt != "", meta.CharacterPrompts, meta.Base, nil)
}

func rawJoin(raw core.RawMetadata) string {
	entries := core.EntriesFromRaw(raw)
	out := ""
	for i, e := range entries {
		if i > 0 {
			out += "\n"
		}
		out += e.Keyword + ": " + e.Text
	}
	return out
}
