// Package a1111 implements the tokenizer and emitter for the A1111 plain
// text metadata format spec.md §4.4 describes: a 4-part LF-joined
// document (positive prompt, optional character-prompts block, optional
// negative prompt, optional settings line).
//
// There is no A1111-shaped text anywhere in the teacher (it only edits
// structured EXIF/PNG fields, never a domain-specific text grammar), so
// this package's line-oriented scanning style is grounded instead on the
// teacher's own `core/output.go` ParseKV (a comma/equals key-value
// splitter for CLI flags) generalized to quote/brace-aware splitting and
// multi-line document structure.
package a1111

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/alex-voss/sdmeta/core"
)

// Document is the tokenized shape of an A1111 text blob.
type Document struct {
	Prompt           string
	CharacterPrompts []core.CharacterPrompt
	NegativePrompt   string
	HasNegative      bool
	Settings         []Setting // raw Key/Value pairs in document order
}

// Setting is one `Key: value` pair from the settings line.
type Setting struct {
	Key   string
	Value string
}

var (
	negativeLineRe  = regexp.MustCompile(`^Negative prompt:\s?(.*)$`)
	characterHeadRe = regexp.MustCompile(`^# Character (\d+)(?: \[([-\d.]+), ([-\d.]+)\])?:$`)
)

// Tokenize splits raw A1111 text into its 4 parts per spec.md §4.4. Line
// endings are normalized to LF before scanning.
func Tokenize(raw string) Document {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")
	lines := strings.Split(raw, "\n")

	negIdx := -1
	settingsIdx := -1
	for i, ln := range lines {
		if negativeLineRe.MatchString(ln) {
			negIdx = i
			break
		}
		if settingsIdx < 0 && looksLikeSettingsLine(ln) {
			settingsIdx = i
		}
	}

	var doc Document

	bodyEnd := len(lines)
	if negIdx >= 0 {
		bodyEnd = negIdx
	} else if settingsIdx >= 0 {
		bodyEnd = settingsIdx
	}
	body := lines[:bodyEnd]

	promptLines, charPrompts := splitCharacterBlock(body)
	doc.Prompt = strings.TrimRight(strings.Join(promptLines, "\n"), "\n")
	doc.CharacterPrompts = charPrompts

	if negIdx >= 0 {
		negLines := []string{negativeLineRe.FindStringSubmatch(lines[negIdx])[1]}
		settingsFrom := len(lines)
		for i := negIdx + 1; i < len(lines); i++ {
			if looksLikeSettingsLine(lines[i]) {
				settingsFrom = i
				break
			}
			negLines = append(negLines, lines[i])
		}
		text := strings.TrimRight(strings.Join(negLines, "\n"), "\n")
		if text != "" {
			doc.NegativePrompt = text
			doc.HasNegative = true
		}
		if settingsFrom < len(lines) {
			doc.Settings = parseSettingsLine(strings.Join(lines[settingsFrom:], " "))
		}
	} else if settingsIdx >= 0 {
		doc.Settings = parseSettingsLine(strings.Join(lines[settingsIdx:], " "))
	}

	return doc
}

// splitCharacterBlock detects `# Character N [x, y]:` headers (each
// followed by exactly one prompt line) between the positive prompt and
// whatever comes after it, per spec.md §4.4.
func splitCharacterBlock(body []string) (promptLines []string, prompts []core.CharacterPrompt) {
	firstHeader := -1
	for i, ln := range body {
		if characterHeadRe.MatchString(ln) {
			firstHeader = i
			break
		}
	}
	if firstHeader < 0 {
		return body, nil
	}
	promptLines = body[:firstHeader]
	i := firstHeader
	for i < len(body) {
		m := characterHeadRe.FindStringSubmatch(body[i])
		if m == nil {
			break
		}
		if i+1 >= len(body) {
			break
		}
		cp := core.CharacterPrompt{Prompt: body[i+1]}
		if m[2] != "" && m[3] != "" {
			x, errX := strconv.ParseFloat(m[2], 64)
			y, errY := strconv.ParseFloat(m[3], 64)
			if errX == nil && errY == nil {
				cp.Center = &core.Coord{X: x, Y: y}
			}
		}
		prompts = append(prompts, cp)
		i += 2
	}
	return promptLines, prompts
}

// looksLikeSettingsLine implements spec.md §4.4's settings-line heuristic:
// "a line whose comma-separated tokens are predominantly Key: value".
func looksLikeSettingsLine(line string) bool {
	tokens := splitOutsideQuotes(line, ", ")
	if len(tokens) == 0 {
		return false
	}
	matches := 0
	for _, t := range tokens {
		if idx := strings.Index(t, ": "); idx > 0 {
			matches++
		}
	}
	return matches*2 >= len(tokens) && matches > 0
}

// parseSettingsLine tokenizes by splitting on ", " outside balanced
// quoted/braced substrings, per spec.md §4.4.
func parseSettingsLine(line string) []Setting {
	var out []Setting
	for _, tok := range splitOutsideQuotes(line, ", ") {
		idx := strings.Index(tok, ": ")
		if idx < 0 {
			continue
		}
		out = append(out, Setting{Key: strings.TrimSpace(tok[:idx]), Value: strings.TrimSpace(tok[idx+2:])})
	}
	return out
}

// splitOutsideQuotes splits s on sep, treating "..." and {...} spans as
// atomic even if they contain sep (A1111's permissive grammar, spec.md
// §4.4).
func splitOutsideQuotes(s, sep string) []string {
	var out []string
	var cur strings.Builder
	inQuote := false
	depth := 0
	i := 0
	for i < len(s) {
		switch {
		case s[i] == '"':
			inQuote = !inQuote
			cur.WriteByte(s[i])
			i++
		case s[i] == '{':
			depth++
			cur.WriteByte(s[i])
			i++
		case s[i] == '}':
			if depth > 0 {
				depth--
			}
			cur.WriteByte(s[i])
			i++
		case !inQuote && depth == 0 && strings.HasPrefix(s[i:], sep):
			out = append(out, cur.String())
			cur.Reset()
			i += len(sep)
		default:
			cur.WriteByte(s[i])
			i++
		}
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}

// Emit renders a Document-shaped value back to A1111 text: positive
// prompt, character-prompt block, negative prompt, settings line in
// canonical order with extras merged in (spec.md §4.4).
func Emit(prompt, negativePrompt string, hasNegative bool, characterPrompts []core.CharacterPrompt, base core.BaseMetadata, extras []core.ExtraField) string {
	var b strings.Builder
	b.WriteString(prompt)

	for i, cp := range characterPrompts {
		b.WriteByte('\n')
		if cp.Center != nil {
			fmt.Fprintf(&b, "# Character %d [%g, %g]:\n", i+1, cp.Center.X, cp.Center.Y)
		} else {
			fmt.Fprintf(&b, "# Character %d:\n", i+1)
		}
		b.WriteString(cp.Prompt)
	}

	if hasNegative && negativePrompt != "" {
		b.WriteString("\nNegative prompt: ")
		b.WriteString(negativePrompt)
	}

	slots := structuredSlots(base)
	line := mergeExtras(slots, extras)
	if len(line) > 0 {
		b.WriteByte('\n')
		parts := make([]string, 0, len(line))
		for _, s := range line {
			parts = append(parts, s.Key+": "+s.Value)
		}
		b.WriteString(strings.Join(parts, ", "))
	}

	return b.String()
}

func structuredSlots(base core.BaseMetadata) []Setting {
	var out []Setting
	if base.Sampling != nil {
		s := base.Sampling
		if s.HasSteps {
			out = append(out, Setting{"Steps", strconv.Itoa(s.Steps)})
		}
		if s.HasSampler {
			out = append(out, Setting{"Sampler", s.Sampler})
		}
		if s.HasScheduler {
			out = append(out, Setting{"Schedule type", s.Scheduler})
		}
		if s.HasCFGScale {
			out = append(out, Setting{"CFG scale", trimFloat(s.CFGScale)})
		}
		if s.HasSeed {
			out = append(out, Setting{"Seed", strconv.FormatInt(s.Seed, 10)})
		}
	}
	if base.Width > 0 && base.Height > 0 {
		out = append(out, Setting{"Size", fmt.Sprintf("%dx%d", base.Width, base.Height)})
	}
	if base.Model != nil {
		if base.Model.Hash != "" {
			out = append(out, Setting{"Model hash", base.Model.Hash})
		}
		if base.Model.Name != "" {
			out = append(out, Setting{"Model", base.Model.Name})
		}
	}
	if base.Sampling != nil && base.Sampling.HasClipSkip {
		out = append(out, Setting{"Clip skip", strconv.Itoa(base.Sampling.ClipSkip)})
	}
	if base.Hires != nil {
		h := base.Hires
		if h.HasDenoise {
			out = append(out, Setting{"Denoising strength", trimFloat(h.Denoise)})
		}
		if h.HasScale {
			out = append(out, Setting{"Hires upscale", trimFloat(h.Scale)})
		}
		if h.HasSteps {
			out = append(out, Setting{"Hires steps", strconv.Itoa(h.Steps)})
		}
		if h.HasUpscaler {
			out = append(out, Setting{"Hires upscaler", h.Upscaler})
		}
	}
	return out
}

// mergeExtras implements spec.md §4.4: "a key matching a structured slot
// replaces that slot's value and preserves slot position; any other extra
// appends in insertion order."
func mergeExtras(slots []Setting, extras []core.ExtraField) []Setting {
	out := make([]Setting, len(slots))
	copy(out, slots)
	for _, e := range extras {
		value := fmt.Sprintf("%v", e.Value)
		replaced := false
		for i := range out {
			if out[i].Key == e.Key {
				out[i].Value = value
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, Setting{Key: e.Key, Value: value})
		}
	}
	return out
}

func trimFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
