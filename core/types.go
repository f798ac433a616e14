// Package core defines the shared, format-agnostic data model for the
// metadata pipeline: the container-level entities (Format, PNGChunk,
// Segment, RawMetadata), the tool-agnostic Entry shape parsers consume,
// and the discriminated GenerationMetadata/ParseResult unions.
package core

// Format identifies a supported image container.
type Format string

const (
	FormatPNG     Format = "png"
	FormatJPEG    Format = "jpeg"
	FormatWebP    Format = "webp"
	FormatUnknown Format = "unknown"
)

// PNGChunkKind distinguishes the two PNG text chunk variants sdmeta reads
// and writes.
type PNGChunkKind string

const (
	PNGText              PNGChunkKind = "tEXt"
	PNGInternationalText PNGChunkKind = "iTXt"
)

// PNGChunk is a tagged tEXt/iTXt chunk. iTXt-only fields are zero for
// PNGText chunks.
type PNGChunk struct {
	Kind               PNGChunkKind
	Keyword            string
	Text               string
	CompressionFlag    int // iTXt only: 0 or 1
	CompressionMethod  int // iTXt only: 0 when CompressionFlag=1
	LanguageTag        string
	TranslatedKeyword  string
}

// SegmentSource identifies where a JPEG/WebP metadata segment originated.
type SegmentSource string

const (
	SourceEXIFUserComment      SegmentSource = "exifUserComment"
	SourceEXIFImageDescription SegmentSource = "exifImageDescription"
	SourceEXIFMake             SegmentSource = "exifMake"
	SourceJPEGComment          SegmentSource = "jpegCom"
)

// Segment is a format-agnostic metadata payload carried by JPEG (EXIF APP1 /
// COM) or WebP (EXIF chunk).
type Segment struct {
	Source SegmentSource
	Data   string
	// Prefix captures a leading "Workflow: " / "Prompt: " style string some
	// ComfyUI emitters prepend to ImageDescription/Make, so it can be
	// restored verbatim on write.
	Prefix string
}

// RawMetadata is the discriminated-by-container raw payload a read
// produces and a write consumes.
type RawMetadata struct {
	Format   Format
	Chunks   []PNGChunk // populated when Format == FormatPNG
	Segments []Segment  // populated when Format == FormatJPEG or FormatWebP
}

// Entry is the format-agnostic (keyword, text) pair every per-tool parser
// is written against. PNG chunks map directly by keyword; EXIF segments map
// through a synthetic keyword derived from their Source.
type Entry struct {
	Keyword string
	Text    string
}

// EntriesFromRaw flattens a RawMetadata into the Entry shape parsers expect.
func EntriesFromRaw(raw RawMetadata) []Entry {
	switch raw.Format {
	case FormatPNG:
		entries := make([]Entry, 0, len(raw.Chunks))
		for _, c := range raw.Chunks {
			entries = append(entries, Entry{Keyword: c.Keyword, Text: c.Text})
		}
		return entries
	case FormatJPEG, FormatWebP:
		entries := make([]Entry, 0, len(raw.Segments))
		for _, s := range raw.Segments {
			entries = append(entries, Entry{Keyword: syntheticKeyword(s), Text: s.Data})
		}
		return entries
	default:
		return nil
	}
}

// MapPNGChunksToEntries turns PNG tEXt/iTXt chunks into the Entry shape
// every per-tool parser is written against.
func MapPNGChunksToEntries(chunks []PNGChunk) []Entry {
	return EntriesFromRaw(RawMetadata{Format: FormatPNG, Chunks: chunks})
}

// MapSegmentsToEntries turns JPEG/WebP EXIF segments into the same Entry
// shape, via each segment's synthetic keyword.
func MapSegmentsToEntries(segments []Segment) []Entry {
	entries := make([]Entry, 0, len(segments))
	for _, s := range segments {
		entries = append(entries, Entry{Keyword: syntheticKeyword(s), Text: s.Data})
	}
	return entries
}

// syntheticKeyword derives the keyword used to look a segment up the same
// way a PNG keyword would be looked up, per spec's "synthetic keyword"
// rule (e.g. UserComment, Workflow, Prompt).
func syntheticKeyword(s Segment) string {
	switch s.Source {
	case SourceEXIFUserComment:
		return "UserComment"
	case SourceEXIFImageDescription:
		if s.Prefix != "" {
			return trimColon(s.Prefix)
		}
		return "ImageDescription"
	case SourceEXIFMake:
		if s.Prefix != "" {
			return trimColon(s.Prefix)
		}
		return "Make"
	case SourceJPEGComment:
		return "parameters"
	default:
		return ""
	}
}

func trimColon(prefix string) string {
	n := len(prefix)
	for n > 0 && (prefix[n-1] == ' ' || prefix[n-1] == ':') {
		n--
	}
	return prefix[:n]
}
