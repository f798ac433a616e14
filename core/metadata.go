package core

import json "github.com/goccy/go-json"

func jsonMarshal(v any) ([]byte, error) { return json.Marshal(v) }

// Software identifies the tool family a GenerationMetadata record was
// produced by.
type Software string

const (
	SoftwareNovelAI          Software = "novelai"
	SoftwareComfyUI          Software = "comfyui"
	SoftwareTensorArt        Software = "tensorart"
	SoftwareStabilityMatrix  Software = "stability-matrix"
	SoftwareSwarmUI          Software = "swarmui"
	SoftwareSDWebUI          Software = "sd-webui"
	SoftwareForge            Software = "forge"
	SoftwareForgeNeo         Software = "forge-neo"
	SoftwareInvokeAI         Software = "invokeai"
	SoftwareCivitai          Software = "civitai"
	SoftwareHFSpace          Software = "hf-space"
	SoftwareEasyDiffusion    Software = "easydiffusion"
	SoftwareFooocus          Software = "fooocus"
	SoftwareRuinedFooocus    Software = "ruined-fooocus"
	SoftwareSDNext           Software = "sd-next"
)

// comfyUIFamily is the set of Software tags that always carry a node graph.
var comfyUIFamily = map[Software]bool{
	SoftwareComfyUI:         true,
	SoftwareTensorArt:       true,
	SoftwareStabilityMatrix: true,
}

// IsComfyUIFamily reports whether sw is one of the ComfyUI-derived tools
// that always carries a node graph (spec.md §3 GenerationMetadata).
func IsComfyUIFamily(sw Software) bool { return comfyUIFamily[sw] }

// ModelInfo is the optional checkpoint/model sub-record of BaseMetadata.
type ModelInfo struct {
	Name string
	Hash string
	VAE  string
}

// SamplingInfo is the optional sampler/seed sub-record of BaseMetadata.
type SamplingInfo struct {
	Sampler   string
	Scheduler string
	Steps     int
	CFGScale  float64
	Seed      int64
	ClipSkip  int

	HasSampler   bool
	HasScheduler bool
	HasSteps     bool
	HasCFGScale  bool
	HasSeed      bool
	HasClipSkip  bool
}

// HiresInfo is the optional hires-fix sub-record of BaseMetadata.
type HiresInfo struct {
	Scale    float64
	Upscaler string
	Steps    int
	Denoise  float64

	HasScale    bool
	HasUpscaler bool
	HasSteps    bool
	HasDenoise  bool
}

// UpscaleInfo is the optional post-hoc upscale sub-record of BaseMetadata.
type UpscaleInfo struct {
	Scale    float64
	Upscaler string

	HasScale    bool
	HasUpscaler bool
}

// BaseMetadata holds the fields shared by every GenerationMetadata variant.
type BaseMetadata struct {
	Prompt         string
	NegativePrompt string
	Model          *ModelInfo
	Sampling       *SamplingInfo
	Hires          *HiresInfo
	Upscale        *UpscaleInfo
	Width          int
	Height         int
}

// CharacterPrompt is a NovelAI v4 per-character prompt entry.
type CharacterPrompt struct {
	Prompt string
	Center *Coord
}

// Coord is a normalized (x, y) position in [0,1].
type Coord struct {
	X float64
	Y float64
}

// ComfyNodeInputValue is recursively a string, float64, bool, a
// [nodeID, outputIndex] reference (NodeRef), or a list of any of those.
// Consumers type-switch on the concrete Go type goccy/go-json produced.
type ComfyNodeInputValue = any

// NodeRef is a ComfyUI edge: a reference to another node's output.
type NodeRef struct {
	NodeID      string
	OutputIndex int
}

// MarshalJSON renders a NodeRef as ComfyUI's own [nodeID, outputIndex]
// pair shape, so a graph round-tripped through convert comes back in the
// wire format ComfyUI itself expects.
func (r NodeRef) MarshalJSON() ([]byte, error) {
	return []byte(`["` + r.NodeID + `",` + itoa(r.OutputIndex) + `]`), nil
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// ComfyNode is one node of a ComfyUI-style execution graph.
type ComfyNode struct {
	ClassType string                          `json:"class_type"`
	Inputs    map[string]ComfyNodeInputValue  `json:"inputs"`
	MetaTitle string                          `json:"-"` // from optional _meta.title
	HasMeta   bool                            `json:"-"`
	IsChanged []string                        `json:"is_changed,omitempty"`
}

// MarshalJSON emits the optional _meta.title field alongside class_type/
// inputs, matching ComfyUI's own node wire shape.
func (n ComfyNode) MarshalJSON() ([]byte, error) {
	type alias struct {
		ClassType string                         `json:"class_type"`
		Inputs    map[string]ComfyNodeInputValue `json:"inputs"`
		Meta      *struct {
			Title string `json:"title"`
		} `json:"_meta,omitempty"`
	}
	a := alias{ClassType: n.ClassType, Inputs: n.Inputs}
	if n.HasMeta {
		a.Meta = &struct {
			Title string `json:"title"`
		}{Title: n.MetaTitle}
	}
	return jsonMarshal(a)
}

// GenerationMetadata is the normalized, tagged-by-Software union every
// per-tool parser produces.
type GenerationMetadata struct {
	Software Software
	Base     BaseMetadata

	// NovelAI only.
	CharacterPrompts []CharacterPrompt
	UseCoords        bool
	UseOrder         bool
	HasUseCoords     bool
	HasUseOrder      bool

	// ComfyUI family (required there) and SwarmUI (optional, PNG-derived
	// only).
	Nodes map[string]ComfyNode
}

// EmbedMetadata is the relaxed BaseMetadata shape `Embed` accepts: no
// Software tag, plus CharacterPrompts and free-form Extras that land in the
// A1111 settings line.
type EmbedMetadata struct {
	Base             BaseMetadata
	CharacterPrompts []CharacterPrompt
	// Extras is ordered: Go maps don't preserve insertion order, so Extras
	// is a slice of key/value pairs instead of a map, matching spec.md's
	// "extras... append in insertion order" requirement exactly.
	Extras []ExtraField
}

// ExtraField is one Key/Value pair from EmbedMetadata.Extras. Value may be
// a string or a number; the emitter renders numbers without quotes.
type ExtraField struct {
	Key   string
	Value any
}
