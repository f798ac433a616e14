package tools

import (
	"strings"

	json "github.com/goccy/go-json"

	"github.com/alex-voss/sdmeta/core"
)

// rawComfyNode mirrors the wire shape of one ComfyUI graph node before
// input values are classified into strings/numbers/NodeRef edges.
type rawComfyNode struct {
	ClassType string                     `json:"class_type"`
	Inputs    map[string]json.RawMessage `json:"inputs"`
	Meta      *struct {
		Title string `json:"title"`
	} `json:"_meta"`
}

// ParseComfyUI reads the `prompt` PNG entry as a ComfyUI node graph
// (spec.md §4.5 "ComfyUI parser").
func ParseComfyUI(entries []core.Entry, _ []core.Segment) (core.GenerationMetadata, error) {
	raw, ok := entryText(entries, "prompt")
	if !ok {
		return core.GenerationMetadata{}, core.ErrUnsupportedFormat
	}
	return parseComfyGraph(raw)
}

// ParseComfyUISegment reads the UserComment JSON's `prompt` field (or the
// whole payload) as a node graph, for JPEG/WebP containers.
func ParseComfyUISegment(_ []core.Entry, segments []core.Segment) (core.GenerationMetadata, error) {
	s, ok := segmentText(segments, core.SourceEXIFUserComment)
	if !ok {
		return core.GenerationMetadata{}, core.ErrUnsupportedFormat
	}
	var wrapper struct {
		Prompt json.RawMessage `json:"prompt"`
	}
	if err := json.Unmarshal([]byte(s), &wrapper); err == nil && len(wrapper.Prompt) > 0 {
		return parseComfyGraph(string(wrapper.Prompt))
	}
	return parseComfyGraph(s)
}

func parseComfyGraph(raw string) (core.GenerationMetadata, error) {
	var rawNodes map[string]rawComfyNode
	if err := json.Unmarshal([]byte(raw), &rawNodes); err != nil {
		return core.GenerationMetadata{}, core.ErrUnsupportedFormat
	}
	if !strings.Contains(raw, "class_type") {
		return core.GenerationMetadata{}, core.ErrUnsupportedFormat
	}

	nodes := make(map[string]core.ComfyNode, len(rawNodes))
	for id, rn := range rawNodes {
		node := core.ComfyNode{ClassType: rn.ClassType, Inputs: make(map[string]core.ComfyNodeInputValue, len(rn.Inputs))}
		if rn.Meta != nil {
			node.MetaTitle = rn.Meta.Title
			node.HasMeta = true
		}
		for k, v := range rn.Inputs {
			node.Inputs[k] = decodeComfyInputValue(v)
		}
		nodes[id] = node
	}

	meta := core.GenerationMetadata{Software: core.SoftwareComfyUI, Nodes: nodes}
	meta.Base = traceComfyBase(nodes)
	return meta, nil
}

// decodeComfyInputValue classifies a raw JSON input value into a plain
// string/float64/bool, a [nodeID, outputIndex] NodeRef edge, or a list of
// any of those (core.ComfyNodeInputValue, spec.md §3).
func decodeComfyInputValue(raw json.RawMessage) core.ComfyNodeInputValue {
	var ref [2]json.RawMessage
	if json.Unmarshal(raw, &ref) == nil {
		var nodeID string
		var outIdx int
		if json.Unmarshal(ref[0], &nodeID) == nil && json.Unmarshal(ref[1], &outIdx) == nil {
			return core.NodeRef{NodeID: nodeID, OutputIndex: outIdx}
		}
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return string(raw)
	}
	return generic
}

// traceComfyBase extracts BaseMetadata by tracing from a KSampler*-class
// node backwards through positive/negative edges to text-encode nodes,
// and through model/latent_image edges to checkpoint/loader and
// latent-shape nodes (spec.md §4.5).
func traceComfyBase(nodes map[string]core.ComfyNode) core.BaseMetadata {
	var base core.BaseMetadata
	samplerID, sampler := findSampler(nodes)
	if sampler == nil {
		return base
	}

	if ref, ok := asNodeRef(sampler.Inputs["positive"]); ok {
		base.Prompt = tracePromptText(nodes, ref.NodeID)
	}
	if ref, ok := asNodeRef(sampler.Inputs["negative"]); ok {
		base.NegativePrompt = tracePromptText(nodes, ref.NodeID)
	}
	if ref, ok := asNodeRef(sampler.Inputs["model"]); ok {
		if ckpt, found := nodes[ref.NodeID]; found {
			base.Model = &core.ModelInfo{Name: stringInput(ckpt.Inputs, "ckpt_name")}
		}
	}
	if ref, ok := asNodeRef(sampler.Inputs["latent_image"]); ok {
		if latent, found := nodes[ref.NodeID]; found {
			base.Width = intInput(latent.Inputs, "width")
			base.Height = intInput(latent.Inputs, "height")
		}
	}

	sampling := &core.SamplingInfo{}
	if v, ok := intInputOK(sampler.Inputs, "steps"); ok {
		sampling.Steps, sampling.HasSteps = v, true
	}
	if v, ok := floatInputOK(sampler.Inputs, "cfg"); ok {
		sampling.CFGScale, sampling.HasCFGScale = v, true
	}
	if v, ok := intInputOK(sampler.Inputs, "seed"); ok {
		sampling.Seed, sampling.HasSeed = int64(v), true
	}
	if v := stringInput(sampler.Inputs, "sampler_name"); v != "" {
		sampling.Sampler, sampling.HasSampler = v, true
	}
	if v := stringInput(sampler.Inputs, "scheduler"); v != "" {
		sampling.Scheduler, sampling.HasScheduler = v, true
	}
	base.Sampling = sampling

	_ = samplerID
	return base
}

func findSampler(nodes map[string]core.ComfyNode) (string, *core.ComfyNode) {
	for id, n := range nodes {
		if strings.HasPrefix(n.ClassType, "KSampler") {
			node := n
			return id, &node
		}
	}
	return "", nil
}

func tracePromptText(nodes map[string]core.ComfyNode, nodeID string) string {
	node, ok := nodes[nodeID]
	if !ok {
		return ""
	}
	if v := stringInput(node.Inputs, "text"); v != "" {
		return v
	}
	return ""
}

func asNodeRef(v core.ComfyNodeInputValue) (core.NodeRef, bool) {
	ref, ok := v.(core.NodeRef)
	return ref, ok
}

func stringInput(inputs map[string]core.ComfyNodeInputValue, key string) string {
	s, _ := inputs[key].(string)
	return s
}

func intInput(inputs map[string]core.ComfyNodeInputValue, key string) int {
	v, _ := intInputOK(inputs, key)
	return v
}

func intInputOK(inputs map[string]core.ComfyNodeInputValue, key string) (int, bool) {
	switch n := inputs[key].(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	default:
		return 0, false
	}
}

func floatInputOK(inputs map[string]core.ComfyNodeInputValue, key string) (float64, bool) {
	switch n := inputs[key].(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}
