// Package registry holds the static model catalog: every model a
// prompt node can reference resolves to exactly one ModelConfig here.
package registry

import (
	"time"

	"github.com/easel-ai/easel/pkg/provider"
)

// Capability describes what a model can do.
type Capability string

const (
	CapGenerate   Capability = "generate"
	CapEdit       Capability = "edit"
	CapMask       Capability = "mask"
	CapMultiImage Capability = "multi_image"
)

// ParamType is the value kind of a tunable parameter.
type ParamType string

const (
	ParamSelect ParamType = "select"
	ParamInt    ParamType = "int"
	ParamBool   ParamType = "bool"
)

// Parameter declares one tunable generation parameter. Submitted
// values must come from Options when the set is non-empty. EnabledFor
// restricts a parameter to requests exercising a capability (e.g. a
// strength slider only applies to edits).
type Parameter struct {
	Name       string
	Type       ParamType
	Options    []string
	Default    string
	EnabledFor Capability
}

// VariantTable maps source-image counts to concrete model variants for
// provider families that switch models by input shape. Selection
// happens in the orchestrator before dispatch, invisibly to callers.
type VariantTable struct {
	TextToImage     string // zero source images
	SingleImageEdit string // exactly one
	MultiImageEdit  string // two or more
}

// ModelConfig is one catalog entry.
type ModelConfig struct {
	ID             string
	Provider       provider.ID
	Capabilities   []Capability
	Parameters     []Parameter
	MaxImages      int
	SupportedSizes []string
	APIEndpoint    string
	CostTier       string
	AvgLatency     time.Duration
	Variants       *VariantTable
}

// HasCapability reports whether the model declares cap.
func (m *ModelConfig) HasCapability(cap Capability) bool {
	for _, c := range m.Capabilities {
		if c == cap {
			return true
		}
	}
	return false
}

// Variant returns the model identifier to dispatch for the given
// source-image count. Models without a variant table dispatch as
// themselves.
func (m *ModelConfig) Variant(sourceCount int) string {
	if m.Variants == nil {
		return m.ID
	}
	switch {
	case sourceCount == 0:
		return m.Variants.TextToImage
	case sourceCount == 1:
		return m.Variants.SingleImageEdit
	default:
		return m.Variants.MultiImageEdit
	}
}

var models = map[string]*ModelConfig{
	"gpt-image-1": {
		ID:           "gpt-image-1",
		Provider:     provider.OpenAI,
		Capabilities: []Capability{CapGenerate, CapEdit, CapMask, CapMultiImage},
		Parameters: []Parameter{
			{Name: "quality", Type: ParamSelect, Options: []string{"low", "medium", "high"}, Default: "medium"},
			{Name: "background", Type: ParamSelect, Options: []string{"opaque", "transparent"}, Default: "opaque"},
			{Name: "output_format", Type: ParamSelect, Options: []string{"png", "jpeg", "webp"}, Default: "png"},
		},
		MaxImages:      4,
		SupportedSizes: []string{"1024x1024", "1536x1024", "1024x1536", "auto"},
		APIEndpoint:    "https://api.openai.com/v1/images",
		CostTier:       "standard",
		AvgLatency:     25 * time.Second,
	},
	"dall-e-3": {
		ID:           "dall-e-3",
		Provider:     provider.OpenAI,
		Capabilities: []Capability{CapGenerate},
		Parameters: []Parameter{
			{Name: "quality", Type: ParamSelect, Options: []string{"standard", "hd"}, Default: "standard"},
			{Name: "style", Type: ParamSelect, Options: []string{"vivid", "natural"}, Default: "vivid"},
		},
		MaxImages:      1,
		SupportedSizes: []string{"1024x1024", "1792x1024", "1024x1792"},
		APIEndpoint:    "https://api.openai.com/v1/images/generations",
		CostTier:       "premium",
		AvgLatency:     15 * time.Second,
	},
	"gemini-2.5-flash-image": {
		ID:           "gemini-2.5-flash-image",
		Provider:     provider.Gemini,
		Capabilities: []Capability{CapGenerate, CapEdit, CapMultiImage},
		Parameters: []Parameter{
			{Name: "aspect_ratio", Type: ParamSelect, Options: []string{"1:1", "16:9", "9:16", "4:3", "3:4"}, Default: "1:1"},
		},
		MaxImages:      4,
		SupportedSizes: []string{"1024x1024", "auto"},
		APIEndpoint:    "https://generativelanguage.googleapis.com/v1beta/models",
		CostTier:       "standard",
		AvgLatency:     10 * time.Second,
		Variants: &VariantTable{
			TextToImage:     "gemini-2.5-flash-image",
			SingleImageEdit: "gemini-2.5-flash-image-edit",
			MultiImageEdit:  "gemini-2.5-flash-image-multi",
		},
	},
	"flux-pro-1.1": {
		ID:           "flux-pro-1.1",
		Provider:     provider.Flux,
		Capabilities: []Capability{CapGenerate},
		Parameters: []Parameter{
			{Name: "safety_tolerance", Type: ParamSelect, Options: []string{"1", "2", "3", "4", "5", "6"}, Default: "2"},
			{Name: "raw", Type: ParamBool, Options: []string{"true", "false"}, Default: "false"},
		},
		MaxImages:      4,
		SupportedSizes: []string{"1024x1024", "1440x1024", "1024x1440"},
		APIEndpoint:    "https://api.bfl.ai/v1",
		CostTier:       "premium",
		AvgLatency:     12 * time.Second,
	},
	"flux-kontext-pro": {
		ID:           "flux-kontext-pro",
		Provider:     provider.Flux,
		Capabilities: []Capability{CapGenerate, CapEdit},
		Parameters: []Parameter{
			{Name: "safety_tolerance", Type: ParamSelect, Options: []string{"1", "2", "3", "4", "5", "6"}, Default: "2"},
			{Name: "strength", Type: ParamSelect, Options: []string{"low", "medium", "high"}, Default: "medium", EnabledFor: CapEdit},
		},
		MaxImages:      2,
		SupportedSizes: []string{"1024x1024", "1440x1024", "1024x1440"},
		APIEndpoint:    "https://api.bfl.ai/v1",
		CostTier:       "premium",
		AvgLatency:     18 * time.Second,
	},
}

// Resolve looks up a model by ID.
func Resolve(id string) (*ModelConfig, bool) {
	m, ok := models[id]
	return m, ok
}

// List returns every catalog entry.
func List() []*ModelConfig {
	out := make([]*ModelConfig, 0, len(models))
	for _, m := range models {
		out = append(out, m)
	}
	return out
}
