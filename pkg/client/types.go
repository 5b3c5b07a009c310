package client

import "github.com/easel-ai/easel/pkg/canvas"

// Graph is the canvas state returned by the daemon.
type Graph struct {
	Nodes []*canvas.Node `json:"nodes"`
	Edges []*canvas.Edge `json:"edges"`
}

// GenerateOptions is a generation submission.
type GenerateOptions struct {
	PromptNodeID string            `json:"prompt_node_id,omitempty"`
	Prompt       string            `json:"prompt"`
	Model        string            `json:"model"`
	N            int               `json:"n,omitempty"`
	Size         string            `json:"size,omitempty"`
	Params       map[string]string `json:"params,omitempty"`
	SourceImages []canvas.ImageRef `json:"source_images,omitempty"`
	Anchor       canvas.Position   `json:"anchor,omitempty"`
}

// GenerateResult is the reconciled outcome.
type GenerateResult struct {
	Success        bool     `json:"success"`
	Error          string   `json:"error,omitempty"`
	PlaceholderIDs []string `json:"placeholder_ids"`
	ImageIDs       []string `json:"image_ids,omitempty"`
	RevisedPrompt  string   `json:"revised_prompt,omitempty"`
}

// Model is one catalog entry as reported by the daemon.
type Model struct {
	ID             string   `json:"id"`
	Provider       string   `json:"provider"`
	Capabilities   []string `json:"capabilities"`
	MaxImages      int      `json:"max_images"`
	SupportedSizes []string `json:"supported_sizes"`
	CostTier       string   `json:"cost_tier"`
	AvgLatencyMS   int64    `json:"avg_latency_ms"`
}

// Status is the daemon health response.
type Status struct {
	Status string `json:"status"`
}
