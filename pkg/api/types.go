package api

import (
	"github.com/easel-ai/easel/pkg/canvas"
)

// GraphResponse is the full canvas state.
type GraphResponse struct {
	Nodes []*canvas.Node `json:"nodes"`
	Edges []*canvas.Edge `json:"edges"`
}

// CreateNodeRequest places a new node on the canvas. Position is the
// desired anchor; the placement engine resolves overlaps.
type CreateNodeRequest struct {
	Type     canvas.NodeType    `json:"type"`
	Position canvas.Position    `json:"position"`
	Prompt   *canvas.PromptData `json:"prompt,omitempty"`
	Image    *canvas.ImageData  `json:"image,omitempty"`
}

// MoveNodeRequest rewrites a node position (drag path).
type MoveNodeRequest struct {
	Position canvas.Position `json:"position"`
}

// CreateEdgeRequest connects two existing nodes.
type CreateEdgeRequest struct {
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"source_handle,omitempty"`
	TargetHandle string `json:"target_handle,omitempty"`
}

// GenerateRequest submits a generation or edit. Source images may be
// blob IDs, data URIs, or remote URLs; their presence makes it an edit.
type GenerateRequest struct {
	PromptNodeID string            `json:"prompt_node_id,omitempty"`
	Prompt       string            `json:"prompt"`
	Model        string            `json:"model"`
	N            int               `json:"n,omitempty"`
	Size         string            `json:"size,omitempty"`
	Params       map[string]string `json:"params,omitempty"`
	SourceImages []canvas.ImageRef `json:"source_images,omitempty"`
	MaskImage    canvas.ImageRef   `json:"mask_image,omitempty"`
	Anchor       canvas.Position   `json:"anchor,omitempty"`
}

// GenerateResponse reports the reconciled outcome. PlaceholderIDs are
// the node identities that now carry either results or error cards.
type GenerateResponse struct {
	Success        bool     `json:"success"`
	Error          string   `json:"error,omitempty"`
	PlaceholderIDs []string `json:"placeholder_ids"`
	ImageIDs       []string `json:"image_ids,omitempty"`
	RevisedPrompt  string   `json:"revised_prompt,omitempty"`
}

// ComposeRequest synthesizes a prompt node from selected image nodes.
type ComposeRequest struct {
	SelectedIDs []string `json:"selected_ids"`
}

// IngestRequest brings an external image into the blob store and onto
// the canvas. Exactly one of URL and Data is set. Attribution is
// attached verbatim onto the resulting node.
type IngestRequest struct {
	URL         string              `json:"url,omitempty"`
	Data        string              `json:"data,omitempty"`
	Source      canvas.ImageSource  `json:"source,omitempty"`
	Position    canvas.Position     `json:"position"`
	Attribution *canvas.Attribution `json:"attribution,omitempty"`
}

// CredentialRequest sets a provider API key.
type CredentialRequest struct {
	APIKey string `json:"api_key"`
}

// PreferenceRequest sets a scalar preference.
type PreferenceRequest struct {
	Value string `json:"value"`
}

// CleanupResponse reports orphan cleanup results.
type CleanupResponse struct {
	Deleted int `json:"deleted"`
}
