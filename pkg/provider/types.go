package provider

import "context"

// ID identifies a provider family (e.g. "openai", "gemini", "flux").
// The set is open: registering a new family must not touch
// orchestration logic.
type ID string

const (
	OpenAI ID = "openai"
	Gemini ID = "gemini"
	Flux   ID = "flux"
)

// Mode is the operation kind. It is inferred by the orchestrator from
// the presence of source images, never flagged by the caller.
type Mode string

const (
	ModeGenerate Mode = "generate"
	ModeEdit     Mode = "edit"
)

// Request is the normalized dispatch shape every provider family
// consumes. Source and mask images arrive as inline payloads; blob
// references and remote URLs are resolved before dispatch.
type Request struct {
	Model        string // concrete model or variant identifier
	Endpoint     string
	APIKey       string
	Prompt       string
	Mode         Mode
	N            int
	Size         string
	Params       map[string]string
	SourceImages []string
	MaskImage    string
}

// Result is the normalized response shape. Images entries are either
// inline payloads (base64 or data URIs) or remote URLs; the caller
// persists them either way.
type Result struct {
	Images        []string
	RevisedPrompt string
}

// Provider is one external image-generation family.
type Provider interface {
	// ID returns the unique identifier for this provider family.
	ID() ID

	// Generate dispatches a normalized request and returns the
	// normalized result. Both generate and edit operations flow through
	// here; req.Mode and the source images carry the distinction.
	Generate(ctx context.Context, req Request) (Result, error)
}
