// Package engine contains the generation orchestrator and the node
// lifecycle controller: everything between a user action and a
// reconciled canvas.
package engine

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/easel-ai/easel/pkg/blob"
	"github.com/easel-ai/easel/pkg/canvas"
	"github.com/easel-ai/easel/pkg/provider"
	"github.com/easel-ai/easel/pkg/registry"
)

// CredentialSource yields provider API keys. An empty key with a nil
// error means no key is configured, a normal condition.
type CredentialSource interface {
	Credential(ctx context.Context, provider string) (string, error)
}

// CredentialStore is a writable CredentialSource. Key management must
// land in the same store the orchestrator reads from, whichever backend
// the daemon was started with.
type CredentialStore interface {
	CredentialSource
	SetCredential(ctx context.Context, provider, apiKey string) error
	DeleteCredential(ctx context.Context, provider string) error
}

// Request is one generation or edit submission. The operation mode is
// never set explicitly: a non-empty SourceImages list makes it an edit.
type Request struct {
	Prompt         string
	Model          string
	N              int
	Size           string
	Params         map[string]string
	SourceImages   []canvas.ImageRef
	MaskImage      canvas.ImageRef
	TargetPosition canvas.Position
	PlaceholderID  string
}

// Result is the normalized outcome. On failure Nodes is always empty:
// a process call is all-or-nothing.
type Result struct {
	Success       bool
	Error         string
	Nodes         []*canvas.Node
	ImageIDs      []string
	RevisedPrompt string
}

// Orchestrator normalizes heterogeneous provider APIs behind one
// request/response contract. Provider handles are injected, never
// constructed from hidden module state.
type Orchestrator struct {
	images    *blob.ImageStore
	creds     CredentialSource
	providers map[provider.ID]provider.Provider
	resolve   *resolver
}

// NewOrchestrator creates an orchestrator. The HTTP client is used for
// resolving remote image URLs; nil gets a default.
func NewOrchestrator(images *blob.ImageStore, creds CredentialSource, client *http.Client) *Orchestrator {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &Orchestrator{
		images:    images,
		creds:     creds,
		providers: make(map[provider.ID]provider.Provider),
		resolve:   &resolver{images: images, client: client},
	}
}

// Register adds a provider family. New families plug in here without
// touching Process.
func (o *Orchestrator) Register(p provider.Provider) {
	o.providers[p.ID()] = p
}

func failure(format string, args ...any) Result {
	return Result{Success: false, Error: fmt.Sprintf(format, args...)}
}

// Process runs one generation request end to end: model resolution,
// source resolution, validation, dispatch, and result persistence.
// It never returns an error; every failure is folded into the Result.
func (o *Orchestrator) Process(ctx context.Context, req Request) Result {
	cfg, ok := registry.Resolve(req.Model)
	if !ok {
		return failure("Unsupported model: %s", req.Model)
	}

	sources := o.resolve.resolveAll(ctx, req.SourceImages)
	var mask *resolvedImage
	if req.MaskImage != "" {
		m, err := o.resolve.resolve(ctx, req.MaskImage)
		if err != nil {
			log.Printf("engine: dropping unresolvable mask image: %v", err)
		} else {
			mask = &m
		}
	}

	// Presence of resolved source images flips the operation to edit.
	mode := provider.ModeGenerate
	if len(sources) > 0 {
		mode = provider.ModeEdit
	}

	n := req.N
	if n < 1 {
		n = 1
	}
	if err := registry.ValidateParams(cfg, n, req.Size, req.Params, mode); err != nil {
		return failure("Invalid parameters: %v", err)
	}

	impl, ok := o.providers[cfg.Provider]
	if !ok {
		return failure("Provider %s is not registered", cfg.Provider)
	}

	apiKey, err := o.creds.Credential(ctx, string(cfg.Provider))
	if err != nil {
		return failure("Credential lookup failed: %v", err)
	}
	if apiKey == "" {
		return failure("No API key configured for %s", cfg.Provider)
	}

	dispatch := provider.Request{
		Model:    cfg.Variant(len(sources)),
		Endpoint: cfg.APIEndpoint,
		APIKey:   apiKey,
		Prompt:   req.Prompt,
		Mode:     mode,
		N:        n,
		Size:     req.Size,
		Params:   req.Params,
	}
	for _, s := range sources {
		dispatch.SourceImages = append(dispatch.SourceImages, s.payload)
	}
	if mask != nil {
		dispatch.MaskImage = mask.payload
	}

	start := time.Now()
	res, err := impl.Generate(ctx, dispatch)
	GenerationSeconds.WithLabelValues(string(cfg.Provider)).Observe(time.Since(start).Seconds())
	if err != nil {
		GenerationTotal.WithLabelValues(string(cfg.Provider), "error").Inc()
		return failure("%s", provider.FriendlyError(err))
	}
	if len(res.Images) == 0 {
		GenerationTotal.WithLabelValues(string(cfg.Provider), "error").Inc()
		return failure("Provider returned no images")
	}

	out, err := o.persist(ctx, req, cfg, mode, res, sources, mask)
	if err != nil {
		GenerationTotal.WithLabelValues(string(cfg.Provider), "error").Inc()
		return failure("Failed to store generated images: %v", err)
	}
	GenerationTotal.WithLabelValues(string(cfg.Provider), "success").Inc()
	return out
}

// persist stores every returned image plus every consumed source and
// mask image, then builds one output node per image. All nodes share
// the caller's target position; individual placement is the caller's
// job. When a placeholder was supplied, the first node reuses its
// identity for an in-place data replace.
func (o *Orchestrator) persist(ctx context.Context, req Request, cfg *registry.ModelConfig, mode provider.Mode, res provider.Result, sources []resolvedImage, mask *resolvedImage) (Result, error) {
	imgSource := canvas.SourceGenerated
	if mode == provider.ModeEdit {
		imgSource = canvas.SourceEdited
	}

	// Reuse existing blob IDs for sources already in the store; persist
	// the rest so the generation record is fully self-describing.
	sourceIDs := make([]string, 0, len(sources))
	for _, s := range sources {
		id := s.blobID
		if id == "" {
			var err error
			id, err = o.images.Store(ctx, s.payload, canvas.SourceUploaded, nil)
			if err != nil {
				return Result{}, err
			}
		}
		sourceIDs = append(sourceIDs, id)
	}
	maskID := ""
	if mask != nil {
		maskID = mask.blobID
		if maskID == "" {
			var err error
			maskID, err = o.images.Store(ctx, mask.payload, canvas.SourceUploaded, nil)
			if err != nil {
				return Result{}, err
			}
		}
	}

	meta := &blob.Metadata{Tags: []string{string(imgSource), cfg.ID}}
	if w, h, ok := parseDimensions(req.Size); ok {
		meta.Width, meta.Height = w, h
	}

	out := Result{Success: true, RevisedPrompt: res.RevisedPrompt}
	for i, img := range res.Images {
		payload := img
		if canvas.ImageRef(img).IsRemoteURL() {
			fetched, err := o.resolve.fetch(ctx, img)
			if err != nil {
				return Result{}, err
			}
			payload = fetched
		}

		id, err := o.images.Store(ctx, payload, imgSource, meta)
		if err != nil {
			return Result{}, err
		}
		out.ImageIDs = append(out.ImageIDs, id)

		nodeID := canvas.NewID("node")
		if i == 0 && req.PlaceholderID != "" {
			nodeID = req.PlaceholderID
		}
		out.Nodes = append(out.Nodes, &canvas.Node{
			ID:         nodeID,
			Type:       canvas.NodeImage,
			Position:   req.TargetPosition,
			Selectable: true,
			Image: &canvas.ImageData{
				Source:  imgSource,
				ImageID: id,
				Generation: &canvas.GenerationRecord{
					Prompt:         req.Prompt,
					RevisedPrompt:  res.RevisedPrompt,
					Model:          cfg.ID,
					Params:         req.Params,
					SourceImageIDs: sourceIDs,
					MaskImageID:    maskID,
				},
			},
		})
	}
	return out, nil
}

func parseDimensions(size string) (w, h int, ok bool) {
	if size == "" || size == "auto" {
		return 0, 0, false
	}
	if _, err := fmt.Sscanf(size, "%dx%d", &w, &h); err != nil {
		return 0, 0, false
	}
	return w, h, true
}
