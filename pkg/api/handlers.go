package api

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/easel-ai/easel/pkg/blob"
	"github.com/easel-ai/easel/pkg/canvas"
	"github.com/easel-ai/easel/pkg/engine"
	"github.com/easel-ai/easel/pkg/registry"
)

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, GraphResponse{
		Nodes: s.writer.Nodes(),
		Edges: s.writer.Edges(),
	})
}

func (s *Server) handleClearAll(w http.ResponseWriter, r *http.Request) {
	if err := s.st.ClearAll(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writer.Reset(r.Context(), canvas.NewGraph())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateNode(w http.ResponseWriter, r *http.Request) {
	var req CreateNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	node := &canvas.Node{
		ID:         canvas.NewID("node"),
		Type:       req.Type,
		Selectable: true,
	}
	switch req.Type {
	case canvas.NodePrompt:
		if req.Prompt == nil {
			req.Prompt = &canvas.PromptData{}
		}
		node.Prompt = req.Prompt
	case canvas.NodeImage:
		if req.Image == nil {
			writeError(w, http.StatusBadRequest, "image nodes require image data")
			return
		}
		node.Image = req.Image
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown node type %q", req.Type))
		return
	}

	node.Position = s.controller.PlaceNode(req.Position, req.Type)
	s.writer.AddNode(node)
	writeJSON(w, http.StatusCreated, node)
}

func (s *Server) handleUpdateNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	existing, ok := s.writer.Node(id)
	if !ok {
		writeError(w, http.StatusNotFound, "node not found")
		return
	}

	var req CreateNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Prompt != nil && existing.Type == canvas.NodePrompt {
		existing.Prompt = req.Prompt
	}
	if req.Image != nil && existing.Type == canvas.NodeImage {
		existing.Image = req.Image
	}
	s.writer.UpdateNode(existing)
	writeJSON(w, http.StatusOK, existing)
}

func (s *Server) handleMoveNode(w http.ResponseWriter, r *http.Request) {
	var req MoveNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.writer.MoveNode(chi.URLParam(r, "id"), req.Position)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteNode(w http.ResponseWriter, r *http.Request) {
	s.writer.RemoveNode(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateEdge(w http.ResponseWriter, r *http.Request) {
	var req CreateEdgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	// Both endpoints must exist at creation time. After that, orphaned
	// edges are tolerated until opportunistic cleanup.
	if _, ok := s.writer.Node(req.Source); !ok {
		writeError(w, http.StatusBadRequest, "source node does not exist")
		return
	}
	if _, ok := s.writer.Node(req.Target); !ok {
		writeError(w, http.StatusBadRequest, "target node does not exist")
		return
	}

	edge := &canvas.Edge{
		ID:           canvas.NewID("edge"),
		Source:       req.Source,
		Target:       req.Target,
		SourceHandle: req.SourceHandle,
		TargetHandle: req.TargetHandle,
	}
	s.writer.AddEdge(edge)
	writeJSON(w, http.StatusCreated, edge)
}

func (s *Server) handleDeleteEdge(w http.ResponseWriter, r *http.Request) {
	s.writer.RemoveEdge(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Prompt == "" || req.Model == "" {
		writeError(w, http.StatusBadRequest, "prompt and model are required")
		return
	}

	ids, result := s.controller.Generate(r.Context(), engine.Request{
		Prompt:         req.Prompt,
		Model:          req.Model,
		N:              req.N,
		Size:           req.Size,
		Params:         req.Params,
		SourceImages:   req.SourceImages,
		MaskImage:      req.MaskImage,
		TargetPosition: req.Anchor,
	}, req.PromptNodeID)

	writeJSON(w, http.StatusOK, GenerateResponse{
		Success:        result.Success,
		Error:          result.Error,
		PlaceholderIDs: ids,
		ImageIDs:       result.ImageIDs,
		RevisedPrompt:  result.RevisedPrompt,
	})
}

func (s *Server) handleCompose(w http.ResponseWriter, r *http.Request) {
	var req ComposeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	node := s.controller.Compose(req.SelectedIDs)
	if node == nil {
		writeError(w, http.StatusBadRequest, "need at least two image nodes to compose")
		return
	}
	writeJSON(w, http.StatusCreated, node)
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	type modelDTO struct {
		ID             string   `json:"id"`
		Provider       string   `json:"provider"`
		Capabilities   []string `json:"capabilities"`
		MaxImages      int      `json:"max_images"`
		SupportedSizes []string `json:"supported_sizes"`
		CostTier       string   `json:"cost_tier"`
		AvgLatencyMS   int64    `json:"avg_latency_ms"`
	}
	var out []modelDTO
	for _, m := range registry.List() {
		caps := make([]string, len(m.Capabilities))
		for i, c := range m.Capabilities {
			caps[i] = string(c)
		}
		out = append(out, modelDTO{
			ID:             m.ID,
			Provider:       string(m.Provider),
			Capabilities:   caps,
			MaxImages:      m.MaxImages,
			SupportedSizes: m.SupportedSizes,
			CostTier:       m.CostTier,
			AvgLatencyMS:   m.AvgLatency.Milliseconds(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleIngest brings an external photo or an uploaded payload into the
// blob store and places an image node for it. Attribution fields ride
// along verbatim.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	payload := req.Data
	source := req.Source
	if source == "" {
		source = canvas.SourceUploaded
	}

	if req.URL != "" {
		fetched, err := s.fetchImage(r, req.URL)
		if err != nil {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		payload = fetched
		if req.Source == "" {
			source = canvas.SourceUnsplash
		}
	}
	if payload == "" {
		writeError(w, http.StatusBadRequest, "either url or data is required")
		return
	}

	var tags []string
	if req.Attribution != nil && req.Attribution.Author != "" {
		tags = append(tags, "by:"+req.Attribution.Author)
	}
	id, err := s.images.Store(r.Context(), payload, source, &blob.Metadata{Tags: tags})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	node := &canvas.Node{
		ID:         canvas.NewID("node"),
		Type:       canvas.NodeImage,
		Position:   s.controller.PlaceNode(req.Position, canvas.NodeImage),
		Selectable: true,
		Image: &canvas.ImageData{
			Source:      source,
			ImageID:     id,
			Attribution: req.Attribution,
		},
	}
	s.writer.AddNode(node)
	writeJSON(w, http.StatusCreated, node)
}

func (s *Server) fetchImage(r *http.Request, url string) (string, error) {
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := s.fetch.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch failed: HTTP %d", resp.StatusCode)
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 20<<20))
	if err != nil {
		return "", err
	}
	mime := resp.Header.Get("Content-Type")
	if mime == "" {
		mime = "image/jpeg"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(raw), nil
}

func (s *Server) handleCleanup(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.images.CleanupOrphans(r.Context(), s.writer.LiveImageIDs())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, CleanupResponse{Deleted: deleted})
}

func (s *Server) handleGetImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	payload, ok, err := s.images.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "image not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "data": payload})
}

func (s *Server) handleGetImageMetadata(w http.ResponseWriter, r *http.Request) {
	meta, err := s.images.GetMetadata(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if meta == nil {
		writeError(w, http.StatusNotFound, "image not found")
		return
	}
	// Metadata responses omit the payload; clients fetch it separately.
	meta.ImageData = ""
	writeJSON(w, http.StatusOK, meta)
}

func (s *Server) handleGetPreference(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	value, found, err := s.st.GetPreference(r.Context(), key)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "preference not set")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": key, "value": value})
}

func (s *Server) handleSetPreference(w http.ResponseWriter, r *http.Request) {
	var req PreferenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.st.SetPreference(r.Context(), chi.URLParam(r, "key"), req.Value); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetCredential(w http.ResponseWriter, r *http.Request) {
	var req CredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.APIKey == "" {
		writeError(w, http.StatusBadRequest, "api_key is required")
		return
	}
	if err := s.creds.SetCredential(r.Context(), chi.URLParam(r, "provider"), req.APIKey); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteCredential(w http.ResponseWriter, r *http.Request) {
	if err := s.creds.DeleteCredential(r.Context(), chi.URLParam(r, "provider")); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
