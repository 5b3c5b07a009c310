// Package api is the HTTP surface the canvas UI talks to. The UI is an
// external collaborator: it requests placements and generations and
// renders whatever comes back.
package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/easel-ai/easel/pkg/blob"
	"github.com/easel-ai/easel/pkg/engine"
	"github.com/easel-ai/easel/pkg/store"
)

// Server encapsulates the HTTP API server.
type Server struct {
	st         *store.Store
	images     *blob.ImageStore
	creds      engine.CredentialStore
	writer     *engine.GraphWriter
	controller *engine.Controller
	fetch      *http.Client
	server     *http.Server
}

// NewServer wires the router. creds is the credential store the
// orchestrator reads from, which need not be the SQLite store. addr
// defaults to ":8140" when empty.
func NewServer(st *store.Store, images *blob.ImageStore, creds engine.CredentialStore, writer *engine.GraphWriter, controller *engine.Controller, addr string) *Server {
	s := &Server{
		st:         st,
		images:     images,
		creds:      creds,
		writer:     writer,
		controller: controller,
		fetch:      &http.Client{Timeout: 60 * time.Second},
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/v1/health", handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/graph", s.handleGraph)
		r.Delete("/graph", s.handleClearAll)

		r.Post("/nodes", s.handleCreateNode)
		r.Put("/nodes/{id}", s.handleUpdateNode)
		r.Patch("/nodes/{id}/position", s.handleMoveNode)
		r.Delete("/nodes/{id}", s.handleDeleteNode)

		r.Post("/edges", s.handleCreateEdge)
		r.Delete("/edges/{id}", s.handleDeleteEdge)

		r.Post("/generate", s.handleGenerate)
		r.Post("/compose", s.handleCompose)

		r.Get("/models", s.handleModels)

		r.Post("/images/ingest", s.handleIngest)
		r.Post("/images/cleanup", s.handleCleanup)
		r.Get("/images/{id}", s.handleGetImage)
		r.Get("/images/{id}/metadata", s.handleGetImageMetadata)

		r.Get("/preferences/{key}", s.handleGetPreference)
		r.Put("/preferences/{key}", s.handleSetPreference)

		r.Put("/credentials/{provider}", s.handleSetCredential)
		r.Delete("/credentials/{provider}", s.handleDeleteCredential)
	})

	if addr == "" {
		addr = ":8140"
	}
	s.server = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // generation requests block until reconciled
		IdleTimeout:  30 * time.Second,
	}
	return s
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start runs the HTTP server (blocking).
func (s *Server) Start() error {
	log.Printf("api: listening on %s", s.server.Addr)
	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requestLogger logs one line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Printf("api: %s %s -> %d (%s)", r.Method, r.URL.Path, ww.Status(), time.Since(start).Round(time.Millisecond))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("api: json encode failed: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
