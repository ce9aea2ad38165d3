package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/cvparse/cvparse/internal/common"
	"github.com/cvparse/cvparse/internal/extract"
	"github.com/cvparse/cvparse/internal/pipeline"
)

// Pipeline is the slice of the coordinator the server needs.
type Pipeline interface {
	Run(ctx context.Context, doc extract.Document, opts pipeline.RunOptions) (pipeline.Result, error)
}

// Server wires the HTTP surface: routing, auth, rate limiting, and the
// parse endpoint in front of the pipeline coordinator.
type Server struct {
	cfg      *common.Config
	pipe     Pipeline
	logger   *slog.Logger
	limiters *keyLimiters
}

func New(cfg *common.Config, pipe Pipeline, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:      cfg,
		pipe:     pipe,
		logger:   logger,
		limiters: newKeyLimiters(cfg.Auth.RateLimitRPM),
	}
}

// Handler builds the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.requireAPIKey)
		r.Use(s.rateLimit)
		r.Post("/parse", s.handleParse)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
