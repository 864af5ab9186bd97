// Package api exposes the scraper over HTTP.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/trendscout/trendscout/internal/observability"
	"github.com/trendscout/trendscout/internal/scraper"
	"github.com/trendscout/trendscout/internal/types"
)

// ScrapeRunner runs one scrape request and always returns an envelope.
type ScrapeRunner interface {
	Scrape(ctx context.Context, req *types.ScrapeRequest) *types.ScrapeResult
	Stats() *scraper.Stats
}

// Server provides the REST API.
type Server struct {
	mux     *http.ServeMux
	srv     *http.Server
	runner  ScrapeRunner
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewServer creates a new API server listening on the given port.
func NewServer(port int, runner ScrapeRunner, metrics *observability.Metrics, logger *slog.Logger) *Server {
	s := &Server{
		mux:     http.NewServeMux(),
		runner:  runner,
		metrics: metrics,
		logger:  logger.With("component", "api_server"),
	}

	s.registerRoutes()
	s.srv = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.withCORS(s.mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	return s
}

// Start runs the server until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("API server starting", "addr", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("API server stopping")
	return s.srv.Shutdown(ctx)
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /", s.handleRoot)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("POST /scrape", s.handleScrape)
	s.mux.HandleFunc("GET /stats", s.handleStats)
	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics)
	}
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		s.jsonResponse(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"service": "trendscout",
		"endpoints": map[string]string{
			"POST /scrape": "run a scrape request",
			"GET /health":  "liveness probe",
			"GET /stats":   "scraper counters",
			"GET /metrics": "Prometheus metrics",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "trendscout",
	})
}

// handleScrape runs one scrape. Malformed JSON is the only 400; validation
// failures come back 200 with Success=false so callers get the structured
// envelope either way.
func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	var req types.ScrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.jsonResponse(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if s.metrics != nil {
		s.metrics.ScrapesTotal.Add(1)
	}

	result := s.runner.Scrape(r.Context(), &req)

	if s.metrics != nil {
		if !result.Success {
			s.metrics.ScrapesRejected.Add(1)
		}
		s.metrics.ListingsServed.Add(int64(len(result.Products)))
	}

	s.jsonResponse(w, http.StatusOK, result)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.runner.Stats().Snapshot())
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}
