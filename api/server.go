// Package api provides the HTTP JSON API for startuplens.
//
// It exposes company profile search, news and social sentiment analysis,
// stored snapshot history, and a WebSocket stream of report updates.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/seenimoa/startuplens/internal/config"
	"github.com/seenimoa/startuplens/internal/datasource"
	"github.com/seenimoa/startuplens/internal/store"
	"github.com/seenimoa/startuplens/pkg/models"
)

// ProfileScraper looks up a company profile by name.
type ProfileScraper interface {
	ScrapeCompany(ctx context.Context, name string) (*models.CompanyProfile, error)
}

// Analyzer runs the news and social pipelines.
type Analyzer interface {
	AnalyzeNews(ctx context.Context, company, industry string) (*models.NewsAnalysis, error)
	AnalyzeSocialMentions(ctx context.Context, company string) (*models.SocialReport, error)
}

// SnapshotStore persists and lists analysis snapshots.
type SnapshotStore interface {
	SaveNews(ctx context.Context, n *models.NewsAnalysis) (int64, error)
	SaveSocial(ctx context.Context, r *models.SocialReport) (int64, error)
	ListSnapshots(ctx context.Context, entity string, kind store.Kind, limit int) ([]store.Snapshot, error)
}

// ProviderStatus reports whether a document provider is usable.
type ProviderStatus struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"` // "news" or "social"
	Enabled bool   `json:"enabled"`
}

// ProviderStatuses lists the configured providers in fetch order.
func ProviderStatuses(news datasource.NewsFetcher, social []datasource.SocialFetcher) []ProviderStatus {
	out := make([]ProviderStatus, 0, len(social)+1)
	if news != nil {
		out = append(out, ProviderStatus{Name: news.Name(), Kind: "news", Enabled: news.Enabled()})
	}
	for _, f := range social {
		out = append(out, ProviderStatus{Name: f.Name(), Kind: "social", Enabled: f.Enabled()})
	}
	return out
}

// Deps are the collaborators a Server needs. Store may be nil, which
// disables history and snapshot persistence.
type Deps struct {
	Scraper   ProfileScraper
	Analyzer  Analyzer
	Store     SnapshotStore
	Providers []ProviderStatus
	Version   string
	Logger    *slog.Logger
}

// Server is the HTTP API server.
type Server struct {
	router    chi.Router
	cfg       *config.Config
	scraper   ProfileScraper
	analyzer  Analyzer
	store     SnapshotStore
	providers []ProviderStatus
	version   string
	wsHub     *WSHub
	logger    *slog.Logger
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg *config.Config, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	version := deps.Version
	if version == "" {
		version = "dev"
	}

	srv := &Server{
		cfg:       cfg,
		scraper:   deps.Scraper,
		analyzer:  deps.Analyzer,
		store:     deps.Store,
		providers: deps.Providers,
		version:   version,
		logger:    logger.With("component", "api"),
	}
	srv.wsHub = NewWSHub(srv.logger)
	srv.router = srv.buildRouter()
	return srv
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *WSHub {
	return s.wsHub
}

// Publish broadcasts an event to every WebSocket client.
func (s *Server) Publish(eventType string, data any) {
	s.wsHub.Broadcast(WSMessage{Type: eventType, Data: data})
}

// ListenAndServe starts the HTTP server and shuts it down gracefully when
// ctx is canceled or the process receives SIGINT/SIGTERM.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go s.wsHub.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS
	origins := []string{"*"}
	if s.cfg != nil && len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		// The WebSocket route must not sit behind the request timeout.
		r.Get("/ws", s.handleWebSocket)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(120 * time.Second))

			r.Post("/search", s.handleSearch)
			r.Get("/news/{company}/{industry}", s.handleNews)
			r.Get("/sentiment/{company}", s.handleSentiment)
			r.Get("/history/{entity}", s.handleHistory)
			r.Get("/config/keys", s.handleGetConfigKeys)
		})
	})

	return r
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to write JSON response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, ErrorResponse{Error: msg})
}

// statusFor maps a pipeline error to its HTTP status.
func statusFor(err error) int {
	var upErr *models.UpstreamError
	switch {
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &upErr):
		return http.StatusInternalServerError
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
