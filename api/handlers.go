package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/seenimoa/startuplens/internal/store"
	"github.com/seenimoa/startuplens/internal/tracker"
	"github.com/seenimoa/startuplens/pkg/models"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 500
)

// SearchRequest is the body for POST /api/search.
type SearchRequest struct {
	CompanyName string `json:"company_name"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status    string           `json:"status"`
	Version   string           `json:"version"`
	Providers []ProviderStatus `json:"providers"`
	History   bool             `json:"history"`
	WSClients int              `json:"ws_clients"`
	Time      time.Time        `json:"time"`
}

// HistoryResponse is returned by GET /api/history/{entity}.
type HistoryResponse struct {
	Entity    string           `json:"entity"`
	Kind      store.Kind       `json:"kind,omitempty"`
	Snapshots []store.Snapshot `json:"snapshots"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	providers := s.providers
	if providers == nil {
		providers = []ProviderStatus{}
	}
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Version:   s.version,
		Providers: providers,
		History:   s.store != nil,
		WSClients: s.wsHub.ClientCount(),
		Time:      time.Now().UTC(),
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	name := strings.TrimSpace(req.CompanyName)
	if name == "" {
		s.writeError(w, http.StatusBadRequest, "Company name is required")
		return
	}

	profile, err := s.scraper.ScrapeCompany(r.Context(), name)
	if err != nil {
		s.logger.Warn("profile search failed", "company", name, "error", err)
		s.writeError(w, statusFor(err), err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	company := pathParam(r, "company")
	industry := pathParam(r, "industry")

	analysis, err := s.analyzer.AnalyzeNews(r.Context(), company, industry)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "No news articles found")
			return
		}
		s.logger.Warn("news analysis failed", "company", company, "industry", industry, "error", err)
		s.writeError(w, statusFor(err), err.Error())
		return
	}

	update := models.ReportUpdate{
		Kind:             string(store.KindNews),
		Entity:           analysis.Company.Query,
		Industry:         analysis.Industry.Query,
		AverageSentiment: analysis.Company.AverageSentiment,
		Prediction:       analysis.Company.Prediction,
		Count:            analysis.Company.ArticleCount,
		UpdatedAt:        analysis.LastUpdated,
	}
	if s.store != nil {
		id, err := s.store.SaveNews(r.Context(), analysis)
		if err != nil {
			s.logger.Warn("saving news snapshot failed", "company", company, "error", err)
		}
		update.SnapshotID = id
	}
	s.Publish(tracker.EventReportUpdated, update)

	s.writeJSON(w, http.StatusOK, analysis)
}

func (s *Server) handleSentiment(w http.ResponseWriter, r *http.Request) {
	company := pathParam(r, "company")

	report, err := s.analyzer.AnalyzeSocialMentions(r.Context(), company)
	if err != nil {
		s.logger.Warn("social analysis failed", "company", company, "error", err)
		s.writeError(w, statusFor(err), err.Error())
		return
	}

	if !report.NoData {
		update := models.ReportUpdate{
			Kind:             string(store.KindSocial),
			Entity:           report.CompanyName,
			AverageSentiment: report.AverageScores.Combined,
			Prediction:       report.Prediction,
			Count:            report.TotalMentions,
			UpdatedAt:        report.LastUpdated,
		}
		if s.store != nil {
			id, err := s.store.SaveSocial(r.Context(), report)
			if err != nil {
				s.logger.Warn("saving social snapshot failed", "company", company, "error", err)
			}
			update.SnapshotID = id
		}
		s.Publish(tracker.EventReportUpdated, update)
	}

	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, http.StatusNotFound, "History is not enabled")
		return
	}
	entity := pathParam(r, "entity")

	kind, err := store.ParseKind(r.URL.Query().Get("kind"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	snaps, err := s.store.ListSnapshots(r.Context(), entity, kind, limit)
	if err != nil {
		s.logger.Warn("listing snapshots failed", "entity", entity, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	s.writeJSON(w, http.StatusOK, HistoryResponse{Entity: entity, Kind: kind, Snapshots: snaps})
}

// pathParam returns a decoded, trimmed URL parameter. chi matches on
// RawPath when it is set, so only then is the value still escaped.
func pathParam(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if r.URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(v); err == nil {
			v = unescaped
		}
	}
	return strings.TrimSpace(v)
}
