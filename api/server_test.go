package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/seenimoa/startuplens/internal/config"
	"github.com/seenimoa/startuplens/internal/store"
	"github.com/seenimoa/startuplens/internal/tracker"
	"github.com/seenimoa/startuplens/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Test Helpers
// ════════════════════════════════════════════════════════════════════

type fakeScraper struct {
	err error
}

func (f *fakeScraper) ScrapeCompany(_ context.Context, name string) (*models.CompanyProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	p := models.NewCompanyProfile("https://growjo.test/company/" + strings.ToLower(name))
	p.Name = name
	return p, nil
}

type fakeAnalyzer struct {
	mu        sync.Mutex
	newsErr   error
	social    *models.SocialReport
	lastQuery []string
}

func (f *fakeAnalyzer) AnalyzeNews(_ context.Context, company, industry string) (*models.NewsAnalysis, error) {
	f.mu.Lock()
	f.lastQuery = []string{company, industry}
	f.mu.Unlock()
	if f.newsErr != nil {
		return nil, f.newsErr
	}
	return &models.NewsAnalysis{
		Company: models.AggregateReport{
			Query:            company,
			Articles:         []models.Article{{Title: "Acme raises"}},
			ArticleCount:     1,
			AverageSentiment: 0.4,
			Prediction:       models.SentimentPositive,
			FetchStatus:      models.FetchOK,
		},
		Industry: models.AggregateReport{
			Query:       industry,
			Articles:    []models.Article{},
			Prediction:  models.SentimentNeutral,
			FetchStatus: models.FetchEmpty,
		},
		LastUpdated: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}, nil
}

func (f *fakeAnalyzer) AnalyzeSocialMentions(_ context.Context, company string) (*models.SocialReport, error) {
	if f.social != nil {
		return f.social, nil
	}
	return models.NewNoDataReport(company), nil
}

func testServer(t *testing.T, an *fakeAnalyzer, st SnapshotStore) *Server {
	t.Helper()
	if an == nil {
		an = &fakeAnalyzer{}
	}
	return NewServer(&config.Config{}, Deps{
		Scraper:  &fakeScraper{},
		Analyzer: an,
		Store:    st,
		Providers: []ProviderStatus{
			{Name: "newsapi", Kind: "news", Enabled: true},
			{Name: "twitter", Kind: "social", Enabled: false},
		},
		Version: "test",
	})
}

func testStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.New(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func do(t *testing.T, srv *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return resp.Error
}

// pendingEvents drains broadcasts queued on a hub that is not running.
func pendingEvents(srv *Server) []WSMessage {
	var msgs []WSMessage
	for {
		select {
		case msg := <-srv.wsHub.broadcast:
			msgs = append(msgs, msg)
		default:
			return msgs
		}
	}
}

// ════════════════════════════════════════════════════════════════════
// Health & keys
// ════════════════════════════════════════════════════════════════════

func TestHandleHealth(t *testing.T) {
	srv := testServer(t, nil, nil)
	rec := do(t, srv, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "ok" || resp.Version != "test" {
		t.Errorf("health: got %+v", resp)
	}
	if len(resp.Providers) != 2 || resp.Providers[1].Name != "twitter" || resp.Providers[1].Enabled {
		t.Errorf("providers: got %+v", resp.Providers)
	}
	if resp.History {
		t.Error("history: got true with no store")
	}
}

func TestHandleGetConfigKeys(t *testing.T) {
	srv := testServer(t, nil, nil)
	rec := do(t, srv, http.MethodGet, "/api/config/keys", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	var keys []config.KeyStatus
	if err := json.NewDecoder(rec.Body).Decode(&keys); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(keys) != 4 {
		t.Errorf("keys: got %d, want 4", len(keys))
	}
}

// ════════════════════════════════════════════════════════════════════
// POST /api/search
// ════════════════════════════════════════════════════════════════════

func TestHandleSearch(t *testing.T) {
	srv := testServer(t, nil, nil)
	rec := do(t, srv, http.MethodPost, "/api/search", `{"company_name":"Acme"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body)
	}
	var p models.CompanyProfile
	if err := json.NewDecoder(rec.Body).Decode(&p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Name != "Acme" || p.Location != models.NotAvailable {
		t.Errorf("profile: got %+v", p)
	}
}

func TestHandleSearch_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"invalid JSON", `{not json`, "Invalid request body"},
		{"missing name", `{}`, "Company name is required"},
		{"blank name", `{"company_name":"   "}`, "Company name is required"},
	}
	srv := testServer(t, nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, http.MethodPost, "/api/search", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
			}
			if got := decodeError(t, rec); got != tt.want {
				t.Errorf("error: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHandleSearch_UpstreamFailure(t *testing.T) {
	srv := NewServer(&config.Config{}, Deps{
		Scraper:  &fakeScraper{err: &models.UpstreamError{Source: "profile", URL: "https://growjo.test/company/acme", StatusCode: 404}},
		Analyzer: &fakeAnalyzer{},
	})
	rec := do(t, srv, http.MethodPost, "/api/search", `{"company_name":"Acme"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	if got := decodeError(t, rec); !strings.Contains(got, "HTTP 404") {
		t.Errorf("error: got %q", got)
	}
}

// ════════════════════════════════════════════════════════════════════
// GET /api/news
// ════════════════════════════════════════════════════════════════════

func TestHandleNews(t *testing.T) {
	an := &fakeAnalyzer{}
	st := testStore(t)
	srv := testServer(t, an, st)

	rec := do(t, srv, http.MethodGet, "/api/news/Acme%20Robotics/Fintech", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body)
	}
	if an.lastQuery[0] != "Acme Robotics" || an.lastQuery[1] != "Fintech" {
		t.Errorf("query: got %q", an.lastQuery)
	}

	var body map[string]json.RawMessage
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, key := range []string{"company", "industry", "last_updated"} {
		if _, ok := body[key]; !ok {
			t.Errorf("response missing %q", key)
		}
	}

	snaps, err := st.ListSnapshots(context.Background(), "acme robotics", store.KindNews, 0)
	if err != nil || len(snaps) != 1 {
		t.Fatalf("snapshots: got %d, %v", len(snaps), err)
	}

	events := pendingEvents(srv)
	if len(events) != 1 || events[0].Type != tracker.EventReportUpdated {
		t.Fatalf("events: got %+v", events)
	}
	update := events[0].Data.(models.ReportUpdate)
	if update.Kind != "news" || update.SnapshotID != snaps[0].ID || update.Count != 1 {
		t.Errorf("update: got %+v", update)
	}
}

func TestHandleNews_PathDecoding(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/news/100%2541/fintech", "100%41"},
		{"/api/news/Acme%2FLabs/fintech", "Acme/Labs"},
		{"/api/news/%20Acme%20/fintech", "Acme"},
	}
	for _, tt := range tests {
		an := &fakeAnalyzer{}
		srv := testServer(t, an, nil)
		rec := do(t, srv, http.MethodGet, tt.path, "")
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status %d, body %s", tt.path, rec.Code, rec.Body)
			continue
		}
		if an.lastQuery[0] != tt.want {
			t.Errorf("%s: company got %q, want %q", tt.path, an.lastQuery[0], tt.want)
		}
	}
}

func TestHandleNews_NotFound(t *testing.T) {
	an := &fakeAnalyzer{newsErr: fmt.Errorf("news for acme: %w", models.ErrNotFound)}
	srv := testServer(t, an, nil)

	rec := do(t, srv, http.MethodGet, "/api/news/acme/fintech", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusNotFound)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"error":"No news articles found"}` {
		t.Errorf("body: got %s", got)
	}
	if events := pendingEvents(srv); len(events) != 0 {
		t.Errorf("events: got %d, want none", len(events))
	}
}

func TestHandleNews_InternalError(t *testing.T) {
	srv := testServer(t, &fakeAnalyzer{newsErr: errors.New("scorer exploded")}, nil)
	rec := do(t, srv, http.MethodGet, "/api/news/acme/fintech", "")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}

// ════════════════════════════════════════════════════════════════════
// GET /api/sentiment
// ════════════════════════════════════════════════════════════════════

func TestHandleSentiment_NoData(t *testing.T) {
	srv := testServer(t, nil, nil)
	rec := do(t, srv, http.MethodGet, "/api/sentiment/Acme", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	var report models.SocialReport
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !report.NoData || report.CompanyName != "Acme" {
		t.Errorf("report: got %+v", report)
	}
	if events := pendingEvents(srv); len(events) != 0 {
		t.Errorf("events: got %d, want none for no-data report", len(events))
	}
}

func TestHandleSentiment_SavesSnapshot(t *testing.T) {
	report := &models.SocialReport{
		CompanyName:   "Acme",
		TotalMentions: 3,
		AverageScores: models.AverageScores{Combined: -0.3},
		Prediction:    models.SentimentNegative,
		CommonThemes:  []string{},
		RawData:       []models.AnalyzedDocument{},
		LastUpdated:   time.Now().UTC(),
	}
	st := testStore(t)
	srv := testServer(t, &fakeAnalyzer{social: report}, st)

	rec := do(t, srv, http.MethodGet, "/api/sentiment/Acme", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	snaps, err := st.ListSnapshots(context.Background(), "Acme", store.KindSocial, 0)
	if err != nil || len(snaps) != 1 {
		t.Fatalf("snapshots: got %d, %v", len(snaps), err)
	}
	if snaps[0].Prediction != models.SentimentNegative {
		t.Errorf("prediction: got %q", snaps[0].Prediction)
	}
	if events := pendingEvents(srv); len(events) != 1 {
		t.Errorf("events: got %d, want 1", len(events))
	}
}

// ════════════════════════════════════════════════════════════════════
// GET /api/history
// ════════════════════════════════════════════════════════════════════

func TestHandleHistory_Disabled(t *testing.T) {
	srv := testServer(t, nil, nil)
	rec := do(t, srv, http.MethodGet, "/api/history/acme", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHandleHistory(t *testing.T) {
	st := testStore(t)
	srv := testServer(t, nil, st)
	for i := 0; i < 3; i++ {
		do(t, srv, http.MethodGet, "/api/news/Acme/Fintech", "")
	}

	rec := do(t, srv, http.MethodGet, "/api/history/ACME?kind=news&limit=2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body)
	}
	var resp HistoryResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Entity != "ACME" || resp.Kind != store.KindNews || len(resp.Snapshots) != 2 {
		t.Errorf("history: got entity=%q kind=%q n=%d", resp.Entity, resp.Kind, len(resp.Snapshots))
	}

	rec = do(t, srv, http.MethodGet, "/api/history/acme?kind=social", "")
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Snapshots) != 0 {
		t.Errorf("social history: got %d, want 0", len(resp.Snapshots))
	}
}

func TestHandleHistory_BadQuery(t *testing.T) {
	srv := testServer(t, nil, testStore(t))
	for _, target := range []string{
		"/api/history/acme?kind=tweets",
		"/api/history/acme?limit=0",
		"/api/history/acme?limit=many",
	} {
		rec := do(t, srv, http.MethodGet, target, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: got %d, want %d", target, rec.Code, http.StatusBadRequest)
		}
	}
}

// ════════════════════════════════════════════════════════════════════
// WebSocket
// ════════════════════════════════════════════════════════════════════

func TestWebSocketReceivesReportUpdates(t *testing.T) {
	srv := testServer(t, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.Hub().Run(ctx)

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/api/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	// The pong proves the client is registered with the hub.
	if err := conn.WriteJSON(WSMessage{Type: "ping"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	var msg WSMessage
	if err := conn.ReadJSON(&msg); err != nil || msg.Type != "pong" {
		t.Fatalf("pong: got %+v, %v", msg, err)
	}

	srv.Publish(tracker.EventReportUpdated, models.ReportUpdate{Kind: "news", Entity: "acme"})

	var raw struct {
		Type string              `json:"type"`
		Data models.ReportUpdate `json:"data"`
	}
	if err := conn.ReadJSON(&raw); err != nil {
		t.Fatalf("read: %v", err)
	}
	if raw.Type != tracker.EventReportUpdated || raw.Data.Entity != "acme" {
		t.Errorf("event: got %+v", raw)
	}
	if n := srv.Hub().ClientCount(); n != 1 {
		t.Errorf("ClientCount: got %d, want 1", n)
	}
}

// ════════════════════════════════════════════════════════════════════
// Helpers
// ════════════════════════════════════════════════════════════════════

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", models.Validationf("bad"), http.StatusBadRequest},
		{"not found", fmt.Errorf("x: %w", models.ErrNotFound), http.StatusNotFound},
		{"upstream", fmt.Errorf("x: %w", &models.UpstreamError{Source: "profile"}), http.StatusInternalServerError},
		{"timeout", fmt.Errorf("x: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("%s: got %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestProviderStatuses(t *testing.T) {
	got := ProviderStatuses(nil, nil)
	if len(got) != 0 {
		t.Errorf("ProviderStatuses(nil): got %+v", got)
	}
}
