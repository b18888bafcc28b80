package store

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/seenimoa/startuplens/pkg/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "nested", "startuplens.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndListSnapshots(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	for i, avg := range []float64{0.1, 0.2, 0.3} {
		_, err := s.Save(ctx, Snapshot{
			Entity:           "Acme",
			Kind:             KindNews,
			AverageSentiment: avg,
			Prediction:       models.LabelFor(avg),
			Payload:          json.RawMessage(`{"n":1}`),
			CreatedAt:        base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("Save #%d: %v", i, err)
		}
	}
	if _, err := s.Save(ctx, Snapshot{Entity: "acme", Kind: KindSocial, Payload: json.RawMessage(`{}`), CreatedAt: base}); err != nil {
		t.Fatalf("Save social: %v", err)
	}
	if _, err := s.Save(ctx, Snapshot{Entity: "Globex", Kind: KindNews, Payload: json.RawMessage(`{}`)}); err != nil {
		t.Fatalf("Save other: %v", err)
	}

	snaps, err := s.ListSnapshots(ctx, " ACME ", KindNews, 2)
	if err != nil {
		t.Fatalf("ListSnapshots: %v", err)
	}
	if len(snaps) != 2 {
		t.Fatalf("ListSnapshots: got %d, want 2", len(snaps))
	}
	if snaps[0].AverageSentiment != 0.3 || snaps[1].AverageSentiment != 0.2 {
		t.Errorf("order: got %v, %v, want newest first", snaps[0].AverageSentiment, snaps[1].AverageSentiment)
	}
	if !snaps[0].CreatedAt.Equal(base.Add(2 * time.Hour)) {
		t.Errorf("CreatedAt: got %v", snaps[0].CreatedAt)
	}
	if snaps[0].Prediction != models.SentimentPositive || string(snaps[0].Payload) != `{"n":1}` {
		t.Errorf("snapshot: got %+v", snaps[0])
	}

	all, err := s.ListSnapshots(ctx, "acme", "", 0)
	if err != nil {
		t.Fatalf("ListSnapshots(all): %v", err)
	}
	if len(all) != 4 {
		t.Errorf("ListSnapshots(all): got %d, want 4", len(all))
	}
}

func TestListSnapshotsEmpty(t *testing.T) {
	s := newTestStore(t)
	snaps, err := s.ListSnapshots(context.Background(), "nobody", "", 10)
	if err != nil {
		t.Fatalf("ListSnapshots: %v", err)
	}
	if snaps == nil || len(snaps) != 0 {
		t.Errorf("ListSnapshots: got %v, want empty non-nil", snaps)
	}
}

func TestSaveNewsAndSocial(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	news := &models.NewsAnalysis{
		Company:     models.AggregateReport{Query: "Acme", AverageSentiment: 0.4, Prediction: models.SentimentPositive},
		Industry:    models.AggregateReport{Query: "Fintech"},
		LastUpdated: time.Now().UTC(),
	}
	if _, err := s.SaveNews(ctx, news); err != nil {
		t.Fatalf("SaveNews: %v", err)
	}
	if _, err := s.SaveSocial(ctx, models.NewNoDataReport("Acme")); err != nil {
		t.Fatalf("SaveSocial: %v", err)
	}

	snaps, err := s.ListSnapshots(ctx, "acme", KindNews, 0)
	if err != nil {
		t.Fatalf("ListSnapshots: %v", err)
	}
	if len(snaps) != 1 || snaps[0].AverageSentiment != 0.4 {
		t.Fatalf("news snapshots: got %+v", snaps)
	}
	var decoded models.NewsAnalysis
	if err := json.Unmarshal(snaps[0].Payload, &decoded); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if decoded.Industry.Query != "Fintech" {
		t.Errorf("payload industry: got %q", decoded.Industry.Query)
	}

	social, err := s.ListSnapshots(ctx, "acme", KindSocial, 0)
	if err != nil || len(social) != 1 {
		t.Fatalf("social snapshots: got %v, %v", social, err)
	}
	if social[0].Prediction != models.SentimentNeutral {
		t.Errorf("social prediction: got %q", social[0].Prediction)
	}
}

func TestParseKind(t *testing.T) {
	for _, in := range []string{"", "news", "SOCIAL"} {
		if _, err := ParseKind(in); err != nil {
			t.Errorf("ParseKind(%q): %v", in, err)
		}
	}
	if _, err := ParseKind("tweets"); !errors.Is(err, models.ErrValidation) {
		t.Errorf("ParseKind(tweets): got %v, want ErrValidation", err)
	}
}
