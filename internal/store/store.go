// Package store persists report snapshots in SQLite so sentiment can be
// compared over time.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"github.com/seenimoa/startuplens/pkg/models"
)

// Kind tags what a snapshot holds.
type Kind string

const (
	KindNews   Kind = "news"
	KindSocial Kind = "social"
)

// ParseKind validates a kind filter. The empty string means any kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case "", KindNews, KindSocial:
		return k, nil
	default:
		return "", models.Validationf("unknown snapshot kind %q", s)
	}
}

// Snapshot is one stored report.
type Snapshot struct {
	ID               int64                 `json:"id"`
	Entity           string                `json:"entity"`
	Kind             Kind                  `json:"kind"`
	AverageSentiment float64               `json:"average_sentiment"`
	Prediction       models.SentimentLabel `json:"prediction"`
	Payload          json.RawMessage       `json:"payload"`
	CreatedAt        time.Time             `json:"created_at"`
}

// Store handles all database operations.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// New opens (creating if needed) the SQLite database at dbPath.
func New(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	// modernc's driver serializes writers; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate store: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		entity TEXT NOT NULL,
		kind TEXT NOT NULL,
		average_sentiment REAL NOT NULL,
		prediction TEXT NOT NULL,
		payload TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_entity ON snapshots(entity, kind, created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// normalizeEntity makes lookups case-insensitive.
func normalizeEntity(entity string) string {
	return strings.ToLower(strings.TrimSpace(entity))
}

// Save inserts a snapshot and returns its ID. CreatedAt defaults to now.
func (s *Store) Save(ctx context.Context, snap Snapshot) (int64, error) {
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = s.now()
	}
	res, err := sq.Insert("snapshots").
		Columns("entity", "kind", "average_sentiment", "prediction", "payload", "created_at").
		Values(normalizeEntity(snap.Entity), string(snap.Kind), snap.AverageSentiment,
			string(snap.Prediction), string(snap.Payload), snap.CreatedAt.UTC().UnixNano()).
		RunWith(s.db).
		ExecContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("insert snapshot: %w", err)
	}
	return res.LastInsertId()
}

// SaveNews stores a news analysis under its company name.
func (s *Store) SaveNews(ctx context.Context, n *models.NewsAnalysis) (int64, error) {
	payload, err := json.Marshal(n)
	if err != nil {
		return 0, fmt.Errorf("encode news analysis: %w", err)
	}
	return s.Save(ctx, Snapshot{
		Entity:           n.Company.Query,
		Kind:             KindNews,
		AverageSentiment: n.Company.AverageSentiment,
		Prediction:       n.Company.Prediction,
		Payload:          payload,
		CreatedAt:        n.LastUpdated,
	})
}

// SaveSocial stores a social report. No-data reports are stored too so
// gaps in coverage stay visible.
func (s *Store) SaveSocial(ctx context.Context, r *models.SocialReport) (int64, error) {
	payload, err := json.Marshal(r)
	if err != nil {
		return 0, fmt.Errorf("encode social report: %w", err)
	}
	return s.Save(ctx, Snapshot{
		Entity:           r.CompanyName,
		Kind:             KindSocial,
		AverageSentiment: r.AverageScores.Combined,
		Prediction:       r.Prediction,
		Payload:          payload,
		CreatedAt:        r.LastUpdated,
	})
}

// ListSnapshots returns up to limit snapshots for entity, newest first.
// An empty kind matches every kind; limit <= 0 means no limit.
func (s *Store) ListSnapshots(ctx context.Context, entity string, kind Kind, limit int) ([]Snapshot, error) {
	q := sq.Select("id", "entity", "kind", "average_sentiment", "prediction", "payload", "created_at").
		From("snapshots").
		Where(sq.Eq{"entity": normalizeEntity(entity)}).
		OrderBy("created_at DESC", "id DESC")
	if kind != "" {
		q = q.Where(sq.Eq{"kind": string(kind)})
	}
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	rows, err := q.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	snaps := []Snapshot{}
	for rows.Next() {
		var (
			snap      Snapshot
			kindStr   string
			predStr   string
			payload   string
			createdNs int64
		)
		if err := rows.Scan(&snap.ID, &snap.Entity, &kindStr, &snap.AverageSentiment, &predStr, &payload, &createdNs); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snap.Kind = Kind(kindStr)
		snap.Prediction = models.SentimentLabel(predStr)
		snap.Payload = json.RawMessage(payload)
		snap.CreatedAt = time.Unix(0, createdNs).UTC()
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}
