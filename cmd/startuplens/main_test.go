package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/seenimoa/startuplens/internal/config"
	"github.com/seenimoa/startuplens/pkg/models"
)

func TestValidateOutput(t *testing.T) {
	for _, f := range []string{"json", "yaml", "text"} {
		if err := validateOutput(f); err != nil {
			t.Errorf("validateOutput(%q): %v", f, err)
		}
	}
	if err := validateOutput("xml"); err == nil {
		t.Error("validateOutput(xml): expected error")
	}
}

func TestPrintOutput(t *testing.T) {
	res := models.SentimentResult{
		Scores:   map[string]float64{"lexicon": 0.5, "vader": 0.3},
		Combined: 0.4,
		Label:    models.SentimentPositive,
	}

	var buf bytes.Buffer
	if err := printOutput(&buf, "json", res); err != nil {
		t.Fatalf("printOutput(json): %v", err)
	}
	if !strings.Contains(buf.String(), `"vader": 0.3`) {
		t.Errorf("json output: got %s", buf.String())
	}

	buf.Reset()
	if err := printOutput(&buf, "yaml", res); err != nil {
		t.Fatalf("printOutput(yaml): %v", err)
	}
	want := "combined: 0.4\nlabel: positive\nlexicon: 0.5\nvader: 0.3\n"
	if buf.String() != want {
		t.Errorf("yaml output: got %q, want %q", buf.String(), want)
	}
}

func TestPrintOutputText(t *testing.T) {
	var buf bytes.Buffer
	if err := printOutput(&buf, "text", models.NewNoDataReport("Acme")); err != nil {
		t.Fatalf("printOutput(text): %v", err)
	}
	if !strings.Contains(buf.String(), "Social sentiment: Acme") {
		t.Errorf("text output: got %s", buf.String())
	}

	buf.Reset()
	if err := printOutput(&buf, "text", map[string]int{"n": 1}); err != nil {
		t.Fatalf("printOutput(text fallback): %v", err)
	}
	if !strings.Contains(buf.String(), `"n": 1`) {
		t.Errorf("text fallback: got %s", buf.String())
	}
}

func testConfig(t *testing.T, storePath string) *config.Config {
	t.Helper()
	c := &config.Config{}
	c.Scraper.BaseURL = "http://growjo.invalid"
	c.News.Provider = "rss"
	c.News.RSSURL = "http://rss.invalid/search"
	c.Store.Path = storePath
	c.Tracker.Timezone = "UTC"
	return c
}

func TestNewApp(t *testing.T) {
	a, err := newApp(testConfig(t, ""), nil)
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	defer a.Close()

	if a.store != nil || a.snapshotSaver() != nil {
		t.Error("store: want nil with empty store.path")
	}
	deps := a.serverDeps(nil)
	if deps.Store != nil {
		t.Error("serverDeps: Store should be a nil interface when history is disabled")
	}
	if len(deps.Providers) != 3 || deps.Providers[0].Name != "rss" || !deps.Providers[0].Enabled {
		t.Errorf("providers: got %+v", deps.Providers)
	}
	if err := a.purgeCaches(context.Background()); err != nil {
		t.Errorf("purgeCaches: %v", err)
	}
}

func TestNewAppWithStore(t *testing.T) {
	a, err := newApp(testConfig(t, filepath.Join(t.TempDir(), "h.db")), nil)
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	defer a.Close()
	if a.store == nil || a.serverDeps(nil).Store == nil {
		t.Error("store: want opened store")
	}
}

func TestNewAppUnknownNewsProvider(t *testing.T) {
	c := testConfig(t, "")
	c.News.Provider = "carrier-pigeon"
	if _, err := newApp(c, nil); err == nil {
		t.Error("newApp: expected error for unknown news provider")
	}
}

func TestCachesEnabled(t *testing.T) {
	c := testConfig(t, "")
	if cachesEnabled(c) {
		t.Error("cachesEnabled: want false with zero TTLs")
	}
	c.News.CacheTTL = 60
	if !cachesEnabled(c) {
		t.Error("cachesEnabled: want true with a news TTL")
	}
}
