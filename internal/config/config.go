package config

// Package config handles configuration loading for startuplens.
// It supports YAML config files, a .env file and environment variable overrides.

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	API     APIConfig     `mapstructure:"api"     yaml:"api"`
	HTTP    HTTPConfig    `mapstructure:"http"    yaml:"http"`
	Scraper ScraperConfig `mapstructure:"scraper" yaml:"scraper"`
	News    NewsConfig    `mapstructure:"news"    yaml:"news"`
	Social  SocialConfig  `mapstructure:"social"  yaml:"social"`
	Store   StoreConfig   `mapstructure:"store"   yaml:"store"`
	Tracker TrackerConfig `mapstructure:"tracker" yaml:"tracker"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// HTTPConfig holds outbound HTTP client settings.
type HTTPConfig struct {
	TimeoutSec int    `mapstructure:"timeout_sec" yaml:"timeout_sec"` // 0 = no client timeout
	UserAgent  string `mapstructure:"user_agent"  yaml:"user_agent"`
}

// Timeout returns the client timeout as a duration.
func (h HTTPConfig) Timeout() time.Duration {
	return time.Duration(h.TimeoutSec) * time.Second
}

// ScraperConfig holds company-profile scraping settings.
type ScraperConfig struct {
	BaseURL           string       `mapstructure:"base_url"           yaml:"base_url"`
	ConcurrentFetches int          `mapstructure:"concurrent_fetches" yaml:"concurrent_fetches"`
	RatePerSecond     int          `mapstructure:"rate_per_second"    yaml:"rate_per_second"`
	CacheTTL          int          `mapstructure:"cache_ttl"          yaml:"cache_ttl"` // seconds, 0 disables
	Layout            LayoutConfig `mapstructure:"layout"             yaml:"layout"`
}

// LayoutConfig overrides the positional table mapping of the profile page.
type LayoutConfig struct {
	TeamTable       int `mapstructure:"team_table"       yaml:"team_table"`
	CompetitorTable int `mapstructure:"competitor_table" yaml:"competitor_table"`
	FundingTable    int `mapstructure:"funding_table"    yaml:"funding_table"`
}

// NewsConfig holds news provider settings.
type NewsConfig struct {
	Provider         string `mapstructure:"provider"          yaml:"provider"` // "newsapi" or "rss"
	APIKey           string `mapstructure:"api_key"           yaml:"api_key"`
	BaseURL          string `mapstructure:"base_url"          yaml:"base_url"`
	RSSURL           string `mapstructure:"rss_url"           yaml:"rss_url"`
	PageSize         int    `mapstructure:"page_size"         yaml:"page_size"`
	LookbackDays     int    `mapstructure:"lookback_days"     yaml:"lookback_days"`
	Language         string `mapstructure:"language"          yaml:"language"`
	SortBy           string `mapstructure:"sort_by"           yaml:"sort_by"`
	SummarySentences int    `mapstructure:"summary_sentences" yaml:"summary_sentences"`
	CacheTTL         int    `mapstructure:"cache_ttl"         yaml:"cache_ttl"` // seconds, 0 disables
}

// SocialConfig holds social-media provider settings.
type SocialConfig struct {
	Twitter    TwitterConfig `mapstructure:"twitter"     yaml:"twitter"`
	Reddit     RedditConfig  `mapstructure:"reddit"      yaml:"reddit"`
	SampleSize int           `mapstructure:"sample_size" yaml:"sample_size"`
	TopThemes  int           `mapstructure:"top_themes"  yaml:"top_themes"`
	TopQuotes  int           `mapstructure:"top_quotes"  yaml:"top_quotes"`
}

// TwitterConfig holds Twitter API v2 settings.
type TwitterConfig struct {
	BearerToken  string `mapstructure:"bearer_token"  yaml:"bearer_token"`
	BaseURL      string `mapstructure:"base_url"      yaml:"base_url"`
	MaxResults   int    `mapstructure:"max_results"   yaml:"max_results"`
	LookbackDays int    `mapstructure:"lookback_days" yaml:"lookback_days"`
}

// RedditConfig holds Reddit API settings.
type RedditConfig struct {
	ClientID     string `mapstructure:"client_id"     yaml:"client_id"`
	ClientSecret string `mapstructure:"client_secret" yaml:"client_secret"`
	UserAgent    string `mapstructure:"user_agent"    yaml:"user_agent"`
	BaseURL      string `mapstructure:"base_url"      yaml:"base_url"`
	TokenURL     string `mapstructure:"token_url"     yaml:"token_url"`
	Subreddit    string `mapstructure:"subreddit"     yaml:"subreddit"`
	Limit        int    `mapstructure:"limit"         yaml:"limit"`
}

// StoreConfig holds snapshot persistence settings.
type StoreConfig struct {
	Path string `mapstructure:"path" yaml:"path"` // empty disables persistence
}

// TrackerConfig holds the scheduled watchlist refresh settings.
type TrackerConfig struct {
	Enabled   bool         `mapstructure:"enabled"   yaml:"enabled"`
	Schedule  string       `mapstructure:"schedule"  yaml:"schedule"` // cron expression
	Timezone  string       `mapstructure:"timezone"  yaml:"timezone"`
	Watchlist []WatchEntry `mapstructure:"watchlist" yaml:"watchlist"`
}

// WatchEntry is a company/industry pair refreshed by the tracker.
type WatchEntry struct {
	Company  string `mapstructure:"company"  yaml:"company"`
	Industry string `mapstructure:"industry" yaml:"industry"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.startuplens/config.yaml (home directory)
//  3. /etc/startuplens/config.yaml (system)
//
// A .env file in the working directory is loaded first if present.
// Environment variables override config file values.
// Format: STARTUPLENS_<SECTION>_<KEY>, e.g., STARTUPLENS_NEWS_API_KEY
func Load() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".startuplens"))
	v.AddConfigPath("/etc/startuplens")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return unmarshal(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	return unmarshal(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("STARTUPLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// loadDotEnv loads KEY=VALUE pairs from path without overriding variables
// already set in the process environment. A missing file is not an error.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("error loading %s: %w", path, err)
	}
	return nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 5000)
	v.SetDefault("api.cors_origins", []string{"*"})

	// Outbound HTTP
	v.SetDefault("http.timeout_sec", 30)
	v.SetDefault("http.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36")

	// Scraper defaults
	v.SetDefault("scraper.base_url", "https://growjo.com")
	v.SetDefault("scraper.concurrent_fetches", 4)
	v.SetDefault("scraper.rate_per_second", 4)
	v.SetDefault("scraper.cache_ttl", 0)
	v.SetDefault("scraper.layout.team_table", 0)
	v.SetDefault("scraper.layout.competitor_table", 1)
	v.SetDefault("scraper.layout.funding_table", 3)

	// News defaults
	v.SetDefault("news.provider", "newsapi")
	v.SetDefault("news.base_url", "https://newsapi.org")
	v.SetDefault("news.rss_url", "https://news.google.com/rss/search")
	v.SetDefault("news.page_size", 10)
	v.SetDefault("news.lookback_days", 20)
	v.SetDefault("news.language", "en")
	v.SetDefault("news.sort_by", "relevancy")
	v.SetDefault("news.summary_sentences", 3)
	v.SetDefault("news.cache_ttl", 0)

	// Social defaults
	v.SetDefault("social.twitter.base_url", "https://api.twitter.com")
	v.SetDefault("social.twitter.max_results", 100)
	v.SetDefault("social.twitter.lookback_days", 7)
	v.SetDefault("social.reddit.base_url", "https://oauth.reddit.com")
	v.SetDefault("social.reddit.token_url", "https://www.reddit.com/api/v1/access_token")
	v.SetDefault("social.reddit.user_agent", "startup_sentiment_analysis/1.0")
	v.SetDefault("social.reddit.subreddit", "all")
	v.SetDefault("social.reddit.limit", 50)
	v.SetDefault("social.sample_size", 10)
	v.SetDefault("social.top_themes", 5)
	v.SetDefault("social.top_quotes", 3)

	// Store / tracker
	v.SetDefault("store.path", "")
	v.SetDefault("tracker.enabled", false)
	v.SetDefault("tracker.schedule", "0 */6 * * *")
	v.SetDefault("tracker.timezone", "UTC")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// overrideFromEnv explicitly reads credentials from environment variables.
// Provider-native names are honored so an existing .env keeps working.
func overrideFromEnv(cfg *Config) {
	if key := firstEnv("STARTUPLENS_NEWS_API_KEY", "NEWSAPI_KEY"); key != "" {
		cfg.News.APIKey = key
	}
	if key := firstEnv("STARTUPLENS_SOCIAL_TWITTER_BEARER_TOKEN", "TWITTER_BEARER_TOKEN"); key != "" {
		cfg.Social.Twitter.BearerToken = key
	}
	if key := firstEnv("STARTUPLENS_SOCIAL_REDDIT_CLIENT_ID", "REDDIT_CLIENT_ID"); key != "" {
		cfg.Social.Reddit.ClientID = key
	}
	if key := firstEnv("STARTUPLENS_SOCIAL_REDDIT_CLIENT_SECRET", "REDDIT_CLIENT_SECRET"); key != "" {
		cfg.Social.Reddit.ClientSecret = key
	}
}

// firstEnv returns the value of the first set variable among names.
func firstEnv(names ...string) string {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			return v
		}
	}
	return ""
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
