package config

// APIKeySource represents where an API key comes from.
type APIKeySource string

const (
	KeySourceEnv    APIKeySource = "env"
	KeySourceConfig APIKeySource = "config"
	KeySourceNone   APIKeySource = "none"
)

// KeyStatus represents the status of an API key.
type KeyStatus struct {
	Name   string       `json:"name"`
	Source APIKeySource `json:"source"`
	IsSet  bool         `json:"is_set"`
	Masked string       `json:"masked,omitempty"` // e.g., "abc...xyz"
}

// CheckAPIKeys returns the status of all provider credentials.
func CheckAPIKeys(cfg *Config) []KeyStatus {
	return []KeyStatus{
		checkKey("NewsAPI Key", cfg.News.APIKey, "STARTUPLENS_NEWS_API_KEY", "NEWSAPI_KEY"),
		checkKey("Twitter Bearer Token", cfg.Social.Twitter.BearerToken, "STARTUPLENS_SOCIAL_TWITTER_BEARER_TOKEN", "TWITTER_BEARER_TOKEN"),
		checkKey("Reddit Client ID", cfg.Social.Reddit.ClientID, "STARTUPLENS_SOCIAL_REDDIT_CLIENT_ID", "REDDIT_CLIENT_ID"),
		checkKey("Reddit Client Secret", cfg.Social.Reddit.ClientSecret, "STARTUPLENS_SOCIAL_REDDIT_CLIENT_SECRET", "REDDIT_CLIENT_SECRET"),
	}
}

// checkKey checks if a key is set and where it came from.
func checkKey(name, value string, envVars ...string) KeyStatus {
	status := KeyStatus{
		Name:  name,
		IsSet: value != "",
	}

	if value != "" {
		if firstEnv(envVars...) != "" {
			status.Source = KeySourceEnv
		} else {
			status.Source = KeySourceConfig
		}
		status.Masked = maskKey(value)
	} else {
		status.Source = KeySourceNone
	}

	return status
}

// maskKey masks an API key for display, showing only first 3 and last 3 chars.
func maskKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:3] + "..." + key[len(key)-3:]
}
