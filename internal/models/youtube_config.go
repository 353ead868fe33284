package models

import "time"

// YouTubeConfig parameterizes the resilient analytics access layer: OAuth
// client credentials for refresh exchanges, API base URLs (overridable in
// tests), per-call timeout, an optional outbound rate throttle and the
// dashboard cache TTL.
type YouTubeConfig struct {
	ClientID      string `json:"client_id" yaml:"client_id"`
	ClientSecret  string `json:"client_secret" yaml:"client_secret"`
	TokenEndpoint string `json:"token_endpoint,omitzero" yaml:"token_endpoint"`

	AnalyticsBaseURL string `json:"analytics_base_url,omitzero" yaml:"analytics_base_url"`
	DataBaseURL      string `json:"data_base_url,omitzero" yaml:"data_base_url"`

	RequestTimeoutMs int     `json:"request_timeout_ms,omitzero" yaml:"request_timeout_ms"`
	RateLimitPerSec  float64 `json:"rate_limit_per_sec,omitzero" yaml:"rate_limit_per_sec"`
	RateLimitBurst   int     `json:"rate_limit_burst,omitzero" yaml:"rate_limit_burst"`

	CacheTTLSeconds int `json:"cache_ttl_seconds,omitzero" yaml:"cache_ttl_seconds"`
}

const (
	DefaultTokenEndpoint    = "https://oauth2.googleapis.com/token"
	DefaultAnalyticsBaseURL = "https://youtubeanalytics.googleapis.com"
	DefaultDataBaseURL      = "https://www.googleapis.com"
)

// ApplyDefaults fills unset fields with provider defaults.
func (c *YouTubeConfig) ApplyDefaults() {
	if c.TokenEndpoint == "" {
		c.TokenEndpoint = DefaultTokenEndpoint
	}
	if c.AnalyticsBaseURL == "" {
		c.AnalyticsBaseURL = DefaultAnalyticsBaseURL
	}
	if c.DataBaseURL == "" {
		c.DataBaseURL = DefaultDataBaseURL
	}
	if c.RequestTimeoutMs <= 0 {
		c.RequestTimeoutMs = 15000
	}
	if c.CacheTTLSeconds <= 0 {
		c.CacheTTLSeconds = 300
	}
}

// RequestTimeout returns the bounded per-call timeout.
func (c *YouTubeConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMs) * time.Millisecond
}

// CacheTTL returns the dashboard payload cache TTL.
func (c *YouTubeConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}
