package models

// CacheConfig holds configuration for the Redis-backed dashboard payload
// cache and circuit breakers (optional; both degrade to disabled when Redis
// is not configured).
type CacheConfig struct {
	RedisURL string `json:"redis_url,omitzero" yaml:"redis_url"`
	Enabled  bool   `json:"enabled,omitzero" yaml:"enabled"`
}
