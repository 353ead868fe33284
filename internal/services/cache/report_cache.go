package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"
)

const reportKeyPrefix = "dashboard_report:"

// ReportCache is a Redis-backed read-through cache for assembled dashboard
// payloads. A nil cache is valid and means caching is disabled, so callers
// never branch on configuration themselves.
type ReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReportCache creates a report cache. Returns nil when no Redis client is
// configured.
func NewReportCache(client *redis.Client, ttl time.Duration) *ReportCache {
	if client == nil {
		fiberlog.Info("ReportCache: no Redis client configured, caching disabled")
		return nil
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ReportCache{client: client, ttl: ttl}
}

// Key builds the cache key for one dashboard section of one account over one
// reporting window.
func Key(accountID, section, startDate, endDate string) string {
	return fmt.Sprintf("%s%s:%s:%s:%s", reportKeyPrefix, accountID, section, startDate, endDate)
}

// Get unmarshals a cached payload into dest. Misses and transport errors both
// report a plain miss, the caller refetches either way.
func (rc *ReportCache) Get(ctx context.Context, key string, dest any) bool {
	if rc == nil {
		return false
	}

	raw, err := rc.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			fiberlog.Errorf("ReportCache: lookup failed for %s: %v", key, err)
		}
		return false
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		fiberlog.Errorf("ReportCache: corrupt entry for %s, dropping: %v", key, err)
		rc.client.Del(ctx, key)
		return false
	}

	fiberlog.Debugf("ReportCache: hit for %s", key)
	return true
}

// Set stores a payload under the configured TTL. Failures are logged and
// swallowed, the dashboard response never depends on the cache write.
func (rc *ReportCache) Set(ctx context.Context, key string, value any) {
	if rc == nil {
		return
	}

	raw, err := json.Marshal(value)
	if err != nil {
		fiberlog.Errorf("ReportCache: failed to marshal entry for %s: %v", key, err)
		return
	}

	if err := rc.client.Set(ctx, key, raw, rc.ttl).Err(); err != nil {
		fiberlog.Errorf("ReportCache: failed to store entry for %s: %v", key, err)
	}
}

// Invalidate removes all cached sections for an account. Called when the
// account's credential is unlinked so stale data never outlives access.
func (rc *ReportCache) Invalidate(ctx context.Context, accountID string) {
	if rc == nil {
		return
	}

	pattern := reportKeyPrefix + accountID + ":*"
	iter := rc.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := rc.client.Del(ctx, iter.Val()).Err(); err != nil {
			fiberlog.Errorf("ReportCache: failed to delete %s: %v", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		fiberlog.Errorf("ReportCache: scan failed for account %s: %v", accountID, err)
	}
}
