package analytics

import (
	"strings"

	"github.com/creatorpulse/creator-backend/internal/models"
)

// exactBuckets maps raw provider source-type labels to canonical buckets.
// The same table backs the substring fallback below, so a new provider label
// variant that embeds a known token still lands in the right bucket.
var exactBuckets = map[string]models.TrafficSourceBucket{
	"SUBSCRIBER":    models.BucketBrowse,
	"PLAYLIST":      models.BucketBrowse,
	"YT_PLAYLIST":   models.BucketBrowse,
	"SHORTS":        models.BucketBrowse,
	"BROWSE":        models.BucketBrowse,
	"RELATED_VIDEO": models.BucketSuggested,
	"SUGGESTED":     models.BucketSuggested,
	"END_SCREEN":    models.BucketSuggested,
	"YT_SEARCH":     models.BucketSearch,
	"SEARCH":        models.BucketSearch,
	"HASHTAGS":      models.BucketSearch,
	"EXT_URL":       models.BucketExternal,
	"EXTERNAL":      models.BucketExternal,
	"NOTIFICATION":  models.BucketNotification,
	"ANNOTATION":    models.BucketOther,
	"NO_LINK_OTHER": models.BucketOther,
}

// fallbackOrder fixes the substring scan order so a label embedding two
// known tokens classifies deterministically.
var fallbackOrder = []string{
	"RELATED_VIDEO",
	"SUGGESTED",
	"END_SCREEN",
	"YT_SEARCH",
	"SEARCH",
	"HASHTAGS",
	"EXT_URL",
	"EXTERNAL",
	"NOTIFICATION",
	"SUBSCRIBER",
	"YT_PLAYLIST",
	"PLAYLIST",
	"SHORTS",
	"BROWSE",
	"ANNOTATION",
	"NO_LINK_OTHER",
}

// BucketForSource normalizes a raw source-type label: exact match first,
// then substring containment against the same table, defaulting to "other".
func BucketForSource(label string) models.TrafficSourceBucket {
	normalized := strings.ToUpper(strings.TrimSpace(label))

	if bucket, ok := exactBuckets[normalized]; ok {
		return bucket
	}

	for _, key := range fallbackOrder {
		if strings.Contains(normalized, key) {
			return exactBuckets[key]
		}
	}

	return models.BucketOther
}

// TrafficSources folds report rows (dimension: source type, metric: views)
// into canonical buckets with running per-bucket and overall totals.
func TrafficSources(report *models.ReportResponse) models.TrafficSourceBreakdown {
	breakdown := models.TrafficSourceBreakdown{
		Buckets: make(map[models.TrafficSourceBucket]int64),
	}
	if report.Empty() {
		return breakdown
	}

	sourceCol := report.ColumnIndex("insightTrafficSourceType")
	viewsCol := report.ColumnIndex("views")
	if sourceCol < 0 || viewsCol < 0 {
		return breakdown
	}

	for i := range report.Rows {
		views := int64(report.CellFloat(i, viewsCol))
		bucket := BucketForSource(report.CellString(i, sourceCol))

		breakdown.Buckets[bucket] += views
		breakdown.TotalViews += views
	}

	return breakdown
}
