package models

// OverviewMetrics is the headline dashboard payload: current-period totals
// with period-over-period trends.
type OverviewMetrics struct {
	ChannelID         string           `json:"channel_id"`
	Range             string           `json:"range"`
	Views             MetricTrend      `json:"views"`
	WatchTimeMinutes  MetricTrend      `json:"watch_time_minutes"`
	AvgViewDurationS  MetricTrend      `json:"avg_view_duration_s"`
	SubscribersGained float64          `json:"subscribers_gained"`
	SubscribersLost   float64          `json:"subscribers_lost"`
	PermissionStatus  PermissionStatus `json:"permission_status"`
}

// TrafficSourcesResult wraps the bucketed breakdown with the permission
// status of the degrading fetch that produced it.
type TrafficSourcesResult struct {
	ChannelID        string                 `json:"channel_id"`
	Range            string                 `json:"range"`
	Breakdown        TrafficSourceBreakdown `json:"breakdown"`
	PermissionStatus PermissionStatus       `json:"permission_status"`
}

// GeographyResult wraps the ranked country breakdown.
type GeographyResult struct {
	ChannelID        string           `json:"channel_id"`
	Range            string           `json:"range"`
	Breakdown        GeoBreakdown     `json:"breakdown"`
	PermissionStatus PermissionStatus `json:"permission_status"`
}

// AudienceResult combines the subscriber split and the demographic split.
type AudienceResult struct {
	ChannelID        string           `json:"channel_id"`
	Range            string           `json:"range"`
	Subscribers      SubscriberSplit  `json:"subscribers"`
	Demographics     DemographicSplit `json:"demographics"`
	PermissionStatus PermissionStatus `json:"permission_status"`
}

// VideoComment is one top-level viewer comment on a video.
type VideoComment struct {
	Author      string `json:"author"`
	Text        string `json:"text"`
	PublishedAt string `json:"published_at,omitzero"`
	LikeCount   int64  `json:"like_count"`
}

// VideoCommentsResult lists recent viewer comments. A video with its comment
// feed turned off yields an empty list, indistinguishable from a video
// nobody commented on.
type VideoCommentsResult struct {
	ChannelID string         `json:"channel_id"`
	VideoID   string         `json:"video_id"`
	Comments  []VideoComment `json:"comments"`
}

// SearchHit is one video matched by a catalog search.
type SearchHit struct {
	VideoID     string `json:"video_id"`
	Title       string `json:"title"`
	PublishedAt string `json:"published_at,omitzero"`
}

// SearchResult lists the channel videos matching a free-text query.
type SearchResult struct {
	ChannelID string      `json:"channel_id"`
	Query     string      `json:"query"`
	Hits      []SearchHit `json:"hits"`
}

// VideoDetailResult is the per-video drill-down: metadata from the Data API
// plus report aggregates for the requested window.
type VideoDetailResult struct {
	ChannelID        string                 `json:"channel_id"`
	VideoID          string                 `json:"video_id"`
	Title            string                 `json:"title,omitzero"`
	Range            string                 `json:"range"`
	Views            float64                `json:"views"`
	WatchTimeMinutes float64                `json:"watch_time_minutes"`
	Traffic          TrafficSourceBreakdown `json:"traffic"`
	PermissionStatus PermissionStatus       `json:"permission_status"`
}
