package models

// TrafficSourceBucket is a canonical category a raw provider source label is
// normalized into.
type TrafficSourceBucket string

const (
	BucketBrowse       TrafficSourceBucket = "browse"
	BucketSuggested    TrafficSourceBucket = "suggested"
	BucketSearch       TrafficSourceBucket = "search"
	BucketExternal     TrafficSourceBucket = "external"
	BucketNotification TrafficSourceBucket = "notification"
	BucketOther        TrafficSourceBucket = "other"
)

// TrafficSourceBreakdown aggregates report rows into canonical buckets.
type TrafficSourceBreakdown struct {
	Buckets    map[TrafficSourceBucket]int64 `json:"buckets"`
	TotalViews int64                         `json:"total_views"`
}

// CountryViews is one ranked entry of a geographic breakdown.
type CountryViews struct {
	Code       string  `json:"code"`
	Name       string  `json:"name"`
	Views      int64   `json:"views"`
	ShareOfAll float64 `json:"share_of_all"`
}

// GeoBreakdown ranks countries by views. PrimaryMarket is set to the top
// country's name when its share exceeds the dominance threshold, else nil.
type GeoBreakdown struct {
	Countries     []CountryViews `json:"countries"`
	TotalViews    int64          `json:"total_views"`
	PrimaryMarket *string        `json:"primary_market"`
}

// SubscriberSegment is one half of the subscribed/unsubscribed split.
type SubscriberSegment struct {
	Views         int64   `json:"views"`
	AvgCompletion float64 `json:"avg_completion"`
}

// SubscriberSplit partitions views by the binary subscribed-status
// dimension.
type SubscriberSplit struct {
	Subscribed      SubscriberSegment `json:"subscribed"`
	NotSubscribed   SubscriberSegment `json:"not_subscribed"`
	SubscribedShare float64           `json:"subscribed_share"`
}

// DemographicSlice is one age-group/gender cell of the viewer demographic
// split, expressed as a percentage of total viewers.
type DemographicSlice struct {
	AgeGroup   string  `json:"age_group"`
	Gender     string  `json:"gender"`
	Percentage float64 `json:"percentage"`
}

// DemographicSplit is the full demographic distribution for a period.
type DemographicSplit struct {
	Slices []DemographicSlice `json:"slices"`
}

// MetricTrend pairs a current-period value with its period-over-period
// percentage change. ChangePct is nil when the previous period had no
// baseline; a trend is never fabricated from a zero or absent baseline.
type MetricTrend struct {
	Current   float64  `json:"current"`
	Previous  float64  `json:"previous"`
	ChangePct *float64 `json:"change_pct"`
}
