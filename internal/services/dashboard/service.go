package dashboard

import (
	"context"

	"github.com/creatorpulse/creator-backend/internal/models"
	"github.com/creatorpulse/creator-backend/internal/services/analytics"
	"github.com/creatorpulse/creator-backend/internal/services/cache"
	"github.com/creatorpulse/creator-backend/internal/services/youtube"

	fiberlog "github.com/gofiber/fiber/v2/log"
)

// Service assembles dashboard sections: it runs the degrading report fetches,
// folds raw rows through the aggregators, and attaches period-over-period
// trends. Each section is cached per account and window.
type Service struct {
	reports *youtube.ReportService
	cache   *cache.ReportCache
}

func NewService(reports *youtube.ReportService, reportCache *cache.ReportCache) *Service {
	return &Service{reports: reports, cache: reportCache}
}

func rangeLabel(tr models.TimeRange) string {
	return tr.StartDate() + ".." + tr.EndDate()
}

// metricValue reads the named metric from the first row of a dimensionless
// report. Missing columns read as zero.
func metricValue(report *models.ReportResponse, name string) float64 {
	return report.CellFloat(0, report.ColumnIndex(name))
}

// Overview returns headline totals for the window with trends against the
// adjacent previous window. A failed previous-window fetch degrades to
// trendless totals rather than failing the section.
func (s *Service) Overview(ctx context.Context, accountID, channelID string, tr models.TimeRange) (*models.OverviewMetrics, error) {
	key := cache.Key(accountID, "overview", tr.StartDate(), tr.EndDate())
	var cached models.OverviewMetrics
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	scope := youtube.ChannelScope(channelID)

	current, status, err := s.reports.FetchReport(ctx, accountID, scope, tr, "", youtube.OverviewCandidates)
	if err != nil {
		return nil, err
	}

	result := &models.OverviewMetrics{
		ChannelID:         channelID,
		Range:             rangeLabel(tr),
		SubscribersGained: metricValue(current, "subscribersGained"),
		SubscribersLost:   metricValue(current, "subscribersLost"),
		PermissionStatus:  status,
	}

	previous, _, prevErr := s.reports.FetchReport(ctx, accountID, scope, tr.Previous(), "", youtube.OverviewCandidates)
	if prevErr != nil {
		fiberlog.Warnf("previous-window fetch failed for account %s, omitting trends: %v", accountID, prevErr)
		previous = &models.ReportResponse{}
	}

	result.Views = analytics.MetricTrend(
		metricValue(current, "views"), metricValue(previous, "views"))
	result.WatchTimeMinutes = analytics.MetricTrend(
		metricValue(current, "estimatedMinutesWatched"), metricValue(previous, "estimatedMinutesWatched"))
	result.AvgViewDurationS = analytics.MetricTrend(
		metricValue(current, "averageViewDuration"), metricValue(previous, "averageViewDuration"))

	s.cache.Set(ctx, key, result)
	return result, nil
}

// TrafficSources returns the bucketed traffic breakdown for the window.
func (s *Service) TrafficSources(ctx context.Context, accountID, channelID string, tr models.TimeRange) (*models.TrafficSourcesResult, error) {
	key := cache.Key(accountID, "traffic", tr.StartDate(), tr.EndDate())
	var cached models.TrafficSourcesResult
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	report, status, err := s.reports.FetchReport(ctx, accountID, youtube.ChannelScope(channelID), tr, "", youtube.TrafficSourceCandidates)
	if err != nil {
		return nil, err
	}

	result := &models.TrafficSourcesResult{
		ChannelID:        channelID,
		Range:            rangeLabel(tr),
		Breakdown:        analytics.TrafficSources(report),
		PermissionStatus: status,
	}

	s.cache.Set(ctx, key, result)
	return result, nil
}

// Geography returns the ranked country breakdown for the window.
func (s *Service) Geography(ctx context.Context, accountID, channelID string, tr models.TimeRange) (*models.GeographyResult, error) {
	key := cache.Key(accountID, "geography", tr.StartDate(), tr.EndDate())
	var cached models.GeographyResult
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	report, status, err := s.reports.FetchReport(ctx, accountID, youtube.ChannelScope(channelID), tr, "", youtube.GeographyCandidates)
	if err != nil {
		return nil, err
	}

	result := &models.GeographyResult{
		ChannelID:        channelID,
		Range:            rangeLabel(tr),
		Breakdown:        analytics.Geography(report),
		PermissionStatus: status,
	}

	s.cache.Set(ctx, key, result)
	return result, nil
}

// Audience combines the subscriber split with demographics. The two fetches
// degrade independently; the section reports denied when either shortfalls.
func (s *Service) Audience(ctx context.Context, accountID, channelID string, tr models.TimeRange) (*models.AudienceResult, error) {
	key := cache.Key(accountID, "audience", tr.StartDate(), tr.EndDate())
	var cached models.AudienceResult
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	scope := youtube.ChannelScope(channelID)

	subsReport, subsStatus, err := s.reports.FetchReport(ctx, accountID, scope, tr, "", youtube.SubscriberCandidates)
	if err != nil {
		return nil, err
	}

	demoReport, demoStatus, err := s.reports.FetchReport(ctx, accountID, scope, tr, "", youtube.DemographicsCandidates)
	if err != nil {
		return nil, err
	}

	status := models.PermissionStatusOK
	if subsStatus == models.PermissionStatusDenied || demoStatus == models.PermissionStatusDenied {
		status = models.PermissionStatusDenied
	}

	result := &models.AudienceResult{
		ChannelID:        channelID,
		Range:            rangeLabel(tr),
		Subscribers:      analytics.Subscribers(subsReport),
		Demographics:     analytics.Demographics(demoReport),
		PermissionStatus: status,
	}

	s.cache.Set(ctx, key, result)
	return result, nil
}

type videoListResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title string `json:"title"`
		} `json:"snippet"`
	} `json:"items"`
}

// VideoDetail returns the per-video drill-down: metadata from the catalog
// API plus report aggregates filtered to the video. A metadata failure
// degrades to a titleless payload.
func (s *Service) VideoDetail(ctx context.Context, accountID, channelID, videoID string, tr models.TimeRange) (*models.VideoDetailResult, error) {
	key := cache.Key(accountID, "video:"+videoID, tr.StartDate(), tr.EndDate())
	var cached models.VideoDetailResult
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	scope := youtube.ChannelScope(channelID)
	filters := "video==" + videoID

	totals, status, err := s.reports.FetchReport(ctx, accountID, scope, tr, filters, youtube.OverviewCandidates)
	if err != nil {
		return nil, err
	}

	traffic, trafficStatus, err := s.reports.FetchReport(ctx, accountID, scope, tr, filters, youtube.TrafficSourceCandidates)
	if err != nil {
		return nil, err
	}
	if trafficStatus == models.PermissionStatusDenied {
		status = models.PermissionStatusDenied
	}

	result := &models.VideoDetailResult{
		ChannelID:        channelID,
		VideoID:          videoID,
		Range:            rangeLabel(tr),
		Views:            metricValue(totals, "views"),
		WatchTimeMinutes: metricValue(totals, "estimatedMinutesWatched"),
		Traffic:          analytics.TrafficSources(traffic),
		PermissionStatus: status,
	}

	meta, metaErr := youtube.Execute[videoListResponse](ctx, s.reports.Executor(), accountID, youtube.VideoListRequest{
		VideoIDs: []string{videoID},
		Parts:    []string{"snippet"},
	})
	if metaErr != nil {
		fiberlog.Warnf("video metadata fetch failed for %s: %v", videoID, metaErr)
	} else if len(meta.Items) > 0 {
		result.Title = meta.Items[0].Snippet.Title
	}

	s.cache.Set(ctx, key, result)
	return result, nil
}

type commentThreadsResponse struct {
	Items []struct {
		Snippet struct {
			TopLevelComment struct {
				Snippet struct {
					AuthorDisplayName string `json:"authorDisplayName"`
					TextDisplay       string `json:"textDisplay"`
					PublishedAt       string `json:"publishedAt"`
					LikeCount         int64  `json:"likeCount"`
				} `json:"snippet"`
			} `json:"topLevelComment"`
		} `json:"snippet"`
	} `json:"items"`
}

// RecentComments returns the latest top-level comments on a video. A video
// with its comment feed turned off answers with an empty list, never an
// error.
func (s *Service) RecentComments(ctx context.Context, accountID, channelID, videoID string) (*models.VideoCommentsResult, error) {
	resp, err := youtube.Execute[commentThreadsResponse](ctx, s.reports.Executor(), accountID, youtube.CommentThreadsRequest{
		VideoID:    videoID,
		MaxResults: 20,
	})
	if err != nil {
		return nil, err
	}

	result := &models.VideoCommentsResult{ChannelID: channelID, VideoID: videoID}
	for _, item := range resp.Items {
		comment := item.Snippet.TopLevelComment.Snippet
		result.Comments = append(result.Comments, models.VideoComment{
			Author:      comment.AuthorDisplayName,
			Text:        comment.TextDisplay,
			PublishedAt: comment.PublishedAt,
			LikeCount:   comment.LikeCount,
		})
	}
	return result, nil
}

type searchListResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title       string `json:"title"`
			PublishedAt string `json:"publishedAt"`
		} `json:"snippet"`
	} `json:"items"`
}

// SearchVideos runs a catalog search scoped to the channel. Search carries
// the highest per-call quota cost, so hits are cached like report sections.
func (s *Service) SearchVideos(ctx context.Context, accountID, channelID, query string) (*models.SearchResult, error) {
	key := cache.Key(accountID, "search", channelID, query)
	var cached models.SearchResult
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	resp, err := youtube.Execute[searchListResponse](ctx, s.reports.Executor(), accountID, youtube.SearchRequest{
		Query:      query,
		ChannelID:  channelID,
		MaxResults: 25,
	})
	if err != nil {
		return nil, err
	}

	result := &models.SearchResult{ChannelID: channelID, Query: query}
	for _, item := range resp.Items {
		result.Hits = append(result.Hits, models.SearchHit{
			VideoID:     item.ID.VideoID,
			Title:       item.Snippet.Title,
			PublishedAt: item.Snippet.PublishedAt,
		})
	}

	s.cache.Set(ctx, key, result)
	return result, nil
}
