package youtube

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/creatorpulse/creator-backend/internal/models"
)

// APIRequest is any outbound provider call the executor can run.
type APIRequest interface {
	// HTTPRequest builds the concrete request. The bearer token is attached
	// by the executor, not here.
	HTTPRequest(ctx context.Context, cfg *models.YouTubeConfig) (*http.Request, error)
}

// Coster declares a fixed estimated quota cost for a request shape. Request
// shapes that do not implement it are billed at zero units.
type Coster interface {
	CostUnits() int
}

// AnalyticsQuery is a reports query against the analytics API: a scope
// selector, an inclusive date window, metrics, optional dimensions, filter,
// sort and row cap.
type AnalyticsQuery struct {
	IDs        string
	StartDate  string
	EndDate    string
	Metrics    []string
	Dimensions []string
	Filters    string
	Sort       string
	MaxResults int
}

func (q AnalyticsQuery) HTTPRequest(ctx context.Context, cfg *models.YouTubeConfig) (*http.Request, error) {
	if q.IDs == "" {
		return nil, models.NewValidationError("analytics query requires a scope selector", nil)
	}
	if len(q.Metrics) == 0 {
		return nil, models.NewValidationError("analytics query requires at least one metric", nil)
	}

	params := url.Values{}
	params.Set("ids", q.IDs)
	params.Set("startDate", q.StartDate)
	params.Set("endDate", q.EndDate)
	params.Set("metrics", strings.Join(q.Metrics, ","))
	if len(q.Dimensions) > 0 {
		params.Set("dimensions", strings.Join(q.Dimensions, ","))
	}
	if q.Filters != "" {
		params.Set("filters", q.Filters)
	}
	if q.Sort != "" {
		params.Set("sort", q.Sort)
	}
	if q.MaxResults > 0 {
		params.Set("maxResults", fmt.Sprintf("%d", q.MaxResults))
	}

	endpoint := cfg.AnalyticsBaseURL + "/v2/reports?" + params.Encode()
	return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
}

func (q AnalyticsQuery) CostUnits() int { return 1 }

// ChannelScope builds the analytics scope selector for a channel.
func ChannelScope(channelID string) string {
	return "channel==" + channelID
}

// VideoListRequest reads video metadata from the Data API.
type VideoListRequest struct {
	VideoIDs []string
	Parts    []string
}

func (r VideoListRequest) HTTPRequest(ctx context.Context, cfg *models.YouTubeConfig) (*http.Request, error) {
	if len(r.VideoIDs) == 0 {
		return nil, models.NewValidationError("video list request requires at least one id", nil)
	}
	parts := r.Parts
	if len(parts) == 0 {
		parts = []string{"snippet", "statistics"}
	}

	params := url.Values{}
	params.Set("id", strings.Join(r.VideoIDs, ","))
	params.Set("part", strings.Join(parts, ","))

	endpoint := cfg.DataBaseURL + "/youtube/v3/videos?" + params.Encode()
	return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
}

func (r VideoListRequest) CostUnits() int { return 1 }

// CommentThreadsRequest reads the comment feed of a video. Videos with
// comments turned off answer this with a disabled-feature error that the
// executor maps to a benign empty result.
type CommentThreadsRequest struct {
	VideoID    string
	MaxResults int
}

func (r CommentThreadsRequest) HTTPRequest(ctx context.Context, cfg *models.YouTubeConfig) (*http.Request, error) {
	if r.VideoID == "" {
		return nil, models.NewValidationError("comment threads request requires a video id", nil)
	}

	params := url.Values{}
	params.Set("videoId", r.VideoID)
	params.Set("part", "snippet")
	if r.MaxResults > 0 {
		params.Set("maxResults", fmt.Sprintf("%d", r.MaxResults))
	}

	endpoint := cfg.DataBaseURL + "/youtube/v3/commentThreads?" + params.Encode()
	return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
}

func (r CommentThreadsRequest) CostUnits() int { return 1 }

// SearchRequest is a free-text Data API search. Search is the one expensive
// operation in the cost table.
type SearchRequest struct {
	Query      string
	ChannelID  string
	MaxResults int
}

func (r SearchRequest) HTTPRequest(ctx context.Context, cfg *models.YouTubeConfig) (*http.Request, error) {
	if r.Query == "" {
		return nil, models.NewValidationError("search request requires a query", nil)
	}

	params := url.Values{}
	params.Set("q", r.Query)
	params.Set("part", "snippet")
	params.Set("type", "video")
	if r.ChannelID != "" {
		params.Set("channelId", r.ChannelID)
	}
	if r.MaxResults > 0 {
		params.Set("maxResults", fmt.Sprintf("%d", r.MaxResults))
	}

	endpoint := cfg.DataBaseURL + "/youtube/v3/search?" + params.Encode()
	return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
}

func (r SearchRequest) CostUnits() int { return 100 }
