package youtube

import (
	"context"

	"github.com/creatorpulse/creator-backend/internal/models"

	fiberlog "github.com/gofiber/fiber/v2/log"
)

// Candidate field sets, ordered richest to minimal. The last candidate of
// each list needs only the baseline readonly grant, so the fallback sequence
// stays auditable as data rather than branching logic.
var (
	OverviewCandidates = []models.FieldSet{
		{
			Name:    "overview_full",
			Metrics: []string{"views", "estimatedMinutesWatched", "averageViewDuration", "subscribersGained", "subscribersLost"},
		},
		{
			Name:    "overview_no_subscribers",
			Metrics: []string{"views", "estimatedMinutesWatched", "averageViewDuration"},
		},
		{
			Name:    "overview_core",
			Metrics: []string{"views", "estimatedMinutesWatched"},
		},
	}

	TrafficSourceCandidates = []models.FieldSet{
		{
			Name:       "traffic_full",
			Metrics:    []string{"views", "estimatedMinutesWatched", "averageViewDuration"},
			Dimensions: []string{"insightTrafficSourceType"},
			Sort:       "-views",
		},
		{
			Name:       "traffic_views_only",
			Metrics:    []string{"views"},
			Dimensions: []string{"insightTrafficSourceType"},
			Sort:       "-views",
		},
	}

	GeographyCandidates = []models.FieldSet{
		{
			Name:       "geo_full",
			Metrics:    []string{"views", "estimatedMinutesWatched"},
			Dimensions: []string{"country"},
			Sort:       "-views",
			MaxResults: 25,
		},
		{
			Name:       "geo_views_only",
			Metrics:    []string{"views"},
			Dimensions: []string{"country"},
			Sort:       "-views",
			MaxResults: 25,
		},
	}

	SubscriberCandidates = []models.FieldSet{
		{
			Name:       "subscribers_full",
			Metrics:    []string{"views", "averageViewPercentage"},
			Dimensions: []string{"subscribedStatus"},
		},
		{
			Name:       "subscribers_views_only",
			Metrics:    []string{"views"},
			Dimensions: []string{"subscribedStatus"},
		},
	}

	DemographicsCandidates = []models.FieldSet{
		{
			Name:       "demographics",
			Metrics:    []string{"viewerPercentage"},
			Dimensions: []string{"ageGroup", "gender"},
		},
	}
)

// ReportService resolves an ideal report request by walking a prioritized
// candidate list until one succeeds. A permission shortfall on one candidate
// degrades to the next; fatal credential errors abort immediately; running
// out of candidates is not an error.
type ReportService struct {
	executor *Executor
}

func NewReportService(executor *Executor) *ReportService {
	return &ReportService{executor: executor}
}

// Executor exposes the underlying executor for non-report provider calls.
func (s *ReportService) Executor() *Executor {
	return s.executor
}

// FetchReport tries each candidate in order and returns the first successful
// response. The returned permission status distinguishes "no data, fine"
// from "we never got to ask": exhaustion after at least one permission
// shortfall reports PermissionStatusDenied with empty rows, while exhaustion
// without one reports PermissionStatusOK.
func (s *ReportService) FetchReport(
	ctx context.Context,
	accountID, scope string,
	timeRange models.TimeRange,
	filters string,
	candidates []models.FieldSet,
) (*models.ReportResponse, models.PermissionStatus, error) {
	permissionShortfall := false

	for _, candidate := range candidates {
		query := AnalyticsQuery{
			IDs:        scope,
			StartDate:  timeRange.StartDate(),
			EndDate:    timeRange.EndDate(),
			Metrics:    candidate.Metrics,
			Dimensions: candidate.Dimensions,
			Filters:    filters,
			Sort:       candidate.Sort,
			MaxResults: candidate.MaxResults,
		}

		resp, err := Execute[models.ReportResponse](ctx, s.executor, accountID, query)
		if err == nil {
			return resp, models.PermissionStatusOK, nil
		}

		switch models.ErrorKind(err) {
		case models.ErrorTypePermissionDenied:
			// The grant covers the credential but not these fields; try the
			// next, smaller candidate.
			fiberlog.Debugf("report candidate %s denied for account %s, degrading", candidate.Name, accountID)
			permissionShortfall = true
			continue
		case models.ErrorTypeCredentialRevoked, models.ErrorTypeScopeInsufficient:
			// No smaller field set can recover these.
			return nil, models.PermissionStatusOK, err
		default:
			return nil, models.PermissionStatusOK, err
		}
	}

	status := models.PermissionStatusOK
	if permissionShortfall {
		status = models.PermissionStatusDenied
	}
	return &models.ReportResponse{}, status, nil
}
