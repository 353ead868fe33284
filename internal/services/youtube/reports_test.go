package youtube

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/creatorpulse/creator-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRange() models.TimeRange {
	return models.TimeRange{
		Start: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
	}
}

func reportServiceAgainst(serverURL string) *ReportService {
	ex := NewExecutor(testConfig(serverURL), &fakeTokens{}, &fakeRecorder{}, nil)
	return NewReportService(ex)
}

func TestFetchReportDegradesToSmallerCandidate(t *testing.T) {
	var requestedMetrics []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics := r.URL.Query().Get("metrics")
		requestedMetrics = append(requestedMetrics, metrics)

		// Only the minimal field set is permitted.
		if metrics != "views,estimatedMinutesWatched" {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":{"code":403,"message":"no access","errors":[{"reason":"forbidden"}]}}`))
			return
		}
		_, _ = w.Write([]byte(`{"columnHeaders":[{"name":"views"},{"name":"estimatedMinutesWatched"}],"rows":[[1200,340]]}`))
	}))
	defer server.Close()

	svc := reportServiceAgainst(server.URL)

	resp, status, err := svc.FetchReport(context.Background(), "acct-1", "channel==c1", testRange(), "", OverviewCandidates)
	require.NoError(t, err)

	// A success, even after shortfalls, reports OK.
	assert.Equal(t, models.PermissionStatusOK, status)
	require.Len(t, resp.Rows, 1)
	assert.Equal(t, 1200.0, resp.CellFloat(0, resp.ColumnIndex("views")))

	// Candidates were tried richest first, and iteration stopped on success.
	require.Len(t, requestedMetrics, 3)
	assert.Contains(t, requestedMetrics[0], "subscribersGained")
	assert.Equal(t, "views,estimatedMinutesWatched", requestedMetrics[2])
}

func TestFetchReportFirstSuccessAbandonsRest(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"columnHeaders":[{"name":"views"}],"rows":[[10]]}`))
	}))
	defer server.Close()

	svc := reportServiceAgainst(server.URL)

	_, status, err := svc.FetchReport(context.Background(), "acct-1", "channel==c1", testRange(), "", OverviewCandidates)
	require.NoError(t, err)
	assert.Equal(t, models.PermissionStatusOK, status)
	assert.Equal(t, int64(1), hits.Load())
}

func TestFetchReportExhaustionAfterShortfallReportsDenied(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"no access","errors":[{"reason":"forbidden"}]}}`))
	}))
	defer server.Close()

	svc := reportServiceAgainst(server.URL)

	resp, status, err := svc.FetchReport(context.Background(), "acct-1", "channel==c1", testRange(), "", OverviewCandidates)
	require.NoError(t, err, "exhaustion is not an error")
	assert.Equal(t, models.PermissionStatusDenied, status)
	assert.True(t, resp.Empty())
}

func TestFetchReportScopeInsufficientAbortsImmediately(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"scopes","errors":[{"reason":"insufficientPermissions"}]}}`))
	}))
	defer server.Close()

	svc := reportServiceAgainst(server.URL)

	_, _, err := svc.FetchReport(context.Background(), "acct-1", "channel==c1", testRange(), "", OverviewCandidates)
	require.Error(t, err)
	assert.True(t, models.IsErrorType(err, models.ErrorTypeScopeInsufficient))
	assert.Equal(t, int64(1), hits.Load(), "no smaller candidate can recover a scope gap")
}

func TestFetchReportRevokedCredentialAborts(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	svc := reportServiceAgainst(server.URL)

	_, _, err := svc.FetchReport(context.Background(), "acct-1", "channel==c1", testRange(), "", OverviewCandidates)
	require.Error(t, err)
	assert.True(t, models.IsErrorType(err, models.ErrorTypeCredentialRevoked))

	// One attempt plus its single forced-refresh retry, then abort.
	assert.Equal(t, int64(2), hits.Load())
}
