package youtube

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/creatorpulse/creator-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTokens counts refresh requests and always vends sequential tokens.
type fakeTokens struct {
	mu       sync.Mutex
	forced   int
	nonForce int
}

func (f *fakeTokens) AccessToken(_ context.Context, _ string, forceRefresh bool) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if forceRefresh {
		f.forced++
		return "refreshed-token", nil
	}
	f.nonForce++
	return "initial-token", nil
}

type recordedCall struct {
	url    string
	status string
	units  int
}

type fakeRecorder struct {
	mu      sync.Mutex
	calls   []recordedCall
	flagged bool
}

func (f *fakeRecorder) Record(url, status string, units int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, recordedCall{url, status, units})
}

func (f *fakeRecorder) FlagQuotaExceeded() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flagged = true
}

func (f *fakeRecorder) snapshot() []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedCall(nil), f.calls...)
}

func testConfig(serverURL string) *models.YouTubeConfig {
	cfg := &models.YouTubeConfig{
		ClientID:     "client",
		ClientSecret: "secret",
	}
	cfg.ApplyDefaults()
	cfg.AnalyticsBaseURL = serverURL
	cfg.DataBaseURL = serverURL
	return cfg
}

func simpleQuery() AnalyticsQuery {
	return AnalyticsQuery{
		IDs:       "channel==c1",
		StartDate: "2026-08-01",
		EndDate:   "2026-08-28",
		Metrics:   []string{"views"},
	}
}

func TestExecuteRetriesOnceAfter401(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			assert.Equal(t, "Bearer initial-token", r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		assert.Equal(t, "Bearer refreshed-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"kind":"report","columnHeaders":[],"rows":[]}`))
	}))
	defer server.Close()

	tokens := &fakeTokens{}
	recorder := &fakeRecorder{}
	ex := NewExecutor(testConfig(server.URL), tokens, recorder, nil)

	resp, err := Execute[models.ReportResponse](context.Background(), ex, "acct-1", simpleQuery())
	require.NoError(t, err)
	assert.Equal(t, "report", resp.Kind)

	assert.Equal(t, int64(2), hits.Load())
	assert.Equal(t, 1, tokens.forced, "exactly one forced refresh")

	// Both attempts were reported to telemetry.
	calls := recorder.snapshot()
	require.Len(t, calls, 2)
	assert.Equal(t, "401", calls[0].status)
	assert.Equal(t, "200", calls[1].status)
	assert.Equal(t, 1, calls[0].units)
}

func TestExecuteSecond401MeansRevoked(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	tokens := &fakeTokens{}
	ex := NewExecutor(testConfig(server.URL), tokens, &fakeRecorder{}, nil)

	_, err := Execute[models.ReportResponse](context.Background(), ex, "acct-1", simpleQuery())
	require.Error(t, err)
	assert.True(t, models.IsErrorType(err, models.ErrorTypeCredentialRevoked))
	assert.Equal(t, 1, tokens.forced, "never more than one retry")
}

func TestExecuteClassifiesScopeInsufficient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"Request had insufficient authentication scopes.","errors":[{"domain":"global","reason":"insufficientPermissions"}]}}`))
	}))
	defer server.Close()

	ex := NewExecutor(testConfig(server.URL), &fakeTokens{}, &fakeRecorder{}, nil)

	_, err := Execute[models.ReportResponse](context.Background(), ex, "acct-1", simpleQuery())
	require.Error(t, err)
	assert.True(t, models.IsErrorType(err, models.ErrorTypeScopeInsufficient))
}

func TestExecuteClassifiesPermissionDenied(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"Insufficient permission to access this report.","errors":[{"domain":"global","reason":"forbidden"}]}}`))
	}))
	defer server.Close()

	ex := NewExecutor(testConfig(server.URL), &fakeTokens{}, &fakeRecorder{}, nil)

	_, err := Execute[models.ReportResponse](context.Background(), ex, "acct-1", simpleQuery())
	require.Error(t, err)
	assert.True(t, models.IsErrorType(err, models.ErrorTypePermissionDenied))
}

func TestExecuteClassifiesQuotaAndFlagsTelemetry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"Quota exceeded.","errors":[{"domain":"usageLimits","reason":"quotaExceeded"}]}}`))
	}))
	defer server.Close()

	recorder := &fakeRecorder{}
	ex := NewExecutor(testConfig(server.URL), &fakeTokens{}, recorder, nil)

	_, err := Execute[models.ReportResponse](context.Background(), ex, "acct-1", simpleQuery())
	require.Error(t, err)
	assert.True(t, models.IsErrorType(err, models.ErrorTypeQuotaExceeded))
	assert.True(t, recorder.flagged)
}

func TestExecuteBenignEmptyYieldsZeroValue(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"The video identified by the videoId parameter has disabled comments.","errors":[{"domain":"youtube.commentThread","reason":"commentsDisabled"}]}}`))
	}))
	defer server.Close()

	ex := NewExecutor(testConfig(server.URL), &fakeTokens{}, &fakeRecorder{}, nil)

	resp, err := Execute[models.ReportResponse](context.Background(), ex, "acct-1", CommentThreadsRequest{VideoID: "v1"})
	require.NoError(t, err)
	assert.True(t, resp.Empty())
}

func TestExecuteSearchCostUnits(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	recorder := &fakeRecorder{}
	ex := NewExecutor(testConfig(server.URL), &fakeTokens{}, recorder, nil)

	_, err := Execute[models.ReportResponse](context.Background(), ex, "acct-1", SearchRequest{Query: "go"})
	require.NoError(t, err)

	calls := recorder.snapshot()
	require.Len(t, calls, 1)
	assert.Equal(t, 100, calls[0].units)
}
