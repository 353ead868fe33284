package token

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/creatorpulse/creator-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory credential store.
type fakeStore struct {
	mu      sync.Mutex
	records map[string]*models.CredentialRecord
	updates int
}

func newFakeStore(records ...*models.CredentialRecord) *fakeStore {
	s := &fakeStore{records: make(map[string]*models.CredentialRecord)}
	for _, r := range records {
		s.records[r.AccountID] = r
	}
	return s
}

func (s *fakeStore) Get(_ context.Context, accountID string) (*models.CredentialRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[accountID]
	if !ok {
		return nil, assert.AnError
	}
	copied := *record
	return &copied, nil
}

func (s *fakeStore) UpdateAccessToken(_ context.Context, accountID, accessToken string, expiry time.Time, scopes string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates++
	record := s.records[accountID]
	record.AccessToken = &accessToken
	record.TokenExpiry = &expiry
	if scopes != "" {
		record.GrantedScopes = &scopes
	}
	return nil
}

func tokenEndpoint(t *testing.T, exchanges *atomic.Int64, status int, resp models.TokenResponse) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		exchanges.Add(1)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.Form.Get("grant_type"))

		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func managerWith(store CredentialStore, endpoint string) *Manager {
	cfg := &models.YouTubeConfig{
		ClientID:     "client",
		ClientSecret: "secret",
	}
	cfg.ApplyDefaults()
	cfg.TokenEndpoint = endpoint
	return NewManager(store, cfg)
}

func TestAccessTokenCachedNoNetwork(t *testing.T) {
	var exchanges atomic.Int64
	server := tokenEndpoint(t, &exchanges, http.StatusOK, models.TokenResponse{AccessToken: "fresh", ExpiresIn: 3600})
	defer server.Close()

	token := "cached-token"
	expiry := time.Now().Add(time.Hour)
	store := newFakeStore(&models.CredentialRecord{
		AccountID:    "acct-1",
		RefreshToken: "rt",
		AccessToken:  &token,
		TokenExpiry:  &expiry,
	})

	m := managerWith(store, server.URL)

	got, err := m.AccessToken(context.Background(), "acct-1", false)
	require.NoError(t, err)
	assert.Equal(t, "cached-token", got)
	assert.Zero(t, exchanges.Load(), "a valid cached token must not touch the network")
}

func TestAccessTokenRefreshesNearExpiry(t *testing.T) {
	var exchanges atomic.Int64
	server := tokenEndpoint(t, &exchanges, http.StatusOK, models.TokenResponse{
		AccessToken: "fresh", ExpiresIn: 3600, Scope: "yt.readonly",
	})
	defer server.Close()

	token := "stale-token"
	expiry := time.Now().Add(30 * time.Second) // inside the 60s safety margin
	store := newFakeStore(&models.CredentialRecord{
		AccountID:    "acct-1",
		RefreshToken: "rt",
		AccessToken:  &token,
		TokenExpiry:  &expiry,
	})

	m := managerWith(store, server.URL)

	got, err := m.AccessToken(context.Background(), "acct-1", false)
	require.NoError(t, err)
	assert.Equal(t, "fresh", got)
	assert.Equal(t, int64(1), exchanges.Load())

	// New token, expiry and scopes were persisted.
	record, err := store.Get(context.Background(), "acct-1")
	require.NoError(t, err)
	assert.Equal(t, "fresh", *record.AccessToken)
	assert.Equal(t, "yt.readonly", *record.GrantedScopes)
}

func TestAccessTokenCoalescesConcurrentRefreshes(t *testing.T) {
	var exchanges atomic.Int64
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		exchanges.Add(1)
		<-release
		_ = json.NewEncoder(w).Encode(models.TokenResponse{AccessToken: "fresh", ExpiresIn: 3600})
	}))
	defer server.Close()

	store := newFakeStore(&models.CredentialRecord{
		AccountID:    "acct-1",
		RefreshToken: "rt",
	})

	m := managerWith(store, server.URL)

	const callers = 10
	var wg sync.WaitGroup
	results := make([]string, callers)
	errs := make([]error, callers)

	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = m.AccessToken(context.Background(), "acct-1", false)
		}()
	}

	// Let the callers pile up on the in-flight exchange, then release it.
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	for i := range callers {
		require.NoError(t, errs[i])
		assert.Equal(t, "fresh", results[i])
	}
	assert.Equal(t, int64(1), exchanges.Load(), "concurrent callers must share one exchange")
}

func TestAccessTokenRefreshRejectedMeansRevoked(t *testing.T) {
	var exchanges atomic.Int64
	server := tokenEndpoint(t, &exchanges, http.StatusBadRequest, models.TokenResponse{})
	defer server.Close()

	store := newFakeStore(&models.CredentialRecord{
		AccountID:    "acct-1",
		RefreshToken: "revoked-rt",
	})

	m := managerWith(store, server.URL)

	_, err := m.AccessToken(context.Background(), "acct-1", false)
	require.Error(t, err)
	assert.True(t, models.IsErrorType(err, models.ErrorTypeCredentialRevoked))

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.True(t, appErr.RequiresReconnect())
}

func TestAccessTokenEndpointOutageIsNotRevocation(t *testing.T) {
	var exchanges atomic.Int64
	server := tokenEndpoint(t, &exchanges, http.StatusInternalServerError, models.TokenResponse{})
	defer server.Close()

	store := newFakeStore(&models.CredentialRecord{
		AccountID:    "acct-1",
		RefreshToken: "rt",
	})

	m := managerWith(store, server.URL)

	_, err := m.AccessToken(context.Background(), "acct-1", false)
	require.Error(t, err)
	assert.True(t, models.IsErrorType(err, models.ErrorTypeProvider))

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.False(t, appErr.RequiresReconnect())
}

func TestAccessTokenForceRefreshBypassesCache(t *testing.T) {
	var exchanges atomic.Int64
	server := tokenEndpoint(t, &exchanges, http.StatusOK, models.TokenResponse{AccessToken: "fresh", ExpiresIn: 3600})
	defer server.Close()

	token := "cached-token"
	expiry := time.Now().Add(time.Hour)
	store := newFakeStore(&models.CredentialRecord{
		AccountID:    "acct-1",
		RefreshToken: "rt",
		AccessToken:  &token,
		TokenExpiry:  &expiry,
	})

	m := managerWith(store, server.URL)

	got, err := m.AccessToken(context.Background(), "acct-1", true)
	require.NoError(t, err)
	assert.Equal(t, "fresh", got)
	assert.Equal(t, int64(1), exchanges.Load())
}
