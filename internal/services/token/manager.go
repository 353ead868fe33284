package token

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/creatorpulse/creator-backend/internal/models"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"golang.org/x/sync/singleflight"
)

// expiryMargin is the safety window: a cached token expiring within it is
// treated as already stale.
const expiryMargin = 60 * time.Second

// CredentialStore is the slice of the credential store the manager needs.
type CredentialStore interface {
	Get(ctx context.Context, accountID string) (*models.CredentialRecord, error)
	UpdateAccessToken(ctx context.Context, accountID, accessToken string, expiry time.Time, scopes string) error
}

// Manager keeps a delegated credential usable across concurrent callers.
// Refresh exchanges for the same account are coalesced through a
// process-local singleflight group: a second requester joins the in-flight
// exchange instead of racing it. The registry is not distributed; two
// processes may refresh the same account concurrently, which is safe because
// the exchange is idempotent per refresh token.
type Manager struct {
	store      CredentialStore
	cfg        *models.YouTubeConfig
	httpClient *http.Client
	refreshes  singleflight.Group
}

func NewManager(store CredentialStore, cfg *models.YouTubeConfig) *Manager {
	return &Manager{
		store: store,
		cfg:   cfg,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout(),
		},
	}
}

// AccessToken returns a usable bearer token for the account. With
// forceRefresh false a cached token whose expiry is more than the safety
// margin away is returned without any network call; otherwise a refresh
// exchange runs (or is joined, if one is already in flight for the account).
func (m *Manager) AccessToken(ctx context.Context, accountID string, forceRefresh bool) (string, error) {
	if !forceRefresh {
		record, err := m.store.Get(ctx, accountID)
		if err != nil {
			return "", fmt.Errorf("failed to load credential for %s: %w", accountID, err)
		}
		if record.HasValidAccessToken(time.Now(), expiryMargin) {
			return *record.AccessToken, nil
		}
	}

	// Entries are removed when Do settles, success or failure; callers that
	// arrive while the exchange runs share its outcome.
	v, err, shared := m.refreshes.Do(accountID, func() (any, error) {
		return m.refresh(ctx, accountID)
	})
	if err != nil {
		return "", err
	}
	if shared {
		fiberlog.Debugf("token refresh for account %s joined an in-flight exchange", accountID)
	}
	return v.(string), nil
}

func (m *Manager) refresh(ctx context.Context, accountID string) (string, error) {
	record, err := m.store.Get(ctx, accountID)
	if err != nil {
		return "", fmt.Errorf("failed to load credential for %s: %w", accountID, err)
	}

	form := url.Values{}
	form.Set("client_id", m.cfg.ClientID)
	form.Set("client_secret", m.cfg.ClientSecret)
	form.Set("refresh_token", record.RefreshToken)
	form.Set("grant_type", "refresh_token")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.TokenEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", models.NewProviderError("token refresh request failed", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			fiberlog.Errorf("failed to close token response body: %v", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", models.NewProviderError("failed to read token response", err)
	}

	// The exchange endpoint rejecting the refresh token means the grant was
	// revoked or invalidated. Fatal until the owner re-links the account.
	// Server-side failures are transient and must not look like revocation.
	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
		fiberlog.Warnf("token refresh rejected for account %s (status %d)", accountID, resp.StatusCode)
		return "", models.NewCredentialRevokedError(accountID,
			fmt.Errorf("token endpoint returned status %d: %s", resp.StatusCode, string(body)))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", models.NewProviderError(
			fmt.Sprintf("token endpoint returned status %d", resp.StatusCode), nil)
	}

	var tokenResp models.TokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", models.NewProviderError("failed to parse token response", err)
	}
	if tokenResp.AccessToken == "" {
		return "", models.NewProviderError("token response missing access_token", nil)
	}

	expiry := time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)
	if err := m.store.UpdateAccessToken(ctx, accountID, tokenResp.AccessToken, expiry, tokenResp.Scope); err != nil {
		// Token is valid even if persistence lagged; the next caller will
		// simply refresh again.
		fiberlog.Errorf("failed to persist refreshed token for account %s: %v", accountID, err)
	}

	fiberlog.Infof("refreshed access token for account %s (expires in %ds)", accountID, tokenResp.ExpiresIn)
	return tokenResp.AccessToken, nil
}
