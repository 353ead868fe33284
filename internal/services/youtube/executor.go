package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/creatorpulse/creator-backend/internal/models"
	"github.com/creatorpulse/creator-backend/internal/services/circuitbreaker"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"golang.org/x/time/rate"
)

// TokenSource supplies bearer tokens for connected accounts.
type TokenSource interface {
	AccessToken(ctx context.Context, accountID string, forceRefresh bool) (string, error)
}

// UsageRecorder observes every outbound call. Implementations must never
// block or fail the caller.
type UsageRecorder interface {
	Record(url string, status string, estimatedUnits int)
	// FlagQuotaExceeded marks quota exhaustion detected from a response body
	// rather than a 429 status.
	FlagQuotaExceeded()
}

// Executor wraps outbound provider calls with the current access token,
// retries exactly once after a forced refresh when the provider rejects
// authentication, and classifies every other failure into the error
// taxonomy. Classification happens here, closest to the raw response, and is
// never re-derived downstream.
type Executor struct {
	cfg        *models.YouTubeConfig
	tokens     TokenSource
	recorder   UsageRecorder
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *circuitbreaker.CircuitBreaker
}

// NewExecutor creates an executor. The limiter and breaker are optional and
// disabled when nil.
func NewExecutor(cfg *models.YouTubeConfig, tokens TokenSource, recorder UsageRecorder, breaker *circuitbreaker.CircuitBreaker) *Executor {
	var limiter *rate.Limiter
	if cfg.RateLimitPerSec > 0 {
		burst := cfg.RateLimitBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitPerSec), burst)
	}

	return &Executor{
		cfg:        cfg,
		tokens:     tokens,
		recorder:   recorder,
		httpClient: &http.Client{},
		limiter:    limiter,
		breaker:    breaker,
	}
}

// Execute runs an authenticated call and decodes the JSON response into T.
// A benign-empty condition (a sub-resource with the feature turned off)
// yields a zero T and no error.
func Execute[T any](ctx context.Context, ex *Executor, accountID string, req APIRequest) (*T, error) {
	body, err := ex.do(ctx, accountID, req)
	if err != nil {
		if errors.Is(err, errBenignEmpty) {
			return new(T), nil
		}
		return nil, err
	}

	var parsed T
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, models.NewProviderError("failed to parse provider response", err)
	}
	return &parsed, nil
}

func (ex *Executor) do(ctx context.Context, accountID string, req APIRequest) ([]byte, error) {
	if ex.limiter != nil {
		if err := ex.limiter.Wait(ctx); err != nil {
			return nil, models.NewTimeoutError("outbound rate limit wait", err)
		}
	}

	if ex.breaker != nil && !ex.breaker.CanExecute(ctx) {
		return nil, models.NewCircuitBreakerError("youtube")
	}

	token, err := ex.tokens.AccessToken(ctx, accountID, false)
	if err != nil {
		return nil, err
	}

	status, body, callErr := ex.send(ctx, req, token)

	// Authentication rejection: discard the body, force one refresh and
	// retry exactly once. A second rejection means the credential is gone.
	if callErr == nil && status == http.StatusUnauthorized {
		fiberlog.Infof("provider rejected token for account %s, forcing refresh", accountID)

		token, err = ex.tokens.AccessToken(ctx, accountID, true)
		if err != nil {
			ex.observeBreaker(ctx, false)
			return nil, err
		}

		status, body, callErr = ex.send(ctx, req, token)
		if callErr == nil && status == http.StatusUnauthorized {
			ex.observeBreaker(ctx, false)
			return nil, models.NewCredentialRevokedError(accountID,
				errors.New("provider rejected a freshly refreshed token"))
		}
	}

	if callErr != nil {
		ex.observeBreaker(ctx, false)
		return nil, callErr
	}

	if status < 200 || status >= 300 {
		classified := classifyResponse(status, body)
		if errors.Is(classified, errBenignEmpty) {
			// Not a provider fault; the breaker should not trip.
			ex.observeBreaker(ctx, true)
		} else {
			ex.observeBreaker(ctx, false)
			if ex.recorder != nil && models.IsErrorType(classified, models.ErrorTypeQuotaExceeded) {
				ex.recorder.FlagQuotaExceeded()
			}
			fiberlog.Warnf("provider call for account %s failed: status=%d kind=%s", accountID, status, models.ErrorKind(classified))
		}
		return nil, classified
	}

	ex.observeBreaker(ctx, true)
	return body, nil
}

// send performs one HTTP attempt with a bounded timeout and reports it to
// telemetry regardless of outcome.
func (ex *Executor) send(ctx context.Context, req APIRequest, token string) (int, []byte, error) {
	callCtx, cancel := context.WithTimeout(ctx, ex.cfg.RequestTimeout())
	defer cancel()

	httpReq, err := req.HTTPRequest(callCtx, ex.cfg)
	if err != nil {
		return 0, nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Accept", "application/json")

	callURL := httpReq.URL.String()
	units := requestCost(req)

	resp, err := ex.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || callCtx.Err() != nil {
			ex.record(callURL, "timeout", units)
			return 0, nil, models.NewTimeoutError("provider call", err)
		}
		ex.record(callURL, "network_error", units)
		return 0, nil, models.NewProviderError("provider call failed", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			fiberlog.Errorf("failed to close provider response body: %v", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		ex.record(callURL, "read_error", units)
		return 0, nil, models.NewProviderError("failed to read provider response", err)
	}

	ex.record(callURL, strconv.Itoa(resp.StatusCode), units)
	return resp.StatusCode, body, nil
}

func (ex *Executor) record(url, status string, units int) {
	if ex.recorder != nil {
		ex.recorder.Record(url, status, units)
	}
}

func (ex *Executor) observeBreaker(ctx context.Context, success bool) {
	if ex.breaker == nil {
		return
	}
	if success {
		ex.breaker.RecordSuccess(ctx)
	} else {
		ex.breaker.RecordFailure(ctx)
	}
}

// requestCost returns the declared cost of a request shape; unrecognized
// shapes cost zero.
func requestCost(req APIRequest) int {
	if c, ok := req.(Coster); ok {
		return c.CostUnits()
	}
	return 0
}
