package screening

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sony/gobreaker"

	"github.com/nopparoot15/Saltybot/bot"
)

// Remote asks an external screening service for a risk verdict and falls
// back to a local screener when the service is down or misbehaving.
type Remote struct {
	url      string
	retry    *retryablehttp.Client
	breaker  *gobreaker.CircuitBreaker
	fallback bot.Screener
	logger   bot.Logger
}

type assessRequest struct {
	UserID         int64 `json:"user_id"`
	AccountAgeDays *int  `json:"account_age_days,omitempty"`
}

type assessResponse struct {
	Tier    string   `json:"tier"`
	Reasons []string `json:"reasons"`
}

// NewRemote creates a remote screener with retry and circuit breaker.
// fallback must not be nil.
func NewRemote(url string, timeout time.Duration, fallback bot.Screener, logger bot.Logger) *Remote {
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.RetryWaitMin = 100 * time.Millisecond
	client.RetryWaitMax = time.Second
	client.HTTPClient.Timeout = timeout
	client.Logger = nil

	settings := gobreaker.Settings{
		Name:        "screening-service",
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	}

	return &Remote{
		url:      url,
		retry:    client,
		breaker:  gobreaker.NewCircuitBreaker(settings),
		fallback: fallback,
		logger:   logger,
	}
}

// Assess implements bot.Screener. Any remote failure degrades to the
// local heuristic instead of failing the submission.
func (r *Remote) Assess(ctx context.Context, userID int64, accountAgeDays *int) (bot.RiskTier, []string) {
	if r.url == "" {
		return r.fallback.Assess(ctx, userID, accountAgeDays)
	}

	verdict, err := r.breaker.Execute(func() (interface{}, error) {
		return r.fetch(ctx, userID, accountAgeDays)
	})
	if err != nil {
		if r.logger != nil {
			r.logger.Warn("screening service unavailable, using local heuristic", "error", err)
		}
		return r.fallback.Assess(ctx, userID, accountAgeDays)
	}

	resp := verdict.(*assessResponse)
	tier := bot.RiskTier(resp.Tier)
	switch tier {
	case bot.RiskLow, bot.RiskMed, bot.RiskHigh, bot.RiskUnknown:
		return tier, resp.Reasons
	default:
		if r.logger != nil {
			r.logger.Warn("screening service returned unknown tier", "tier", resp.Tier)
		}
		return r.fallback.Assess(ctx, userID, accountAgeDays)
	}
}

func (r *Remote) fetch(ctx context.Context, userID int64, accountAgeDays *int) (*assessResponse, error) {
	body, err := json.Marshal(assessRequest{UserID: userID, AccountAgeDays: accountAgeDays})
	if err != nil {
		return nil, err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := r.retry.Do(req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("screening service status %d", httpResp.StatusCode)
	}

	var resp assessResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode screening response: %w", err)
	}
	return &resp, nil
}
