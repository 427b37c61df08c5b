// Package credits reports the remaining generation budget on the configured
// rendering account.
package credits

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Balance is the remaining render budget. Plan is the provider's subscription
// tier name when known.
type Balance struct {
	Remaining int    `json:"remaining"`
	Plan      string `json:"plan,omitempty"`
}

// defaultBalance is returned when no provider is configured or the lookup
// fails, so the UI always has a number to show.
var defaultBalance = Balance{Remaining: 150, Plan: "free"}

// Options configures a Client. APIKey empty means no provider account; the
// client then always reports the default balance.
type Options struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zerolog.Logger
}

// Client fetches the remaining token balance from the Leonardo user endpoint.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
}

// NewClient applies defaults and returns a ready client.
func NewClient(opts Options) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = "https://cloud.leonardo.ai/api/rest/v1"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	logger := zerolog.New(io.Discard)
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Client{
		apiKey:  opts.APIKey,
		baseURL: baseURL,
		client:  client,
		logger:  logger,
	}
}

type userResponse struct {
	UserDetails []struct {
		APIPaidTokens         int    `json:"apiPaidTokens"`
		APISubscriptionTokens int    `json:"apiSubscriptionTokens"`
		APIPlanTokenRenewal   string `json:"apiPlanTokenRenewal"`
	} `json:"user_details"`
}

// Remaining returns the live balance when the account is reachable, falling
// back to the static default otherwise. It never returns an error; credits
// are advisory.
func (c *Client) Remaining(ctx context.Context) Balance {
	if c.apiKey == "" {
		return defaultBalance
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/me", nil)
	if err != nil {
		return defaultBalance
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Msg("credits: lookup failed")
		return defaultBalance
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn().Int("status", resp.StatusCode).Msg("credits: provider returned non-200")
		return defaultBalance
	}

	var payload userResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.logger.Warn().Err(err).Msg("credits: decode failed")
		return defaultBalance
	}
	if len(payload.UserDetails) == 0 {
		return defaultBalance
	}

	detail := payload.UserDetails[0]
	balance := Balance{Remaining: detail.APIPaidTokens + detail.APISubscriptionTokens}
	if detail.APIPlanTokenRenewal != "" {
		balance.Plan = fmt.Sprintf("renews %s", detail.APIPlanTokenRenewal)
	}
	return balance
}
