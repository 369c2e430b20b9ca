// Package lookup resolves free-form card names to canonical English names
// using Scryfall's fuzzy named-card endpoint.
package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"mtgcollections/internal/logging"
	"mtgcollections/internal/ratelimit"
	"mtgcollections/internal/types"
)

const (
	DefaultBaseURL   = "https://api.scryfall.com"
	DefaultUserAgent = "MTGCollections/1.0"
	DefaultTimeout   = 30 * time.Second

	// maxBodyBytes caps how much of a reply is read.
	maxBodyBytes = 4 << 20
)

// Config holds configuration for the lookup client.
type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	Limiter   ratelimit.Limiter // nil disables pacing
	Logger    *zap.Logger       // nil disables logging
}

// DefaultConfig returns the Scryfall defaults with the given limiter.
func DefaultConfig(limiter ratelimit.Limiter) Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		UserAgent: DefaultUserAgent,
		Timeout:   DefaultTimeout,
		Limiter:   limiter,
	}
}

// Result is the outcome of one lookup. A miss is a Result with Found=false,
// not an error, so that batch translation can carry on past it.
type Result struct {
	Query string
	Name  string
	Found bool
}

// String renders the canonical name, or a not-found notice naming the query.
func (r Result) String() string {
	if !r.Found {
		return "Card not found: " + r.Query
	}
	return r.Name
}

// Client performs fuzzy card-name lookups.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    ratelimit.Limiter
	logger     *zap.Logger
}

// NewClient creates a lookup client.
func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    ratelimit.OrUnlimited(cfg.Limiter),
		logger:     logging.For(cfg.Logger, logging.CategoryLookup),
	}
}

type cardResponse struct {
	Object string `json:"object"`
	Name   string `json:"name"`
	Lang   string `json:"lang"`
}

type errorResponse struct {
	Object  string `json:"object"`
	Code    string `json:"code"`
	Status  int    `json:"status"`
	Details string `json:"details"`
}

// Lookup resolves name to its canonical English card name.
func (c *Client) Lookup(ctx context.Context, name string) (Result, error) {
	query := strings.TrimSpace(name)
	if query == "" {
		return Result{}, fmt.Errorf("card name must not be empty")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return Result{}, err
	}

	endpoint := c.baseURL + "/cards/named?" + url.Values{"fuzzy": {query}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Result{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("Lookup request failed", zap.String("query", query), zap.Error(err))
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, ctxErr
		}
		return Result{}, &types.UpstreamError{Service: types.ServiceLookup, Err: err}
	}
	defer resp.Body.Close()
	c.logger.Debug("Lookup response",
		zap.String("query", query),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)))

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Result{}, &types.UpstreamError{Service: types.ServiceLookup, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return Result{Query: name}, nil
	case resp.StatusCode != http.StatusOK:
		return Result{}, &types.UpstreamError{Service: types.ServiceLookup, StatusCode: resp.StatusCode, Err: errors.New(errorDetails(body, resp.Status))}
	}

	var card cardResponse
	if err := json.Unmarshal(body, &card); err != nil {
		return Result{}, &types.MalformedResponseError{Service: types.ServiceLookup, Detail: "card body is not JSON", Err: err}
	}
	if strings.TrimSpace(card.Name) == "" {
		return Result{}, &types.MalformedResponseError{Service: types.ServiceLookup, Detail: `card body has no "name"`}
	}

	return Result{Query: name, Name: card.Name, Found: true}, nil
}

// errorDetails prefers Scryfall's error "details" over the bare status line.
func errorDetails(body []byte, status string) string {
	var e errorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.Details != "" {
		return e.Details
	}
	return status
}

// CloseIdleConnections releases pooled connections held by the client.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}
