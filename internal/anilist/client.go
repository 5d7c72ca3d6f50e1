// Package anilist is a rate-limited client for the AniList GraphQL API.
// It fetches a user's completed anime and manga lists as completion records.
package anilist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/eydough/awc-code-updater/internal/ratelimit"
)

const (
	// DefaultBaseURL is the public AniList GraphQL endpoint.
	DefaultBaseURL = "https://graphql.anilist.co"

	// AniList allows 90 requests per minute; stay well below it.
	defaultRPS   = 1.5
	defaultBurst = 3

	defaultTimeout = 30 * time.Second
	userAgent      = "awc-code-updater/1.0"

	// Completed lists for heavy users run to several megabytes.
	maxResponseBytes = 32 << 20
)

// Options configures a Client. Zero values select the defaults.
type Options struct {
	BaseURL string
	Timeout time.Duration
	RPS     float64
	Burst   int
}

// Client is a rate-limited AniList API client.
type Client struct {
	http    *http.Client
	baseURL string
	host    string
	limiter *ratelimit.KeyedRateLimiter
	logger  *slog.Logger
}

// New creates a new AniList client.
func New(logger *slog.Logger, opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.RPS <= 0 {
		opts.RPS = defaultRPS
	}
	if opts.Burst <= 0 {
		opts.Burst = defaultBurst
	}

	u, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", opts.BaseURL)
	}

	return &Client{
		http: &http.Client{
			Timeout: opts.Timeout,
		},
		baseURL: opts.BaseURL,
		host:    u.Host,
		limiter: ratelimit.New(opts.RPS, opts.Burst),
		logger:  logger,
	}, nil
}

// Close releases resources held by the client.
func (c *Client) Close() {
	c.limiter.Stop()
}

// doRequest posts a GraphQL request with rate limiting and returns the raw
// body of a successful response.
func (c *Client) doRequest(ctx context.Context, payload graphQLRequest) ([]byte, error) {
	if err := c.limiter.Wait(ctx, c.host); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusOK {
		return body, nil
	}

	message := bodyMessage(body, resp.Header.Get("Content-Type"))
	c.logger.Debug("anilist request failed",
		"status", resp.StatusCode,
		"message", message,
	)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, &responseError{err: ErrNotFound, message: message}
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &responseError{err: ErrRateLimited, message: message}
	case resp.StatusCode == http.StatusBadRequest:
		return nil, &responseError{err: ErrBadRequest, message: message}
	case resp.StatusCode >= 500:
		return nil, &responseError{err: ErrServer, message: message}
	default:
		return nil, &responseError{err: fmt.Errorf("anilist: unexpected status %d", resp.StatusCode), message: message}
	}
}
