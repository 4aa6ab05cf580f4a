package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/ticketstats/ticketstats/internal/domain"
	"github.com/ticketstats/ticketstats/internal/logger"
	"github.com/ticketstats/ticketstats/internal/ports"
)

var errNotArray = errors.New("response body is not a JSON array")

// Client fetches the unpaginated ticket collection from the tracker API
type Client struct {
	url        string
	httpClient *http.Client
	tokens     ports.TokenProvider
	logger     logger.Logger

	mu         sync.Mutex
	authHeader string
}

var _ ports.Fetcher = (*Client)(nil)

// NewClient creates an upstream client. The timeout bounds the whole request.
func NewClient(url string, timeout time.Duration, tokens ports.TokenProvider, log logger.Logger) *Client {
	return &Client{
		url:    url,
		tokens: tokens,
		logger: log,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Fetch issues one authenticated GET and returns the raw JSON array
func (c *Client) Fetch(ctx context.Context) ([]byte, error) {
	authHeader, err := c.authorization(ctx)
	if err != nil {
		c.logger.Error(ctx, "failed to acquire upstream token", err, map[string]interface{}{})
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, &domain.FetchError{URL: c.url, Err: err}
	}
	req.Header.Set("Authorization", authHeader)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error(ctx, "upstream request failed", err, map[string]interface{}{
			"url": c.url,
		})
		return nil, &domain.FetchError{URL: c.url, Err: err}
	}
	defer resp.Body.Close()

	fields := map[string]interface{}{
		"url":         c.url,
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		if resp.StatusCode == http.StatusUnauthorized {
			// the token was rejected, acquire a new one on the next fetch
			c.resetAuthorization()
		}
		c.logger.Warn(ctx, "upstream returned non-success status", fields)
		return nil, &domain.FetchError{URL: c.url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error(ctx, "failed to read upstream response", err, fields)
		return nil, &domain.FetchError{URL: c.url, Err: fmt.Errorf("read body: %w", err)}
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' || !json.Valid(trimmed) {
		c.logger.Warn(ctx, "upstream returned an unexpected payload", fields)
		return nil, &domain.FetchError{URL: c.url, Err: errNotArray}
	}

	fields["bytes"] = len(body)
	c.logger.Debug(ctx, "fetched ticket data from upstream", fields)

	return body, nil
}

// authorization returns the cached bearer header, acquiring a token when unset
func (c *Client) authorization(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.authHeader != "" {
		return c.authHeader, nil
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return "", &domain.AuthError{Err: err}
	}
	if token == "" {
		return "", &domain.AuthError{Err: errors.New("empty token")}
	}

	c.authHeader = "Bearer " + token
	return c.authHeader, nil
}

func (c *Client) resetAuthorization() {
	c.mu.Lock()
	c.authHeader = ""
	c.mu.Unlock()
}
