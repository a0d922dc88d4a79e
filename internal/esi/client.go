// Package esi is the upstream client: everything that talks to
// esi.evetech.net and login.eveonline.com over HTTP. It knows nothing about
// caching or dispatch — it fetches, retries and decodes, and hands back
// typed upstream rows wrapped in their declared freshness window.
package esi

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const (
	maxRetries    = 3
	retryBaseWait = 500 * time.Millisecond
)

const defaultBaseURL = "https://esi.evetech.net/latest"

// Client is a rate-limited ESI HTTP client. One semaphore, shared by every
// request the client makes, bounds the number of concurrent upstream
// requests.
type Client struct {
	http      *http.Client
	sem       chan struct{}
	log       zerolog.Logger
	userAgent string
	auth      *authenticator
	baseURL   string
}

// Config carries everything NewClient needs to build a Client, distinct
// from the dispatcher-facing market.Config.
type Config struct {
	UserAgent      string
	ClientID       string
	ClientSecret   string
	RequestTimeout time.Duration
	MaxConcurrent  int

	// BaseURL overrides the ESI API root, for pointing at a test server.
	// Empty means the real esi.evetech.net.
	BaseURL string
	// AuthURL overrides the SSO token endpoint, for the same reason.
	AuthURL string
}

// NewClient builds an ESI client with a connection-reusing transport and a
// concurrency-bounding semaphore.
func NewClient(cfg Config, log zerolog.Logger) *Client {
	transport := &http.Transport{
		// HTTP/2 is intentionally not enabled: for bulk structure-order
		// pagination, HTTP/1.1 with a large connection pool outperforms
		// multiplexing everything through one TCP connection.
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSClientConfig:     &tls.Config{MinVersion: tls.VersionTLS12},
		TLSHandshakeTimeout: 10 * time.Second,
		MaxIdleConns:        200,
		MaxIdleConnsPerHost: 100,
		MaxConnsPerHost:     0,
		IdleConnTimeout:     120 * time.Second,
	}
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 50
	}
	// zero RequestTimeout means no client-wide timeout
	timeout := cfg.RequestTimeout
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	return &Client{
		http:      &http.Client{Timeout: timeout, Transport: transport},
		sem:       make(chan struct{}, maxConcurrent),
		log:       log,
		userAgent: cfg.UserAgent,
		auth:      newAuthenticator(cfg.ClientID, cfg.ClientSecret, cfg.AuthURL),
		baseURL:   base,
	}
}

func isRetryable(statusCode int) bool {
	return statusCode == 502 || statusCode == 503 || statusCode == 504 || statusCode == 520
}

func (c *Client) newRequest(ctx context.Context, method, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// do performs a single request, retrying transient (5xx gateway) failures
// with exponential backoff, and returns the raw response with its body
// already read into memory and closed.
func (c *Client) do(ctx context.Context, method, url string, bearer string) (*http.Response, []byte, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, nil, ctx.Err()
			case <-time.After(retryBaseWait * time.Duration(1<<(attempt-1))):
			}
		}

		select {
		case c.sem <- struct{}{}:
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		}

		req, err := c.newRequest(ctx, method, url)
		if err != nil {
			<-c.sem
			return nil, nil, err
		}
		if bearer != "" {
			req.Header.Set("Authorization", "Bearer "+bearer)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			<-c.sem
			lastErr = err
			c.log.Warn().Err(err).Str("url", url).Int("attempt", attempt+1).Msg("esi request failed")
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		<-c.sem
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode == http.StatusOK {
			return resp, body, nil
		}

		lastErr = fmt.Errorf("esi %s %d: %s", method, resp.StatusCode, string(body))
		if !isRetryable(resp.StatusCode) {
			return resp, body, lastErr
		}
		c.log.Warn().Int("status", resp.StatusCode).Str("url", url).Int("attempt", attempt+1).Msg("esi retryable error")
	}
	return nil, nil, lastErr
}

func (c *Client) getJSON(ctx context.Context, url string, bearer string, dst interface{}) (*http.Response, error) {
	resp, body, err := c.do(ctx, http.MethodGet, url, bearer)
	if err != nil {
		return resp, err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return resp, fmt.Errorf("decode %s: %w", url, err)
	}
	return resp, nil
}

// head issues a HEAD request and returns the response headers only, used to
// discover X-Pages before fanning out the structure-order page fetches.
func (c *Client) head(ctx context.Context, url string, bearer string) (*http.Response, error) {
	select {
	case c.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-c.sem }()

	req, err := c.newRequest(ctx, http.MethodHead, url)
	if err != nil {
		return nil, err
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return resp, fmt.Errorf("esi HEAD %d: %s", resp.StatusCode, url)
	}
	return resp, nil
}
