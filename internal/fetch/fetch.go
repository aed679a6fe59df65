// Package fetch wraps outbound HTTP with bounded retries, linear
// backoff and a TTL response cache shared by all provider adapters.
package fetch

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// DefaultTTL is the cache lifetime for ordinary catalog responses.
// PosterTTL is used for poster lookups; artwork barely ever changes.
const (
	DefaultTTL = time.Hour
	PosterTTL  = 24 * time.Hour
)

const defaultMaxRetries = 3

// StatusError reports a non-2xx upstream response.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
}

// Client performs HTTP requests with retry. A request is retried on
// network errors, 5xx and 429; other 4xx responses fail immediately
// since retrying a client error cannot help. Backoff between attempts
// is linear: 1s, 2s, 3s...
type Client struct {
	HTTP       *http.Client
	MaxRetries int
	UserAgent  string

	cache *responseCache
	sleep func(context.Context, time.Duration) error
}

// NewClient builds a Client with a pooled transport sized for many
// concurrent upstream calls and a shared response cache.
func NewClient() *Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
		ForceAttemptHTTP2:   true,
	}
	return &Client{
		HTTP: &http.Client{
			Transport: transport,
			Timeout:   15 * time.Second,
		},
		MaxRetries: defaultMaxRetries,
		UserAgent:  "anihub/1.0",
		cache:      newResponseCache(2048),
		sleep:      sleepCtx,
	}
}

// Get fetches url, serving from cache when a fresh entry exists.
// ttl <= 0 disables caching for this call.
func (c *Client) Get(ctx context.Context, url string, ttl time.Duration) ([]byte, error) {
	return c.do(ctx, http.MethodGet, url, nil, ttl)
}

// GetJSON is Get plus a JSON decode into v.
func (c *Client) GetJSON(ctx context.Context, url string, ttl time.Duration, v any) error {
	body, err := c.Get(ctx, url, ttl)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("fetch %s: decode: %w", url, err)
	}
	return nil
}

// PostJSON sends payload as a JSON body. Responses are cached by
// URL+body, which makes repeated GraphQL queries as cheap as GETs.
func (c *Client) PostJSON(ctx context.Context, url string, payload any, ttl time.Duration, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("fetch %s: encode: %w", url, err)
	}
	respBody, err := c.do(ctx, http.MethodPost, url, body, ttl)
	if err != nil {
		return err
	}
	if v == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, v); err != nil {
		return fmt.Errorf("fetch %s: decode: %w", url, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, url string, reqBody []byte, ttl time.Duration) ([]byte, error) {
	key := cacheKey(method, url, reqBody)
	if ttl > 0 {
		if cached, ok := c.cache.get(key); ok {
			return cached, nil
		}
	}

	maxRetries := c.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		body, retryable, err := c.once(ctx, method, url, reqBody)
		if err == nil {
			if ttl > 0 {
				c.cache.put(key, body, ttl)
			}
			return body, nil
		}
		if !retryable {
			return nil, err
		}
		lastErr = err

		if attempt < maxRetries {
			if serr := c.sleep(ctx, time.Duration(attempt)*time.Second); serr != nil {
				return nil, serr
			}
		}
	}
	return nil, lastErr
}

// once performs a single attempt. The second return value reports
// whether the failure is worth retrying.
func (c *Client) once(ctx context.Context, method, url string, reqBody []byte) ([]byte, bool, error) {
	var reader io.Reader
	if reqBody != nil {
		reader = bytes.NewReader(reqBody)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, false, fmt.Errorf("fetch %s: build request: %w", url, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.UserAgent)
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("fetch %s: %w", url, err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, true, fmt.Errorf("fetch %s: read body: %w", url, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, false, nil
	}

	statusErr := &StatusError{URL: url, Status: resp.StatusCode}
	if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
		return nil, false, statusErr
	}
	return nil, true, statusErr
}

func cacheKey(method, url string, body []byte) string {
	if body == nil {
		return method + " " + url
	}
	sum := sha256.Sum256(body)
	return method + " " + url + " " + hex.EncodeToString(sum[:8])
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
