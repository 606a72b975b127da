// Package api is the HTTP transport every storefront service talks
// through. It owns the base URL, the request timeout, bearer-token
// injection, and the mapping from HTTP failures to the status error
// taxonomy.
package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"ticketfront/internal/status"
	"ticketfront/monitoring"
	"ticketfront/utils"
)

// TokenSource supplies the current bearer token, or "" when the session
// is unauthenticated. The session service owns the token; everyone else
// reads it through this.
type TokenSource func() string

type Config struct {
	BaseURL       string
	Timeout       time.Duration
	EnableMetrics bool
}

type Client struct {
	// baseURL is the storefront backend root, without trailing slash.
	baseURL string

	// token supplies the bearer token for protected routes.
	token TokenSource

	// breaker stops hammering a backend that is not answering.
	breaker *utils.CircuitBreaker

	metrics bool

	// hc is the http client.
	hc *http.Client
}

func NewClient(cfg *Config, token TokenSource) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if token == nil {
		token = func() string { return "" }
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   token,
		breaker: utils.NewCircuitBreaker("storefront-api"),
		metrics: cfg.EnableMetrics,

		hc: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api.do: json.Marshal: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return fmt.Errorf("api.do: http.NewReq: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if id, err := utils.RequestID(); err == nil {
		req.Header.Set("X-Request-ID", id)
	}

	start := time.Now()
	var resp *http.Response
	err = c.breaker.Execute(func() error {
		r, err := c.hc.Do(req)
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		if c.metrics && !errors.Is(err, utils.ErrBreakerOpen) {
			monitoring.TrackRequest(method, routeLabel(path), 0, 0)
		}
		return &status.NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if c.metrics {
		monitoring.TrackRequest(method, routeLabel(path), resp.StatusCode, time.Since(start))
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			io.Copy(io.Discard, resp.Body)
			return nil
		}
		dec := json.NewDecoder(resp.Body)
		if err := dec.Decode(out); err != nil {
			return fmt.Errorf("api.do: json.Decode %s %s: %w", method, path, err)
		}
		return nil
	}

	if resp.StatusCode == http.StatusNotFound {
		return status.ErrNotFound
	}

	// The backend reports business failures as {"error": "..."}; carry
	// the message through verbatim.
	var reply struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	msg := ""
	if err := json.NewDecoder(resp.Body).Decode(&reply); err == nil {
		msg = reply.Error
		if msg == "" {
			msg = reply.Message
		}
	}

	// A bare 401 is a missing or dead token. A 401 with a message is a
	// business rejection (bad credentials) and keeps its message.
	if resp.StatusCode == http.StatusUnauthorized && msg == "" {
		return status.ErrUnauthenticated
	}
	return &status.APIError{StatusCode: resp.StatusCode, Message: msg}
}

// routeLabel collapses numeric path segments so metrics stay at
// route-template cardinality.
func routeLabel(path string) string {
	parts := strings.Split(path, "/")
	for i, p := range parts {
		if p == "" {
			continue
		}
		if _, err := strconv.Atoi(p); err == nil {
			parts[i] = ":id"
		}
	}
	return strings.Join(parts, "/")
}
