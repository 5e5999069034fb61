package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxErrorBody caps how much of a failed response is kept in StatusError.
const maxErrorBody = 4 << 10

// StatusError is returned for non-2xx upstream responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.StatusCode, e.Body)
}

// Client is a small JSON client for upstream services.
type Client struct {
	hc *http.Client
}

type ClientOption func(*http.Client)

// WithTimeout bounds each request, including reading the body.
func WithTimeout(d time.Duration) ClientOption { return func(hc *http.Client) { hc.Timeout = d } }

// WithTransport replaces the round tripper. Nil means http.DefaultTransport.
func WithTransport(rt http.RoundTripper) ClientOption {
	return func(hc *http.Client) { hc.Transport = rt }
}

func NewClient(opts ...ClientOption) *Client {
	hc := &http.Client{Timeout: 30 * time.Second}
	for _, opt := range opts {
		opt(hc)
	}
	return &Client{hc: hc}
}

// PostJSON posts payload to url and decodes the JSON reply into dest.
func (c *Client) PostJSON(ctx context.Context, url string, payload, dest interface{}) error {
	return c.Do(ctx, http.MethodPost, url, payload, dest)
}

// Do sends payload as JSON when non-nil. A nil dest discards the reply body.
func (c *Client) Do(ctx context.Context, method, url string, payload, dest interface{}) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, url, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode %s reply: %w", url, err)
	}
	return nil
}
