// Package api is the HTTP gateway to the DoD Manager REST API.
//
// Every request carries the bearer token returned by the configured token
// source at send time. Every 401 response, whatever the endpoint, invokes
// the unauthorized handler before the error reaches the caller.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	DefaultBaseURL = "http://localhost:8080/api/v1"
	defaultTimeout = 15 * time.Second
	maxBodyBytes   = 4 << 20
)

// Client dispatches requests and exposes the domain sub-clients.
type Client struct {
	baseURL        string
	http           *http.Client
	tokenSource    func() string
	onUnauthorized func()
	log            logrus.FieldLogger
	userAgent      string
	timeout        time.Duration

	Auth     *AuthService
	Projects *ProjectService
	DoDs     *DoDService
}

// Option describes the available options
// for creating the client.
type Option func(c *Client)

// WithTimeout bounds every request. Zero or negative keeps the default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithTokenSource sets the function read on every request to build the
// Authorization header. An empty token sends no header.
func WithTokenSource(fn func() string) Option {
	return func(c *Client) { c.tokenSource = fn }
}

// WithUnauthorizedHandler sets the callback fired on any 401 response.
func WithUnauthorizedHandler(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Client) { c.log = l }
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

func New(baseURL string, opts ...Option) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		timeout:   defaultTimeout,
		userAgent: "dod-cli",
	}
	for _, o := range opts {
		o(c)
	}
	c.http = &http.Client{Timeout: c.timeout}
	if c.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		c.log = l
	}
	c.Auth = &AuthService{c: c}
	c.Projects = &ProjectService{c: c}
	c.DoDs = &DoDService{c: c}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

// AuthorizationHeader is the header value the next request would carry.
func (c *Client) AuthorizationHeader() string {
	if c.tokenSource == nil {
		return ""
	}
	tok := strings.TrimSpace(c.tokenSource())
	if tok == "" {
		return ""
	}
	return "Bearer " + tok
}

// Do sends one request. in is JSON-encoded when non-nil; out receives the
// decoded body of a 2xx response when non-nil.
func (c *Client) Do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s %s: marshal: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", reqID)
	if h := c.AuthorizationHeader(); h != "" {
		req.Header.Set("Authorization", h)
	}

	log := c.log.WithFields(logrus.Fields{
		"method":     method,
		"path":       path,
		"request_id": reqID,
	})
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.WithError(err).Debug("request failed")
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", method, path, err)
	}
	log.WithFields(logrus.Fields{
		"status":   resp.StatusCode,
		"duration": time.Since(start).Round(time.Millisecond),
	}).Debug("request done")

	if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
		log.Info("unauthorized response, invalidating session")
		c.onUnauthorized()
	}
	if resp.StatusCode >= 400 {
		return newError(resp.StatusCode, raw)
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s %s: decode: %w", method, path, err)
	}
	return nil
}
