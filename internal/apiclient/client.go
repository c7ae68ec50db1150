// Package apiclient talks to the remote Gift Finder API. Every call is
// bounded by the client timeout and reports failures as *RequestError.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const DefaultTimeout = 10 * time.Second

// Session persists the admin bearer token between requests.
type Session interface {
	Token() (string, error)
	SetToken(token string) error
	ClearToken() error
}

type Client struct {
	base    string
	hc      *http.Client
	timeout time.Duration
	metrics *Metrics
	logger  *logrus.Logger
	session Session
	flight  *singleflight.Group
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.hc = hc
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func WithLogger(l *logrus.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New returns a client for the API rooted at baseURL, for example
// "http://localhost:5000/api/v1".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		base:    trimSlash(baseURL),
		hc:      &http.Client{},
		timeout: DefaultTimeout,
		logger:  logrus.StandardLogger(),
		flight:  &singleflight.Group{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithSession returns a copy of c that reads and writes the admin token
// through s. The copy shares the transport and in-flight dedupe state.
func (c *Client) WithSession(s Session) *Client {
	cp := *c
	cp.session = s
	return &cp
}

func trimSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}

type call struct {
	op       string
	method   string
	path     string
	query    url.Values
	body     any
	auth     bool
	fallback string
}

func (c *Client) token() string {
	if c.session == nil {
		return ""
	}
	tok, err := c.session.Token()
	if err != nil {
		c.logger.WithError(err).Warn("apiclient: read session token")
		return ""
	}
	return tok
}

// do performs the call and decodes a 2xx JSON body into out when out is
// not nil.
func (c *Client) do(ctx context.Context, k call, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := c.base + k.path
	if len(k.query) > 0 {
		u += "?" + k.query.Encode()
	}

	var rd io.Reader
	if k.body != nil {
		b, err := json.Marshal(k.body)
		if err != nil {
			return fmt.Errorf("%s: encode body: %w", k.op, err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, k.method, u, rd)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", k.op, err)
	}
	req.Header.Set("Accept", "application/json")
	if rd != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if k.auth {
		if tok := c.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		c.observe(k.op, 0, start)
		c.logger.WithFields(logrus.Fields{"op": k.op, "url": u}).WithError(err).Warn("apiclient: request failed")
		return &RequestError{Op: k.op, Message: k.fallback, Err: err}
	}
	defer resp.Body.Close()
	c.observe(k.op, resp.StatusCode, start)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RequestError{Op: k.op, Status: resp.StatusCode, Message: k.fallback, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RequestError{Op: k.op, Status: resp.StatusCode, Message: serverMessage(raw, k.fallback)}
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &RequestError{Op: k.op, Status: resp.StatusCode, Message: k.fallback, Err: err}
	}
	return nil
}

func (c *Client) observe(op string, status int, start time.Time) {
	if c.metrics == nil {
		return
	}
	c.metrics.requests.WithLabelValues(op, strconv.Itoa(status)).Inc()
	c.metrics.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// serverMessage prefers the body's "error", then "message".
func serverMessage(raw []byte, fallback string) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return fallback
	}
	switch {
	case body.Error != "":
		return body.Error
	case body.Message != "":
		return body.Message
	}
	return fallback
}

var ErrNoSession = errors.New("apiclient: no session bound")
