// Package api talks to the marketplace REST backend. It attaches the stored
// bearer credential to every request and treats a 401 from any endpoint as
// the end of the session.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"agrilink-storefront/storage"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxBodyBytes = 10 << 20

// Config configures the backend client
type Config struct {
	BaseURL string
	Timeout time.Duration

	// Transport is the base round tripper; http.DefaultTransport when nil.
	Transport http.RoundTripper
}

// Client is the backend collaborator shared by all stores
type Client struct {
	baseURL     string
	httpClient  *http.Client
	credentials storage.Store
	log         *logrus.Entry

	mu             sync.RWMutex
	onUnauthorized []func()
}

// NewClient creates a client reading the bearer credential from credentials
func NewClient(cfg Config, credentials storage.Store, log *logrus.Entry) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(cfg.BaseURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("invalid API base URL %q", cfg.BaseURL)
	}
	if credentials == nil {
		return nil, errors.New("credential storage is required")
	}

	base := cfg.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	return &Client{
		baseURL: strings.TrimRight(u.String(), "/"),
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(base),
		},
		credentials: credentials,
		log:         log,
	}, nil
}

// OnUnauthorized registers fn to run once for every 401 response, after the
// stored credential has been removed.
func (c *Client) OnUnauthorized(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = append(c.onUnauthorized, fn)
}

// Envelope is the backend's standard response wrapper
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  json.RawMessage `json:"errors"`

	raw []byte
}

// HasData reports whether the envelope carried a non-null data field
func (e *Envelope) HasData() bool {
	d := bytes.TrimSpace(e.Data)
	return len(d) > 0 && !bytes.Equal(d, []byte("null"))
}

// Decode unmarshals the data field, or the whole body when there is none
func (e *Envelope) Decode(v interface{}) error {
	src := e.raw
	if e.HasData() {
		src = e.Data
	}
	if err := json.Unmarshal(src, v); err != nil {
		return errors.Wrap(ErrMalformedResponse, err.Error())
	}
	return nil
}

var listKeys = []string{"docs", "orders", "products", "items"}

// DecodeList finds the list in any of the shapes the backend uses: a bare
// array, an array under data, or an array under data.docs (paginated).
func (e *Envelope) DecodeList(v interface{}) error {
	sources := [][]byte{bytes.TrimSpace(e.Data), bytes.TrimSpace(e.raw)}
	for _, src := range sources {
		if isJSON(src, '[') {
			return e.decodeInto(src, v)
		}
	}
	for _, src := range sources {
		if !isJSON(src, '{') {
			continue
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(src, &fields); err != nil {
			continue
		}
		for _, k := range listKeys {
			if list := bytes.TrimSpace(fields[k]); isJSON(list, '[') {
				return e.decodeInto(list, v)
			}
		}
	}
	if e.HasData() {
		return errors.Wrap(ErrMalformedResponse, "expected a list")
	}
	return nil
}

func (e *Envelope) decodeInto(src []byte, v interface{}) error {
	if err := json.Unmarshal(src, v); err != nil {
		return errors.Wrap(ErrMalformedResponse, err.Error())
	}
	return nil
}

func isJSON(b []byte, open byte) bool {
	return len(b) > 0 && b[0] == open
}

// Do sends one request and returns the decoded envelope of a 2xx response.
// Non-2xx answers come back as *ResponseError, transport failures as
// *NetworkError.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body interface{}) (*Envelope, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrapf(err, "encode %s %s", method, path)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, errors.Wrapf(err, "build %s %s", method, path)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token, ok, err := storage.Lookup(ctx, c.credentials, storage.TokenKey)
	if err != nil {
		c.log.WithError(err).Warn("could not read stored credential")
	} else if ok && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.WithFields(logrus.Fields{
			"method":     method,
			"url":        path,
			"request_id": requestID,
		}).WithError(err).Error("API request did not complete")
		return nil, &NetworkError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &NetworkError{Op: method + " " + path, Err: err}
	}

	env := &Envelope{raw: raw}
	trimmed := bytes.TrimSpace(raw)
	if isJSON(trimmed, '{') {
		if err := json.Unmarshal(trimmed, env); err != nil && resp.StatusCode < 300 {
			return nil, errors.Wrapf(ErrMalformedResponse, "%s %s: %v", method, path, err)
		}
	}

	if resp.StatusCode >= 300 {
		rerr := &ResponseError{
			Status:    resp.StatusCode,
			Message:   env.Message,
			Errors:    parseFieldErrors(env.Errors),
			URL:       path,
			RequestID: requestID,
		}
		c.log.WithFields(logrus.Fields{
			"status":     rerr.Status,
			"message":    rerr.Message,
			"errors":     rerr.Errors,
			"method":     method,
			"url":        path,
			"request_id": requestID,
		}).Error("API error")

		if resp.StatusCode == http.StatusUnauthorized {
			c.invalidate(ctx, token)
		}
		return nil, rerr
	}
	return env, nil
}

// invalidate drops the stored credential and notifies listeners. A 401
// for a token that has since been replaced by a newer sign-in is ignored.
func (c *Client) invalidate(ctx context.Context, sent string) {
	current, _, err := storage.Lookup(ctx, c.credentials, storage.TokenKey)
	if err == nil && current != sent {
		c.log.Debug("ignoring 401 for a replaced credential")
		return
	}
	if err := c.credentials.Delete(ctx, storage.TokenKey); err != nil {
		c.log.WithError(err).Error("failed to clear credential after 401")
	}

	c.mu.RLock()
	hooks := make([]func(), len(c.onUnauthorized))
	copy(hooks, c.onUnauthorized)
	c.mu.RUnlock()

	for _, fn := range hooks {
		fn()
	}
}
