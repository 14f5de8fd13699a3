package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/hay-kot/shop/internal/core/session"
)

// Endpoints the client treats specially.
const (
	PathLogin   = "login/"
	PathRefresh = "token/refresh/"
)

// Defaults used when Config leaves a field empty.
const (
	DefaultBaseURL = "http://localhost:8000/api/"
	DefaultTimeout = 5 * time.Second
)

// HeaderRequestID is sent with every request. A retry reuses the original id.
const HeaderRequestID = "X-Request-ID"

const maxBodyBytes = 8 << 20

// Config configures a Client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// TrustedHosts are glob patterns (host or host:port) the bearer credential may
	// be sent to. Defaults to the base URL's host.
	TrustedHosts []string
	// HTTPClient overrides the transport. Its Timeout is replaced by Timeout.
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// Client issues requests to the backend with bearer attachment and a single
// refresh-and-resend on authorization expiry.
type Client struct {
	base    *url.URL
	http    *http.Client
	store   session.Store
	trusted []string
	timeout time.Duration
	log     zerolog.Logger

	flight singleflight.Group

	mu        sync.Mutex
	onCleared []func()
}

// New creates a Client bound to store.
func New(cfg Config, store session.Store) (*Client, error) {
	if store == nil {
		return nil, errors.New("session store is required")
	}

	raw := cfg.BaseURL
	if raw == "" {
		raw = DefaultBaseURL
	}
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}

	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	hc := &http.Client{}
	if cfg.HTTPClient != nil {
		clone := *cfg.HTTPClient
		hc = &clone
	}
	hc.Timeout = timeout

	patterns := cfg.TrustedHosts
	if len(patterns) == 0 {
		patterns = []string{base.Host}
	}
	trusted := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid trusted host pattern %q", p)
		}
		trusted = append(trusted, strings.ToLower(p))
	}

	return &Client{
		base:    base,
		http:    hc,
		store:   store,
		trusted: trusted,
		timeout: timeout,
		log:     cfg.Logger,
	}, nil
}

// BaseURL returns the resolved base URL.
func (c *Client) BaseURL() *url.URL {
	u := *c.base
	return &u
}

// Store returns the session store the client reads credentials from.
func (c *Client) Store() session.Store {
	return c.store
}

// OnSessionCleared registers fn to run whenever a failed refresh clears the
// session.
func (c *Client) OnSessionCleared(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onCleared = append(c.onCleared, fn)
}

// Do sends req. Responses with status >= 400 are returned together with a
// *StatusError. See the package documentation for the refresh protocol.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	first := attempt{requestID: uuid.NewString()}

	resp, err := c.dispatch(ctx, req, first)
	if !c.shouldRefresh(req, first, err) {
		return resp, err
	}

	sess, serr := c.store.Get(ctx)
	if serr != nil {
		c.log.Warn().Err(serr).Str("request_id", first.requestID).Msg("read session for refresh")
		return resp, err
	}
	if !sess.CanRefresh() {
		c.log.Debug().Str("request_id", first.requestID).Msg("unauthorized and no refresh credential available")
		return resp, err
	}

	fresh, rerr := c.refresh(ctx, sess.Refresh)
	if rerr != nil {
		return nil, rerr
	}

	return c.dispatch(ctx, req, first.retry(fresh.Access))
}

// Get sends a GET and decodes the response into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.call(ctx, Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

// Post sends body as JSON and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.call(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

// Put sends body as JSON and decodes the response into out.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.call(ctx, Request{Method: http.MethodPut, Path: path, Body: body}, out)
}

// Delete sends a DELETE and decodes the response into out.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.call(ctx, Request{Method: http.MethodDelete, Path: path}, out)
}

func (c *Client) call(ctx context.Context, req Request, out any) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	if err := resp.Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", req.Method, req.Path, err)
	}
	return nil
}

func (c *Client) shouldRefresh(req Request, a attempt, err error) bool {
	if a.retried || !IsStatus(err, http.StatusUnauthorized) {
		return false
	}
	u, uerr := c.resolve(req.Path, nil)
	if uerr != nil {
		return false
	}
	return !c.isAuthEndpoint(u)
}

// refresh exchanges the refresh credential for a new pair. Concurrent callers
// holding the same refresh credential share one backend call. The shared call
// is detached from any single caller; a caller whose ctx ends stops waiting
// without affecting the others.
func (c *Client) refresh(ctx context.Context, token string) (session.Session, error) {
	detached := context.WithoutCancel(ctx)
	ch := c.flight.DoChan(token, func() (any, error) {
		rctx, cancel := context.WithTimeout(detached, c.timeout)
		defer cancel()
		return c.doRefresh(rctx, token)
	})

	select {
	case <-ctx.Done():
		return session.Session{}, ctx.Err()
	case res := <-ch:
		if res.Shared {
			c.log.Debug().Msg("joined in-flight session refresh")
		}
		if res.Err != nil {
			return session.Session{}, res.Err
		}
		return res.Val.(session.Session), nil
	}
}

type tokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

func (c *Client) doRefresh(ctx context.Context, token string) (session.Session, error) {
	a := attempt{requestID: uuid.NewString(), anonymous: true}
	req := Request{
		Method: http.MethodPost,
		Path:   PathRefresh,
		Body:   map[string]string{"refresh": token},
	}

	c.log.Debug().Str("request_id", a.requestID).Msg("refreshing session")

	var pair tokenPair
	resp, err := c.dispatch(ctx, req, a)
	if err == nil {
		err = resp.Decode(&pair)
	}
	if err == nil && pair.Access == "" {
		err = errors.New("refresh response did not include an access credential")
	}
	if errors.Is(err, context.Canceled) {
		// Abandoned, not rejected: the backend may already have rotated the pair.
		return session.Session{}, err
	}
	if err != nil {
		c.log.Warn().Err(err).Str("request_id", a.requestID).Msg("session refresh failed, clearing session")
		if cerr := c.store.Clear(ctx); cerr != nil {
			c.log.Error().Err(cerr).Msg("clear session")
		}
		c.notifyCleared()
		return session.Session{}, &RefreshError{Err: err}
	}

	fresh := session.Session{Refresh: token}.Rotate(pair.Access, pair.Refresh)
	if err := c.store.Set(ctx, fresh); err != nil {
		return session.Session{}, &RefreshError{Err: fmt.Errorf("persist session: %w", err)}
	}

	return fresh, nil
}

func (c *Client) notifyCleared() {
	c.mu.Lock()
	fns := append([]func(){}, c.onCleared...)
	c.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// dispatch performs exactly one HTTP round trip.
func (c *Client) dispatch(ctx context.Context, req Request, a attempt) (*Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	u, err := c.resolve(req.Path, req.Query)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	httpReq.Header.Set(HeaderRequestID, a.requestID)

	bearer, err := c.bearer(ctx, a)
	if err != nil {
		return nil, err
	}
	if bearer != "" && c.trustedHost(u.Host) {
		httpReq.Header.Set("Authorization", "Bearer "+bearer)
	}

	start := time.Now()
	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		c.log.Debug().Err(err).
			Str("request_id", a.requestID).
			Str("method", method).
			Str("path", req.Path).
			Msg("request failed")
		return nil, err
	}
	defer httpResp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	c.log.Debug().
		Str("request_id", a.requestID).
		Str("method", method).
		Str("path", req.Path).
		Int("status", httpResp.StatusCode).
		Bool("retry", a.retried).
		Dur("elapsed", time.Since(start)).
		Msg("request")

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       data,
		RequestID:  a.requestID,
	}

	if httpResp.StatusCode >= http.StatusBadRequest {
		return resp, newStatusError(method, req.Path, httpResp.StatusCode, data)
	}

	return resp, nil
}

func (c *Client) bearer(ctx context.Context, a attempt) (string, error) {
	if a.anonymous {
		return "", nil
	}
	if a.bearer != "" {
		return a.bearer, nil
	}

	sess, err := c.store.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("read session: %w", err)
	}
	return sess.Access, nil
}

func (c *Client) resolve(path string, query url.Values) (*url.URL, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("parse path %q: %w", path, err)
	}

	// Paths are relative to the API root even when written with a leading slash.
	if !ref.IsAbs() && ref.Host == "" {
		ref.Path = strings.TrimPrefix(ref.Path, "/")
	}

	u := c.base.ResolveReference(ref)
	if len(query) > 0 {
		q := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u, nil
}

func (c *Client) isAuthEndpoint(u *url.URL) bool {
	if !strings.EqualFold(u.Host, c.base.Host) {
		return false
	}
	for _, p := range []string{PathLogin, PathRefresh} {
		if u.Path == c.base.ResolveReference(&url.URL{Path: p}).Path {
			return true
		}
	}
	return false
}

func (c *Client) trustedHost(host string) bool {
	host = strings.ToLower(host)
	for _, p := range c.trusted {
		if ok, _ := doublestar.Match(p, host); ok {
			return true
		}
	}
	return false
}
