package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/libdesk/internal/common"
	"github.com/dmitrijs2005/libdesk/internal/logging"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultRefreshPath = "/token/refresh"
	DefaultTimeout     = 15 * time.Second

	jsonContentType = "application/json"
	refreshKey      = "refresh"
)

// TokenStore is the credential storage the client reads and updates.
type TokenStore interface {
	AccessToken(ctx context.Context) string
	RefreshToken(ctx context.Context) string
	SetAccessToken(ctx context.Context, access string)
	Clear(ctx context.Context)
}

// Request describes one logical API call.
type Request struct {
	Method string
	Path   string
	// Body is JSON encoded when non-nil.
	Body any
	// Result receives the decoded JSON body of a successful response. Fields
	// absent from the body keep their previous value.
	Result any
	// Anonymous requests carry no token and are never refreshed (login).
	Anonymous bool
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	AccessToken string `json:"accessToken"`
}

// Client is safe for concurrent use.
type Client struct {
	http        *resty.Client
	tokens      TokenStore
	log         logging.Logger
	refreshPath string
	group       singleflight.Group

	mu        sync.RWMutex
	onExpired func(ctx context.Context)
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.SetTimeout(d)
		}
	}
}

func WithRefreshPath(path string) Option {
	return func(c *Client) {
		if path != "" {
			c.refreshPath = path
		}
	}
}

func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.http.SetTransport(rt)
	}
}

// New creates a Client talking to baseURL (e.g. "http://127.0.0.1:8000/").
func New(baseURL string, tokens TokenStore, log logging.Logger, opts ...Option) *Client {
	c := &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(DefaultTimeout).
			SetHeader("Accept", jsonContentType),
		tokens:      tokens,
		log:         log.With("component", "client"),
		refreshPath: DefaultRefreshPath,
	}

	c.http.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		if r.Header.Get(common.RequestIDHeader) == "" {
			r.SetHeader(common.RequestIDHeader, uuid.NewString())
		}
		return nil
	})
	c.http.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		c.log.Debug(resp.Request.Context(), "api call",
			"method", resp.Request.Method,
			"url", resp.Request.URL,
			"status", resp.StatusCode(),
			"duration", resp.Time(),
			"request_id", resp.Request.Header.Get(common.RequestIDHeader),
		)
		return nil
	})

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnSessionExpired registers fn to run after an unrecoverable 401 cleared the tokens.
func (c *Client) OnSessionExpired(fn func(ctx context.Context)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onExpired = fn
}

func (c *Client) Get(ctx context.Context, path string, result any) error {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Result: result})
}

func (c *Client) Post(ctx context.Context, path string, body, result any) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body, Result: result})
}

func (c *Client) Put(ctx context.Context, path string, body, result any) error {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body, Result: result})
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path})
}

// Do sends r with the stored access token. On a 401 it refreshes the token
// once and re-issues r; the retry itself is never refreshed again. Tokens are
// cleared only when the refresh exchange fails, not when ctx ends while
// waiting for it.
func (c *Client) Do(ctx context.Context, r Request) error {
	requestID := uuid.NewString()

	if r.Anonymous {
		resp, err := c.send(ctx, r, requestID, "")
		if err != nil {
			return err
		}
		return check(r, resp)
	}

	token := c.tokens.AccessToken(ctx)
	resp, err := c.send(ctx, r, requestID, token)
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusUnauthorized {
		return check(r, resp)
	}

	original := check(r, resp)

	newToken, err := c.renewToken(ctx, token)
	if err != nil {
		// The caller gave up; the shared exchange still finishes for the others.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s %s: waiting for token refresh: %w", r.Method, r.Path, ctxErr)
		}
		c.log.Warn(ctx, "token refresh failed, clearing session", "path", r.Path, "error", err)
		c.expire(ctx)
		return original
	}

	c.log.Debug(ctx, "retrying with refreshed token", "method", r.Method, "path", r.Path)
	resp, err = c.send(ctx, r, requestID, newToken)
	if err != nil {
		return err
	}
	if resp.StatusCode() == http.StatusUnauthorized {
		c.log.Warn(ctx, "request rejected after refresh, clearing session", "path", r.Path)
		c.expire(ctx)
	}
	return check(r, resp)
}

// renewToken returns a token to retry with. If another request already
// replaced the token that was rejected, that newer token is reused.
func (c *Client) renewToken(ctx context.Context, rejected string) (string, error) {
	if current := c.tokens.AccessToken(ctx); current != "" && current != rejected {
		return current, nil
	}

	ch := c.group.DoChan(refreshKey, func() (any, error) {
		return c.exchange(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// exchange trades the stored refresh token for a new access token.
func (c *Client) exchange(ctx context.Context) (string, error) {
	refresh := c.tokens.RefreshToken(ctx)
	if refresh == "" {
		return "", ErrNoRefreshToken
	}

	var out refreshResponse
	r := Request{Method: http.MethodPost, Path: c.refreshPath, Body: refreshRequest{RefreshToken: refresh}, Result: &out}

	resp, err := c.send(ctx, r, uuid.NewString(), "")
	if err != nil {
		return "", err
	}
	if err := check(r, resp); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", errors.New("refresh response carries no access token")
	}

	c.tokens.SetAccessToken(ctx, out.AccessToken)
	c.log.Info(ctx, "access token refreshed")
	return out.AccessToken, nil
}

func (c *Client) expire(ctx context.Context) {
	c.tokens.Clear(ctx)

	c.mu.RLock()
	fn := c.onExpired
	c.mu.RUnlock()
	if fn != nil {
		fn(ctx)
	}
}

func (c *Client) send(ctx context.Context, r Request, requestID, token string) (*resty.Response, error) {
	req := c.http.R().
		SetContext(ctx).
		SetHeader(common.RequestIDHeader, requestID)

	if token != "" {
		req.SetHeader(common.AuthorizationHeader, common.BearerPrefix+token)
	}
	if r.Body != nil {
		req.SetHeader("Content-Type", jsonContentType).SetBody(r.Body)
	}
	if r.Result != nil {
		req.SetResult(r.Result).ForceContentType(jsonContentType)
	}

	resp, err := req.Execute(r.Method, r.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrUnavailable, r.Method, r.Path, err)
	}
	return resp, nil
}

func check(r Request, resp *resty.Response) error {
	if resp.IsSuccess() {
		return nil
	}
	return &APIError{
		StatusCode: resp.StatusCode(),
		Method:     r.Method,
		Path:       r.Path,
		Body:       string(resp.Body()),
	}
}
