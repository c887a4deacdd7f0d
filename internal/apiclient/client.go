// Package apiclient is a small client for the chess service HTTP API, used
// by the chesscheck smoke tool.
package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/kapu/chessmate/pkg/gamedto"
)

type Client struct {
	baseURL string
	http    *fasthttp.Client

	defaultTimeout time.Duration
	retryMax       int

	// access token captured from the authenticate response cookie
	token string
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.defaultTimeout = d }
}

func WithRetry(max int) Option {
	return func(c *Client) { c.retryMax = max }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &fasthttp.Client{ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 16},
		defaultTimeout: 10 * time.Second,
		retryMax:       3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Health(ctx context.Context) error {
	return c.doJSON(ctx, fasthttp.MethodGet, "/healthz", nil, nil, true)
}

func (c *Client) CreateAccount(ctx context.Context, username, password string) (*gamedto.AccountResponse, error) {
	req := gamedto.CreateAccountRequest{Username: username, Password: password}
	var resp gamedto.AccountResponse
	if err := c.doJSON(ctx, fasthttp.MethodPost, "/api/v1/accounts", req, &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Authenticate logs in and keeps the access token cookie for subsequent
// calls on this client.
func (c *Client) Authenticate(ctx context.Context, username, password string) error {
	req := gamedto.AuthenticateRequest{Username: username, Password: password}
	return c.doJSON(ctx, fasthttp.MethodPost, "/api/v1/authenticate", req, nil, false)
}

func (c *Client) CreateGame(ctx context.Context, color string) (*gamedto.Game, error) {
	req := gamedto.CreateGameRequest{DesiredColor: color}
	var g gamedto.Game
	if err := c.doJSON(ctx, fasthttp.MethodPost, "/api/v1/games", req, &g, false); err != nil {
		return nil, err
	}
	return &g, nil
}

func (c *Client) JoinGame(ctx context.Context, gameID, inviteSecret string) (*gamedto.Game, error) {
	path := fmt.Sprintf("/api/v1/games/%s/join?invite_secret=%s", gameID, inviteSecret)
	var g gamedto.Game
	if err := c.doJSON(ctx, fasthttp.MethodPost, path, nil, &g, false); err != nil {
		return nil, err
	}
	return &g, nil
}

func (c *Client) GetGame(ctx context.Context, gameID string) (*gamedto.Game, error) {
	var g gamedto.Game
	if err := c.doJSON(ctx, fasthttp.MethodGet, "/api/v1/games/"+gameID, nil, &g, true); err != nil {
		return nil, err
	}
	return &g, nil
}

func (c *Client) Move(ctx context.Context, gameID, from, to string) (*gamedto.Move, error) {
	req := gamedto.MoveRequest{SquareFrom: from, SquareTo: to}
	var mv gamedto.Move
	if err := c.doJSON(ctx, fasthttp.MethodPost, "/api/v1/games/"+gameID+"/moves", req, &mv, false); err != nil {
		return nil, err
	}
	return &mv, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any, retry bool) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)
	req.Header.SetContentType("application/json")
	if c.token != "" {
		req.Header.SetCookie("access_token", c.token)
	}

	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		req.SetBody(payload)
	}

	attempts := 1
	if retry {
		attempts = c.retryMax
		if attempts <= 0 {
			attempts = 1
		}
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		deadline := c.computeDeadline(ctx)
		if err := c.http.DoDeadline(req, resp, deadline); err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			if attempt == attempts || !retry {
				return lastErr
			}
			if sleepErr := sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return lastErr
			}
			continue
		}

		status := resp.StatusCode()
		if status < 200 || status >= 300 {
			lastErr = apiError(status, resp.Body())
			if attempt == attempts || !retry || !shouldRetryStatus(status) {
				return lastErr
			}
			if sleepErr := sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return lastErr
			}
			continue
		}

		if tok := tokenFromCookies(&resp.Header); tok != "" {
			c.token = tok
		}
		if out != nil {
			if err := json.Unmarshal(resp.Body(), out); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
		}
		return nil
	}

	if lastErr == nil {
		lastErr = errors.New("unknown error")
	}
	return lastErr
}

func tokenFromCookies(h *fasthttp.ResponseHeader) string {
	cookie := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(cookie)
	cookie.SetKey("access_token")
	if !h.Cookie(cookie) {
		return ""
	}
	return string(cookie.Value())
}

func apiError(status int, body []byte) error {
	var failure gamedto.Failure
	if err := json.Unmarshal(body, &failure); err == nil && failure.UserFeedback != "" {
		return fmt.Errorf("chess api error: status=%d feedback=%s", status, failure.UserFeedback)
	}
	return fmt.Errorf("chess api error: status=%d body=%s", status, truncate(string(body), 512))
}

func (c *Client) computeDeadline(ctx context.Context) time.Time {
	if dl, ok := ctx.Deadline(); ok {
		clientDL := time.Now().Add(c.defaultTimeout)
		if dl.Before(clientDL) {
			return dl
		}
		return clientDL
	}
	return time.Now().Add(c.defaultTimeout)
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func backoffDuration(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		attempt = 6
	}
	base := 100 * time.Millisecond
	return time.Duration(1<<uint(attempt-1)) * base
}

func shouldRetryStatus(code int) bool {
	switch code {
	case 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
