package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/malangee/malangee/pkg/domain"
)

// RequestIDHeader carries a per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// TokenFunc returns the current bearer token, if any. It is consulted on
// every request so that logout and token refresh take effect immediately.
type TokenFunc func() (string, bool)

// Client is the MalangEE API client.
type Client struct {
	baseURL    string
	token      TokenFunc
	httpClient *http.Client
	log        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default 30s-timeout http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a new API client. baseURL is the API root, e.g.
// http://localhost:8080/api/v1. token may be nil for anonymous use.
func New(baseURL string, token TokenFunc, opts ...Option) *Client {
	if token == nil {
		token = func() (string, bool) { return "", false }
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// --- Auth ---

// Login exchanges credentials for an access token using the OAuth2 password grant.
func (c *Client) Login(ctx context.Context, username, password string) (*domain.Token, error) {
	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("username", username)
	form.Set("password", password)
	form.Set("scope", "")
	form.Set("client_id", "")
	form.Set("client_secret", "")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.buildURL("/auth/login", nil), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("client.Login: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	var tok domain.Token
	if err := c.send(ctx, req, &tok, mapLoginError); err != nil {
		return nil, fmt.Errorf("client.Login: %w", err)
	}
	return &tok, nil
}

// Signup registers a new account. The account is created active.
func (c *Client) Signup(ctx context.Context, loginID, nickname, password string) (*domain.User, error) {
	body := domain.SignupRequest{
		LoginID:  loginID,
		Nickname: nickname,
		Password: password,
		IsActive: true,
	}
	var u domain.User
	if err := c.post(ctx, "/auth/signup", body, &u); err != nil {
		return nil, fmt.Errorf("client.Signup: %w", err)
	}
	return &u, nil
}

// CheckLoginID asks whether loginID is still free.
func (c *Client) CheckLoginID(ctx context.Context, loginID string) (*domain.Availability, error) {
	var a domain.Availability
	if err := c.post(ctx, "/auth/check-login-id", map[string]string{"login_id": loginID}, &a); err != nil {
		return nil, fmt.Errorf("client.CheckLoginID: %w", err)
	}
	return &a, nil
}

// CheckNickname asks whether nickname is still free.
func (c *Client) CheckNickname(ctx context.Context, nickname string) (*domain.Availability, error) {
	var a domain.Availability
	if err := c.post(ctx, "/auth/check-nickname", map[string]string{"nickname": nickname}, &a); err != nil {
		return nil, fmt.Errorf("client.CheckNickname: %w", err)
	}
	return &a, nil
}

// --- Users ---

// GetMe returns the authenticated user's profile.
func (c *Client) GetMe(ctx context.Context) (*domain.User, error) {
	var u domain.User
	if err := c.get(ctx, "/users/me", nil, &u); err != nil {
		return nil, fmt.Errorf("client.GetMe: %w", err)
	}
	return &u, nil
}

// UpdateMe applies a partial profile update.
func (c *Client) UpdateMe(ctx context.Context, upd domain.UserUpdate) (*domain.User, error) {
	var u domain.User
	if err := c.Do(ctx, http.MethodPut, "/users/me", upd, nil, &u); err != nil {
		return nil, fmt.Errorf("client.UpdateMe: %w", err)
	}
	return &u, nil
}

// DeleteMe soft-deletes the account; the returned profile is inactive.
func (c *Client) DeleteMe(ctx context.Context) (*domain.User, error) {
	var u domain.User
	if err := c.Do(ctx, http.MethodDelete, "/users/me", nil, nil, &u); err != nil {
		return nil, fmt.Errorf("client.DeleteMe: %w", err)
	}
	return &u, nil
}

// --- Chat ---

// ListChatSessions returns a page of the user's conversation summaries.
func (c *Client) ListChatSessions(ctx context.Context, skip, limit int) ([]domain.ChatSession, error) {
	params := url.Values{}
	params.Set("skip", strconv.Itoa(skip))
	params.Set("limit", strconv.Itoa(limit))

	var sessions []domain.ChatSession
	if err := c.get(ctx, "/chat/sessions", params, &sessions); err != nil {
		return nil, fmt.Errorf("client.ListChatSessions: %w", err)
	}
	return sessions, nil
}

// GetChatSession fetches a single conversation with its transcript.
func (c *Client) GetChatSession(ctx context.Context, id string) (*domain.ChatSessionDetail, error) {
	var s domain.ChatSessionDetail
	if err := c.get(ctx, "/chat/sessions/"+url.PathEscape(id), nil, &s); err != nil {
		return nil, fmt.Errorf("client.GetChatSession: %w", err)
	}
	return &s, nil
}

// --- Meta ---

// ServerInfo reads the title and version from the backend's OpenAPI document.
func (c *Client) ServerInfo(ctx context.Context) (*domain.ServerInfo, error) {
	var doc struct {
		Info domain.ServerInfo `json:"info"`
	}
	if err := c.get(ctx, "/openapi.json", nil, &doc); err != nil {
		return nil, fmt.Errorf("client.ServerInfo: %w", err)
	}
	return &doc.Info, nil
}

// Request performs a JSON request and decodes the response into a T.
func Request[T any](ctx context.Context, c *Client, method, path string, body any, params url.Values) (T, error) {
	var out T
	if err := c.Do(ctx, method, path, body, params, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// Do sends a JSON request to path (relative to the API root) with optional
// query params and decodes a JSON response into out when out is non-nil.
func (c *Client) Do(ctx context.Context, method, path string, body any, params url.Values, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.buildURL(path, params), reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return c.send(ctx, req, out, mapError)
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, params, out)
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, nil, out)
}

// buildURL joins the API root and path with exactly one slash and appends params.
func (c *Client) buildURL(path string, params url.Values) string {
	u := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(params) > 0 {
		sep := "?"
		if strings.Contains(u, "?") {
			sep = "&"
		}
		u += sep + params.Encode()
	}
	return u
}

type errorMapper func(resp *http.Response, body []byte) *HTTPError

func (c *Client) send(ctx context.Context, req *http.Request, out any, mapErr errorMapper) error {
	if tok, ok := c.token(); ok && tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	reqID := uuid.NewString()
	req.Header.Set(RequestIDHeader, reqID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, ctxErr)
		}
		c.log.Debug("request failed", "method", req.Method, "path", req.URL.Path, "request_id", reqID, "error", err)
		return &NetworkError{URL: c.baseURL, Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	c.log.Debug("request done",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"request_id", reqID,
		"elapsed", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		if readErr != nil {
			respBody = nil
		}
		return mapErr(resp, respBody)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
