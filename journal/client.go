// Package journal is the client for the journal backend's auth and editorial API.
package journal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/journal-session/authapi"
	apperrors "github.com/jrsteele09/journal-session/internal/errors"
	"github.com/jrsteele09/journal-session/users"
)

// DefaultRefreshCookie is the cookie the backend sets on login.
const DefaultRefreshCookie = "refreshToken"

// APIError is a non-2xx answer from the backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend error (%d): %s", e.StatusCode, e.Message)
}

// Is lets callers match 401 and 403 answers against the shared sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case apperrors.ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case apperrors.ErrForbidden:
		return e.StatusCode == http.StatusForbidden
	}
	return false
}

// Client calls the backend through an *http.Client, normally one returned by
// session.Manager.Client so that tokens are attached and refreshed.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cookieName string
}

type Option func(*Client)

func WithRefreshCookie(name string) Option {
	return func(c *Client) {
		c.cookieName = name
	}
}

func New(baseURL string, httpClient *http.Client, options ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		cookieName: DefaultRefreshCookie,
	}
	for _, opt := range options {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return c
}

// LoginResult is a successful login: the response body plus the refresh token
// the backend set as a cookie, when it set one.
type LoginResult struct {
	authapi.LoginResponse
	RefreshToken *string
}

// Login authenticates against the login endpoint of the given portal.
func (c *Client) Login(ctx context.Context, portal users.Portal, email, password string) (*LoginResult, error) {
	payload, err := json.Marshal(authapi.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("failed to encode login request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, authapi.LoginRoute(portal), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result LoginResult
	if err := decode(resp, &result.LoginResponse); err != nil {
		return nil, err
	}
	if !result.Success || result.AccessToken == "" {
		return nil, errors.New("login response carries no access token")
	}
	for _, cookie := range resp.Cookies() {
		if cookie.Name == c.cookieName && cookie.Value != "" {
			value := cookie.Value
			result.RefreshToken = &value
		}
	}
	return &result, nil
}

// Logout tells the backend to revoke the refresh token.
func (c *Client) Logout(ctx context.Context, refreshToken *string) error {
	req, err := c.newRequest(ctx, http.MethodPost, authapi.RouteLogout, nil)
	if err != nil {
		return err
	}
	if refreshToken != nil {
		req.AddCookie(&http.Cookie{Name: c.cookieName, Value: *refreshToken})
	}
	resp, err := c.send(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decode(resp, nil)
}

// VerifyToken returns the user the stored access token belongs to.
func (c *Client) VerifyToken(ctx context.Context) (*users.User, error) {
	var body authapi.VerifyResponse
	if err := c.getJSON(ctx, authapi.RouteVerifyToken, &body); err != nil {
		return nil, err
	}
	if !body.Success {
		return nil, &APIError{StatusCode: http.StatusUnauthorized, Message: "token not verified"}
	}
	return &body.User, nil
}

func (c *Client) Manuscripts(ctx context.Context) ([]authapi.Manuscript, error) {
	var body authapi.ListResponse[authapi.Manuscript]
	if err := c.getJSON(ctx, authapi.RouteManuscripts, &body); err != nil {
		return nil, err
	}
	return body.Data, nil
}

func (c *Client) ReviewAssignments(ctx context.Context) ([]authapi.ReviewAssignment, error) {
	var body authapi.ListResponse[authapi.ReviewAssignment]
	if err := c.getJSON(ctx, authapi.RouteReviewAssignments, &body); err != nil {
		return nil, err
	}
	return body.Data, nil
}

func (c *Client) Dashboard(ctx context.Context) (*authapi.Dashboard, error) {
	var body authapi.DashboardResponse
	if err := c.getJSON(ctx, authapi.RouteDashboard, &body); err != nil {
		return nil, err
	}
	return &body.Data, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decode(resp, out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	return c.send(ctx, req)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) send(ctx context.Context, req *http.Request) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, fmt.Errorf("request canceled: %w", err)
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("request timed out: %w", err)
		}
		return nil, fmt.Errorf("cannot connect to backend at %s: %w", c.baseURL, err)
	}
	return resp, nil
}

// decode turns non-2xx answers into *APIError and otherwise decodes the body
// into out, when out is not nil.
func decode(resp *http.Response, out any) error {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var errResp authapi.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil {
			apiErr.Message = errResp.Message
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("invalid response from backend: %w", err)
	}
	return nil
}
