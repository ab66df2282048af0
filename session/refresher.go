package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/journal-session/authapi"
	"github.com/jrsteele09/journal-session/internal/utils"
	"github.com/jrsteele09/journal-session/tokenstore"
)

// DefaultRefreshCookie is the cookie carrying the refresh credential.
const DefaultRefreshCookie = "refreshToken"

// HTTPRefresher renews the access token through POST /auth/refresh-token. The
// refresh credential travels as a cookie: the persisted refresh token is sent
// when there is one, and a rotated cookie in the answer is persisted.
type HTTPRefresher struct {
	url        string
	client     *http.Client
	store      *tokenstore.Store
	cookieName string
}

type RefresherOption func(*HTTPRefresher)

// WithHTTPClient sets the client used for the refresh call. It must not be a
// session managed client.
func WithHTTPClient(c *http.Client) RefresherOption {
	return func(r *HTTPRefresher) {
		r.client = c
	}
}

func WithCookieName(name string) RefresherOption {
	return func(r *HTTPRefresher) {
		r.cookieName = name
	}
}

func NewHTTPRefresher(baseURL string, store *tokenstore.Store, options ...RefresherOption) *HTTPRefresher {
	r := &HTTPRefresher{
		url:        strings.TrimRight(baseURL, "/") + authapi.RouteRefreshToken,
		store:      store,
		cookieName: DefaultRefreshCookie,
	}
	for _, opt := range options {
		opt(r)
	}
	if r.client == nil {
		r.client = &http.Client{Timeout: DefaultTimeout}
	}
	return r
}

func (r *HTTPRefresher) Refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create refresh request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if refresh, err := r.store.GetToken(ctx, tokenstore.RefreshToken); err == nil && refresh != nil {
		req.AddCookie(&http.Cookie{Name: r.cookieName, Value: *refresh})
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("refresh request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("refresh endpoint returned status %d", resp.StatusCode)
	}

	var body authapi.RefreshResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decoding refresh response: %w", err)
	}
	if !body.Success || body.AccessToken == "" {
		return errors.New("refresh response carries no access token")
	}

	var rotated *string
	for _, c := range resp.Cookies() {
		if c.Name == r.cookieName && c.Value != "" {
			rotated = utils.Ptr(c.Value)
		}
	}
	return r.store.SaveTokens(ctx, body.AccessToken, rotated)
}
