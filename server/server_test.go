package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/journal-session/authapi"
	"github.com/jrsteele09/journal-session/authctx"
	"github.com/jrsteele09/journal-session/internal/config"
	apperrors "github.com/jrsteele09/journal-session/internal/errors"
	"github.com/jrsteele09/journal-session/journal"
	"github.com/jrsteele09/journal-session/server"
	"github.com/jrsteele09/journal-session/session"
	"github.com/jrsteele09/journal-session/token"
	refreshrepofake "github.com/jrsteele09/journal-session/token/refresh/repofake"
	"github.com/jrsteele09/journal-session/tokenstore"
	"github.com/jrsteele09/journal-session/tokenstore/memrepo"
	"github.com/jrsteele09/journal-session/users"
	fakeuserrepo "github.com/jrsteele09/journal-session/users/repofake"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

const demoPassword = "correct-horse"

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type backend struct {
	server *server.Server
	http   *httptest.Server
	clock  *testClock
}

func newBackend(t *testing.T, options ...server.Option) *backend {
	t.Helper()
	t.Setenv("DEMO_PASSWORD", demoPassword)
	t.Setenv("ENV", "DEV")

	clock := &testClock{now: time.Now()}
	s, err := server.New(config.New(), server.Repos{
		Users:         fakeuserrepo.NewFakeUserRepo(),
		RefreshTokens: refreshrepofake.NewFakeRefreshTokenRepo(),
	}, append([]server.Option{server.WithNowFunc(clock.Now)}, options...)...)
	require.NoError(t, err)

	ts := httptest.NewServer(s)
	t.Cleanup(ts.Close)
	return &backend{server: s, http: ts, clock: clock}
}

type recordingNavigator struct {
	mu     sync.Mutex
	routes []string
}

func (n *recordingNavigator) Navigate(_ context.Context, route string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.routes = append(n.routes, route)
}

func (n *recordingNavigator) Routes() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.routes...)
}

type client struct {
	manager *session.Manager
	api     *journal.Client
	auth    *authctx.Context
	nav     *recordingNavigator
}

func newClient(t *testing.T, b *backend, scope users.Role) *client {
	t.Helper()
	store := tokenstore.New(memrepo.New())
	t.Cleanup(func() { _ = store.Close() })

	manager := session.New(store, session.NewHTTPRefresher(b.http.URL, store))
	api := journal.New(b.http.URL, manager.Client())
	nav := &recordingNavigator{}
	ac := authctx.New(manager, api, nav, scope)
	ac.Mount()
	return &client{manager: manager, api: api, auth: ac, nav: nav}
}

func TestLoginPortals(t *testing.T) {
	ctx := context.Background()
	b := newBackend(t)

	tests := []struct {
		name   string
		portal users.Portal
		email  string
		pass   string
		wantOK bool
	}{
		{"admin through admin portal", users.PortalAdmin, "admin@journal.test", demoPassword, true},
		{"manager through admin portal", users.PortalAdmin, "manager@journal.test", demoPassword, true},
		{"frontdesk through admin portal", users.PortalAdmin, "frontdesk@journal.test", demoPassword, true},
		{"reviewer through reviewer portal", users.PortalReviewer, "reviewer@journal.test", demoPassword, true},
		{"author through author portal", users.PortalAuthor, "author@journal.test", demoPassword, true},
		{"author through admin portal", users.PortalAdmin, "author@journal.test", demoPassword, false},
		{"wrong password", users.PortalAdmin, "admin@journal.test", "nope", false},
		{"unknown user", users.PortalAuthor, "ghost@journal.test", demoPassword, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := journal.New(b.http.URL, b.http.Client())
			result, err := api.Login(ctx, tt.portal, tt.email, tt.pass)
			if !tt.wantOK {
				require.ErrorIs(t, err, apperrors.ErrUnauthorized)
				return
			}
			require.NoError(t, err)
			require.NotEmpty(t, result.AccessToken)
			require.NotNil(t, result.RefreshToken)
			require.Equal(t, tt.email, result.User.Email)
		})
	}
}

func TestExpiredAccessTokenIsRefreshedAndReplayed(t *testing.T) {
	ctx := context.Background()
	b := newBackend(t)
	c := newClient(t, b, users.RoleAuthor)

	_, err := c.auth.Login(ctx, users.RoleAuthor, "author@journal.test", demoPassword)
	require.NoError(t, err)
	first, err := c.manager.Store().GetToken(ctx, tokenstore.AccessToken)
	require.NoError(t, err)

	manuscripts, err := c.api.Manuscripts(ctx)
	require.NoError(t, err)
	require.Len(t, manuscripts, 2, "authors only see their own manuscripts")
	require.Zero(t, testutil.ToFloat64(c.manager.Metrics().Refreshes))

	b.clock.Advance(20 * time.Minute)

	manuscripts, err = c.api.Manuscripts(ctx)
	require.NoError(t, err)
	require.Len(t, manuscripts, 2)
	require.Equal(t, 1.0, testutil.ToFloat64(c.manager.Metrics().Refreshes))
	require.Equal(t, 1.0, testutil.ToFloat64(c.manager.Metrics().Replays))

	second, err := c.manager.Store().GetToken(ctx, tokenstore.AccessToken)
	require.NoError(t, err)
	require.NotEqual(t, *first, *second)
	require.True(t, c.auth.IsAuthenticated())
}

func TestExpiredRefreshTokenEndsSession(t *testing.T) {
	ctx := context.Background()
	b := newBackend(t)
	c := newClient(t, b, users.RoleManager)

	_, err := c.auth.Login(ctx, users.RoleManager, "manager@journal.test", demoPassword)
	require.NoError(t, err)

	b.clock.Advance(8 * 24 * time.Hour)

	_, err = c.api.Dashboard(ctx)
	require.ErrorIs(t, err, apperrors.ErrUnauthorized)
	require.False(t, c.auth.IsAuthenticated())
	require.Equal(t, []string{"/manager/login"}, c.nav.Routes())

	access, err := c.manager.Store().GetToken(ctx, tokenstore.AccessToken)
	require.NoError(t, err)
	require.Nil(t, access)
}

func TestRehydrateAfterRestart(t *testing.T) {
	ctx := context.Background()
	b := newBackend(t)

	repo := memrepo.New()
	store := tokenstore.New(repo)
	manager := session.New(store, session.NewHTTPRefresher(b.http.URL, store))
	ac := authctx.New(manager, journal.New(b.http.URL, manager.Client()), &recordingNavigator{}, users.RoleReviewer)
	_, err := ac.Login(ctx, users.RoleReviewer, "reviewer@journal.test", demoPassword)
	require.NoError(t, err)

	// A new context over the same persisted tokens, as after an app restart.
	restarted := authctx.New(manager, journal.New(b.http.URL, manager.Client()), &recordingNavigator{}, users.RoleReviewer)
	require.False(t, restarted.IsAuthenticated())

	b.clock.Advance(time.Hour)
	user, err := restarted.Rehydrate(ctx)
	require.NoError(t, err)
	require.Equal(t, users.RoleReviewer, user.Role)

	route, ok := restarted.Guard(users.RoleReviewer)
	require.True(t, ok, route)
}

func TestRoleRestrictions(t *testing.T) {
	ctx := context.Background()
	b := newBackend(t)

	author := newClient(t, b, users.RoleAuthor)
	_, err := author.auth.Login(ctx, users.RoleAuthor, "author@journal.test", demoPassword)
	require.NoError(t, err)

	_, err = author.api.Dashboard(ctx)
	require.ErrorIs(t, err, apperrors.ErrForbidden)
	_, err = author.api.ReviewAssignments(ctx)
	require.ErrorIs(t, err, apperrors.ErrForbidden)
	require.Zero(t, testutil.ToFloat64(author.manager.Metrics().Refreshes), "403 never refreshes")

	reviewer := newClient(t, b, users.RoleReviewer)
	_, err = reviewer.auth.Login(ctx, users.RoleReviewer, "reviewer@journal.test", demoPassword)
	require.NoError(t, err)
	assignments, err := reviewer.api.ReviewAssignments(ctx)
	require.NoError(t, err)
	require.Len(t, assignments, 2)

	admin := newClient(t, b, users.RoleAdmin)
	_, err = admin.auth.Login(ctx, users.RoleAdmin, "admin@journal.test", demoPassword)
	require.NoError(t, err)
	dashboard, err := admin.api.Dashboard(ctx)
	require.NoError(t, err)
	require.Equal(t, 4, dashboard.Submissions)
	require.Equal(t, 1, dashboard.PendingInvitations)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	ctx := context.Background()
	b := newBackend(t)
	c := newClient(t, b, users.RoleFrontdesk)

	result, err := journal.New(b.http.URL, b.http.Client()).Login(ctx, users.PortalAdmin, "frontdesk@journal.test", demoPassword)
	require.NoError(t, err)
	require.NoError(t, c.manager.Store().SaveTokens(ctx, result.AccessToken, result.RefreshToken))

	_, err = c.auth.Rehydrate(ctx)
	require.NoError(t, err)
	c.auth.Logout(ctx)
	require.Equal(t, []string{"/frontdesk/login"}, c.nav.Routes())

	req, err := http.NewRequest(http.MethodPost, b.http.URL+authapi.RouteRefreshToken, http.NoBody)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: *result.RefreshToken})
	resp, err := b.http.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// switchableTokens fails to sign while failing is set.
type switchableTokens struct {
	*token.Manager
	failing atomic.Bool
}

func (s *switchableTokens) CreateAccessToken(user *users.User) (*string, error) {
	if s.failing.Load() {
		return nil, errors.New("signing key unavailable")
	}
	return s.Manager.CreateAccessToken(user)
}

func postRefresh(t *testing.T, b *backend, refreshToken string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, b.http.URL+authapi.RouteRefreshToken, http.NoBody)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: refreshToken})
	resp, err := b.http.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestRefreshSigningFailureKeepsRefreshToken(t *testing.T) {
	ctx := context.Background()
	tokens := &switchableTokens{Manager: token.New([]byte("test-signing-secret"))}
	b := newBackend(t, server.WithAccessTokens(tokens))

	result, err := journal.New(b.http.URL, b.http.Client()).Login(ctx, users.PortalAuthor, "author@journal.test", demoPassword)
	require.NoError(t, err)
	require.NotNil(t, result.RefreshToken)

	tokens.failing.Store(true)
	resp := postRefresh(t, b, *result.RefreshToken)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.Empty(t, resp.Cookies())

	tokens.failing.Store(false)
	resp = postRefresh(t, b, *result.RefreshToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cookies := resp.Cookies()
	require.Len(t, cookies, 1)
	require.NotEqual(t, *result.RefreshToken, cookies[0].Value)

	// The presented token was consumed by the successful rotation.
	resp = postRefresh(t, b, *result.RefreshToken)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestBearerValidation(t *testing.T) {
	b := newBackend(t)

	tests := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"wrong scheme", "Basic abc"},
		{"forged", "Bearer eyJhbGciOiJIUzI1NiJ9.e30.c2lnbmF0dXJl"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, b.http.URL+authapi.RouteVerifyToken, nil)
			require.NoError(t, err)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := b.http.Client().Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			var body authapi.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			require.False(t, body.Success)
			require.NotEmpty(t, body.Message)
		})
	}
}

func TestCorsPreflight(t *testing.T) {
	b := newBackend(t)

	req, err := http.NewRequest(http.MethodOptions, b.http.URL+authapi.RouteRefreshToken, nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	resp, err := b.http.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
	require.Contains(t, resp.Header.Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestHealthAndMetrics(t *testing.T) {
	b := newBackend(t)

	resp, err := b.http.Client().Get(b.http.URL + authapi.RouteHealth)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, err = journal.New(b.http.URL, b.http.Client()).Login(context.Background(), users.PortalAdmin, "admin@journal.test", "nope")
	require.Error(t, err)

	resp, err = b.http.Client().Get(b.http.URL + authapi.RouteMetrics)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(body), `journal_backend_http_requests_total{method="POST",route="POST /auth/admin-login",status="401"} 1`), string(body))
}
