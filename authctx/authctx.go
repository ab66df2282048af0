// Package authctx holds the signed-in user for one area of the journal and
// decides where the user goes when the session ends.
package authctx

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/jrsteele09/journal-session/authapi"
	apperrors "github.com/jrsteele09/journal-session/internal/errors"
	"github.com/jrsteele09/journal-session/journal"
	"github.com/jrsteele09/journal-session/session"
	"github.com/jrsteele09/journal-session/tokenstore"
	"github.com/jrsteele09/journal-session/users"
	"github.com/rs/zerolog/log"
)

// API is the part of the backend an auth context talks to.
type API interface {
	Login(ctx context.Context, portal users.Portal, email, password string) (*journal.LoginResult, error)
	Logout(ctx context.Context, refreshToken *string) error
	VerifyToken(ctx context.Context) (*users.User, error)
}

var _ session.FailureHandler = (*Context)(nil)

// Context is the in-memory session state. It is never persisted; only the
// tokens are.
type Context struct {
	manager   *session.Manager
	api       API
	navigator session.Navigator
	scope     users.Role

	lock     sync.RWMutex
	user     *users.User
	lastRole users.Role
	expiries int
}

// New creates a context for the area owned by scope. The scope decides the
// login page used when no user has signed in yet.
func New(manager *session.Manager, api API, navigator session.Navigator, scope users.Role) *Context {
	return &Context{
		manager:   manager,
		api:       api,
		navigator: navigator,
		scope:     scope,
	}
}

// Mount makes this context the one told about expired sessions, replacing
// whichever context was mounted before.
func (c *Context) Mount() {
	c.manager.SetFailureHandler(c)
}

// Login signs in through the role's portal and persists the tokens. When the
// tokens cannot be stored the login is abandoned and no user state is set.
func (c *Context) Login(ctx context.Context, role users.Role, email, password string) (*users.User, error) {
	if !role.Valid() {
		return nil, apperrors.Wrapf(apperrors.ErrUnsupported, "login as role %q", role)
	}

	result, err := c.api.Login(ctx, role.Portal(), email, password)
	if err != nil {
		return nil, err
	}
	if err := c.manager.Store().SaveTokens(ctx, result.AccessToken, result.RefreshToken); err != nil {
		return nil, apperrors.Wrapf(err, "Context.Login SaveTokens")
	}

	user := result.User
	c.setUser(&user)
	log.Info().Str("user", user.ID).Str("role", string(user.Role)).Msg("signed in")
	return &user, nil
}

// Logout ends the session. The backend call is best effort; the local tokens
// and user state are always cleared. When the session expires during the
// backend call, OnSessionExpired has already navigated and Logout does not.
func (c *Context) Logout(ctx context.Context) {
	expiries := c.expiryCount()
	route := LoginRoute(c.role())
	store := c.manager.Store()
	refresh, err := store.GetToken(ctx, tokenstore.RefreshToken)
	if err != nil {
		log.Warn().Err(err).Msg("reading refresh token for logout")
	}
	if err := c.api.Logout(ctx, refresh); err != nil {
		log.Warn().Err(err).Msg("backend logout failed, clearing local session anyway")
	}
	if err := store.RemoveTokens(ctx); err != nil {
		log.Warn().Err(err).Msg("removing tokens on logout")
	}

	c.clearUser()
	if c.expiryCount() != expiries {
		return
	}
	c.navigator.Navigate(ctx, route)
}

// Rehydrate restores the user from the persisted tokens, typically at start-up.
// An expired access token goes through the normal refresh path. When that
// refresh fails the error matches ErrSessionExpired.
func (c *Context) Rehydrate(ctx context.Context) (*users.User, error) {
	if !c.hasTokens(ctx) {
		c.clearUser()
		return nil, apperrors.ErrTokenNotFound
	}

	expiries := c.expiryCount()
	user, err := c.api.VerifyToken(ctx)
	if err != nil {
		if c.expiryCount() != expiries {
			return nil, fmt.Errorf("%w: %w", apperrors.ErrSessionExpired, err)
		}
		return nil, err
	}
	c.setUser(user)
	return user, nil
}

// OnSessionExpired clears the user and sends them to the login page of the
// role they last signed in as.
func (c *Context) OnSessionExpired(ctx context.Context) {
	route := LoginRoute(c.role())
	c.lock.Lock()
	c.user = nil
	c.expiries++
	c.lock.Unlock()
	log.Info().Str("route", route).Msg("session expired, returning to login")
	c.navigator.Navigate(ctx, route)
}

// Guard checks the current user against the roles allowed into an area. It
// returns the route to redirect to, and false, when access is refused. No
// roles means any signed-in user is allowed.
func (c *Context) Guard(allowed ...users.Role) (string, bool) {
	user := c.User()
	if user == nil {
		return LoginRoute(c.role()), false
	}
	if len(allowed) > 0 && !slices.Contains(allowed, user.Role) {
		return UnauthorizedRoute, false
	}
	return "", true
}

// User returns a copy of the signed-in user, or nil.
func (c *Context) User() *users.User {
	c.lock.RLock()
	defer c.lock.RUnlock()
	if c.user == nil {
		return nil
	}
	u := *c.user
	return &u
}

func (c *Context) IsAuthenticated() bool {
	return c.User() != nil
}

// TokenStatus describes the stored access token.
type TokenStatus struct {
	Present   bool
	Age       time.Duration
	Claims    *authapi.AccessClaims
	ExpiresAt *time.Time
}

// TokenStatus reports on the stored access token without calling the backend.
func (c *Context) TokenStatus(ctx context.Context) (*TokenStatus, error) {
	store := c.manager.Store()
	value, err := store.GetToken(ctx, tokenstore.AccessToken)
	if err != nil {
		return nil, err
	}
	status := &TokenStatus{}
	if value == nil {
		return status, nil
	}
	status.Present = true
	if status.Age, err = store.Age(ctx, tokenstore.AccessToken); err != nil {
		return nil, err
	}
	if claims, err := authapi.PeekClaims(*value); err == nil {
		status.Claims = claims
		if claims.ExpiresAt != nil {
			status.ExpiresAt = &claims.ExpiresAt.Time
		}
	}
	return status, nil
}

func (c *Context) hasTokens(ctx context.Context) bool {
	for _, tokenType := range tokenstore.TokenTypes() {
		value, err := c.manager.Store().GetToken(ctx, tokenType)
		if err == nil && value != nil {
			return true
		}
	}
	return false
}

// role is the last signed-in role, falling back to the context's scope.
func (c *Context) role() users.Role {
	c.lock.RLock()
	defer c.lock.RUnlock()
	if c.lastRole != "" {
		return c.lastRole
	}
	return c.scope
}

func (c *Context) setUser(u *users.User) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.user = u
	if u.Role != "" {
		c.lastRole = u.Role
	}
}

func (c *Context) expiryCount() int {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.expiries
}

func (c *Context) clearUser() {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.user = nil
}
