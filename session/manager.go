// Package session keeps every outgoing request authenticated.
//
// A Manager attaches the stored access token to each request, and when the
// backend answers 401 it refreshes the token once (shared by every request that
// hit the 401 meanwhile) and replays the request. When the refresh fails the
// token store is purged and the registered FailureHandler is told.
package session

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	apperrors "github.com/jrsteele09/journal-session/internal/errors"
	"github.com/jrsteele09/journal-session/tokenstore"
	"github.com/rs/zerolog/log"
)

// DefaultTimeout bounds each call made through Manager.Client.
const DefaultTimeout = 10 * time.Second

// Refresher obtains a new access token and persists it.
type Refresher interface {
	Refresh(ctx context.Context) error
}

type RefresherFunc func(ctx context.Context) error

func (f RefresherFunc) Refresh(ctx context.Context) error {
	return f(ctx)
}

type Manager struct {
	store       *tokenstore.Store
	refresher   Refresher
	coordinator *Coordinator
	exempt      *ExemptPaths
	navigator   Navigator
	metrics     *Metrics
	base        http.RoundTripper
	timeout     time.Duration

	handlerLock sync.RWMutex
	handler     FailureHandler
}

type Option func(*Manager)

func WithExemptPaths(exempt *ExemptPaths) Option {
	return func(m *Manager) {
		m.exempt = exempt
	}
}

// WithNavigator sets where the user is sent when a session expires and no
// FailureHandler is registered.
func WithNavigator(n Navigator) Option {
	return func(m *Manager) {
		m.navigator = n
	}
}

func WithMetrics(metrics *Metrics) Option {
	return func(m *Manager) {
		m.metrics = metrics
	}
}

func WithBaseTransport(rt http.RoundTripper) Option {
	return func(m *Manager) {
		m.base = rt
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(m *Manager) {
		m.timeout = timeout
	}
}

func New(store *tokenstore.Store, refresher Refresher, options ...Option) *Manager {
	m := &Manager{
		store:       store,
		refresher:   refresher,
		coordinator: NewCoordinator(),
	}
	for _, opt := range options {
		opt(m)
	}
	if m.exempt == nil {
		m.exempt = DefaultExemptPaths()
	}
	if m.navigator == nil {
		m.navigator = logNavigator{}
	}
	if m.metrics == nil {
		m.metrics = NewMetrics(nil)
	}
	if m.base == nil {
		m.base = http.DefaultTransport
	}
	if m.timeout <= 0 {
		m.timeout = DefaultTimeout
	}
	return m
}

// Client returns an HTTP client whose requests go through the manager.
func (m *Manager) Client() *http.Client {
	return &http.Client{
		Timeout:   m.timeout,
		Transport: m.Transport(),
	}
}

// Transport returns the manager's round tripper, for callers that build their
// own http.Client.
func (m *Manager) Transport() http.RoundTripper {
	return &Transport{manager: m, base: m.base}
}

func (m *Manager) Store() *tokenstore.Store {
	return m.store
}

func (m *Manager) Coordinator() *Coordinator {
	return m.coordinator
}

func (m *Manager) Metrics() *Metrics {
	return m.metrics
}

// SetFailureHandler registers the handler told about unrecoverable sessions.
// Only one handler is held; the latest registration replaces any earlier one,
// and nil removes it.
func (m *Manager) SetFailureHandler(h FailureHandler) {
	m.handlerLock.Lock()
	defer m.handlerLock.Unlock()
	m.handler = h
}

func (m *Manager) failureHandler() FailureHandler {
	m.handlerLock.RLock()
	defer m.handlerLock.RUnlock()
	return m.handler
}

// Refresh renews the access token, sharing the refresh already in flight if
// there is one. On failure the session is expired before Refresh returns.
func (m *Manager) Refresh(ctx context.Context) error {
	return m.coordinator.Do(ctx, m.refreshAccessToken, func() {
		m.ExpireSession(ctx)
	})
}

// ExpireSession purges the token store, then hands over to the registered
// FailureHandler, or navigates to the application root when there is none.
// Repeated calls are harmless.
func (m *Manager) ExpireSession(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	if err := m.store.RemoveTokens(ctx); err != nil {
		log.Warn().Err(err).Msg("purging tokens after session expiry")
	}
	m.metrics.Expirations.Inc()
	log.Info().Msg("session expired")

	if h := m.failureHandler(); h != nil {
		h.OnSessionExpired(ctx)
		return
	}
	m.navigator.Navigate(ctx, RootRoute)
}

func (m *Manager) refreshAccessToken(ctx context.Context) error {
	m.metrics.Refreshes.Inc()
	log.Debug().Msg("refreshing access token")

	if err := m.refresher.Refresh(ctx); err != nil {
		m.metrics.RefreshFailures.Inc()
		log.Warn().Err(err).Msg("access token refresh failed")
		return fmt.Errorf("%w: %w", apperrors.ErrRefreshFailed, err)
	}
	log.Debug().Msg("access token refreshed")
	return nil
}
