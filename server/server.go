// Package server is the development journal backend: the auth endpoints the
// session client depends on plus a few editorial read endpoints.
package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/journal-session/authapi"
	"github.com/jrsteele09/journal-session/internal/config"
	"github.com/jrsteele09/journal-session/token"
	"github.com/jrsteele09/journal-session/token/refresh"
	"github.com/jrsteele09/journal-session/users"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// Repos are the stores the backend persists to.
type Repos struct {
	Users         users.UserRepo
	RefreshTokens refresh.Repo
}

// AccessTokens issues and validates access tokens. token.Manager is the
// implementation used unless WithAccessTokens replaces it.
type AccessTokens interface {
	CreateAccessToken(user *users.User) (*string, error)
	Validate(raw string) (*authapi.AccessClaims, error)
}

type Server struct {
	env      string // Environment (e.g., "DEV", "PROD")
	mux      *http.ServeMux
	routes   []string
	config   config.Config
	repos    Repos
	tokens   AccessTokens
	refresh  *refresh.Manager
	catalog  *catalog
	nowFunc  func() time.Time
	registry *prometheus.Registry
	requests *prometheus.CounterVec
}

type Option func(*Server)

// WithNowFunc sets the clock used for issuing and validating tokens.
func WithNowFunc(now func() time.Time) Option {
	return func(s *Server) {
		s.nowFunc = now
	}
}

// WithAccessTokens replaces the signing-secret based token manager.
func WithAccessTokens(tokens AccessTokens) Option {
	return func(s *Server) {
		s.tokens = tokens
	}
}

// WithRegistry sets the registry served on /metrics.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) {
		s.registry = reg
	}
}

func New(cfg config.Config, repos Repos, options ...Option) (*Server, error) {
	s := &Server{
		env:    cfg.GetEnv(),
		mux:    http.NewServeMux(),
		config: cfg,
		repos:  repos,
	}
	for _, opt := range options {
		opt(s)
	}
	if s.nowFunc == nil {
		s.nowFunc = time.Now
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}

	if s.tokens == nil {
		s.tokens = token.New([]byte(cfg.GetSigningSecret()),
			token.WithIssuer(cfg.GetIssuer()),
			token.WithAccessTokenExpiry(cfg.GetAccessTokenExpiry()),
			token.WithNowFunc(s.nowFunc),
		)
	}
	s.refresh = refresh.NewManager(repos.RefreshTokens, cfg, refresh.WithNowFunc(s.nowFunc))
	s.requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "journal",
		Subsystem: "backend",
		Name:      "http_requests_total",
		Help:      "HTTP requests served, by route and status.",
	}, []string{"method", "route", "status"})
	if err := s.registry.Register(s.requests); err != nil {
		return nil, fmt.Errorf("[Server New] failed to register metrics: %w", err)
	}

	if err := s.InitialiseSystem(context.Background()); err != nil {
		return nil, fmt.Errorf("[Server New] failed to initialise the system: %w", err)
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Registry returns the registry served on /metrics, so callers can add their
// own collectors.
func (s *Server) Registry() *prometheus.Registry {
	return s.registry
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	color, ok := methodColors[method]
	if !ok {
		color = Gray
	}
	log.Debug().Msgf("[%s%-7s%s] %s", color, method, ResetColor, path)
}
