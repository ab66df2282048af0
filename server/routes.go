package server

import (
	"github.com/jrsteele09/journal-session/authapi"
	"github.com/jrsteele09/journal-session/users"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) initRoutes() {
	// LOGIN
	s.RegisterRouteHandler("POST "+authapi.RouteAdminLogin, ChainMiddleware(s.LoginHandler(users.PortalAdmin), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+authapi.RouteAuthorLogin, ChainMiddleware(s.LoginHandler(users.PortalAuthor), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+authapi.RouteReviewerLogin, ChainMiddleware(s.LoginHandler(users.PortalReviewer), s.APIMiddleware()...))

	// SESSION
	s.RegisterRouteHandler("POST "+authapi.RouteRefreshToken, ChainMiddleware(s.RefreshTokenHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+authapi.RouteLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+authapi.RouteVerifyToken, ChainMiddleware(s.VerifyTokenHandler(), s.APIMiddleware(s.RequireBearer())...))

	// EDITORIAL
	s.RegisterRouteHandler("GET "+authapi.RouteManuscripts, ChainMiddleware(s.ManuscriptsHandler(), s.APIMiddleware(s.RequireBearer())...))
	s.RegisterRouteHandler("GET "+authapi.RouteReviewAssignments, ChainMiddleware(s.ReviewAssignmentsHandler(),
		s.APIMiddleware(s.RequireBearer(), s.RequireRole(users.RoleAdmin, users.RoleManager, users.RoleFrontdesk, users.RoleReviewer))...))
	s.RegisterRouteHandler("GET "+authapi.RouteDashboard, ChainMiddleware(s.DashboardHandler(),
		s.APIMiddleware(s.RequireBearer(), s.RequireRole(users.RoleAdmin, users.RoleManager))...))

	// Preflight for every API route
	s.RegisterRouteHandler("OPTIONS /", ChainMiddleware(s.PreflightHandler(), s.APIMiddleware()...))

	// OPERATIONAL
	s.RegisterRouteFunc("GET "+authapi.RouteHealth, s.HealthHandler())
	s.RegisterRouteHandler("GET "+authapi.RouteMetrics, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
}
