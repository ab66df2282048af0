package authapi

import "github.com/jrsteele09/journal-session/users"

// Route path constants shared by the journal backend and its clients
const (
	// Auth Routes - Login
	RouteAdminLogin    = "/auth/admin-login"
	RouteAuthorLogin   = "/auth/author-login"
	RouteReviewerLogin = "/auth/reviewer-login"

	// Auth Routes - Session
	RouteRefreshToken = "/auth/refresh-token"
	RouteLogout       = "/auth/logout"
	RouteVerifyToken  = "/auth/verify-token"

	// Editorial API Routes
	RouteManuscripts       = "/api/manuscripts"
	RouteReviewAssignments = "/api/reviews/assignments"
	RouteDashboard         = "/api/dashboard"

	// Operational Routes
	RouteHealth  = "/health"
	RouteMetrics = "/metrics"
)

// LoginRoute returns the login endpoint serving the given portal.
func LoginRoute(p users.Portal) string {
	switch p {
	case users.PortalAuthor:
		return RouteAuthorLogin
	case users.PortalReviewer:
		return RouteReviewerLogin
	default:
		return RouteAdminLogin
	}
}

// LoginRoutes returns every login endpoint.
func LoginRoutes() []string {
	return []string{RouteAdminLogin, RouteAuthorLogin, RouteReviewerLogin}
}
