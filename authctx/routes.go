package authctx

import "github.com/jrsteele09/journal-session/users"

// UnauthorizedRoute is where an authenticated user lands when their role may
// not enter an area.
const UnauthorizedRoute = "/unauthorized"

var loginRoutes = map[users.Role]string{
	users.RoleAdmin:     "/admin/login",
	users.RoleManager:   "/manager/login",
	users.RoleFrontdesk: "/frontdesk/login",
	users.RoleReviewer:  "/reviewer/login",
	users.RoleAuthor:    "/login",
}

// LoginRoute returns the login page for role. Unknown roles get the author login.
func LoginRoute(role users.Role) string {
	if route, ok := loginRoutes[role]; ok {
		return route
	}
	return loginRoutes[users.RoleAuthor]
}
