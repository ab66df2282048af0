package session

import (
	"strings"

	"github.com/jrsteele09/journal-session/authapi"
)

// ExemptPaths lists the endpoints that are sent without a bearer token and are
// never refresh-retried: the login variants and the refresh endpoint itself.
type ExemptPaths struct {
	paths []string
}

func NewExemptPaths(paths ...string) *ExemptPaths {
	cleaned := make([]string, 0, len(paths))
	for _, p := range paths {
		if p = strings.TrimRight(p, "/"); p != "" {
			cleaned = append(cleaned, p)
		}
	}
	return &ExemptPaths{paths: cleaned}
}

func DefaultExemptPaths() *ExemptPaths {
	return NewExemptPaths(append(authapi.LoginRoutes(), authapi.RouteRefreshToken)...)
}

// Matches reports whether the request path targets an exempt endpoint. Matching
// is by suffix so a base URL carrying a path prefix still matches.
func (e *ExemptPaths) Matches(path string) bool {
	path = strings.TrimRight(path, "/")
	for _, p := range e.paths {
		if strings.HasSuffix(path, p) {
			return true
		}
	}
	return false
}
