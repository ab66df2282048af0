package server

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/jrsteele09/journal-session/authapi"
	apperrors "github.com/jrsteele09/journal-session/internal/errors"
	"github.com/jrsteele09/journal-session/users"
	"github.com/rs/zerolog/log"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyClaims stores the validated access token claims
const ContextKeyClaims ContextKey = "claims"

// ClaimsFromContext returns the claims RequireBearer stored on the request.
func ClaimsFromContext(ctx context.Context) (*authapi.AccessClaims, bool) {
	claims, ok := ctx.Value(ContextKeyClaims).(*authapi.AccessClaims)
	return claims, ok
}

// RequireBearer validates the Bearer access token. Missing, malformed, expired
// or forged tokens all answer 401, which is what drives the client's refresh.
func (s *Server) RequireBearer() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeJSONError(w, "missing authorization header", http.StatusUnauthorized)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				writeJSONError(w, "invalid authorization header format", http.StatusUnauthorized)
				return
			}

			claims, err := s.tokens.Validate(parts[1])
			if err != nil {
				message := "invalid token"
				if apperrors.Is(err, apperrors.ErrTokenExpired) {
					message = "token expired"
				}
				log.Debug().Err(err).Str("path", r.URL.Path).Msg("rejected bearer token")
				writeJSONError(w, message, http.StatusUnauthorized)
				return
			}

			next(w, r.WithContext(context.WithValue(r.Context(), ContextKeyClaims, claims)))
		}
	}
}

// RequireRole lets through only the given roles. It must follow RequireBearer.
func (s *Server) RequireRole(roles ...users.Role) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeJSONError(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if !slices.Contains(roles, claims.Role) {
				writeJSONError(w, "insufficient role", http.StatusForbidden)
				return
			}
			next(w, r)
		}
	}
}
