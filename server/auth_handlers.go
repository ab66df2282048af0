package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jrsteele09/journal-session/authapi"
	apperrors "github.com/jrsteele09/journal-session/internal/errors"
	"github.com/jrsteele09/journal-session/users"
	"github.com/rs/zerolog/log"
)

const contentTypeJSON = "application/json; charset=utf-8"

// LoginHandler authenticates against one portal. A user whose role belongs to
// another portal is refused the same way as a wrong password.
func (s *Server) LoginHandler(portal users.Portal) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req authapi.LoginRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
			writeJSONError(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Email) == "" || req.Password == "" {
			writeJSONError(w, "email and password are required", http.StatusBadRequest)
			return
		}

		user, err := s.repos.Users.GetByEmail(req.Email)
		if err != nil || !user.CheckPassword(req.Password) {
			log.Info().Str("portal", string(portal)).Str("email", req.Email).Msg("login rejected")
			writeJSONError(w, apperrors.ErrInvalidCredentials.Error(), http.StatusUnauthorized)
			return
		}
		if !portal.Admits(user.Role) {
			log.Info().Str("portal", string(portal)).Str("role", string(user.Role)).Msg("login through wrong portal")
			writeJSONError(w, apperrors.ErrInvalidCredentials.Error(), http.StatusUnauthorized)
			return
		}

		accessToken, ok := s.issueTokens(w, user)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, authapi.LoginResponse{
			Success:     true,
			AccessToken: accessToken,
			User:        *user,
		})
	}
}

// RefreshTokenHandler rotates the refresh cookie and answers a new access token.
// The access token is minted before the presented refresh token is consumed, so
// a signing failure leaves the client's cookie usable.
func (s *Server) RefreshTokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(s.config.GetRefreshCookieName())
		if err != nil || cookie.Value == "" {
			writeJSONError(w, "missing refresh token", http.StatusUnauthorized)
			return
		}

		stored, err := s.refresh.Get(cookie.Value)
		if err != nil || stored == nil {
			s.clearRefreshCookie(w)
			writeJSONError(w, apperrors.ErrInvalidRefreshToken.Error(), http.StatusUnauthorized)
			return
		}
		user, err := s.repos.Users.GetByID(stored.UserID)
		if err != nil {
			s.refresh.Revoke(cookie.Value)
			s.clearRefreshCookie(w)
			writeJSONError(w, apperrors.ErrUserNotFound.Error(), http.StatusUnauthorized)
			return
		}

		accessToken, err := s.tokens.CreateAccessToken(user)
		if err != nil {
			log.Error().Err(err).Msg("creating access token on refresh")
			writeJSONError(w, apperrors.ErrInternal.Error(), http.StatusInternalServerError)
			return
		}

		_, rotated, err := s.refresh.Rotate(cookie.Value)
		if err != nil {
			s.clearRefreshCookie(w)
			writeJSONError(w, err.Error(), http.StatusUnauthorized)
			return
		}
		s.setRefreshCookie(w, *rotated)
		writeJSON(w, http.StatusOK, authapi.RefreshResponse{Success: true, AccessToken: *accessToken})
	}
}

// LogoutHandler revokes the refresh cookie. It succeeds without one.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(s.config.GetRefreshCookieName()); err == nil {
			s.refresh.Revoke(cookie.Value)
		}
		s.clearRefreshCookie(w)
		writeJSON(w, http.StatusOK, authapi.ErrorResponse{Success: true, Message: "logged out"})
	}
}

func (s *Server) VerifyTokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := ClaimsFromContext(r.Context())
		user, err := s.repos.Users.GetByID(claims.Subject)
		if err != nil {
			writeJSONError(w, apperrors.ErrUserNotFound.Error(), http.StatusUnauthorized)
			return
		}
		writeJSON(w, http.StatusOK, authapi.VerifyResponse{Success: true, User: *user})
	}
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func (s *Server) PreflightHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}
}

// issueTokens creates both tokens for user and sets the refresh cookie. On
// failure it has already written the error response.
func (s *Server) issueTokens(w http.ResponseWriter, user *users.User) (string, bool) {
	accessToken, err := s.tokens.CreateAccessToken(user)
	if err != nil {
		log.Error().Err(err).Msg("creating access token")
		writeJSONError(w, apperrors.ErrInternal.Error(), http.StatusInternalServerError)
		return "", false
	}
	refreshToken, err := s.refresh.Create(user.ID)
	if err != nil {
		log.Error().Err(err).Msg("creating refresh token")
		writeJSONError(w, apperrors.ErrInternal.Error(), http.StatusInternalServerError)
		return "", false
	}
	s.setRefreshCookie(w, *refreshToken)
	return *accessToken, true
}

func (s *Server) setRefreshCookie(w http.ResponseWriter, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.config.GetRefreshCookieName(),
		Value:    value,
		Path:     "/auth",
		MaxAge:   int(s.config.GetRefreshTokenExpiry().Seconds()),
		HttpOnly: true,
		Secure:   s.env != "DEV",
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.config.GetRefreshCookieName(),
		Value:    "",
		Path:     "/auth",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.env != "DEV",
		SameSite: http.SameSiteLaxMode,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, statusCode, authapi.ErrorResponse{Success: false, Message: message})
}
