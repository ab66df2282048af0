package journal_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/journal-session/authapi"
	apperrors "github.com/jrsteele09/journal-session/internal/errors"
	"github.com/jrsteele09/journal-session/journal"
	"github.com/jrsteele09/journal-session/users"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	var got authapi.LoginRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, authapi.RouteReviewerLogin, r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		http.SetCookie(w, &http.Cookie{Name: journal.DefaultRefreshCookie, Value: "ref1", HttpOnly: true})
		_ = json.NewEncoder(w).Encode(authapi.LoginResponse{
			Success:     true,
			AccessToken: "tok1",
			User:        users.User{ID: "u1", Email: "rev@journal.test", Role: users.RoleReviewer},
		})
	}))
	defer server.Close()

	client := journal.New(server.URL, server.Client())
	result, err := client.Login(context.Background(), users.PortalReviewer, "rev@journal.test", "secret")
	require.NoError(t, err)
	require.Equal(t, "tok1", result.AccessToken)
	require.Equal(t, users.RoleReviewer, result.User.Role)
	require.NotNil(t, result.RefreshToken)
	require.Equal(t, "ref1", *result.RefreshToken)
	require.Equal(t, authapi.LoginRequest{Email: "rev@journal.test", Password: "secret"}, got)
}

func TestLoginRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(authapi.ErrorResponse{Message: "invalid credentials"})
	}))
	defer server.Close()

	_, err := journal.New(server.URL, server.Client()).Login(context.Background(), users.PortalAdmin, "a@b.c", "nope")
	require.ErrorIs(t, err, apperrors.ErrUnauthorized)

	var apiErr *journal.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "invalid credentials", apiErr.Message)
}

func TestEditorialEndpoints(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+authapi.RouteManuscripts, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(authapi.ListResponse[authapi.Manuscript]{
			Success: true,
			Data:    []authapi.Manuscript{{ID: "m1", Title: "Gradient Descent in Peer Review"}},
			Total:   1,
		})
	})
	mux.HandleFunc("GET "+authapi.RouteReviewAssignments, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(authapi.ListResponse[authapi.ReviewAssignment]{Success: true})
	})
	mux.HandleFunc("GET "+authapi.RouteDashboard, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(authapi.ErrorResponse{Message: "staff only"})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	ctx := context.Background()
	client := journal.New(server.URL, server.Client())

	manuscripts, err := client.Manuscripts(ctx)
	require.NoError(t, err)
	require.Len(t, manuscripts, 1)
	require.Equal(t, "m1", manuscripts[0].ID)

	assignments, err := client.ReviewAssignments(ctx)
	require.NoError(t, err)
	require.Empty(t, assignments)

	_, err = client.Dashboard(ctx)
	require.ErrorIs(t, err, apperrors.ErrForbidden)
	require.NotErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestLogoutSendsRefreshCookie(t *testing.T) {
	var cookie string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, authapi.RouteLogout, r.URL.Path)
		if c, err := r.Cookie(journal.DefaultRefreshCookie); err == nil {
			cookie = c.Value
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	ref := "ref1"
	require.NoError(t, journal.New(server.URL, server.Client()).Logout(context.Background(), &ref))
	require.Equal(t, "ref1", cookie)
}
