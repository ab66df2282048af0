package authapi

import (
	"time"

	"github.com/jrsteele09/journal-session/users"
)

// LoginRequest is the body of every login endpoint.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	// Success is always true on a 200 response.
	Success bool `json:"success"`

	// AccessToken is the bearer credential for subsequent requests.
	// Usage: "Authorization: Bearer <accessToken>"
	// Lifespan: short-lived, renewed through the refresh endpoint
	AccessToken string `json:"accessToken"`

	// User is the authenticated identity.
	User users.User `json:"user"`
}

// RefreshResponse is returned by the refresh endpoint. The refresh credential
// itself travels in an HttpOnly cookie, never in the body.
type RefreshResponse struct {
	Success     bool   `json:"success"`
	AccessToken string `json:"accessToken"`
}

// VerifyResponse is returned by the verify-token endpoint.
type VerifyResponse struct {
	Success bool       `json:"success"`
	User    users.User `json:"user"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Manuscript is a submission as listed by the editorial API.
type Manuscript struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	AuthorID    string    `json:"authorId"`
	Status      string    `json:"status"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// ReviewAssignment links a reviewer to a manuscript for one review pass.
type ReviewAssignment struct {
	ID           string     `json:"id"`
	ManuscriptID string     `json:"manuscriptId"`
	ReviewerID   string     `json:"reviewerId"`
	ReviewType   string     `json:"reviewType"` // ai, human or reconciliation
	Status       string     `json:"status"`
	Score        *float64   `json:"score,omitempty"`
	DueAt        *time.Time `json:"dueAt,omitempty"`
}

// Dashboard is the administrative summary shown to staff.
type Dashboard struct {
	Submissions        int `json:"submissions"`
	UnderReview        int `json:"underReview"`
	AwaitingDecision   int `json:"awaitingDecision"`
	Published          int `json:"published"`
	PendingInvitations int `json:"pendingInvitations"`
}

// ListResponse wraps list payloads.
type ListResponse[T any] struct {
	Success bool `json:"success"`
	Data    []T  `json:"data"`
	Total   int  `json:"total"`
}

// DashboardResponse wraps the dashboard payload.
type DashboardResponse struct {
	Success bool      `json:"success"`
	Data    Dashboard `json:"data"`
}
