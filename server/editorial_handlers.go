package server

import (
	"net/http"
	"sync"

	"github.com/jrsteele09/journal-session/authapi"
	"github.com/jrsteele09/journal-session/users"
)

// catalog is the backend's in-memory editorial data.
type catalog struct {
	lock        sync.RWMutex
	manuscripts []authapi.Manuscript
	assignments []authapi.ReviewAssignment
}

func (c *catalog) manuscriptsFor(claims *authapi.AccessClaims) []authapi.Manuscript {
	c.lock.RLock()
	defer c.lock.RUnlock()

	out := make([]authapi.Manuscript, 0, len(c.manuscripts))
	for _, m := range c.manuscripts {
		if claims.Role == users.RoleAuthor && m.AuthorID != claims.Subject {
			continue
		}
		out = append(out, m)
	}
	return out
}

func (c *catalog) assignmentsFor(claims *authapi.AccessClaims) []authapi.ReviewAssignment {
	c.lock.RLock()
	defer c.lock.RUnlock()

	out := make([]authapi.ReviewAssignment, 0, len(c.assignments))
	for _, a := range c.assignments {
		if claims.Role == users.RoleReviewer && a.ReviewerID != claims.Subject {
			continue
		}
		out = append(out, a)
	}
	return out
}

func (c *catalog) dashboard() authapi.Dashboard {
	c.lock.RLock()
	defer c.lock.RUnlock()

	var d authapi.Dashboard
	d.Submissions = len(c.manuscripts)
	for _, m := range c.manuscripts {
		switch m.Status {
		case StatusUnderReview:
			d.UnderReview++
		case StatusAwaitingDecision:
			d.AwaitingDecision++
		case StatusPublished:
			d.Published++
		}
	}
	for _, a := range c.assignments {
		if a.Status == AssignmentInvited {
			d.PendingInvitations++
		}
	}
	return d
}

// ManuscriptsHandler lists manuscripts. Authors only see their own.
func (s *Server) ManuscriptsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := ClaimsFromContext(r.Context())
		data := s.catalog.manuscriptsFor(claims)
		writeJSON(w, http.StatusOK, authapi.ListResponse[authapi.Manuscript]{Success: true, Data: data, Total: len(data)})
	}
}

// ReviewAssignmentsHandler lists review assignments. Reviewers only see their own.
func (s *Server) ReviewAssignmentsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := ClaimsFromContext(r.Context())
		data := s.catalog.assignmentsFor(claims)
		writeJSON(w, http.StatusOK, authapi.ListResponse[authapi.ReviewAssignment]{Success: true, Data: data, Total: len(data)})
	}
}

func (s *Server) DashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, authapi.DashboardResponse{Success: true, Data: s.catalog.dashboard()})
	}
}
