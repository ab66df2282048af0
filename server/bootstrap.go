package server

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/journal-session/authapi"
	"github.com/jrsteele09/journal-session/internal/utils"
	"github.com/jrsteele09/journal-session/users"
	"github.com/rs/zerolog/log"
)

// Manuscript and assignment states of the seeded catalog.
const (
	StatusSubmitted        = "submitted"
	StatusUnderReview      = "under_review"
	StatusAwaitingDecision = "awaiting_decision"
	StatusPublished        = "published"

	AssignmentInvited   = "invited"
	AssignmentAccepted  = "accepted"
	AssignmentCompleted = "completed"
)

// InitialiseSystem seeds one demo account per role and a small editorial
// catalog. Existing accounts are left untouched.
func (s *Server) InitialiseSystem(_ context.Context) error {
	password := s.config.GetDemoPassword()
	generated := false
	if password == "" {
		var err error
		if password, err = generatePassword(); err != nil {
			return fmt.Errorf("failed to generate demo password: %w", err)
		}
		generated = true
	}

	domain := emailDomain(s.config.GetBaseURL())
	accounts := make(map[users.Role]*users.User, len(users.Roles()))
	created := 0
	for _, role := range users.Roles() {
		email := fmt.Sprintf("%s@%s", role, domain)
		if existing, err := s.repos.Users.GetByEmail(email); err == nil {
			accounts[role] = existing
			continue
		}

		hash, err := users.HashPassword(password)
		if err != nil {
			return fmt.Errorf("failed to hash demo password: %w", err)
		}
		user := &users.User{
			ID:           uuid.New().String(),
			Name:         demoName(role),
			Email:        email,
			Role:         role,
			PasswordHash: hash,
		}
		if err := s.repos.Users.Upsert(user); err != nil {
			return fmt.Errorf("failed to seed %s account: %w", role, err)
		}
		accounts[role] = user
		created++
	}

	if created > 0 {
		event := log.Info().Int("accounts", created).Str("domain", domain)
		if generated {
			event = event.Str("password", password)
		}
		event.Msg("seeded demo accounts")
	}

	s.catalog = seedCatalog(accounts[users.RoleAuthor].ID, accounts[users.RoleReviewer].ID, s.nowFunc())
	return nil
}

func seedCatalog(authorID, reviewerID string, now time.Time) *catalog {
	day := now.AddDate(0, 0, -1)
	return &catalog{
		manuscripts: []authapi.Manuscript{
			{ID: "ms-1001", Title: "Consensus Under Partial Synchrony", AuthorID: authorID, Status: StatusUnderReview, SubmittedAt: day.AddDate(0, 0, -30)},
			{ID: "ms-1002", Title: "Reviewer Agreement in Double-Blind Venues", AuthorID: authorID, Status: StatusAwaitingDecision, SubmittedAt: day.AddDate(0, 0, -60)},
			{ID: "ms-1003", Title: "A Survey of Citation Graph Embeddings", AuthorID: "external-author", Status: StatusPublished, SubmittedAt: day.AddDate(0, 0, -120)},
			{ID: "ms-1004", Title: "Open Peer Review at Scale", AuthorID: "external-author", Status: StatusSubmitted, SubmittedAt: day},
		},
		assignments: []authapi.ReviewAssignment{
			{ID: "ra-1", ManuscriptID: "ms-1001", ReviewerID: reviewerID, ReviewType: "human", Status: AssignmentAccepted, DueAt: utils.Ptr(day.AddDate(0, 0, 14))},
			{ID: "ra-2", ManuscriptID: "ms-1001", ReviewerID: "ai-reviewer", ReviewType: "ai", Status: AssignmentCompleted, Score: utils.Ptr(7.5)},
			{ID: "ra-3", ManuscriptID: "ms-1002", ReviewerID: reviewerID, ReviewType: "reconciliation", Status: AssignmentInvited},
		},
	}
}

func demoName(role users.Role) string {
	return "Demo " + strings.ToUpper(string(role[:1])) + string(role[1:])
}

// emailDomain derives the demo account domain from the base URL host.
func emailDomain(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Hostname() == "" || u.Hostname() == "localhost" {
		return "journal.test"
	}
	return u.Hostname()
}

func generatePassword() (string, error) {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
