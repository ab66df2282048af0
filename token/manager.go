// Package token issues and validates the backend's access tokens.
package token

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/journal-session/authapi"
	apperrors "github.com/jrsteele09/journal-session/internal/errors"
	"github.com/jrsteele09/journal-session/users"
	"github.com/pkg/errors"
)

type Manager struct {
	secret            []byte
	issuer            string
	accessTokenExpiry time.Duration
	nowFunc           func() time.Time
}

type ManagerOption func(*Manager)

func WithAccessTokenExpiry(expiry time.Duration) ManagerOption {
	return func(m *Manager) {
		m.accessTokenExpiry = expiry
	}
}

func WithNowFunc(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowFunc = now
	}
}

func WithIssuer(issuer string) ManagerOption {
	return func(m *Manager) {
		m.issuer = issuer
	}
}

// New creates a manager signing HS256 tokens with secret.
func New(secret []byte, options ...ManagerOption) *Manager {
	m := &Manager{secret: secret}
	for _, opt := range options {
		opt(m)
	}
	if m.accessTokenExpiry == 0 {
		m.accessTokenExpiry = 15 * time.Minute
	}
	if m.issuer == "" {
		m.issuer = "journal-backend"
	}
	if m.nowFunc == nil {
		m.nowFunc = time.Now
	}
	return m
}

func (m *Manager) AccessTokenExpiry() time.Duration {
	return m.accessTokenExpiry
}

func (m *Manager) CreateAccessToken(user *users.User) (*string, error) {
	now := m.nowFunc()
	claims := authapi.AccessClaims{
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTokenExpiry)),
			ID:        uuid.New().String(), // Unique token ID
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return nil, errors.Wrap(err, "Manager.CreateAccessToken SignedString")
	}
	return &signed, nil
}

// Validate checks the signature, issuer and expiry of a raw access token and
// returns its claims. Expired tokens yield ErrTokenExpired, anything else
// unacceptable yields ErrInvalidToken.
func (m *Manager) Validate(raw string) (*authapi.AccessClaims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, apperrors.ErrInvalidToken
	}

	claims := &authapi.AccessClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.nowFunc),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.Wrapf(apperrors.ErrTokenExpired, "Manager.Validate")
		}
		return nil, apperrors.Wrapf(apperrors.ErrInvalidToken, "Manager.Validate: %v", err)
	}
	if !claims.Role.Valid() {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidToken, "Manager.Validate role %q", claims.Role)
	}
	return claims, nil
}
