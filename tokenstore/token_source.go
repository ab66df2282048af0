package tokenstore

import (
	"context"

	apperrors "github.com/jrsteele09/journal-session/internal/errors"
	"golang.org/x/oauth2"
)

type storeTokenSource struct {
	ctx   context.Context
	store *Store
}

// TokenSource adapts the store to oauth2.TokenSource so the persisted access
// token can drive any oauth2-aware HTTP client. Each call reads the store.
func (s *Store) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &storeTokenSource{ctx: ctx, store: s}
}

func (ts *storeTokenSource) Token() (*oauth2.Token, error) {
	value, err := ts.store.GetToken(ts.ctx, AccessToken)
	if err != nil {
		return nil, err
	}
	if value == nil {
		return nil, apperrors.ErrTokenNotFound
	}
	return &oauth2.Token{AccessToken: *value, TokenType: "Bearer"}, nil
}
