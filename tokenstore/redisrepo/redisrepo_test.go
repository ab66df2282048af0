package redisrepo_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/journal-session/internal/errors"
	"github.com/jrsteele09/journal-session/tokenstore"
	"github.com/jrsteele09/journal-session/tokenstore/redisrepo"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *redisrepo.Repo {
	t.Helper()
	addr := os.Getenv("JOURNAL_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("JOURNAL_TEST_REDIS_ADDR not set; skipping Redis tests")
	}

	repo, err := redisrepo.Dial(context.Background(), addr, os.Getenv("JOURNAL_TEST_REDIS_PASSWORD"),
		redisrepo.WithPrefix("journal:test:"+uuid.NewString()+":"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = repo.Delete(context.Background(), tokenstore.TokenTypes()...)
		_ = repo.Close()
	})
	return repo
}

func TestRedisRepo(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	_, err := repo.Get(ctx, tokenstore.AccessToken)
	require.ErrorIs(t, err, apperrors.ErrTokenNotFound)

	require.NoError(t, repo.Put(ctx,
		tokenstore.Record{ID: tokenstore.AccessToken, Value: "tok1", Timestamp: 7},
		tokenstore.Record{ID: tokenstore.RefreshToken, Value: "ref1", Timestamp: 7},
	))

	rec, err := repo.Get(ctx, tokenstore.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, "ref1", rec.Value)

	require.NoError(t, repo.Delete(ctx, tokenstore.TokenTypes()...))
	require.NoError(t, repo.Delete(ctx, tokenstore.TokenTypes()...))
	_, err = repo.Get(ctx, tokenstore.AccessToken)
	require.ErrorIs(t, err, apperrors.ErrTokenNotFound)
}
