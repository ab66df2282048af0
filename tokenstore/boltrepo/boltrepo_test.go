package boltrepo_test

import (
	"context"
	"path/filepath"
	"testing"

	apperrors "github.com/jrsteele09/journal-session/internal/errors"
	"github.com/jrsteele09/journal-session/internal/utils"
	"github.com/jrsteele09/journal-session/tokenstore"
	"github.com/jrsteele09/journal-session/tokenstore/boltrepo"
	"github.com/stretchr/testify/require"
)

func TestBoltRepo(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "tokens.db")

	repo, err := boltrepo.NewFromFile(path)
	require.NoError(t, err)

	t.Run("missing record", func(t *testing.T) {
		_, err := repo.Get(ctx, tokenstore.AccessToken)
		require.ErrorIs(t, err, apperrors.ErrTokenNotFound)
	})

	t.Run("put get", func(t *testing.T) {
		require.NoError(t, repo.Put(ctx,
			tokenstore.Record{ID: tokenstore.AccessToken, Value: "tok1", Timestamp: 42},
			tokenstore.Record{ID: tokenstore.RefreshToken, Value: "ref1", Timestamp: 42},
		))
		rec, err := repo.Get(ctx, tokenstore.AccessToken)
		require.NoError(t, err)
		require.Equal(t, "tok1", rec.Value)
		require.Equal(t, int64(42), rec.Timestamp)
		require.Equal(t, tokenstore.AccessToken, rec.ID)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, tokenstore.TokenTypes()...))
		require.NoError(t, repo.Delete(ctx, tokenstore.TokenTypes()...))
		_, err := repo.Get(ctx, tokenstore.RefreshToken)
		require.ErrorIs(t, err, apperrors.ErrTokenNotFound)
	})

	require.NoError(t, repo.Close())
}

func TestBoltRepoSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tokens.db")

	repo, err := boltrepo.NewFromFile(path)
	require.NoError(t, err)
	store := tokenstore.New(repo)
	require.NoError(t, store.SaveTokens(ctx, "tok1", utils.Ptr("ref1")))
	require.NoError(t, store.Close())

	repo, err = boltrepo.NewFromFile(path)
	require.NoError(t, err)
	store = tokenstore.New(repo)
	defer store.Close()

	got, err := store.GetToken(ctx, tokenstore.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "tok1", *got)
}
