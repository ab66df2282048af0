package fakeuserrepo_test

import (
	"testing"

	apperrors "github.com/jrsteele09/journal-session/internal/errors"
	"github.com/jrsteele09/journal-session/users"
	fakeuserrepo "github.com/jrsteele09/journal-session/users/repofake"
	"github.com/stretchr/testify/require"
)

func TestFakeUserRepo(t *testing.T) {
	repo := fakeuserrepo.NewFakeUserRepo()

	u := &users.User{Name: "Ada", Email: "Ada@Example.com", Role: users.RoleReviewer}
	require.NoError(t, repo.Upsert(u))
	require.NotEmpty(t, u.ID)

	t.Run("lookup is case insensitive on email", func(t *testing.T) {
		got, err := repo.GetByEmail("ada@example.com")
		require.NoError(t, err)
		require.Equal(t, u.ID, got.ID)
	})

	t.Run("get by id", func(t *testing.T) {
		got, err := repo.GetByID(u.ID)
		require.NoError(t, err)
		require.Equal(t, users.RoleReviewer, got.Role)
	})

	t.Run("list pages", func(t *testing.T) {
		require.NoError(t, repo.Upsert(&users.User{Name: "Bob", Email: "bob@example.com", Role: users.RoleAuthor}))
		list, err := repo.List(0, 1)
		require.NoError(t, err)
		require.Len(t, list, 1)
		list, err = repo.List(0, 0)
		require.NoError(t, err)
		require.Len(t, list, 2)
		list, err = repo.List(5, 1)
		require.NoError(t, err)
		require.Empty(t, list)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete("ada@example.com"))
		_, err := repo.GetByID(u.ID)
		require.ErrorIs(t, err, apperrors.ErrUserNotFound)
		require.ErrorIs(t, repo.Delete("ada@example.com"), apperrors.ErrUserNotFound)
	})
}
