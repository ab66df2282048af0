package users_test

import (
	"testing"

	"github.com/jrsteele09/journal-session/users"
	"github.com/stretchr/testify/require"
)

func TestRolePortal(t *testing.T) {
	tests := []struct {
		role   users.Role
		portal users.Portal
		staff  bool
	}{
		{users.RoleAdmin, users.PortalAdmin, true},
		{users.RoleManager, users.PortalAdmin, true},
		{users.RoleFrontdesk, users.PortalAdmin, true},
		{users.RoleReviewer, users.PortalReviewer, false},
		{users.RoleAuthor, users.PortalAuthor, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			require.Equal(t, tt.portal, tt.role.Portal())
			require.Equal(t, tt.staff, tt.role.IsStaff())
			require.True(t, tt.portal.Admits(tt.role))
		})
	}

	require.False(t, users.PortalAuthor.Admits(users.RoleReviewer))
	require.False(t, users.PortalAdmin.Admits(users.Role("editor")))
}

func TestParseRole(t *testing.T) {
	r, err := users.ParseRole(" Reviewer ")
	require.NoError(t, err)
	require.Equal(t, users.RoleReviewer, r)

	_, err = users.ParseRole("researcher")
	require.Error(t, err)
}

func TestPasswordHash(t *testing.T) {
	hash, err := users.HashPassword("Secr3tPass")
	require.NoError(t, err)

	u := &users.User{PasswordHash: hash}
	require.True(t, u.CheckPassword("Secr3tPass"))
	require.False(t, u.CheckPassword("wrong"))
}
