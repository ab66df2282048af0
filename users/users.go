package users

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Role is the editorial role a user acts in. It decides which login portal the
// user signs in through and which area of the journal they land in.
type Role string

const (
	RoleAdmin     Role = "admin"     // Journal administrator
	RoleManager   Role = "manager"   // Managing editor
	RoleFrontdesk Role = "frontdesk" // Front desk, screens incoming submissions
	RoleReviewer  Role = "reviewer"  // Invited reviewer
	RoleAuthor    Role = "author"    // Submitting author
)

// Portal identifies one of the backend's login endpoints.
type Portal string

const (
	PortalAdmin    Portal = "admin"
	PortalAuthor   Portal = "author"
	PortalReviewer Portal = "reviewer"
)

var allRoles = []Role{RoleAdmin, RoleManager, RoleFrontdesk, RoleReviewer, RoleAuthor}

// Roles returns every known role.
func Roles() []Role {
	return append([]Role(nil), allRoles...)
}

func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

func (r Role) Valid() bool {
	for _, known := range allRoles {
		if r == known {
			return true
		}
	}
	return false
}

// IsStaff reports whether the role belongs to the editorial office.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleManager || r == RoleFrontdesk
}

// Portal returns the login portal for the role. Staff share the admin portal.
func (r Role) Portal() Portal {
	switch r {
	case RoleAuthor:
		return PortalAuthor
	case RoleReviewer:
		return PortalReviewer
	default:
		return PortalAdmin
	}
}

// Admits reports whether a user holding role may sign in through the portal.
func (p Portal) Admits(role Role) bool {
	return role.Valid() && role.Portal() == p
}

type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         Role   `json:"role"`
	PasswordHash string `json:"-"` // never serialize
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// CheckPassword checks a password against the user's stored hash
func (u *User) CheckPassword(password string) bool {
	return CheckPasswordHash(password, u.PasswordHash)
}
