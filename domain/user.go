package domain

import (
	"strings"
	"time"
)

// Role gates what an authenticated user may change.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole accepts the canonical role names, case-insensitively.
func ParseRole(value string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(value))) {
	case RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	}
	return "", Invalidf("unknown role %q", value)
}

// Sentinel identities referenced from tasks, teams and the activity log.
const (
	DeletedUserID   = "deleted-user"
	DeletedUserName = "Deleted User"
	SystemUserID    = "system"
	SystemUserName  = "System"
)

// User represents an authenticated identity in the platform.
//
// Other records reference users by ID only, so a rename touches this record alone.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"password_hash,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Actor is the identity on whose behalf an operation runs.
type Actor struct {
	UserID string
	Role   Role
}

// SystemActor is used by scheduled maintenance jobs.
var SystemActor = Actor{UserID: SystemUserID, Role: RoleAdmin}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// FoldName normalizes names compared case-insensitively (usernames, emails, team names).
func FoldName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NormalizeUsername trims name and rejects names that cannot be told apart
// from an email on login or from a sentinel identity in the activity log.
func NormalizeUsername(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", Invalidf("username is required")
	}
	if strings.Contains(name, "@") {
		return "", Invalidf("username must not contain '@'")
	}
	switch FoldName(name) {
	case FoldName(DeletedUserID), FoldName(DeletedUserName), FoldName(SystemUserID), FoldName(SystemUserName):
		return "", Invalidf("username %q is reserved", name)
	}
	return name, nil
}
