package models

import "time"

// Session is the identity decoded from an access token for the lifetime of one request.
// It is the only input the authorization rules trust; nothing is re-read from storage.
type Session struct {
	UserID   string
	Email    string
	Role     Role
	IssuedAt time.Time
}

func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

func (s Session) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if s.Role == r {
			return true
		}
	}
	return false
}
