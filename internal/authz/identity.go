package authz

import "strings"

// Identity is the verified caller of a single request.
type Identity struct {
	UserID string
	Email  string
	Role   Role
}

// Is reports whether userID names the caller. UUIDs compare case-insensitively.
func (id Identity) Is(userID string) bool {
	return id.UserID != "" && strings.EqualFold(id.UserID, userID)
}
