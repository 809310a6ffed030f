package user

import (
	"errors"
	"time"
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	RoleID       string    `json:"roleId"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Summary is the public view of a user embedded in responses.
type Summary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (u User) Summary() Summary {
	return Summary{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
)

type CreateParams struct {
	Name         string
	Email        string
	PasswordHash string
	RoleID       string
}

// UpdateParams leaves a field untouched when it is nil.
type UpdateParams struct {
	Name   *string
	Email  *string
	RoleID *string
}

func (p UpdateParams) Empty() bool {
	return p.Name == nil && p.Email == nil && p.RoleID == nil
}
