package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/geocoder89/taskhub/internal/domain/role"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/security"
)

type AdminSeed struct {
	Email      string
	Password   string
	Name       string
	BcryptCost int
}

// UserSeeder is satisfied by both the postgres and the in-memory user stores.
type UserSeeder interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	Create(ctx context.Context, p user.CreateParams) (user.User, error)
}

// EnsureSuperAdmin creates the bootstrap Super Admin unless the email is
// already registered. It is a no-op when no credentials are configured.
func EnsureSuperAdmin(ctx context.Context, users UserSeeder, seed AdminSeed) (created bool, err error) {
	if seed.Email == "" || seed.Password == "" {
		return false, nil
	}

	_, err = users.GetByEmail(ctx, seed.Email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, user.ErrNotFound) {
		return false, fmt.Errorf("lookup seed admin: %w", err)
	}

	hash, err := security.HashPassword(seed.Password, seed.BcryptCost)
	if err != nil {
		return false, err
	}

	name := seed.Name
	if name == "" {
		name = "Super Admin"
	}

	_, err = users.Create(ctx, user.CreateParams{
		Name:         name,
		Email:        seed.Email,
		PasswordHash: hash,
		RoleID:       role.SuperAdminID,
	})
	if err != nil {
		return false, fmt.Errorf("create seed admin: %w", err)
	}
	return true, nil
}
