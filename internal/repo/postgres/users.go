package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/geocoder89/taskhub/internal/domain/role"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type UsersRepo struct {
	db  DB
	obs Observer
}

func NewUsersRepo(db DB, obs Observer) *UsersRepo {
	return &UsersRepo{db: db, obs: observerOrNoop(obs)}
}

const userSelect = `SELECT u.id, u.name, u.email, u.password_hash, u.role_id, r.name, u.created_at, u.updated_at
	FROM users u
	JOIN roles r ON r.id = u.role_id`

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.RoleID, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (r *UsersRepo) Create(ctx context.Context, p user.CreateParams) (user.User, error) {
	var u user.User
	now := time.Now().UTC()

	err := r.obs.ObserveDB("users.create", func() error {
		var err error
		u, err = scanUser(r.db.QueryRow(ctx,
			`WITH inserted AS (
				INSERT INTO users (id, name, email, password_hash, role_id, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $6)
				RETURNING id, name, email, password_hash, role_id, created_at, updated_at
			)
			SELECT i.id, i.name, i.email, i.password_hash, i.role_id, r.name, i.created_at, i.updated_at
			FROM inserted i
			JOIN roles r ON r.id = i.role_id`,
			uuid.NewString(), p.Name, user.NormalizeEmail(p.Email), p.PasswordHash, p.RoleID, now,
		))
		return err
	})
	switch {
	case err == nil:
		return u, nil
	case isUniqueViolation(err):
		return user.User{}, user.ErrEmailTaken
	case isForeignKeyViolation(err):
		return user.User{}, role.ErrNotFound
	default:
		return user.User{}, fmt.Errorf("create user: %w", err)
	}
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	var u user.User
	err := r.obs.ObserveDB("users.get_by_id", func() error {
		var err error
		u, err = scanUser(r.db.QueryRow(ctx, userSelect+` WHERE u.id = $1`, id))
		return err
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return user.User{}, user.ErrNotFound
	}
	return u, err
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User
	err := r.obs.ObserveDB("users.get_by_email", func() error {
		var err error
		u, err = scanUser(r.db.QueryRow(ctx, userSelect+` WHERE u.email = $1`, user.NormalizeEmail(email)))
		return err
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return user.User{}, user.ErrNotFound
	}
	return u, err
}

func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	out := make([]user.User, 0)

	err := r.obs.ObserveDB("users.list", func() error {
		rows, err := r.db.Query(ctx, userSelect+` ORDER BY u.created_at DESC`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			u, err := scanUser(rows)
			if err != nil {
				return err
			}
			out = append(out, u)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}

// Update applies the non-nil fields of p.
func (r *UsersRepo) Update(ctx context.Context, id string, p user.UpdateParams) (user.User, error) {
	if p.Email != nil {
		e := user.NormalizeEmail(*p.Email)
		p.Email = &e
	}

	var u user.User
	err := r.obs.ObserveDB("users.update", func() error {
		var err error
		u, err = scanUser(r.db.QueryRow(ctx,
			`WITH updated AS (
				UPDATE users SET
					name = COALESCE($2, name),
					email = COALESCE($3, email),
					role_id = COALESCE($4, role_id),
					updated_at = NOW()
				WHERE id = $1
				RETURNING id, name, email, password_hash, role_id, created_at, updated_at
			)
			SELECT d.id, d.name, d.email, d.password_hash, d.role_id, r.name, d.created_at, d.updated_at
			FROM updated d
			JOIN roles r ON r.id = d.role_id`,
			id, p.Name, p.Email, p.RoleID,
		))
		return err
	})
	switch {
	case err == nil:
		return u, nil
	case errors.Is(err, pgx.ErrNoRows):
		return user.User{}, user.ErrNotFound
	case isUniqueViolation(err):
		return user.User{}, user.ErrEmailTaken
	case isForeignKeyViolation(err):
		return user.User{}, role.ErrNotFound
	default:
		return user.User{}, fmt.Errorf("update user: %w", err)
	}
}

func (r *UsersRepo) Delete(ctx context.Context, id string) error {
	var affected int64
	err := r.obs.ObserveDB("users.delete", func() error {
		tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		affected = tag.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if affected == 0 {
		return user.ErrNotFound
	}
	return nil
}
