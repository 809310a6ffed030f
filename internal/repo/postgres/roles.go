package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/geocoder89/taskhub/internal/domain/role"
	"github.com/jackc/pgx/v5"
)

type RolesRepo struct {
	db  DB
	obs Observer
}

func NewRolesRepo(db DB, obs Observer) *RolesRepo {
	return &RolesRepo{db: db, obs: observerOrNoop(obs)}
}

const roleSelect = `SELECT id, name, description, created_at, updated_at FROM roles`

func scanRole(row pgx.Row) (role.Role, error) {
	var (
		r    role.Role
		desc *string
	)
	if err := row.Scan(&r.ID, &r.Name, &desc, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return role.Role{}, err
	}
	if desc != nil {
		r.Description = *desc
	}
	return r, nil
}

func (r *RolesRepo) GetByID(ctx context.Context, id string) (role.Role, error) {
	var out role.Role
	err := r.obs.ObserveDB("roles.get_by_id", func() error {
		var err error
		out, err = scanRole(r.db.QueryRow(ctx, roleSelect+` WHERE id = $1`, id))
		return err
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return role.Role{}, role.ErrNotFound
	}
	return out, err
}

func (r *RolesRepo) GetByName(ctx context.Context, name string) (role.Role, error) {
	var out role.Role
	err := r.obs.ObserveDB("roles.get_by_name", func() error {
		var err error
		out, err = scanRole(r.db.QueryRow(ctx, roleSelect+` WHERE LOWER(name) = LOWER($1)`, name))
		return err
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return role.Role{}, role.ErrNotFound
	}
	return out, err
}

func (r *RolesRepo) List(ctx context.Context) ([]role.Role, error) {
	out := make([]role.Role, 0, 4)

	err := r.obs.ObserveDB("roles.list", func() error {
		rows, err := r.db.Query(ctx, roleSelect+` ORDER BY created_at ASC, name ASC`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			ro, err := scanRole(rows)
			if err != nil {
				return err
			}
			out = append(out, ro)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return out, nil
}

// Permissions lists the permissions attached to roleID, by name.
func (r *RolesRepo) Permissions(ctx context.Context, roleID string) ([]role.Permission, error) {
	out := make([]role.Permission, 0)

	err := r.obs.ObserveDB("roles.permissions", func() error {
		rows, err := r.db.Query(ctx,
			`SELECT p.id, p.name, p.description
			FROM permissions p
			JOIN role_permissions rp ON rp.permission_id = p.id
			WHERE rp.role_id = $1
			ORDER BY p.name`,
			roleID,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var (
				p    role.Permission
				desc *string
			)
			if err := rows.Scan(&p.ID, &p.Name, &desc); err != nil {
				return err
			}
			if desc != nil {
				p.Description = *desc
			}
			out = append(out, p)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list role permissions: %w", err)
	}
	return out, nil
}
