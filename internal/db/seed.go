package db

import (
	"context"
	"fmt"

	"github.com/geocoder89/taskhub/internal/domain/role"
)

// SeedCatalog inserts the default roles, permissions and grants. Existing
// rows are left untouched.
func SeedCatalog(ctx context.Context, db Execer) error {
	for _, r := range role.DefaultRoles {
		if _, err := db.Exec(ctx,
			`INSERT INTO roles (id, name, description) VALUES ($1, $2, $3)
			ON CONFLICT DO NOTHING`,
			r.ID, r.Name, r.Description,
		); err != nil {
			return fmt.Errorf("seed role %s: %w", r.Name, err)
		}
	}

	for _, p := range role.DefaultPermissions {
		if _, err := db.Exec(ctx,
			`INSERT INTO permissions (id, name, description) VALUES ($1, $2, $3)
			ON CONFLICT DO NOTHING`,
			p.ID, p.Name, p.Description,
		); err != nil {
			return fmt.Errorf("seed permission %s: %w", p.Name, err)
		}
	}

	for _, r := range role.DefaultRoles {
		for _, name := range role.DefaultGrants[r.ID] {
			p, ok := role.PermissionByName(name)
			if !ok {
				return fmt.Errorf("seed grant: unknown permission %q", name)
			}
			if _, err := db.Exec(ctx,
				`INSERT INTO role_permissions (role_id, permission_id) VALUES ($1, $2)
				ON CONFLICT DO NOTHING`,
				r.ID, p.ID,
			); err != nil {
				return fmt.Errorf("seed grant %s -> %s: %w", r.Name, name, err)
			}
		}
	}
	return nil
}
