package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/geocoder89/taskhub/internal/domain/role"
)

type RolesRepo struct {
	s *Store
}

func (r *RolesRepo) GetByID(_ context.Context, id string) (role.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ro, ok := r.s.roles[strings.ToLower(id)]
	if !ok {
		return role.Role{}, role.ErrNotFound
	}
	return ro, nil
}

func (r *RolesRepo) GetByName(_ context.Context, name string) (role.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, ro := range r.s.roles {
		if strings.EqualFold(ro.Name, name) {
			return ro, nil
		}
	}
	return role.Role{}, role.ErrNotFound
}

func (r *RolesRepo) List(_ context.Context) ([]role.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]role.Role, 0, len(r.s.roles))
	for _, ro := range r.s.roles {
		out = append(out, ro)
	}
	sort.Slice(out, func(i, j int) bool { return r.s.order[out[i].ID] < r.s.order[out[j].ID] })
	return out, nil
}

func (r *RolesRepo) Permissions(_ context.Context, roleID string) ([]role.Permission, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]role.Permission, 0)
	for _, name := range r.s.grants[strings.ToLower(roleID)] {
		if p, ok := r.s.perms[name]; ok {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
