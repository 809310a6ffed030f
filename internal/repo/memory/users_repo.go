package memory

import (
	"context"
	"strings"
	"time"

	"github.com/geocoder89/taskhub/internal/domain/role"
	"github.com/geocoder89/taskhub/internal/domain/user"
)

type UsersRepo struct {
	s *Store
}

// withRole must be called with mu held.
func (r *UsersRepo) withRole(u user.User) user.User {
	u.Role = r.s.roles[u.RoleID].Name
	return u
}

// emailOwner must be called with mu held.
func (r *UsersRepo) emailOwner(email string) (string, bool) {
	for id, u := range r.s.users {
		if u.Email == email {
			return id, true
		}
	}
	return "", false
}

func (r *UsersRepo) Create(_ context.Context, p user.CreateParams) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	email := user.NormalizeEmail(p.Email)
	if _, taken := r.emailOwner(email); taken {
		return user.User{}, user.ErrEmailTaken
	}
	roleID := strings.ToLower(p.RoleID)
	if _, ok := r.s.roles[roleID]; !ok {
		return user.User{}, role.ErrNotFound
	}

	now := time.Now().UTC()
	u := user.User{
		ID:           newID(),
		Name:         p.Name,
		Email:        email,
		PasswordHash: p.PasswordHash,
		RoleID:       roleID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.s.users[u.ID] = u
	r.s.order[u.ID] = r.s.next()

	return r.withRole(u), nil
}

func (r *UsersRepo) GetByID(_ context.Context, id string) (user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[strings.ToLower(id)]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return r.withRole(u), nil
}

func (r *UsersRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.emailOwner(user.NormalizeEmail(email))
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return r.withRole(r.s.users[id]), nil
}

func (r *UsersRepo) List(_ context.Context) ([]user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ids := make([]string, 0, len(r.s.users))
	for id := range r.s.users {
		ids = append(ids, id)
	}
	r.s.newestFirst(ids, func(id string) time.Time { return r.s.users[id].CreatedAt })

	out := make([]user.User, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.withRole(r.s.users[id]))
	}
	return out, nil
}

func (r *UsersRepo) Update(_ context.Context, id string, p user.UpdateParams) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	id = strings.ToLower(id)
	u, ok := r.s.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	if p.Email != nil {
		email := user.NormalizeEmail(*p.Email)
		if owner, taken := r.emailOwner(email); taken && owner != id {
			return user.User{}, user.ErrEmailTaken
		}
		u.Email = email
	}
	if p.RoleID != nil {
		roleID := strings.ToLower(*p.RoleID)
		if _, ok := r.s.roles[roleID]; !ok {
			return user.User{}, role.ErrNotFound
		}
		u.RoleID = roleID
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	u.UpdatedAt = time.Now().UTC()

	r.s.users[id] = u
	return r.withRole(u), nil
}

// Delete removes the user and every task assigned to them.
func (r *UsersRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	id = strings.ToLower(id)
	if _, ok := r.s.users[id]; !ok {
		return user.ErrNotFound
	}
	delete(r.s.users, id)
	delete(r.s.order, id)

	for tid, t := range r.s.tasks {
		if t.AssignedTo == id {
			delete(r.s.tasks, tid)
			delete(r.s.order, tid)
		}
	}
	return nil
}
