package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/geocoder89/taskhub/internal/domain/role"
	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/google/uuid"
)

// Store keeps roles, users and tasks in process. It mirrors the postgres
// constraints: unique emails, role and assignee references, cascading deletes.
type Store struct {
	mu     sync.RWMutex
	seq    int64
	order  map[string]int64
	roles  map[string]role.Role
	perms  map[string]role.Permission
	grants map[string][]string
	users  map[string]user.User
	tasks  map[string]task.Task

	Users *UsersRepo
	Roles *RolesRepo
	Tasks *TasksRepo
}

// NewStore returns a store seeded with the default roles and permissions.
func NewStore() *Store {
	s := &Store{
		order:  make(map[string]int64),
		roles:  make(map[string]role.Role),
		perms:  make(map[string]role.Permission),
		grants: make(map[string][]string),
		users:  make(map[string]user.User),
		tasks:  make(map[string]task.Task),
	}

	now := time.Now().UTC()
	for _, r := range role.DefaultRoles {
		r.CreatedAt, r.UpdatedAt = now, now
		s.roles[r.ID] = r
		s.order[r.ID] = s.next()
	}
	for _, p := range role.DefaultPermissions {
		s.perms[p.Name] = p
	}
	for roleID, names := range role.DefaultGrants {
		s.grants[roleID] = append([]string(nil), names...)
	}

	s.Users = &UsersRepo{s: s}
	s.Roles = &RolesRepo{s: s}
	s.Tasks = &TasksRepo{s: s}
	return s
}

func (s *Store) Ping(context.Context) error { return nil }

// next must be called with mu held for writing.
func (s *Store) next() int64 {
	s.seq++
	return s.seq
}

// newestFirst sorts ids by creation time, breaking ties by insertion order.
func (s *Store) newestFirst(ids []string, createdAt func(string) time.Time) {
	sort.Slice(ids, func(i, j int) bool {
		ci, cj := createdAt(ids[i]), createdAt(ids[j])
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return s.order[ids[i]] > s.order[ids[j]]
	})
}

func newID() string { return uuid.NewString() }
