package cache

import (
	"context"
	"strings"
	"time"

	"github.com/geocoder89/taskhub/internal/domain/role"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// RoleSource is the backing store for role lookups.
type RoleSource interface {
	GetByID(ctx context.Context, id string) (role.Role, error)
	List(ctx context.Context) ([]role.Role, error)
	Permissions(ctx context.Context, roleID string) ([]role.Permission, error)
}

// Roles caches role lookups by id. Roles only change through seeding, so
// entries simply age out.
type Roles struct {
	next RoleSource
	byID *expirable.LRU[string, role.Role]
}

func NewRoles(next RoleSource, size int, ttl time.Duration) *Roles {
	if size <= 0 {
		size = 64
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &Roles{
		next: next,
		byID: expirable.NewLRU[string, role.Role](size, nil, ttl),
	}
}

func (c *Roles) GetByID(ctx context.Context, id string) (role.Role, error) {
	key := strings.ToLower(id)
	if r, ok := c.byID.Get(key); ok {
		return r, nil
	}

	r, err := c.next.GetByID(ctx, id)
	if err != nil {
		// misses are not cached so a later seed is picked up
		return role.Role{}, err
	}
	c.byID.Add(key, r)
	return r, nil
}

func (c *Roles) List(ctx context.Context) ([]role.Role, error) {
	roles, err := c.next.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range roles {
		c.byID.Add(strings.ToLower(r.ID), r)
	}
	return roles, nil
}

func (c *Roles) Permissions(ctx context.Context, roleID string) ([]role.Permission, error) {
	return c.next.Permissions(ctx, roleID)
}

func (c *Roles) Purge() { c.byID.Purge() }

func (c *Roles) Len() int { return c.byID.Len() }
