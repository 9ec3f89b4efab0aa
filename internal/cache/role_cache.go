package cache

import (
	"fmt"
	"time"
)

const defaultRoleTTL = 60 * time.Second

// RoleCache remembers a user's role within an organization so the
// admin guard does not hit the database on every request. Only
// successful lookups are cached.
type RoleCache interface {
	GetRole(orgID, userID int64) (string, bool)
	SetRole(orgID, userID int64, role string)
	Invalidate(orgID, userID int64)
}

type roleCache struct {
	roles Cache[string, string]
	ttl   time.Duration
}

func NewRoleCache() RoleCache {
	return &roleCache{
		roles: NewTTLCache[string, string](),
		ttl:   defaultRoleTTL,
	}
}

func (c *roleCache) GetRole(orgID, userID int64) (string, bool) {
	return c.roles.Get(roleKey(orgID, userID))
}

func (c *roleCache) SetRole(orgID, userID int64, role string) {
	if role == "" {
		return
	}
	c.roles.Set(roleKey(orgID, userID), role, c.ttl)
}

func (c *roleCache) Invalidate(orgID, userID int64) {
	c.roles.Delete(roleKey(orgID, userID))
}

func roleKey(orgID, userID int64) string {
	return fmt.Sprintf("%d|%d", orgID, userID)
}
