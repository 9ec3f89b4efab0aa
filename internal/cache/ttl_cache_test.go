package cache

import (
	"testing"
	"time"
)

func TestTTLCacheExpires(t *testing.T) {
	c := NewTTLCache[string, int]()

	c.Set("a", 1, 10*time.Millisecond)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("expected hit with 1, got %d %v", v, ok)
	}

	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected entry to expire")
	}
}

func TestRoleCacheIgnoresEmptyRole(t *testing.T) {
	c := NewRoleCache()

	c.SetRole(1, 2, "")
	if _, ok := c.GetRole(1, 2); ok {
		t.Fatalf("expected empty role not to be cached")
	}

	c.SetRole(1, 2, "admin")
	if role, ok := c.GetRole(1, 2); !ok || role != "admin" {
		t.Fatalf("expected cached admin role, got %q %v", role, ok)
	}

	c.Invalidate(1, 2)
	if _, ok := c.GetRole(1, 2); ok {
		t.Fatalf("expected role to be invalidated")
	}
}
