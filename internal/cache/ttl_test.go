package cache_test

import (
	"testing"
	"time"

	"github.com/evalhub/evalhub/internal/cache"
)

func TestTTLCache(t *testing.T) {
	t.Run("SetAndGet", func(t *testing.T) {
		c := cache.NewTTL[string](time.Minute)
		c.Set("k", "v")

		got, ok := c.Get("k")
		if !ok {
			t.Fatal("expected cache hit, got miss")
		}
		if got != "v" {
			t.Errorf("expected 'v', got '%s'", got)
		}
	})

	t.Run("MissingKey", func(t *testing.T) {
		c := cache.NewTTL[string](time.Minute)

		if _, ok := c.Get("missing"); ok {
			t.Error("expected cache miss for unknown key")
		}
	})

	t.Run("Expiry", func(t *testing.T) {
		c := cache.NewTTL[int](10 * time.Millisecond)
		c.Set("k", 42)

		time.Sleep(20 * time.Millisecond)

		if _, ok := c.Get("k"); ok {
			t.Error("expected entry to expire after TTL")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		c := cache.NewTTL[int](time.Minute)
		c.Set("k", 1)
		c.Delete("k")

		if _, ok := c.Get("k"); ok {
			t.Error("expected entry to be gone after Delete")
		}
	})

	t.Run("IsolatedInstances", func(t *testing.T) {
		a := cache.NewTTL[int](time.Minute)
		b := cache.NewTTL[int](time.Minute)
		a.Set("k", 1)

		if _, ok := b.Get("k"); ok {
			t.Error("instances must not share entries")
		}
	})
}
