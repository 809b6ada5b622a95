package utils

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// Cooldowns tracks per-key cooldowns. Keys expire on their own.
type Cooldowns struct {
	entries  *cache.Cache
	duration time.Duration
}

func NewCooldowns(d time.Duration) *Cooldowns {
	return &Cooldowns{
		entries:  cache.New(d, 2*d),
		duration: d,
	}
}

// Try starts a cooldown for key. If key is already cooling down it returns false and
// the time left.
func (c *Cooldowns) Try(key string) (time.Duration, bool) {
	if err := c.entries.Add(key, time.Now(), c.duration); err == nil {
		return 0, true
	}
	_, expires, found := c.entries.GetWithExpiration(key)
	if !found {
		// Expired between Add and lookup.
		c.entries.Set(key, time.Now(), c.duration)
		return 0, true
	}
	return time.Until(expires), false
}

// Release clears key's cooldown.
func (c *Cooldowns) Release(key string) {
	c.entries.Delete(key)
}
