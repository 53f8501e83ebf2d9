package router

import (
	"sync"
	"time"
)

// Cooldown rate-limits proactive (unprompted) replies per channel.
// State is process-local and resets on restart.
type Cooldown struct {
	interval time.Duration
	now      func() time.Time

	mu   sync.Mutex
	last map[string]time.Time
}

// NewCooldown creates a cooldown with the given minimum interval
// between proactive replies in the same channel.
func NewCooldown(interval time.Duration) *Cooldown {
	return &Cooldown{
		interval: interval,
		now:      time.Now,
		last:     make(map[string]time.Time),
	}
}

// Allow reports whether a proactive reply may be sent to the channel.
func (c *Cooldown) Allow(channelID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	last, ok := c.last[channelID]
	if !ok {
		return true
	}
	return c.now().Sub(last) >= c.interval
}

// Record marks a proactive reply as sent to the channel.
func (c *Cooldown) Record(channelID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last[channelID] = c.now()
}
