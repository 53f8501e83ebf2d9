package router

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCooldown_FirstReplyAllowed(t *testing.T) {
	c := NewCooldown(10 * time.Minute)
	assert.True(t, c.Allow("chan-1"))
}

func TestCooldown_BoundaryIsExactInterval(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewCooldown(600 * time.Second)

	c.now = func() time.Time { return base }
	c.Record("chan-1")

	c.now = func() time.Time { return base.Add(599 * time.Second) }
	assert.False(t, c.Allow("chan-1"), "one second early must suppress")

	c.now = func() time.Time { return base.Add(600 * time.Second) }
	assert.True(t, c.Allow("chan-1"), "exactly the interval must allow")

	c.now = func() time.Time { return base.Add(601 * time.Second) }
	assert.True(t, c.Allow("chan-1"))
}

func TestCooldown_ChannelsAreIndependent(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewCooldown(10 * time.Minute)
	c.now = func() time.Time { return base }

	c.Record("chan-1")
	assert.False(t, c.Allow("chan-1"))
	assert.True(t, c.Allow("chan-2"))
}
