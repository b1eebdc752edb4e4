package handler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestUserRateLimiterIsPerUser(t *testing.T) {
	l := NewUserRateLimiter(rate.Every(time.Hour), 2)

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))

	assert.True(t, l.Allow("b"))
	assert.Same(t, l.GetLimiter("a"), l.GetLimiter("a"))
}

func TestUserRateLimiterSweepForgetsRefilledUsers(t *testing.T) {
	l := NewUserRateLimiter(rate.Every(time.Minute), 1)
	start := time.Now()
	l.now = func() time.Time { return start }

	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	l.GetLimiter("b")

	// "b" never spent a token; "a" is still empty.
	assert.Equal(t, 1, l.Sweep())
	assert.Equal(t, 1, l.Len())
	assert.False(t, l.Allow("a"))

	l.now = func() time.Time { return start.Add(5 * time.Minute) }
	assert.Equal(t, 1, l.Sweep())
	assert.Equal(t, 0, l.Len())
}
