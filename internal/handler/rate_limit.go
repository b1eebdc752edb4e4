package handler

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// UserRateLimiter keeps one token bucket per Discord user.
type UserRateLimiter struct {
	users map[string]*rate.Limiter
	mu    sync.Mutex
	r     rate.Limit
	b     int
	now   func() time.Time
}

func NewUserRateLimiter(r rate.Limit, b int) *UserRateLimiter {
	return &UserRateLimiter{
		users: make(map[string]*rate.Limiter),
		r:     r,
		b:     b,
		now:   time.Now,
	}
}

func (l *UserRateLimiter) GetLimiter(userID string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, exists := l.users[userID]
	if !exists {
		limiter = rate.NewLimiter(l.r, l.b)
		l.users[userID] = limiter
	}

	return limiter
}

func (l *UserRateLimiter) Allow(userID string) bool {
	return l.GetLimiter(userID).Allow()
}

// Sweep forgets users whose bucket has refilled completely. A full bucket behaves
// exactly like a new one, so this never grants extra tokens.
func (l *UserRateLimiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for userID, limiter := range l.users {
		if limiter.TokensAt(now) >= float64(l.b) {
			delete(l.users, userID)
			removed++
		}
	}

	return removed
}

// Run sweeps every interval until ctx is done.
func (l *UserRateLimiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep()
		}
	}
}

func (l *UserRateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.users)
}
