// Package ratelimit implements a per-identity fixed-window request throttle.
//
// The limiter is in-memory and process-local: the service runs as a single
// instance and does not coordinate windows across replicas.
package ratelimit

import (
	"strings"
	"sync"
	"time"

	"gatehouse/internal/models"
	"gatehouse/internal/observability"

	"github.com/gofiber/fiber/v2"
)

type entry struct {
	count   int
	resetAt time.Time
}

// Limiter bounds attempts per client identity within a fixed window. It is
// an explicit dependency, constructed and owned by the server, and safe for
// concurrent use.
type Limiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	entries map[string]*entry
	now     func() time.Time
}

// New returns a Limiter allowing max attempts per window per identity.
func New(max int, window time.Duration) *Limiter {
	return &Limiter{
		max:     max,
		window:  window,
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// Allow records an attempt for identity and reports whether it is within
// the window's budget. The first attempt, or the first after the window
// elapses, resets the counter and starts a new window. Expired entries are
// reclaimed lazily by overwrite.
func (l *Limiter) Allow(identity string) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[identity]
	if !ok || now.After(e.resetAt) {
		l.entries[identity] = &entry{count: 1, resetAt: now.Add(l.window)}
		return true
	}
	if e.count >= l.max {
		return false
	}
	e.count++
	return true
}

// ClientIdentity derives the throttle key for a request: the first
// forwarded-for address when present, else the remote address, else a
// shared "unknown" bucket. Unattributable clients deliberately share one
// bucket rather than each getting a fresh window.
func ClientIdentity(c *fiber.Ctx) string {
	if xf := c.Get(fiber.HeaderXForwardedFor); xf != "" {
		if first := strings.TrimSpace(strings.Split(xf, ",")[0]); first != "" {
			return first
		}
	}
	if ip := c.IP(); ip != "" {
		return ip
	}
	return "unknown"
}

// Handler returns a Fiber middleware enforcing the limiter before the named
// operation. Denials answer 429 and count toward the rate-limit metric.
func Handler(name string, l *Limiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !l.Allow(ClientIdentity(c)) {
			observability.RateLimitDenials.WithLabelValues(name).Inc()
			return models.RespondWithError(c, fiber.StatusTooManyRequests,
				models.NewRateLimitError())
		}
		return c.Next()
	}
}
