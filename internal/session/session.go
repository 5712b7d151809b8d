// Package session binds signed tokens to the HTTP cookie channel.
package session

import (
	"time"

	"gatehouse/internal/auth"

	"github.com/gofiber/fiber/v2"
)

// Carrier issues and clears the session cookie. Tokens travel only through
// this cookie, never in response bodies.
type Carrier struct {
	name   string
	secure bool
	ttl    time.Duration
}

// NewCarrier returns a Carrier writing cookies under the given name.
// secure marks cookies Secure, for production deployments behind TLS.
func NewCarrier(name string, secure bool) *Carrier {
	return &Carrier{
		name:   name,
		secure: secure,
		ttl:    auth.SessionTTL,
	}
}

// Name returns the cookie name the carrier reads and writes.
func (cr *Carrier) Name() string {
	return cr.name
}

// Token extracts the raw session token from the request, or "" when the
// cookie is absent.
func (cr *Carrier) Token(c *fiber.Ctx) string {
	return c.Cookies(cr.name)
}

// Issue sets the session cookie carrying token. HTTPOnly keeps it away from
// scripts; SameSite=Lax limits cross-site sends.
func (cr *Carrier) Issue(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     cr.name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(cr.ttl.Seconds()),
		HTTPOnly: true,
		Secure:   cr.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// Clear expires the session cookie. Cookie identity is (name, domain, path)
// and excludes the Secure attribute, so a single expiration removes the
// session whether it was issued in secure or non-secure mode.
func (cr *Carrier) Clear(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     cr.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   cr.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
