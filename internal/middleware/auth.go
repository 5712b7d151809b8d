package middleware

import (
	"gatehouse/internal/auth"
	"gatehouse/internal/models"
	"gatehouse/internal/session"

	"github.com/gofiber/fiber/v2"
)

// principalKey is the Locals key under which a verified principal is stored.
const principalKey = "principal"

// Gate is the single authorization choke point: it owns cookie extraction
// and claim validation for every protected endpoint. Handlers never parse
// cookies or tokens themselves.
type Gate struct {
	codec   *auth.TokenCodec
	carrier *session.Carrier
}

// NewGate builds a Gate over the given codec and session carrier.
func NewGate(codec *auth.TokenCodec, carrier *session.Carrier) *Gate {
	return &Gate{codec: codec, carrier: carrier}
}

// PrincipalFrom extracts the session cookie from the request and verifies
// it, returning nil when the cookie is absent or the token does not verify.
func (g *Gate) PrincipalFrom(c *fiber.Ctx) *auth.Principal {
	token := g.carrier.Token(c)
	if token == "" {
		return nil
	}
	principal, err := g.codec.Verify(token)
	if err != nil {
		return nil
	}
	return principal
}

// RequireAuth enforces a valid session and stores the principal in Locals.
func (g *Gate) RequireAuth(c *fiber.Ctx) error {
	principal := g.PrincipalFrom(c)
	if principal == nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authentication required"))
	}
	storePrincipal(c, principal)
	return c.Next()
}

// RequireAdmin enforces a valid session carrying the admin role. A missing
// or invalid session is an authentication failure (401); a valid session
// without the admin role is an authorization failure (403).
func (g *Gate) RequireAdmin(c *fiber.Ctx) error {
	principal := g.PrincipalFrom(c)
	if principal == nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authentication required"))
	}
	if !principal.IsAdmin() {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("Admin role required"))
	}
	storePrincipal(c, principal)
	return c.Next()
}

func storePrincipal(c *fiber.Ctx, p *auth.Principal) {
	c.Locals(principalKey, p)
	c.Locals("userID", p.UserID)
}

// PrincipalFromLocals returns the principal stored by RequireAuth or
// RequireAdmin, or nil outside a gated handler.
func PrincipalFromLocals(c *fiber.Ctx) *auth.Principal {
	if p, ok := c.Locals(principalKey).(*auth.Principal); ok {
		return p
	}
	return nil
}
