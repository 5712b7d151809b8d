package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowWithinBudget(t *testing.T) {
	l := New(3, time.Minute)

	assert.True(t, l.Allow("1.2.3.4"))
	assert.True(t, l.Allow("1.2.3.4"))
	assert.True(t, l.Allow("1.2.3.4"))
	assert.False(t, l.Allow("1.2.3.4"))
	assert.False(t, l.Allow("1.2.3.4"))
}

func TestAllowIdentitiesIndependent(t *testing.T) {
	l := New(1, time.Minute)

	assert.True(t, l.Allow("1.2.3.4"))
	assert.False(t, l.Allow("1.2.3.4"))
	assert.True(t, l.Allow("5.6.7.8"))
}

func TestAllowWindowReset(t *testing.T) {
	l := New(2, time.Minute)

	base := time.Now()
	l.now = func() time.Time { return base }

	assert.True(t, l.Allow("1.2.3.4"))
	assert.True(t, l.Allow("1.2.3.4"))
	assert.False(t, l.Allow("1.2.3.4"))

	// Still inside the window: denied attempts do not extend it.
	l.now = func() time.Time { return base.Add(30 * time.Second) }
	assert.False(t, l.Allow("1.2.3.4"))

	// Window elapsed: fresh budget.
	l.now = func() time.Time { return base.Add(61 * time.Second) }
	assert.True(t, l.Allow("1.2.3.4"))
	assert.True(t, l.Allow("1.2.3.4"))
	assert.False(t, l.Allow("1.2.3.4"))
}

func TestClientIdentity(t *testing.T) {
	app := fiber.New()

	var identity string
	app.Get("/", func(c *fiber.Ctx) error {
		identity = ClientIdentity(c)
		return c.SendString("ok")
	})

	t.Run("forwarded-for wins", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, "203.0.113.9", identity)
	})

	t.Run("falls back to remote address", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.NotEmpty(t, identity)
	})
}

func TestHandlerDeniesWith429(t *testing.T) {
	l := New(2, time.Minute)

	app := fiber.New()
	app.Post("/login", Handler("login", l), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})

	statuses := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.9")
		resp, err := app.Test(req)
		require.NoError(t, err)
		statuses = append(statuses, resp.StatusCode)
		_ = resp.Body.Close()
	}

	assert.Equal(t, []int{
		http.StatusOK,
		http.StatusOK,
		http.StatusTooManyRequests,
		http.StatusTooManyRequests,
	}, statuses)
}

func TestHandlerUnrelatedClientUnaffected(t *testing.T) {
	l := New(1, time.Minute)

	app := fiber.New()
	app.Post("/login", Handler("login", l), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})

	first := httptest.NewRequest(http.MethodPost, "/login", nil)
	first.Header.Set("X-Forwarded-For", "203.0.113.9")
	resp, err := app.Test(first)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	second := httptest.NewRequest(http.MethodPost, "/login", nil)
	second.Header.Set("X-Forwarded-For", "198.51.100.7")
	resp, err = app.Test(second)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
