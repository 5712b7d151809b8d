package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCookieHandler(t *testing.T, handler fiber.Handler, cookie *http.Cookie) *http.Response {
	t.Helper()

	app := fiber.New()
	app.Get("/", handler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func findCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestIssueSetsHardenedCookie(t *testing.T) {
	carrier := NewCarrier("test_session", false)

	resp := runCookieHandler(t, func(c *fiber.Ctx) error {
		carrier.Issue(c, "token-value")
		return c.SendString("ok")
	}, nil)
	defer func() { _ = resp.Body.Close() }()

	cookie := findCookie(resp, "test_session")
	require.NotNil(t, cookie)
	assert.Equal(t, "token-value", cookie.Value)
	assert.Equal(t, "/", cookie.Path)
	assert.True(t, cookie.HttpOnly)
	assert.False(t, cookie.Secure)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, int(8*60*60), cookie.MaxAge)
}

func TestIssueSecureInProduction(t *testing.T) {
	carrier := NewCarrier("test_session", true)

	resp := runCookieHandler(t, func(c *fiber.Ctx) error {
		carrier.Issue(c, "token-value")
		return c.SendString("ok")
	}, nil)
	defer func() { _ = resp.Body.Close() }()

	cookie := findCookie(resp, "test_session")
	require.NotNil(t, cookie)
	assert.True(t, cookie.Secure)
}

func TestTokenReadsCookie(t *testing.T) {
	carrier := NewCarrier("test_session", false)

	var got string
	resp := runCookieHandler(t, func(c *fiber.Ctx) error {
		got = carrier.Token(c)
		return c.SendString("ok")
	}, &http.Cookie{Name: "test_session", Value: "stored-token"})
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, "stored-token", got)
}

func TestTokenAbsentCookie(t *testing.T) {
	carrier := NewCarrier("test_session", false)

	var got string
	resp := runCookieHandler(t, func(c *fiber.Ctx) error {
		got = carrier.Token(c)
		return c.SendString("ok")
	}, nil)
	defer func() { _ = resp.Body.Close() }()

	assert.Empty(t, got)
}

func TestClearExpiresCookie(t *testing.T) {
	carrier := NewCarrier("test_session", false)

	resp := runCookieHandler(t, func(c *fiber.Ctx) error {
		carrier.Clear(c)
		return c.SendString("ok")
	}, &http.Cookie{Name: "test_session", Value: "stale"})
	defer func() { _ = resp.Body.Close() }()

	cookie := findCookie(resp, "test_session")
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.True(t, cookie.Expires.Before(time.Now()))
}
