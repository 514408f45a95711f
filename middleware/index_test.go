package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestOptionalAuthGuestPassesThrough(t *testing.T) {
	app := fiber.New()
	app.Post("/bookings", OptionalAuth(), func(c *fiber.Ctx) error {
		userId, _ := c.Locals("userId").(uint)
		assert.Equal(t, uint(0), userId)
		assert.Nil(t, c.Locals("currentUser"))
		return c.SendStatus(fiber.StatusCreated)
	})

	req := httptest.NewRequest("POST", "/bookings", nil)
	resp, err := app.Test(req)

	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
}

func TestOptionalAuthInvalidTokenTreatedAsGuest(t *testing.T) {
	app := fiber.New()
	app.Post("/bookings", OptionalAuth(), func(c *fiber.Ctx) error {
		userId, _ := c.Locals("userId").(uint)
		assert.Equal(t, uint(0), userId)
		return c.SendStatus(fiber.StatusCreated)
	})

	req := httptest.NewRequest("POST", "/bookings", nil)
	req.Header.Set("Authorization", "Bearer khong-phai-jwt")
	resp, err := app.Test(req)

	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
}

func TestProtectedMissingTokenRejected(t *testing.T) {
	app := fiber.New()
	app.Get("/me", Protected(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/me", nil)
	resp, err := app.Test(req)

	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
