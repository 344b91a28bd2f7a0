package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const playerIDKey = "playerID"

// EnsurePlayerID reads the caller's player ID from the X-Player-ID header,
// falling back to the playerId query parameter (browsers cannot set headers
// on websocket handshakes). The ID must be a UUID.
func EnsurePlayerID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Locals(playerIDKey) != nil {
			return c.Next()
		}

		playerID := c.Get("X-Player-ID")
		if playerID == "" {
			playerID = c.Query("playerId")
		}

		if playerID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Player ID is required. Please ensure client is properly initialized.",
				"code":  "UNAUTHORIZED",
			})
		}
		if _, err := uuid.Parse(playerID); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Player ID must be a UUID",
				"code":  "INVALID_REQUEST",
			})
		}

		c.Locals(playerIDKey, playerID)
		return c.Next()
	}
}

// PlayerID returns the ID stored by EnsurePlayerID, or "" outside it.
func PlayerID(c *fiber.Ctx) string {
	id, _ := c.Locals(playerIDKey).(string)
	return id
}
