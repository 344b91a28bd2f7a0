package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebSocketUpgrade ensures that requests to websocket endpoints are real
// upgrade attempts from an identified player. Routes with a :matchId
// parameter must also carry one.
func WebSocketUpgrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		if PlayerID(c) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "player ID is required",
				"code":  "UNAUTHORIZED",
			})
		}

		for _, name := range c.Route().Params {
			if name == "matchId" && c.Params("matchId") == "" {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "match ID is required",
					"code":  "INVALID_REQUEST",
				})
			}
		}

		return c.Next()
	}
}
