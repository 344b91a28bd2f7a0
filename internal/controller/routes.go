package controller

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/benbeisheim/chessrules/internal/config"
	"github.com/benbeisheim/chessrules/internal/middleware"
	"github.com/benbeisheim/chessrules/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
)

// NewApp wires the REST and websocket routes onto a fiber app.
func NewApp(matchService *service.MatchService, cfg config.Config, appLogger *log.Logger) *fiber.App {
	if appLogger == nil {
		appLogger = log.Default()
	}
	app := fiber.New(fiber.Config{
		ErrorHandler:          ErrorHandler,
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          15 * time.Second,
		IdleTimeout:           60 * time.Second,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
		Output: appLogger.Writer(),
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, X-Player-ID",
		AllowMethods:     "GET, POST, OPTIONS",
		AllowCredentials: cfg.AllowOrigins != "*", // fiber refuses credentials with a wildcard
	}))

	matchController := NewMatchController(matchService)
	wsController := NewWebSocketController(matchService, appLogger)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy", "time": time.Now().Unix()})
	})

	// Websocket routes
	sockets := app.Group("/ws", middleware.EnsurePlayerID())
	wsConfig := websocket.Config{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		Origins:         splitOrigins(cfg.AllowOrigins),
	}
	sockets.Get("/match/:matchId", middleware.WebSocketUpgrade(), websocket.New(wsController.HandleConnection, wsConfig))
	sockets.Get("/matchmaking", middleware.WebSocketUpgrade(), websocket.New(wsController.HandleMatchmaking, wsConfig))

	// REST routes
	api := app.Group("/api", middleware.EnsurePlayerID())
	if cfg.RateLimit > 0 {
		api.Use(rateLimiter(cfg))
	}

	matchRoutes := api.Group("/match")
	matchRoutes.Post("/matchmaking/join", matchController.JoinMatchmaking)
	matchRoutes.Post("/create", matchController.CreateMatch)
	matchRoutes.Post("/join/:matchId", matchController.JoinMatch)
	matchRoutes.Get("/:matchId", matchController.GetMatchState)
	matchRoutes.Post("/:matchId/move", matchController.PlayMove)
	matchRoutes.Get("/:matchId/destinations", matchController.Destinations)

	return app
}

func splitOrigins(origins string) []string {
	var out []string
	for _, origin := range strings.Split(origins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			out = append(out, origin)
		}
	}
	return out
}

// rateLimiter allows cfg.RateLimit requests per second per IP, doubled in
// dev mode.
func rateLimiter(cfg config.Config) fiber.Handler {
	maxReq := cfg.RateLimit
	if cfg.Dev {
		maxReq *= 2
	}
	return limiter.New(limiter.Config{
		Max:        maxReq,
		Expiration: time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse{
				Error:   "rate limit exceeded",
				Code:    CodeRateLimitExceeded,
				Details: fmt.Sprintf("%d requests per second allowed", maxReq),
			})
		},
	})
}
