package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbeisheim/chessrules/internal/config"
	"github.com/benbeisheim/chessrules/internal/controller"
	"github.com/benbeisheim/chessrules/internal/service"
)

const gracefulShutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load("chess-server", os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize services
	manager := service.NewMatchManager(service.ManagerConfig{
		ClockLimit:          cfg.ClockLimit,
		MatchmakingInterval: cfg.MatchmakingInterval,
		Logger:              log.Default(),
	})
	matchService := service.NewMatchService(manager)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go manager.Run(ctx)

	app := controller.NewApp(matchService, cfg, log.Default())

	go func() {
		log.Printf("Chess server listening on http://%s", cfg.Addr)
		log.Printf("REST: http://%s/api/match, sockets: ws://%s/ws/match/:matchId", cfg.Addr, cfg.Addr)
		if cfg.RateLimit > 0 {
			log.Printf("Rate limit: %d requests/second per IP (dev: %t)", cfg.RateLimit, cfg.Dev)
		}
		if err := app.Listen(cfg.Addr); err != nil {
			log.Printf("Server listen error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	cancel() // stop matchmaking

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer shutdownCancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}
