package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cohabit-backend/config"
	"cohabit-backend/database"
	"cohabit-backend/handlers"
	"cohabit-backend/logging"
	"cohabit-backend/services"

	"github.com/gin-gonic/gin"
)

func main() {
	logging.Setup("info")

	// Load configuration
	if err := config.Load(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	cfg := config.AppConfig
	logging.Setup(cfg.LogLevel)
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	if err := database.Connect(cfg.DatabaseURL); err != nil {
		slog.Error("Database unavailable", "error", err)
		os.Exit(1)
	}

	// Connect to Redis (optional, won't crash if unavailable)
	database.ConnectRedis(cfg.RedisURL)
	services.SetBalanceCache(services.NewBalanceCache(database.Redis, cfg.BalanceCacheTTL))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	notifications := services.InitNotificationService(ctx, cfg)

	r := handlers.SetupRouter(cfg.AppName, cfg.JWTSecret, cfg.CORSOrigins)
	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server starting", "app", cfg.AppName, "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Failed to start server", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
	notifications.Wait()

	if database.Redis != nil {
		database.Redis.Close()
	}
}
