package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"

	"github.com/gerardthecreator/taller-citas/config"
	"github.com/gerardthecreator/taller-citas/internal/api"
	"github.com/gerardthecreator/taller-citas/internal/db"
	"github.com/gerardthecreator/taller-citas/internal/logging"
	"github.com/gerardthecreator/taller-citas/internal/notification"
	"github.com/gerardthecreator/taller-citas/internal/store"
	"github.com/gerardthecreator/taller-citas/internal/telegram"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	logger.Info("configuration loaded", zap.String("path", configPath))

	if cfg.Telegram.Token == "" || cfg.Telegram.ChatID == "" {
		logger.Fatal("telegram token and chat_id must be configured")
	}
	if cfg.Push.PublicKey == "" || cfg.Push.PrivateKey == "" {
		logger.Fatal("VAPID keys must be configured. Please generate them and add them to your config file.")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bookings, err := store.NewFirebaseStore(ctx, &cfg.Firebase)
	if err != nil {
		logger.Fatal("failed to initialize booking store", zap.Error(err))
	}
	logger.Info("booking store initialized")

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatal("failed to initialize local database", zap.Error(err))
	}
	subs := store.NewGormSubscriptionStore(gormDB)
	logger.Info("subscription store initialized")

	webpushOptions := webpush.Options{
		VAPIDPublicKey:  cfg.Push.PublicKey,
		VAPIDPrivateKey: cfg.Push.PrivateKey,
		Subscriber:      cfg.Push.Subject,
		TTL:             cfg.Push.TTL,
	}

	pool := notification.NewWorkerPool(cfg.WorkerPool.Size, subs, &webpushOptions, logger)
	pool.Start(ctx)

	tg := telegram.NewClient(&cfg.Telegram)

	handler := api.NewHandler(bookings, subs, tg, pool, cfg, logger)
	router := api.NewRouter(handler, &cfg.Server)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("HTTP server starting", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server ListenAndServe", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Info("shutdown signal received, stopping services")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("HTTP server Shutdown", zap.Error(err))
	}

	logger.Info("server gracefully stopped")
}
