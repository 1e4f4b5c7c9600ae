package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/forkful/recipebot/config"
	"github.com/forkful/recipebot/internal/bot"
	"github.com/forkful/recipebot/internal/database"
	"github.com/forkful/recipebot/internal/server"
	"github.com/forkful/recipebot/internal/service"
	"github.com/forkful/recipebot/internal/storage"
	"github.com/forkful/recipebot/internal/telegram"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	ctx := context.Background()

	store := newStorage(cfg)
	if err := store.Initialize(ctx); err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	llmService, err := service.NewLLMService()
	if err != nil {
		log.Fatalf("Failed to initialize LLM service: %v", err)
	}

	sessions, closeSessions := newSessionStore(cfg)
	controller := bot.NewController(store, llmService, sessions, newExporter(ctx, cfg, store))

	client := telegram.NewClient(cfg.TelegramBotToken)
	if cfg.WebhookURL != "" {
		if err := client.SetWebhook(ctx, cfg.WebhookURL, cfg.WebhookSecret); err != nil {
			log.Fatalf("Failed to register webhook: %v", err)
		}
		log.Printf("Webhook set to: %s", cfg.WebhookURL)
	}

	srv := server.NewServer(controller, client, cfg.WebhookSecret)

	errChan := make(chan error, 1)
	go func() {
		log.Printf("Starting server on port %s...", cfg.ServerPort)
		errChan <- srv.Start(cfg.ServerPort)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-quit:
		log.Printf("Received signal: %v", sig)
	}

	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	closeSessions()
	if err := store.Close(shutdownCtx); err != nil {
		log.Printf("Storage shutdown error: %v", err)
	}
	log.Println("Stopped")
}

func newStorage(cfg *config.Config) storage.Storage {
	switch cfg.StorageType {
	case config.StorageFile:
		return storage.NewFileStorage(cfg.StoragePath)
	case config.StoragePersistent:
		return storage.NewPersistentFileStorage(cfg.StoragePath)
	default:
		return storage.NewPostgresStorage(cfg.DatabaseURL)
	}
}

func newSessionStore(cfg *config.Config) (bot.SessionStore, func()) {
	if cfg.SessionStore == config.SessionRedis {
		client, err := database.NewRedisClient(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		return bot.NewRedisSessionStore(client, bot.DefaultSessionTTL), func() {
			if err := client.Close(); err != nil {
				log.Printf("Redis shutdown error: %v", err)
			}
		}
	}

	store := bot.NewMemorySessionStore(bot.DefaultSessionTTL)
	return store, store.Close
}

func newExporter(ctx context.Context, cfg *config.Config, store storage.Storage) bot.Exporter {
	if cfg.S3Bucket == "" {
		log.Printf("S3_BUCKET_NAME not set, /export disabled")
		return nil
	}
	s3cfg, err := config.NewS3Config(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize S3: %v", err)
	}
	return service.NewExportService(s3cfg, store)
}
