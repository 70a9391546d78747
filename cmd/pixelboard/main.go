package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/PixelBoard/app/repository"
	"github.com/ManuelReschke/PixelBoard/internal/pkg/cache"
	"github.com/ManuelReschke/PixelBoard/internal/pkg/config"
	"github.com/ManuelReschke/PixelBoard/internal/pkg/database"
	"github.com/ManuelReschke/PixelBoard/internal/pkg/env"
	"github.com/ManuelReschke/PixelBoard/internal/pkg/server"
	"github.com/ManuelReschke/PixelBoard/internal/pkg/storage"
)

func main() {
	app, cfg := NewApplication()
	err := app.Listen(cfg.Addr())
	log.Fatal(err)
}

func NewApplication() (*fiber.App, *config.Config) {
	env.SetupEnvFile()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	db, err := database.SetupDatabase(cfg.DB)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	repository.InitializeFactory(db)

	contentDir, err := storage.NewContentDir(cfg.ContentDir)
	if err != nil {
		log.Fatalf("Failed to prepare content directory: %v", err)
	}
	log.Printf("Content directory: %s", contentDir.Root())

	// the limiter falls back to memory when the cache is absent or unreachable
	var limiterStorage fiber.Storage
	if client := cache.SetupCache(cfg.Cache); client != nil {
		if err := cache.Ping(context.Background()); err == nil {
			limiterStorage = cache.NewLimiterStorage(cfg.Cache)
		}
	}

	app, err := server.New(server.Options{
		Config:         cfg,
		DB:             db,
		Repositories:   repository.GetGlobalRepositories(),
		ContentDir:     contentDir,
		LimiterStorage: limiterStorage,
		AccessLog:      true,
	})
	if err != nil {
		log.Fatalf("Failed to build application: %v", err)
	}

	return app, cfg
}
