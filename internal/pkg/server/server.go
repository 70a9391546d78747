// Package server wires repositories, services and controllers into a fiber app.
package server

import (
	"context"
	"fmt"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"

	"github.com/ManuelReschke/PixelBoard/app/controllers"
	"github.com/ManuelReschke/PixelBoard/docs"
	"github.com/ManuelReschke/PixelBoard/app/repository"
	"github.com/ManuelReschke/PixelBoard/internal/pkg/accounts"
	"github.com/ManuelReschke/PixelBoard/internal/pkg/apperror"
	"github.com/ManuelReschke/PixelBoard/internal/pkg/config"
	"github.com/ManuelReschke/PixelBoard/internal/pkg/imagestore"
	"github.com/ManuelReschke/PixelBoard/internal/pkg/middleware"
	"github.com/ManuelReschke/PixelBoard/internal/pkg/moderation"
	"github.com/ManuelReschke/PixelBoard/internal/pkg/router"
	"github.com/ManuelReschke/PixelBoard/internal/pkg/security"
	"github.com/ManuelReschke/PixelBoard/internal/pkg/storage"
)

// Options carries the infrastructure created by the caller.
type Options struct {
	Config         *config.Config
	DB             *gorm.DB
	Repositories   *repository.Repositories // built from DB when nil
	ContentDir     *storage.ContentDir
	LimiterStorage fiber.Storage
	// AccessLog enables the fiber request logger.
	AccessLog bool
}

// New builds the HTTP application.
func New(opts Options) (*fiber.App, error) {
	cfg := opts.Config

	signer, err := security.NewSigner(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL)
	if err != nil {
		return nil, err
	}

	repos := opts.Repositories
	if repos == nil {
		repos = repository.NewFactory(opts.DB).GetRepositories()
	}

	imageService := imagestore.NewService(repos.Image, repos.User, opts.ContentDir)
	moderationService := moderation.NewService(repos)
	accountService := accounts.NewService(repos.User, signer)

	app := fiber.New(fiber.Config{
		AppName:      "PixelBoard",
		ErrorHandler: apperror.ErrorHandler,
		BodyLimit:    cfg.MaxUploadBytes,
	})

	// recovery and logging
	app.Use(recover.New())
	if opts.AccessLog {
		app.Use(logger.New())
	}

	// SWAGGER / OPENAPI
	if _, err := docs.Load(context.Background()); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}
	app.Use(swagger.New(swagger.Config{
		BasePath:    "/docs/api/",
		FilePath:    "openapi.yml",
		FileContent: docs.OpenAPI,
		Path:        "v1",
		Title:       "PixelBoard API",
	}))

	router.InstallRouter(app, router.Dependencies{
		Auth:           middleware.NewAuthenticator(signer, repos.User),
		AuthCtrl:       controllers.NewAuthController(accountService),
		ImageCtrl:      controllers.NewImageController(imageService, moderationService),
		AdminCtrl:      controllers.NewAdminController(accountService, imageService, moderationService),
		RateLimit:      cfg.RateLimit,
		LimiterStorage: opts.LimiterStorage,
		DB:             opts.DB,
		ContentDir:     opts.ContentDir,
	})

	return app, nil
}
