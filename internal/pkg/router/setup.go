package router

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ManuelReschke/PixelBoard/app/controllers"
	"github.com/ManuelReschke/PixelBoard/internal/pkg/config"
	"github.com/ManuelReschke/PixelBoard/internal/pkg/middleware"
	"github.com/ManuelReschke/PixelBoard/internal/pkg/storage"
)

// Router installs a group of routes on the app.
type Router interface {
	InstallRouter(app *fiber.App)
}

// Dependencies are the wired services and handlers the routes need.
type Dependencies struct {
	Auth           *middleware.Authenticator
	AuthCtrl       *controllers.AuthController
	ImageCtrl      *controllers.ImageController
	AdminCtrl      *controllers.AdminController
	RateLimit      config.RateLimit
	LimiterStorage fiber.Storage // nil selects the in-memory limiter
	DB             *gorm.DB
	ContentDir     *storage.ContentDir
}

func InstallRouter(app *fiber.App, deps Dependencies) {
	setup(app, NewHealthRouter(deps), NewApiRouter(deps))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
