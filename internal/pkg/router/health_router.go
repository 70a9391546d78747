package router

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/PixelBoard/internal/pkg/cache"
)

const healthTimeout = 2 * time.Second

// HealthRouter serves /healthz with the state of the database, the cache and
// the content directory.
type HealthRouter struct {
	deps Dependencies
}

func (h HealthRouter) InstallRouter(app *fiber.App) {
	app.Get("/healthz", h.handle)
}

func (h HealthRouter) handle(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), healthTimeout)
	defer cancel()

	checks := fiber.Map{}
	healthy := true
	record := func(name string, err error) {
		if err != nil {
			log.Warnf("[Health] %s check failed: %v", name, err)
			checks[name] = err.Error()
			healthy = false
			return
		}
		checks[name] = "ok"
	}

	if h.deps.DB != nil {
		sqlDB, err := h.deps.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		record("database", err)
	}
	record("cache", cache.Ping(ctx))
	if h.deps.ContentDir != nil {
		record("content_dir", h.deps.ContentDir.HealthCheck())
	}

	status := fiber.StatusOK
	state := "ok"
	if !healthy {
		status = fiber.StatusServiceUnavailable
		state = "degraded"
	}
	return c.Status(status).JSON(fiber.Map{"status": state, "checks": checks})
}

func NewHealthRouter(deps Dependencies) *HealthRouter {
	return &HealthRouter{deps: deps}
}
