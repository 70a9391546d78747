package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/ManuelReschke/PixelBoard/internal/pkg/middleware"
)

type ApiRouter struct {
	deps Dependencies
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	d := h.deps
	api := app.Group("/api", limiter.New(limiter.Config{
		Max:        d.RateLimit.Max,
		Expiration: d.RateLimit.Expiration,
		Storage:    d.LimiterStorage,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":   "too_many_requests",
				"message": "rate limit exceeded",
			})
		},
	}))
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	auth := api.Group("/auth")
	auth.Post("/register", d.AuthCtrl.HandleRegister)
	auth.Post("/login", d.AuthCtrl.HandleLogin)

	images := api.Group("/images")
	images.Get("/", d.ImageCtrl.HandleListPublic)
	images.Get("/file/:filename", d.ImageCtrl.HandleServeFile)
	images.Post("/", d.Auth.RequireAuth, d.ImageCtrl.HandleUpload)
	images.Get("/my-images", d.Auth.RequireAuth, d.ImageCtrl.HandleListMine)
	images.Put("/:id", d.Auth.RequireAuth, d.ImageCtrl.HandleUpdate)
	images.Post("/:id/caption", d.Auth.RequireAuth, d.ImageCtrl.HandleAddCaption)
	images.Delete("/:id", d.Auth.RequireAuth, d.ImageCtrl.HandleDelete)
	images.Post("/:id/report", d.Auth.RequireAuth, d.ImageCtrl.HandleReport)

	admin := api.Group("/admin", d.Auth.RequireAuth, middleware.RequireAdmin)
	admin.Get("/users", d.AdminCtrl.HandleListUsers)
	admin.Put("/users/:id", d.AdminCtrl.HandleUpdateUser)
	admin.Delete("/users/:id", d.AdminCtrl.HandleDeleteUser)
	admin.Get("/images", d.AdminCtrl.HandleListImages)
	admin.Delete("/images/:id", d.AdminCtrl.HandleDeleteImage)
	admin.Get("/reports", d.AdminCtrl.HandleListReports)
	admin.Put("/reports/:id", d.AdminCtrl.HandleUpdateReport)
	admin.Get("/stats", d.AdminCtrl.HandleStats)
}

func NewApiRouter(deps Dependencies) *ApiRouter {
	return &ApiRouter{deps: deps}
}
