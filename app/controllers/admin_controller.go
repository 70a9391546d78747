package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/PixelBoard/internal/pkg/accounts"
	"github.com/ManuelReschke/PixelBoard/internal/pkg/apperror"
	"github.com/ManuelReschke/PixelBoard/internal/pkg/imagestore"
	"github.com/ManuelReschke/PixelBoard/internal/pkg/moderation"
	"github.com/ManuelReschke/PixelBoard/internal/pkg/pagination"
)

// AdminController serves /api/admin. Every route sits behind
// middleware.RequireAdmin, so handlers do no role checks of their own.
type AdminController struct {
	accounts   *accounts.Service
	images     *imagestore.Service
	moderation *moderation.Service
}

func NewAdminController(accounts *accounts.Service, images *imagestore.Service, moderation *moderation.Service) *AdminController {
	return &AdminController{accounts: accounts, images: images, moderation: moderation}
}

type reportStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (ac *AdminController) HandleListUsers(c *fiber.Ctx) error {
	page, perPage := pageQuery(c)
	result, err := ac.accounts.List(page, perPage)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(pagination.Map(result, NewUserResponse))
}

// HandleUpdateUser accepts username, email and role; other keys are ignored.
func (ac *AdminController) HandleUpdateUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return apperror.Respond(c, err)
	}
	changes, err := bindChanges(c)
	if err != nil {
		return apperror.Respond(c, err)
	}

	user, err := ac.accounts.Update(id, changes)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(NewUserResponse(*user))
}

func (ac *AdminController) HandleDeleteUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return apperror.Respond(c, err)
	}
	if err := ac.accounts.Delete(id); err != nil {
		return apperror.Respond(c, err)
	}
	return message(c, fiber.StatusOK, "user deleted")
}

func (ac *AdminController) HandleListImages(c *fiber.Ctx) error {
	page, perPage := pageQuery(c)
	result, err := ac.images.ListAll(page, perPage)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(pagination.Map(result, NewImageResponse))
}

func (ac *AdminController) HandleDeleteImage(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return apperror.Respond(c, err)
	}
	if err := ac.images.AdminDelete(id); err != nil {
		return apperror.Respond(c, err)
	}
	return message(c, fiber.StatusOK, "image deleted")
}

// HandleListReports lists reports, optionally filtered by ?status=.
func (ac *AdminController) HandleListReports(c *fiber.Ctx) error {
	page, perPage := pageQuery(c)
	result, err := ac.moderation.ListReports(page, perPage, c.Query("status"))
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(result)
}

func (ac *AdminController) HandleUpdateReport(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return apperror.Respond(c, err)
	}
	var req reportStatusRequest
	if err := bindJSON(c, &req); err != nil {
		return apperror.Respond(c, err)
	}

	report, err := ac.moderation.UpdateStatus(id, req.Status)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(report)
}

func (ac *AdminController) HandleStats(c *fiber.Ctx) error {
	stats, err := ac.moderation.Stats()
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(stats)
}
