package controllers

import (
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/PixelBoard/internal/pkg/apperror"
	"github.com/ManuelReschke/PixelBoard/internal/pkg/pagination"
)

var validate = validator.New()

// parseID reads a positive numeric route parameter.
func parseID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperror.Validation("invalid %s", name)
	}
	return uint(id), nil
}

// pageQuery reads ?page and ?per_page; pagination.New clamps them.
func pageQuery(c *fiber.Ctx) (int, int) {
	return c.QueryInt("page", 1), c.QueryInt("per_page", pagination.DefaultPerPage)
}

// bindJSON parses the body into dst and runs its validate tags.
func bindJSON(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return apperror.Validation("invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			return apperror.Validation("%s is required", verrs[0].Field())
		}
		return apperror.Validation("invalid request body")
	}
	return nil
}

// bindChanges parses a partial-update body into a map.
func bindChanges(c *fiber.Ctx) (map[string]any, error) {
	changes := map[string]any{}
	if err := c.BodyParser(&changes); err != nil {
		return nil, apperror.Validation("invalid request body")
	}
	return changes, nil
}

func message(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"message": msg})
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}
