package controllers

import (
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/PixelBoard/internal/pkg/apperror"
	"github.com/ManuelReschke/PixelBoard/internal/pkg/imagestore"
	"github.com/ManuelReschke/PixelBoard/internal/pkg/moderation"
	"github.com/ManuelReschke/PixelBoard/internal/pkg/pagination"
	"github.com/ManuelReschke/PixelBoard/internal/pkg/usercontext"
)

const defaultTitle = "Untitled"

type ImageController struct {
	images     *imagestore.Service
	moderation *moderation.Service
}

func NewImageController(images *imagestore.Service, moderation *moderation.Service) *ImageController {
	return &ImageController{images: images, moderation: moderation}
}

type captionRequest struct {
	Caption string `json:"caption" validate:"required"`
}

type reportRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// HandleUpload accepts a multipart upload with the fields file, title,
// description and is_public.
func (ic *ImageController) HandleUpload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return apperror.Respond(c, apperror.Validation("no file part"))
	}
	if fileHeader.Filename == "" {
		return apperror.Respond(c, apperror.Validation("no file selected"))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return apperror.Respond(c, apperror.Storage(err, "failed to read upload"))
	}
	defer file.Close()

	image, err := ic.images.Upload(imagestore.UploadInput{
		Filename:    fileHeader.Filename,
		Content:     file,
		Title:       c.FormValue("title", defaultTitle),
		Description: c.FormValue("description"),
		OwnerID:     usercontext.GetUserID(c),
		IsPublic:    strings.ToLower(c.FormValue("is_public", "true")) == "true",
	})
	if err != nil {
		return apperror.Respond(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(NewImageResponse(*image))
}

// HandleServeFile streams a stored file by its storage name.
func (ic *ImageController) HandleServeFile(c *fiber.Ctx) error {
	name := c.Params("filename")
	rc, size, err := ic.images.Open(name)
	if err != nil {
		return apperror.Respond(c, err)
	}

	c.Type(strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), "."))
	c.Set(fiber.HeaderXContentTypeOptions, "nosniff")
	c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
	return c.SendStream(rc, int(size))
}

// HandleListPublic lists public images, newest first.
func (ic *ImageController) HandleListPublic(c *fiber.Ctx) error {
	page, perPage := pageQuery(c)
	result, err := ic.images.ListPublic(page, perPage)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(pagination.Map(result, NewImageResponse))
}

// HandleListMine lists all images of the caller.
func (ic *ImageController) HandleListMine(c *fiber.Ctx) error {
	page, perPage := pageQuery(c)
	result, err := ic.images.ListByOwner(usercontext.GetUserID(c), page, perPage)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(pagination.Map(result, NewImageResponse))
}

// HandleUpdate applies a partial update of title, description or is_public.
func (ic *ImageController) HandleUpdate(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return apperror.Respond(c, err)
	}
	changes, err := bindChanges(c)
	if err != nil {
		return apperror.Respond(c, err)
	}

	image, err := ic.images.Update(id, usercontext.GetCaller(c), changes)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(NewImageResponse(*image))
}

func (ic *ImageController) HandleAddCaption(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return apperror.Respond(c, err)
	}
	var req captionRequest
	if err := bindJSON(c, &req); err != nil {
		return apperror.Respond(c, err)
	}

	image, err := ic.images.AddCaption(id, usercontext.GetCaller(c), req.Caption)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(NewImageResponse(*image))
}

func (ic *ImageController) HandleDelete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return apperror.Respond(c, err)
	}
	if err := ic.images.Delete(id, usercontext.GetCaller(c)); err != nil {
		return apperror.Respond(c, err)
	}
	return message(c, fiber.StatusOK, "image deleted")
}

// HandleReport files a moderation report for an image.
func (ic *ImageController) HandleReport(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return apperror.Respond(c, err)
	}
	var req reportRequest
	if err := bindJSON(c, &req); err != nil {
		return apperror.Respond(c, err)
	}

	report, err := ic.moderation.Report(id, usercontext.GetUserID(c), req.Reason)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(report)
}
