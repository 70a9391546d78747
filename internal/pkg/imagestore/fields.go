package imagestore

import (
	"strings"

	"github.com/ManuelReschke/PixelBoard/app/models"
	"github.com/ManuelReschke/PixelBoard/internal/pkg/apperror"
)

// mutable image fields; everything else in an update payload is ignored
const (
	fieldTitle       = "title"
	fieldDescription = "description"
	fieldIsPublic    = "is_public"
)

func applyImageChanges(image *models.Image, changes map[string]any) error {
	for key, value := range changes {
		switch key {
		case fieldTitle:
			title, ok := value.(string)
			if !ok {
				return apperror.Validation("title must be a string")
			}
			title = strings.TrimSpace(title)
			if title == "" {
				return apperror.Validation("title must not be empty")
			}
			if len(title) > 255 {
				return apperror.Validation("title must be at most 255 characters")
			}
			image.Title = title
		case fieldDescription:
			description, ok := value.(string)
			if !ok {
				return apperror.Validation("description must be a string")
			}
			image.Description = description
		case fieldIsPublic:
			public, ok := value.(bool)
			if !ok {
				return apperror.Validation("is_public must be a boolean")
			}
			image.IsPublic = public
		}
	}
	return nil
}
