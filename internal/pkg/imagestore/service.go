// Package imagestore owns image records and their stored files.
package imagestore

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/ManuelReschke/PixelBoard/app/models"
	"github.com/ManuelReschke/PixelBoard/app/repository"
	"github.com/ManuelReschke/PixelBoard/internal/pkg/apperror"
	"github.com/ManuelReschke/PixelBoard/internal/pkg/pagination"
	"github.com/ManuelReschke/PixelBoard/internal/pkg/policy"
	"github.com/ManuelReschke/PixelBoard/internal/pkg/storage"
	"github.com/ManuelReschke/PixelBoard/internal/pkg/upload"
)

// UploadInput describes one uploaded file and its metadata.
type UploadInput struct {
	Filename    string
	Content     io.Reader
	Title       string
	Description string
	OwnerID     uint
	IsPublic    bool
}

// Service provides the image operations. The content directory is fixed at
// construction.
type Service struct {
	images repository.ImageRepository
	users  repository.UserRepository
	dir    *storage.ContentDir
}

// NewService creates an image store from injected repositories and a content directory.
func NewService(images repository.ImageRepository, users repository.UserRepository, dir *storage.ContentDir) *Service {
	return &Service{images: images, users: users, dir: dir}
}

// Upload validates the payload, writes the file under a fresh unique name and
// then creates the record. Nothing is written when validation fails; a record
// that cannot be created takes its file with it.
func (s *Service) Upload(in UploadInput) (*models.Image, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperror.Validation("title is required")
	}
	if in.Content == nil {
		return nil, apperror.Validation("no file selected")
	}

	head := make([]byte, upload.SniffLen)
	n, err := io.ReadFull(in.Content, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, apperror.Storage(err, "failed to read upload")
	}
	head = head[:n]
	if n == 0 {
		return nil, apperror.Validation("uploaded file is empty")
	}

	if _, err := upload.ValidateImageBySniff(in.Filename, head); err != nil {
		return nil, apperror.Validation("%v", err)
	}

	owner, err := s.users.GetByID(in.OwnerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user %d not found", in.OwnerID)
		}
		return nil, err
	}

	name := upload.StorageName(in.Filename)
	op, err := s.dir.SaveFile(io.MultiReader(bytes.NewReader(head), in.Content), name)
	if err != nil {
		return nil, apperror.Storage(err, "failed to store %s", name)
	}

	ownerID := in.OwnerID
	image := &models.Image{
		Title:       title,
		Description: in.Description,
		FilePath:    name,
		UserID:      &ownerID,
		IsPublic:    in.IsPublic,
		Captions:    []string{},
	}
	if err := s.images.Create(image); err != nil {
		if _, rmErr := s.dir.DeleteFile(name); rmErr != nil {
			log.Warnf("[ImageStore] Orphaned file %s after failed create: %v", name, rmErr)
		}
		return nil, err
	}
	image.User = owner

	log.Infof("[ImageStore] User %d uploaded %s (%d bytes)", in.OwnerID, image, op.Bytes)
	return image, nil
}

// ListPublic returns public images, newest first.
func (s *Service) ListPublic(page, perPage int) (pagination.Page[models.Image], error) {
	p := pagination.New(page, perPage)
	total, err := s.images.CountPublic()
	if err != nil {
		return pagination.Page[models.Image]{}, err
	}
	if p.Beyond(total) {
		return pagination.NewPage[models.Image](nil, total, p), nil
	}
	items, err := s.images.GetPublicImages(p.Offset(), p.Limit())
	if err != nil {
		return pagination.Page[models.Image]{}, err
	}
	return pagination.NewPage(items, total, p), nil
}

// ListByOwner returns every image of ownerID, public or not.
func (s *Service) ListByOwner(ownerID uint, page, perPage int) (pagination.Page[models.Image], error) {
	p := pagination.New(page, perPage)
	total, err := s.images.CountByUserID(ownerID)
	if err != nil {
		return pagination.Page[models.Image]{}, err
	}
	if p.Beyond(total) {
		return pagination.NewPage[models.Image](nil, total, p), nil
	}
	items, err := s.images.GetByUserID(ownerID, p.Offset(), p.Limit())
	if err != nil {
		return pagination.Page[models.Image]{}, err
	}
	return pagination.NewPage(items, total, p), nil
}

// ListAll returns all images. Callers are expected to have passed the admin gate.
func (s *Service) ListAll(page, perPage int) (pagination.Page[models.Image], error) {
	p := pagination.New(page, perPage)
	total, err := s.images.Count()
	if err != nil {
		return pagination.Page[models.Image]{}, err
	}
	if p.Beyond(total) {
		return pagination.NewPage[models.Image](nil, total, p), nil
	}
	items, err := s.images.List(p.Offset(), p.Limit())
	if err != nil {
		return pagination.Page[models.Image]{}, err
	}
	return pagination.NewPage(items, total, p), nil
}

// Get returns the image with the given id.
func (s *Service) Get(id uint) (*models.Image, error) {
	image, err := s.images.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("image %d not found", id)
		}
		return nil, err
	}
	return image, nil
}

// Update applies the allow-listed fields of changes. Unknown and immutable
// keys are ignored.
func (s *Service) Update(id uint, caller policy.Caller, changes map[string]any) (*models.Image, error) {
	image, err := s.authorize(id, caller)
	if err != nil {
		return nil, err
	}
	if err := applyImageChanges(image, changes); err != nil {
		return nil, err
	}
	if err := s.images.Update(image); err != nil {
		return nil, err
	}
	return image, nil
}

// AddCaption appends caption to the image's captions.
func (s *Service) AddCaption(id uint, caller policy.Caller, caption string) (*models.Image, error) {
	if strings.TrimSpace(caption) == "" {
		return nil, apperror.Validation("caption is required")
	}
	image, err := s.authorize(id, caller)
	if err != nil {
		return nil, err
	}
	image.AppendCaption(caption)
	if err := s.images.Update(image); err != nil {
		return nil, err
	}
	return image, nil
}

// Delete removes the record and then its file, for the owner or an admin.
func (s *Service) Delete(id uint, caller policy.Caller) error {
	image, err := s.authorize(id, caller)
	if err != nil {
		return err
	}
	return s.remove(image)
}

// AdminDelete removes any image without an ownership check.
func (s *Service) AdminDelete(id uint) error {
	image, err := s.Get(id)
	if err != nil {
		return err
	}
	return s.remove(image)
}

// Open returns the stored file for streaming. Only files backed by an image
// record are served; orphans left by an interrupted upload or delete are not.
func (s *Service) Open(name string) (io.ReadCloser, int64, error) {
	if err := storage.ValidateName(name); err != nil {
		return nil, 0, apperror.NotFound("file %s not found", name)
	}
	if _, err := s.images.GetByFilePath(name); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, apperror.NotFound("file %s not found", name)
		}
		return nil, 0, err
	}

	f, size, err := s.dir.Open(name)
	if err != nil {
		if errors.Is(err, storage.ErrFileNotFound) || errors.Is(err, storage.ErrInvalidName) {
			return nil, 0, apperror.NotFound("file %s not found", name)
		}
		return nil, 0, apperror.Storage(err, "failed to open %s", name)
	}
	return f, size, nil
}

func (s *Service) remove(image *models.Image) error {
	if err := s.images.Delete(image.ID); err != nil {
		return err
	}
	// the record is gone; a file that cannot be removed is only an orphan
	if _, err := s.dir.DeleteFile(image.FilePath); err != nil {
		log.Warnf("[ImageStore] Failed to delete file of %s: %v", image, err)
	}
	log.Infof("[ImageStore] Deleted %s", image)
	return nil
}

// authorize loads the image and the caller and applies the ownership policy
// with the caller's stored role.
func (s *Service) authorize(id uint, caller policy.Caller) (*models.Image, error) {
	image, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if caller.ID == 0 {
		return nil, apperror.Forbidden("authentication required")
	}
	user, err := s.users.GetByID(caller.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Forbidden("caller %d does not exist", caller.ID)
		}
		return nil, err
	}

	var owner *uint
	if image.User != nil {
		owner = image.UserID
	}
	decision := policy.ModifyGate(policy.Caller{ID: user.ID, Role: user.Role}, owner)
	if !decision.Allowed {
		log.Warnf("[ImageStore] User %d denied on %s: %s", user.ID, image, decision.Reason)
		return nil, apperror.Forbidden("%s", decision.Reason)
	}
	return image, nil
}
