package repository

import (
	"github.com/ManuelReschke/PixelBoard/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	UpdateFields(id uint, fields map[string]any) error
	Delete(id uint) error
	List(offset, limit int) ([]models.User, error)
	Count() (int64, error)
}

// ImageRepository defines the interface for image-related database operations
type ImageRepository interface {
	Create(image *models.Image) error
	GetByID(id uint) (*models.Image, error)
	GetByFilePath(filePath string) (*models.Image, error)
	GetByUserID(userID uint, offset, limit int) ([]models.Image, error)
	CountByUserID(userID uint) (int64, error)
	GetPublicImages(offset, limit int) ([]models.Image, error)
	CountPublic() (int64, error)
	List(offset, limit int) ([]models.Image, error)
	Count() (int64, error)
	Update(image *models.Image) error
	Delete(id uint) error
}

// ReportRepository defines the interface for moderation report operations
type ReportRepository interface {
	Create(report *models.Report) error
	GetByID(id uint) (*models.Report, error)
	// List returns reports with Image and Reporter preloaded; a deleted image
	// or reporter leaves the association nil. An empty status means all.
	List(status string, offset, limit int) ([]models.Report, error)
	Count(status string) (int64, error)
	UpdateStatus(id uint, status string) error
}

// Repositories struct holds all repository instances
type Repositories struct {
	User   UserRepository
	Image  ImageRepository
	Report ReportRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:   NewUserRepository(db),
		Image:  NewImageRepository(db),
		Report: NewReportRepository(db),
	}
}
