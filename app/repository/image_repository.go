package repository

import (
	"github.com/ManuelReschke/PixelBoard/app/models"
	"gorm.io/gorm"
)

// imageRepository implements the ImageRepository interface
type imageRepository struct {
	db *gorm.DB
}

// NewImageRepository creates a new image repository instance
func NewImageRepository(db *gorm.DB) ImageRepository {
	return &imageRepository{db: db}
}

// newest first; id breaks ties between rows created in the same instant
func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC").Order("id DESC")
}

// Create creates a new image in the database
func (r *imageRepository) Create(image *models.Image) error {
	return r.db.Create(image).Error
}

// GetByID retrieves an image by its ID
func (r *imageRepository) GetByID(id uint) (*models.Image, error) {
	var image models.Image
	err := r.db.Preload("User").First(&image, id).Error
	if err != nil {
		return nil, err
	}
	return &image, nil
}

// GetByFilePath retrieves an image by its storage name
func (r *imageRepository) GetByFilePath(filePath string) (*models.Image, error) {
	var image models.Image
	err := r.db.Where("file_path = ?", filePath).First(&image).Error
	if err != nil {
		return nil, err
	}
	return &image, nil
}

// GetByUserID retrieves images belonging to a specific user with pagination
func (r *imageRepository) GetByUserID(userID uint, offset, limit int) ([]models.Image, error) {
	var images []models.Image
	err := r.db.Preload("User").Where("user_id = ?", userID).
		Scopes(newestFirst).Offset(offset).Limit(limit).Find(&images).Error
	return images, err
}

// CountByUserID returns the number of images for a specific user
func (r *imageRepository) CountByUserID(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Image{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// GetPublicImages retrieves public images with pagination
func (r *imageRepository) GetPublicImages(offset, limit int) ([]models.Image, error) {
	var images []models.Image
	err := r.db.Preload("User").Where("is_public = ?", true).
		Scopes(newestFirst).Offset(offset).Limit(limit).Find(&images).Error
	return images, err
}

// CountPublic returns the number of public images
func (r *imageRepository) CountPublic() (int64, error) {
	var count int64
	err := r.db.Model(&models.Image{}).Where("is_public = ?", true).Count(&count).Error
	return count, err
}

// List retrieves a paginated list of images
func (r *imageRepository) List(offset, limit int) ([]models.Image, error) {
	var images []models.Image
	err := r.db.Preload("User").
		Scopes(newestFirst).Offset(offset).Limit(limit).Find(&images).Error
	return images, err
}

// Count returns the total number of images
func (r *imageRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Image{}).Count(&count).Error
	return count, err
}

// Update updates an existing image in the database. Associations are not
// written back.
func (r *imageRepository) Update(image *models.Image) error {
	return r.db.Omit("User").Save(image).Error
}

// Delete soft deletes an image by its ID. Reports referencing the image are
// kept and resolve to a missing image afterwards.
func (r *imageRepository) Delete(id uint) error {
	return r.db.Delete(&models.Image{}, id).Error
}
