package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// FileRoute is the public route prefix under which stored files are served.
const FileRoute = "/api/images/file/"

type Image struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"type:varchar(255);not null" json:"title" validate:"required,max=255"`
	Description string `gorm:"type:text" json:"description"`
	// FilePath is the generated storage name inside the content directory.
	FilePath string `gorm:"type:varchar(255);uniqueIndex;not null" json:"file_path"`
	// UserID stays set after the owner is deleted; the reference then dangles.
	UserID *uint `gorm:"index" json:"uploaded_by"`
	User   *User `gorm:"foreignKey:UserID" json:"-"`
	// IsPublic has no column default so that an explicit false survives Create.
	IsPublic  bool           `gorm:"not null" json:"is_public"`
	Captions  []string       `gorm:"serializer:json;type:json" json:"captions"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// URL returns the public retrieval path of the stored file.
func (i *Image) URL() string {
	return FileRoute + i.FilePath
}

// AppendCaption adds a caption at the end, initializing the list if needed.
func (i *Image) AppendCaption(caption string) {
	if i.Captions == nil {
		i.Captions = []string{}
	}
	i.Captions = append(i.Captions, caption)
}

func (i *Image) String() string {
	return fmt.Sprintf("image #%d (%s)", i.ID, i.FilePath)
}
