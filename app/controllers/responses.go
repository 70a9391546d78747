package controllers

import (
	"github.com/ManuelReschke/PixelBoard/app/models"
)

// ImageResponse is the JSON shape of an image. UploadedBy is null when the
// owner no longer exists.
type ImageResponse struct {
	ID          uint     `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	CreatedAt   string   `json:"created_at"`
	IsPublic    bool     `json:"is_public"`
	Captions    []string `json:"captions"`
	UploadedBy  *uint    `json:"uploaded_by"`
}

func NewImageResponse(img models.Image) ImageResponse {
	captions := img.Captions
	if captions == nil {
		captions = []string{}
	}
	var owner *uint
	if img.User != nil {
		owner = img.UserID
	}
	return ImageResponse{
		ID:          img.ID,
		Title:       img.Title,
		Description: img.Description,
		URL:         img.URL(),
		CreatedAt:   formatTime(img.CreatedAt),
		IsPublic:    img.IsPublic,
		Captions:    captions,
		UploadedBy:  owner,
	}
}

// UserResponse is the admin view of an account. The password hash is never
// part of it.
type UserResponse struct {
	ID          uint        `json:"id"`
	Username    string      `json:"username"`
	Email       string      `json:"email"`
	Role        string      `json:"role"`
	CreatedAt   string      `json:"created_at"`
	LastLoginAt interface{} `json:"last_login_at"`
}

func NewUserResponse(u models.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Role:        u.Role,
		CreatedAt:   formatTime(u.CreatedAt),
		LastLoginAt: formatTimePtr(u.LastLoginAt),
	}
}
