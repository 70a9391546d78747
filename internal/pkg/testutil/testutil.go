// Package testutil provides fixtures shared by package tests: an isolated
// in-memory sqlite database and an in-memory content directory.
package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ManuelReschke/PixelBoard/app/models"
	"github.com/ManuelReschke/PixelBoard/internal/pkg/config"
	"github.com/ManuelReschke/PixelBoard/internal/pkg/database"
)

// NewDB opens a migrated sqlite database private to the calling test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	cfg := config.DB{
		Driver: "sqlite",
		Path:   fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	}
	db, err := database.Open(cfg, logger.Silent)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql.DB: %v", err)
	}
	// a shared-cache memory database lives as long as one connection is open
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

// NewFs returns an empty in-memory filesystem for a content directory.
func NewFs() afero.Fs {
	return afero.NewMemMapFs()
}

// CreateUser inserts a user with the given role and a fixed password.
func CreateUser(t *testing.T, db *gorm.DB, username, role string) *models.User {
	t.Helper()

	u, err := models.CreateUser(username, username+"@example.com", "password123")
	if err != nil {
		t.Fatalf("build user %s: %v", username, err)
	}
	u.Role = role
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

// PNG is a minimal valid PNG payload.
var PNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
	0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4,
	0x89, 0x00, 0x00, 0x00, 0x0a, 0x49, 0x44, 0x41,
	0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00,
	0x00, 0x00, 0x00, 0x49, 0x45, 0x4e, 0x44, 0xae,
	0x42, 0x60, 0x82,
}
