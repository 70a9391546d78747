package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/spf13/afero"
)

var (
	ErrInvalidName  = errors.New("invalid file name")
	ErrFileNotFound = errors.New("file not found")
)

// ContentDir is the flat namespace holding uploaded payloads. Names are
// generated by the caller and unique, so no locking is needed.
type ContentDir struct {
	fs   afero.Fs
	root string
}

// FileOperation represents a file operation result
type FileOperation struct {
	Success  bool          `json:"success"`
	FileName string        `json:"file_name"`
	Bytes    int64         `json:"bytes"`
	Duration time.Duration `json:"duration"`
}

// NewContentDir roots the content directory at dir on the OS filesystem,
// creating it if needed.
func NewContentDir(dir string) (*ContentDir, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create content directory %s: %w", dir, err)
	}
	return NewContentDirFs(afero.NewBasePathFs(afero.NewOsFs(), dir), dir), nil
}

// NewContentDirFs wraps an existing filesystem; root is informational.
func NewContentDirFs(fs afero.Fs, root string) *ContentDir {
	return &ContentDir{fs: fs, root: root}
}

// Root returns the configured directory.
func (cd *ContentDir) Root() string {
	return cd.root
}

// ValidateName rejects anything that is not a single flat path element.
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." {
		return ErrInvalidName
	}
	if strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return ErrInvalidName
	}
	if filepath.Base(name) != name {
		return ErrInvalidName
	}
	return nil
}

// SaveFile writes data under name. A partially written file is removed.
func (cd *ContentDir) SaveFile(data io.Reader, name string) (*FileOperation, error) {
	startTime := time.Now()
	operation := &FileOperation{FileName: name}

	if err := ValidateName(name); err != nil {
		return operation, err
	}

	file, err := cd.fs.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return operation, fmt.Errorf("failed to create file %s: %w", name, err)
	}

	bytesWritten, err := io.Copy(file, data)
	closeErr := file.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = cd.fs.Remove(name)
		return operation, fmt.Errorf("failed to write file %s: %w", name, err)
	}

	operation.Success = true
	operation.Bytes = bytesWritten
	operation.Duration = time.Since(startTime)

	log.Debugf("[ContentDir] Saved file %s (%d bytes) in %v", name, bytesWritten, operation.Duration)

	return operation, nil
}

// DeleteFile removes name. Deleting a file that does not exist succeeds.
func (cd *ContentDir) DeleteFile(name string) (*FileOperation, error) {
	startTime := time.Now()
	operation := &FileOperation{FileName: name}

	if err := ValidateName(name); err != nil {
		return operation, err
	}

	if info, err := cd.fs.Stat(name); err == nil {
		operation.Bytes = info.Size()
	}

	if err := cd.fs.Remove(name); err != nil && !os.IsNotExist(err) {
		return operation, fmt.Errorf("failed to delete file %s: %w", name, err)
	}

	operation.Success = true
	operation.Duration = time.Since(startTime)

	log.Debugf("[ContentDir] Deleted file %s (%d bytes) in %v", name, operation.Bytes, operation.Duration)

	return operation, nil
}

// Open returns a reader for name and its size.
func (cd *ContentDir) Open(name string) (afero.File, int64, error) {
	if err := ValidateName(name); err != nil {
		return nil, 0, err
	}
	f, err := cd.fs.Open(name)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, ErrFileNotFound
		}
		return nil, 0, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, err
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, 0, ErrFileNotFound
	}
	return f, info.Size(), nil
}

// Exists reports whether name is present.
func (cd *ContentDir) Exists(name string) bool {
	if ValidateName(name) != nil {
		return false
	}
	ok, err := afero.Exists(cd.fs, name)
	return err == nil && ok
}

// HealthCheck verifies the directory accepts writes.
func (cd *ContentDir) HealthCheck() error {
	marker := fmt.Sprintf(".healthcheck-%d", time.Now().UnixNano())
	if err := afero.WriteFile(cd.fs, marker, []byte("ok"), 0644); err != nil {
		return fmt.Errorf("content directory not writable: %w", err)
	}
	return cd.fs.Remove(marker)
}
