package upload

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

var (
	ErrUnsupportedType = errors.New("only the following image formats are supported: PNG, JPG, JPEG, GIF")
	ErrScriptable      = errors.New("HTML, XML and SVG content is not allowed")
	ErrMissingFilename = errors.New("no file selected")
)

var allowedExt = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

// SniffLen is how many leading bytes ValidateImageBySniff looks at.
const SniffLen = 512

// AllowedFile reports whether filename carries a supported image extension.
func AllowedFile(filename string) bool {
	return allowedExt[strings.ToLower(filepath.Ext(filename))]
}

// ValidateImageBySniff checks the provided filename (extension) and the first
// bytes (head). The extension decides acceptance; the sniff only rejects
// payloads that browsers would render as markup.
func ValidateImageBySniff(filename string, head []byte) (string, error) {
	if strings.TrimSpace(filename) == "" {
		return "", ErrMissingFilename
	}
	if !AllowedFile(filename) {
		return "", ErrUnsupportedType
	}

	detected := http.DetectContentType(head)

	if strings.HasPrefix(detected, "text/html") || strings.HasPrefix(detected, "application/xhtml") {
		return "", ErrScriptable
	}
	if strings.HasPrefix(detected, "text/xml") || strings.HasPrefix(detected, "application/xml") || detected == "image/svg+xml" {
		return "", ErrScriptable
	}

	return detected, nil
}

// SanitizeFilename reduces an uploaded name to a safe slug plus its lowercased
// extension, e.g. "My Cat!.PNG" -> "my-cat.png".
func SanitizeFilename(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	ext := strings.ToLower(filepath.Ext(base))
	name := slug.Make(strings.TrimSuffix(base, filepath.Ext(base)))
	if name == "" {
		name = "image"
	}
	return name + ext
}

// StorageName returns a globally unique name for the content directory.
func StorageName(filename string) string {
	return uuid.New().String() + "_" + SanitizeFilename(filename)
}
