package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ImageExtensions are the file types accepted as covers.
var ImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp"}

// IsImageFile reports whether name has an accepted image extension.
func IsImageFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range ImageExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// CoverFileValidator checks a local file picked as a cover upload.
type CoverFileValidator struct {
	paths    *PathPolicy
	MaxBytes int64
}

func NewCoverFileValidator(maxBytes int64) *CoverFileValidator {
	return &CoverFileValidator{paths: OpenPolicy(), MaxBytes: maxBytes}
}

// Validate returns the cleaned absolute path of an existing, regular image
// file no larger than MaxBytes.
func (v *CoverFileValidator) Validate(path string) (string, error) {
	cleaned, err := v.paths.File(path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(cleaned)
	if err != nil {
		return "", fmt.Errorf("cannot read file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("not a regular file: %s", filepath.Base(cleaned))
	}
	if info.Size() == 0 {
		return "", fmt.Errorf("selected file is empty")
	}
	if v.MaxBytes > 0 && info.Size() > v.MaxBytes {
		return "", fmt.Errorf("file too large (%d bytes, max %d)", info.Size(), v.MaxBytes)
	}
	if !IsImageFile(cleaned) {
		return "", fmt.Errorf("unsupported image type: %s", filepath.Ext(cleaned))
	}
	return cleaned, nil
}
