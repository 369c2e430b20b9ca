package collection

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// imageExtensions is the fixed set of file extensions treated as photos.
var imageExtensions = []string{".jpg", ".jpeg", ".png"}

// ImageExtensions returns the recognised photo extensions (lower case).
func ImageExtensions() []string {
	out := make([]string, len(imageExtensions))
	copy(out, imageExtensions)
	return out
}

// IsImage reports whether name has a recognised photo extension,
// ignoring case.
func IsImage(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, known := range imageExtensions {
		if ext == known {
			return true
		}
	}
	return false
}

// ListImages returns the photo files directly inside dir, in directory
// listing order. Subdirectories are not descended into.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !IsImage(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	return files, nil
}
