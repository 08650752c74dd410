package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

var supportedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

// IsRasterImage checks if the filename has a common raster image extension
func IsRasterImage(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return supportedImageExtensions[ext]
}

// UniqueImageFilename returns a UUID-based filename preserving the original
// extension (lowercased), so uploaded photos never collide.
func UniqueImageFilename(originalFilename string) string {
	ext := strings.ToLower(filepath.Ext(originalFilename))
	if ext == "" {
		ext = ".jpg"
	}
	return uuid.NewString() + ext
}

// GenerateThumbnail creates a fitted JPEG thumbnail with a UUID filename and
// returns the full path where the thumbnail was saved.
func GenerateThumbnail(originalImagePath, thumbnailDir string, maxWidth, maxHeight int) (string, error) {
	if err := os.MkdirAll(thumbnailDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create thumbnail directory %s: %w", thumbnailDir, err)
	}

	img, err := imaging.Open(originalImagePath)
	if err != nil {
		return "", fmt.Errorf("failed to open image %s: %w", originalImagePath, err)
	}

	thumb := imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos)

	thumbFilename := uuid.NewString() + ".jpg"
	thumbnailSavePath := filepath.Join(thumbnailDir, thumbFilename)

	if err := imaging.Save(thumb, thumbnailSavePath, imaging.JPEGQuality(85)); err != nil {
		return "", fmt.Errorf("failed to save thumbnail %s: %w", thumbnailSavePath, err)
	}

	return thumbnailSavePath, nil
}
