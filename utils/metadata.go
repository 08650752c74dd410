package utils

import (
	"fmt"
	"image"
	"log"
	"os"
	"strings"

	"github.com/rwcarlsen/goexif/exif"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// PhotoMetadata holds the subset of image metadata worth keeping for a
// person photo.
type PhotoMetadata struct {
	Width       *int    `json:"width,omitempty"`
	Height      *int    `json:"height,omitempty"`
	TakenAt     *int64  `json:"taken_at,omitempty"` // Unix timestamp from EXIF DateTimeOriginal
	CameraMake  *string `json:"camera_make,omitempty"`
	CameraModel *string `json:"camera_model,omitempty"`
}

// helper to safely get a string tag, trimming null terminators
func getString(exifData *exif.Exif, tagName exif.FieldName) *string {
	tag, err := exifData.Get(tagName)
	if err != nil || tag == nil {
		return nil
	}
	val := strings.TrimRight(tag.String(), "\x00")
	val = strings.Trim(val, "\"")
	if val == "" {
		return nil
	}
	return &val
}

// GetPhotoMetadata extracts dimensions and basic EXIF data from an uploaded
// photo. Missing EXIF data is not an error; whatever was found is returned.
func GetPhotoMetadata(filePath string) (*PhotoMetadata, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("metadata: failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	meta := &PhotoMetadata{}

	config, _, err := image.DecodeConfig(file)
	if err == nil {
		w, h := config.Width, config.Height
		meta.Width = &w
		meta.Height = &h
	} else {
		log.Printf("metadata: could not decode dimensions of %s: %v", filePath, err)
	}

	if _, err := file.Seek(0, 0); err != nil {
		return nil, fmt.Errorf("metadata: failed to seek file %s: %w", filePath, err)
	}

	exifData, err := exif.Decode(file)
	if err != nil {
		// file might just lack EXIF data
		return meta, nil
	}

	meta.CameraMake = getString(exifData, exif.Make)
	meta.CameraModel = getString(exifData, exif.Model)
	if taken, err := exifData.DateTime(); err == nil {
		unix := taken.Unix()
		meta.TakenAt = &unix
	}

	return meta, nil
}
