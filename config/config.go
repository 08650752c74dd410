package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
)

const (
	DefaultPhotosSubDir     = "photos"
	DefaultThumbnailsSubDir = "thumbnails"
)

const (
	defaultPhotoQueueSize   = 100
	defaultNumPhotoWorkers  = 2
	defaultThumbnailMaxSize = 300
	defaultMaxUploadBytes   = 20 << 20 // 20 MiB
)

type Config struct {
	// database path
	DatabasePath string

	// media storage configuration
	MediaStoragePath string // primary root for photo assets
	PhotosPath       string // full-calculated path for original photos
	ThumbnailsPath   string // full-calculated path for thumbnails

	// thumbnail generation settings
	ThumbnailMaxSize int

	// worker settings
	PhotoQueueSize  int
	NumPhotoWorkers int

	// upload limit in bytes
	MaxUploadBytes int64

	// CORS
	AllowedOrigin string
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(envVar string, defaultVal int) int {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		log.Printf("warning: invalid value for %s (%q), using default %d", envVar, valStr, defaultVal)
		return defaultVal
	}
	return val
}

// LoadConfig builds the configuration from environment variables with
// sensible defaults for local use.
func LoadConfig() (Config, error) {
	cfg := Config{
		DatabasePath:     getEnvOrDefault("DATABASE_PATH", "./data/familytree.db"),
		MediaStoragePath: getEnvOrDefault("MEDIA_STORAGE_PATH", "./data/media"),
		ThumbnailMaxSize: getEnvIntOrDefault("THUMBNAIL_MAX_SIZE", defaultThumbnailMaxSize),
		PhotoQueueSize:   getEnvIntOrDefault("PHOTO_QUEUE_SIZE", defaultPhotoQueueSize),
		NumPhotoWorkers:  getEnvIntOrDefault("NUM_PHOTO_WORKERS", defaultNumPhotoWorkers),
		MaxUploadBytes:   int64(getEnvIntOrDefault("MAX_UPLOAD_BYTES", defaultMaxUploadBytes)),
		AllowedOrigin:    getEnvOrDefault("ALLOWED_ORIGIN", "http://localhost:5173"),
	}

	if cfg.ThumbnailMaxSize <= 0 {
		return cfg, fmt.Errorf("THUMBNAIL_MAX_SIZE must be positive, got %d", cfg.ThumbnailMaxSize)
	}

	cfg.PhotosPath = filepath.Join(cfg.MediaStoragePath, DefaultPhotosSubDir)
	cfg.ThumbnailsPath = filepath.Join(cfg.MediaStoragePath, DefaultThumbnailsSubDir)

	return cfg, nil
}
