package subtitlecache

import (
	"context"
	"io"

	"github.com/vidslice/vidslice-api/internal/models"
)

// Service defines the interface for transcription caching operations
type Service interface {
	// Lookup retrieves a cached transcription for the given key, or nil
	// if no entry exists
	Lookup(ctx context.Context, identityKey, model, preset string) (*models.SubtitleCache, error)

	// Store saves a finished SRT file into the cache and records the entry
	Store(ctx context.Context, identityKey, model, preset, language, srtPath string) (*models.SubtitleCache, error)

	// UpdateLastUsed updates the last used timestamp for a cache entry
	UpdateLastUsed(ctx context.Context, cacheID uint) error

	// CleanupOldCache removes cache entries older than specified days
	CleanupOldCache(ctx context.Context, olderThanDays int) error

	// GetCacheStats returns statistics about the cache
	GetCacheStats(ctx context.Context) (*CacheStats, error)
}

// Repository defines the interface for subtitle cache data persistence
type Repository interface {
	// Create creates a new cache entry
	Create(ctx context.Context, cache *models.SubtitleCache) error

	// GetByKey retrieves a cache entry by identity key, model, and preset
	GetByKey(ctx context.Context, identityKey, model, preset string) (*models.SubtitleCache, error)

	// Update updates an existing cache entry
	Update(ctx context.Context, cache *models.SubtitleCache) error

	// Touch updates the last used timestamp for a cache entry
	Touch(ctx context.Context, id uint) error

	// Delete deletes a cache entry
	Delete(ctx context.Context, id uint) error

	// GetOlderThan retrieves cache entries last used before the cutoff
	GetOlderThan(ctx context.Context, olderThanDays int) ([]models.SubtitleCache, error)

	// GetStats retrieves cache statistics
	GetStats(ctx context.Context) (*CacheStats, error)
}

// StorageBackend defines the interface for file storage operations
type StorageBackend interface {
	// Save saves data to storage and returns the path
	Save(ctx context.Context, data io.Reader, filename string) (string, error)

	// Load loads data from storage
	Load(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes data from storage
	Delete(ctx context.Context, path string) error

	// Exists checks if a file exists in storage
	Exists(ctx context.Context, path string) (bool, error)
}

// CacheStats represents cache statistics
type CacheStats struct {
	TotalEntries   int64  `json:"total_entries"`
	TotalSizeBytes int64  `json:"total_size_bytes"`
	OldestEntry    string `json:"oldest_entry"`
	NewestEntry    string `json:"newest_entry"`
}
