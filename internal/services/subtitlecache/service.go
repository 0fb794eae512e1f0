package subtitlecache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/vidslice/vidslice-api/internal/models"
	"gorm.io/gorm"
)

// identityKeyBytes is how much of the file head goes into the content
// hash. Hashing the head plus the size is enough to tell videos apart
// without reading multi-gigabyte files end to end.
const identityKeyBytes = 1 << 20

// ServiceImpl implements the Service interface
type ServiceImpl struct {
	repository Repository
	storage    StorageBackend
}

// NewService creates a new subtitle cache service
func NewService(repository Repository, storage StorageBackend) Service {
	return &ServiceImpl{
		repository: repository,
		storage:    storage,
	}
}

// ComputeIdentityKey derives the content hash for a video file: SHA256
// over the first 1MiB plus the file size. Renaming or moving the file
// does not change the key; re-encoding it does.
func ComputeIdentityKey(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file for hashing: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat file: %w", err)
	}

	hash := sha256.New()
	if _, err := io.CopyN(hash, file, identityKeyBytes); err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to hash file: %w", err)
	}
	fmt.Fprintf(hash, ":%d", info.Size())

	return hex.EncodeToString(hash.Sum(nil)), nil
}

// Lookup retrieves a cached transcription, or nil if no entry exists.
// A database row whose SRT file has gone missing on disk is treated as
// a miss and removed.
func (s *ServiceImpl) Lookup(ctx context.Context, identityKey, model, preset string) (*models.SubtitleCache, error) {
	cache, err := s.repository.GetByKey(ctx, identityKey, model, preset)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("looking up cache entry: %w", err)
	}

	exists, err := s.storage.Exists(ctx, cache.SRTPath)
	if err != nil {
		return nil, fmt.Errorf("checking cached file: %w", err)
	}
	if !exists {
		log.Printf("[WARN] Cache entry %d points at missing file %s, evicting", cache.ID, cache.SRTPath)
		if delErr := s.repository.Delete(ctx, cache.ID); delErr != nil {
			log.Printf("[WARN] Failed to evict stale cache entry %d: %v", cache.ID, delErr)
		}
		return nil, nil
	}

	if err := s.UpdateLastUsed(ctx, cache.ID); err != nil {
		log.Printf("[WARN] Failed to update last used timestamp: %v", err)
	}

	return cache, nil
}

// Store saves a finished SRT file into the cache and records the entry
func (s *ServiceImpl) Store(ctx context.Context, identityKey, model, preset, language, srtPath string) (*models.SubtitleCache, error) {
	// Already stored by a concurrent worker? Reuse its entry.
	existing, err := s.repository.GetByKey(ctx, identityKey, model, preset)
	if err == nil && existing != nil {
		return existing, nil
	}

	srtFile, err := os.Open(srtPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SRT for caching: %w", err)
	}
	defer srtFile.Close()

	filename := fmt.Sprintf("%s_%s_%s.srt", identityKey[:16], model, preset)
	storedPath, err := s.storage.Save(ctx, srtFile, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to save SRT to cache: %w", err)
	}

	info, err := os.Stat(storedPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat cached SRT: %w", err)
	}

	cache := &models.SubtitleCache{
		IdentityKey: identityKey,
		Model:       model,
		Preset:      preset,
		Language:    language,
		SRTPath:     storedPath,
		SizeBytes:   info.Size(),
	}

	if err := s.repository.Create(ctx, cache); err != nil {
		if delErr := s.storage.Delete(ctx, storedPath); delErr != nil {
			log.Printf("[WARN] Failed to cleanup cached file after create error: %v", delErr)
		}
		return nil, fmt.Errorf("failed to create cache entry: %w", err)
	}

	log.Printf("[INFO] Cached transcription %s (%s/%s, %d bytes)", identityKey[:16], model, preset, info.Size())

	return cache, nil
}

// UpdateLastUsed updates the last used timestamp for a cache entry
func (s *ServiceImpl) UpdateLastUsed(ctx context.Context, cacheID uint) error {
	return s.repository.Touch(ctx, cacheID)
}

// CleanupOldCache removes cache entries older than specified days
func (s *ServiceImpl) CleanupOldCache(ctx context.Context, olderThanDays int) error {
	caches, err := s.repository.GetOlderThan(ctx, olderThanDays)
	if err != nil {
		return fmt.Errorf("failed to get old cache entries: %w", err)
	}

	for _, cache := range caches {
		if err := s.storage.Delete(ctx, cache.SRTPath); err != nil {
			log.Printf("[WARN] Failed to delete cached file %s: %v", cache.SRTPath, err)
		}
		if err := s.repository.Delete(ctx, cache.ID); err != nil {
			log.Printf("[WARN] Failed to delete cache entry %d: %v", cache.ID, err)
			continue
		}
	}

	if len(caches) > 0 {
		log.Printf("[INFO] Cleaned up %d old cache entries", len(caches))
	}

	return nil
}

// GetCacheStats returns statistics about the cache
func (s *ServiceImpl) GetCacheStats(ctx context.Context) (*CacheStats, error) {
	return s.repository.GetStats(ctx)
}
