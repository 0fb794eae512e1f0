package subtitlecache

import (
	"context"
	"time"

	"github.com/vidslice/vidslice-api/internal/models"
	"gorm.io/gorm"
)

// RepositoryImpl implements the Repository interface using GORM
type RepositoryImpl struct {
	db *gorm.DB
}

// NewRepository creates a new subtitle cache repository
func NewRepository(db *gorm.DB) Repository {
	return &RepositoryImpl{db: db}
}

// Create creates a new cache entry
func (r *RepositoryImpl) Create(ctx context.Context, cache *models.SubtitleCache) error {
	return r.db.WithContext(ctx).Create(cache).Error
}

// GetByKey retrieves a cache entry by identity key, model, and preset
func (r *RepositoryImpl) GetByKey(ctx context.Context, identityKey, model, preset string) (*models.SubtitleCache, error) {
	var cache models.SubtitleCache
	err := r.db.WithContext(ctx).
		Where("identity_key = ? AND model = ? AND preset = ?", identityKey, model, preset).
		First(&cache).Error
	if err != nil {
		return nil, err
	}
	return &cache, nil
}

// Update updates an existing cache entry
func (r *RepositoryImpl) Update(ctx context.Context, cache *models.SubtitleCache) error {
	return r.db.WithContext(ctx).Save(cache).Error
}

// Touch updates the last used timestamp for a cache entry
func (r *RepositoryImpl) Touch(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.SubtitleCache{}).
		Where("id = ?", id).
		Update("last_used_at", time.Now()).Error
}

// Delete deletes a cache entry
func (r *RepositoryImpl) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.SubtitleCache{}, id).Error
}

// GetOlderThan retrieves cache entries last used before the cutoff
func (r *RepositoryImpl) GetOlderThan(ctx context.Context, olderThanDays int) ([]models.SubtitleCache, error) {
	var caches []models.SubtitleCache
	cutoffTime := time.Now().AddDate(0, 0, -olderThanDays)
	err := r.db.WithContext(ctx).Where("last_used_at < ?", cutoffTime).Find(&caches).Error
	return caches, err
}

// GetStats retrieves cache statistics
func (r *RepositoryImpl) GetStats(ctx context.Context) (*CacheStats, error) {
	stats := &CacheStats{}

	r.db.WithContext(ctx).Model(&models.SubtitleCache{}).Count(&stats.TotalEntries)

	r.db.WithContext(ctx).Model(&models.SubtitleCache{}).
		Select("COALESCE(SUM(size_bytes), 0)").
		Scan(&stats.TotalSizeBytes)

	var oldest, newest models.SubtitleCache
	r.db.WithContext(ctx).Model(&models.SubtitleCache{}).Order("created_at ASC").First(&oldest)
	r.db.WithContext(ctx).Model(&models.SubtitleCache{}).Order("created_at DESC").First(&newest)

	if oldest.ID > 0 {
		stats.OldestEntry = oldest.CreatedAt.Format(time.RFC3339)
	}
	if newest.ID > 0 {
		stats.NewestEntry = newest.CreatedAt.Format(time.RFC3339)
	}

	return stats, nil
}
