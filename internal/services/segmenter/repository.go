package segmenter

import (
	"context"
	"errors"
	"fmt"

	"github.com/vidslice/vidslice-api/internal/models"
	"gorm.io/gorm"
)

// Repository errors
var ErrSegmentNotFound = errors.New("segment not found")

// repository implements Repository using GORM
type repository struct {
	db *gorm.DB
}

// NewRepository creates a new segment repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// ReplaceForVideo atomically swaps a video's segment set for a new one
func (r *repository) ReplaceForVideo(ctx context.Context, videoID string, segments []models.Segment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("video_id = ?", videoID).Delete(&models.Segment{}).Error; err != nil {
			return fmt.Errorf("deleting old segments: %w", err)
		}
		for i := range segments {
			if err := tx.Create(&segments[i]).Error; err != nil {
				return fmt.Errorf("creating segment %d: %w", segments[i].Part, err)
			}
		}
		return nil
	})
}

func (r *repository) GetByPart(ctx context.Context, videoID string, part int) (*models.Segment, error) {
	var segment models.Segment
	err := r.db.WithContext(ctx).
		Where("video_id = ? AND part = ?", videoID, part).
		First(&segment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSegmentNotFound
		}
		return nil, fmt.Errorf("getting segment: %w", err)
	}
	return &segment, nil
}

func (r *repository) ListByVideo(ctx context.Context, videoID string) ([]models.Segment, error) {
	var segments []models.Segment
	err := r.db.WithContext(ctx).
		Where("video_id = ?", videoID).
		Order("part ASC").
		Find(&segments).Error
	return segments, err
}

func (r *repository) DeleteForVideo(ctx context.Context, videoID string) error {
	return r.db.WithContext(ctx).Where("video_id = ?", videoID).Delete(&models.Segment{}).Error
}
