package segmenter

import (
	"context"

	"github.com/vidslice/vidslice-api/internal/models"
	"github.com/vidslice/vidslice-api/pkg/ffmpeg"
)

// Service defines the business logic interface for video splitting
type Service interface {
	// SplitEqualParts cuts a video into n equal-length parts. Existing
	// segments for the video are replaced.
	SplitEqualParts(ctx context.Context, videoID string, parts int, quality ffmpeg.Quality) ([]models.Segment, error)

	// SplitAtTimestamps cuts a video at the given boundaries (seconds).
	// Timestamps outside (0, duration) are dropped; duplicates collapse.
	SplitAtTimestamps(ctx context.Context, videoID string, timestamps []float64, quality ffmpeg.Quality) ([]models.Segment, error)

	// GetSegment retrieves one part of a previously split video
	GetSegment(ctx context.Context, videoID string, part int) (*models.Segment, error)

	// ListSegments returns all segments of a video in part order
	ListSegments(ctx context.Context, videoID string) ([]models.Segment, error)
}

// Repository defines the interface for segment persistence
type Repository interface {
	ReplaceForVideo(ctx context.Context, videoID string, segments []models.Segment) error
	GetByPart(ctx context.Context, videoID string, part int) (*models.Segment, error)
	ListByVideo(ctx context.Context, videoID string) ([]models.Segment, error)
	DeleteForVideo(ctx context.Context, videoID string) error
}

// Cutter exposes the ffmpeg operation the segmenter needs
type Cutter interface {
	CutSegment(ctx context.Context, videoPath, outPath string, start, duration float64, quality ffmpeg.Quality) error
}

// VideoGetter resolves video IDs to records
type VideoGetter interface {
	GetVideo(ctx context.Context, id string) (*models.Video, error)
}
