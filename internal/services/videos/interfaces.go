package videos

import (
	"context"
	"io"

	"github.com/vidslice/vidslice-api/internal/models"
	"github.com/vidslice/vidslice-api/pkg/download"
)

// Service defines the business logic interface for video registration
type Service interface {
	// RegisterUpload stores an uploaded video stream and registers it
	RegisterUpload(ctx context.Context, filename string, data io.Reader) (*models.Video, error)

	// RegisterFromYouTube downloads a video with yt-dlp and registers it
	RegisterFromYouTube(ctx context.Context, url string, quality download.VideoQuality, withSubtitles bool) (*models.Video, error)

	// FetchSubtitles downloads only the subtitle track for a URL without
	// registering a video. An empty path means the site has none.
	FetchSubtitles(ctx context.Context, url string, preferredLangs []string) (string, error)

	// RegisterFromURL fetches a video over plain HTTP and registers it
	RegisterFromURL(ctx context.Context, url string) (*models.Video, error)

	// RegisterLocal registers a video already on disk without copying it
	RegisterLocal(ctx context.Context, path string) (*models.Video, error)

	// GetVideo retrieves a video by ID
	GetVideo(ctx context.Context, id string) (*models.Video, error)

	// ListVideos returns all registered videos, newest first
	ListVideos(ctx context.Context) ([]models.Video, error)

	// DeleteVideo removes the record and the working directory
	DeleteVideo(ctx context.Context, id string) error
}

// Repository defines the interface for video persistence
type Repository interface {
	Create(ctx context.Context, video *models.Video) error
	GetByID(ctx context.Context, id string) (*models.Video, error)
	GetByIdentityKey(ctx context.Context, identityKey string) (*models.Video, error)
	Update(ctx context.Context, video *models.Video) error
	List(ctx context.Context) ([]models.Video, error)
	Delete(ctx context.Context, id string) error
}

// Prober exposes the duration probe the registration flow needs
type Prober interface {
	ProbeDuration(ctx context.Context, path string) (float64, error)
}
