package transcription

import (
	"context"

	"github.com/vidslice/vidslice-api/internal/models"
)

// Status is the externally visible state of a transcription
type Status struct {
	Stage        models.JobStage `json:"stage"`
	Progress     int             `json:"progress"`
	Message      string          `json:"message,omitempty"`
	Complete     bool            `json:"complete"`
	Error        string          `json:"error,omitempty"`
	SubtitlePath string          `json:"-"`
}

// Service defines the business logic interface for transcriptions
type Service interface {
	// Start begins (or resumes) transcribing a video. Calling it twice
	// for the same video, model, and preset returns the same work; a
	// cached result completes immediately without running whisper.
	Start(ctx context.Context, videoID, model, preset string) (*Status, error)

	// GetStatus reports where a video's transcription currently is
	GetStatus(ctx context.Context, videoID, model, preset string) (*Status, error)

	// GetSubtitlePath returns the finished SRT for a video, or an error
	// if the transcription has not completed
	GetSubtitlePath(ctx context.Context, videoID string) (string, error)
}

// VideoGetter resolves video IDs to records
type VideoGetter interface {
	GetVideo(ctx context.Context, id string) (*models.Video, error)
}
