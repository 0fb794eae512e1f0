package types

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vidslice/vidslice-api/internal/models"
	apperrors "github.com/vidslice/vidslice-api/pkg/errors"
)

// ErrorResponse is the standard error body
type ErrorResponse struct {
	Status  string `json:"status"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// VideoResponse is the external representation of a video
type VideoResponse struct {
	ID              string    `json:"id"`
	Source          string    `json:"source"`
	SourceURL       string    `json:"source_url,omitempty"`
	DurationSeconds float64   `json:"duration_seconds"`
	SizeBytes       int64     `json:"size_bytes"`
	HasSubtitles    bool      `json:"has_subtitles"`
	CreatedAt       time.Time `json:"created_at"`
}

// SegmentResponse is the external representation of one split part
type SegmentResponse struct {
	Part         int     `json:"part"`
	StartSeconds float64 `json:"start_seconds"`
	EndSeconds   float64 `json:"end_seconds"`
	SizeBytes    int64   `json:"size_bytes"`
	HasSubtitles bool    `json:"has_subtitles"`
}

// ToVideoResponse maps a video model onto its response
func ToVideoResponse(video *models.Video) VideoResponse {
	return VideoResponse{
		ID:              video.ID,
		Source:          string(video.Source),
		SourceURL:       video.SourceURL,
		DurationSeconds: video.DurationSeconds,
		SizeBytes:       video.SizeBytes,
		HasSubtitles:    video.SubtitlePath != "",
		CreatedAt:       video.CreatedAt,
	}
}

// ToSegmentResponse maps a segment model onto its response
func ToSegmentResponse(segment *models.Segment) SegmentResponse {
	return SegmentResponse{
		Part:         segment.Part,
		StartSeconds: segment.StartSeconds,
		EndSeconds:   segment.EndSeconds,
		SizeBytes:    segment.SizeBytes,
		HasSubtitles: segment.SubtitlePath != "",
	}
}

// RespondError writes a structured error response, mapping application
// error codes to HTTP status codes.
func RespondError(c *gin.Context, err error) {
	if appErr, ok := err.(*apperrors.AppError); ok {
		c.JSON(appErr.GetHTTPCode(), ErrorResponse{
			Status:  "error",
			Code:    string(appErr.Code),
			Message: appErr.Message,
		})
		return
	}

	c.JSON(apperrors.GetHTTPCode(err), ErrorResponse{
		Status:  "error",
		Message: err.Error(),
	})
}
