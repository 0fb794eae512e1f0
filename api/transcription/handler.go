package transcription

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vidslice/vidslice-api/api/types"
	videosvc "github.com/vidslice/vidslice-api/internal/services/videos"
	apperrors "github.com/vidslice/vidslice-api/pkg/errors"
	"github.com/vidslice/vidslice-api/pkg/whisper"
)

// Start begins or resumes transcribing a video. Repeating the request
// for the same video, model, and preset is safe: a running job is
// reported, a cached result returns immediately.
func Start(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		// An empty body is fine; defaults apply
		var req types.TranscribeRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			types.RespondError(c, apperrors.Wrap(err, apperrors.ErrCodeInvalidInput, "invalid request body"))
			return
		}

		model, err := whisper.ParseModel(req.Model)
		if err != nil {
			types.RespondError(c, apperrors.ValidationError("model", err.Error()))
			return
		}
		preset, err := whisper.ParsePreset(req.Preset)
		if err != nil {
			types.RespondError(c, apperrors.ValidationError("preset", err.Error()))
			return
		}

		status, err := deps.TranscriptionService.Start(c.Request.Context(), c.Param("id"), string(model), string(preset))
		if err != nil {
			respondTranscriptionError(c, err)
			return
		}

		httpStatus := http.StatusAccepted
		if status.Complete {
			httpStatus = http.StatusOK
		}

		c.JSON(httpStatus, status)
	}
}

// GetStatus reports where a video's transcription currently is
func GetStatus(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		model, err := whisper.ParseModel(c.Query("model"))
		if err != nil {
			types.RespondError(c, apperrors.ValidationError("model", err.Error()))
			return
		}
		preset, err := whisper.ParsePreset(c.Query("preset"))
		if err != nil {
			types.RespondError(c, apperrors.ValidationError("preset", err.Error()))
			return
		}

		status, err := deps.TranscriptionService.GetStatus(c.Request.Context(), c.Param("id"), string(model), string(preset))
		if err != nil {
			respondTranscriptionError(c, err)
			return
		}

		c.JSON(http.StatusOK, status)
	}
}

// Download serves the finished SRT file
func Download(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		path, err := deps.TranscriptionService.GetSubtitlePath(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, videosvc.ErrVideoNotFound) {
				types.RespondError(c, apperrors.NotFound("video", c.Param("id")))
				return
			}
			types.RespondError(c, apperrors.NotFound("transcription", c.Param("id")))
			return
		}

		c.Header("Content-Disposition", `attachment; filename="subtitles.srt"`)
		c.File(path)
	}
}

func respondTranscriptionError(c *gin.Context, err error) {
	if errors.Is(err, videosvc.ErrVideoNotFound) {
		types.RespondError(c, apperrors.NotFound("video", c.Param("id")))
		return
	}
	types.RespondError(c, apperrors.Wrap(err, apperrors.ErrCodeInternal, "transcription operation failed"))
}
