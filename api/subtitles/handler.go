package subtitles

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/vidslice/vidslice-api/api/types"
	"github.com/vidslice/vidslice-api/internal/models"
	"github.com/vidslice/vidslice-api/internal/services/jobs"
	videosvc "github.com/vidslice/vidslice-api/internal/services/videos"
	apperrors "github.com/vidslice/vidslice-api/pkg/errors"
	"github.com/vidslice/vidslice-api/pkg/ffmpeg"
)

// Embed enqueues a job burning the video's subtitles into its frames.
// The transcription must have finished first.
func Embed(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		// An empty body is fine; defaults apply
		var req types.EmbedRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			types.RespondError(c, apperrors.Wrap(err, apperrors.ErrCodeInvalidInput, "invalid request body"))
			return
		}

		style, err := ffmpeg.ParseSubtitleStyle(req.Style)
		if err != nil {
			types.RespondError(c, apperrors.ValidationError("style", err.Error()))
			return
		}
		quality, err := ffmpeg.ParseQuality(req.Quality)
		if err != nil {
			types.RespondError(c, apperrors.ValidationError("quality", err.Error()))
			return
		}

		video, err := deps.VideoService.GetVideo(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}

		subtitlePath, err := deps.TranscriptionService.GetSubtitlePath(c.Request.Context(), video.ID)
		if err != nil {
			types.RespondError(c, apperrors.New(apperrors.ErrCodeConflict, "video has no finished transcription to embed"))
			return
		}

		payload := models.JobPayload{
			"video_id":      video.ID,
			"video_path":    video.Path,
			"subtitle_path": subtitlePath,
			"work_dir":      video.WorkDir,
			"style":         string(style),
			"quality":       string(quality),
		}

		key := fmt.Sprintf("%s:embed:%s:%s", video.IdentityKey, style, quality)
		job, err := deps.JobService.EnqueueUniqueJob(c.Request.Context(), models.JobTypeEmbed, payload, key)
		if err != nil {
			types.RespondError(c, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to enqueue embed job"))
			return
		}

		httpStatus := http.StatusAccepted
		if job.Status == models.JobStatusCompleted {
			httpStatus = http.StatusOK
		}

		c.JSON(httpStatus, gin.H{
			"job_id":   job.ID,
			"status":   job.Status,
			"progress": job.Progress,
		})
	}
}

// GetStatus reports the embed job state for a video
func GetStatus(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		video, err := deps.VideoService.GetVideo(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}

		style, quality := c.DefaultQuery("style", string(ffmpeg.StyleDefault)), c.DefaultQuery("quality", string(ffmpeg.QualityMedium))
		key := fmt.Sprintf("%s:embed:%s:%s", video.IdentityKey, style, quality)

		job, err := deps.JobService.GetJobByIdentityKey(c.Request.Context(), models.JobTypeEmbed, key)
		if err != nil {
			if errors.Is(err, jobs.ErrJobNotFound) {
				types.RespondError(c, apperrors.NotFound("embed job", video.ID))
				return
			}
			types.RespondError(c, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to look up embed job"))
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"job_id":   job.ID,
			"status":   job.Status,
			"progress": job.Progress,
			"error":    job.Error,
		})
	}
}

// Download serves the embedded video once the job has finished
func Download(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		video, err := deps.VideoService.GetVideo(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}

		outPath := filepath.Join(video.WorkDir, "embedded.mp4")
		if _, err := os.Stat(outPath); err != nil {
			types.RespondError(c, apperrors.NotFound("embedded video", video.ID))
			return
		}

		c.Header("Content-Disposition", `attachment; filename="embedded.mp4"`)
		c.File(outPath)
	}
}

func respondError(c *gin.Context, err error) {
	if errors.Is(err, videosvc.ErrVideoNotFound) {
		types.RespondError(c, apperrors.NotFound("video", c.Param("id")))
		return
	}
	types.RespondError(c, apperrors.Wrap(err, apperrors.ErrCodeInternal, "embed operation failed"))
}
