package videos

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vidslice/vidslice-api/api/types"
	videosvc "github.com/vidslice/vidslice-api/internal/services/videos"
	"github.com/vidslice/vidslice-api/pkg/download"
	apperrors "github.com/vidslice/vidslice-api/pkg/errors"
)

// Upload registers a video posted as multipart form data under "video"
func Upload(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		fileHeader, err := c.FormFile("video")
		if err != nil {
			types.RespondError(c, apperrors.MissingFieldError("video"))
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			types.RespondError(c, apperrors.Wrap(err, apperrors.ErrCodeInvalidInput, "could not read uploaded file"))
			return
		}
		defer file.Close()

		video, err := deps.VideoService.RegisterUpload(c.Request.Context(), fileHeader.Filename, file)
		if err != nil {
			types.RespondError(c, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to register video"))
			return
		}

		c.JSON(http.StatusCreated, types.ToVideoResponse(video))
	}
}

// FromYouTube registers a video by downloading it with yt-dlp
func FromYouTube(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.YouTubeDownloadRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			types.RespondError(c, apperrors.Wrap(err, apperrors.ErrCodeInvalidInput, "invalid request body"))
			return
		}

		quality, err := download.ParseVideoQuality(req.Quality)
		if err != nil {
			types.RespondError(c, apperrors.ValidationError("quality", err.Error()))
			return
		}

		video, err := deps.VideoService.RegisterFromYouTube(c.Request.Context(), req.URL, quality, req.Subtitles)
		if err != nil {
			types.RespondError(c, apperrors.ExternalToolError("yt-dlp", err))
			return
		}

		c.JSON(http.StatusCreated, types.ToVideoResponse(video))
	}
}

// FromURL registers a video fetched over plain HTTP
func FromURL(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.URLDownloadRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			types.RespondError(c, apperrors.Wrap(err, apperrors.ErrCodeInvalidInput, "invalid request body"))
			return
		}

		video, err := deps.VideoService.RegisterFromURL(c.Request.Context(), req.URL)
		if err != nil {
			types.RespondError(c, apperrors.Wrap(err, apperrors.ErrCodeExternalTool, "download failed"))
			return
		}

		c.JSON(http.StatusCreated, types.ToVideoResponse(video))
	}
}

// List returns all registered videos
func List(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		videos, err := deps.VideoService.ListVideos(c.Request.Context())
		if err != nil {
			types.RespondError(c, apperrors.DatabaseError("list videos", err))
			return
		}

		responses := make([]types.VideoResponse, 0, len(videos))
		for i := range videos {
			responses = append(responses, types.ToVideoResponse(&videos[i]))
		}

		c.JSON(http.StatusOK, gin.H{"videos": responses})
	}
}

// Get returns one video by ID
func Get(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		video, err := deps.VideoService.GetVideo(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondVideoError(c, err)
			return
		}

		c.JSON(http.StatusOK, types.ToVideoResponse(video))
	}
}

// Delete removes a video and its working directory
func Delete(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := deps.VideoService.DeleteVideo(c.Request.Context(), c.Param("id")); err != nil {
			respondVideoError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "deleted"})
	}
}

func respondVideoError(c *gin.Context, err error) {
	if errors.Is(err, videosvc.ErrVideoNotFound) {
		types.RespondError(c, apperrors.NotFound("video", c.Param("id")))
		return
	}
	types.RespondError(c, apperrors.Wrap(err, apperrors.ErrCodeInternal, "video operation failed"))
}
