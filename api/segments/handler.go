package segments

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/vidslice/vidslice-api/api/types"
	"github.com/vidslice/vidslice-api/internal/models"
	"github.com/vidslice/vidslice-api/internal/services/segmenter"
	videosvc "github.com/vidslice/vidslice-api/internal/services/videos"
	apperrors "github.com/vidslice/vidslice-api/pkg/errors"
	"github.com/vidslice/vidslice-api/pkg/ffmpeg"
)

// Split cuts a video into parts: either n equal parts or at explicit
// timestamps. Each part gets its own rebased SRT when subtitles exist.
func Split(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.SplitRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			types.RespondError(c, apperrors.Wrap(err, apperrors.ErrCodeInvalidInput, "invalid request body"))
			return
		}

		if req.Parts > 0 && len(req.Timestamps) > 0 {
			types.RespondError(c, apperrors.New(apperrors.ErrCodeInvalidInput, "parts and timestamps are mutually exclusive"))
			return
		}
		if req.Parts == 0 && len(req.Timestamps) == 0 {
			types.RespondError(c, apperrors.New(apperrors.ErrCodeInvalidInput, "either parts or timestamps is required"))
			return
		}

		quality, err := ffmpeg.ParseQuality(req.Quality)
		if err != nil {
			types.RespondError(c, apperrors.ValidationError("quality", err.Error()))
			return
		}

		videoID := c.Param("id")

		var segments []models.Segment
		if req.Parts > 0 {
			segments, err = deps.SegmenterService.SplitEqualParts(c.Request.Context(), videoID, req.Parts, quality)
		} else {
			segments, err = deps.SegmenterService.SplitAtTimestamps(c.Request.Context(), videoID, req.Timestamps, quality)
		}
		if err != nil {
			respondSegmentError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"segments": toResponses(segments)})
	}
}

// List returns a video's segments
func List(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		segments, err := deps.SegmenterService.ListSegments(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondSegmentError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"segments": toResponses(segments)})
	}
}

// DownloadVideo serves one part's video file
func DownloadVideo(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		segment, ok := lookupSegment(c, deps)
		if !ok {
			return
		}

		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="part_%02d.mp4"`, segment.Part))
		c.File(segment.VideoPath)
	}
}

// DownloadSubtitles serves one part's rebased SRT
func DownloadSubtitles(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		segment, ok := lookupSegment(c, deps)
		if !ok {
			return
		}

		if segment.SubtitlePath == "" {
			types.RespondError(c, apperrors.NotFound("segment subtitles", segment.Part))
			return
		}

		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="part_%02d.srt"`, segment.Part))
		c.File(segment.SubtitlePath)
	}
}

func lookupSegment(c *gin.Context, deps *types.Dependencies) (*models.Segment, bool) {
	part, err := strconv.Atoi(c.Param("part"))
	if err != nil || part < 1 {
		types.RespondError(c, apperrors.ValidationError("part", "must be a positive integer"))
		return nil, false
	}

	segment, err := deps.SegmenterService.GetSegment(c.Request.Context(), c.Param("id"), part)
	if err != nil {
		respondSegmentError(c, err)
		return nil, false
	}

	return segment, true
}

func toResponses(segments []models.Segment) []types.SegmentResponse {
	responses := make([]types.SegmentResponse, 0, len(segments))
	for i := range segments {
		responses = append(responses, types.ToSegmentResponse(&segments[i]))
	}
	return responses
}

func respondSegmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, videosvc.ErrVideoNotFound):
		types.RespondError(c, apperrors.NotFound("video", c.Param("id")))
	case errors.Is(err, segmenter.ErrSegmentNotFound):
		types.RespondError(c, apperrors.NotFound("segment", c.Param("part")))
	default:
		types.RespondError(c, apperrors.Wrap(err, apperrors.ErrCodeInternal, "segment operation failed"))
	}
}
