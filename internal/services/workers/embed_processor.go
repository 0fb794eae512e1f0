package workers

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"github.com/vidslice/vidslice-api/internal/models"
	"github.com/vidslice/vidslice-api/internal/services/jobs"
	"github.com/vidslice/vidslice-api/pkg/ffmpeg"
)

// EmbedProcessor burns subtitles into video frames. Burning always
// re-encodes, so it runs on the queue like transcription does.
type EmbedProcessor struct {
	jobService jobs.Service
	ffmpeg     *ffmpeg.FFmpeg
}

// NewEmbedProcessor creates a new embed processor
func NewEmbedProcessor(jobService jobs.Service, ff *ffmpeg.FFmpeg) *EmbedProcessor {
	return &EmbedProcessor{
		jobService: jobService,
		ffmpeg:     ff,
	}
}

// CanProcess returns true if this processor can handle the job type
func (p *EmbedProcessor) CanProcess(jobType models.JobType) bool {
	return jobType == models.JobTypeEmbed
}

// ProcessJob burns the subtitle file into the video
func (p *EmbedProcessor) ProcessJob(ctx context.Context, job *models.Job) error {
	videoPath, ok := job.GetPayloadString("video_path")
	if !ok {
		return models.NewSystemError("invalid_payload", "missing video_path in job payload", "", nil)
	}
	subtitlePath, ok := job.GetPayloadString("subtitle_path")
	if !ok {
		return models.NewSystemError("invalid_payload", "missing subtitle_path in job payload", "", nil)
	}
	workDir, ok := job.GetPayloadString("work_dir")
	if !ok {
		return models.NewSystemError("invalid_payload", "missing work_dir in job payload", "", nil)
	}

	if _, err := os.Stat(subtitlePath); err != nil {
		return models.NewNotFoundError("subtitles_missing", "subtitle file not found", subtitlePath, err)
	}

	style, err := ffmpeg.ParseSubtitleStyle(payloadString(job, "style"))
	if err != nil {
		return models.NewSystemError("invalid_payload", err.Error(), "", err)
	}
	quality, err := ffmpeg.ParseQuality(payloadString(job, "quality"))
	if err != nil {
		return models.NewSystemError("invalid_payload", err.Error(), "", err)
	}

	outPath := filepath.Join(workDir, "embedded.mp4")

	if err := p.jobService.UpdateProgress(ctx, job.ID, 20); err != nil {
		log.Printf("[WARN] Failed to update job %d progress: %v", job.ID, err)
	}

	if err := p.ffmpeg.BurnSubtitles(ctx, videoPath, subtitlePath, outPath, style, quality); err != nil {
		return models.NewProcessingError("ffmpeg_burn", "subtitle burn failed", err.Error(), err)
	}

	return p.jobService.CompleteJob(ctx, job.ID, models.JobResult{
		"output_path": outPath,
	})
}
