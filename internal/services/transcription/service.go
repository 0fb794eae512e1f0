package transcription

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/vidslice/vidslice-api/internal/models"
	"github.com/vidslice/vidslice-api/internal/services/jobs"
	"github.com/vidslice/vidslice-api/internal/services/subtitlecache"
)

type service struct {
	jobs   jobs.Service
	cache  subtitlecache.Service
	videos VideoGetter
}

// NewService creates a new transcription service
func NewService(jobService jobs.Service, cache subtitlecache.Service, videos VideoGetter) Service {
	return &service{
		jobs:   jobService,
		cache:  cache,
		videos: videos,
	}
}

// JobKey builds the identity key a transcription job is deduplicated
// on: same file, model, and preset mean the same work.
func JobKey(identityKey, model, preset string) string {
	return fmt.Sprintf("%s:%s:%s", identityKey, model, preset)
}

func (s *service) Start(ctx context.Context, videoID, model, preset string) (*Status, error) {
	video, err := s.videos.GetVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}

	// A cached transcription short-circuits the whole pipeline.
	entry, err := s.cache.Lookup(ctx, video.IdentityKey, model, preset)
	if err != nil {
		log.Printf("[WARN] Cache lookup failed for video %s: %v", videoID, err)
	}
	if entry != nil {
		subtitlePath, err := s.materialize(video, entry.SRTPath)
		if err != nil {
			return nil, err
		}
		log.Printf("[INFO] Transcription cache hit for video %s (%s/%s)", videoID, model, preset)
		return &Status{
			Stage:        models.StageComplete,
			Progress:     100,
			Message:      "restored from cache",
			Complete:     true,
			SubtitlePath: subtitlePath,
		}, nil
	}

	payload := models.JobPayload{
		"video_id":     video.ID,
		"video_path":   video.Path,
		"work_dir":     video.WorkDir,
		"identity_key": video.IdentityKey,
		"model":        model,
		"preset":       preset,
		"duration":     video.DurationSeconds,
	}

	job, err := s.jobs.EnqueueUniqueJob(ctx, models.JobTypeTranscription, payload, JobKey(video.IdentityKey, model, preset))
	if err != nil {
		return nil, fmt.Errorf("enqueueing transcription: %w", err)
	}

	return statusFromJob(job), nil
}

func (s *service) GetStatus(ctx context.Context, videoID, model, preset string) (*Status, error) {
	video, err := s.videos.GetVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}

	job, err := s.jobs.GetJobByIdentityKey(ctx, models.JobTypeTranscription, JobKey(video.IdentityKey, model, preset))
	if err != nil {
		if errors.Is(err, jobs.ErrJobNotFound) {
			// Never started in this process; a cached result still counts
			// as done.
			entry, cacheErr := s.cache.Lookup(ctx, video.IdentityKey, model, preset)
			if cacheErr == nil && entry != nil {
				return &Status{Stage: models.StageComplete, Progress: 100, Complete: true, SubtitlePath: entry.SRTPath}, nil
			}
			return &Status{Stage: models.StageNotStarted}, nil
		}
		return nil, err
	}

	status := statusFromJob(job)
	if status.Complete {
		status.SubtitlePath = filepath.Join(video.WorkDir, "subtitles.srt")
	}
	return status, nil
}

func (s *service) GetSubtitlePath(ctx context.Context, videoID string) (string, error) {
	video, err := s.videos.GetVideo(ctx, videoID)
	if err != nil {
		return "", err
	}

	path := filepath.Join(video.WorkDir, "subtitles.srt")
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("no finished transcription for video %s", videoID)
	}
	return path, nil
}

// materialize copies a cached SRT into the video's work dir, where the
// segmenter and downloads expect it.
func (s *service) materialize(video *models.Video, cachedPath string) (string, error) {
	dst := filepath.Join(video.WorkDir, "subtitles.srt")
	if _, err := os.Stat(dst); err == nil {
		return dst, nil
	}

	src, err := os.Open(cachedPath)
	if err != nil {
		return "", fmt.Errorf("opening cached SRT: %w", err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("creating subtitle file: %w", err)
	}

	_, err = io.Copy(out, src)
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("copying cached SRT: %w", err)
	}

	return dst, nil
}

// statusFromJob maps a queue job onto the externally visible status
func statusFromJob(job *models.Job) *Status {
	status := &Status{
		Stage:    job.Stage,
		Progress: job.Progress,
		Message:  job.Message,
	}
	if status.Stage == "" {
		status.Stage = models.StageNotStarted
	}

	switch job.Status {
	case models.JobStatusCompleted:
		status.Stage = models.StageComplete
		status.Progress = 100
		status.Complete = true
	case models.JobStatusFailed, models.JobStatusPermanentlyFailed:
		status.Stage = models.StageError
		status.Error = job.Error
	}

	return status
}
