package transcription_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vidslice/vidslice-api/internal/models"
	"github.com/vidslice/vidslice-api/internal/services/jobs"
	"github.com/vidslice/vidslice-api/internal/services/subtitlecache"
	"github.com/vidslice/vidslice-api/internal/services/transcription"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeVideoGetter struct {
	videos map[string]*models.Video
}

func (f *fakeVideoGetter) GetVideo(_ context.Context, id string) (*models.Video, error) {
	v, ok := f.videos[id]
	if !ok {
		return nil, fmt.Errorf("video %s not found", id)
	}
	return v, nil
}

type env struct {
	svc    transcription.Service
	jobs   jobs.Service
	cache  subtitlecache.Service
	videos *fakeVideoGetter
}

func setup(t *testing.T) *env {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Job{}, &models.SubtitleCache{}))

	storage, err := subtitlecache.NewFilesystemStorage(t.TempDir())
	require.NoError(t, err)

	jobService := jobs.NewService(jobs.NewRepository(db))
	cacheService := subtitlecache.NewService(subtitlecache.NewRepository(db), storage)
	videos := &fakeVideoGetter{videos: map[string]*models.Video{}}

	return &env{
		svc:    transcription.NewService(jobService, cacheService, videos),
		jobs:   jobService,
		cache:  cacheService,
		videos: videos,
	}
}

func (e *env) addVideo(t *testing.T, id, identityKey string) *models.Video {
	t.Helper()

	workDir := t.TempDir()
	v := &models.Video{
		ID:              id,
		Source:          models.VideoSourceUpload,
		Path:            filepath.Join(workDir, "video.mp4"),
		WorkDir:         workDir,
		IdentityKey:     identityKey,
		DurationSeconds: 60,
	}
	e.videos.videos[id] = v
	return v
}

const sampleSRT = "1\n00:00:01,000 --> 00:00:02,000\nhello\n"

func TestJobKey(t *testing.T) {
	assert.Equal(t, "abc:tiny:fast", transcription.JobKey("abc", "tiny", "fast"))
}

func TestStart(t *testing.T) {
	ctx := context.Background()

	t.Run("enqueues a job with the video payload", func(t *testing.T) {
		e := setup(t)
		v := e.addVideo(t, "vid-1", "3f786850e387550f")

		status, err := e.svc.Start(ctx, "vid-1", "tiny", "fast")
		require.NoError(t, err)
		assert.Equal(t, models.StageNotStarted, status.Stage)
		assert.False(t, status.Complete)

		job, err := e.jobs.GetJobByIdentityKey(ctx, models.JobTypeTranscription, "3f786850e387550f:tiny:fast")
		require.NoError(t, err)
		assert.Equal(t, v.ID, job.Payload["video_id"])
		assert.Equal(t, v.Path, job.Payload["video_path"])
		assert.Equal(t, "tiny", job.Payload["model"])
		assert.Equal(t, "fast", job.Payload["preset"])
	})

	t.Run("repeated start reuses the job", func(t *testing.T) {
		e := setup(t)
		e.addVideo(t, "vid-1", "3f786850e387550f")

		_, err := e.svc.Start(ctx, "vid-1", "tiny", "fast")
		require.NoError(t, err)
		_, err = e.svc.Start(ctx, "vid-1", "tiny", "fast")
		require.NoError(t, err)

		pending, err := e.jobs.GetJobByIdentityKey(ctx, models.JobTypeTranscription, "3f786850e387550f:tiny:fast")
		require.NoError(t, err)
		assert.Equal(t, models.JobStatusPending, pending.Status)
	})

	t.Run("different model enqueues separate work", func(t *testing.T) {
		e := setup(t)
		e.addVideo(t, "vid-1", "3f786850e387550f")

		_, err := e.svc.Start(ctx, "vid-1", "tiny", "fast")
		require.NoError(t, err)
		_, err = e.svc.Start(ctx, "vid-1", "base", "fast")
		require.NoError(t, err)

		_, err = e.jobs.GetJobByIdentityKey(ctx, models.JobTypeTranscription, "3f786850e387550f:base:fast")
		assert.NoError(t, err)
	})

	t.Run("cache hit completes immediately", func(t *testing.T) {
		e := setup(t)
		v := e.addVideo(t, "vid-1", "3f786850e387550f")

		srcPath := filepath.Join(t.TempDir(), "cached.srt")
		require.NoError(t, os.WriteFile(srcPath, []byte(sampleSRT), 0644))
		_, err := e.cache.Store(ctx, "3f786850e387550f", "tiny", "fast", "en", srcPath)
		require.NoError(t, err)

		status, err := e.svc.Start(ctx, "vid-1", "tiny", "fast")
		require.NoError(t, err)
		assert.True(t, status.Complete)
		assert.Equal(t, models.StageComplete, status.Stage)
		assert.Equal(t, 100, status.Progress)

		// The cached SRT lands in the video's work dir.
		materialized := filepath.Join(v.WorkDir, "subtitles.srt")
		assert.Equal(t, materialized, status.SubtitlePath)
		data, err := os.ReadFile(materialized)
		require.NoError(t, err)
		assert.Equal(t, sampleSRT, string(data))

		// No job gets enqueued for cached work.
		_, err = e.jobs.GetJobByIdentityKey(ctx, models.JobTypeTranscription, "3f786850e387550f:tiny:fast")
		assert.ErrorIs(t, err, jobs.ErrJobNotFound)
	})

	t.Run("unknown video", func(t *testing.T) {
		e := setup(t)
		_, err := e.svc.Start(ctx, "nope", "tiny", "fast")
		assert.Error(t, err)
	})
}

func TestGetStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("not started", func(t *testing.T) {
		e := setup(t)
		e.addVideo(t, "vid-1", "3f786850e387550f")

		status, err := e.svc.GetStatus(ctx, "vid-1", "tiny", "fast")
		require.NoError(t, err)
		assert.Equal(t, models.StageNotStarted, status.Stage)
		assert.False(t, status.Complete)
	})

	t.Run("reflects job progress", func(t *testing.T) {
		e := setup(t)
		e.addVideo(t, "vid-1", "3f786850e387550f")

		_, err := e.svc.Start(ctx, "vid-1", "tiny", "fast")
		require.NoError(t, err)

		job, err := e.jobs.ClaimNextJob(ctx, "worker-1", nil)
		require.NoError(t, err)
		require.NoError(t, e.jobs.UpdateStage(ctx, job.ID, models.StageTranscribing, 40, "transcribing audio"))

		status, err := e.svc.GetStatus(ctx, "vid-1", "tiny", "fast")
		require.NoError(t, err)
		assert.Equal(t, models.StageTranscribing, status.Stage)
		assert.Equal(t, 40, status.Progress)
		assert.Equal(t, "transcribing audio", status.Message)
	})

	t.Run("completed job points at the work dir SRT", func(t *testing.T) {
		e := setup(t)
		v := e.addVideo(t, "vid-1", "3f786850e387550f")

		_, err := e.svc.Start(ctx, "vid-1", "tiny", "fast")
		require.NoError(t, err)

		job, err := e.jobs.ClaimNextJob(ctx, "worker-1", nil)
		require.NoError(t, err)
		require.NoError(t, e.jobs.CompleteJob(ctx, job.ID, models.JobResult{}))

		status, err := e.svc.GetStatus(ctx, "vid-1", "tiny", "fast")
		require.NoError(t, err)
		assert.True(t, status.Complete)
		assert.Equal(t, filepath.Join(v.WorkDir, "subtitles.srt"), status.SubtitlePath)
	})

	t.Run("failed job surfaces the error", func(t *testing.T) {
		e := setup(t)
		e.addVideo(t, "vid-1", "3f786850e387550f")

		_, err := e.svc.Start(ctx, "vid-1", "tiny", "fast")
		require.NoError(t, err)

		job, err := e.jobs.ClaimNextJob(ctx, "worker-1", nil)
		require.NoError(t, err)
		require.NoError(t, e.jobs.FailJob(ctx, job.ID, fmt.Errorf("whisper exited 1")))

		status, err := e.svc.GetStatus(ctx, "vid-1", "tiny", "fast")
		require.NoError(t, err)
		assert.Equal(t, models.StageError, status.Stage)
		assert.Equal(t, "whisper exited 1", status.Error)
	})

	t.Run("cache entry counts as done without a job", func(t *testing.T) {
		e := setup(t)
		e.addVideo(t, "vid-1", "3f786850e387550f")

		srcPath := filepath.Join(t.TempDir(), "cached.srt")
		require.NoError(t, os.WriteFile(srcPath, []byte(sampleSRT), 0644))
		_, err := e.cache.Store(ctx, "3f786850e387550f", "tiny", "fast", "en", srcPath)
		require.NoError(t, err)

		status, err := e.svc.GetStatus(ctx, "vid-1", "tiny", "fast")
		require.NoError(t, err)
		assert.True(t, status.Complete)
		assert.Equal(t, models.StageComplete, status.Stage)
		assert.NotEmpty(t, status.SubtitlePath)
	})
}

func TestGetSubtitlePath(t *testing.T) {
	ctx := context.Background()
	e := setup(t)
	v := e.addVideo(t, "vid-1", "3f786850e387550f")

	_, err := e.svc.GetSubtitlePath(ctx, "vid-1")
	assert.Error(t, err)

	srtPath := filepath.Join(v.WorkDir, "subtitles.srt")
	require.NoError(t, os.WriteFile(srtPath, []byte(sampleSRT), 0644))

	got, err := e.svc.GetSubtitlePath(ctx, "vid-1")
	require.NoError(t, err)
	assert.Equal(t, srtPath, got)
}
