package workers

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/vidslice/vidslice-api/internal/models"
	"github.com/vidslice/vidslice-api/internal/services/jobs"
	"github.com/vidslice/vidslice-api/internal/services/subtitlecache"
	"github.com/vidslice/vidslice-api/pkg/ffmpeg"
	"github.com/vidslice/vidslice-api/pkg/srt"
	"github.com/vidslice/vidslice-api/pkg/whisper"
	"golang.org/x/text/unicode/norm"
)

// Transcription progress is reported inside a fixed band per stage so
// the bar never jumps backwards: extraction ends at 25, whisper runs
// 25-75, finishing runs up to 95.
const (
	progressExtracting    = 10
	progressTranscribeLow = 25
	progressTranscribeHi  = 75
	progressFinishing     = 80
)

// lockRetryDelay is how often a worker re-tries the cross-process claim
// lock while another process holds it.
const lockRetryDelay = 2 * time.Second

// TranscriptionProcessor processes transcription jobs: extract audio,
// run whisper, normalize the result, and cache it.
type TranscriptionProcessor struct {
	jobService   jobs.Service
	cacheService subtitlecache.Service
	ffmpeg       *ffmpeg.FFmpeg
	whisperPath  string
	language     string
	timeout      time.Duration
	lockDir      string
	tickInterval time.Duration
}

// NewTranscriptionProcessor creates a new transcription processor
func NewTranscriptionProcessor(
	jobService jobs.Service,
	cacheService subtitlecache.Service,
	ff *ffmpeg.FFmpeg,
	whisperPath string,
	language string,
	timeout time.Duration,
	lockDir string,
) *TranscriptionProcessor {
	return &TranscriptionProcessor{
		jobService:   jobService,
		cacheService: cacheService,
		ffmpeg:       ff,
		whisperPath:  whisperPath,
		language:     language,
		timeout:      timeout,
		lockDir:      lockDir,
		tickInterval: 3 * time.Second,
	}
}

// CanProcess returns true if this processor can handle the job type
func (p *TranscriptionProcessor) CanProcess(jobType models.JobType) bool {
	return jobType == models.JobTypeTranscription
}

// ProcessJob processes a transcription job
func (p *TranscriptionProcessor) ProcessJob(ctx context.Context, job *models.Job) error {
	videoPath, ok := job.GetPayloadString("video_path")
	if !ok {
		return models.NewSystemError("invalid_payload", "missing video_path in job payload", "", nil)
	}
	workDir, ok := job.GetPayloadString("work_dir")
	if !ok {
		return models.NewSystemError("invalid_payload", "missing work_dir in job payload", "", nil)
	}
	identityKey, ok := job.GetPayloadString("identity_key")
	if !ok {
		return models.NewSystemError("invalid_payload", "missing identity_key in job payload", "", nil)
	}

	model, err := whisper.ParseModel(payloadString(job, "model"))
	if err != nil {
		return models.NewSystemError("invalid_payload", err.Error(), "", err)
	}
	preset, err := whisper.ParsePreset(payloadString(job, "preset"))
	if err != nil {
		return models.NewSystemError("invalid_payload", err.Error(), "", err)
	}

	duration := payloadFloat(job, "duration")
	subtitlePath := filepath.Join(workDir, "subtitles.srt")

	// Cross-process claim: only one process transcribes a given video
	// at a time. Others block here and then find the cached result.
	if err := os.MkdirAll(p.lockDir, 0755); err != nil {
		return models.NewSystemError("lock_dir", "failed to create lock directory", err.Error(), err)
	}
	fileLock := flock.New(filepath.Join(p.lockDir, identityKey+".lock"))
	locked, err := fileLock.TryLockContext(ctx, lockRetryDelay)
	if err != nil || !locked {
		return models.NewSystemError("lock_failed", "failed to acquire transcription lock", fmt.Sprintf("lock error: %v", err), err)
	}
	defer fileLock.Unlock()

	// Another process may have finished while we waited on the lock.
	if entry, err := p.cacheService.Lookup(ctx, identityKey, string(model), string(preset)); err == nil && entry != nil {
		if err := copyFile(entry.SRTPath, subtitlePath); err != nil {
			return models.NewSystemError("cache_restore", "failed to restore cached transcription", err.Error(), err)
		}
		return p.jobService.CompleteJob(ctx, job.ID, models.JobResult{
			"subtitle_path": subtitlePath,
			"cached":        true,
		})
	}

	// Stage 1: extract mono 16kHz audio for whisper
	p.updateStage(ctx, job.ID, models.StageExtractingAudio, progressExtracting, "extracting audio")

	wavPath := filepath.Join(workDir, "audio.wav")
	if err := p.ffmpeg.ExtractAudio(ctx, videoPath, wavPath); err != nil {
		p.writePlaceholder(subtitlePath, duration)
		return models.NewProcessingError("ffmpeg_extract", "audio extraction failed", err.Error(), err)
	}
	defer os.Remove(wavPath)

	// Stage 2: run whisper, ticking progress against the time estimate
	p.updateStage(ctx, job.ID, models.StageTranscribing, progressTranscribeLow, "transcribing")

	stopTicker := p.startProgressTicker(ctx, job.ID, duration, model, preset)

	transcriber := whisper.New(p.whisperPath, model, preset, p.language, p.timeout)
	rawSRT, err := transcriber.Transcribe(ctx, wavPath, workDir)
	stopTicker()
	if err != nil {
		p.writePlaceholder(subtitlePath, duration)
		return models.NewProcessingError("whisper", "transcription failed", err.Error(), err)
	}

	// Stage 3: normalize and cache the result
	p.updateStage(ctx, job.ID, models.StageFinishing, progressFinishing, "finishing")

	if err := p.finishTranscript(rawSRT, subtitlePath); err != nil {
		return models.NewProcessingError("finishing", "failed to finalize transcript", err.Error(), err)
	}
	if rawSRT != subtitlePath {
		os.Remove(rawSRT)
	}

	if _, err := p.cacheService.Store(ctx, identityKey, string(model), string(preset), p.language, subtitlePath); err != nil {
		// A missed cache write costs a future re-transcription, not this job
		log.Printf("[WARN] Failed to cache transcription for %s: %v", identityKey, err)
	}

	return p.jobService.CompleteJob(ctx, job.ID, models.JobResult{
		"subtitle_path": subtitlePath,
		"cached":        false,
	})
}

// finishTranscript parses whisper's raw output, NFC-normalizes the
// text, renumbers the entries, and writes the final SRT.
func (p *TranscriptionProcessor) finishTranscript(rawPath, outPath string) error {
	data, err := os.ReadFile(rawPath)
	if err != nil {
		return fmt.Errorf("reading whisper output: %w", err)
	}

	track, err := srt.Parse(norm.NFC.String(string(data)))
	if err != nil {
		return fmt.Errorf("parsing whisper output: %w", err)
	}

	for i := range track {
		track[i].Index = i + 1
	}

	if err := os.WriteFile(outPath, []byte(track.Compose()), 0644); err != nil {
		return fmt.Errorf("writing subtitle file: %w", err)
	}

	return nil
}

// writePlaceholder leaves a single-entry SRT behind on failure, so
// splitting a video whose transcription failed still produces valid
// subtitle files.
func (p *TranscriptionProcessor) writePlaceholder(outPath string, duration float64) {
	end := 5 * time.Second
	if duration > 0 && duration < 5 {
		end = time.Duration(duration * float64(time.Second))
	}

	track := srt.Track{{
		Index: 1,
		Start: 0,
		End:   end,
		Text:  "[transcription unavailable]",
	}}

	if err := os.WriteFile(outPath, []byte(track.Compose()), 0644); err != nil {
		log.Printf("[WARN] Failed to write placeholder subtitles: %v", err)
	}
}

// startProgressTicker runs tickProgress in the background and returns
// a stop function that does not return until the ticker goroutine has
// exited. Waiting matters: a late ticker write of ≤75 landing after the
// finishing stage set 80 would move the progress backwards.
func (p *TranscriptionProcessor) startProgressTicker(ctx context.Context, jobID uint, duration float64, model whisper.Model, preset whisper.Preset) (stop func()) {
	tickerCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		p.tickProgress(tickerCtx, jobID, duration, model, preset)
	}()

	return func() {
		cancel()
		<-done
	}
}

// tickProgress advances the transcribing stage from 25 toward 75 based
// on the elapsed share of the estimated runtime. The estimate is for
// display only; the stage ends when whisper exits.
func (p *TranscriptionProcessor) tickProgress(ctx context.Context, jobID uint, duration float64, model whisper.Model, preset whisper.Preset) {
	expected := duration * whisper.EstimateMultiplier(model, preset)
	if expected <= 0 {
		return
	}

	interval := p.tickInterval
	if interval <= 0 {
		interval = 3 * time.Second
	}

	start := time.Now()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			share := time.Since(start).Seconds() / expected
			progress := progressTranscribeLow + int(share*float64(progressTranscribeHi-progressTranscribeLow))
			if progress > progressTranscribeHi {
				progress = progressTranscribeHi
			}
			if err := p.jobService.UpdateProgress(ctx, jobID, progress); err != nil {
				return
			}
		}
	}
}

func (p *TranscriptionProcessor) updateStage(ctx context.Context, jobID uint, stage models.JobStage, progress int, message string) {
	if err := p.jobService.UpdateStage(ctx, jobID, stage, progress, message); err != nil {
		log.Printf("[WARN] Failed to update job %d stage: %v", jobID, err)
	}
}

func payloadString(job *models.Job, key string) string {
	value, _ := job.GetPayloadString(key)
	return value
}

func payloadFloat(job *models.Job, key string) float64 {
	value, ok := job.GetPayloadValue(key)
	if !ok {
		return 0
	}
	switch v := value.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0644)
}
