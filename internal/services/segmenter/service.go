package segmenter

import (
	"context"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/vidslice/vidslice-api/internal/models"
	"github.com/vidslice/vidslice-api/pkg/ffmpeg"
	"github.com/vidslice/vidslice-api/pkg/srt"
)

// window is one half-open [Start, End) slice of the source timeline,
// in seconds.
type window struct {
	Start float64
	End   float64
}

type service struct {
	repo          Repository
	videos        VideoGetter
	cutter        Cutter
	maxSplitParts int
}

// NewService creates a new segmenter service
func NewService(repo Repository, videos VideoGetter, cutter Cutter, maxSplitParts int) Service {
	return &service{
		repo:          repo,
		videos:        videos,
		cutter:        cutter,
		maxSplitParts: maxSplitParts,
	}
}

func (s *service) SplitEqualParts(ctx context.Context, videoID string, parts int, quality ffmpeg.Quality) ([]models.Segment, error) {
	if parts < 2 {
		return nil, fmt.Errorf("split requires at least 2 parts, got %d", parts)
	}
	if s.maxSplitParts > 0 && parts > s.maxSplitParts {
		return nil, fmt.Errorf("split limited to %d parts, got %d", s.maxSplitParts, parts)
	}

	video, err := s.videos.GetVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if !video.HasDuration() {
		return nil, fmt.Errorf("video %s has no probed duration, cannot split", video.ID)
	}

	windows := equalWindows(video.DurationSeconds, parts)
	return s.split(ctx, video, windows, quality)
}

func (s *service) SplitAtTimestamps(ctx context.Context, videoID string, timestamps []float64, quality ffmpeg.Quality) ([]models.Segment, error) {
	video, err := s.videos.GetVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if !video.HasDuration() {
		return nil, fmt.Errorf("video %s has no probed duration, cannot split", video.ID)
	}

	boundaries := normalizeBoundaries(timestamps, video.DurationSeconds)
	if len(boundaries) == 0 {
		return nil, fmt.Errorf("no timestamps fall inside the video (duration %.2fs)", video.DurationSeconds)
	}
	if s.maxSplitParts > 0 && len(boundaries)+1 > s.maxSplitParts {
		return nil, fmt.Errorf("split limited to %d parts, got %d", s.maxSplitParts, len(boundaries)+1)
	}

	windows := windowsFromBoundaries(boundaries, video.DurationSeconds)
	return s.split(ctx, video, windows, quality)
}

// split cuts every window and extracts the matching subtitle window.
// Any failure aborts the whole run and removes the partial output, so
// a video either has a complete segment set or none.
func (s *service) split(ctx context.Context, video *models.Video, windows []window, quality ffmpeg.Quality) ([]models.Segment, error) {
	segmentsDir := filepath.Join(video.WorkDir, "segments")
	if err := os.RemoveAll(segmentsDir); err != nil {
		return nil, fmt.Errorf("clearing segments directory: %w", err)
	}
	if err := os.MkdirAll(segmentsDir, 0755); err != nil {
		return nil, fmt.Errorf("creating segments directory: %w", err)
	}

	track, haveTrack := s.loadTrack(video)

	segments := make([]models.Segment, 0, len(windows))
	for i, w := range windows {
		part := i + 1
		videoPath := filepath.Join(segmentsDir, fmt.Sprintf("part_%02d.mp4", part))

		if err := s.cutter.CutSegment(ctx, video.Path, videoPath, w.Start, w.End-w.Start, quality); err != nil {
			os.RemoveAll(segmentsDir)
			return nil, fmt.Errorf("cutting part %d: %w", part, err)
		}

		segment := models.Segment{
			VideoID:      video.ID,
			Part:         part,
			StartSeconds: w.Start,
			EndSeconds:   w.End,
			VideoPath:    videoPath,
		}

		if info, err := os.Stat(videoPath); err == nil {
			segment.SizeBytes = info.Size()
		}

		if haveTrack {
			subtitlePath := filepath.Join(segmentsDir, fmt.Sprintf("part_%02d.srt", part))
			windowTrack := srt.ExtractWindow(track, secondsToDuration(w.Start), secondsToDuration(w.End))
			if err := os.WriteFile(subtitlePath, []byte(windowTrack.Compose()), 0644); err != nil {
				os.RemoveAll(segmentsDir)
				return nil, fmt.Errorf("writing subtitles for part %d: %w", part, err)
			}
			segment.SubtitlePath = subtitlePath
		}

		segments = append(segments, segment)
	}

	if err := s.repo.ReplaceForVideo(ctx, video.ID, segments); err != nil {
		os.RemoveAll(segmentsDir)
		return nil, err
	}

	log.Printf("[INFO] Split video %s into %d parts", video.ID, len(segments))

	return segments, nil
}

// loadTrack finds the video's subtitles: the transcription output in
// the work dir wins, then whatever arrived with the download.
func (s *service) loadTrack(video *models.Video) (srt.Track, bool) {
	candidates := []string{
		filepath.Join(video.WorkDir, "subtitles.srt"),
		video.SubtitlePath,
	}

	for _, path := range candidates {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		track, err := srt.Parse(string(data))
		if err != nil {
			log.Printf("[WARN] Skipping unparseable subtitle file %s: %v", path, err)
			continue
		}
		return track, true
	}

	return nil, false
}

func (s *service) GetSegment(ctx context.Context, videoID string, part int) (*models.Segment, error) {
	return s.repo.GetByPart(ctx, videoID, part)
}

func (s *service) ListSegments(ctx context.Context, videoID string) ([]models.Segment, error) {
	return s.repo.ListByVideo(ctx, videoID)
}

// equalWindows tiles [0, duration) with n equal parts. Boundaries are
// computed from the full duration each time rather than accumulated,
// so rounding never shifts later parts.
func equalWindows(duration float64, n int) []window {
	windows := make([]window, n)
	for i := 0; i < n; i++ {
		windows[i] = window{
			Start: duration * float64(i) / float64(n),
			End:   duration * float64(i+1) / float64(n),
		}
	}
	windows[n-1].End = duration
	return windows
}

// normalizeBoundaries keeps timestamps strictly inside (0, duration),
// sorted and deduplicated.
func normalizeBoundaries(timestamps []float64, duration float64) []float64 {
	boundaries := make([]float64, 0, len(timestamps))
	for _, t := range timestamps {
		if t > 0 && t < duration && !math.IsNaN(t) {
			boundaries = append(boundaries, t)
		}
	}
	sort.Float64s(boundaries)

	deduped := boundaries[:0]
	for i, t := range boundaries {
		if i == 0 || t != boundaries[i-1] {
			deduped = append(deduped, t)
		}
	}
	return deduped
}

// windowsFromBoundaries turns sorted interior boundaries into windows
// tiling [0, duration).
func windowsFromBoundaries(boundaries []float64, duration float64) []window {
	edges := append(append([]float64{0}, boundaries...), duration)
	windows := make([]window, 0, len(edges)-1)
	for i := 0; i < len(edges)-1; i++ {
		windows = append(windows, window{Start: edges[i], End: edges[i+1]})
	}
	return windows
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
