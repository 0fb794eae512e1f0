package videos

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/vidslice/vidslice-api/internal/models"
	"github.com/vidslice/vidslice-api/internal/services/subtitlecache"
	"github.com/vidslice/vidslice-api/pkg/download"
)

type service struct {
	repo         Repository
	prober       Prober
	baseWorkDir  string
	downloadOpts download.Options
}

// NewService creates a new video registration service. downloadOpts is
// used as a template; each download gets the video's own working
// directory as its output dir.
func NewService(repo Repository, prober Prober, baseWorkDir string, downloadOpts download.Options) Service {
	return &service{
		repo:         repo,
		prober:       prober,
		baseWorkDir:  baseWorkDir,
		downloadOpts: downloadOpts,
	}
}

func (s *service) RegisterUpload(ctx context.Context, filename string, data io.Reader) (*models.Video, error) {
	id := uuid.NewString()
	workDir := filepath.Join(s.baseWorkDir, id)
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return nil, fmt.Errorf("creating work directory: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".mp4"
	}
	videoPath := filepath.Join(workDir, "source"+ext)

	out, err := os.Create(videoPath)
	if err != nil {
		os.RemoveAll(workDir)
		return nil, fmt.Errorf("creating video file: %w", err)
	}

	size, err := io.Copy(out, data)
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.RemoveAll(workDir)
		return nil, fmt.Errorf("writing video file: %w", err)
	}

	video := &models.Video{
		ID:        id,
		Source:    models.VideoSourceUpload,
		Path:      videoPath,
		WorkDir:   workDir,
		SizeBytes: size,
	}

	if err := s.finishRegistration(ctx, video); err != nil {
		os.RemoveAll(workDir)
		return nil, err
	}

	log.Printf("[INFO] Registered uploaded video %s (%s, %d bytes)", id, filename, size)

	return video, nil
}

func (s *service) RegisterFromYouTube(ctx context.Context, url string, quality download.VideoQuality, withSubtitles bool) (*models.Video, error) {
	id := uuid.NewString()
	workDir := filepath.Join(s.baseWorkDir, id)
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return nil, fmt.Errorf("creating work directory: %w", err)
	}

	opts := s.downloadOpts
	opts.OutputDir = workDir
	fetcher := download.NewFetcher(opts)

	result, err := fetcher.DownloadVideo(ctx, url, quality, withSubtitles, nil)
	if err != nil {
		os.RemoveAll(workDir)
		return nil, fmt.Errorf("downloading video: %w", err)
	}

	video := &models.Video{
		ID:           id,
		Source:       models.VideoSourceYouTube,
		SourceURL:    url,
		Path:         result.VideoPath,
		WorkDir:      workDir,
		SizeBytes:    result.SizeBytes,
		SubtitlePath: result.SubtitlePath,
	}

	if err := s.finishRegistration(ctx, video); err != nil {
		os.RemoveAll(workDir)
		return nil, err
	}

	log.Printf("[INFO] Registered YouTube video %s from %s", id, url)

	return video, nil
}

func (s *service) FetchSubtitles(ctx context.Context, url string, preferredLangs []string) (string, error) {
	dir := filepath.Join(s.baseWorkDir, "subs-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating work directory: %w", err)
	}

	opts := s.downloadOpts
	opts.OutputDir = dir
	fetcher := download.NewFetcher(opts)

	path, err := fetcher.FetchSubtitlesOnly(ctx, url, preferredLangs)
	if err != nil {
		os.RemoveAll(dir)
		return "", fmt.Errorf("fetching subtitles: %w", err)
	}
	if path == "" {
		// Nothing downloaded, no reason to keep the directory around.
		os.RemoveAll(dir)
		return "", nil
	}

	log.Printf("[INFO] Fetched subtitles for %s -> %s", url, path)

	return path, nil
}

func (s *service) RegisterFromURL(ctx context.Context, url string) (*models.Video, error) {
	id := uuid.NewString()
	workDir := filepath.Join(s.baseWorkDir, id)
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return nil, fmt.Errorf("creating work directory: %w", err)
	}

	opts := s.downloadOpts
	opts.OutputDir = workDir
	fetcher := download.NewFetcher(opts)

	result, err := fetcher.DownloadDirect(ctx, url)
	if err != nil {
		os.RemoveAll(workDir)
		return nil, fmt.Errorf("downloading video: %w", err)
	}

	video := &models.Video{
		ID:        id,
		Source:    models.VideoSourceURL,
		SourceURL: url,
		Path:      result.VideoPath,
		WorkDir:   workDir,
		SizeBytes: result.SizeBytes,
	}

	if err := s.finishRegistration(ctx, video); err != nil {
		os.RemoveAll(workDir)
		return nil, err
	}

	log.Printf("[INFO] Registered video %s from %s", id, url)

	return video, nil
}

func (s *service) RegisterLocal(ctx context.Context, path string) (*models.Video, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("video file not accessible: %w", err)
	}

	id := uuid.NewString()
	workDir := filepath.Join(s.baseWorkDir, id)
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return nil, fmt.Errorf("creating work directory: %w", err)
	}

	video := &models.Video{
		ID:        id,
		Source:    models.VideoSourceUpload,
		Path:      path,
		WorkDir:   workDir,
		SizeBytes: info.Size(),
	}

	if err := s.finishRegistration(ctx, video); err != nil {
		os.RemoveAll(workDir)
		return nil, err
	}

	return video, nil
}

// finishRegistration probes the duration, derives the identity key, and
// persists the record. The duration is cached on the record so later
// operations never re-probe.
func (s *service) finishRegistration(ctx context.Context, video *models.Video) error {
	duration, err := s.prober.ProbeDuration(ctx, video.Path)
	if err != nil {
		return fmt.Errorf("probing video duration: %w", err)
	}
	video.DurationSeconds = duration

	key, err := subtitlecache.ComputeIdentityKey(video.Path)
	if err != nil {
		return fmt.Errorf("computing identity key: %w", err)
	}
	video.IdentityKey = key

	if err := s.repo.Create(ctx, video); err != nil {
		return fmt.Errorf("creating video record: %w", err)
	}

	return nil
}

func (s *service) GetVideo(ctx context.Context, id string) (*models.Video, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListVideos(ctx context.Context) ([]models.Video, error) {
	return s.repo.List(ctx)
}

func (s *service) DeleteVideo(ctx context.Context, id string) error {
	video, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if video.WorkDir != "" {
		if err := os.RemoveAll(video.WorkDir); err != nil {
			log.Printf("[WARN] Failed to remove work directory %s: %v", video.WorkDir, err)
		}
	}

	return nil
}
