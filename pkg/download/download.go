// Package download fetches source videos, either through yt-dlp for sites
// like YouTube or over plain HTTP for direct media URLs.
package download

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Options configures the fetcher behavior
type Options struct {
	YtdlpPath  string        // yt-dlp binary (default "yt-dlp")
	OutputDir  string        // Directory downloads land in
	Timeout    time.Duration // Bound for a single download
	UserAgent  string        // User agent for direct HTTP downloads
	MaxSize    int64         // Maximum file size for direct downloads (0 = no limit)
	MaxRetries uint64        // Transient-retry attempts for direct downloads
}

// DefaultOptions returns default fetcher options
func DefaultOptions() Options {
	return Options{
		YtdlpPath:  "yt-dlp",
		OutputDir:  os.TempDir(),
		Timeout:    15 * time.Minute,
		UserAgent:  "VidsliceAPI/1.0",
		MaxSize:    2 * 1024 * 1024 * 1024, // 2GB
		MaxRetries: 3,
	}
}

// Result describes a fetched video
type Result struct {
	VideoPath    string // Path to the downloaded video
	SubtitlePath string // Path to a downloaded subtitle file, if any
	SizeBytes    int64
}

// VideoQuality selects the yt-dlp format for site downloads
type VideoQuality string

const (
	QualityBest   VideoQuality = "best"
	Quality1080p  VideoQuality = "1080p"
	Quality720p   VideoQuality = "720p"
	Quality480p   VideoQuality = "480p"
	QualityLowest VideoQuality = "lowest"
)

// ParseVideoQuality validates a quality string; empty means best.
func ParseVideoQuality(s string) (VideoQuality, error) {
	switch VideoQuality(s) {
	case "":
		return QualityBest, nil
	case QualityBest, Quality1080p, Quality720p, Quality480p, QualityLowest:
		return VideoQuality(s), nil
	default:
		return "", fmt.Errorf("unknown video quality %q", s)
	}
}

var formatSelectors = map[VideoQuality]string{
	QualityBest:   "bestvideo+bestaudio/best",
	Quality1080p:  "bestvideo[height<=1080]+bestaudio/best[height<=1080]",
	Quality720p:   "bestvideo[height<=720]+bestaudio/best[height<=720]",
	Quality480p:   "bestvideo[height<=480]+bestaudio/best[height<=480]",
	QualityLowest: "worstvideo+worstaudio/worst",
}

// Fetcher downloads source videos into a working directory
type Fetcher struct {
	client  *http.Client
	options Options
}

// NewFetcher creates a new fetcher with the given options
func NewFetcher(options Options) *Fetcher {
	if options.YtdlpPath == "" {
		options.YtdlpPath = "yt-dlp"
	}
	return &Fetcher{
		client: &http.Client{
			Timeout: options.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     30 * time.Second,
				DisableCompression:  true,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		options: options,
	}
}

// DownloadVideo fetches a video from a site URL with yt-dlp. When
// wantSubtitles is set, available subtitles for the preferred languages are
// saved next to the video and returned in the result.
func (f *Fetcher) DownloadVideo(ctx context.Context, url string, quality VideoQuality, wantSubtitles bool, subtitleLangs []string) (*Result, error) {
	if _, err := exec.LookPath(f.options.YtdlpPath); err != nil {
		return nil, fmt.Errorf("yt-dlp binary not found: %s", f.options.YtdlpPath)
	}

	selector, ok := formatSelectors[quality]
	if !ok {
		selector = formatSelectors[QualityBest]
	}

	outputTemplate := filepath.Join(f.options.OutputDir, "source.%(ext)s")

	args := []string{
		"-f", selector,
		"--merge-output-format", "mp4",
		"--no-playlist",
		"-o", outputTemplate,
	}

	if wantSubtitles {
		langs := "en"
		if len(subtitleLangs) > 0 {
			langs = strings.Join(subtitleLangs, ",")
		}
		args = append(args, "--write-subs", "--write-auto-subs", "--sub-langs", langs, "--convert-subs", "srt")
	}

	args = append(args, url)

	log.Printf("[DEBUG] Running yt-dlp for %s (quality %s)", url, quality)
	if err := f.runYtdlp(ctx, args); err != nil {
		return nil, err
	}

	videoPath := filepath.Join(f.options.OutputDir, "source.mp4")
	info, err := os.Stat(videoPath)
	if err != nil {
		return nil, fmt.Errorf("yt-dlp reported success but no video at %s", videoPath)
	}

	result := &Result{VideoPath: videoPath, SizeBytes: info.Size()}
	if wantSubtitles {
		result.SubtitlePath = f.findSubtitleFile()
	}

	return result, nil
}

// FetchSubtitlesOnly downloads only the subtitle track for a URL, preferring
// the given languages in order. Returns an empty path when the site has none.
func (f *Fetcher) FetchSubtitlesOnly(ctx context.Context, url string, preferredLangs []string) (string, error) {
	if _, err := exec.LookPath(f.options.YtdlpPath); err != nil {
		return "", fmt.Errorf("yt-dlp binary not found: %s", f.options.YtdlpPath)
	}

	langs := "en"
	if len(preferredLangs) > 0 {
		langs = strings.Join(preferredLangs, ",")
	}

	args := []string{
		"--skip-download",
		"--write-subs", "--write-auto-subs",
		"--sub-langs", langs,
		"--convert-subs", "srt",
		"--no-playlist",
		"-o", filepath.Join(f.options.OutputDir, "source.%(ext)s"),
		url,
	}

	if err := f.runYtdlp(ctx, args); err != nil {
		return "", err
	}

	return f.findSubtitleFile(), nil
}

// DownloadDirect downloads a direct media URL over HTTP. Transient failures
// (network errors, 5xx) are retried with exponential backoff.
func (f *Fetcher) DownloadDirect(ctx context.Context, url string) (*Result, error) {
	var result *Result

	operation := func() error {
		r, err := f.downloadOnce(ctx, url)
		if err != nil {
			return err
		}
		result = r
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), f.options.MaxRetries), ctx)

	if err := backoff.Retry(operation, policy); err != nil {
		return nil, fmt.Errorf("downloading %s: %w", url, err)
	}

	return result, nil
}

func (f *Fetcher) downloadOnce(ctx context.Context, url string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("User-Agent", f.options.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("server returned status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		return nil, backoff.Permanent(fmt.Errorf("server returned status %d", resp.StatusCode))
	}

	if f.options.MaxSize > 0 && resp.ContentLength > f.options.MaxSize {
		return nil, backoff.Permanent(fmt.Errorf("file too large: %d bytes (max %d)", resp.ContentLength, f.options.MaxSize))
	}

	out, err := os.Create(filepath.Join(f.options.OutputDir, "source"+urlExtension(url)))
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to create output file: %w", err))
	}
	defer out.Close()

	// Chunked responses carry no Content-Length, so the size check above
	// never saw them. Read one byte past the limit to detect oversize
	// bodies instead of silently truncating.
	var reader io.Reader = resp.Body
	if f.options.MaxSize > 0 {
		reader = io.LimitReader(resp.Body, f.options.MaxSize+1)
	}

	written, err := io.Copy(out, reader)
	if err != nil {
		os.Remove(out.Name())
		return nil, fmt.Errorf("failed to write download: %w", err)
	}

	if f.options.MaxSize > 0 && written > f.options.MaxSize {
		os.Remove(out.Name())
		return nil, backoff.Permanent(fmt.Errorf("file too large: body exceeds %d bytes", f.options.MaxSize))
	}

	log.Printf("[DEBUG] Downloaded %d bytes to %s", written, out.Name())

	return &Result{VideoPath: out.Name(), SizeBytes: written}, nil
}

// runYtdlp executes yt-dlp with the configured timeout and stderr capture
func (f *Fetcher) runYtdlp(ctx context.Context, args []string) error {
	if f.options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.options.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, f.options.YtdlpPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("yt-dlp failed: %w (stderr: %s)", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// findSubtitleFile locates an SRT file yt-dlp wrote next to the video.
// yt-dlp names them source.<lang>.srt; the first match wins.
func (f *Fetcher) findSubtitleFile() string {
	matches, err := filepath.Glob(filepath.Join(f.options.OutputDir, "source.*.srt"))
	if err != nil || len(matches) == 0 {
		return ""
	}
	return matches[0]
}

// urlExtension pulls a sensible file extension from a media URL
func urlExtension(url string) string {
	base := url
	if idx := strings.Index(base, "?"); idx > 0 {
		base = base[:idx]
	}
	ext := strings.ToLower(filepath.Ext(base))
	switch ext {
	case ".mp4", ".mkv", ".avi", ".mov", ".webm":
		return ext
	}
	return ".mp4"
}
