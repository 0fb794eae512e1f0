package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os/exec"
	"time"
)

// FFmpeg wraps ffmpeg and ffprobe functionality
type FFmpeg struct {
	ffmpegPath  string
	ffprobePath string
	timeout     time.Duration
}

// New creates a new FFmpeg instance. The timeout bounds every individual
// tool invocation; zero disables the bound.
func New(ffmpegPath, ffprobePath string, timeout time.Duration) *FFmpeg {
	return &FFmpeg{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		timeout:     timeout,
	}
}

// ValidateBinaries checks if ffmpeg and ffprobe are available
func (f *FFmpeg) ValidateBinaries() error {
	if _, err := exec.LookPath(f.ffmpegPath); err != nil {
		return fmt.Errorf("%w: %s", ErrFFmpegNotFound, f.ffmpegPath)
	}

	if _, err := exec.LookPath(f.ffprobePath); err != nil {
		return fmt.Errorf("%w: %s", ErrFFprobeNotFound, f.ffprobePath)
	}

	return nil
}

// ExtractAudio extracts the audio track of a video into a 16kHz mono PCM WAV
// file suitable for speech-to-text input.
func (f *FFmpeg) ExtractAudio(ctx context.Context, videoPath, outWav string) error {
	args := []string{
		"-i", videoPath,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "16000",
		"-ac", "1",
		"-y",
		outWav,
	}

	if stderr, err := f.run(ctx, f.ffmpegPath, args); err != nil {
		return NewProcessingError("extract_audio", videoPath, err, stderr)
	}

	return nil
}

// CutSegment writes the [start, start+duration) slice of a video to outPath.
//
// A zero-recode stream copy is attempted first; if ffmpeg exits non-zero
// (codec/container combinations that cannot be copied at an arbitrary
// keyframe) the cut is retried with a re-encode using the quality tier's
// encoder parameters. Only when both attempts fail is an error returned.
func (f *FFmpeg) CutSegment(ctx context.Context, videoPath, outPath string, start, duration float64, quality Quality) error {
	copyArgs := []string{
		"-ss", fmt.Sprintf("%.3f", start),
		"-i", videoPath,
		"-t", fmt.Sprintf("%.3f", duration),
		"-c", "copy",
		"-avoid_negative_ts", "make_zero",
		"-y",
		outPath,
	}

	stderr, err := f.run(ctx, f.ffmpegPath, copyArgs)
	if err == nil {
		return nil
	}
	log.Printf("[WARN] Stream copy failed for %s at %.3fs, re-encoding: %v", videoPath, start, err)

	params, ok := encoderPresets[quality]
	if !ok {
		params = encoderPresets[QualityMedium]
	}

	encodeArgs := []string{
		"-ss", fmt.Sprintf("%.3f", start),
		"-i", videoPath,
		"-t", fmt.Sprintf("%.3f", duration),
		"-c:v", "libx264",
		"-preset", params.Preset,
		"-crf", params.CRF,
		"-c:a", "aac",
		"-b:a", params.AudioBitrate,
		"-y",
		outPath,
	}

	if stderr2, err2 := f.run(ctx, f.ffmpegPath, encodeArgs); err2 != nil {
		// Report the re-encode failure; the copy stderr is usually noise
		// about non-seekable streams.
		_ = stderr
		return NewProcessingError("cut_segment", videoPath, err2, stderr2)
	}

	return nil
}

// BurnSubtitles renders a subtitle file into the video frames. The output is
// always re-encoded (the subtitles filter requires it) using the quality
// tier's encoder parameters.
func (f *FFmpeg) BurnSubtitles(ctx context.Context, videoPath, subtitlePath, outPath string, style SubtitleStyle, quality Quality) error {
	filter := fmt.Sprintf("subtitles=%s", escapeFilterPath(subtitlePath))
	if fs := forceStyle[style]; fs != "" {
		filter = fmt.Sprintf("%s:force_style='%s'", filter, fs)
	}

	params, ok := encoderPresets[quality]
	if !ok {
		params = encoderPresets[QualityMedium]
	}

	args := []string{
		"-i", videoPath,
		"-vf", filter,
		"-c:v", "libx264",
		"-preset", params.Preset,
		"-crf", params.CRF,
		"-c:a", "copy",
		"-y",
		outPath,
	}

	if stderr, err := f.run(ctx, f.ffmpegPath, args); err != nil {
		return NewProcessingError("burn_subtitles", videoPath, err, stderr)
	}

	return nil
}

// run executes a tool invocation with the configured timeout and returns
// captured stderr alongside any error.
func (f *FFmpeg) run(ctx context.Context, bin string, args []string) (string, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stderr.String(), err
}

// escapeFilterPath escapes characters that the ffmpeg filter parser treats
// specially in filenames.
func escapeFilterPath(path string) string {
	var out bytes.Buffer
	for _, r := range path {
		switch r {
		case '\\', ':', '\'', '[', ']', ',', ';':
			out.WriteRune('\\')
		}
		out.WriteRune(r)
	}
	return out.String()
}
