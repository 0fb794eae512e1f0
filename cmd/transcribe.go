package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vidslice/vidslice-api/internal/services/subtitlecache"
	"github.com/vidslice/vidslice-api/pkg/srt"
	"github.com/vidslice/vidslice-api/pkg/whisper"
	"golang.org/x/text/unicode/norm"
)

var (
	transcribeModel  string
	transcribePreset string
	transcribeOutput string
)

// transcribeCmd represents the transcribe command
var transcribeCmd = &cobra.Command{
	Use:   "transcribe <video-file>",
	Short: "Transcribe a video file to SRT",
	Long: `Transcribe a local video file into an SRT subtitle file.

This runs the same pipeline as the API's transcription jobs (audio
extraction, whisper, normalization) synchronously, and shares the same
subtitle cache: re-running on an unchanged file returns the cached result.

Example:
  vidslice-api transcribe lecture.mp4
  vidslice-api transcribe lecture.mp4 --model small --preset high -o lecture.srt`,
	Args: cobra.ExactArgs(1),
	RunE: runTranscribe,
}

func init() {
	rootCmd.AddCommand(transcribeCmd)

	transcribeCmd.Flags().StringVar(&transcribeModel, "model", "", "whisper model: tiny, base, small (overrides config)")
	transcribeCmd.Flags().StringVar(&transcribePreset, "preset", "", "decoding preset: fast, balanced, high (overrides config)")
	transcribeCmd.Flags().StringVarP(&transcribeOutput, "output", "o", "", "output SRT path (default: alongside the input)")
}

func runTranscribe(cmd *cobra.Command, args []string) error {
	videoPath := args[0]

	a, err := buildApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	modelName := transcribeModel
	if modelName == "" {
		modelName = a.cfg.Whisper.Model
	}
	presetName := transcribePreset
	if presetName == "" {
		presetName = a.cfg.Whisper.Preset
	}

	model, err := whisper.ParseModel(modelName)
	if err != nil {
		return err
	}
	preset, err := whisper.ParsePreset(presetName)
	if err != nil {
		return err
	}

	outPath := transcribeOutput
	if outPath == "" {
		outPath = strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + ".srt"
	}

	ctx := cmd.Context()

	key, err := subtitlecache.ComputeIdentityKey(videoPath)
	if err != nil {
		return fmt.Errorf("computing identity key: %w", err)
	}

	if entry, err := a.cacheService.Lookup(ctx, key, string(model), string(preset)); err == nil && entry != nil {
		data, err := os.ReadFile(entry.SRTPath)
		if err != nil {
			return fmt.Errorf("reading cached subtitles: %w", err)
		}
		if err := os.WriteFile(outPath, data, 0644); err != nil {
			return fmt.Errorf("writing subtitles: %w", err)
		}
		fmt.Printf("Restored from cache: %s\n", outPath)
		return nil
	}

	tmpDir, err := os.MkdirTemp("", "vidslice-transcribe-")
	if err != nil {
		return fmt.Errorf("creating temp directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	fmt.Println("Extracting audio...")
	wavPath := filepath.Join(tmpDir, "audio.wav")
	if err := a.ffmpeg.ExtractAudio(ctx, videoPath, wavPath); err != nil {
		return fmt.Errorf("extracting audio: %w", err)
	}

	fmt.Printf("Transcribing with %s/%s (this can take a while)...\n", model, preset)
	transcriber := whisper.New(a.cfg.Whisper.BinPath, model, preset, a.cfg.Whisper.Language, a.cfg.Whisper.Timeout)
	rawPath, err := transcriber.Transcribe(ctx, wavPath, tmpDir)
	if err != nil {
		return fmt.Errorf("transcription failed: %w", err)
	}

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
		return fmt.Errorf("writing subtitles: %w", err)
	}

	if _, err := a.cacheService.Store(ctx, key, string(model), string(preset), a.cfg.Whisper.Language, outPath); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to cache transcription: %v\n", err)
	}

	fmt.Printf("Wrote %s (%d entries)\n", outPath, len(track))
	return nil
}
