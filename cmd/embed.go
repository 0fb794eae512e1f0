package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vidslice/vidslice-api/pkg/config"
	"github.com/vidslice/vidslice-api/pkg/ffmpeg"
)

var (
	embedStyle   string
	embedQuality string
	embedOutput  string
)

// embedCmd represents the embed command
var embedCmd = &cobra.Command{
	Use:   "embed <video-file> <srt-file>",
	Short: "Burn subtitles into a video",
	Long: `Burn an SRT subtitle file into a video (hardcoded subtitles).

The subtitles are rendered into the picture with one of the named styles,
so they display everywhere regardless of player support.

Example:
  vidslice-api embed lecture.mp4 lecture.srt
  vidslice-api embed lecture.mp4 lecture.srt --style outline -o lecture_subbed.mp4`,
	Args: cobra.ExactArgs(2),
	RunE: runEmbed,
}

func init() {
	rootCmd.AddCommand(embedCmd)

	embedCmd.Flags().StringVar(&embedStyle, "style", "default", "subtitle style: default, outline, box, large")
	embedCmd.Flags().StringVar(&embedQuality, "quality", "medium", "encoding quality: low, medium, high")
	embedCmd.Flags().StringVarP(&embedOutput, "output", "o", "", "output video path (default: <input>_subtitled.mp4)")
}

func runEmbed(cmd *cobra.Command, args []string) error {
	videoPath, subtitlePath := args[0], args[1]

	style, err := ffmpeg.ParseSubtitleStyle(embedStyle)
	if err != nil {
		return err
	}
	quality, err := ffmpeg.ParseQuality(embedQuality)
	if err != nil {
		return err
	}

	outPath := embedOutput
	if outPath == "" {
		outPath = strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + "_subtitled.mp4"
	}

	cfg, err := config.GetConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	ff := ffmpeg.New(cfg.Processing.FFmpegPath, cfg.Processing.FFprobePath, cfg.Processing.FFmpegTimeout)

	fmt.Println("Burning subtitles (this re-encodes the video)...")
	if err := ff.BurnSubtitles(cmd.Context(), videoPath, subtitlePath, outPath, style, quality); err != nil {
		return err
	}

	fmt.Printf("Wrote %s\n", outPath)
	return nil
}
