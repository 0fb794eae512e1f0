package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vidslice/vidslice-api/internal/models"
	"github.com/vidslice/vidslice-api/pkg/ffmpeg"
)

var (
	splitParts      int
	splitTimestamps string
	splitQuality    string
)

// splitCmd represents the split command
var splitCmd = &cobra.Command{
	Use:   "split <video-file>",
	Short: "Split a video into parts",
	Long: `Split a local video file into parts, each with its own subtitle track.

The video is split either into a number of equal-length parts (--parts) or
at explicit boundaries in seconds (--timestamps). If a subtitle file exists
for the video, each part gets the matching window rebased to start at zero.

Example:
  vidslice-api split lecture.mp4 --parts 3
  vidslice-api split lecture.mp4 --timestamps 120,300,480 --quality high`,
	Args: cobra.ExactArgs(1),
	RunE: runSplit,
}

func init() {
	rootCmd.AddCommand(splitCmd)

	splitCmd.Flags().IntVar(&splitParts, "parts", 0, "number of equal parts")
	splitCmd.Flags().StringVar(&splitTimestamps, "timestamps", "", "comma-separated split boundaries in seconds")
	splitCmd.Flags().StringVar(&splitQuality, "quality", "", "encoding quality: low, medium, high (default medium)")
}

func runSplit(cmd *cobra.Command, args []string) error {
	videoPath := args[0]

	if (splitParts == 0) == (splitTimestamps == "") {
		return fmt.Errorf("exactly one of --parts or --timestamps is required")
	}

	quality := ffmpeg.QualityMedium
	if splitQuality != "" {
		parsed, err := ffmpeg.ParseQuality(splitQuality)
		if err != nil {
			return err
		}
		quality = parsed
	}

	a, err := buildApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	ctx := cmd.Context()

	video, err := a.videoService.RegisterLocal(ctx, videoPath)
	if err != nil {
		return err
	}

	var segments []models.Segment
	if splitParts > 0 {
		segments, err = a.segmenterService.SplitEqualParts(ctx, video.ID, splitParts, quality)
	} else {
		timestamps, parseErr := parseTimestamps(splitTimestamps)
		if parseErr != nil {
			return parseErr
		}
		segments, err = a.segmenterService.SplitAtTimestamps(ctx, video.ID, timestamps, quality)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Split %s into %d part(s):\n", videoPath, len(segments))
	for _, seg := range segments {
		fmt.Printf("  part %d  [%8.2fs - %8.2fs]  %s\n", seg.Part, seg.StartSeconds, seg.EndSeconds, seg.VideoPath)
	}
	return nil
}

func parseTimestamps(s string) ([]float64, error) {
	fields := strings.Split(s, ",")
	timestamps := make([]float64, 0, len(fields))
	for _, field := range fields {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		value, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid timestamp %q: %w", field, err)
		}
		timestamps = append(timestamps, value)
	}
	if len(timestamps) == 0 {
		return nil, fmt.Errorf("no timestamps given")
	}
	return timestamps, nil
}
