package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vidslice/vidslice-api/pkg/download"
)

var (
	youtubeQuality   string
	youtubeSubtitles bool
	youtubeSubsOnly  bool
	youtubeSubLangs  string
)

// youtubeCmd represents the youtube command
var youtubeCmd = &cobra.Command{
	Use:   "youtube <url>",
	Short: "Download a YouTube video",
	Long: `Download a YouTube video with yt-dlp and register it for processing.

The video lands in its own working directory under the configured work dir
and can then be transcribed or split through the API using the printed id.

With --subs-only no video is downloaded or registered; only the subtitle
track is fetched and its path printed.

Example:
  vidslice-api youtube https://www.youtube.com/watch?v=xxxx
  vidslice-api youtube https://www.youtube.com/watch?v=xxxx --quality 720p --subs
  vidslice-api youtube https://www.youtube.com/watch?v=xxxx --subs-only --sub-langs en,de`,
	Args: cobra.ExactArgs(1),
	RunE: runYouTube,
}

func init() {
	rootCmd.AddCommand(youtubeCmd)

	youtubeCmd.Flags().StringVar(&youtubeQuality, "quality", "", "video quality: best, 1080p, 720p, 480p, lowest (default best)")
	youtubeCmd.Flags().BoolVar(&youtubeSubtitles, "subs", false, "also fetch available subtitles")
	youtubeCmd.Flags().BoolVar(&youtubeSubsOnly, "subs-only", false, "fetch only subtitles, skip the video download")
	youtubeCmd.Flags().StringVar(&youtubeSubLangs, "sub-langs", "", "comma-separated subtitle language preference (default en)")
}

func runYouTube(cmd *cobra.Command, args []string) error {
	url := args[0]

	quality, err := download.ParseVideoQuality(youtubeQuality)
	if err != nil {
		return err
	}

	a, err := buildApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if youtubeSubsOnly {
		return runSubsOnly(cmd, a, url)
	}

	fmt.Printf("Downloading %s...\n", url)
	video, err := a.videoService.RegisterFromYouTube(cmd.Context(), url, quality, youtubeSubtitles)
	if err != nil {
		return err
	}

	fmt.Printf("Downloaded video %s\n", video.ID)
	fmt.Printf("  path:     %s\n", video.Path)
	fmt.Printf("  duration: %.1fs\n", video.DurationSeconds)
	if video.SubtitlePath != "" {
		fmt.Printf("  subs:     %s\n", video.SubtitlePath)
	}
	return nil
}

func runSubsOnly(cmd *cobra.Command, a *app, url string) error {
	var langs []string
	if youtubeSubLangs != "" {
		langs = strings.Split(youtubeSubLangs, ",")
	}

	fmt.Printf("Fetching subtitles for %s...\n", url)
	path, err := a.videoService.FetchSubtitles(cmd.Context(), url, langs)
	if err != nil {
		return err
	}
	if path == "" {
		return fmt.Errorf("no subtitles available for %s", url)
	}

	fmt.Printf("  subs: %s\n", path)
	return nil
}
