package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cachePruneDays int

// cacheCmd represents the cache command
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the subtitle cache",
	Long: `Inspect and maintain the transcription result cache.

Available subcommands:
  stats  - Show entry count, total size and entry age range
  prune  - Remove cache entries older than a cutoff`,
}

// cacheStatsCmd shows cache statistics
var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show subtitle cache statistics",
	RunE:  runCacheStats,
}

// cachePruneCmd removes old cache entries
var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old subtitle cache entries",
	Long: `Remove cache entries (database rows and cached SRT files) whose
last use is older than the cutoff. Fresh entries are kept.`,
	RunE: runCachePrune,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cachePruneCmd)

	cachePruneCmd.Flags().IntVar(&cachePruneDays, "days", 30, "remove entries not used in this many days")
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	stats, err := a.cacheService.GetCacheStats(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Println("Subtitle Cache")
	fmt.Printf("  entries: %d\n", stats.TotalEntries)
	fmt.Printf("  size:    %d bytes\n", stats.TotalSizeBytes)
	if stats.TotalEntries > 0 {
		fmt.Printf("  oldest:  %s\n", stats.OldestEntry)
		fmt.Printf("  newest:  %s\n", stats.NewestEntry)
	}
	return nil
}

func runCachePrune(cmd *cobra.Command, args []string) error {
	if cachePruneDays < 1 {
		return fmt.Errorf("--days must be at least 1, got %d", cachePruneDays)
	}

	a, err := buildApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if err := a.cacheService.CleanupOldCache(cmd.Context(), cachePruneDays); err != nil {
		return err
	}

	fmt.Printf("Pruned cache entries older than %d day(s)\n", cachePruneDays)
	return nil
}
