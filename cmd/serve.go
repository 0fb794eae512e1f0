package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/vidslice/vidslice-api/api"
	"github.com/vidslice/vidslice-api/api/types"
	"github.com/vidslice/vidslice-api/internal/services/cleanup"
)

var (
	serverHost string
	serverPort int
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long: `Start the Vidslice API server with the configured settings.

The server accepts video uploads and download requests, runs transcription
jobs on a background worker pool, and serves split segments with their
subtitle tracks.

Example:
  vidslice-api serve
  vidslice-api serve --port 9090
  vidslice-api serve --host 0.0.0.0 --port 8080`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	// Server flags
	serveCmd.Flags().StringVar(&serverHost, "host", "", "server host (overrides config)")
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "server port (overrides config)")
}

func runServer(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Printf("[WARN] Failed to close database: %v", err)
		}
	}()

	// Missing binaries only matter once a job actually runs, so warn
	// instead of refusing to start.
	if err := a.ffmpeg.ValidateBinaries(); err != nil {
		log.Printf("[WARN] %v", err)
	}

	// Use config values if flags not provided
	if serverHost == "" {
		serverHost = a.cfg.Server.Host
	}
	if serverPort == 0 {
		serverPort = a.cfg.Server.Port
	}

	// Start the background worker pool
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	pool := a.newWorkerPool()
	if err := pool.Start(workerCtx); err != nil {
		return fmt.Errorf("failed to start worker pool: %w", err)
	}

	// Reap stale lock files and crashed workers' leftover audio
	reaper := cleanup.NewService(a.cfg.Storage.WorkDir, a.lockDir, 24*time.Hour, time.Hour)
	reaper.Start(workerCtx)
	defer reaper.Stop()

	// Periodically prune finished job rows
	go func() {
		ticker := time.NewTicker(6 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				if n, err := a.jobService.CleanupOldJobs(workerCtx, 7); err != nil {
					log.Printf("[WARN] Job cleanup failed: %v", err)
				} else if n > 0 {
					log.Printf("[INFO] Pruned %d old job(s)", n)
				}
			}
		}
	}()

	// Create and initialize the HTTP server
	srv := api.NewServer(fmt.Sprintf("%s:%d", serverHost, serverPort))
	srv.SetDependencies(&types.Dependencies{
		DB:                   a.db,
		VideoService:         a.videoService,
		TranscriptionService: a.transcriptionService,
		SegmenterService:     a.segmenterService,
		SubtitleCacheService: a.cacheService,
		JobService:           a.jobService,
		WorkerPool:           pool,
	})
	if err := srv.Initialize(); err != nil {
		pool.Stop()
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	// Channel to listen for interrupt signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Channel to receive server errors
	serverErr := make(chan error, 1)

	// Start server in a goroutine
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			serverErr <- fmt.Errorf("server error: %w", err)
		}
	}()

	log.Printf("[INFO] Server is ready to handle requests at %s:%d", serverHost, serverPort)

	// Wait for interrupt signal or server error
	select {
	case <-stop:
		log.Printf("[INFO] Shutting down server...")
	case err := <-serverErr:
		log.Printf("[ERROR] %v", err)
		log.Printf("[INFO] Shutting down server...")
	}

	// Create a context with timeout for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	// Drain in-flight requests before stopping the workers so status
	// polls see final job state.
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("[ERROR] Server forced to shutdown: %v", err)
		pool.Stop()
		return err
	}

	pool.Stop()
	stopWorkers()

	log.Printf("[INFO] Server gracefully stopped")
	return nil
}
