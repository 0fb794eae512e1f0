package cleanup

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Service removes leftover processing files: stale transcription lock
// files and extraction audio that a crashed worker never deleted.
type Service struct {
	workDir         string
	lockDir         string
	maxAge          time.Duration
	cleanupInterval time.Duration
	cancel          context.CancelFunc
}

// NewService creates a new cleanup service
func NewService(workDir, lockDir string, maxAge, cleanupInterval time.Duration) *Service {
	return &Service{
		workDir:         workDir,
		lockDir:         lockDir,
		maxAge:          maxAge,
		cleanupInterval: cleanupInterval,
	}
}

// Start begins the cleanup service
func (s *Service) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	ticker := time.NewTicker(s.cleanupInterval)

	// Run initial cleanup
	s.cleanup()

	// Run periodic cleanup
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.cleanup()
			case <-ctx.Done():
				log.Println("[INFO] Cleanup service stopped")
				return
			}
		}
	}()

	log.Printf("[INFO] Cleanup service started (interval: %v, max age: %v)", s.cleanupInterval, s.maxAge)
}

// Stop stops the cleanup service
func (s *Service) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *Service) cleanup() {
	s.removeStaleLocks()
	s.removeLeftoverAudio()
}

// removeStaleLocks deletes claim lock files whose owner is long gone.
// An flock held by a live process survives the unlink; a waiter that is
// blocked on the old inode re-tries and picks up the new path.
func (s *Service) removeStaleLocks() {
	entries, err := os.ReadDir(s.lockDir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[WARN] Failed to read lock directory: %v", err)
		}
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".lock") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if time.Since(info.ModTime()) > s.maxAge {
			path := filepath.Join(s.lockDir, entry.Name())
			log.Printf("[DEBUG] Removing stale lock file: %s", path)
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				log.Printf("[WARN] Failed to remove lock file %s: %v", path, err)
			}
		}
	}
}

// removeLeftoverAudio walks the work directories and removes extraction
// audio that outlived its job. Finished jobs delete their own wav; one
// that is still here after maxAge belongs to a crashed worker.
func (s *Service) removeLeftoverAudio() {
	if _, err := os.Stat(s.workDir); os.IsNotExist(err) {
		return
	}

	err := filepath.Walk(s.workDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip files with errors
		}

		if info.IsDir() {
			return nil
		}

		if info.Name() == "audio.wav" && time.Since(info.ModTime()) > s.maxAge {
			log.Printf("[DEBUG] Removing leftover audio file: %s", path)
			if err := os.Remove(path); err != nil {
				log.Printf("[WARN] Failed to remove audio file %s: %v", path, err)
			}
		}

		return nil
	})

	if err != nil {
		log.Printf("[ERROR] Cleanup walk error: %v", err)
	}
}
