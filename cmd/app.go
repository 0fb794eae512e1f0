package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/vidslice/vidslice-api/internal/database"
	"github.com/vidslice/vidslice-api/internal/models"
	"github.com/vidslice/vidslice-api/internal/services/jobs"
	"github.com/vidslice/vidslice-api/internal/services/segmenter"
	"github.com/vidslice/vidslice-api/internal/services/subtitlecache"
	"github.com/vidslice/vidslice-api/internal/services/transcription"
	"github.com/vidslice/vidslice-api/internal/services/videos"
	"github.com/vidslice/vidslice-api/internal/services/workers"
	"github.com/vidslice/vidslice-api/pkg/config"
	"github.com/vidslice/vidslice-api/pkg/download"
	"github.com/vidslice/vidslice-api/pkg/ffmpeg"
)

// app bundles the database connection and the service graph. Both the
// serve command and the one-shot tool commands build the same graph.
type app struct {
	cfg                  *config.Config
	db                   *database.DB
	ffmpeg               *ffmpeg.FFmpeg
	jobService           jobs.Service
	cacheService         subtitlecache.Service
	videoService         videos.Service
	segmenterService     segmenter.Service
	transcriptionService transcription.Service
	lockDir              string
}

// buildApp initializes the database, runs migrations and wires up all
// services from the loaded configuration.
func buildApp() (*app, error) {
	cfg, err := config.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := database.Initialize(cfg.Database.Path, cfg.Database.Verbose)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.AutoMigrate(
		&models.Job{},
		&models.Video{},
		&models.SubtitleCache{},
		&models.Segment{},
	); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	ff := ffmpeg.New(cfg.Processing.FFmpegPath, cfg.Processing.FFprobePath, cfg.Processing.FFmpegTimeout)

	cacheStorage, err := subtitlecache.NewFilesystemStorage(cfg.Storage.CacheDir)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize subtitle cache storage: %w", err)
	}

	jobService := jobs.NewService(jobs.NewRepository(db.DB))
	cacheService := subtitlecache.NewService(subtitlecache.NewRepository(db.DB), cacheStorage)

	downloadOpts := download.Options{
		YtdlpPath:  cfg.Download.YtdlpPath,
		Timeout:    cfg.Download.Timeout,
		MaxSize:    cfg.Download.MaxSize,
		MaxRetries: uint64(cfg.Download.MaxRetries),
	}
	videoService := videos.NewService(videos.NewRepository(db.DB), ff, cfg.Storage.WorkDir, downloadOpts)
	segmenterService := segmenter.NewService(segmenter.NewRepository(db.DB), videoService, ff, cfg.Processing.MaxSplitParts)
	transcriptionService := transcription.NewService(jobService, cacheService, videoService)

	return &app{
		cfg:                  cfg,
		db:                   db,
		ffmpeg:               ff,
		jobService:           jobService,
		cacheService:         cacheService,
		videoService:         videoService,
		segmenterService:     segmenterService,
		transcriptionService: transcriptionService,
		lockDir:              filepath.Join(cfg.Storage.CacheDir, "locks"),
	}, nil
}

// Close releases the database connection
func (a *app) Close() error {
	return a.db.Close()
}

// newWorkerPool creates a worker pool with all job processors registered
func (a *app) newWorkerPool() *workers.WorkerPool {
	pool := workers.NewWorkerPool(a.jobService, a.cfg.Processing.Workers, a.cfg.Processing.PollInterval)
	pool.RegisterProcessor(workers.NewTranscriptionProcessor(
		a.jobService,
		a.cacheService,
		a.ffmpeg,
		a.cfg.Whisper.BinPath,
		a.cfg.Whisper.Language,
		a.cfg.Whisper.Timeout,
		a.lockDir,
	))
	pool.RegisterProcessor(workers.NewEmbedProcessor(a.jobService, a.ffmpeg))
	return pool
}
