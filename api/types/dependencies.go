package types

import (
	"github.com/vidslice/vidslice-api/internal/database"
	"github.com/vidslice/vidslice-api/internal/services/jobs"
	"github.com/vidslice/vidslice-api/internal/services/segmenter"
	"github.com/vidslice/vidslice-api/internal/services/subtitlecache"
	"github.com/vidslice/vidslice-api/internal/services/transcription"
	"github.com/vidslice/vidslice-api/internal/services/videos"
	"github.com/vidslice/vidslice-api/internal/services/workers"
)

// Dependencies holds all the dependencies needed by handlers
type Dependencies struct {
	DB                   *database.DB
	VideoService         videos.Service
	TranscriptionService transcription.Service
	SegmenterService     segmenter.Service
	SubtitleCacheService subtitlecache.Service
	JobService           jobs.Service
	WorkerPool           *workers.WorkerPool
}
