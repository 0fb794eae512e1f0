package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vidslice/vidslice-api/internal/models"
)

func TestInitialize(t *testing.T) {
	tests := []struct {
		name   string
		dbPath string
	}{
		{name: "in-memory database", dbPath: ":memory:"},
		{name: "file database", dbPath: filepath.Join(t.TempDir(), "vidslice.db")},
		{name: "empty path falls back to in-memory", dbPath: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, err := Initialize(tt.dbPath, false)
			require.NoError(t, err)
			require.NotNil(t, conn)
			defer conn.Close()

			assert.NoError(t, conn.HealthCheck())
		})
	}
}

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name   string
		dbPath string
		want   string
	}{
		{
			name:   "file path gets WAL and busy timeout",
			dbPath: "/data/vidslice.db",
			want:   "/data/vidslice.db?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on",
		},
		{
			name:   "memory path skips WAL",
			dbPath: ":memory:",
			want:   ":memory:?_busy_timeout=5000&_foreign_keys=on",
		},
		{
			name:   "empty path becomes memory",
			dbPath: "",
			want:   ":memory:?_busy_timeout=5000&_foreign_keys=on",
		},
		{
			name:   "explicit DSN params win",
			dbPath: "/data/vidslice.db?_busy_timeout=100",
			want:   "/data/vidslice.db?_busy_timeout=100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildDSN(tt.dbPath))
		})
	}
}

func TestInitialize_AppliesConnectionSettings(t *testing.T) {
	conn, err := Initialize(filepath.Join(t.TempDir(), "vidslice.db"), false)
	require.NoError(t, err)
	defer conn.Close()

	var journalMode string
	require.NoError(t, conn.DB.Raw("PRAGMA journal_mode").Scan(&journalMode).Error)
	assert.Equal(t, "wal", journalMode)

	var busyTimeout int
	require.NoError(t, conn.DB.Raw("PRAGMA busy_timeout").Scan(&busyTimeout).Error)
	assert.Equal(t, 5000, busyTimeout)

	var foreignKeys int
	require.NoError(t, conn.DB.Raw("PRAGMA foreign_keys").Scan(&foreignKeys).Error)
	assert.Equal(t, 1, foreignKeys)
}

func TestDB_Close(t *testing.T) {
	conn, err := Initialize(":memory:", false)
	require.NoError(t, err)

	require.NoError(t, conn.Close())
	assert.Error(t, conn.HealthCheck(), "HealthCheck should fail after close")
}

func TestDB_HealthCheck(t *testing.T) {
	t.Run("healthy connection", func(t *testing.T) {
		conn, err := Initialize(":memory:", false)
		require.NoError(t, err)
		defer conn.Close()

		assert.NoError(t, conn.HealthCheck())
	})

	t.Run("nil connection", func(t *testing.T) {
		var conn *DB
		assert.Error(t, conn.HealthCheck())
	})
}

func TestDB_AutoMigrateApplicationModels(t *testing.T) {
	conn, err := Initialize(":memory:", false)
	require.NoError(t, err)
	require.NotNil(t, conn)
	defer conn.Close()

	err = conn.AutoMigrate(
		&models.Job{},
		&models.Video{},
		&models.SubtitleCache{},
		&models.Segment{},
	)
	require.NoError(t, err)

	for _, table := range []string{"jobs", "videos", "subtitle_cache", "segments"} {
		var count int64
		err := conn.DB.Raw("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count).Error
		assert.NoError(t, err)
		assert.Equal(t, int64(1), count, "%s table should exist", table)
	}
}

func TestMigratedJobRoundTrip(t *testing.T) {
	conn, err := Initialize(":memory:", false)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.AutoMigrate(&models.Job{}))

	job := models.Job{
		Type:        models.JobTypeTranscription,
		Status:      models.JobStatusPending,
		Stage:       models.StageNotStarted,
		IdentityKey: "3f786850e387550f:tiny:fast",
		Payload:     models.JobPayload{"video_id": "abc"},
	}
	require.NoError(t, conn.DB.Create(&job).Error)

	var loaded models.Job
	require.NoError(t, conn.DB.First(&loaded, job.ID).Error)
	assert.Equal(t, models.JobTypeTranscription, loaded.Type)
	assert.Equal(t, "3f786850e387550f:tiny:fast", loaded.IdentityKey)
	assert.Equal(t, "abc", loaded.Payload["video_id"])
}
