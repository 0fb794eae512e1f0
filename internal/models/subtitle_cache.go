package models

import (
	"time"

	"gorm.io/gorm"
)

// SubtitleCache represents a completed transcription stored for reuse.
// Entries are keyed by the video's content hash plus the whisper model
// and preset, so the same file transcribed twice never runs whisper twice.
type SubtitleCache struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Cache key components
	IdentityKey string `gorm:"size:64;not null;uniqueIndex:idx_subtitle_cache_key" json:"identity_key"`
	Model       string `gorm:"not null;uniqueIndex:idx_subtitle_cache_key" json:"model"`
	Preset      string `gorm:"not null;uniqueIndex:idx_subtitle_cache_key" json:"preset"`

	// Stored artifact
	SRTPath   string `gorm:"not null" json:"srt_path"`
	SizeBytes int64  `json:"size_bytes"`

	// Metadata
	Language   string    `json:"language,omitempty"`
	CachedAt   time.Time `json:"cached_at"`
	LastUsedAt time.Time `json:"last_used_at"`
}

// TableName returns the table name for the SubtitleCache model
func (SubtitleCache) TableName() string {
	return "subtitle_cache"
}

// BeforeCreate hook to set timestamps
func (s *SubtitleCache) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now
	s.CachedAt = now
	s.LastUsedAt = now
	return nil
}

// BeforeUpdate hook to update timestamp
func (s *SubtitleCache) BeforeUpdate(tx *gorm.DB) error {
	s.UpdatedAt = time.Now()
	return nil
}

// UpdateLastUsed updates the last used timestamp
func (s *SubtitleCache) UpdateLastUsed(db *gorm.DB) error {
	s.LastUsedAt = time.Now()
	return db.Model(s).Update("last_used_at", s.LastUsedAt).Error
}
