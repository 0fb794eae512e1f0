package models

import (
	"time"
)

// VideoSource identifies where a video came from
type VideoSource string

const (
	VideoSourceUpload  VideoSource = "upload"
	VideoSourceYouTube VideoSource = "youtube"
	VideoSourceURL     VideoSource = "url"
)

// Video represents a registered video file and its working directory
type Video struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Source    VideoSource `gorm:"not null" json:"source"`
	SourceURL string      `json:"source_url,omitempty"`

	// Filesystem layout
	Path    string `gorm:"not null" json:"path"`
	WorkDir string `gorm:"not null" json:"work_dir"`

	// IdentityKey is the content hash of the video file; all cache lookups
	// and claim locks key off it rather than the path.
	IdentityKey string `gorm:"size:64;index" json:"identity_key"`

	SizeBytes       int64   `json:"size_bytes"`
	DurationSeconds float64 `json:"duration_seconds"`

	// Path to an SRT that arrived with the video (yt-dlp subtitles), if any
	SubtitlePath string `json:"subtitle_path,omitempty"`
}

// HasDuration reports whether the duration has been probed yet.
func (v *Video) HasDuration() bool {
	return v.DurationSeconds > 0
}

// TableName returns the table name for the Video model
func (Video) TableName() string {
	return "videos"
}
