package models

import (
	"time"
)

// Segment represents one part of a split video, together with the
// subtitle window rebased to its local timeline.
type Segment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	VideoID string `gorm:"size:36;not null;uniqueIndex:idx_segments_video_part" json:"video_id"`
	Part    int    `gorm:"not null;uniqueIndex:idx_segments_video_part" json:"part"` // 1-based

	StartSeconds float64 `json:"start_seconds"`
	EndSeconds   float64 `json:"end_seconds"`

	VideoPath    string `gorm:"not null" json:"video_path"`
	SubtitlePath string `json:"subtitle_path,omitempty"`
	SizeBytes    int64  `json:"size_bytes"`
}

// DurationSeconds returns the length of the segment.
func (s *Segment) DurationSeconds() float64 {
	return s.EndSeconds - s.StartSeconds
}

// TableName returns the table name for the Segment model
func (Segment) TableName() string {
	return "segments"
}
