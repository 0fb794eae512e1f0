package types

// YouTubeDownloadRequest is the body for registering a YouTube video
type YouTubeDownloadRequest struct {
	URL       string `json:"url" binding:"required"`
	Quality   string `json:"quality,omitempty"`
	Subtitles bool   `json:"subtitles,omitempty"`
}

// URLDownloadRequest is the body for registering a direct-URL video
type URLDownloadRequest struct {
	URL string `json:"url" binding:"required"`
}

// TranscribeRequest is the body for starting a transcription
type TranscribeRequest struct {
	Model  string `json:"model,omitempty"`
	Preset string `json:"preset,omitempty"`
}

// SplitRequest is the body for splitting a video. Exactly one of
// Parts or Timestamps must be given.
type SplitRequest struct {
	Parts      int       `json:"parts,omitempty"`
	Timestamps []float64 `json:"timestamps,omitempty"`
	Quality    string    `json:"quality,omitempty"`
}

// EmbedRequest is the body for burning subtitles into a video
type EmbedRequest struct {
	Style   string `json:"style,omitempty"`
	Quality string `json:"quality,omitempty"`
}
