package ffmpeg

import "fmt"

// Quality selects the encoder parameters used when a segment cut has to be
// re-encoded (the stream-copy fast path carries no quality knob).
type Quality string

const (
	QualityLow    Quality = "low"
	QualityMedium Quality = "medium"
	QualityHigh   Quality = "high"
)

// encoderParams holds the libx264/aac tuple for one quality tier
type encoderParams struct {
	Preset       string
	CRF          string
	AudioBitrate string
}

var encoderPresets = map[Quality]encoderParams{
	QualityLow:    {Preset: "veryfast", CRF: "28", AudioBitrate: "96k"},
	QualityMedium: {Preset: "medium", CRF: "23", AudioBitrate: "128k"},
	QualityHigh:   {Preset: "slow", CRF: "18", AudioBitrate: "192k"},
}

// ParseQuality validates a quality tier name, defaulting to medium for the
// empty string.
func ParseQuality(s string) (Quality, error) {
	switch Quality(s) {
	case "":
		return QualityMedium, nil
	case QualityLow, QualityMedium, QualityHigh:
		return Quality(s), nil
	default:
		return "", fmt.Errorf("unknown quality %q (expected low, medium or high)", s)
	}
}

// SubtitleStyle names a rendering style applied when burning subtitles into
// a video. Styles are independent of the video quality tier.
type SubtitleStyle string

const (
	StyleDefault SubtitleStyle = "default"
	StyleOutline SubtitleStyle = "outline"
	StyleBox     SubtitleStyle = "box"
	StyleLarge   SubtitleStyle = "large"
)

// forceStyle maps a style to an ASS force_style clause for the subtitles
// filter; the default style passes no override.
var forceStyle = map[SubtitleStyle]string{
	StyleDefault: "",
	StyleOutline: "Outline=2,Shadow=1",
	StyleBox:     "BorderStyle=3,Outline=1,Shadow=0",
	StyleLarge:   "Fontsize=28,Outline=2",
}

// ParseSubtitleStyle validates a style name, defaulting to the plain style.
func ParseSubtitleStyle(s string) (SubtitleStyle, error) {
	switch SubtitleStyle(s) {
	case "":
		return StyleDefault, nil
	case StyleDefault, StyleOutline, StyleBox, StyleLarge:
		return SubtitleStyle(s), nil
	default:
		return "", fmt.Errorf("unknown subtitle style %q", s)
	}
}
