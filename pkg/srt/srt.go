package srt

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Entry represents a single subtitle cue with its position in the track
type Entry struct {
	Index int           // 1-based sequence number
	Start time.Duration // offset from the beginning of the video
	End   time.Duration // must be greater than Start
	Text  string
}

// Track is an ordered sequence of subtitle entries. Tracks are built once
// (by Parse or ExtractWindow) and never mutated in place.
type Track []Entry

// Duration returns the end time of the last entry, or zero for an empty track.
func (t Track) Duration() time.Duration {
	if len(t) == 0 {
		return 0
	}
	return t[len(t)-1].End
}

// timestampRegex matches an SRT timing line (e.g. "00:00:01,000 --> 00:00:05,000")
var timestampRegex = regexp.MustCompile(`(\d{2,}:\d{2}:\d{2},\d{3})\s*-->\s*(\d{2,}:\d{2}:\d{2},\d{3})`)

var sequenceRegex = regexp.MustCompile(`^\d+$`)

// Parse parses SRT content into a Track.
//
// Entries are returned in the order they appear in the input; the parser does
// not sort or renumber. Cues with no text lines are skipped, matching what the
// whisper CLI produces for silent stretches.
func Parse(content string) (Track, error) {
	var track Track

	var current *Entry
	var textBuilder strings.Builder
	var sawTimestamp bool

	flush := func() {
		if current != nil && textBuilder.Len() > 0 {
			current.Text = strings.TrimRight(textBuilder.String(), "\n")
			track = append(track, *current)
		}
		current = nil
		textBuilder.Reset()
	}

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimSpace(line)

		if trimmed == "" {
			flush()
			continue
		}

		// Sequence number line: only meaningful between cues
		if current == nil && sequenceRegex.MatchString(trimmed) {
			continue
		}

		if matches := timestampRegex.FindStringSubmatch(trimmed); matches != nil {
			flush()

			start, err := parseTimestamp(matches[1])
			if err != nil {
				return nil, fmt.Errorf("parsing start timestamp %q: %w", matches[1], err)
			}
			end, err := parseTimestamp(matches[2])
			if err != nil {
				return nil, fmt.Errorf("parsing end timestamp %q: %w", matches[2], err)
			}

			current = &Entry{
				Index: len(track) + 1,
				Start: start,
				End:   end,
			}
			sawTimestamp = true
			continue
		}

		if current != nil {
			if textBuilder.Len() > 0 {
				textBuilder.WriteString("\n")
			}
			textBuilder.WriteString(line)
		}
	}
	flush()

	if !sawTimestamp && strings.TrimSpace(content) != "" {
		return nil, fmt.Errorf("no subtitle timing lines found")
	}

	return track, nil
}

// Compose serializes the track back to SRT text. Parse(Compose(t)) round-trips
// index, start, end and text exactly.
func (t Track) Compose() string {
	var builder strings.Builder
	for _, entry := range t {
		builder.WriteString(strconv.Itoa(entry.Index))
		builder.WriteString("\n")
		builder.WriteString(formatTimestamp(entry.Start))
		builder.WriteString(" --> ")
		builder.WriteString(formatTimestamp(entry.End))
		builder.WriteString("\n")
		builder.WriteString(entry.Text)
		builder.WriteString("\n\n")
	}
	return builder.String()
}

// parseTimestamp parses an SRT timestamp (HH:MM:SS,mmm)
func parseTimestamp(timestamp string) (time.Duration, error) {
	parts := strings.Split(timestamp, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid timestamp: %s", timestamp)
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hours in %s", timestamp)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minutes in %s", timestamp)
	}

	secParts := strings.Split(parts[2], ",")
	if len(secParts) != 2 {
		return 0, fmt.Errorf("invalid seconds in %s", timestamp)
	}
	seconds, err := strconv.Atoi(secParts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid seconds in %s", timestamp)
	}
	milliseconds, err := strconv.Atoi(secParts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid milliseconds in %s", timestamp)
	}

	duration := time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(milliseconds)*time.Millisecond

	return duration, nil
}

// formatTimestamp formats a duration as an SRT timestamp (HH:MM:SS,mmm)
func formatTimestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	d -= minutes * time.Minute
	seconds := d / time.Second
	d -= seconds * time.Second
	millis := d / time.Millisecond

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, millis)
}
