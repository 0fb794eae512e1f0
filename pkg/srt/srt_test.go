package srt

import (
	"strings"
	"testing"
	"time"
)

const sampleSRT = `1
00:00:00,000 --> 00:00:03,500
Welcome to the channel.

2
00:00:03,500 --> 00:00:07,250
Today we are splitting videos.

3
00:00:07,250 --> 00:00:12,000
And keeping the subtitles in sync.
`

func TestParse(t *testing.T) {
	track, err := Parse(sampleSRT)
	if err != nil {
		t.Fatalf("Failed to parse SRT: %v", err)
	}

	if len(track) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(track))
	}

	if track[0].Start != 0 || track[0].End != 3500*time.Millisecond {
		t.Errorf("First entry timing mismatch: %v --> %v", track[0].Start, track[0].End)
	}

	if track[1].Text != "Today we are splitting videos." {
		t.Errorf("Second entry text mismatch: %q", track[1].Text)
	}

	if track.Duration() != 12*time.Second {
		t.Errorf("Expected track duration of 12s, got %v", track.Duration())
	}
}

func TestParseMultilineText(t *testing.T) {
	content := `1
00:00:01,000 --> 00:00:04,000
First line
second line
`

	track, err := Parse(content)
	if err != nil {
		t.Fatalf("Failed to parse SRT: %v", err)
	}

	if len(track) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(track))
	}

	if track[0].Text != "First line\nsecond line" {
		t.Errorf("Multiline text mismatch: %q", track[0].Text)
	}
}

func TestParseCRLF(t *testing.T) {
	content := strings.ReplaceAll(sampleSRT, "\n", "\r\n")

	track, err := Parse(content)
	if err != nil {
		t.Fatalf("Failed to parse CRLF SRT: %v", err)
	}

	if len(track) != 3 {
		t.Errorf("Expected 3 entries, got %d", len(track))
	}

	if strings.Contains(track[0].Text, "\r") {
		t.Errorf("Carriage return leaked into text: %q", track[0].Text)
	}
}

func TestParseEmpty(t *testing.T) {
	track, err := Parse("")
	if err != nil {
		t.Fatalf("Empty content should parse to an empty track, got error: %v", err)
	}
	if len(track) != 0 {
		t.Errorf("Expected empty track, got %d entries", len(track))
	}
}

func TestParseNoTimings(t *testing.T) {
	if _, err := Parse("just some text\nwith no cues"); err == nil {
		t.Error("Expected error for content without timing lines")
	}
}

func TestComposeRoundTrip(t *testing.T) {
	track, err := Parse(sampleSRT)
	if err != nil {
		t.Fatalf("Failed to parse SRT: %v", err)
	}

	reparsed, err := Parse(track.Compose())
	if err != nil {
		t.Fatalf("Failed to reparse composed SRT: %v", err)
	}

	if len(reparsed) != len(track) {
		t.Fatalf("Round trip changed entry count: %d != %d", len(reparsed), len(track))
	}

	for i := range track {
		if reparsed[i] != track[i] {
			t.Errorf("Entry %d changed in round trip: %+v != %+v", i, reparsed[i], track[i])
		}
	}
}

func TestComposeDeterministic(t *testing.T) {
	track, err := Parse(sampleSRT)
	if err != nil {
		t.Fatalf("Failed to parse SRT: %v", err)
	}

	if track.Compose() != track.Compose() {
		t.Error("Compose is not deterministic")
	}
}

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00,000"},
		{1500 * time.Millisecond, "00:00:01,500"},
		{time.Hour + 2*time.Minute + 3*time.Second + 45*time.Millisecond, "01:02:03,045"},
	}

	for _, tt := range tests {
		if got := formatTimestamp(tt.d); got != tt.want {
			t.Errorf("formatTimestamp(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
