package srt

import "time"

// ExtractWindow builds a new track containing only the entries that overlap
// the half-open window [start, end), with every timestamp re-based to the
// window's origin.
//
// An entry is included iff it strictly overlaps the window
// (entry.End > start && entry.Start < end); an entry that merely touches a
// boundary is excluded. Included entries are clipped to the window, so for
// every output entry 0 <= Start < End <= (end - start). Output entries are
// renumbered 1..N in input order. An empty result is valid.
//
// The window bounds must satisfy 0 <= start < end; end may exceed the track's
// duration, in which case trailing entries are simply absent.
func ExtractWindow(track Track, start, end time.Duration) Track {
	if start < 0 || end <= start {
		return Track{}
	}

	windowLength := end - start
	out := make(Track, 0, len(track))

	for _, entry := range track {
		if entry.End <= start || entry.Start >= end {
			continue
		}

		newStart := entry.Start - start
		if newStart < 0 {
			newStart = 0
		}
		newEnd := entry.End - start
		if newEnd > windowLength {
			newEnd = windowLength
		}

		out = append(out, Entry{
			Index: len(out) + 1,
			Start: newStart,
			End:   newEnd,
			Text:  entry.Text,
		})
	}

	return out
}
