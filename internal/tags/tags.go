// Package tags reads audio file metadata into one canonical shape.
// It covers ID3v2 (MP3, AIFF, WAVE), APEv2 (APE, Musepack), Vorbis comments
// (Ogg Vorbis, Opus, FLAC) and MP4 atoms (MP4, M4A, M4B).
package tags

import (
	"strconv"
	"strings"
)

// id3Magic is the magic bytes for ID3v2 header detection.
const id3Magic = "ID3"

// Metadata is the format-independent description of one audio file.
// Scalar fields are nil when the file does not carry a usable value.
// Sequence fields keep the order and duplicates of the source tag.
type Metadata struct {
	Title        *string  `json:"title,omitempty"`
	Album        *string  `json:"album,omitempty"`
	Artists      []string `json:"artists,omitempty"`
	AlbumArtists []string `json:"album_artists,omitempty"`
	Lyricists    []string `json:"lyricists,omitempty"`
	Composers    []string `json:"composers,omitempty"`
	Genres       []string `json:"genres,omitempty"`
	Labels       []string `json:"labels,omitempty"`

	TrackNumber *uint32 `json:"track_number,omitempty"`
	DiscNumber  *uint32 `json:"disc_number,omitempty"`
	Year        *int32  `json:"year,omitempty"`

	// Duration in whole seconds.
	Duration   *uint32 `json:"duration,omitempty"`
	HasArtwork bool    `json:"has_artwork"`
}

func ptr[T any](v T) *T {
	return &v
}

// parseUint parses a whole decimal string into an unsigned 32-bit value.
func parseUint(s string) *uint32 {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return nil
	}
	return ptr(uint32(n))
}

// parseInt parses a whole decimal string into a signed 32-bit value.
func parseInt(s string) *int32 {
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return nil
	}
	return ptr(int32(n))
}

// parseTrackNumber parses a track or disc number like "5" or "5/10",
// keeping only the position.
func parseTrackNumber(s string) *uint32 {
	if s == "" {
		return nil
	}
	parts := strings.SplitN(s, "/", 2)
	return parseUint(strings.TrimSpace(parts[0]))
}

// parseDateYear returns the year component of a timestamp such as
// "2016", "2016-05" or "2016-05-01T10:00:00".
func parseDateYear(s string) *int32 {
	s = strings.TrimSpace(s)
	end := strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' })
	if end == 0 {
		return nil
	}
	if end > 0 {
		s = s[:end]
	}
	return parseInt(s)
}

// orNil returns nil for an empty slice so that absent sequences compare
// equal regardless of the reader that built them.
func orNil(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	return values
}

// nonEmpty drops empty strings.
func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
