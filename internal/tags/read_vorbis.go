package tags

import (
	"bufio"
	"iter"
	"os"
	"strings"

	"github.com/jfreymuth/oggvorbis"
	"github.com/jfreymuth/vorbis"
)

const decoderVorbis = "vorbis"

type commentField int

const (
	fieldTitle commentField = iota + 1
	fieldAlbum
	fieldArtist
	fieldAlbumArtist
	fieldTrackNumber
	fieldDiscNumber
	fieldDate
	fieldLyricist
	fieldComposer
	fieldGenre
	fieldPublisher
)

// commentFields maps lower-cased Vorbis comment keys to canonical fields.
var commentFields = map[string]commentField{
	"title":       fieldTitle,
	"album":       fieldAlbum,
	"artist":      fieldArtist,
	"albumartist": fieldAlbumArtist,
	"tracknumber": fieldTrackNumber,
	"discnumber":  fieldDiscNumber,
	"date":        fieldDate,
	"lyricist":    fieldLyricist,
	"composer":    fieldComposer,
	"genre":       fieldGenre,
	"publisher":   fieldPublisher,
}

// fromComments builds Metadata from an ordered key/value comment list.
// Title and album keep the last occurrence, sequences append, numbers that
// do not parse leave the field unset.
func fromComments(comments iter.Seq2[string, string]) *Metadata {
	m := &Metadata{}
	for key, value := range comments {
		switch commentFields[strings.ToLower(key)] {
		case fieldTitle:
			m.Title = ptr(value)
		case fieldAlbum:
			m.Album = ptr(value)
		case fieldArtist:
			m.Artists = append(m.Artists, value)
		case fieldAlbumArtist:
			m.AlbumArtists = append(m.AlbumArtists, value)
		case fieldTrackNumber:
			m.TrackNumber = parseUint(value)
		case fieldDiscNumber:
			m.DiscNumber = parseUint(value)
		case fieldDate:
			m.Year = parseInt(value)
		case fieldLyricist:
			m.Lyricists = append(m.Lyricists, value)
		case fieldComposer:
			m.Composers = append(m.Composers, value)
		case fieldGenre:
			m.Genres = append(m.Genres, value)
		case fieldPublisher:
			m.Labels = append(m.Labels, value)
		}
	}
	return m
}

// splitComments yields the key and value of raw "KEY=value" comments.
// Entries without a separator are skipped.
func splitComments(raw []string) iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, c := range raw {
			key, value, ok := strings.Cut(c, "=")
			if !ok {
				continue
			}
			if !yield(key, value) {
				return
			}
		}
	}
}

func vorbisComments(header vorbis.CommentHeader) iter.Seq2[string, string] {
	return splitComments(header.Comments)
}

// readVorbis reads the comment header of an Ogg Vorbis stream.
func readVorbis(path string) (*Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, wrapErr(decoderVorbis, err)
	}
	defer f.Close()

	header, err := oggvorbis.GetCommentHeader(bufio.NewReader(f))
	if err != nil {
		return nil, wrapErr(decoderVorbis, err)
	}
	return fromComments(vorbisComments(header)), nil
}
