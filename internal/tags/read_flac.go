package tags

import (
	"bufio"
	"os"
	"slices"
	"strings"

	goflac "github.com/go-flac/go-flac"
	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
)

const decoderFLAC = "flac"

// readFLAC reads the metadata blocks of a FLAC stream. Audio frames are never
// read. A VORBIS_COMMENT block is required.
func readFLAC(path string) (*Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, wrapErr(decoderFLAC, err)
	}
	defer f.Close()

	// Some taggers prepend an ID3v2 tag to FLAC streams.
	if err := skipID3v2(f); err != nil {
		return nil, wrapErr(decoderFLAC, err)
	}

	file, err := goflac.ParseMetadata(bufio.NewReader(f))
	if err != nil {
		return nil, wrapErr(decoderFLAC, err)
	}
	m, err := fromFLAC(file)
	if err != nil {
		return nil, wrapErr(decoderFLAC, err)
	}
	return m, nil
}

func fromFLAC(file *goflac.File) (*Metadata, error) {
	var comments *flacvorbis.MetaDataBlockVorbisComment
	hasArtwork := false
	for _, meta := range file.Meta {
		switch meta.Type {
		case goflac.VorbisComment:
			if comments != nil {
				continue
			}
			cmts, err := flacvorbis.ParseFromMetaDataBlock(*meta)
			if err != nil {
				return nil, err
			}
			comments = cmts
		case goflac.Picture:
			if _, err := flacpicture.ParseFromMetaDataBlock(*meta); err != nil {
				return nil, err
			}
			hasArtwork = true
		}
	}
	if comments == nil {
		return nil, ErrNoVorbisComment
	}

	// A comment without a separator is skipped rather than failing the read.
	comments.Comments = slices.DeleteFunc(comments.Comments, func(c string) bool {
		return !strings.Contains(c, "=")
	})
	get := func(key string) []string {
		values, _ := comments.Get(key)
		return orNil(values)
	}

	m := &Metadata{HasArtwork: hasArtwork}
	m.Artists = get(flacvorbis.FIELD_ARTIST)
	m.AlbumArtists = get("ALBUMARTIST")
	m.Lyricists = get("LYRICIST")
	m.Composers = get("COMPOSER")
	m.Genres = get(flacvorbis.FIELD_GENRE)
	m.Labels = get("PUBLISHER")

	first := func(key string) *string {
		values := get(key)
		if len(values) == 0 {
			return nil
		}
		return &values[0]
	}
	m.Title = first(flacvorbis.FIELD_TITLE)
	m.Album = first(flacvorbis.FIELD_ALBUM)
	if s := first(flacvorbis.FIELD_TRACKNUMBER); s != nil {
		m.TrackNumber = parseUint(*s)
	}
	if s := first("DISCNUMBER"); s != nil {
		m.DiscNumber = parseUint(*s)
	}
	if s := first(flacvorbis.FIELD_DATE); s != nil {
		m.Year = parseInt(*s)
	}

	if len(file.Meta) > 0 && file.Meta[0].Type == goflac.StreamInfo {
		info, err := file.GetStreamInfo()
		if err != nil {
			return nil, err
		}
		if info.SampleRate > 0 {
			m.Duration = ptr(uint32(info.SampleCount / int64(info.SampleRate)))
		}
	}
	return m, nil
}
