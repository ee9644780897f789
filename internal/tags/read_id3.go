package tags

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/bogem/id3v2/v2"
)

const decoderID3 = "id3v2"

// readID3 reads the ID3v2 tag of an MP3, AIFF or WAVE file.
func readID3(path string, format Format) (*Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, wrapErr(decoderID3, err)
	}
	defer f.Close()

	var src io.Reader = f
	if format == FormatAIFF || format == FormatWAVE {
		offset, size, err := findID3Chunk(f)
		if err != nil {
			return nil, wrapErr(decoderID3, err)
		}
		src = io.NewSectionReader(f, offset, size)
	}

	tag, err := parseID3(src)
	if err != nil {
		return nil, wrapErr(decoderID3, err)
	}
	m := fromID3(tag)

	if format == FormatMP3 {
		// TLEN is often missing or stale on MP3s; the stream length is authoritative.
		m.Duration = nil
		if _, err := f.Seek(0, io.SeekStart); err == nil {
			m.Duration = mp3Duration(f)
		}
	}
	return m, nil
}

// parseID3 parses an ID3v2 tag at the start of r. A tag that failed to parse
// part way is still returned when it holds at least one frame.
func parseID3(r io.Reader) (*id3v2.Tag, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(len(id3Magic))
	if err != nil || string(magic) != id3Magic {
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		return nil, ErrNoTag
	}
	return recoverPartial(id3v2.ParseReader(br, id3v2.Options{Parse: true}))
}

// recoverPartial prefers a partially parsed tag over a parse error.
func recoverPartial(tag *id3v2.Tag, err error) (*id3v2.Tag, error) {
	if err == nil {
		return tag, nil
	}
	if tag != nil && tag.Count() > 0 {
		return tag, nil
	}
	return nil, err
}

func fromID3(tag *id3v2.Tag) *Metadata {
	m := &Metadata{
		Title:        firstID3Value(tag, "TIT2"),
		Album:        firstID3Value(tag, "TALB"),
		Artists:      id3Values(tag, "TPE1"),
		AlbumArtists: id3Values(tag, "TPE2"),
		Lyricists:    id3Values(tag, "TEXT"),
		Composers:    id3Values(tag, "TCOM"),
		Genres:       id3Values(tag, "TCON"),
		Labels:       id3Values(tag, "TPUB"),
		HasArtwork:   len(tag.GetFrames("APIC")) > 0,
	}

	if s := firstID3Value(tag, "TRCK"); s != nil {
		m.TrackNumber = parseTrackNumber(*s)
	}
	if s := firstID3Value(tag, "TPOS"); s != nil {
		m.DiscNumber = parseTrackNumber(*s)
	}
	if s := firstID3Value(tag, "TLEN"); s != nil {
		if ms := parseUint(*s); ms != nil {
			m.Duration = ptr(*ms / 1000)
		}
	}
	m.Year = id3Year(tag)
	return m
}

// id3Year resolves the year from TYER, then the year part of the release,
// original release and recording timestamps.
func id3Year(tag *id3v2.Tag) *int32 {
	if s := firstID3Value(tag, "TYER"); s != nil {
		if y := parseInt(strings.TrimSpace(*s)); y != nil {
			return y
		}
	}
	for _, id := range []string{"TDRL", "TDOR", "TDRC"} {
		if s := firstID3Value(tag, id); s != nil {
			if y := parseDateYear(*s); y != nil {
				return y
			}
		}
	}
	return nil
}

// id3Values returns the text values of every frameID frame, splitting frames
// that carry several null-separated strings.
func id3Values(tag *id3v2.Tag, frameID string) []string {
	var values []string
	for _, frame := range tag.GetFrames(frameID) {
		tf, ok := frame.(id3v2.TextFrame)
		if !ok {
			continue
		}
		for v := range strings.SplitSeq(tf.Text, "\x00") {
			values = append(values, strings.TrimPrefix(v, "\ufeff"))
		}
	}
	return nonEmpty(values)
}

func firstID3Value(tag *id3v2.Tag, frameID string) *string {
	values := id3Values(tag, frameID)
	if len(values) == 0 {
		return nil
	}
	return &values[0]
}
