package tags

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"unicode/utf16"

	"github.com/abema/go-mp4"
)

const decoderMP4 = "mp4"

// iTunes freeform atoms ("----") are identified by a mean/name pair.
const (
	freeformMean     = "com.apple.iTunes"
	freeformLyricist = "LYRICIST"
	freeformLabel    = "Label"
)

var (
	atomTitle       = mp4.BoxType{0xA9, 'n', 'a', 'm'}
	atomAlbum       = mp4.BoxType{0xA9, 'a', 'l', 'b'}
	atomArtist      = mp4.BoxType{0xA9, 'A', 'R', 'T'}
	atomComposer    = mp4.BoxType{0xA9, 'w', 'r', 't'}
	atomGenre       = mp4.BoxType{0xA9, 'g', 'e', 'n'}
	atomYear        = mp4.BoxType{0xA9, 'd', 'a', 'y'}
	atomAlbumArtist = mp4.StrToBoxType("aART")
	atomTrack       = mp4.StrToBoxType("trkn")
	atomDisc        = mp4.StrToBoxType("disk")
	atomCover       = mp4.StrToBoxType("covr")
	atomFreeform    = mp4.StrToBoxType("----")
	atomMean        = mp4.StrToBoxType("mean")
	atomName        = mp4.StrToBoxType("name")
)

var errNoMoov = errors.New("no moov atom found")

// ilstWalker collects ilst items and the movie header while go-mp4 walks the
// box tree.
type ilstWalker struct {
	m       *Metadata
	hasMoov bool

	// current freeform item
	mean, name string
}

// readMP4 reads the moov/udta/meta/ilst item list and the movie header.
func readMP4(path string) (*Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, wrapErr(decoderMP4, err)
	}
	defer f.Close()

	w := &ilstWalker{m: &Metadata{}}
	if _, err := mp4.ReadBoxStructure(f, w.handle); err != nil {
		return nil, wrapErr(decoderMP4, err)
	}
	if !w.hasMoov {
		return nil, wrapErr(decoderMP4, errNoMoov)
	}
	return w.m, nil
}

func (w *ilstWalker) handle(h *mp4.ReadHandle) (any, error) {
	if !h.BoxInfo.IsSupportedType() {
		return nil, nil
	}
	path := h.Path
	typ := h.BoxInfo.Type
	depth := len(path)

	switch {
	case depth == 1 && typ == mp4.BoxTypeMoov():
		w.hasMoov = true
		return h.Expand()
	case depth == 2 && typ == mp4.BoxTypeMvhd():
		return nil, w.readMovieHeader(h)
	case depth == 2 && typ == mp4.BoxTypeUdta(),
		depth == 3 && path[1] == mp4.BoxTypeUdta() && typ == mp4.BoxTypeMeta(),
		depth == 4 && path[2] == mp4.BoxTypeMeta() && typ == mp4.BoxTypeIlst():
		return h.Expand()
	case depth == 5 && path[3] == mp4.BoxTypeIlst():
		if typ == atomFreeform {
			w.mean, w.name = "", ""
		}
		return h.Expand()
	case depth == 6 && path[3] == mp4.BoxTypeIlst():
		return nil, w.readItemChild(h, path[4])
	}
	return nil, nil
}

func (w *ilstWalker) readMovieHeader(h *mp4.ReadHandle) error {
	box, _, err := h.ReadPayload()
	if err != nil {
		return err
	}
	mvhd, ok := box.(*mp4.Mvhd)
	if !ok || mvhd.Timescale == 0 {
		return nil
	}
	w.m.Duration = ptr(uint32(mvhd.GetDuration() / uint64(mvhd.Timescale)))
	return nil
}

func (w *ilstWalker) readItemChild(h *mp4.ReadHandle, item mp4.BoxType) error {
	box, _, err := h.ReadPayload()
	if err != nil {
		return err
	}

	switch b := box.(type) {
	case *mp4.StringData:
		// mean and name carry a version/flags prefix
		value := ""
		if len(b.Data) >= 4 {
			value = string(b.Data[4:])
		}
		switch h.BoxInfo.Type {
		case atomMean:
			w.mean = value
		case atomName:
			w.name = value
		}
	case *mp4.Data:
		w.readData(item, b)
	}
	return nil
}

func (w *ilstWalker) readData(item mp4.BoxType, data *mp4.Data) {
	m := w.m
	switch item {
	case atomTitle:
		if s, ok := dataString(data); ok && m.Title == nil {
			m.Title = &s
		}
	case atomAlbum:
		if s, ok := dataString(data); ok && m.Album == nil {
			m.Album = &s
		}
	case atomArtist:
		m.Artists = appendDataString(m.Artists, data)
	case atomAlbumArtist:
		m.AlbumArtists = appendDataString(m.AlbumArtists, data)
	case atomComposer:
		m.Composers = appendDataString(m.Composers, data)
	case atomGenre:
		m.Genres = appendDataString(m.Genres, data)
	case atomYear:
		if s, ok := dataString(data); ok && m.Year == nil {
			m.Year = parseInt(s)
		}
	case atomTrack:
		if n, ok := dataIndex(data); ok && m.TrackNumber == nil {
			m.TrackNumber = &n
		}
	case atomDisc:
		if n, ok := dataIndex(data); ok && m.DiscNumber == nil {
			m.DiscNumber = &n
		}
	case atomCover:
		m.HasArtwork = true
	case atomFreeform:
		if w.mean != freeformMean {
			return
		}
		switch w.name {
		case freeformLyricist:
			m.Lyricists = appendDataString(m.Lyricists, data)
		case freeformLabel:
			m.Labels = appendDataString(m.Labels, data)
		}
	}
}

// dataString decodes a UTF-8 or UTF-16 data atom.
func dataString(data *mp4.Data) (string, bool) {
	switch data.DataType {
	case mp4.DataTypeStringUTF8:
		return string(data.Data), true
	case mp4.DataTypeStringUTF16:
		if len(data.Data)%2 != 0 {
			return "", false
		}
		units := make([]uint16, len(data.Data)/2)
		if err := binary.Read(bytes.NewReader(data.Data), binary.BigEndian, units); err != nil {
			return "", false
		}
		return string(utf16.Decode(units)), true
	}
	return "", false
}

func appendDataString(values []string, data *mp4.Data) []string {
	if s, ok := dataString(data); ok {
		return append(values, s)
	}
	return values
}

// dataIndex reads the position of a trkn or disk item:
// two reserved bytes, then a big-endian 16-bit number and total.
func dataIndex(data *mp4.Data) (uint32, bool) {
	if len(data.Data) < 4 {
		return 0, false
	}
	return uint32(binary.BigEndian.Uint16(data.Data[2:4])), true
}
