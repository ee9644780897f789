package tags

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
)

const decoderAPE = "ape"

const (
	apePreamble   = "APETAGEX"
	apeFooterSize = 32
	id3v1Size     = 128

	// text value type, bits 1-2 of the item flags
	apeItemText = 0
)

// APE item keys. Lyricist, composer, genre and publisher are matched in the
// upper-case spelling common taggers write.
const (
	apeArtist      = "Artist"
	apeAlbum       = "Album"
	apeAlbumArtist = "Album artist"
	apeTitle       = "Title"
	apeYear        = "Year"
	apeDisc        = "Disc"
	apeTrack       = "Track"
	apeLyricist    = "LYRICIST"
	apeComposer    = "COMPOSER"
	apeGenre       = "GENRE"
	apePublisher   = "PUBLISHER"
)

var leadingDigits = regexp.MustCompile(`^\d+`)

type apeItem struct {
	key   string
	text  bool
	value []byte
}

// apeTag is the ordered item list of an APEv1/APEv2 tag.
type apeTag []apeItem

// items returns the text values of every item named exactly key.
func (t apeTag) items(key string) []string {
	var values []string
	for _, it := range t {
		if it.key == key && it.text {
			values = append(values, string(it.value))
		}
	}
	return values
}

// item returns the text value of the first item named exactly key.
func (t apeTag) item(key string) *string {
	for _, it := range t {
		if it.key == key {
			if !it.text {
				return nil
			}
			return ptr(string(it.value))
		}
	}
	return nil
}

func readAPE(path string) (*Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, wrapErr(decoderAPE, err)
	}
	defer f.Close()

	tag, err := parseAPE(f)
	if err != nil {
		return nil, wrapErr(decoderAPE, err)
	}
	return fromAPE(tag), nil
}

func fromAPE(tag apeTag) *Metadata {
	m := &Metadata{
		Title:        tag.item(apeTitle),
		Album:        tag.item(apeAlbum),
		Artists:      tag.items(apeArtist),
		AlbumArtists: tag.items(apeAlbumArtist),
		Lyricists:    tag.items(apeLyricist),
		Composers:    tag.items(apeComposer),
		Genres:       tag.items(apeGenre),
		Labels:       tag.items(apePublisher),
	}
	if s := tag.item(apeYear); s != nil {
		m.Year = parseInt(*s)
	}
	if s := tag.item(apeDisc); s != nil {
		m.DiscNumber = parseLeadingNumber(*s)
	}
	if s := tag.item(apeTrack); s != nil {
		m.TrackNumber = parseLeadingNumber(*s)
	}
	return m
}

// parseLeadingNumber reads the leading run of digits of values like "3",
// "3/12" or "3 of 12".
func parseLeadingNumber(s string) *uint32 {
	digits := leadingDigits.FindString(s)
	if digits == "" {
		return nil
	}
	n, err := strconv.ParseUint(digits, 10, 32)
	if err != nil {
		return nil
	}
	return ptr(uint32(n))
}

// parseAPE reads the APE tag at the end of r, before a trailing ID3v1 tag
// if there is one.
func parseAPE(r io.ReadSeeker) (apeTag, error) {
	end, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}

	footer, footerAt, err := findAPEFooter(r, end)
	if err != nil {
		return nil, err
	}

	version := binary.LittleEndian.Uint32(footer[8:12])
	size := int64(binary.LittleEndian.Uint32(footer[12:16]))
	count := binary.LittleEndian.Uint32(footer[16:20])
	if size < apeFooterSize || size > footerAt+apeFooterSize {
		return nil, fmt.Errorf("invalid tag size %d", size)
	}

	body := make([]byte, size-apeFooterSize)
	if _, err := r.Seek(footerAt+apeFooterSize-size, io.SeekStart); err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, err
	}
	return parseAPEItems(body, count, version)
}

func findAPEFooter(r io.ReadSeeker, end int64) ([]byte, int64, error) {
	footer := make([]byte, apeFooterSize)
	for _, at := range []int64{end - apeFooterSize, end - id3v1Size - apeFooterSize} {
		if at < 0 {
			break
		}
		if _, err := r.Seek(at, io.SeekStart); err != nil {
			return nil, 0, err
		}
		if _, err := io.ReadFull(r, footer); err != nil {
			return nil, 0, err
		}
		if string(footer[:len(apePreamble)]) == apePreamble {
			return footer, at, nil
		}
	}
	return nil, 0, ErrNoTag
}

var errAPEItemOverflow = errors.New("item exceeds tag size")

func parseAPEItems(body []byte, count, version uint32) (apeTag, error) {
	tag := make(apeTag, 0, min(count, 256))
	for i := uint32(0); i < count; i++ {
		if len(body) < 8 {
			return nil, errAPEItemOverflow
		}
		valueSize := binary.LittleEndian.Uint32(body[0:4])
		flags := binary.LittleEndian.Uint32(body[4:8])
		body = body[8:]

		keyEnd := bytes.IndexByte(body, 0)
		if keyEnd <= 0 {
			return nil, fmt.Errorf("item %d: invalid key", i)
		}
		key := string(body[:keyEnd])
		body = body[keyEnd+1:]

		if uint64(valueSize) > uint64(len(body)) {
			return nil, errAPEItemOverflow
		}
		value := body[:valueSize]
		body = body[valueSize:]

		// APEv1 only knows text items.
		text := version < 2000 || (flags>>1)&0x3 == apeItemText
		tag = append(tag, apeItem{key: key, text: text, value: value})
	}
	return tag, nil
}
