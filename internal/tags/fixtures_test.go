package tags

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/abema/go-mp4"
	"github.com/bogem/id3v2/v2"
	goflac "github.com/go-flac/go-flac"
	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	"github.com/stretchr/testify/require"
)

// sampleMetadata is what every reference fixture is tagged with.
func sampleMetadata() *Metadata {
	return &Metadata{
		Title:        ptr("TEST TITLE"),
		Album:        ptr("TEST ALBUM"),
		Artists:      []string{"TEST ARTIST"},
		AlbumArtists: []string{"TEST ALBUM ARTIST"},
		Lyricists:    []string{"TEST LYRICIST"},
		Composers:    []string{"TEST COMPOSER"},
		Genres:       []string{"TEST GENRE"},
		Labels:       []string{"TEST LABEL"},
		TrackNumber:  ptr(uint32(1)),
		DiscNumber:   ptr(uint32(3)),
		Year:         ptr(int32(2016)),
	}
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

// --- ID3v2 (MP3, AIFF, WAVE) ---

// minimalMP3Frame is one MPEG1 Layer3 frame (128kbps, 44100Hz, stereo) with
// an empty payload.
func minimalMP3Frame() []byte {
	frame := make([]byte, 417)
	frame[0] = 0xff
	frame[1] = 0xfb
	frame[2] = 0x90
	frame[3] = 0x00
	return frame
}

// sampleID3 tags with the sample values.
func sampleID3(tag *id3v2.Tag) {
	tag.AddTextFrame("TIT2", id3v2.EncodingUTF8, "TEST TITLE")
	tag.AddTextFrame("TALB", id3v2.EncodingUTF8, "TEST ALBUM")
	tag.AddTextFrame("TPE1", id3v2.EncodingUTF8, "TEST ARTIST")
	tag.AddTextFrame("TPE2", id3v2.EncodingUTF8, "TEST ALBUM ARTIST")
	tag.AddTextFrame("TEXT", id3v2.EncodingUTF8, "TEST LYRICIST")
	tag.AddTextFrame("TCOM", id3v2.EncodingUTF8, "TEST COMPOSER")
	tag.AddTextFrame("TCON", id3v2.EncodingUTF8, "TEST GENRE")
	tag.AddTextFrame("TPUB", id3v2.EncodingUTF8, "TEST LABEL")
	tag.AddTextFrame("TRCK", id3v2.EncodingUTF8, "1/12")
	tag.AddTextFrame("TPOS", id3v2.EncodingUTF8, "3/3")
	tag.AddTextFrame("TDRC", id3v2.EncodingUTF8, "2016-04-01")
}

func withCover(tag *id3v2.Tag) {
	tag.AddAttachedPicture(id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    "image/jpeg",
		PictureType: id3v2.PTFrontCover,
		Description: "Front Cover",
		Picture:     []byte{0xff, 0xd8, 0xff, 0xe0},
	})
}

// writeMP3 writes a one-frame MP3 and tags it with the given builders.
func writeMP3(t *testing.T, dir, name string, build ...func(*id3v2.Tag)) string {
	t.Helper()
	path := writeFile(t, dir, name, minimalMP3Frame())

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	require.NoError(t, err)
	for _, b := range build {
		b(tag)
	}
	require.NoError(t, tag.Save())
	require.NoError(t, tag.Close())
	return path
}

// id3Bytes serializes a standalone ID3v2.4 tag.
func id3Bytes(t *testing.T, build ...func(*id3v2.Tag)) []byte {
	t.Helper()
	tag := id3v2.NewEmptyTag()
	tag.SetVersion(4)
	for _, b := range build {
		b(tag)
	}
	var buf bytes.Buffer
	_, err := tag.WriteTo(&buf)
	require.NoError(t, err)
	return buf.Bytes()
}

type iffChunk struct {
	id   string
	data []byte
}

// iffFile assembles a FORM (big-endian) or RIFF (little-endian) container.
func iffFile(magic, form string, order binary.ByteOrder, chunks ...iffChunk) []byte {
	var body bytes.Buffer
	body.WriteString(form)
	for _, c := range chunks {
		body.WriteString(c.id)
		size := make([]byte, 4)
		order.PutUint32(size, uint32(len(c.data)))
		body.Write(size)
		body.Write(c.data)
		if len(c.data)%2 == 1 {
			body.WriteByte(0)
		}
	}

	var out bytes.Buffer
	out.WriteString(magic)
	size := make([]byte, 4)
	order.PutUint32(size, uint32(body.Len()))
	out.Write(size)
	out.Write(body.Bytes())
	return out.Bytes()
}

func aiffFile(chunks ...iffChunk) []byte {
	comm := iffChunk{id: "COMM", data: make([]byte, 18)}
	return iffFile("FORM", "AIFF", binary.BigEndian, append([]iffChunk{comm}, chunks...)...)
}

func waveFile(chunks ...iffChunk) []byte {
	fmtChunk := iffChunk{id: "fmt ", data: make([]byte, 16)}
	data := iffChunk{id: "data", data: make([]byte, 7)}
	return iffFile("RIFF", "WAVE", binary.LittleEndian, append([]iffChunk{fmtChunk, data}, chunks...)...)
}

// --- APEv2 (APE, MPC) ---

type apeTestItem struct {
	key    string
	value  string
	binary bool
}

// apeTagBytes serializes an APEv2 tag without header.
func apeTagBytes(items ...apeTestItem) []byte {
	var body bytes.Buffer
	for _, it := range items {
		binary.Write(&body, binary.LittleEndian, uint32(len(it.value)))
		flags := uint32(0)
		if it.binary {
			flags = 1 << 1
		}
		binary.Write(&body, binary.LittleEndian, flags)
		body.WriteString(it.key)
		body.WriteByte(0)
		body.WriteString(it.value)
	}

	var out bytes.Buffer
	out.Write(body.Bytes())
	out.WriteString(apePreamble)
	binary.Write(&out, binary.LittleEndian, uint32(2000))
	binary.Write(&out, binary.LittleEndian, uint32(body.Len()+apeFooterSize))
	binary.Write(&out, binary.LittleEndian, uint32(len(items)))
	binary.Write(&out, binary.LittleEndian, uint32(0))
	out.Write(make([]byte, 8))
	return out.Bytes()
}

func sampleAPEItems() []apeTestItem {
	return []apeTestItem{
		{key: "Title", value: "TEST TITLE"},
		{key: "Artist", value: "TEST ARTIST"},
		{key: "Album artist", value: "TEST ALBUM ARTIST"},
		{key: "Album", value: "TEST ALBUM"},
		{key: "Disc", value: "3"},
		{key: "Track", value: "1/12"},
		{key: "Year", value: "2016"},
		{key: "LYRICIST", value: "TEST LYRICIST"},
		{key: "COMPOSER", value: "TEST COMPOSER"},
		{key: "GENRE", value: "TEST GENRE"},
		{key: "PUBLISHER", value: "TEST LABEL"},
		{key: "Cover Art (Front)", value: "cover.jpg\x00\xff\xd8", binary: true},
	}
}

// apeFile is a stand-in audio payload followed by an APE tag.
func apeFile(items ...apeTestItem) []byte {
	return append([]byte("MAC \x96\x0f\x00\x00"), apeTagBytes(items...)...)
}

// --- Ogg Vorbis ---

var oggCRCTable = func() (table [256]uint32) {
	for i := range table {
		r := uint32(i) << 24
		for range 8 {
			if r&0x80000000 != 0 {
				r = (r << 1) ^ 0x04c11db7
			} else {
				r <<= 1
			}
		}
		table[i] = r
	}
	return table
}()

func oggCRC(data []byte) uint32 {
	var crc uint32
	for _, b := range data {
		crc = (crc << 8) ^ oggCRCTable[byte(crc>>24)^b]
	}
	return crc
}

// oggPage wraps one packet into one Ogg page.
func oggPage(seq uint32, flags byte, packet []byte) []byte {
	var segments []byte
	n := len(packet)
	for n >= 255 {
		segments = append(segments, 255)
		n -= 255
	}
	segments = append(segments, byte(n))

	var page bytes.Buffer
	page.WriteString("OggS")
	page.WriteByte(0)
	page.WriteByte(flags)
	binary.Write(&page, binary.LittleEndian, uint64(0))
	binary.Write(&page, binary.LittleEndian, uint32(0x504f4c41))
	binary.Write(&page, binary.LittleEndian, seq)
	binary.Write(&page, binary.LittleEndian, uint32(0))
	page.WriteByte(byte(len(segments)))
	page.Write(segments)
	page.Write(packet)

	out := page.Bytes()
	binary.LittleEndian.PutUint32(out[22:26], oggCRC(out))
	return out
}

func vorbisIdentification() []byte {
	var p bytes.Buffer
	p.WriteString("\x01vorbis")
	binary.Write(&p, binary.LittleEndian, uint32(0))
	p.WriteByte(2)
	binary.Write(&p, binary.LittleEndian, uint32(44100))
	binary.Write(&p, binary.LittleEndian, int32(0))
	binary.Write(&p, binary.LittleEndian, int32(128000))
	binary.Write(&p, binary.LittleEndian, int32(0))
	p.WriteByte(0xb8)
	p.WriteByte(1)
	return p.Bytes()
}

func vorbisCommentPacket(comments ...string) []byte {
	var p bytes.Buffer
	p.WriteString("\x03vorbis")
	vendor := "polaris test"
	binary.Write(&p, binary.LittleEndian, uint32(len(vendor)))
	p.WriteString(vendor)
	binary.Write(&p, binary.LittleEndian, uint32(len(comments)))
	for _, c := range comments {
		binary.Write(&p, binary.LittleEndian, uint32(len(c)))
		p.WriteString(c)
	}
	p.WriteByte(1)
	return p.Bytes()
}

// oggVorbisFile holds the identification and comment headers of a Vorbis stream.
func oggVorbisFile(comments ...string) []byte {
	out := oggPage(0, 0x02, vorbisIdentification())
	return append(out, oggPage(1, 0, vorbisCommentPacket(comments...))...)
}

// opusFile holds the OpusHead and OpusTags packets of an Ogg Opus stream.
func opusFile(comments ...string) []byte {
	var head bytes.Buffer
	head.WriteString("OpusHead")
	head.WriteByte(1)
	head.WriteByte(2)
	binary.Write(&head, binary.LittleEndian, uint16(312))
	binary.Write(&head, binary.LittleEndian, uint32(48000))
	binary.Write(&head, binary.LittleEndian, int16(0))
	head.WriteByte(0)

	var tags bytes.Buffer
	tags.WriteString("OpusTags")
	vendor := "polaris test"
	binary.Write(&tags, binary.LittleEndian, uint32(len(vendor)))
	tags.WriteString(vendor)
	binary.Write(&tags, binary.LittleEndian, uint32(len(comments)))
	for _, c := range comments {
		binary.Write(&tags, binary.LittleEndian, uint32(len(c)))
		tags.WriteString(c)
	}

	out := oggPage(0, 0x02, head.Bytes())
	return append(out, oggPage(1, 0, tags.Bytes())...)
}

func sampleComments() []string {
	return []string{
		"TITLE=TEST TITLE",
		"ARTIST=TEST ARTIST",
		"ALBUMARTIST=TEST ALBUM ARTIST",
		"ALBUM=TEST ALBUM",
		"DISCNUMBER=3",
		"TRACKNUMBER=1",
		"DATE=2016",
		"LYRICIST=TEST LYRICIST",
		"COMPOSER=TEST COMPOSER",
		"GENRE=TEST GENRE",
		"PUBLISHER=TEST LABEL",
	}
}

// --- FLAC ---

// streamInfoBlock encodes a STREAMINFO block for 16-bit stereo audio.
func streamInfoBlock(sampleRate int, samples int64) *goflac.MetaDataBlock {
	data := make([]byte, 34)
	binary.BigEndian.PutUint16(data[0:2], 4096)
	binary.BigEndian.PutUint16(data[2:4], 4096)
	const channels, bps = 2, 16
	data[10] = byte(sampleRate >> 12)
	data[11] = byte(sampleRate >> 4)
	data[12] = byte(sampleRate<<4) | byte(channels-1)<<1 | byte(bps-1)>>4
	data[13] = byte(bps-1)<<4 | byte(samples>>32)&0x0f
	binary.BigEndian.PutUint32(data[14:18], uint32(samples))
	return &goflac.MetaDataBlock{Type: goflac.StreamInfo, Data: data}
}

func vorbisBlock(t *testing.T, comments ...string) *goflac.MetaDataBlock {
	t.Helper()
	cmts := flacvorbis.New()
	for _, c := range comments {
		key, value, _ := bytes.Cut([]byte(c), []byte("="))
		require.NoError(t, cmts.Add(string(key), string(value)))
	}
	block := cmts.Marshal()
	return &block
}

func pictureBlock() *goflac.MetaDataBlock {
	pic := &flacpicture.MetadataBlockPicture{
		PictureType: flacpicture.PictureTypeFrontCover,
		MIME:        "image/jpeg",
		Description: "Front Cover",
		Width:       1,
		Height:      1,
		ColorDepth:  24,
		ImageData:   []byte{0xff, 0xd8, 0xff, 0xe0},
	}
	block := pic.Marshal()
	return &block
}

func flacFile(blocks ...*goflac.MetaDataBlock) []byte {
	f := &goflac.File{Meta: blocks}
	// a frame sync code stands in for audio
	f.Frames = []byte{0xff, 0xf8, 0x69, 0x08, 0x00}
	return f.Marshal()
}

// --- MP4 ---

type mp4Item struct {
	atom mp4.BoxType
	// mean and name are set for freeform ("----") items
	mean, name string
	dataType   uint32
	data       []byte
}

func textItem(atom mp4.BoxType, value string) mp4Item {
	return mp4Item{atom: atom, dataType: mp4.DataTypeStringUTF8, data: []byte(value)}
}

func freeformItem(name, value string) mp4Item {
	return mp4Item{
		atom:     atomFreeform,
		mean:     freeformMean,
		name:     name,
		dataType: mp4.DataTypeStringUTF8,
		data:     []byte(value),
	}
}

func indexItem(atom mp4.BoxType, n, total uint16) mp4Item {
	data := make([]byte, 8)
	binary.BigEndian.PutUint16(data[2:4], n)
	binary.BigEndian.PutUint16(data[4:6], total)
	return mp4Item{atom: atom, dataType: 0, data: data}
}

func sampleMP4Items() []mp4Item {
	return []mp4Item{
		textItem(atomTitle, "TEST TITLE"),
		textItem(atomArtist, "TEST ARTIST"),
		textItem(atomAlbumArtist, "TEST ALBUM ARTIST"),
		textItem(atomAlbum, "TEST ALBUM"),
		indexItem(atomDisc, 3, 3),
		indexItem(atomTrack, 1, 12),
		textItem(atomYear, "2016"),
		freeformItem(freeformLyricist, "TEST LYRICIST"),
		textItem(atomComposer, "TEST COMPOSER"),
		textItem(atomGenre, "TEST GENRE"),
		freeformItem(freeformLabel, "TEST LABEL"),
	}
}

// writeMP4 writes an ftyp and a moov holding mvhd and udta/meta/ilst.
// A nil items slice leaves out udta entirely.
func writeMP4(t *testing.T, dir, name string, timescale, duration uint32, items []mp4Item) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := mp4.NewWriter(f)
	box := func(typ mp4.BoxType, body func()) {
		_, err := w.StartBox(&mp4.BoxInfo{Type: typ})
		require.NoError(t, err)
		body()
		_, err = w.EndBox()
		require.NoError(t, err)
	}
	marshal := func(b mp4.IImmutableBox, ctx mp4.Context) {
		_, err := mp4.Marshal(w, b, ctx)
		require.NoError(t, err)
	}

	box(mp4.BoxTypeFtyp(), func() {
		marshal(&mp4.Ftyp{
			MajorBrand:       [4]byte{'M', '4', 'A', ' '},
			CompatibleBrands: []mp4.CompatibleBrandElem{{CompatibleBrand: [4]byte{'M', '4', 'A', ' '}}},
		}, mp4.Context{})
	})
	box(mp4.BoxTypeMoov(), func() {
		box(mp4.BoxTypeMvhd(), func() {
			marshal(&mp4.Mvhd{
				Timescale:   timescale,
				DurationV0:  duration,
				Rate:        0x00010000,
				Volume:      0x0100,
				NextTrackID: 2,
			}, mp4.Context{})
		})
		if items == nil {
			return
		}
		box(mp4.BoxTypeUdta(), func() {
			box(mp4.BoxTypeMeta(), func() {
				marshal(&mp4.Meta{}, mp4.Context{UnderUdta: true})
				box(mp4.BoxTypeIlst(), func() {
					for _, it := range items {
						box(it.atom, func() {
							if it.atom == atomFreeform {
								freeCtx := mp4.Context{UnderIlst: true, UnderIlstMeta: true, UnderIlstFreeMeta: true}
								box(atomMean, func() {
									marshal(&mp4.StringData{
										AnyTypeBox: mp4.AnyTypeBox{Type: atomMean},
										Data:       append([]byte{0, 0, 0, 0}, it.mean...),
									}, freeCtx)
								})
								box(atomName, func() {
									marshal(&mp4.StringData{
										AnyTypeBox: mp4.AnyTypeBox{Type: atomName},
										Data:       append([]byte{0, 0, 0, 0}, it.name...),
									}, freeCtx)
								})
							}
							box(mp4.BoxTypeData(), func() {
								marshal(&mp4.Data{DataType: it.dataType, Data: it.data},
									mp4.Context{UnderIlst: true, UnderIlstMeta: true})
							})
						})
					}
				})
			})
		})
	})
	return path
}
