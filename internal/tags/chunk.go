package tags

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// IFF containers store chunks as a 4-byte id and a 4-byte size, padded to an
// even length. AIFF uses a big-endian FORM header, WAVE a little-endian RIFF one.
const chunkHeaderSize = 8

var errNotIFF = errors.New("not an AIFF or WAVE container")

// findID3Chunk locates the "ID3 " (or "id3 ") chunk of an AIFF or WAVE file
// and returns the offset and size of its payload.
func findID3Chunk(r io.ReadSeeker) (offset, size int64, err error) {
	header := make([]byte, 12)
	if _, err := io.ReadFull(r, header); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return 0, 0, errNotIFF
		}
		return 0, 0, err
	}

	var order binary.ByteOrder
	switch string(header[0:4]) {
	case "FORM":
		order = binary.BigEndian
		if form := string(header[8:12]); form != "AIFF" && form != "AIFC" {
			return 0, 0, fmt.Errorf("unexpected FORM type %q", form)
		}
	case "RIFF":
		order = binary.LittleEndian
		if form := string(header[8:12]); form != "WAVE" {
			return 0, 0, fmt.Errorf("unexpected RIFF type %q", form)
		}
	default:
		return 0, 0, errNotIFF
	}

	pos := int64(len(header))
	chunk := make([]byte, chunkHeaderSize)
	for {
		if _, err := io.ReadFull(r, chunk); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return 0, 0, ErrNoTag
			}
			return 0, 0, err
		}
		pos += chunkHeaderSize
		id := string(chunk[0:4])
		n := int64(order.Uint32(chunk[4:8]))
		if id == "ID3 " || id == "id3 " {
			return pos, n, nil
		}
		pos += n + n%2
		if _, err := r.Seek(pos, io.SeekStart); err != nil {
			return 0, 0, err
		}
	}
}
