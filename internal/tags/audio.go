package tags

import (
	"io"

	"github.com/llehouerou/go-mp3"
)

// mp3Duration decodes the frame index of an MP3 stream and returns its
// length in whole seconds, or nil when the stream cannot be decoded.
func mp3Duration(r io.ReadSeeker) (d *uint32) {
	defer func() {
		if recover() != nil {
			d = nil
		}
	}()

	decoder, err := mp3.NewDecoder(r)
	if err != nil {
		return nil
	}

	sampleRate := decoder.SampleRate()
	if sampleRate <= 0 {
		return nil
	}

	sampleCount := max(int64(decoder.SampleCount()), 0)
	return ptr(uint32(sampleCount / int64(sampleRate)))
}

// skipID3v2 skips an ID3v2 tag if present at the beginning of the file.
func skipID3v2(r io.ReadSeeker) error {
	header := make([]byte, 10)
	n, _ := io.ReadFull(r, header)
	if n < 10 || string(header[0:3]) != id3Magic {
		_, err := r.Seek(0, io.SeekStart)
		return err
	}

	// ID3v2 size is stored as a syncsafe integer in bytes 6-9
	size := int64(header[6])<<21 | int64(header[7])<<14 | int64(header[8])<<7 | int64(header[9])
	if header[5]&0x10 != 0 {
		// footer present
		size += 10
	}
	_, err := r.Seek(10+size, io.SeekStart)
	return err
}
