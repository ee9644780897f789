package tags

import (
	"os"

	"github.com/dhowden/tag"
)

// Verdict compares the format declared by a file's extension with the
// container its content starts with.
type Verdict string

const (
	VerdictMatch    Verdict = "match"
	VerdictMismatch Verdict = "mismatch"
	VerdictUnknown  Verdict = "unknown"
)

// Sniffed is the result of Sniff.
type Sniffed struct {
	Path string `json:"path"`
	// Format is the format Detect assigns to the extension, 0 if unrecognized.
	Format Format `json:"format,omitempty"`
	// FileType and TagFormat are what the content declares, empty when the
	// content is not recognized.
	FileType  string  `json:"file_type,omitempty"`
	TagFormat string  `json:"tag_format,omitempty"`
	Verdict   Verdict `json:"verdict"`
}

// contentFormats lists the extension formats compatible with each container
// the content sniffer recognizes.
var contentFormats = map[tag.FileType][]Format{
	tag.MP3:  {FormatMP3},
	tag.FLAC: {FormatFLAC},
	tag.OGG:  {FormatOGG, FormatOPUS},
	// audiobooks are commonly branded M4A
	tag.M4A:  {FormatMP4, FormatM4B},
	tag.M4P:  {FormatMP4},
	tag.ALAC: {FormatMP4},
	tag.M4B:  {FormatM4B, FormatMP4},
}

// Sniff inspects the first bytes of path and reports whether the container
// they declare agrees with the extension. Read never uses it; detection for
// reading is extension based.
func Sniff(path string) (*Sniffed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s := &Sniffed{Path: path, Verdict: VerdictUnknown}
	s.Format, _ = Detect(path)

	tagFormat, fileType, err := tag.Identify(f)
	if err != nil {
		// unrecognized or too short to identify
		return s, nil
	}
	s.FileType = string(fileType)
	s.TagFormat = string(tagFormat)

	compatible, known := contentFormats[fileType]
	if !known {
		if tagFormat != tag.MP4 {
			return s, nil
		}
		compatible = []Format{FormatMP4, FormatM4B}
	}

	s.Verdict = VerdictMismatch
	for _, c := range compatible {
		if c == s.Format {
			s.Verdict = VerdictMatch
			break
		}
	}
	return s, nil
}
