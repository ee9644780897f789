package tags

import (
	"path/filepath"
	"strings"
)

// Format identifies a supported audio container.
type Format int

// Supported formats.
const (
	FormatMP3 Format = iota + 1
	FormatAIFF
	FormatWAVE
	FormatAPE
	FormatMPC
	FormatOGG
	FormatOPUS
	FormatFLAC
	FormatMP4
	FormatM4B
)

// File extensions recognized by Detect.
const (
	ExtMP3  = ".mp3"
	ExtAIF  = ".aif"
	ExtAIFF = ".aiff"
	ExtAIFC = ".aifc"
	ExtWAV  = ".wav"
	ExtWAVE = ".wave"
	ExtAPE  = ".ape"
	ExtMPC  = ".mpc"
	ExtOGG  = ".ogg"
	ExtOGA  = ".oga"
	ExtOPUS = ".opus"
	ExtFLAC = ".flac"
	ExtMP4  = ".mp4"
	ExtM4A  = ".m4a"
	ExtM4B  = ".m4b"
)

var extFormats = map[string]Format{
	ExtMP3:  FormatMP3,
	ExtAIF:  FormatAIFF,
	ExtAIFF: FormatAIFF,
	ExtAIFC: FormatAIFF,
	ExtWAV:  FormatWAVE,
	ExtWAVE: FormatWAVE,
	ExtAPE:  FormatAPE,
	ExtMPC:  FormatMPC,
	ExtOGG:  FormatOGG,
	ExtOGA:  FormatOGG,
	ExtOPUS: FormatOPUS,
	ExtFLAC: FormatFLAC,
	ExtMP4:  FormatMP4,
	ExtM4A:  FormatMP4,
	ExtM4B:  FormatM4B,
}

var formatNames = map[Format]string{
	FormatMP3:  "mp3",
	FormatAIFF: "aiff",
	FormatWAVE: "wave",
	FormatAPE:  "ape",
	FormatMPC:  "mpc",
	FormatOGG:  "ogg",
	FormatOPUS: "opus",
	FormatFLAC: "flac",
	FormatMP4:  "mp4",
	FormatM4B:  "m4b",
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return "unknown"
}

// MarshalText lets Format appear by name in JSON output.
func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// tagKind is the tagging convention a format is read with.
type tagKind int

const (
	kindFrame tagKind = iota + 1
	kindItem
	kindComment
	kindBlock
	kindAtom
)

func (f Format) kind() tagKind {
	switch f {
	case FormatMP3, FormatAIFF, FormatWAVE:
		return kindFrame
	case FormatAPE, FormatMPC:
		return kindItem
	case FormatOGG, FormatOPUS:
		return kindComment
	case FormatFLAC:
		return kindBlock
	case FormatMP4, FormatM4B:
		return kindAtom
	}
	return 0
}

// Detect maps the extension of path to a supported format.
// File content is not inspected.
func Detect(path string) (Format, bool) {
	f, ok := extFormats[strings.ToLower(filepath.Ext(path))]
	return f, ok
}

// IsMusicFile returns true if the path has a supported music file extension.
func IsMusicFile(path string) bool {
	_, ok := Detect(path)
	return ok
}
