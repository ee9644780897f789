package tags

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Reader turns audio files into Metadata, logging files that fail to parse.
// A Reader holds no per-file state and is safe for concurrent use.
type Reader struct {
	log logrus.FieldLogger
}

// NewReader returns a Reader that reports failures to logger.
// A nil logger uses the logrus standard logger.
func NewReader(logger logrus.FieldLogger) *Reader {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Reader{log: logger}
}

var defaultReader = NewReader(nil)

// Read reads the metadata of path with the default Reader.
func Read(path string) *Metadata {
	return defaultReader.Read(path)
}

// Read returns the metadata of the file at path, or nil when the extension is
// not recognized or the file cannot be parsed. Unrecognized extensions are
// silent; every other failure produces exactly one error entry in the log.
func (r *Reader) Read(path string) *Metadata {
	m, err := Extract(path)
	if err == nil {
		return m
	}
	if errors.Is(err, ErrUnsupportedFormat) {
		return nil
	}

	format, _ := Detect(path)
	r.log.WithFields(logrus.Fields{
		"path":   path,
		"format": format.String(),
		"kind":   KindOf(err).String(),
	}).WithError(err).Error("Failed to read file metadata")
	return nil
}

// Extract reads the metadata of path and reports why it failed.
// It returns ErrUnsupportedFormat when Detect does not recognize path.
func Extract(path string) (m *Metadata, err error) {
	format, ok := Detect(path)
	if !ok {
		return nil, ErrUnsupportedFormat
	}

	defer func() {
		if p := recover(); p != nil {
			m = nil
			err = &Error{
				Kind:   KindMalformedContainer,
				Format: format,
				Err:    fmt.Errorf("decoder panic: %v", p),
			}
		}
	}()

	switch format.kind() {
	case kindFrame:
		m, err = readID3(path, format)
	case kindItem:
		m, err = readAPE(path)
	case kindComment:
		if format == FormatOPUS {
			m, err = readOpus(path)
		} else {
			m, err = readVorbis(path)
		}
	case kindBlock:
		m, err = readFLAC(path)
	case kindAtom:
		m, err = readMP4(path)
	default:
		return nil, ErrUnsupportedFormat
	}

	if err != nil {
		var e *Error
		if errors.As(err, &e) && e.Format == 0 {
			e.Format = format
		}
		return nil, err
	}
	return m, nil
}
