package tags

import (
	"errors"
	"fmt"
	"io/fs"
)

// Kind classifies why a file could not be read.
type Kind int

const (
	KindUnsupportedFormat Kind = iota + 1
	KindMalformedContainer
	KindMissingRequiredBlock
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindUnsupportedFormat:
		return "unsupported format"
	case KindMalformedContainer:
		return "malformed container"
	case KindMissingRequiredBlock:
		return "missing required block"
	case KindIO:
		return "io failure"
	}
	return "unknown"
}

var (
	// ErrUnsupportedFormat is returned by Extract for paths Detect does not recognize.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrNoTag is returned when a file carries no tag of the expected kind.
	ErrNoTag = errors.New("no tag found")
	// ErrNoVorbisComment is returned for FLAC files without a VORBIS_COMMENT block.
	ErrNoVorbisComment = errors.New("could not find a vorbis comment within flac file")
)

// Error wraps a decoder failure with the format it was reading.
// Error() keeps the decoder's own message.
type Error struct {
	Kind    Kind
	Format  Format
	Decoder string
	Err     error
}

func (e *Error) Error() string {
	if e.Decoder == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Decoder, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// wrapErr attaches the decoder name to err. Filesystem errors are classified
// as KindIO, ErrNoVorbisComment as KindMissingRequiredBlock and everything
// else as KindMalformedContainer.
func wrapErr(decoder string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	kind := KindMalformedContainer
	var pathErr *fs.PathError
	switch {
	case errors.As(err, &pathErr):
		kind = KindIO
	case errors.Is(err, ErrNoVorbisComment):
		kind = KindMissingRequiredBlock
	}
	return &Error{Kind: kind, Decoder: decoder, Err: err}
}

// KindOf reports the Kind of err, or 0 when err is not a read failure.
func KindOf(err error) Kind {
	if errors.Is(err, ErrUnsupportedFormat) {
		return KindUnsupportedFormat
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
