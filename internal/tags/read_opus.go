package tags

import (
	"iter"
	"maps"
	"os"
	"slices"

	"go.senan.xyz/taglib"
)

const decoderOpus = "opus"

// readOpus reads the OpusTags comment list of an Ogg Opus stream.
func readOpus(path string) (*Metadata, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, wrapErr(decoderOpus, err)
	}
	rawTags, err := taglib.ReadTags(path)
	if err != nil {
		return nil, wrapErr(decoderOpus, err)
	}
	return fromComments(taglibComments(rawTags)), nil
}

// taglibComments flattens a TagLib property map. Keys are visited in sorted
// order so results do not depend on map iteration; values keep their order.
func taglibComments(props map[string][]string) iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, key := range slices.Sorted(maps.Keys(props)) {
			for _, value := range props[key] {
				if !yield(key, value) {
					return
				}
			}
		}
	}
}
