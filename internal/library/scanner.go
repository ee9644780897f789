package library

import (
	"context"
	"os"
	"time"

	"github.com/SINHASantos/polaris/internal/tags"
)

// Result holds the metadata read for one discovered file.
type Result struct {
	Path     string         `json:"path"`
	Size     int64          `json:"size"`
	Metadata *tags.Metadata `json:"metadata"`
}

// Summary holds statistics for a completed scan.
type Summary struct {
	Files        int           `json:"files"`
	WithMetadata int           `json:"with_metadata"`
	Failed       int           `json:"failed"`
	Bytes        int64         `json:"bytes"`
	Duration     time.Duration `json:"duration"` // sum of known track durations
}

// Scanner discovers music files under a root and reads their metadata.
type Scanner struct {
	reader  *tags.Reader
	workers int
	opts    Options
}

// NewScanner returns a Scanner reading with r using at most workers
// concurrent reads (one per CPU when workers <= 0).
func NewScanner(r *tags.Reader, workers int, opts Options) *Scanner {
	if r == nil {
		r = tags.NewReader(nil)
	}
	return &Scanner{reader: r, workers: workers, opts: opts}
}

// Scan walks root and reads every music file found. Results follow the
// sorted discovery order. A file whose metadata cannot be read is kept with
// a nil Metadata and counted as failed.
func (s *Scanner) Scan(ctx context.Context, root string) ([]Result, Summary, error) {
	paths, err := Discover(ctx, root, s.opts)
	if err != nil {
		return nil, Summary{}, err
	}

	metadata, err := s.reader.ReadAll(ctx, paths, s.workers)
	if err != nil {
		return nil, Summary{}, err
	}

	results := make([]Result, len(paths))
	summary := Summary{Files: len(paths)}
	for i, path := range paths {
		m := metadata[i]
		results[i] = Result{Path: path, Metadata: m}
		if info, err := os.Stat(path); err == nil {
			results[i].Size = info.Size()
		}

		summary.Bytes += results[i].Size
		if m == nil {
			summary.Failed++
			continue
		}
		summary.WithMetadata++
		if m.Duration != nil {
			summary.Duration += time.Duration(*m.Duration) * time.Second
		}
	}
	return results, summary, nil
}

// RelativePath returns path relative to root for display.
func RelativePath(root, path string) string {
	return relativePath(root, path)
}
