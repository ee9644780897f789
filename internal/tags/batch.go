package tags

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ReadAll reads paths with the default Reader. See (*Reader).ReadAll.
func ReadAll(ctx context.Context, paths []string, workers int) ([]*Metadata, error) {
	return defaultReader.ReadAll(ctx, paths, workers)
}

// ReadAll reads paths concurrently with at most workers reads in flight
// (runtime.NumCPU() when workers <= 0). Results are aligned with paths; a
// file that cannot be read leaves a nil entry and is logged like Read.
//
// A failing file never stops the batch. Cancelling ctx stops new reads from
// starting and returns ctx.Err() with the results gathered so far.
func (r *Reader) ReadAll(ctx context.Context, paths []string, workers int) ([]*Metadata, error) {
	results := make([]*Metadata, len(paths))
	if len(paths) == 0 {
		return results, nil
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, path := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = r.Read(path)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}
