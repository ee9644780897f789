package library

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/SINHASantos/polaris/internal/tags"
)

// Options controls which files Discover returns.
type Options struct {
	// Exclude lists directory names that are never entered.
	Exclude []string
	// FollowSymlinks descends into symlinked directories and keeps symlinked
	// files. A link back into a directory already being walked is ignored.
	FollowSymlinks bool
}

// Discover walks root and returns the paths of all music files found, sorted.
// Hidden directories and excluded directory names are skipped. Entries that
// cannot be read are skipped; only a failure to walk root itself is returned.
func Discover(ctx context.Context, root string, opts Options) ([]string, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, err
	}

	w := &walker{ctx: ctx, opts: opts, visited: map[string]bool{}}
	if err := w.walk(root); err != nil {
		return nil, err
	}

	slices.Sort(w.files)
	return w.files, nil
}

type walker struct {
	ctx     context.Context
	opts    Options
	visited map[string]bool
	files   []string
}

// walk visits the real directory behind root and records music files under
// root's own spelling, so files reached through a symlink keep the link path.
// Every real directory is entered at most once.
func (w *walker) walk(root string) error {
	dir, err := filepath.EvalSymlinks(root)
	if err != nil {
		return nil //nolint:nilerr // intentionally skipping errors
	}
	if w.visited[dir] {
		return nil
	}
	w.visited[dir] = true

	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if err := w.ctx.Err(); err != nil {
			return err
		}
		// Skip any walk errors - intentionally continuing to scan other paths
		if walkErr != nil {
			if d != nil && d.IsDir() && path != dir {
				return fs.SkipDir
			}
			return nil //nolint:nilerr // intentionally skipping errors
		}

		display := root
		if rel, err := filepath.Rel(dir, path); err == nil && rel != "." {
			display = filepath.Join(root, rel)
		}

		if d.IsDir() {
			if path == dir {
				return nil
			}
			if w.skipDir(d.Name()) || w.visited[path] {
				return fs.SkipDir
			}
			w.visited[path] = true
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			return w.symlink(display, d.Name())
		}

		if !tags.IsMusicFile(path) {
			return nil
		}
		w.files = append(w.files, display)
		return nil
	})
}

// symlink handles a symlinked entry found during the walk.
func (w *walker) symlink(path, name string) error {
	if !w.opts.FollowSymlinks {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		// dangling link
		return nil //nolint:nilerr // intentionally skipping errors
	}
	if info.IsDir() {
		if w.skipDir(name) {
			return nil
		}
		return w.walk(path)
	}
	if tags.IsMusicFile(path) {
		w.files = append(w.files, path)
	}
	return nil
}

func (w *walker) skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || slices.Contains(w.opts.Exclude, name)
}

// relativePath returns the path relative to the root, or the full path if not under root.
func relativePath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
