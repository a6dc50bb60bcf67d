// Package discovery walks a source directory and loads its files as virtual files.
package discovery

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	derrors "git.home.luguber.info/inful/hrefrewrite/internal/discovery/errors"
	"git.home.luguber.info/inful/hrefrewrite/internal/logfields"
	"git.home.luguber.info/inful/hrefrewrite/internal/vfile"
)

// IgnoreMarker is a file name that excludes the directory containing it, and
// everything below, from discovery.
const IgnoreMarker = ".hrefignore"

// Discovery finds the files of one source tree.
type Discovery struct {
	root    string
	ignore  []string
	exclude []string
}

// New creates a discovery for root. Ignore patterns use path.Match syntax and are
// matched against both the slash-separated relative path and the base name.
func New(root string, ignore []string) (*Discovery, error) {
	if err := ValidatePatterns(ignore); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", derrors.ErrInvalidRelativePath, root, err)
	}
	return &Discovery{root: abs, ignore: ignore}, nil
}

// ValidatePatterns reports the first malformed ignore pattern.
func ValidatePatterns(patterns []string) error {
	for _, p := range patterns {
		if _, err := path.Match(p, ""); err != nil {
			return fmt.Errorf("%w: %q: %w", derrors.ErrInvalidPattern, p, err)
		}
	}
	return nil
}

// Exclude skips dir and everything below it. It is used to keep an output directory
// nested in the source tree out of discovery.
func (d *Discovery) Exclude(dir string) {
	if abs, err := filepath.Abs(dir); err == nil {
		d.exclude = append(d.exclude, abs)
	}
}

// Root returns the absolute source root.
func (d *Discovery) Root() string { return d.root }

// Discover walks the source tree and returns its files in lexical order with Base set
// to the source root.
func (d *Discovery) Discover(ctx context.Context) ([]*vfile.File, error) {
	info, err := os.Stat(d.root)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", derrors.ErrSourceNotFound, d.root)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", derrors.ErrWalkFailed, d.root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", derrors.ErrSourceNotDir, d.root)
	}

	var files []*vfile.File
	err = filepath.WalkDir(d.root, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if p == d.root {
			return nil
		}

		if entry.IsDir() {
			if d.Skip(p) || hasIgnoreMarker(p) {
				slog.Debug("Skipping directory", logfields.Path(p))
				return filepath.SkipDir
			}
			return nil
		}
		if !entry.Type().IsRegular() || d.Skip(p) {
			return nil
		}

		f, err := d.Load(p)
		if err != nil {
			return err
		}
		files = append(files, f)
		slog.Debug("Discovered file", logfields.File(f.Relative()))
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %s: %w", derrors.ErrWalkFailed, d.root, err)
	}

	slog.Info("Source files discovered", logfields.Path(d.root), logfields.Count(len(files)))
	return files, nil
}

// Load reads one file below the source root.
func (d *Discovery) Load(p string) (*vfile.File, error) {
	contents, err := os.ReadFile(filepath.Clean(p))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", derrors.ErrFileReadFailed, p, err)
	}
	return vfile.New(d.root, p, contents), nil
}

// Skip reports whether p is hidden, outside the root, or matches an ignore pattern.
func (d *Discovery) Skip(p string) bool {
	rel, err := filepath.Rel(d.root, p)
	if err != nil {
		return true
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return true
	}
	if rel == "." {
		return false
	}
	for _, ex := range d.exclude {
		if r, err := filepath.Rel(ex, p); err == nil && r != ".." && !strings.HasPrefix(r, ".."+string(filepath.Separator)) {
			return true
		}
	}

	for _, seg := range strings.Split(rel, "/") {
		if strings.HasPrefix(seg, ".") {
			return true
		}
	}

	base := path.Base(rel)
	for _, pattern := range d.ignore {
		if ok, _ := path.Match(pattern, rel); ok {
			return true
		}
		if ok, _ := path.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

func hasIgnoreMarker(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, IgnoreMarker))
	return err == nil
}
