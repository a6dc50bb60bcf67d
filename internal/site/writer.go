package site

import (
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/hrefrewrite/internal/foundation/errors"
	"git.home.luguber.info/inful/hrefrewrite/internal/vfile"
)

// Writer writes finalized files under an output directory at their virtual paths.
type Writer struct {
	root string
}

// NewWriter returns a writer rooted at dir.
func NewWriter(dir string) *Writer {
	return &Writer{root: dir}
}

// Root returns the output directory.
func (w *Writer) Root() string { return w.root }

// Clean removes and recreates the output directory.
func (w *Writer) Clean() error {
	if err := os.RemoveAll(w.root); err != nil {
		return errors.FileSystemError("failed to clean output directory").WithCause(err).WithContext("path", w.root).Build()
	}
	if err := os.MkdirAll(w.root, 0o750); err != nil {
		return errors.FileSystemError("failed to create output directory").WithCause(err).WithContext("path", w.root).Build()
	}
	return nil
}

// Target returns the output location for a virtual path.
func (w *Writer) Target(virtualPath string) string {
	return filepath.Join(w.root, filepath.FromSlash(virtualPath))
}

// Write stores f at its virtual path and returns the written location.
func (w *Writer) Write(f *vfile.File) (string, error) {
	target := w.Target(f.VirtualPath())
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return "", errors.FileSystemError("failed to create output directory").WithCause(err).WithContext("path", filepath.Dir(target)).Build()
	}
	if err := os.WriteFile(target, f.Contents, 0o644); err != nil { //nolint:gosec // public site output
		return "", errors.FileSystemError("failed to write output file").WithCause(err).WithContext("path", target).Build()
	}
	return target, nil
}

// Remove deletes the output at virtualPath. A missing file is not an error.
func (w *Writer) Remove(virtualPath string) error {
	target := w.Target(virtualPath)
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return errors.FileSystemError("failed to remove output file").WithCause(err).WithContext("path", target).Build()
	}
	return nil
}
