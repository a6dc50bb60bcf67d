// Package vfile defines the virtual file that flows through the rewrite pipeline.
package vfile

import (
	"path"
	"path/filepath"
	"slices"
	"strings"
)

// HrefRewriter rewrites an href found in a file's content so it points at the
// referenced file's final location.
type HrefRewriter interface {
	RewriteHref(href string) string
}

// File is a document or asset moving through the pipeline.
//
// Path is absolute. Base is the absolute directory Path is relative to; for files
// discovered on disk it is the source root.
type File struct {
	Path     string
	Base     string
	Contents []byte

	// History holds earlier values of Path, oldest first.
	History []string

	// Rewriter is attached by the final pipeline stage.
	Rewriter HrefRewriter
}

// New creates a file rooted at base.
func New(base, p string, contents []byte) *File {
	return &File{Path: p, Base: base, Contents: contents}
}

// Clone returns a deep copy. Stages mutate clones, never their input.
func (f *File) Clone() *File {
	c := *f
	c.Contents = slices.Clone(f.Contents)
	c.History = slices.Clone(f.History)
	return &c
}

// SetPath moves the file to p and records the previous path in History.
func (f *File) SetPath(p string) {
	if p == f.Path {
		return
	}
	f.History = append(f.History, f.Path)
	f.Path = p
}

// Origin returns the path the file was created with.
func (f *File) Origin() string {
	if len(f.History) > 0 {
		return f.History[0]
	}
	return f.Path
}

// OriginExt returns the lower-cased extension of Origin without the leading dot.
func (f *File) OriginExt() string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(filepath.ToSlash(f.Origin())), "."))
}

// Relative returns Path relative to Base using forward slashes. Paths outside Base
// keep their leading ".." segments.
func (f *File) Relative() string {
	rel, err := filepath.Rel(f.Base, f.Path)
	if err != nil {
		return strings.TrimPrefix(filepath.ToSlash(f.Path), "/")
	}
	return filepath.ToSlash(rel)
}

// VirtualPath returns Path re-expressed under the virtual root "/".
func (f *File) VirtualPath() string {
	return path.Join("/", f.Relative())
}

// Ext returns the lower-cased extension without the leading dot.
func (f *File) Ext() string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(filepath.ToSlash(f.Path)), "."))
}

// RewriteHref delegates to the attached rewriter and returns href unchanged when
// none is attached yet.
func (f *File) RewriteHref(href string) string {
	if f.Rewriter == nil {
		return href
	}
	return f.Rewriter.RewriteHref(href)
}
