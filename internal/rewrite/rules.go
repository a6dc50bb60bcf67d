package rewrite

import (
	"path"
	"strings"

	"golang.org/x/text/cases"

	"git.home.luguber.info/inful/hrefrewrite/internal/util/sets"
	"git.home.luguber.info/inful/hrefrewrite/internal/vfile"
)

// TransformFunc returns the absolute virtual path a file is renamed to, or false when
// the file keeps its path.
type TransformFunc func(f *vfile.File) (string, bool)

// IsIndexFunc reports whether f, renamed to target, is its directory's index document.
type IsIndexFunc func(f *vfile.File, target string) bool

// Rules describe which files are web documents and which of them are index documents.
type Rules struct {
	// Extensions without the leading dot; matched case-insensitively.
	Extensions sets.Set[string]
	// IndexNames are basenames without extension; matched case-insensitively.
	IndexNames sets.Set[string]
	// TargetExt is the extension documents are renamed to.
	TargetExt string
	// IndexTarget is the file name index documents are renamed to.
	IndexTarget string
}

// DefaultRules matches html, htm, md, markdown, asciidoc and adoc documents and
// treats README and index as index documents.
func DefaultRules() Rules {
	return NewRules(
		[]string{"html", "htm", "md", "markdown", "asciidoc", "adoc"},
		[]string{"README", "index"},
	)
}

// NewRules builds rules from extension and index-name lists.
func NewRules(extensions, indexNames []string) Rules {
	r := Rules{
		Extensions:  sets.New[string](),
		IndexNames:  sets.New[string](),
		TargetExt:   "html",
		IndexTarget: "index.html",
	}
	for _, ext := range extensions {
		r.Extensions.Add(fold(strings.TrimPrefix(ext, ".")))
	}
	for _, name := range indexNames {
		r.IndexNames.Add(fold(name))
	}
	return r
}

func fold(s string) string {
	// cases.Caser is stateful; one per call.
	return cases.Fold().String(s)
}

// splitName returns dir, name without extension, and extension without the dot.
// A dot-only name such as ".md" has no extension.
func splitName(p string) (string, string, string) {
	base := path.Base(p)
	ext := path.Ext(base)
	if ext == base {
		ext = ""
	}
	return path.Dir(p), strings.TrimSuffix(base, ext), strings.TrimPrefix(ext, ".")
}

// IsDocument reports whether p has a document extension.
func (r Rules) IsDocument(p string) bool {
	_, _, ext := splitName(p)
	return ext != "" && r.Extensions.Has(fold(ext))
}

// IsIndexName reports whether p is a document whose basename is an index name.
func (r Rules) IsIndexName(p string) bool {
	_, name, _ := splitName(p)
	return r.IsDocument(p) && r.IndexNames.Has(fold(name))
}

// Transform renames documents: index documents to <dir>/index.html, every other
// document to <dir>/<name>.html. Other files are left alone.
func (r Rules) Transform(f *vfile.File) (string, bool) {
	p := f.Path
	if !r.IsDocument(p) {
		return "", false
	}
	dir, name, _ := splitName(p)
	if r.IndexNames.Has(fold(name)) {
		return path.Join("/", dir, r.IndexTarget), true
	}
	return path.Join("/", dir, name+"."+r.TargetExt), true
}

// IsIndex ignores the target and checks the source file name.
func (r Rules) IsIndex(f *vfile.File, _ string) bool {
	return r.IsIndexName(f.Path)
}

// DefaultTransform applies DefaultRules.
func DefaultTransform(f *vfile.File) (string, bool) {
	return DefaultRules().Transform(f)
}

// DefaultIsIndex applies DefaultRules.
func DefaultIsIndex(f *vfile.File, target string) bool {
	return DefaultRules().IsIndex(f, target)
}
