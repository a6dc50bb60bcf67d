// Package content renders a finalized file's contents so its links point at the
// rewritten locations.
package content

import (
	"bytes"
	"html/template"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/hrefrewrite/internal/foundation/errors"
	"git.home.luguber.info/inful/hrefrewrite/internal/htmlrewrite"
	"git.home.luguber.info/inful/hrefrewrite/internal/markdown"
	"git.home.luguber.info/inful/hrefrewrite/internal/vfile"
)

// Kind classifies a file by the extension it was discovered with.
type Kind string

const (
	KindMarkdown Kind = "markdown"
	KindHTML     Kind = "html"
	KindAsset    Kind = "asset"
)

// KindOf returns the content kind of f based on its origin path.
func KindOf(f *vfile.File) Kind {
	switch f.OriginExt() {
	case "md", "markdown":
		return KindMarkdown
	case "html", "htm":
		return KindHTML
	default:
		return KindAsset
	}
}

const defaultLayout = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
{{.Content}}
</body>
</html>
`

// Page is the data passed to a layout template.
type Page struct {
	Title   string
	Path    string // final virtual path
	Source  string // path the file was discovered at
	Content template.HTML
}

// Renderer rewrites file contents.
type Renderer struct {
	markdown bool
	layout   *template.Template
}

// NewRenderer returns a renderer. When renderMarkdown is false Markdown documents keep
// their source form with link destinations rewritten. A nil layout uses a minimal page.
func NewRenderer(renderMarkdown bool, layout *template.Template) *Renderer {
	if layout == nil {
		layout = template.Must(template.New("layout").Parse(defaultLayout))
	}
	return &Renderer{markdown: renderMarkdown, layout: layout}
}

// LoadLayout parses an html/template layout file.
func LoadLayout(p string) (*template.Template, error) {
	data, err := os.ReadFile(filepath.Clean(p))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read layout").WithContext("path", p).Build()
	}
	t, err := template.New(filepath.Base(p)).Parse(string(data))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to parse layout").WithContext("path", p).Build()
	}
	return t, nil
}

// Render returns a clone of f whose contents have every link rewritten through
// f's attached rewriter. Assets are returned unchanged.
func (r *Renderer) Render(f *vfile.File) (*vfile.File, error) {
	out := f.Clone()

	var err error
	switch KindOf(f) {
	case KindMarkdown:
		if r.markdown && f.Ext() == "html" {
			out.Contents, err = r.renderMarkdown(f)
		} else {
			out.Contents, err = markdown.RewriteSource(f.Contents, f)
		}
	case KindHTML:
		out.Contents, err = htmlrewrite.Rewrite(f.Contents, f)
	case KindAsset:
		return out, nil
	}
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryRender, "failed to render content").
			WithContext("file", f.Origin()).
			Build()
	}
	return out, nil
}

func (r *Renderer) renderMarkdown(f *vfile.File) ([]byte, error) {
	var body bytes.Buffer
	if err := markdown.Render(f.Contents, f, &body); err != nil {
		return nil, err
	}

	title := markdown.Title(f.Contents)
	if title == "" {
		base := filepath.Base(f.Origin())
		title = base[:len(base)-len(filepath.Ext(base))]
	}

	var page bytes.Buffer
	err := r.layout.Execute(&page, Page{
		Title:   title,
		Path:    f.VirtualPath(),
		Source:  f.Origin(),
		Content: template.HTML(body.String()), //nolint:gosec // rendered by goldmark from local sources
	})
	if err != nil {
		return nil, err
	}
	return page.Bytes(), nil
}
