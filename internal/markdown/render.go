package markdown

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"git.home.luguber.info/inful/hrefrewrite/internal/vfile"
)

type linkTransformer struct {
	rw vfile.HrefRewriter
}

func (t *linkTransformer) Transform(doc *gmast.Document, _ text.Reader, _ parser.Context) {
	_ = gmast.Walk(doc, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *gmast.Link:
			node.Destination = []byte(t.rw.RewriteHref(string(node.Destination)))
		case *gmast.Image:
			node.Destination = []byte(t.rw.RewriteHref(string(node.Destination)))
		}
		return gmast.WalkContinue, nil
	})
}

type linkRewrite struct {
	rw vfile.HrefRewriter
}

// LinkRewrite returns a goldmark extension that passes every link and image
// destination through rw before rendering. Autolinks and raw HTML are left alone.
func LinkRewrite(rw vfile.HrefRewriter) goldmark.Extender {
	return &linkRewrite{rw: rw}
}

func (e *linkRewrite) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithASTTransformers(
		util.Prioritized(&linkTransformer{rw: e.rw}, 999),
	))
}

func newRenderer(rw vfile.HrefRewriter) goldmark.Markdown {
	exts := []goldmark.Extender{extension.GFM}
	if rw != nil {
		exts = append(exts, LinkRewrite(rw))
	}
	return goldmark.New(
		goldmark.WithExtensions(exts...),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
}

// Render converts body to HTML, rewriting link destinations through rw.
// A nil rw renders without rewriting.
func Render(body []byte, rw vfile.HrefRewriter, w io.Writer) error {
	return newRenderer(rw).Convert(body, w)
}

// Title returns the text of the first level-one heading, or "" when there is none.
func Title(body []byte) string {
	root, _ := parse(body)

	var title string
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		h, ok := n.(*gmast.Heading)
		if !entering || !ok || h.Level != 1 {
			return gmast.WalkContinue, nil
		}
		var buf bytes.Buffer
		_ = gmast.Walk(h, func(c gmast.Node, entering bool) (gmast.WalkStatus, error) {
			if t, ok := c.(*gmast.Text); entering && ok {
				buf.Write(t.Segment.Value(body))
				if t.SoftLineBreak() {
					buf.WriteByte(' ')
				}
			}
			return gmast.WalkContinue, nil
		})
		title = strings.TrimSpace(buf.String())
		return gmast.WalkStop, nil
	})
	return title
}
