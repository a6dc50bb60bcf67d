package htmlrewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapRewriter map[string]string

func (m mapRewriter) RewriteHref(href string) string {
	if v, ok := m[href]; ok {
		return v
	}
	return href
}

func TestRewrite(t *testing.T) {
	rw := mapRewriter{
		"guide.md":  "/guide.html",
		"a.png":     "/img/a.png",
		"app.js":    "/js/app.js",
		"site.css":  "/css/site.css",
		"q.md?x&y":  "/q.html?x&y",
		"README.md": "/index.html",
	}

	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "anchor double quoted",
			src:  `<p>See <a class="x" href="guide.md">guide</a>.</p>`,
			want: `<p>See <a class="x" href="/guide.html">guide</a>.</p>`,
		},
		{
			name: "single quoted and uppercase",
			src:  `<A HREF='guide.md'>g</A>`,
			want: `<A HREF='/guide.html'>g</A>`,
		},
		{
			name: "unquoted value gets quotes",
			src:  `<a href=guide.md>g</a>`,
			want: `<a href="/guide.html">g</a>`,
		},
		{
			name: "self closing image",
			src:  `<img alt="a" src="a.png" />`,
			want: `<img alt="a" src="/img/a.png" />`,
		},
		{
			name: "script and link",
			src:  "<head>\n  <link rel=\"stylesheet\" href=\"site.css\">\n  <script src=\"app.js\"></script>\n</head>",
			want: "<head>\n  <link rel=\"stylesheet\" href=\"/css/site.css\">\n  <script src=\"/js/app.js\"></script>\n</head>",
		},
		{
			name: "entities decoded then escaped",
			src:  `<a href="q.md?x&amp;y">q</a>`,
			want: `<a href="/q.html?x&amp;y">q</a>`,
		},
		{
			name: "other attributes untouched",
			src:  `<div data-href="guide.md"><a title="guide.md">t</a></div>`,
			want: `<div data-href="guide.md"><a title="guide.md">t</a></div>`,
		},
		{
			name: "comments and doctype preserved",
			src:  "<!DOCTYPE html>\n<!-- <a href=\"guide.md\"> -->\n<a  href = \"README.md\" >home</a>",
			want: "<!DOCTYPE html>\n<!-- <a href=\"guide.md\"> -->\n<a  href = \"/index.html\" >home</a>",
		},
		{
			name: "unknown target unchanged",
			src:  `<a href="missing.md">m</a>`,
			want: `<a href="missing.md">m</a>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Rewrite([]byte(tt.src), rw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestLinks(t *testing.T) {
	src := `<html><head><link href="a.css"><script src="b.js"></script></head>
<body><a href="c.md">c</a><img src="d.png"><a name="anchor">x</a></body></html>`

	links, err := Links([]byte(src))
	require.NoError(t, err)
	require.Equal(t, []Link{
		{URL: "a.css", Tag: "link", Attribute: "href"},
		{URL: "b.js", Tag: "script", Attribute: "src"},
		{URL: "c.md", Tag: "a", Attribute: "href"},
		{URL: "d.png", Tag: "img", Attribute: "src"},
	}, links)
}
