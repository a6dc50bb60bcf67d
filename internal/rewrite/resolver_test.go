package rewrite

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"git.home.luguber.info/inful/hrefrewrite/internal/index"
	"git.home.luguber.info/inful/hrefrewrite/internal/metrics"
)

func newTestResolver(filePath string, paths, dirs map[string]string) *Resolver {
	pi := index.New[string](IndexRewrittenFilepath)
	for k, v := range paths {
		pi.Emit(k, v)
	}
	di := index.New[string](IndexRewrittenIndex)
	for k, v := range dirs {
		di.Emit(k, v)
	}
	return NewResolver(filePath, pi, di, nil)
}

func TestResolver_ExternalHrefsAreUnchanged(t *testing.T) {
	r := newTestResolver("/docs/guide.md",
		map[string]string{"/docs/README.md": "/docs/index.html"},
		map[string]string{"/": "/", "/docs": "/docs"})

	hrefs := []string{
		"https://example.com/docs/README.md",
		"http://example.com",
		"//cdn.example.com/lib.js",
		"https://user:pw@example.com:8443/a?b=c#d",
		"mailto:team@example.com",
		"ftp://files.example.com/README.md",
	}
	for _, href := range hrefs {
		res := r.Resolve(href)
		assert.Equal(t, href, res.Href)
		assert.Equal(t, KindExternal, res.Kind, href)
	}
}

func TestResolver_Kinds(t *testing.T) {
	r := newTestResolver("/docs/guide.md",
		map[string]string{"/docs/README.md": "/docs/index.html", "/api/ref.md": "/reference/api.html"},
		map[string]string{"/docs": "/handbook"})

	tests := []struct {
		href       string
		want       string
		kind       Kind
		referenced string
	}{
		{"README.md", "/docs/index.html", KindExact, "/docs/README.md"},
		{"../api/ref.md", "/reference/api.html", KindExact, "/api/ref.md"},
		{"/api/ref.md", "/reference/api.html", KindExact, "/api/ref.md"},
		{"../api/ref.md#types", "/reference/api.html#types", KindExact, "/api/ref.md"},
		{"diagram.svg", "/handbook/diagram.svg", KindIndex, "/docs/diagram.svg"},
		{"sub/deep/file.md", "/handbook/file.md", KindIndex, "/docs/sub/deep/file.md"},
		{"../other/x.md", "/other/x.md", KindUnresolved, "/other/x.md"},
		{"../../../../x.md", "/x.md", KindUnresolved, "/x.md"},
		{"#top", "#top", KindExternal, ""},
	}
	for _, tt := range tests {
		t.Run(tt.href, func(t *testing.T) {
			res := r.Resolve(tt.href)
			assert.Equal(t, tt.want, res.Href)
			assert.Equal(t, tt.kind, res.Kind)
			assert.Equal(t, tt.referenced, res.Referenced)
		})
	}
}

func TestResolver_TraversalReachesRoot(t *testing.T) {
	r := newTestResolver("/a/b/c/page.md", nil, map[string]string{"/": "/moved"})
	assert.Equal(t, "/moved/x.md", r.RewriteHref("x.md"))
}

func TestResolver_NearestAncestorWins(t *testing.T) {
	r := newTestResolver("/a/b/page.md", nil, map[string]string{"/": "/root", "/a": "/alpha", "/a/b": "/beta"})
	assert.Equal(t, "/beta/x.md", r.RewriteHref("x.md"))
	assert.Equal(t, "/alpha/y.md", r.RewriteHref("../y.md"))
	assert.Equal(t, "/root/z.md", r.RewriteHref("/z.md"))
}

func TestResolver_MalformedHrefDoesNotPanic(t *testing.T) {
	r := newTestResolver("/docs/guide.md", nil, nil)
	for _, href := range []string{"%zz", "a b.md", "::", "[x]", "", "./", ".."} {
		assert.NotPanics(t, func() { _ = r.RewriteHref(href) }, href)
	}
	assert.Equal(t, "/docs/%zz", r.RewriteHref("%zz"))
	assert.Equal(t, "", r.RewriteHref(""))
	assert.Equal(t, "/", r.RewriteHref(".."))
}

func TestResolver_FirstValueWins(t *testing.T) {
	pi := index.New[string](IndexRewrittenFilepath)
	pi.Emit("/x.md", "/first.html")
	pi.Emit("/x.md", "/second.html")
	r := NewResolver("/page.md", pi, index.New[string](IndexRewrittenIndex), nil)

	for range 3 {
		assert.Equal(t, "/first.html", r.RewriteHref("x.md"))
	}
}

type countingRecorder struct {
	metrics.NoopRecorder
	mu          sync.Mutex
	resolutions map[string]int
	collisions  map[string]int
	files       map[string]int
	results     map[string]int // "stage/result" -> count
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{
		resolutions: map[string]int{},
		collisions:  map[string]int{},
		files:       map[string]int{},
		results:     map[string]int{},
	}
}

func (c *countingRecorder) IncStageResult(stage string, result metrics.ResultLabel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[stage+"/"+string(result)]++
}

func (c *countingRecorder) IncHrefResolution(kind string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resolutions[kind]++
}

func (c *countingRecorder) IncIndexCollision(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.collisions[name]++
}

func (c *countingRecorder) IncFilesProcessed(mode string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.files[mode]++
}

func TestResolver_RecordsKinds(t *testing.T) {
	rec := newCountingRecorder()
	r := NewResolver("/guide.md", index.New[string]("p"), index.New[string]("d"), rec)
	r.RewriteHref("https://example.com")
	r.RewriteHref("missing.md")
	r.RewriteHref("missing.md")

	assert.Equal(t, 1, rec.resolutions[string(KindExternal)])
	assert.Equal(t, 2, rec.resolutions[string(KindUnresolved)])
}
