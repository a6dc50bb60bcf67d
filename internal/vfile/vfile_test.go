package vfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClone_IsDeep(t *testing.T) {
	f := New("/src", "/src/guide.md", []byte("# Guide"))
	c := f.Clone()
	c.Path = "/guide.md"
	c.Contents[0] = '!'

	assert.Equal(t, "/src/guide.md", f.Path)
	assert.Equal(t, "# Guide", string(f.Contents))
}

func TestRelative(t *testing.T) {
	assert.Equal(t, "docs/a.md", New("/src", "/src/docs/a.md", nil).Relative())
	assert.Equal(t, "../other/a.md", New("/src", "/other/a.md", nil).Relative())
	assert.Equal(t, ".", New("/src", "/src", nil).Relative())
}

func TestVirtualPath(t *testing.T) {
	assert.Equal(t, "/docs/a.md", New("/src", "/src/docs/a.md", nil).VirtualPath())
	assert.Equal(t, "/a.md", New("/", "/a.md", nil).VirtualPath())
	assert.Equal(t, "/", New("/src", "/src", nil).VirtualPath())
}

func TestExt(t *testing.T) {
	assert.Equal(t, "md", New("/", "/README.MD", nil).Ext())
	assert.Equal(t, "", New("/", "/LICENSE", nil).Ext())
}

type upper struct{}

func (upper) RewriteHref(href string) string { return "/" + href }

func TestRewriteHref(t *testing.T) {
	f := New("/", "/a.md", nil)
	assert.Equal(t, "b.md", f.RewriteHref("b.md"))
	f.Rewriter = upper{}
	assert.Equal(t, "/b.md", f.RewriteHref("b.md"))
}

func TestSetPath_RecordsHistory(t *testing.T) {
	f := New("/src", "/src/README.md", nil)
	f.SetPath("/README.md")
	f.SetPath("/README.md")
	f.SetPath("/src/index.html")

	assert.Equal(t, []string{"/src/README.md", "/README.md"}, f.History)
	assert.Equal(t, "/src/README.md", f.Origin())
	assert.Equal(t, "md", f.OriginExt())
	assert.Equal(t, "html", f.Ext())

	c := f.Clone()
	c.SetPath("/elsewhere")
	assert.Len(t, f.History, 2)
}

func TestOrigin_WithoutHistory(t *testing.T) {
	f := New("/src", "/src/a.md", nil)
	assert.Equal(t, "/src/a.md", f.Origin())
}
