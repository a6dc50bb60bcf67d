package site

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/hrefrewrite/internal/config"
	"git.home.luguber.info/inful/hrefrewrite/internal/rewrite"
)

func TestWatch_PublishesChanges(t *testing.T) {
	s, cfg := newTestSite(t, map[string]string{
		"README.md": "# Home\n\n[guide](guide.md)\n",
	}, func(c *config.Config) { c.Watch.Debounce = "10ms" })
	out := cfg.Output.Directory

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- s.Watch(ctx) }()

	// The root index absorbs the link until guide.md exists.
	eventuallyContains(t, filepath.Join(out, "index.html"), `<a href="/guide.md">guide</a>`)

	writeTree(t, cfg.Source, map[string]string{"guide.md": "# Guide\n\n[home](README.md)\n"})
	eventuallyContains(t, filepath.Join(out, "guide.html"), `<a href="/index.html">home</a>`)
	// Documents are rendered again once the batch is published.
	eventuallyContains(t, filepath.Join(out, "index.html"), `<a href="/guide.html">guide</a>`)

	require.NoError(t, os.Remove(filepath.Join(cfg.Source, "guide.md")))
	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(out, "guide.html"))
		return os.IsNotExist(err)
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func eventuallyContains(t *testing.T, p, want string) {
	t.Helper()
	require.Eventually(t, func() bool {
		b, err := os.ReadFile(p)
		return err == nil && strings.Contains(string(b), want)
	}, 5*time.Second, 10*time.Millisecond, "%s never contained %q", p, want)
}

func TestWatch_SourceMissing(t *testing.T) {
	_, cfg := newTestSite(t, nil, nil)
	cfg.Source = filepath.Join(t.TempDir(), "missing")
	s, err := New(cfg)
	require.NoError(t, err)

	require.Error(t, s.Watch(context.Background()))
}

func TestShouldIgnoreEvent(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/src/guide.md", false},
		{"/src/.guide.md.swp", true},
		{"/src/guide.md~", true},
		{"/src/guide.swx", true},
		{"/src/#guide.md#", true},
		{"/src/Thumbs.db", true},
		{"/src/.DS_Store", true},
		{"/src/img/logo.png", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, shouldIgnoreEvent(tt.path))
		})
	}
}

func TestSetupRebuildDebouncer_Coalesces(t *testing.T) {
	req, trigger := setupRebuildDebouncer(20 * time.Millisecond)
	for range 5 {
		trigger()
	}

	select {
	case <-req:
	case <-time.After(time.Second):
		t.Fatal("no rebuild requested")
	}
	select {
	case <-req:
		t.Fatal("triggers were not coalesced")
	case <-time.After(60 * time.Millisecond):
	}
}

func TestRun_ClaimAndRelease(t *testing.T) {
	r := newRun(rewrite.ModeBatch)

	owner, ok := r.claim("/index.html", "/src/README.md")
	require.True(t, ok)
	assert.Equal(t, "/src/README.md", owner)

	_, ok = r.claim("/index.html", "/src/README.md")
	assert.True(t, ok, "same origin may publish again")

	owner, ok = r.claim("/index.html", "/src/index.md")
	assert.False(t, ok)
	assert.Equal(t, "/src/README.md", owner)

	assert.False(t, r.release("/index.html", "/src/index.md"))
	assert.True(t, r.owns("/index.html", "/src/README.md"))
	assert.True(t, r.release("/index.html", "/src/README.md"))

	_, ok = r.claim("/index.html", "/src/index.md")
	assert.True(t, ok)
}
