package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/hrefrewrite/internal/foundation/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "hrefrewrite.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestLoad_Full(t *testing.T) {
	t.Setenv("SITE_OUT", "/tmp/out-from-env")
	p := writeConfig(t, `version: "1.0"
source: ./docs
output:
  directory: ${SITE_OUT}
  clean: true
mode: Incremental
collisions: error
documents:
  extensions: [".md", "html"]
  index_names: [README]
render:
  markdown: false
  layout: layout.html
ignore: ["*.tmp"]
watch:
  debounce: 1s
metrics:
  listen: ":9090"
`)

	cfg, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, "./docs", cfg.Source)
	assert.Equal(t, "/tmp/out-from-env", cfg.Output.Directory)
	assert.True(t, cfg.Output.Clean)
	assert.Equal(t, ModeIncremental, cfg.Mode)
	assert.Equal(t, CollisionError, cfg.Collisions)
	assert.Equal(t, []string{"md", "html"}, cfg.Documents.Extensions)
	assert.Equal(t, []string{"README"}, cfg.Documents.IndexNames)
	assert.False(t, cfg.Render.MarkdownEnabled())
	assert.Equal(t, "layout.html", cfg.Render.Layout)
	assert.Equal(t, time.Second, cfg.Watch.DebounceDuration())
	assert.Equal(t, ":9090", cfg.Metrics.Listen)
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("source: docs\n"))
	require.NoError(t, err)

	assert.Equal(t, CurrentVersion, cfg.Version)
	assert.Equal(t, "./site", cfg.Output.Directory)
	assert.Equal(t, ModeBatch, cfg.Mode)
	assert.Equal(t, CollisionFirstWins, cfg.Collisions)
	assert.Equal(t, []string{"html", "htm", "md", "markdown", "asciidoc", "adoc"}, cfg.Documents.Extensions)
	assert.Equal(t, []string{"README", "index"}, cfg.Documents.IndexNames)
	assert.True(t, cfg.Render.MarkdownEnabled())
	assert.Equal(t, DefaultDebounce, cfg.Watch.DebounceDuration())
}

func TestParse_UnknownModeFallsBack(t *testing.T) {
	cfg, err := Parse([]byte("source: docs\nmode: sometimes\ncollisions: whatever\n"))
	require.NoError(t, err)
	assert.Equal(t, ModeBatch, cfg.Mode)
	assert.Equal(t, CollisionFirstWins, cfg.Collisions)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad yaml", "source: [\n"},
		{"wrong version", "version: \"2.0\"\n"},
		{"same source and output", "source: site\noutput:\n  directory: site\n"},
		{"source inside output", "source: site/docs\noutput:\n  directory: site\n"},
		{"bad extension", "source: docs\ndocuments:\n  extensions: [\"a/b\"]\n"},
		{"bad index name", "source: docs\ndocuments:\n  index_names: [\"x/y\"]\n"},
		{"bad ignore pattern", "source: docs\nignore: [\"[\"]\n"},
		{"bad debounce", "source: docs\nwatch:\n  debounce: soon\n"},
		{"negative debounce", "source: docs\nwatch:\n  debounce: -1s\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.True(t, errors.HasCategory(err, errors.CategoryConfig), "got %v", err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HREFREWRITE_TEST_SRC", "")
	require.NoError(t, os.Unsetenv("HREFREWRITE_TEST_SRC"))
	t.Setenv("HREFREWRITE_TEST_OUT", "from-process")

	require.NoError(t, os.WriteFile(".env", []byte("HREFREWRITE_TEST_SRC=from-dotenv\nHREFREWRITE_TEST_OUT=from-dotenv\n"), 0o600))
	p := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(p, []byte("source: ${HREFREWRITE_TEST_SRC}\noutput:\n  directory: ${HREFREWRITE_TEST_OUT}\n"), 0o600))

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Source)
	assert.Equal(t, "from-process", cfg.Output.Directory)
}

func TestInit(t *testing.T) {
	p := filepath.Join(t.TempDir(), "hrefrewrite.yaml")
	t.Setenv("HREFREWRITE_METRICS_LISTEN", ":9191")

	require.NoError(t, Init(p, false))

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "./docs", cfg.Source)
	assert.Equal(t, ":9191", cfg.Metrics.Listen)

	err = Init(p, false)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
	require.NoError(t, Init(p, true))
}

func TestNormalize(t *testing.T) {
	cfg := &Config{Mode: " BATCH ", Collisions: "first_wins"}
	warnings := Normalize(cfg)
	assert.Equal(t, ModeBatch, cfg.Mode)
	assert.Equal(t, CollisionFirstWins, cfg.Collisions)
	assert.Len(t, warnings, 2)
}

func TestNormalize_Documents(t *testing.T) {
	cfg := &Config{Documents: DocumentsConfig{
		Extensions: []string{".md", " md", "html", ""},
		IndexNames: []string{"README ", "README", "index"},
	}}
	assert.Empty(t, Normalize(cfg))
	assert.Equal(t, []string{"md", "html"}, cfg.Documents.Extensions)
	assert.Equal(t, []string{"README", "index"}, cfg.Documents.IndexNames)
}
