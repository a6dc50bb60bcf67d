package rewrite

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/hrefrewrite/internal/vfile"
)

type fixtureLink struct {
	Href     string `yaml:"href"`
	Expected string `yaml:"expected"`
}

type fixtureFile struct {
	Path     string        `yaml:"path"`
	Expected string        `yaml:"expected"`
	Contents string        `yaml:"contents"`
	Links    []fixtureLink `yaml:"links"`
}

type fileset struct {
	Base    string            `yaml:"base"`
	Renames map[string]string `yaml:"renames"`
	Files   []fixtureFile     `yaml:"files"`
}

func loadFilesets(t *testing.T) map[string]fileset {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "filesets.yaml"))
	require.NoError(t, err)
	var sets map[string]fileset
	require.NoError(t, yaml.Unmarshal(data, &sets))
	return sets
}

func (fs fileset) vfiles() []*vfile.File {
	out := make([]*vfile.File, 0, len(fs.Files))
	for _, f := range fs.Files {
		out = append(out, vfile.New(fs.Base, filepath.Join(fs.Base, filepath.FromSlash(f.Path)), []byte(f.Contents)))
	}
	return out
}

func (fs fileset) options() []Option {
	opts := []Option{WithBatch(true)}
	if fs.Renames != nil {
		opts = append(opts, WithTransform(func(f *vfile.File) (string, bool) {
			target, ok := fs.Renames[f.Path]
			return target, ok
		}))
	}
	return opts
}

func TestFilesets(t *testing.T) {
	sets := loadFilesets(t)
	names := make([]string, 0, len(sets))
	for name := range sets {
		names = append(names, name)
	}
	sort.Strings(names)
	require.Contains(t, names, "sampleMd")

	for _, name := range names {
		fs := sets[name]
		t.Run(name, func(t *testing.T) {
			out, err := New(fs.options()...).Run(context.Background(), fs.vfiles())
			require.NoError(t, err)
			require.Len(t, out, len(fs.Files))

			for i, want := range fs.Files {
				got := out[i]
				assert.Equal(t, filepath.Join(fs.Base, filepath.FromSlash(want.Expected)), got.Path, "final path of %s", want.Path)
				assert.Equal(t, fs.Base, got.Base)
				assert.Equal(t, want.Contents, string(got.Contents))
				for _, link := range want.Links {
					assert.Equal(t, link.Expected, got.RewriteHref(link.Href), "%s: href %q", want.Path, link.Href)
				}
			}
		})
	}
}

// The channel-driven batch run must agree with Run.
func TestFilesets_ProcessMatchesRun(t *testing.T) {
	for name, fs := range loadFilesets(t) {
		t.Run(name, func(t *testing.T) {
			in := make(chan *vfile.File, len(fs.Files))
			out := make(chan *vfile.File, len(fs.Files))
			for _, f := range fs.vfiles() {
				in <- f
			}
			close(in)

			require.NoError(t, New(fs.options()...).Process(context.Background(), in, out))

			var got []*vfile.File
			for f := range out {
				got = append(got, f)
			}
			require.Len(t, got, len(fs.Files))
			for i, want := range fs.Files {
				for _, link := range want.Links {
					assert.Equal(t, link.Expected, got[i].RewriteHref(link.Href))
				}
			}
		})
	}
}
