package rewrite

import (
	"net/url"
	"path"
	"strings"

	"git.home.luguber.info/inful/hrefrewrite/internal/index"
	"git.home.luguber.info/inful/hrefrewrite/internal/metrics"
)

// Kind classifies how an href was resolved.
type Kind string

const (
	// KindExternal hrefs carry a host or scheme, or only a fragment/query; they are
	// returned unchanged.
	KindExternal Kind = "external"
	// KindExact hrefs name a file with a recorded rename.
	KindExact Kind = "exact"
	// KindIndex hrefs were relocated because an ancestor's index document moved.
	KindIndex Kind = "index"
	// KindUnresolved hrefs matched nothing and come back resolved but not rewritten.
	KindUnresolved Kind = "unresolved"
)

// Resolution is the outcome of resolving one href.
type Resolution struct {
	// Href is the rewritten href.
	Href string
	Kind Kind
	// Referenced is the virtual path the href pointed at before rewriting.
	Referenced string
}

// Resolver rewrites hrefs found in one file. It holds the referencing file's virtual
// path and references to the pipeline's two mappings, which it reads at call time.
type Resolver struct {
	filePath string
	paths    *index.Index[string]
	dirs     *index.Index[string]
	recorder metrics.Recorder
}

// NewResolver creates a resolver for the file at virtual path filePath.
func NewResolver(filePath string, paths, dirs *index.Index[string], recorder metrics.Recorder) *Resolver {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Resolver{filePath: filePath, paths: paths, dirs: dirs, recorder: recorder}
}

// FilePath returns the referencing file's virtual path.
func (r *Resolver) FilePath() string { return r.filePath }

// RewriteHref returns href pointing at the referenced file's final location.
func (r *Resolver) RewriteHref(href string) string {
	return r.Resolve(href).Href
}

// Resolve rewrites href and reports how it was matched. It never fails: anything it
// cannot match comes back as the resolved, unrewritten path.
func (r *Resolver) Resolve(href string) Resolution {
	res := r.resolve(href)
	r.recorder.IncHrefResolution(string(res.Kind))
	return res
}

func (r *Resolver) resolve(href string) Resolution {
	if isExternal(href) {
		return Resolution{Href: href, Kind: KindExternal}
	}

	p, suffix := splitSuffix(href)
	if p == "" {
		// Same-document reference such as "#usage".
		return Resolution{Href: href, Kind: KindExternal}
	}

	referenced := r.referencedPath(p)
	target, kind := r.lookup(referenced)
	return Resolution{Href: target + suffix, Kind: kind, Referenced: referenced}
}

// referencedPath resolves p against the referencing file's directory.
func (r *Resolver) referencedPath(p string) string {
	if strings.HasPrefix(p, "/") {
		return path.Clean(p)
	}
	return path.Join(path.Dir(r.filePath), p)
}

// lookup tries the exact mapping first, then walks the referenced path's ancestors
// through the directory mapping, root included.
func (r *Resolver) lookup(referenced string) (string, Kind) {
	if target, ok := r.paths.First(referenced); ok {
		return path.Join("/", target), KindExact
	}

	dir := path.Dir(referenced)
	for range strings.Count(referenced, "/") {
		if moved, ok := r.dirs.First(dir); ok {
			return path.Join(moved, path.Base(referenced)), KindIndex
		}
		dir = path.Dir(dir)
	}
	return referenced, KindUnresolved
}

// isExternal reports whether href is an absolute URL. Unparseable hrefs are treated
// as relative paths.
func isExternal(href string) bool {
	u, err := url.Parse(href)
	if err != nil {
		return false
	}
	return u.Host != "" || u.Scheme != ""
}

// splitSuffix separates a trailing ?query or #fragment so only the path is resolved.
func splitSuffix(href string) (string, string) {
	if i := strings.IndexAny(href, "?#"); i >= 0 {
		return href[:i], href[i:]
	}
	return href, ""
}
