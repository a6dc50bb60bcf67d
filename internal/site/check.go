package site

import (
	"context"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/hrefrewrite/internal/logfields"
	"git.home.luguber.info/inful/hrefrewrite/internal/rewrite"
)

// Issue is a link reported by Check.
type Issue struct {
	Fallback
	// Missing is true when nothing in the source tree or the output lives at Target.
	Missing bool
}

// Check runs the pipeline in batch mode without writing anything. It returns every
// link that fell back to its unresolved path, and every index-absorbed link whose
// target does not exist, sorted by file and href.
func (s *Site) Check(ctx context.Context) ([]Issue, error) {
	files, err := s.disc.Discover(ctx)
	if err != nil {
		return nil, err
	}
	out, err := s.pipeline(rewrite.ModeBatch).Run(ctx, files)
	if err != nil {
		return nil, err
	}

	known := make(map[string]bool, 2*len(out))
	for _, f := range files {
		known[f.VirtualPath()] = true
	}
	for _, f := range out {
		known[f.VirtualPath()] = true
	}

	tally := newLinkTally()
	for _, f := range out {
		if _, err := s.renderer.Render(tally.wrap(f)); err != nil {
			return nil, err
		}
	}

	var issues []Issue
	for _, fb := range tally.fallbacks {
		missing := !exists(known, fb.Target)
		if fb.Kind == rewrite.KindIndex && !missing {
			continue
		}
		issues = append(issues, Issue{Fallback: fb, Missing: missing})
	}
	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].File != issues[j].File {
			return issues[i].File < issues[j].File
		}
		return issues[i].Href < issues[j].Href
	})

	s.logger.Info("Check complete", logfields.Count(len(issues)))
	return issues, nil
}

// exists reports whether p is a known file or a directory containing one.
func exists(known map[string]bool, p string) bool {
	p = path.Clean(p)
	if known[p] {
		return true
	}
	prefix := strings.TrimSuffix(p, "/") + "/"
	for k := range known {
		if strings.HasPrefix(k, prefix) {
			return true
		}
	}
	return false
}

// Resolve indexes the source tree in batch mode and resolves href as if it appeared
// in the file at from, a path relative to the source root.
func (s *Site) Resolve(ctx context.Context, from, href string) (rewrite.Resolution, error) {
	files, err := s.disc.Discover(ctx)
	if err != nil {
		return rewrite.Resolution{}, err
	}
	p := s.pipeline(rewrite.ModeBatch)
	if _, err := p.Run(ctx, files); err != nil {
		return rewrite.Resolution{}, err
	}
	return p.ResolverFor(path.Join("/", filepath.ToSlash(from))).Resolve(href), nil
}
