package site

import (
	"strings"
	"sync"

	"git.home.luguber.info/inful/hrefrewrite/internal/rewrite"
	"git.home.luguber.info/inful/hrefrewrite/internal/vfile"
)

// Fallback is a link that was not matched exactly: it was absorbed by an index
// directory or fell back to its unresolved path.
type Fallback struct {
	File   string       // source path relative to the source root
	Href   string       // href as written
	Target string       // rewritten virtual path without query or fragment
	Kind   rewrite.Kind // KindIndex or KindUnresolved
}

// linkTally counts resolutions by kind while content is rendered.
type linkTally struct {
	mu        sync.Mutex
	kinds     map[rewrite.Kind]int
	fallbacks []Fallback
}

func newLinkTally() *linkTally {
	return &linkTally{kinds: make(map[rewrite.Kind]int)}
}

// wrap returns a clone of f whose rewriter records every resolution in t.
func (t *linkTally) wrap(f *vfile.File) *vfile.File {
	res, ok := f.Rewriter.(*rewrite.Resolver)
	if !ok {
		return f
	}
	c := f.Clone()
	c.Rewriter = &tallyingRewriter{tally: t, resolver: res, file: relOrigin(f)}
	return c
}

func (t *linkTally) counts() map[rewrite.Kind]int {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[rewrite.Kind]int, len(t.kinds))
	for k, v := range t.kinds {
		out[k] = v
	}
	return out
}

type tallyingRewriter struct {
	tally    *linkTally
	resolver *rewrite.Resolver
	file     string
}

func (r *tallyingRewriter) RewriteHref(href string) string {
	res := r.resolver.Resolve(href)

	r.tally.mu.Lock()
	defer r.tally.mu.Unlock()
	r.tally.kinds[res.Kind]++
	if res.Kind == rewrite.KindIndex || res.Kind == rewrite.KindUnresolved {
		target := res.Href
		if i := strings.IndexAny(target, "?#"); i >= 0 {
			target = target[:i]
		}
		r.tally.fallbacks = append(r.tally.fallbacks, Fallback{File: r.file, Href: href, Target: target, Kind: res.Kind})
	}
	return res.Href
}

// relOrigin returns the slash-separated origin path of f relative to its base.
func relOrigin(f *vfile.File) string {
	return vfile.New(f.Base, f.Origin(), nil).Relative()
}
