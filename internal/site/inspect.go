package site

import (
	"context"
	"path"
	"path/filepath"

	"git.home.luguber.info/inful/hrefrewrite/internal/content"
	"git.home.luguber.info/inful/hrefrewrite/internal/foundation/errors"
	"git.home.luguber.info/inful/hrefrewrite/internal/htmlrewrite"
	"git.home.luguber.info/inful/hrefrewrite/internal/markdown"
	"git.home.luguber.info/inful/hrefrewrite/internal/rewrite"
)

// LinkReport is one link of a document and what it resolves to.
type LinkReport struct {
	Source string // construct the link came from: inline, image, a[href], img[src], ...
	Href   string
	rewrite.Resolution
}

// Links indexes the source tree in batch mode and lists every link of the document
// at from, a path relative to the source root, with its resolution.
func (s *Site) Links(ctx context.Context, from string) ([]LinkReport, error) {
	files, err := s.disc.Discover(ctx)
	if err != nil {
		return nil, err
	}
	p := s.pipeline(rewrite.ModeBatch)
	out, err := p.Run(ctx, files)
	if err != nil {
		return nil, err
	}

	want := path.Join("/", filepath.ToSlash(from))
	for _, f := range out {
		if path.Join("/", relOrigin(f)) != want {
			continue
		}
		res := p.ResolverFor(want)

		var reports []LinkReport
		switch content.KindOf(f) {
		case content.KindMarkdown:
			for _, l := range markdown.ExtractLinks(f.Contents) {
				reports = append(reports, LinkReport{Source: string(l.Kind), Href: l.Destination, Resolution: res.Resolve(l.Destination)})
			}
		case content.KindHTML:
			links, err := htmlrewrite.Links(f.Contents)
			if err != nil {
				return nil, err
			}
			for _, l := range links {
				reports = append(reports, LinkReport{Source: l.Tag + "[" + l.Attribute + "]", Href: l.URL, Resolution: res.Resolve(l.URL)})
			}
		}
		return reports, nil
	}
	return nil, errors.NewError(errors.CategoryNotFound, "file not found in source tree").
		WithContext("file", from).
		Build()
}

// Mappings indexes the source tree in batch mode and returns both mappings.
func (s *Site) Mappings(ctx context.Context) (rewrite.Mappings, error) {
	files, err := s.disc.Discover(ctx)
	if err != nil {
		return rewrite.Mappings{}, err
	}
	p := s.pipeline(rewrite.ModeBatch)
	if _, err := p.Run(ctx, files); err != nil {
		return rewrite.Mappings{}, err
	}
	return p.Mappings(), nil
}
