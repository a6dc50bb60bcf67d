package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
)

// LinksCmd implements the 'links' command.
type LinksCmd struct {
	File string `arg:"" help:"Document to inspect, relative to the source directory"`
}

func (l *LinksCmd) Run(g *Global, root *CLI) error {
	s, _, err := loadSite(g, root)
	if err != nil {
		return err
	}
	reports, err := s.Links(context.Background(), l.File)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(g.out(), 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "SOURCE\tHREF\tREWRITTEN\tKIND")
	for _, r := range reports {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Source, r.Href, r.Resolution.Href, r.Kind)
	}
	return tw.Flush()
}

// MappingsCmd implements the 'mappings' command.
type MappingsCmd struct{}

func (MappingsCmd) Run(g *Global, root *CLI) error {
	s, _, err := loadSite(g, root)
	if err != nil {
		return err
	}
	m, err := s.Mappings(context.Background())
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(g.out(), 0, 4, 2, ' ', 0)
	for _, e := range m.Paths {
		_, _ = fmt.Fprintf(tw, "path\t%s\t%s\n", e.Key, e.Value)
	}
	for _, e := range m.Dirs {
		_, _ = fmt.Fprintf(tw, "dir\t%s\t%s\n", e.Key, e.Value)
	}
	return tw.Flush()
}
