package commands

import (
	"context"
	"fmt"
	"sort"
	"time"

	"git.home.luguber.info/inful/hrefrewrite/internal/config"
	"git.home.luguber.info/inful/hrefrewrite/internal/rewrite"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Incremental bool `short:"i" help:"Release each file as soon as it is indexed instead of after the whole tree"`
	Clean       bool `help:"Remove the output directory before writing"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if b.Incremental {
		cfg.Mode = config.ModeIncremental
	}
	if b.Clean {
		cfg.Output.Clean = true
	}
	s, err := newSite(g, cfg, nil)
	if err != nil {
		return err
	}

	report, err := s.Build(context.Background())
	if err != nil {
		return err
	}

	w := g.out()
	_, _ = fmt.Fprintf(w, "Wrote %d files to %s (%d renamed, mode %s) in %s\n",
		report.Files, cfg.Output.Directory, report.Renamed, report.Mode, report.Duration.Round(time.Millisecond))
	if report.Collisions > 0 {
		_, _ = fmt.Fprintf(w, "Skipped %d files whose output path was already taken\n", report.Collisions)
	}
	kinds := make([]string, 0, len(report.Links))
	for k := range report.Links {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		_, _ = fmt.Fprintf(w, "  %-10s %d\n", k, report.Links[rewrite.Kind(k)])
	}
	return nil
}
