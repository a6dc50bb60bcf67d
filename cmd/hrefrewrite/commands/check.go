package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/hrefrewrite/internal/foundation/errors"
)

// CheckCmd implements the 'check' command.
type CheckCmd struct {
	Strict bool `help:"Fail on every reported link, not only those whose target is missing"`
}

func (c *CheckCmd) Run(g *Global, root *CLI) error {
	s, _, err := loadSite(g, root)
	if err != nil {
		return err
	}
	issues, err := s.Check(context.Background())
	if err != nil {
		return err
	}

	w := g.out()
	failing := 0
	for _, is := range issues {
		state := "exists"
		if is.Missing {
			state = "missing"
		}
		if is.Missing || c.Strict {
			failing++
		}
		_, _ = fmt.Fprintf(w, "%s: %s -> %s (%s, %s)\n", is.File, is.Href, is.Target, is.Kind, state)
	}
	if failing > 0 {
		return errors.ValidationError("links point at nothing known").
			WithContext("count", failing).
			Build()
	}
	_, _ = fmt.Fprintf(w, "%d links reported, none missing\n", len(issues))
	return nil
}
