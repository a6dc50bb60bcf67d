package commands

import (
	"context"
	"fmt"
)

// ResolveCmd implements the 'resolve' command.
type ResolveCmd struct {
	From string `arg:"" help:"Referencing file, relative to the source directory"`
	Href string `arg:"" help:"Href as written in that file"`
}

func (r *ResolveCmd) Run(g *Global, root *CLI) error {
	s, _, err := loadSite(g, root)
	if err != nil {
		return err
	}
	res, err := s.Resolve(context.Background(), r.From, r.Href)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(g.out(), "%s\t%s\n", res.Href, res.Kind)
	return nil
}
