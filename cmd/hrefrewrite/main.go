package main

import (
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/hrefrewrite/cmd/hrefrewrite/commands"
	"git.home.luguber.info/inful/hrefrewrite/internal/foundation/errors"
	"git.home.luguber.info/inful/hrefrewrite/internal/version"
)

func main() {
	cli := &commands.CLI{}
	global := &commands.Global{Out: os.Stdout}
	parser := kong.Parse(cli,
		kong.Name("hrefrewrite"),
		kong.Description("Rewrite relative links in a document tree after its files are renamed."),
		kong.Vars{"version": version.String()},
		kong.Bind(global),
		kong.UsageOnError(),
	)

	if err := parser.Run(cli); err != nil {
		errors.NewCLIErrorAdapter(cli.Verbose, global.Logger).HandleError(err)
	}
}
