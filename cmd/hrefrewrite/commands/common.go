// Package commands implements the hrefrewrite subcommands.
package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"

	"git.home.luguber.info/inful/hrefrewrite/internal/config"
	"git.home.luguber.info/inful/hrefrewrite/internal/logfields"
	"git.home.luguber.info/inful/hrefrewrite/internal/metrics"
	"git.home.luguber.info/inful/hrefrewrite/internal/site"
)

// Global is shared state passed to every subcommand.
type Global struct {
	Logger *slog.Logger
	RunID  string
	// Out receives user-facing command output.
	Out io.Writer
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"hrefrewrite.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build    BuildCmd    `cmd:"" help:"Rewrite and write the whole source tree once"`
	Watch    WatchCmd    `cmd:"" help:"Rebuild incrementally as source files change"`
	Check    CheckCmd    `cmd:"" help:"Report links that point at nothing known"`
	Resolve  ResolveCmd  `cmd:"" help:"Resolve one href as seen from a source file"`
	Links    LinksCmd    `cmd:"" help:"List the links of one document with their resolutions"`
	Mappings MappingsCmd `cmd:"" help:"Print the path and directory mappings of the source tree"`
	Init     InitCmd     `cmd:"" help:"Write an example configuration file"`
}

// AfterApply runs after flag parsing; sets up logging once per run.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply(g *Global) error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	g.RunID = uuid.NewString()
	g.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})).
		With(logfields.RunID(g.RunID))
	slog.SetDefault(g.Logger)
	return nil
}

func (g *Global) logger() *slog.Logger {
	if g.Logger == nil {
		return slog.Default()
	}
	return g.Logger
}

func (g *Global) out() io.Writer {
	if g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

func loadConfig(root *CLI) (*config.Config, error) {
	return config.Load(root.Config)
}

func newSite(g *Global, cfg *config.Config, recorder metrics.Recorder) (*site.Site, error) {
	return site.New(cfg, site.WithLogger(g.logger()), site.WithRecorder(recorder))
}

// loadSite loads the configuration at root.Config and prepares a site for it.
func loadSite(g *Global, root *CLI) (*site.Site, *config.Config, error) {
	cfg, err := loadConfig(root)
	if err != nil {
		return nil, nil, err
	}
	s, err := newSite(g, cfg, nil)
	if err != nil {
		return nil, nil, err
	}
	return s, cfg, nil
}
