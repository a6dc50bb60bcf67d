package commands

import (
	"context"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/hrefrewrite/internal/metrics"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	MetricsListen string `name:"metrics-listen" help:"Expose Prometheus metrics on this address (overrides metrics.listen)"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	sigctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return w.run(sigctx, g, root)
}

func (w *WatchCmd) run(ctx context.Context, g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	listen := cfg.Metrics.Listen
	if w.MetricsListen != "" {
		listen = w.MetricsListen
	}

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	reg := metrics.NewRegistry()
	if listen != "" {
		recorder = metrics.NewPrometheusRecorder(reg)
	}

	s, err := newSite(g, cfg, recorder)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	grp, gctx := errgroup.WithContext(ctx)
	if listen != "" {
		grp.Go(func() error { return metrics.Serve(gctx, listen, reg) })
	}
	grp.Go(func() error {
		// The metrics server stops with the watch.
		defer cancel()
		return s.Watch(gctx)
	})
	return grp.Wait()
}
