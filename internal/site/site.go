// Package site drives the rewrite pipeline over a source tree: discovery, rewriting,
// content rendering and output, in batch (Build, Check) or incremental (Watch) mode.
package site

import (
	"log/slog"

	"git.home.luguber.info/inful/hrefrewrite/internal/config"
	"git.home.luguber.info/inful/hrefrewrite/internal/content"
	"git.home.luguber.info/inful/hrefrewrite/internal/discovery"
	"git.home.luguber.info/inful/hrefrewrite/internal/metrics"
	"git.home.luguber.info/inful/hrefrewrite/internal/rewrite"
)

// Site holds everything needed to run the pipeline for one configuration.
type Site struct {
	cfg      *config.Config
	disc     *discovery.Discovery
	renderer *content.Renderer
	writer   *Writer
	recorder metrics.Recorder
	logger   *slog.Logger
}

// Option configures a Site.
type Option func(*Site)

// WithRecorder sets the metrics recorder passed to the pipeline.
func WithRecorder(r metrics.Recorder) Option {
	return func(s *Site) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Site) {
		if l != nil {
			s.logger = l
		}
	}
}

// New prepares a site from a loaded configuration.
func New(cfg *config.Config, opts ...Option) (*Site, error) {
	disc, err := discovery.New(cfg.Source, cfg.Ignore)
	if err != nil {
		return nil, err
	}
	disc.Exclude(cfg.Output.Directory)

	var renderer *content.Renderer
	if cfg.Render.Layout != "" {
		layout, err := content.LoadLayout(cfg.Render.Layout)
		if err != nil {
			return nil, err
		}
		renderer = content.NewRenderer(cfg.Render.MarkdownEnabled(), layout)
	} else {
		renderer = content.NewRenderer(cfg.Render.MarkdownEnabled(), nil)
	}

	s := &Site{
		cfg:      cfg,
		disc:     disc,
		renderer: renderer,
		writer:   NewWriter(cfg.Output.Directory),
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Site) pipeline(mode rewrite.Mode) *rewrite.Pipeline {
	return rewrite.New(
		rewrite.WithRules(rewrite.NewRules(s.cfg.Documents.Extensions, s.cfg.Documents.IndexNames)),
		rewrite.WithMode(mode),
		rewrite.WithCollisionPolicy(rewrite.CollisionPolicy(s.cfg.Collisions)),
		rewrite.WithRecorder(s.recorder),
		rewrite.WithLogger(s.logger),
	)
}
