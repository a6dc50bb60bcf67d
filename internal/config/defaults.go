package config

import (
	"fmt"
	"time"
)

// DefaultDebounce is the watch debounce used when none is configured.
const DefaultDebounce = 300 * time.Millisecond

// DefaultApplier applies defaults for one configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// CompositeDefaultApplier runs every domain applier in order.
type CompositeDefaultApplier struct {
	appliers []DefaultApplier
}

// NewDefaultApplier returns the applier for all configuration domains.
func NewDefaultApplier() *CompositeDefaultApplier {
	return &CompositeDefaultApplier{
		appliers: []DefaultApplier{
			&PathsDefaultApplier{},
			&PipelineDefaultApplier{},
			&DocumentsDefaultApplier{},
			&WatchDefaultApplier{},
		},
	}
}

// ApplyDefaults applies defaults for all configuration domains.
func (c *CompositeDefaultApplier) ApplyDefaults(cfg *Config) error {
	for _, applier := range c.appliers {
		if err := applier.ApplyDefaults(cfg); err != nil {
			return fmt.Errorf("applying defaults for %s: %w", applier.Domain(), err)
		}
	}
	return nil
}

// PathsDefaultApplier defaults the source and output directories.
type PathsDefaultApplier struct{}

func (PathsDefaultApplier) Domain() string { return "paths" }

func (PathsDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Source == "" {
		cfg.Source = "."
	}
	if cfg.Output.Directory == "" {
		cfg.Output.Directory = "./site"
	}
	return nil
}

// PipelineDefaultApplier defaults the pipeline mode and collision policy.
type PipelineDefaultApplier struct{}

func (PipelineDefaultApplier) Domain() string { return "pipeline" }

func (PipelineDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Mode == "" {
		cfg.Mode = ModeBatch
	}
	if cfg.Collisions == "" {
		cfg.Collisions = CollisionFirstWins
	}
	return nil
}

// DocumentsDefaultApplier defaults the document extensions and index names.
type DocumentsDefaultApplier struct{}

func (DocumentsDefaultApplier) Domain() string { return "documents" }

func (DocumentsDefaultApplier) ApplyDefaults(cfg *Config) error {
	if len(cfg.Documents.Extensions) == 0 {
		cfg.Documents.Extensions = []string{"html", "htm", "md", "markdown", "asciidoc", "adoc"}
	}
	if len(cfg.Documents.IndexNames) == 0 {
		cfg.Documents.IndexNames = []string{"README", "index"}
	}
	return nil
}

// WatchDefaultApplier defaults the watch debounce.
type WatchDefaultApplier struct{}

func (WatchDefaultApplier) Domain() string { return "watch" }

func (WatchDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Watch.Debounce == "" {
		cfg.Watch.Debounce = DefaultDebounce.String()
	}
	return nil
}
