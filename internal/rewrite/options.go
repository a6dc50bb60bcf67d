package rewrite

import (
	"log/slog"

	"git.home.luguber.info/inful/hrefrewrite/internal/metrics"
)

// Mode selects when files leave the pipeline.
type Mode string

const (
	// ModeBatch withholds output until the input ends.
	ModeBatch Mode = "batch"
	// ModeIncremental emits each file as soon as it is indexed.
	ModeIncremental Mode = "incremental"
)

// CollisionPolicy decides what happens when a mapping key receives a second,
// different value.
type CollisionPolicy string

const (
	// CollisionFirstWins keeps the first value and logs a warning.
	CollisionFirstWins CollisionPolicy = "first-wins"
	// CollisionError stops the run with a pipeline error.
	CollisionError CollisionPolicy = "error"
)

type options struct {
	transform  TransformFunc
	isIndex    IsIndexFunc
	mode       Mode
	collisions CollisionPolicy
	recorder   metrics.Recorder
	logger     *slog.Logger
}

// Option configures a Pipeline.
type Option func(*options)

func defaultOptions() options {
	return options{
		transform:  DefaultTransform,
		isIndex:    DefaultIsIndex,
		mode:       ModeIncremental,
		collisions: CollisionFirstWins,
		recorder:   metrics.NoopRecorder{},
		logger:     slog.Default(),
	}
}

// WithTransform replaces the rename policy. A nil fn keeps the default.
func WithTransform(fn TransformFunc) Option {
	return func(o *options) {
		if fn != nil {
			o.transform = fn
		}
	}
}

// WithIsIndex replaces the index-document predicate. A nil fn keeps the default.
func WithIsIndex(fn IsIndexFunc) Option {
	return func(o *options) {
		if fn != nil {
			o.isIndex = fn
		}
	}
}

// WithRules uses r for both the rename policy and the index predicate.
func WithRules(r Rules) Option {
	return func(o *options) {
		o.transform = r.Transform
		o.isIndex = r.IsIndex
	}
}

// WithBatch selects batch mode when true and incremental mode when false.
func WithBatch(batch bool) Option {
	return func(o *options) {
		if batch {
			o.mode = ModeBatch
		} else {
			o.mode = ModeIncremental
		}
	}
}

// WithMode selects the mode by name; unknown names keep the current mode.
func WithMode(m Mode) Option {
	return func(o *options) {
		switch m {
		case ModeBatch, ModeIncremental:
			o.mode = m
		}
	}
}

// WithCollisionPolicy sets the collision policy; unknown values keep first-wins.
func WithCollisionPolicy(p CollisionPolicy) Option {
	return func(o *options) {
		if p == CollisionError {
			o.collisions = CollisionError
		} else {
			o.collisions = CollisionFirstWins
		}
	}
}

// WithRecorder injects a metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(o *options) {
		if r != nil {
			o.recorder = r
		}
	}
}

// WithLogger sets the logger used for stage diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
