package site

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/hrefrewrite/internal/config"
	"git.home.luguber.info/inful/hrefrewrite/internal/logfields"
	"git.home.luguber.info/inful/hrefrewrite/internal/metrics"
	"git.home.luguber.info/inful/hrefrewrite/internal/rewrite"
	"git.home.luguber.info/inful/hrefrewrite/internal/vfile"
)

// Report summarizes a build.
type Report struct {
	Mode       rewrite.Mode
	Files      int
	Renamed    int
	Collisions int // files skipped because an earlier file owns their output path
	Links      map[rewrite.Kind]int
	Duration   time.Duration
}

// Build discovers the source tree, rewrites and renders every file and writes the
// results to the output directory. The configured mode decides whether files are
// released after the whole tree is indexed (batch) or one at a time (incremental).
func (s *Site) Build(ctx context.Context) (*Report, error) {
	start := time.Now()
	mode := rewrite.ModeBatch
	if s.cfg.Mode == config.ModeIncremental {
		mode = rewrite.ModeIncremental
	}
	logger := s.logger.With(logfields.Mode(string(mode)))

	report, err := s.build(ctx, mode)
	s.recorder.ObserveBuildDuration(time.Since(start))
	switch {
	case err == nil:
		s.recorder.IncBuildOutcome(metrics.BuildOutcomeSuccess)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		s.recorder.IncBuildOutcome(metrics.BuildOutcomeCanceled)
		return nil, err
	default:
		s.recorder.IncBuildOutcome(metrics.BuildOutcomeFailed)
		return nil, err
	}

	report.Duration = time.Since(start)
	logger.Info("Build complete",
		logfields.Count(report.Files),
		"renamed", report.Renamed,
		logfields.DurationMS(float64(report.Duration.Milliseconds())))
	return report, nil
}

func (s *Site) build(ctx context.Context, mode rewrite.Mode) (*Report, error) {
	files, err := s.disc.Discover(ctx)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		s.logger.Warn("No files found in source directory", logfields.Path(s.disc.Root()))
	}
	if s.cfg.Output.Clean {
		if err := s.writer.Clean(); err != nil {
			return nil, err
		}
	}

	r := newRun(mode)
	p := s.pipeline(mode)

	if mode == rewrite.ModeBatch {
		out, err := p.Run(ctx, files)
		if err != nil {
			return nil, err
		}
		for _, f := range out {
			if err := s.publish(f, r); err != nil {
				return nil, err
			}
		}
	} else if err := s.stream(ctx, p, files, r); err != nil {
		return nil, err
	}

	r.report.Links = r.tally.counts()
	return r.report, nil
}

// stream feeds files through an incremental pipeline and publishes each one as soon
// as it is released.
func (s *Site) stream(ctx context.Context, p *rewrite.Pipeline, files []*vfile.File, r *run) error {
	in := make(chan *vfile.File)
	out := make(chan *vfile.File)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return p.Process(gctx, in, out)
	})
	g.Go(func() error {
		defer close(in)
		for _, f := range files {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case in <- f:
			}
		}
		return nil
	})
	g.Go(func() error {
		for f := range out {
			if err := s.publish(f, r); err != nil {
				return err
			}
		}
		return nil
	})
	return g.Wait()
}
