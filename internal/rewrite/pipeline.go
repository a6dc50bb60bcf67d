package rewrite

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/hrefrewrite/internal/index"
	"git.home.luguber.info/inful/hrefrewrite/internal/logfields"
	"git.home.luguber.info/inful/hrefrewrite/internal/metrics"
	"git.home.luguber.info/inful/hrefrewrite/internal/vfile"
)

// Pipeline owns the two mappings of one run and drives files through the stages.
// A Pipeline is not reusable across runs; create a new one per run.
type Pipeline struct {
	opts   options
	logger *slog.Logger
	paths  *index.Index[string]
	dirs   *index.Index[string]
}

// New creates a pipeline with empty mappings. Without options it runs in incremental
// mode with DefaultTransform, DefaultIsIndex and first-wins collisions.
func New(opts ...Option) *Pipeline {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Pipeline{
		opts:   o,
		logger: o.logger.With(logfields.Mode(string(o.mode))),
		paths:  index.New[string](IndexRewrittenFilepath),
		dirs:   index.New[string](IndexRewrittenIndex),
	}
}

// Mode returns the configured mode.
func (p *Pipeline) Mode() Mode { return p.opts.mode }

// pending is a rebased file waiting for finalize, with the base it arrived with.
type pending struct {
	rebased  *vfile.File
	origBase string
}

// Process reads files from in until it is closed, indexes each one and writes the
// finalized clones to out. In batch mode nothing is written before in is closed.
// Process closes out when it returns. It returns ctx.Err() on cancellation and a
// pipeline error when the collision policy is CollisionError and a collision occurs.
func (p *Pipeline) Process(ctx context.Context, in <-chan *vfile.File, out chan<- *vfile.File) error {
	defer close(out)

	var held []pending
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case f, ok := <-in:
			if !ok {
				for _, h := range held {
					if err := p.send(ctx, out, h); err != nil {
						return err
					}
				}
				return nil
			}
			rebased, err := p.index(f)
			if err != nil {
				return err
			}
			h := pending{rebased: rebased, origBase: f.Base}
			if p.opts.mode == ModeBatch {
				held = append(held, h)
				continue
			}
			if err := p.send(ctx, out, h); err != nil {
				return err
			}
		}
	}
}

// Run processes files in batch mode regardless of the configured mode and returns the
// finalized clones in input order.
func (p *Pipeline) Run(ctx context.Context, files []*vfile.File) ([]*vfile.File, error) {
	held := make([]pending, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rebased, err := p.index(f)
		if err != nil {
			return nil, err
		}
		held = append(held, pending{rebased: rebased, origBase: f.Base})
	}

	out := make([]*vfile.File, 0, len(held))
	for _, h := range held {
		out = append(out, p.finalizeTimed(h, ModeBatch))
	}
	return out, nil
}

// index runs rebase and both index stages for one file.
func (p *Pipeline) index(f *vfile.File) (*vfile.File, error) {
	start := time.Now()
	rebased := Rebase(f)
	p.opts.recorder.ObserveStageDuration(StageRebase, time.Since(start))

	start = time.Now()
	if err := p.indexFilepath(rebased); err != nil {
		p.opts.recorder.IncStageResult(StageFilepathIndex, metrics.ResultFatal)
		return nil, err
	}
	p.opts.recorder.ObserveStageDuration(StageFilepathIndex, time.Since(start))
	p.opts.recorder.IncStageResult(StageFilepathIndex, metrics.ResultSuccess)

	start = time.Now()
	if err := p.indexIndexFile(rebased); err != nil {
		p.opts.recorder.IncStageResult(StageIndexFile, metrics.ResultFatal)
		return nil, err
	}
	p.opts.recorder.ObserveStageDuration(StageIndexFile, time.Since(start))
	p.opts.recorder.IncStageResult(StageIndexFile, metrics.ResultSuccess)
	return rebased, nil
}

func (p *Pipeline) finalizeTimed(h pending, mode Mode) *vfile.File {
	start := time.Now()
	out := p.finalize(h.rebased, h.origBase)
	p.opts.recorder.ObserveStageDuration(StageFinalize, time.Since(start))
	p.opts.recorder.IncFilesProcessed(string(mode))
	p.logger.Debug("File finalized", logfields.File(h.rebased.Path), logfields.Target(out.VirtualPath()))
	return out
}

func (p *Pipeline) send(ctx context.Context, out chan<- *vfile.File, h pending) error {
	f := p.finalizeTimed(h, p.opts.mode)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case out <- f:
		return nil
	}
}

// Mappings is a read-only snapshot of both mappings in first-emission order.
type Mappings struct {
	Paths []index.Entry[string]
	Dirs  []index.Entry[string]
}

// Mappings returns a snapshot of the mappings as they are now.
func (p *Pipeline) Mappings() Mappings {
	return Mappings{Paths: p.paths.Entries(), Dirs: p.dirs.Entries()}
}

// ResolverFor returns a resolver for an arbitrary virtual path, for callers that want
// to resolve an href outside the stream.
func (p *Pipeline) ResolverFor(virtualPath string) *Resolver {
	return NewResolver(virtualPath, p.paths, p.dirs, p.opts.recorder)
}
