package site

import (
	"sync"

	"git.home.luguber.info/inful/hrefrewrite/internal/config"
	"git.home.luguber.info/inful/hrefrewrite/internal/foundation/errors"
	"git.home.luguber.info/inful/hrefrewrite/internal/logfields"
	"git.home.luguber.info/inful/hrefrewrite/internal/rewrite"
	"git.home.luguber.info/inful/hrefrewrite/internal/vfile"
)

// IndexOutput names the output claims in collision metrics.
const IndexOutput = "output"

// run is the publishing state of one build or watch session.
type run struct {
	tally  *linkTally
	report *Report

	mu      sync.Mutex
	outputs map[string]string // output virtual path -> origin path that claimed it
}

func newRun(mode rewrite.Mode) *run {
	return &run{
		tally:   newLinkTally(),
		report:  &Report{Mode: mode},
		outputs: make(map[string]string),
	}
}

// claim records origin as the owner of the output at virtualPath. It reports false
// when another origin already owns it.
func (r *run) claim(virtualPath, origin string) (owner string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, exists := r.outputs[virtualPath]; exists && prev != origin {
		return prev, false
	}
	r.outputs[virtualPath] = origin
	return origin, true
}

func (r *run) snapshot() map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]string, len(r.outputs))
	for k, v := range r.outputs {
		out[k] = v
	}
	return out
}

// owns reports whether origin holds the claim on virtualPath.
func (r *run) owns(virtualPath, origin string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.outputs[virtualPath] == origin
}

// release drops the claim of origin on virtualPath. It reports false when another
// origin owns the output.
func (r *run) release(virtualPath, origin string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.outputs[virtualPath] != origin {
		return false
	}
	delete(r.outputs, virtualPath)
	return true
}

// publish renders f and writes it to the output directory. Two origins finalized to the
// same output are handled by the configured collision policy.
func (s *Site) publish(f *vfile.File, r *run) error {
	virtual := f.VirtualPath()
	if owner, ok := r.claim(virtual, f.Origin()); !ok {
		s.recorder.IncIndexCollision(IndexOutput)
		r.mu.Lock()
		r.report.Collisions++
		r.mu.Unlock()
		if s.cfg.Collisions == config.CollisionError {
			return errors.PipelineError("two files share one output path").
				WithContext("output", virtual).
				WithContext("kept", owner).
				WithContext("rejected", f.Origin()).
				Build()
		}
		s.logger.Warn("Output path already written; keeping first file",
			logfields.Target(virtual), logfields.File(relOrigin(f)), "kept", owner)
		return nil
	}

	rendered, err := s.renderer.Render(r.tally.wrap(f))
	if err != nil {
		return err
	}
	target, err := s.writer.Write(rendered)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.report.Files++
	if f.Path != f.Origin() {
		r.report.Renamed++
	}
	r.mu.Unlock()
	s.logger.Debug("Wrote file", logfields.File(relOrigin(f)), logfields.Target(target))
	return nil
}
