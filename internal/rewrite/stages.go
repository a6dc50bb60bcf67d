package rewrite

import (
	"log/slog"
	"path"
	"path/filepath"

	ferrors "git.home.luguber.info/inful/hrefrewrite/internal/foundation/errors"
	"git.home.luguber.info/inful/hrefrewrite/internal/index"
	"git.home.luguber.info/inful/hrefrewrite/internal/logfields"
	"git.home.luguber.info/inful/hrefrewrite/internal/vfile"
)

// Stage names used in logs and metrics.
const (
	StageRebase        = "rebase"
	StageFilepathIndex = "filepath-index"
	StageIndexFile     = "index-file-index"
	StageFinalize      = "finalize"
)

// Index names.
const (
	IndexRewrittenFilepath = "rewrittenFilepath"
	IndexRewrittenIndex    = "rewrittenIndex"
)

// Rebase clones f onto the virtual root: Base becomes "/" and Path becomes "/"
// joined with the path relative to the old base.
func Rebase(f *vfile.File) *vfile.File {
	rebased := f.Clone()
	rebased.Base = "/"
	rebased.SetPath(f.VirtualPath())
	return rebased
}

// indexFilepath records the rename Transform picks for f, if any.
func (p *Pipeline) indexFilepath(f *vfile.File) error {
	target, ok := p.opts.transform(f)
	if !ok || target == "" {
		return nil
	}
	p.logger.Debug("Indexed rename", logfields.Path(f.Path), logfields.Target(target))
	return p.emit(p.paths, f.Path, target)
}

// indexIndexFile records dir(f) -> dir(target) when f is an index document. It must
// run after indexFilepath has seen f.
func (p *Pipeline) indexIndexFile(f *vfile.File) error {
	rel := f.Relative()
	target, ok := p.paths.First(path.Join("/", rel))
	if !ok || !p.opts.isIndex(f, target) {
		return nil
	}
	dir := path.Join("/", path.Dir(rel))
	p.logger.Debug("Indexed index document", logfields.Path(dir), logfields.Target(path.Dir(target)))
	return p.emit(p.dirs, dir, path.Dir(target))
}

func (p *Pipeline) emit(ix *index.Index[string], key, value string) error {
	prev, collided := ix.Emit(key, value)
	if !collided {
		return nil
	}

	p.opts.recorder.IncIndexCollision(ix.Name())
	if p.opts.collisions == CollisionError {
		return ferrors.PipelineError("conflicting rewrite for the same key").
			WithContext("index", ix.Name()).
			WithContext("key", key).
			WithContext("kept", prev).
			WithContext("rejected", value).
			Build()
	}
	p.logger.Warn("Conflicting rewrite; keeping first value",
		"index", ix.Name(), logfields.Path(key), slog.String("kept", prev), logfields.Target(value))
	return nil
}

// finalize attaches a Resolver to a clone of the rebased file and assigns its final
// path. The returned file is re-expressed under origBase.
func (p *Pipeline) finalize(rebased *vfile.File, origBase string) *vfile.File {
	res := NewResolver(rebased.Path, p.paths, p.dirs, p.opts.recorder)

	final, ok := p.paths.First(rebased.Path)
	if ok {
		final = path.Join("/", final)
	} else {
		final, _ = res.lookup(rebased.Path)
	}

	out := rebased.Clone()
	out.Rewriter = res
	out.Base = origBase
	out.SetPath(filepath.Join(origBase, filepath.FromSlash(final)))
	return out
}
