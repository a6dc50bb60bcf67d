package site

import (
	"context"
	stdErrors "errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/hrefrewrite/internal/content"
	"git.home.luguber.info/inful/hrefrewrite/internal/foundation/errors"
	"git.home.luguber.info/inful/hrefrewrite/internal/logfields"
	"git.home.luguber.info/inful/hrefrewrite/internal/metrics"
	"git.home.luguber.info/inful/hrefrewrite/internal/rewrite"
	"git.home.luguber.info/inful/hrefrewrite/internal/vfile"
)

// Watch runs one never-ending incremental pipeline over the source tree. Every file is
// published as soon as the pipeline releases it; after each batch of changes all
// documents are rendered again so links picked up by later files are current.
// Mappings are append-only for the session, so a deleted file's rename stays known.
// Watch returns nil when ctx is canceled.
func (s *Site) Watch(ctx context.Context) error {
	watcher, err := s.setupFileWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if s.cfg.Output.Clean {
		if err := s.writer.Clean(); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := newWatchSession(s)
	w.start(ctx)

	files, err := s.disc.Discover(ctx)
	if err != nil {
		cancel()
		w.stop()
		return ignoreCanceled(err)
	}
	if err := w.flush(ctx, files, nil); err != nil {
		cancel()
		w.stop()
		return ignoreCanceled(err)
	}
	s.logger.Info("Watching for changes", logfields.Path(s.disc.Root()), logfields.Count(len(files)))

	rebuildReq, trigger := setupRebuildDebouncer(s.cfg.Watch.DebounceDuration())
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		w.rebuildWorker(ctx, rebuildReq)
	}()

	err = s.runWatchLoop(ctx, watcher, w, trigger)
	cancel()
	<-workerDone
	w.stop()
	if err != nil {
		return err
	}
	return ignoreCanceled(w.failure())
}

func ignoreCanceled(err error) error {
	if stdErrors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// watchSession owns the pipeline goroutines and the published files of one Watch.
type watchSession struct {
	site *Site
	in   chan *vfile.File
	out  chan *vfile.File
	wg   sync.WaitGroup

	run *run

	mu        sync.Mutex
	published map[string]*vfile.File // origin path -> finalized file
	changed   map[string]struct{}
	count     int
	err       error

	notify chan struct{}
	failed chan struct{}
}

func newWatchSession(s *Site) *watchSession {
	return &watchSession{
		site:      s,
		run:       newRun(rewrite.ModeIncremental),
		in:        make(chan *vfile.File),
		out:       make(chan *vfile.File),
		published: make(map[string]*vfile.File),
		changed:   make(map[string]struct{}),
		notify:    make(chan struct{}, 1),
		failed:    make(chan struct{}),
	}
}

func (w *watchSession) start(ctx context.Context) {
	p := w.site.pipeline(rewrite.ModeIncremental)

	w.wg.Add(2)
	go func() {
		defer w.wg.Done()
		if err := p.Process(ctx, w.in, w.out); err != nil && ctx.Err() == nil {
			w.fail(err)
		}
	}()
	go func() {
		defer w.wg.Done()
		for f := range w.out {
			if err := w.site.publish(f, w.run); err != nil {
				w.site.logger.Warn("Failed to publish file", logfields.File(relOrigin(f)), logfields.Error(err))
			}
			w.mu.Lock()
			if w.run.owns(f.VirtualPath(), f.Origin()) {
				w.published[f.Origin()] = f
			}
			w.count++
			w.mu.Unlock()
			select {
			case w.notify <- struct{}{}:
			default:
			}
		}
	}()
}

// stop closes the input and waits for the pipeline goroutines. Only call it once the
// rebuild worker has exited.
func (w *watchSession) stop() {
	close(w.in)
	w.wg.Wait()
}

func (w *watchSession) fail(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err == nil {
		w.err = err
		close(w.failed)
	}
}

func (w *watchSession) failure() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// flush removes outputs of deleted paths, feeds files through the pipeline, waits
// until each one is published and renders all documents again.
func (w *watchSession) flush(ctx context.Context, files []*vfile.File, removed []string) error {
	start := time.Now()
	recorder := w.site.recorder

	for _, p := range removed {
		w.remove(p)
	}

	w.mu.Lock()
	target := w.count + len(files)
	w.mu.Unlock()

	for _, f := range files {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.failed:
			recorder.IncBuildOutcome(metrics.BuildOutcomeFailed)
			return w.failure()
		case w.in <- f:
		}
	}
	for {
		w.mu.Lock()
		done := w.count >= target
		w.mu.Unlock()
		if done {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.failed:
			recorder.IncBuildOutcome(metrics.BuildOutcomeFailed)
			return w.failure()
		case <-w.notify:
		}
	}

	tally, err := w.refresh()
	recorder.ObserveBuildDuration(time.Since(start))
	if err != nil {
		recorder.IncBuildOutcome(metrics.BuildOutcomeFailed)
		return err
	}
	recorder.IncBuildOutcome(metrics.BuildOutcomeSuccess)
	w.site.logger.Info("Rebuild complete",
		logfields.Count(len(files)),
		"removed", len(removed),
		"unresolved", tally.counts()[rewrite.KindUnresolved],
		logfields.DurationMS(float64(time.Since(start).Milliseconds())))
	return nil
}

// refresh renders every published document again with the current mappings. Only
// a collision under the error policy stops it.
func (w *watchSession) refresh() (*linkTally, error) {
	w.mu.Lock()
	docs := make([]*vfile.File, 0, len(w.published))
	for _, f := range w.published {
		if content.KindOf(f) != content.KindAsset {
			docs = append(docs, f)
		}
	}
	w.mu.Unlock()
	sort.Slice(docs, func(i, j int) bool { return docs[i].Origin() < docs[j].Origin() })

	r := &run{tally: newLinkTally(), report: &Report{}, outputs: w.run.snapshot()}
	for _, f := range docs {
		if err := w.site.publish(f, r); err != nil {
			if errors.HasCategory(err, errors.CategoryPipeline) {
				return nil, err
			}
			w.site.logger.Warn("Failed to publish file", logfields.File(relOrigin(f)), logfields.Error(err))
		}
	}
	return r.tally, nil
}

// remove deletes the outputs of p and of anything published below it.
func (w *watchSession) remove(p string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	prefix := p + string(filepath.Separator)
	for origin, f := range w.published {
		if origin != p && !strings.HasPrefix(origin, prefix) {
			continue
		}
		delete(w.published, origin)
		if !w.run.release(f.VirtualPath(), origin) {
			continue
		}
		if err := w.site.writer.Remove(f.VirtualPath()); err != nil {
			w.site.logger.Warn("Failed to remove output", logfields.File(relOrigin(f)), logfields.Error(err))
		}
		w.site.logger.Debug("Removed output", logfields.File(relOrigin(f)))
	}
}

func (w *watchSession) markChanged(p string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.changed[p] = struct{}{}
}

func (w *watchSession) takeChanged() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	paths := make([]string, 0, len(w.changed))
	for p := range w.changed {
		paths = append(paths, p)
	}
	w.changed = make(map[string]struct{})
	return paths
}

// rebuildWorker serializes rebuilds until ctx is done.
func (w *watchSession) rebuildWorker(ctx context.Context, rebuildReq <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-rebuildReq:
			w.processRebuild(ctx)
		}
	}
}

func (w *watchSession) processRebuild(ctx context.Context) {
	var files []*vfile.File
	var removed []string
	for _, p := range w.takeChanged() {
		info, err := os.Stat(p)
		switch {
		case os.IsNotExist(err):
			removed = append(removed, p)
		case err != nil:
			w.site.logger.Warn("Failed to stat changed path", logfields.Path(p), logfields.Error(err))
		case info.Mode().IsRegular():
			f, err := w.site.disc.Load(p)
			if err != nil {
				w.site.logger.Warn("Failed to load changed file", logfields.Path(p), logfields.Error(err))
				continue
			}
			files = append(files, f)
		}
	}
	if len(files) == 0 && len(removed) == 0 {
		return
	}

	w.site.logger.Info("Change detected; rebuilding", logfields.Count(len(files)+len(removed)))
	if err := w.flush(ctx, files, removed); err != nil && ctx.Err() == nil {
		w.site.logger.Error("Rebuild failed", logfields.Error(err))
	}
}

// runWatchLoop handles filesystem events until ctx is done or the pipeline fails.
func (s *Site) runWatchLoop(ctx context.Context, watcher *fsnotify.Watcher, w *watchSession, trigger func()) error {
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Stopping watch")
			return nil
		case <-w.failed:
			return w.failure()
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			s.handleFileEvent(watcher, w, ev, trigger)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("Watcher error", logfields.Error(err))
		}
	}
}

// handleFileEvent records the changed path and triggers a debounced rebuild.
func (s *Site) handleFileEvent(watcher *fsnotify.Watcher, w *watchSession, ev fsnotify.Event, trigger func()) {
	if shouldIgnoreEvent(ev.Name) || s.disc.Skip(ev.Name) {
		return
	}
	if ev.Op&fsnotify.Create == fsnotify.Create {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			s.addDirsRecursive(watcher, ev.Name)
			_ = filepath.WalkDir(ev.Name, func(p string, d os.DirEntry, err error) error {
				if err == nil && !d.IsDir() && !s.disc.Skip(p) {
					w.markChanged(p)
				}
				return nil
			})
			trigger()
			return
		}
	}
	if ev.Op == fsnotify.Chmod {
		return
	}
	s.logger.Debug("File change detected", logfields.Path(ev.Name), logfields.Op(ev.Op.String()))
	w.markChanged(ev.Name)
	trigger()
}

// setupFileWatcher creates a watcher on every non-skipped directory of the source tree.
func (s *Site) setupFileWatcher() (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryWatch, "failed to create filesystem watcher").Build()
	}
	s.addDirsRecursive(watcher, s.disc.Root())
	return watcher, nil
}

func (s *Site) addDirsRecursive(w *fsnotify.Watcher, root string) {
	_ = filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && s.disc.Skip(p) {
			return filepath.SkipDir
		}
		if err := w.Add(p); err != nil {
			s.logger.Warn("Watch add failed", logfields.Path(p), logfields.Error(err))
		}
		return nil
	})
}

// setupRebuildDebouncer returns the rebuild request channel and a trigger that fires
// it once no trigger has happened for the quiet window.
func setupRebuildDebouncer(quiet time.Duration) (chan struct{}, func()) {
	var mu sync.Mutex
	var timer *time.Timer
	rebuildReq := make(chan struct{}, 1)

	trigger := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(quiet, func() {
			select {
			case rebuildReq <- struct{}{}:
			default:
			}
		})
	}
	return rebuildReq, trigger
}

// shouldIgnoreEvent returns true for editor temp files and OS metadata files.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)

	if strings.HasPrefix(base, ".") {
		return true
	}
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}
	return base == "Thumbs.db"
}
