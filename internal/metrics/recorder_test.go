package metrics

import (
	"sync"
	"time"
)

// testRecorder counts calls; shared by tests in this package.
type testRecorder struct {
	mu             sync.Mutex
	stageDurations map[string]int
	stageResults   map[string]map[ResultLabel]int
	buildDurations int
	buildOutcomes  map[BuildOutcomeLabel]int
	files          map[string]int
	resolutions    map[string]int
	collisions     map[string]int
}

func newTestRecorder() *testRecorder {
	return &testRecorder{
		stageDurations: map[string]int{},
		stageResults:   map[string]map[ResultLabel]int{},
		buildOutcomes:  map[BuildOutcomeLabel]int{},
		files:          map[string]int{},
		resolutions:    map[string]int{},
		collisions:     map[string]int{},
	}
}

func (t *testRecorder) ObserveStageDuration(stage string, _ time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stageDurations[stage]++
}

func (t *testRecorder) ObserveBuildDuration(time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buildDurations++
}

func (t *testRecorder) IncStageResult(stage string, result ResultLabel) {
	t.mu.Lock()
	defer t.mu.Unlock()
	m, ok := t.stageResults[stage]
	if !ok {
		m = map[ResultLabel]int{}
		t.stageResults[stage] = m
	}
	m[result]++
}

func (t *testRecorder) IncBuildOutcome(outcome BuildOutcomeLabel) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buildOutcomes[outcome]++
}

func (t *testRecorder) IncFilesProcessed(mode string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.files[mode]++
}

func (t *testRecorder) IncHrefResolution(kind string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resolutions[kind]++
}

func (t *testRecorder) IncIndexCollision(index string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.collisions[index]++
}

var (
	_ Recorder = (*testRecorder)(nil)
	_ Recorder = NoopRecorder{}
	_ Recorder = (*PrometheusRecorder)(nil)
)
