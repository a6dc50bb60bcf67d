package errors

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil error", err: nil, expected: 0},
		{name: "validation error", err: ValidationError("bad href").Build(), expected: 2},
		{name: "not found", err: NewError(CategoryNotFound, "missing source").Build(), expected: 3},
		{name: "config error", err: ConfigError("bad config").Build(), expected: 7},
		{name: "filesystem error", err: FileSystemError("write failed").Build(), expected: 11},
		{name: "pipeline error", err: PipelineError("collision").Build(), expected: 11},
		{name: "watch error", err: NewError(CategoryWatch, "watcher closed").Build(), expected: 12},
		{name: "internal error", err: InternalError("boom").Build(), expected: 10},
		{name: "unclassified error", err: &customError{msg: "unknown error"}, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := adapter.ExitCodeFor(tt.err)
			if got != tt.expected {
				t.Errorf("ExitCodeFor() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	quiet := NewCLIErrorAdapter(false, slog.Default())
	verbose := NewCLIErrorAdapter(true, slog.Default())

	internal := InternalError("index corrupted").Build()
	if got := quiet.FormatError(internal); !strings.Contains(got, "use -v") {
		t.Errorf("expected internal errors to be hidden without -v, got %q", got)
	}
	if got := verbose.FormatError(internal); !strings.Contains(got, "index corrupted") {
		t.Errorf("expected verbose output to include message, got %q", got)
	}

	cfg := ConfigError("source directory missing").Build()
	if got := quiet.FormatError(cfg); !strings.Contains(got, "source directory missing") {
		t.Errorf("expected config errors to be shown, got %q", got)
	}
}

func TestCLIErrorAdapter_HandleError(t *testing.T) {
	var out bytes.Buffer
	var logs bytes.Buffer
	adapter := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&logs, nil)))
	adapter.out = &out
	code := -1
	adapter.exit = func(c int) { code = c }

	adapter.HandleError(ConfigError("bad mode").WithContext("mode", "eager").Build())

	if code != 7 {
		t.Errorf("expected exit code 7, got %d", code)
	}
	if !strings.Contains(out.String(), "bad mode") {
		t.Errorf("expected message on output, got %q", out.String())
	}
	if !strings.Contains(logs.String(), "mode=eager") {
		t.Errorf("expected context in logs, got %q", logs.String())
	}
}

type customError struct {
	msg string
}

func (e *customError) Error() string {
	return e.msg
}
