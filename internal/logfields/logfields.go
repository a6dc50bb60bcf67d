package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyStage      = "stage"
	KeyMode       = "mode"
	KeyDurationMS = "duration_ms"
	KeyPath       = "path"
	KeyFile       = "file"
	KeyTarget     = "target"
	KeyHref       = "href"
	KeyResolution = "resolution"
	KeyCount      = "count"
	KeyOp         = "op"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr        { return slog.String(KeyRunID, id) }
func Stage(name string) slog.Attr      { return slog.String(KeyStage, name) }
func Mode(m string) slog.Attr          { return slog.String(KeyMode, m) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func File(f string) slog.Attr          { return slog.String(KeyFile, f) }
func Target(p string) slog.Attr        { return slog.String(KeyTarget, p) }
func Href(h string) slog.Attr          { return slog.String(KeyHref, h) }
func Resolution(kind string) slog.Attr { return slog.String(KeyResolution, kind) }
func Count(n int) slog.Attr            { return slog.Int(KeyCount, n) }
func Op(op string) slog.Attr           { return slog.String(KeyOp, op) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
