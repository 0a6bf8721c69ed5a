package logging

import (
	"context"
	"sync/atomic"
)

// MirrorFunc receives every written entry, e.g. to forward it to an OpenTelemetry log exporter.
type MirrorFunc func(ctx context.Context, level Level, msg string, args ...any)

var mirror atomic.Value // holds MirrorFunc

// SetMirror installs fn as the process-wide mirror. nil removes it.
func SetMirror(fn MirrorFunc) {
	mirror.Store(fn)
}

func mirrorEntry(ctx context.Context, level Level, msg string, args []any) {
	fn, _ := mirror.Load().(MirrorFunc)
	if fn == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	fn(ctx, level, msg, args...)
}
