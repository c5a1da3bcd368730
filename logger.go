package gsdirect

import (
	"log/slog"
	"sync/atomic"
)

var logger atomic.Pointer[slog.Logger]

func init() {
	SetLogger(nil)
}

// SetLogger sets the logger shared by gsdirect and its sub-packages. The
// default, restored by passing nil, discards everything. It may be called
// while renderers are running.
//
// Levels:
//   - [slog.LevelDebug]: flush statistics, pipeline cache misses
//   - [slog.LevelInfo]: backend and adapter selection
//   - [slog.LevelWarn]: texture misses, unsupported blend selectors,
//     state resets that discard pending geometry
//
// Example:
//
//	gsdirect.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	logger.Store(l)
}

// Logger returns the logger set by SetLogger.
func Logger() *slog.Logger {
	return logger.Load()
}
