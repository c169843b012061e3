// Package logging provides leveled logging for graphism.
// It offers two complementary outputs:
//   - A leveled slog.Logger for stderr (operational output)
//   - Tracer handlers that log every state transition of a graph at trace level
package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/nvandessel/graphism/internal/graph"
)

// LevelTrace is a custom slog level below Debug for per-node transitions.
// At this level every infection and recovery is logged.
const LevelTrace = slog.LevelDebug - 4

// ParseLevel maps a string level name to a slog.Level.
// Supported values: "error", "warn", "info", "debug", "trace"
// (case-insensitive). Unknown values default to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "error":
		return slog.LevelError
	case "warn", "warning":
		return slog.LevelWarn
	case "debug":
		return slog.LevelDebug
	case "trace":
		return LevelTrace
	default:
		return slog.LevelInfo
	}
}

// ValidLevel reports whether s names a level ParseLevel understands.
func ValidLevel(s string) bool {
	switch strings.ToLower(s) {
	case "error", "warn", "warning", "info", "debug", "trace":
		return true
	}
	return false
}

// NewLogger creates a leveled slog.Logger writing to w.
func NewLogger(level string, w io.Writer) *slog.Logger {
	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Label the custom trace level
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// InfectionTracer returns a graph.Handler that logs each infection at trace
// level. It returns nil when the logger would drop trace records, so the
// graph skips the call entirely.
func InfectionTracer(logger *slog.Logger) graph.Handler {
	return tracer(logger, "node infected")
}

// RecoveryTracer is InfectionTracer for recoveries.
func RecoveryTracer(logger *slog.Logger) graph.Handler {
	return tracer(logger, "node recovered")
}

func tracer(logger *slog.Logger, msg string) graph.Handler {
	if logger == nil || !logger.Enabled(context.Background(), LevelTrace) {
		return nil
	}
	return graph.HandlerFunc(func(n *graph.Node) {
		logger.Log(context.Background(), LevelTrace, msg,
			"node", n.Name(),
			"degree", n.Degree())
	})
}
