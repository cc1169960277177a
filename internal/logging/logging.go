// Package logging builds the *slog.Logger shared by the CLI and the
// playback core, grounded on the teacher's preference for passing a
// logger into constructors rather than relying on a package-global one.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// New builds a text-handler logger writing to stderr at the given level
// ("debug", "info", "warn", "error"; unrecognised or empty means info).
func New(level string) *slog.Logger {
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(level)})
	return slog.New(h)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
