package observability

import (
	"log/slog"
	"os"
	"strings"
)

// SetupLogger installs a process-wide JSON slog handler at the given level.
// slog has no trace level; "trace" is mapped to Debug-4 so it still sorts
// below Debug, matching the Rust original's five-level scheme.
func SetupLogger(level string) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "trace":
		lvl = slog.LevelDebug - 4
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
