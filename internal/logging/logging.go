// Package logging configures the process-wide slog logger: a run-stamped
// file under the configured log directory, mirrored to stderr.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

const fileTimestamp = "2006-01-02_15-04-05"

var levels = []slog.Level{slog.LevelWarn, slog.LevelInfo, slog.LevelDebug}

// Level maps the -v count to a log level: 0 warnings, 1 info, 2+ debug.
func Level(verbose int) slog.Level {
	if verbose >= len(levels) {
		verbose = len(levels) - 1
	}
	return levels[verbose]
}

// Setup installs the default logger writing to both stderr and
// <logDir>/hiscorecounts-<timestamp>.log, and returns the log file path
// with a close function for it.
func Setup(verbose int, logDir string, start time.Time) (string, func(), error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return "", nil, fmt.Errorf("creating log directory: %w", err)
	}

	path := filepath.Join(logDir,
		fmt.Sprintf("hiscorecounts-%s.log", start.UTC().Format(fileTimestamp)))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return "", nil, fmt.Errorf("opening log file: %w", err)
	}

	handler := slog.NewTextHandler(io.MultiWriter(file, os.Stderr), &slog.HandlerOptions{
		Level: Level(verbose),
	})
	slog.SetDefault(slog.New(handler))

	return path, func() { file.Close() }, nil
}
