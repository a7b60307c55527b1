// Package iologger sets up the default slog logger of fim from the log
// section of the configuration.
package iologger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/NOAA-OWP/inundation-mapping-sub004/pkg/config"
)

// LogFile is the name of the log file in the log directory.
const LogFile = "fim.log"

var (
	mu      sync.Mutex
	current *os.File
)

// Init replaces the default logger. With the "file" destination records go
// to LogFile in logDir, appended to earlier records when append is true.
// A log file opened by an earlier Init is closed.
func Init(logDir string, cfg config.LogConfig, append bool) error {
	w, f, err := output(logDir, cfg.Destination, append)
	if err != nil {
		return err
	}

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	var h slog.Handler
	switch cfg.Format {
	case "text", "tint":
		h = slog.NewTextHandler(w, opts)
	default:
		h = slog.NewJSONHandler(w, opts)
	}
	slog.SetDefault(slog.New(h))

	mu.Lock()
	defer mu.Unlock()
	if current != nil {
		_ = current.Close()
	}
	current = f
	return nil
}

// output returns the writer of a destination and the file behind it, if
// any. Unknown destinations write to stderr.
func output(logDir, dest string, append bool) (io.Writer, *os.File, error) {
	switch dest {
	case "stdout":
		return os.Stdout, nil, nil
	case "file":
	default:
		return os.Stderr, nil, nil
	}

	path := filepath.Join(logDir, LogFile)
	flag := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if append {
		flag = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	f, err := os.OpenFile(path, flag, 0644)
	if err != nil {
		return nil, nil, CreateLogFileError(path, err)
	}
	return f, f, nil
}

// parseLevel reads a level name, "warning" is accepted for warn. Unknown
// names give info.
func parseLevel(s string) slog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	var res slog.Level
	if err := res.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return res
}
