package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// resolveLogPath picks the log destination: the -log flag, then
// TEMPO_LOG_PATH, then the user cache directory.
func resolveLogPath(flagPath string) (string, error) {
	if flagPath != "" {
		return flagPath, nil
	}
	if env := os.Getenv("TEMPO_LOG_PATH"); env != "" {
		return env, nil
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", errors.Wrap(err, "resolve log directory")
	}
	return filepath.Join(dir, "tempo", "tempo.log"), nil
}

// newLogger opens the log. "-" logs to stderr. The returned closer releases
// the log file.
func newLogger(path string, debug bool) (zerolog.Logger, io.Closer, error) {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	if path == "-" {
		w := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
		return zerolog.New(w).Level(level).With().Timestamp().Logger(), io.NopCloser(nil), nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return zerolog.Nop(), nil, errors.Wrap(err, "failed to create log directory")
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return zerolog.Nop(), nil, errors.Wrap(err, "open log file")
	}

	w := zerolog.ConsoleWriter{
		Out:        f,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    true,
	}
	log := zerolog.New(w).Level(level).With().Timestamp().Int("pid", os.Getpid()).Logger()
	return log, f, nil
}
