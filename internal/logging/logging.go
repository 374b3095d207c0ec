// Package logging configures the zerolog logger shared by the CLI. Output is
// a human-readable console writer on stderr; the default level is warn so the
// soft failures of the background update check stay invisible unless --debug
// is passed.
package logging

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultLevel is used when no level is configured or the level is invalid.
const DefaultLevel = zerolog.WarnLevel

var (
	mu     sync.RWMutex
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(DefaultLevel).
		With().
		Timestamp().
		Logger()
)

// Init replaces the shared logger. level is parsed with zerolog.ParseLevel
// and falls back to DefaultLevel; a nil w means stderr.
func Init(level string, w io.Writer) {
	if w == nil {
		w = os.Stderr
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = DefaultLevel
	}

	mu.Lock()
	defer mu.Unlock()
	logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: w != os.Stderr}).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}

// Logger returns the shared logger.
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Component returns a child logger tagged with component=name.
func Component(name string) zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger.With().Str("component", name).Logger()
}
