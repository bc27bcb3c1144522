// Package gamelog provides leveled logging for the simulation, matching
// the terse emoji-prefixed style used throughout the engine's lifecycle
// logging.
package gamelog

import (
	"log"
	"os"

	"github.com/pkg/errors"
)

// Level controls which log lines are emitted.
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
	LevelSilent
)

var current = LevelInfo

// SetLevel sets the minimum level that will be emitted.
func SetLevel(l Level) {
	current = l
}

func init() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.Ltime)
}

// Info logs a lifecycle/info-level line.
func Info(format string, args ...any) {
	if current > LevelInfo {
		return
	}
	log.Printf("🎮 "+format, args...)
}

// Warn logs a warning-level line.
func Warn(format string, args ...any) {
	if current > LevelWarn {
		return
	}
	log.Printf("⚠️ "+format, args...)
}

// Error logs an error-level line.
func Error(format string, args ...any) {
	if current > LevelError {
		return
	}
	log.Printf("💥 "+format, args...)
}

// WrapInit wraps an initialization-time error with context, using
// pkg/errors so callers retain a stack trace up through main().
func WrapInit(err error, component string) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(err, "initializing %s", component)
}
