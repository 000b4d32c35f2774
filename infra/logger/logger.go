package logger

import (
	"os"
	"sync/atomic"

	"github.com/rs/zerolog"

	corelogger "github.com/kilianp07/v2g-planner/core/logger"
)

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger implements Logger with no-op methods.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any)         {}
func (NopLogger) Debugw(string, map[string]any) {}
func (NopLogger) Infof(string, ...any)          {}
func (NopLogger) Warnf(string, ...any)          {}
func (NopLogger) Errorf(string, ...any)         {}

// levelOverride holds the level set by SetLevel, nil until then.
var levelOverride atomic.Pointer[zerolog.Level]

// SetLevel fixes the minimum level of loggers created afterwards, taking
// precedence over LOG_LEVEL. An empty string restores the environment.
func SetLevel(s string) {
	if s == "" {
		levelOverride.Store(nil)
		return
	}
	lvl := ParseLevel(s)
	levelOverride.Store(&lvl)
}

func currentLevel() zerolog.Level {
	if lvl := levelOverride.Load(); lvl != nil {
		return *lvl
	}
	return ParseLevel(os.Getenv("LOG_LEVEL"))
}

// New returns a Logger for the given component. The format follows APP_ENV
// and the level follows SetLevel or LOG_LEVEL.
func New(component string) Logger {
	return NewZerologLogger(component)
}
