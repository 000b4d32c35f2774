package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestZerologLoggerMethods(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	l := NewZerologLogger("test")
	if l == nil {
		t.Fatalf("nil logger")
	}
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info %s", "test")
	l.Warnf("warn")
	l.Errorf("error")
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"INFO":    zerolog.InfoLevel,
		"warn":    zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestLevelFiltersOutput(t *testing.T) {
	var buf bytes.Buffer
	l := newZerolog(&buf, "planner", zerolog.WarnLevel)
	l.Infof("hidden")
	l.Debugw("hidden", map[string]any{"k": 1})
	assert.Zero(t, buf.Len())

	l.Warnf("shown %d", 2)
	var line map[string]any
	assert.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "shown 2", line["message"])
	assert.Equal(t, "planner", line["component"])
	assert.Equal(t, "warn", line["level"])
}

func TestSetLevelOverridesEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	defer SetLevel("")

	assert.Equal(t, zerolog.ErrorLevel, currentLevel())
	SetLevel("debug")
	assert.Equal(t, zerolog.DebugLevel, currentLevel())
	SetLevel("")
	assert.Equal(t, zerolog.ErrorLevel, currentLevel())
}
