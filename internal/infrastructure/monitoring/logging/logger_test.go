package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger_Defaults(t *testing.T) {
	l, err := NewLogger(LogConfig{})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestZapLogger_EmitsFields(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	l := NewLoggerFromCore(core)

	l.Info("bond order repaired",
		String("element", "C"),
		Int("order", 5),
		Bool("repaired", true))

	entries := observed.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "bond order repaired", entries[0].Message)

	fields := entries[0].ContextMap()
	assert.Equal(t, "C", fields["element"])
	assert.Equal(t, int64(5), fields["order"])
	assert.Equal(t, true, fields["repaired"])
}

func TestZapLogger_WithAndNamed(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	l := NewLoggerFromCore(core).Named("engine").With(String("graph_id", "g-1"))

	l.Warn("unknown element treated as inert")

	entries := observed.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "engine", entries[0].LoggerName)
	assert.Equal(t, "g-1", entries[0].ContextMap()["graph_id"])
}

func TestErrField(t *testing.T) {
	assert.Equal(t, "<nil>", Err(nil).Value)
	assert.Equal(t, "error", Err(nil).Key)
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	// Must not panic and child loggers stay nop.
	l.Debug("x")
	l.With(String("k", "v")).Named("n").Error("y")
}

func TestDefaultLogger(t *testing.T) {
	orig := Default()
	defer SetDefault(orig)

	SetDefault(nil) // ignored
	assert.NotNil(t, Default())

	l := NewNopLogger()
	SetDefault(l)
	assert.Equal(t, l, Default())
}
