package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// TestParseLogLevel verifies mapping from strings to zapcore.Level and handling of unknown values.
func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"info":  zapcore.InfoLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
		"fatal": zapcore.FatalLevel,
	}
	for s, lvl := range cases {
		got, ok := ParseLogLevel(s)
		require.True(t, ok)
		require.Equal(t, lvl, got)
	}

	_, ok := ParseLogLevel("unknown")
	require.False(t, ok)

	// Input is trimmed and lowercased before matching.
	got, ok := ParseLogLevel("  DEBUG ")
	require.True(t, ok)
	require.Equal(t, zapcore.DebugLevel, got)
}

// TestFromContext_FallsBackToGlobal ensures a bare context yields the global logger.
func TestFromContext_FallsBackToGlobal(t *testing.T) {
	t.Parallel()

	require.Same(t, Logger(), FromContext(context.Background()))
}

// TestContextCarriage verifies ToContext/FromContext round trips a logger.
func TestContextCarriage(t *testing.T) {
	t.Parallel()

	l := New(nil)
	ctx := ToContext(context.Background(), l)
	require.Same(t, l, FromContext(ctx))

	// WithName and WithKV derive new loggers rather than mutating the carried one.
	named := WithName(ctx, "component")
	require.NotSame(t, l, FromContext(named))
}
