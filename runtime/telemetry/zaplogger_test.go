package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/zerotrust-agents/agentrt/runtime/telemetry"
)

func TestZapLoggerEmitsStructuredFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := telemetry.NewZapLogger(zap.New(core))

	logger.Info(context.Background(), "tool invoked", "tool", "read_file", "step_idx", 2)

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "tool invoked", entries[0].Message)
	require.Equal(t, zapcore.InfoLevel, entries[0].Level)

	fields := entries[0].ContextMap()
	require.Equal(t, "read_file", fields["tool"])
	require.EqualValues(t, 2, fields["step_idx"])
}

func TestZapLoggerFallsBackToNopForNilBase(t *testing.T) {
	logger := telemetry.NewZapLogger(nil)
	require.NotPanics(t, func() {
		logger.Warn(context.Background(), "no base logger configured")
	})
}
