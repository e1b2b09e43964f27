package observability

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetupLoggerAppliesRequestedLevel(t *testing.T) {
	SetupLogger("debug")
	assert.True(t, slog.Default().Enabled(context.Background(), slog.LevelDebug))

	SetupLogger("warn")
	assert.False(t, slog.Default().Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, slog.Default().Enabled(context.Background(), slog.LevelWarn))
}

func TestSetupLoggerDefaultsToInfo(t *testing.T) {
	SetupLogger("nonsense-level")
	assert.True(t, slog.Default().Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, slog.Default().Enabled(context.Background(), slog.LevelDebug))
}
