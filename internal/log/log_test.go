package log_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	applog "glowcandles/internal/log"
)

func TestHelpersWriteStructuredEntries(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	applog.SetLogger(zap.New(core))
	t.Cleanup(func() { applog.SetLogger(nil) })

	applog.Audit(nil, "order.create", map[string]any{"order_number": "GC1"})
	applog.Security(nil, "auth.login.fail", nil)
	applog.Error(nil, "order.create.fail", errors.New("boom"), nil)

	entries := logs.All()
	require.Len(t, entries, 3)

	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "order.create", entries[0].ContextMap()["action"])
	assert.Equal(t, true, entries[0].ContextMap()["audit"])
	assert.Equal(t, map[string]any{"order_number": "GC1"}, entries[0].ContextMap()["fields"])

	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Equal(t, "boom", entries[2].ContextMap()["error"])
}

func TestNewFallsBackToInfoOnBadLevel(t *testing.T) {
	l, err := applog.New("not-a-level", "")
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
}
