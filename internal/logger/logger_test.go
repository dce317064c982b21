package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewModes(t *testing.T) {
	for _, mode := range []string{"dev", "prod", "PRODUCTION", ""} {
		t.Run(mode, func(t *testing.T) {
			l, err := New(mode, false)
			require.NoError(t, err)
			require.NotNil(t, l)
		})
	}
}

func TestVerboseEnablesDebug(t *testing.T) {
	quiet, err := New("dev", false)
	require.NoError(t, err)
	assert.False(t, quiet.SugaredLogger.Desugar().Core().Enabled(zap.DebugLevel))

	loud, err := New("dev", true)
	require.NoError(t, err)
	assert.True(t, loud.SugaredLogger.Desugar().Core().Enabled(zap.DebugLevel))
}

func TestWithCarriesFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := FromZap(zap.New(core)).With("entity", "speech")

	l.Warn("skipping record", "file", "a.json")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "skipping record", entries[0].Message)
	fields := entries[0].ContextMap()
	assert.Equal(t, "speech", fields["entity"])
	assert.Equal(t, "a.json", fields["file"])
}
