package vlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel_ValidLevel(t *testing.T) {
	level, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, level)
}

func TestParseLevel_InvalidLevel(t *testing.T) {
	_, err := ParseLevel("not-a-level")
	assert.Error(t, err)
}

func TestSetLevel_UpdatesLogger(t *testing.T) {
	require.NoError(t, SetLevel(zapcore.WarnLevel))
	defer SetLevel(zapcore.InfoLevel)

	assert.NotNil(t, L())
}

func TestNamed_ReturnsNonNilLogger(t *testing.T) {
	assert.NotNil(t, Named("test-component"))
}
