package logger

import (
	"testing"

	"go-approvals/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	dev, err := NewLogger(&config.Config{AppId: "approvals", Environment: "development"})
	require.NoError(t, err)
	assert.True(t, dev.Core().Enabled(zapcore.DebugLevel))

	prod, err := NewLogger(&config.Config{AppId: "approvals", Environment: "production"})
	require.NoError(t, err)
	assert.False(t, prod.Core().Enabled(zapcore.DebugLevel))
}
