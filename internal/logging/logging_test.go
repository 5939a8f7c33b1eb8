package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestLevels(t *testing.T) {
	quiet := New(false)
	assert.False(t, quiet.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, quiet.Core().Enabled(zapcore.WarnLevel))

	loud := New(true)
	assert.True(t, loud.Core().Enabled(zapcore.DebugLevel))

	srv := NewServer(false)
	assert.True(t, srv.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, srv.Core().Enabled(zapcore.DebugLevel))
}
