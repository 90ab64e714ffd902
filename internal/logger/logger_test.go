package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestVerbosityToLevel(t *testing.T) {
	assert.Equal(t, zapcore.WarnLevel, VerbosityToLevel(-1))
	assert.Equal(t, zapcore.WarnLevel, VerbosityToLevel(VerbosityUser))
	assert.Equal(t, zapcore.InfoLevel, VerbosityToLevel(VerbosityInfo))
	assert.Equal(t, zapcore.DebugLevel, VerbosityToLevel(VerbosityDebug))
	assert.Equal(t, zapcore.DebugLevel, VerbosityToLevel(7))
}

func TestNewFiltersByVerbosity(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, VerbosityUser)
	log.Infow("hidden")
	log.Warnw("shown", "dir", "crates/core")
	_ = log.Sync()

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "WARN")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, `"dir": "crates/core"`)
}

func TestNewInfo(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, VerbosityInfo)
	log.Infow("skipping line in output", "line", "Compiling foo")
	log.Debugw("not yet")
	_ = log.Sync()

	assert.Contains(t, buf.String(), "skipping line in output")
	assert.NotContains(t, buf.String(), "not yet")
}

func TestNop(t *testing.T) {
	Nop().Errorw("nothing")
}
