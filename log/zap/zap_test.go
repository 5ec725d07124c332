package zap

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/unkn0wn-root/layout"
)

func TestLoggerLevelsAndFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := New(zap.New(core))

	l.Debug("dropped", layout.Fields{"x": 1})
	l.Warn("layout: decode failed", layout.Fields{
		"record": "Account",
		"offset": 3,
		"err":    errors.New("boom"),
	})

	entries := logs.All()
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, zapcore.WarnLevel, e.Level)
	assert.Equal(t, "layout: decode failed", e.Message)

	ctx := e.ContextMap()
	assert.Equal(t, "Account", ctx["record"])
	assert.EqualValues(t, 3, ctx["offset"])
	assert.Equal(t, "boom", ctx["err"])

	keys := make([]string, 0, len(e.Context))
	for _, f := range e.Context {
		keys = append(keys, f.Key)
	}
	assert.Equal(t, []string{"err", "offset", "record"}, keys)
}
