// Package zap adapts a *zap.Logger to layout.Logger.
package zap

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/unkn0wn-root/layout"
)

var _ layout.Logger = Logger{}

type Logger struct{ L *zap.Logger }

func New(l *zap.Logger) Logger { return Logger{L: l} }

func (z Logger) Debug(msg string, f layout.Fields) { z.log(zapcore.DebugLevel, msg, f) }
func (z Logger) Info(msg string, f layout.Fields)  { z.log(zapcore.InfoLevel, msg, f) }
func (z Logger) Warn(msg string, f layout.Fields)  { z.log(zapcore.WarnLevel, msg, f) }
func (z Logger) Error(msg string, f layout.Fields) { z.log(zapcore.ErrorLevel, msg, f) }

func (z Logger) log(lvl zapcore.Level, msg string, f layout.Fields) {
	if ce := z.L.Check(lvl, msg); ce != nil {
		ce.Write(fields(f)...)
	}
}

func fields(f layout.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(f))
	for _, k := range f.Keys() {
		if err, ok := f[k].(error); ok {
			out = append(out, zap.NamedError(k, err))
			continue
		}
		out = append(out, zap.Any(k, f[k]))
	}
	return out
}
