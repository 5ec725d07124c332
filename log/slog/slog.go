//go:build go1.21

// Package slog adapts a *slog.Logger to layout.Logger.
package slog

import (
	"context"
	stdslog "log/slog"

	"github.com/unkn0wn-root/layout"
)

var _ layout.Logger = Logger{}

type Logger struct{ L *stdslog.Logger }

func New(l *stdslog.Logger) Logger { return Logger{L: l} }

func (s Logger) Debug(msg string, f layout.Fields) { s.log(stdslog.LevelDebug, msg, f) }
func (s Logger) Info(msg string, f layout.Fields)  { s.log(stdslog.LevelInfo, msg, f) }
func (s Logger) Warn(msg string, f layout.Fields)  { s.log(stdslog.LevelWarn, msg, f) }
func (s Logger) Error(msg string, f layout.Fields) { s.log(stdslog.LevelError, msg, f) }

func (s Logger) log(lvl stdslog.Level, msg string, f layout.Fields) {
	ctx := context.Background()
	if !s.L.Enabled(ctx, lvl) {
		return
	}
	s.L.LogAttrs(ctx, lvl, msg, Attrs(f)...)
}

// Attrs converts f to slog attributes in key order.
func Attrs(f layout.Fields) []stdslog.Attr {
	if len(f) == 0 {
		return nil
	}
	out := make([]stdslog.Attr, 0, len(f))
	for _, k := range f.Keys() {
		if err, ok := f[k].(error); ok {
			out = append(out, stdslog.String(k, err.Error()))
			continue
		}
		out = append(out, stdslog.Any(k, f[k]))
	}
	return out
}
