// Package logrus adapts a *logrus.Entry to layout.Logger.
package logrus

import (
	"github.com/sirupsen/logrus"

	"github.com/unkn0wn-root/layout"
)

var _ layout.Logger = Logger{}

type Logger struct{ E *logrus.Entry }

func New(l *logrus.Logger) Logger { return Logger{E: logrus.NewEntry(l)} }

func (l Logger) Debug(msg string, f layout.Fields) { l.log(logrus.DebugLevel, msg, f) }
func (l Logger) Info(msg string, f layout.Fields)  { l.log(logrus.InfoLevel, msg, f) }
func (l Logger) Warn(msg string, f layout.Fields)  { l.log(logrus.WarnLevel, msg, f) }
func (l Logger) Error(msg string, f layout.Fields) { l.log(logrus.ErrorLevel, msg, f) }

func (l Logger) log(lvl logrus.Level, msg string, f layout.Fields) {
	if !l.E.Logger.IsLevelEnabled(lvl) {
		return
	}
	e := l.E
	if err, ok := f["err"].(error); ok {
		e = e.WithError(err)
	}
	fs := make(logrus.Fields, len(f))
	for k, v := range f {
		if k != "err" {
			fs[k] = v
		}
	}
	e.WithFields(fs).Log(lvl, msg)
}
