// Package util provides low-level helpers shared by all other packages.
package util

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// LogLevel controls output verbosity.
type LogLevel int

const (
	LogQuiet   LogLevel = 0
	LogNormal  LogLevel = 1
	LogVerbose LogLevel = 2
	LogDebug   LogLevel = 3
)

// Logger writes levelled messages to stderr with optional timestamps
// and level prefixes.  It is a thin veneer over a logrus logger so that
// per-session fields (see [Logger.With]) travel with every line.
type Logger struct {
	level  LogLevel
	entry  *logrus.Entry
	format *levelFormatter
}

// NewLogger returns a Logger that prints messages at or below the given
// verbosity (0 = quiet, 1 = normal, 2 = verbose, 3 = debug).
func NewLogger(verbosity int) *Logger {
	format := &levelFormatter{}
	format.timestamps.Store(verbosity >= 3) // auto-enable timestamps in debug mode

	base := logrus.New()
	base.SetOutput(os.Stderr)
	base.SetFormatter(format)
	base.SetLevel(logrusLevel(LogLevel(verbosity)))

	return &Logger{
		level:  LogLevel(verbosity),
		entry:  logrus.NewEntry(base),
		format: format,
	}
}

// With returns a child logger that appends key=value to every line.
func (l *Logger) With(key string, value interface{}) *Logger {
	return &Logger{
		level:  l.level,
		entry:  l.entry.WithField(key, value),
		format: l.format,
	}
}

// SetTimestamps enables or disables timestamp prefixes.
func (l *Logger) SetTimestamps(on bool) { l.format.timestamps.Store(on) }

// SetOutput overrides the output writer (default: os.Stderr).
func (l *Logger) SetOutput(w io.Writer) { l.entry.Logger.SetOutput(w) }

// Level returns the current log level.
func (l *Logger) Level() LogLevel { return l.level }

// Info prints when verbosity ≥ 1.  Prefixed with [INF].
func (l *Logger) Info(format string, args ...interface{}) {
	l.entry.Infof(format, args...)
}

// Warn prints when verbosity ≥ 1.  Prefixed with [WRN].
func (l *Logger) Warn(format string, args ...interface{}) {
	l.entry.Warnf(format, args...)
}

// Verbose prints when verbosity ≥ 2.  Prefixed with [VRB].
func (l *Logger) Verbose(format string, args ...interface{}) {
	l.entry.Debugf(format, args...)
}

// Debug prints when verbosity ≥ 3.  Prefixed with [DBG].
func (l *Logger) Debug(format string, args ...interface{}) {
	l.entry.Tracef(format, args...)
}

// Error always prints regardless of verbosity.  Prefixed with [ERR].
func (l *Logger) Error(format string, args ...interface{}) {
	l.entry.Errorf(format, args...)
}

func logrusLevel(level LogLevel) logrus.Level {
	switch {
	case level <= LogQuiet:
		return logrus.ErrorLevel
	case level == LogNormal:
		return logrus.InfoLevel
	case level == LogVerbose:
		return logrus.DebugLevel
	default:
		return logrus.TraceLevel
	}
}

// ── formatter ────────────────────────────────────────────────────────

// levelFormatter renders "[LVL] message (k=v ...)".
type levelFormatter struct {
	timestamps atomic.Bool
}

var levelTags = map[logrus.Level]string{
	logrus.PanicLevel: "ERR",
	logrus.FatalLevel: "ERR",
	logrus.ErrorLevel: "ERR",
	logrus.WarnLevel:  "WRN",
	logrus.InfoLevel:  "INF",
	logrus.DebugLevel: "VRB",
	logrus.TraceLevel: "DBG",
}

func (f *levelFormatter) Format(e *logrus.Entry) ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, 128))
	if f.timestamps.Load() {
		buf.WriteString(e.Time.Format("15:04:05.000"))
		buf.WriteByte(' ')
	}
	fmt.Fprintf(buf, "[%s] %s", levelTags[e.Level], e.Message)

	if len(e.Data) > 0 {
		keys := make([]string, 0, len(e.Data))
		for k := range e.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf.WriteString(" (")
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(' ')
			}
			fmt.Fprintf(buf, "%s=%v", k, e.Data[k])
		}
		buf.WriteByte(')')
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Since is a small helper for elapsed-time log fields.
func Since(t0 time.Time) time.Duration {
	return time.Since(t0).Truncate(time.Millisecond)
}
