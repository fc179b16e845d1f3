package sched

import (
	"fmt"

	"github.com/joeycumines/logiface"
)

// logifaceLogger adapts a github.com/joeycumines/logiface Logger into the
// Logger interface, for callers who already have a logiface pipeline (e.g.
// logiface-zerolog, logiface-stumpy) configured for their process and want
// the kernel to log through it instead of through DefaultLogger.
type logifaceLogger struct {
	backend *logiface.Logger[logiface.Event]
}

// NewLogifaceLogger wraps an existing logiface logger for use as a Kernel's
// Logger (WithLogger(NewLogifaceLogger(l))).
func NewLogifaceLogger(backend *logiface.Logger[logiface.Event]) Logger {
	return &logifaceLogger{backend: backend}
}

func (l *logifaceLogger) IsEnabled(level LogLevel) bool {
	return l.builder(level).Enabled()
}

func (l *logifaceLogger) Log(entry LogEntry) {
	b := l.builder(entry.Level)
	if !b.Enabled() {
		return
	}
	if entry.ThreadID != 0 {
		b = b.Int(`thread`, entry.ThreadID)
	}
	if entry.Tick != 0 {
		b = b.Int64(`tick`, entry.Tick)
	}
	if entry.Category != `` {
		b = b.Str(`category`, entry.Category)
	}
	for k, v := range entry.Context {
		b = b.Str(k, fmt.Sprint(v))
	}
	if entry.Err != nil {
		b = b.Str(`err`, entry.Err.Error())
	}
	b.Log(entry.Message)
}

func (l *logifaceLogger) builder(level LogLevel) *logiface.Builder[logiface.Event] {
	switch level {
	case LogLevelDebug:
		return l.backend.Debug()
	case LogLevelWarn:
		return l.backend.Warning()
	case LogLevelError:
		return l.backend.Err()
	default:
		return l.backend.Info()
	}
}

