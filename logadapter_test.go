package sched

import (
	"errors"
	"fmt"
	"testing"

	"github.com/joeycumines/logiface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingEvent implements logiface.Event with just enough surface to
// observe what logifaceLogger sends through a Builder: its level and the
// fields added via AddField.
type recordingEvent struct {
	logiface.UnimplementedEvent
	level  logiface.Level
	fields map[string]any
}

func newRecordingEvent(level logiface.Level) *recordingEvent {
	return &recordingEvent{level: level, fields: make(map[string]any)}
}

func (e *recordingEvent) Level() logiface.Level { return e.level }

func (e *recordingEvent) AddField(key string, val any) { e.fields[key] = val }

// recordingWriter captures the last event it was asked to write.
type recordingWriter struct {
	last *recordingEvent
}

func (w *recordingWriter) Write(event *recordingEvent) error {
	w.last = event
	return nil
}

func newRecordingLogiface(level logiface.Level) (*logiface.Logger[logiface.Event], *recordingWriter) {
	writer := &recordingWriter{}
	backend := logiface.New[*recordingEvent](
		logiface.WithLevel[*recordingEvent](level),
		logiface.WithEventFactory[*recordingEvent](logiface.NewEventFactoryFunc(newRecordingEvent)),
		logiface.WithWriter[*recordingEvent](writer),
	)
	return backend.Logger(), writer
}

func TestNewLogifaceLoggerIsEnabledReflectsBackendLevel(t *testing.T) {
	backend, _ := newRecordingLogiface(logiface.LevelWarning)
	l := NewLogifaceLogger(backend)

	assert.False(t, l.IsEnabled(LogLevelInfo))
	assert.True(t, l.IsEnabled(LogLevelWarn))
	assert.True(t, l.IsEnabled(LogLevelError))
}

func TestLogifaceLoggerLogForwardsFields(t *testing.T) {
	backend, writer := newRecordingLogiface(logiface.LevelDebug)
	l := NewLogifaceLogger(backend)

	l.Log(LogEntry{
		Level:    LogLevelError,
		Category: "donation",
		ThreadID: 7,
		Tick:     42,
		Message:  "chain truncated",
		Context:  map[string]any{"depth": 8},
		Err:      errors.New("boom"),
	})

	require.NotNil(t, writer.last)
	assert.Equal(t, logiface.LevelError, writer.last.level)
	assert.Equal(t, 7, writer.last.fields["thread"])
	assert.Equal(t, int64(42), writer.last.fields["tick"])
	assert.Equal(t, "donation", writer.last.fields["category"])
	assert.Equal(t, fmt.Sprint(8), writer.last.fields["depth"])
	assert.Equal(t, "boom", writer.last.fields["err"])
}

func TestLogifaceLoggerLogSkipsDisabledLevel(t *testing.T) {
	backend, writer := newRecordingLogiface(logiface.LevelError)
	l := NewLogifaceLogger(backend)

	l.Log(LogEntry{Level: LogLevelInfo, Message: "should not reach writer"})

	assert.Nil(t, writer.last)
}

func TestLogifaceLoggerBuilderMapsAllLevels(t *testing.T) {
	backend, writer := newRecordingLogiface(logiface.LevelDebug)
	l := NewLogifaceLogger(backend)

	l.Log(LogEntry{Level: LogLevelDebug, Message: "d"})
	require.NotNil(t, writer.last)
	assert.Equal(t, logiface.LevelDebug, writer.last.level)

	l.Log(LogEntry{Level: LogLevelWarn, Message: "w"})
	assert.Equal(t, logiface.LevelWarning, writer.last.level)

	l.Log(LogEntry{Level: LogLevelInfo, Message: "i"})
	assert.Equal(t, logiface.LevelInformational, writer.last.level)
}
