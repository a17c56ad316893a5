package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingWriter struct {
	events []Event
}

func (r *recordingWriter) Write(e Event) { r.events = append(r.events, e) }
func (r *recordingWriter) Close()        {}

func TestLoggerFiltersBelowLevel(t *testing.T) {
	rec := &recordingWriter{}
	l := New("test", nil)
	l.SetLevel(Warn)
	l.AddWriter(rec)

	l.Debugf("ignored")
	l.Infof("ignored too")
	l.Warnf("kept")

	assert.Len(t, rec.events, 1)
	assert.Equal(t, Warn, rec.events[0].Level)
	assert.Equal(t, "kept", rec.events[0].Message)
}

func TestChildPropagatesToParentWriters(t *testing.T) {
	parentRec := &recordingWriter{}
	parent := New("physics3d", nil)
	parent.SetLevel(Debug)
	parent.AddWriter(parentRec)

	child := New("world", parent)
	child.Infof("step complete")

	assert.Len(t, parentRec.events, 1)
	assert.Equal(t, "physics3d/world", parentRec.events[0].Prefix)
}

func TestDisabledLoggerEmitsNothing(t *testing.T) {
	rec := &recordingWriter{}
	l := New("test", nil)
	l.SetLevel(Debug)
	l.AddWriter(rec)
	l.SetEnabled(false)

	l.Errorf("should not appear")

	assert.Empty(t, rec.events)
}
