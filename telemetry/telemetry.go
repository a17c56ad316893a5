// Package telemetry is the engine's own level-filtered, prefix-tagged
// logger, generalized from the teacher's util/logger
// (g3n-engine/util/logger/logger.go) down to what a physics core needs:
// per-step summaries, contact add/remove tracing at Debug, and
// construction/configuration failures at Warn/Error. It stays on the
// standard library (fmt, sync, time) exactly as the teacher's own logger
// does — see DESIGN.md for why no third-party structured-logging
// dependency in the retrieval pack was eligible to replace it.
package telemetry

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Level filters which log calls actually reach a Logger's writers.
type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
	Fatal
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR", "FATAL"}

func (l Level) String() string {
	if l < Debug || l > Fatal {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// Event is the record passed from a Logger to each of its Writers.
type Event struct {
	Time    time.Time
	Level   Level
	Prefix  string
	Message string
}

// Writer receives every Event a Logger (or one of its ancestors) emits.
type Writer interface {
	Write(Event)
	Close()
}

// Logger is a named, leveled log sink. Children inherit their parent's
// level at creation time, start with no writers of their own (their
// events propagate to ancestors' writers), and may be reconfigured
// independently afterward, mirroring the teacher's Logger/parent/children
// tree (used there to scope GUI/renderer/loader subsystems; used here to
// scope world/solver/ccd/character subsystems).
type Logger struct {
	mu      sync.Mutex
	name    string
	prefix  string
	level   Level
	enabled bool
	writers []Writer
	parent  *Logger
}

// Root is the package-level default logger, named "physics3d", with a
// Console writer at Info level — analogous to the teacher's package-level
// Default logger constructed in util/logger's init().
var Root = New("physics3d", nil)

func init() {
	Root.SetLevel(Info)
	Root.AddWriter(NewConsole())
}

// New creates a Logger named name. If parent is non-nil, the new logger's
// prefix nests under the parent's ("physics3d/world") and it starts
// enabled at the parent's current level with no writers of its own — an
// event still reaches the parent's writers via propagation in log().
func New(name string, parent *Logger) *Logger {
	prefix := name
	level := Info
	if parent != nil {
		prefix = parent.prefix + "/" + name
		level = parent.level
	}
	return &Logger{
		name:    name,
		prefix:  prefix,
		level:   level,
		enabled: true,
		parent:  parent,
	}
}

// SetLevel sets the minimum level this logger emits.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetEnabled toggles whether this logger (not its ancestors) emits at all.
func (l *Logger) SetEnabled(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enabled = enabled
}

// AddWriter appends a Writer to this logger's own outputs.
func (l *Logger) AddWriter(w Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writers = append(l.writers, w)
}

func (l *Logger) Debugf(format string, v ...interface{}) { l.log(Debug, format, v...) }
func (l *Logger) Infof(format string, v ...interface{})  { l.log(Info, format, v...) }
func (l *Logger) Warnf(format string, v ...interface{})  { l.log(Warn, format, v...) }
func (l *Logger) Errorf(format string, v ...interface{}) { l.log(Error, format, v...) }
func (l *Logger) Fatalf(format string, v ...interface{}) { l.log(Fatal, format, v...) }

func (l *Logger) log(level Level, format string, v ...interface{}) {
	l.mu.Lock()
	enabled, threshold := l.enabled, l.level
	l.mu.Unlock()
	if !enabled || level < threshold {
		return
	}
	event := Event{
		Time:    time.Now().UTC(),
		Level:   level,
		Prefix:  l.prefix,
		Message: fmt.Sprintf(format, v...),
	}
	l.emit(event)
}

// emit writes event to this logger's own writers, then to every ancestor
// in turn, matching the teacher's writeAll: a child's event is always
// visible at the root unless a writer along the way chooses to drop it.
func (l *Logger) emit(event Event) {
	l.mu.Lock()
	writers := l.writers
	l.mu.Unlock()
	for _, w := range writers {
		w.Write(event)
	}
	if l.parent != nil {
		l.parent.emit(event)
	}
}

// Format renders an Event the way Console does, exposed so alternative
// Writers (file, net) can reuse the same line shape without duplicating
// the teacher's date/level/prefix layout.
func Format(event Event) string {
	var b strings.Builder
	b.WriteString(event.Time.Format("2006/01/02-15:04:05.000000"))
	b.WriteByte(':')
	b.WriteString(event.Level.String()[:1])
	b.WriteByte(':')
	b.WriteString(event.Prefix)
	b.WriteByte(':')
	b.WriteString(event.Message)
	return b.String()
}
