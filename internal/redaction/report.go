package redaction

import (
	"github.com/raaihank/rdap-sentinel/internal/logger"
	"go.uber.org/zap/zapcore"
)

// EventKind names a diagnostic raised while resolving a document.
type EventKind string

const (
	EventExtractError   EventKind = "extract_error"
	EventPathError      EventKind = "path_error"
	EventAmbiguousPath  EventKind = "ambiguous_path"
	EventMismatch       EventKind = "mismatch"
	EventUnknownMethod  EventKind = "unknown_method"
	EventAnomaly        EventKind = "anomaly"
	EventApplied        EventKind = "applied"
	EventAbsentVerified EventKind = "absent_verified"
)

// Event is one leveled diagnostic tied to a descriptor. Descriptor is -1
// when the event concerns the redacted member as a whole.
type Event struct {
	Descriptor int
	Name       string
	Kind       EventKind
	Level      zapcore.Level
	Action     EffectiveAction
	Path       string
	Locations  []string
	Message    string
}

func newEvent(d Descriptor, kind EventKind, level zapcore.Level, msg string) Event {
	path, _ := d.OriginalPath()
	return Event{Descriptor: d.Index, Name: d.Name, Kind: kind, Level: level, Path: path, Message: msg}
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (e Event) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("event", string(e.Kind))
	enc.AddInt("descriptor", e.Descriptor)
	if e.Name != "" {
		enc.AddString("name", e.Name)
	}
	if e.Path != "" {
		enc.AddString("path", e.Path)
	}
	enc.AddString("action", e.Action.String())
	if len(e.Locations) > 0 {
		return enc.AddArray("locations", zapcore.ArrayMarshalerFunc(func(arr zapcore.ArrayEncoder) error {
			for _, l := range e.Locations {
				arr.AppendString(l)
			}
			return nil
		}))
	}
	return nil
}

func (e Event) LogLevel() zapcore.Level { return e.Level }
func (e Event) LogMessage() string      { return e.Message }

// Entry summarizes how one declaration was handled. It is the data behind
// a "Redacted" listing of a response.
type Entry struct {
	Index   int
	Name    string
	Reason  string
	Method  string // as declared
	Path    string
	Matches int
	Action  EffectiveAction
}

// Report is everything the engine learned about one document.
type Report struct {
	Declared int // elements in the redacted array
	Applied  int // descriptors that changed the document
	Verified int // removals confirmed absent
	Skipped  int // malformed elements and NoAction descriptors
	Entries  []Entry
	Events   []Event
}

func (r *Report) add(ev ...Event) { r.Events = append(r.Events, ev...) }

// Count returns the number of events of the given kind.
func (r *Report) Count(kind EventKind) int {
	n := 0
	for _, ev := range r.Events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (r *Report) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddInt("declared", r.Declared)
	enc.AddInt("applied", r.Applied)
	enc.AddInt("verified", r.Verified)
	enc.AddInt("skipped", r.Skipped)
	enc.AddInt("events", len(r.Events))
	return nil
}

// DiagnosticEvents implements logger.Report.
func (r *Report) DiagnosticEvents() []logger.Event {
	out := make([]logger.Event, len(r.Events))
	for i, ev := range r.Events {
		out[i] = ev
	}
	return out
}
