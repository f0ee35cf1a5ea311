// Package telemetry provides frame timing, control event logging, and
// CSV session output for the viewer.
package telemetry

import (
	"fmt"
	"log/slog"
)

// EventType identifies viewer telemetry events.
type EventType uint8

const (
	EventSelect EventType = iota
	EventToggle
	EventSpeed
	EventReset
	EventResize
	EventReload
)

var eventNames = [...]string{
	EventSelect: "select",
	EventToggle: "toggle",
	EventSpeed:  "speed",
	EventReset:  "reset",
	EventResize: "resize",
	EventReload: "reload",
}

// String returns the event name used in logs and CSV output.
func (t EventType) String() string {
	if int(t) < len(eventNames) {
		return eventNames[t]
	}
	return fmt.Sprintf("event(%d)", t)
}

// Event is a single state change applied to a viewer.
type Event struct {
	Type     EventType
	Frame    uint64
	Molecule string
	Value    float64 // speed, auto-rotate (0/1) or width depending on Type
	Detail   string
}

// LogEvent logs the event using slog.
func (e Event) LogEvent() {
	slog.Debug("viewer event",
		"type", e.Type.String(),
		"frame", e.Frame,
		"molecule", e.Molecule,
		"value", e.Value,
		"detail", e.Detail,
	)
}

// EventCSV is the flat CSV form of an Event.
type EventCSV struct {
	Session  string  `csv:"session"`
	Frame    uint64  `csv:"frame"`
	Type     string  `csv:"type"`
	Molecule string  `csv:"molecule"`
	Value    float64 `csv:"value"`
	Detail   string  `csv:"detail"`
}

// ToCSV converts the event to its CSV row.
func (e Event) ToCSV() EventCSV {
	return EventCSV{
		Frame:    e.Frame,
		Type:     e.Type.String(),
		Molecule: e.Molecule,
		Value:    e.Value,
		Detail:   e.Detail,
	}
}
