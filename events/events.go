// Package events implements severity-classified event reporting with
// per-component throttling.
//
// Components post events through a scoped Logger. Every accepted post
// produces exactly one log line and one recorded entry; a suppressed post
// produces nothing.
package events

import "fmt"

// Severity classifies an event for ground filtering.
type Severity uint8

const (
	// Diagnostic events trace detailed software behavior.
	Diagnostic Severity = iota

	// ActivityLow events mark routine activity.
	ActivityLow

	// ActivityHigh events mark important activity.
	ActivityHigh

	// WarningLow events report conditions worth attention.
	WarningLow

	// WarningHigh events report serious conditions.
	WarningHigh

	// Fatal events report unrecoverable conditions.
	Fatal
)

func (s Severity) String() string {
	switch s {
	case Diagnostic:
		return "DIAGNOSTIC"
	case ActivityLow:
		return "ACTIVITY_LO"
	case ActivityHigh:
		return "ACTIVITY_HI"
	case WarningLow:
		return "WARNING_LO"
	case WarningHigh:
		return "WARNING_HI"
	case Fatal:
		return "FATAL"
	}

	return fmt.Sprintf("Severity(%d)", uint8(s))
}

// A Kind declares one event: its name, severity, message format, and
// throttle. Kinds are package-level values in the component packages that
// post them.
type Kind struct {
	Name     string
	Severity Severity

	// Throttle caps how many times the event is emitted before further
	// posts are suppressed. 0 means unthrottled. Logger.ClearThrottle
	// resets the count.
	Throttle int

	// Format is the fmt format string for the event message.
	Format string
}

// An Entry is one accepted event.
type Entry struct {
	Time      float64 `json:"time"`
	Component string  `json:"component"`
	Name      string  `json:"name"`
	Severity  string  `json:"severity"`
	Message   string  `json:"message"`
}

// A Sink receives every accepted entry, typically to record it.
type Sink interface {
	RecordEvent(e Entry)
}
