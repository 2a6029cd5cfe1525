package fwk

// TimeTeller can be used to get the current time.
type TimeTeller interface {
	CurrentTime() VTimeInSec
}

// EventScheduler can be used to schedule future events.
type EventScheduler interface {
	Schedule(e Event)
}

// An Engine drives the time-based activity of a deployment. Rate groups
// schedule their tick events on the engine; Run processes the events in time
// order until none remain or the engine is stopped.
type Engine interface {
	Hookable
	TimeTeller
	EventScheduler

	// Run processes all the events until none remain.
	Run() error

	// Pause holds event processing until Continue is called.
	Pause()

	// Continue resumes a paused engine.
	Continue()
}
