package events

import (
	"fmt"
	"log"
	"sync"

	"github.com/openfsw/kestrel/fwk"
)

// recentCap bounds the ring of entries kept for inspection.
const recentCap = 128

// A Reporter collects the events of one deployment. Entries are timestamped
// with the deployment engine's time, written as one log line each, kept in a
// bounded ring of recent entries, and forwarded to an optional sink.
type Reporter struct {
	timeTeller fwk.TimeTeller
	logger     *log.Logger
	sink       Sink

	lock   sync.Mutex
	recent []Entry
}

// NewReporter creates a Reporter. A nil logger drops the log line; the sink
// may be nil.
func NewReporter(tt fwk.TimeTeller, logger *log.Logger, sink Sink) *Reporter {
	return &Reporter{
		timeTeller: tt,
		logger:     logger,
		sink:       sink,
	}
}

// Logger returns the event scope of one component. Throttle counters are
// kept per scope, so two components posting the same kind throttle
// independently.
func (r *Reporter) Logger(component string) *Logger {
	return &Logger{
		rep:       r,
		component: component,
		counts:    make(map[string]int),
	}
}

// Recent returns the retained entries, oldest first.
func (r *Reporter) Recent() []Entry {
	r.lock.Lock()
	defer r.lock.Unlock()

	return append([]Entry(nil), r.recent...)
}

func (r *Reporter) emit(e Entry) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if len(r.recent) == recentCap {
		copy(r.recent, r.recent[1:])
		r.recent = r.recent[:recentCap-1]
	}
	r.recent = append(r.recent, e)

	if r.logger != nil {
		r.logger.Printf("%.3f %s %s %s: %s",
			e.Time, e.Severity, e.Component, e.Name, e.Message)
	}

	if r.sink != nil {
		r.sink.RecordEvent(e)
	}
}

// A Logger posts events on behalf of one component.
type Logger struct {
	rep       *Reporter
	component string

	lock   sync.Mutex
	counts map[string]int
}

// Post emits one event. A post suppressed by the kind's throttle returns
// false and has no side effects. An accepted post produces exactly one
// entry and returns true.
func (l *Logger) Post(k Kind, args ...any) bool {
	if !l.admit(k) {
		return false
	}

	l.rep.emit(Entry{
		Time:      float64(l.rep.timeTeller.CurrentTime()),
		Component: l.component,
		Name:      k.Name,
		Severity:  k.Severity.String(),
		Message:   fmt.Sprintf(k.Format, args...),
	})

	return true
}

// ClearThrottle resets the throttle counter of one kind so emission
// resumes.
func (l *Logger) ClearThrottle(k Kind) {
	l.lock.Lock()
	delete(l.counts, k.Name)
	l.lock.Unlock()
}

func (l *Logger) admit(k Kind) bool {
	if k.Throttle <= 0 {
		return true
	}

	l.lock.Lock()
	defer l.lock.Unlock()

	if l.counts[k.Name] >= k.Throttle {
		return false
	}

	l.counts[k.Name]++

	return true
}
