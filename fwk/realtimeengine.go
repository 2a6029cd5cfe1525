package fwk

import (
	"log"
	"reflect"
	"sync"
	"time"
)

// A RealTimeEngine is an Engine that paces events against the wall clock.
// Virtual second zero is anchored at the moment Run starts; an event
// scheduled at t runs once the wall clock reaches anchor+t. Live deployments
// use it so rate groups tick in real time, while tests keep using the
// SerialEngine and finish instantly.
//
// Run returns when no events remain or after Stop is called. A deployment
// that must stay up keeps an unbounded rate group scheduled.
type RealTimeEngine struct {
	HookableBase

	timeLock sync.RWMutex
	time     VTimeInSec
	queue    EventQueue

	wake     chan struct{}
	stop     chan struct{}
	stopOnce sync.Once

	isPaused     bool
	isPausedLock sync.Mutex
	pauseLock    sync.Mutex

	singleRunLock sync.Mutex

	anchorLock sync.Mutex
	anchor     time.Time
	pausedAt   time.Time
}

// NewRealTimeEngine creates a RealTimeEngine.
func NewRealTimeEngine() *RealTimeEngine {
	e := new(RealTimeEngine)

	e.queue = NewInsertionQueue()
	e.wake = make(chan struct{}, 1)
	e.stop = make(chan struct{})

	return e
}

// Schedule registers an event to happen in the future. Scheduling is safe
// from any goroutine; an event earlier than every waiting event shortens the
// engine's current sleep.
func (e *RealTimeEngine) Schedule(evt Event) {
	now := e.readNow()
	if evt.Time() < now {
		log.Panic("scheduling an event earlier than current time")
	}

	e.queue.Push(evt)

	select {
	case e.wake <- struct{}{}:
	default:
	}
}

func (e *RealTimeEngine) readNow() VTimeInSec {
	e.timeLock.RLock()
	t := e.time
	e.timeLock.RUnlock()
	return t
}

func (e *RealTimeEngine) writeNow(t VTimeInSec) {
	e.timeLock.Lock()
	e.time = t
	e.timeLock.Unlock()
}

// Run processes events as their wall-clock due times arrive.
func (e *RealTimeEngine) Run() error {
	e.singleRunLock.Lock()
	defer e.singleRunLock.Unlock()

	e.anchorLock.Lock()
	e.anchor = time.Now()
	e.anchorLock.Unlock()

	for {
		select {
		case <-e.stop:
			return nil
		default:
		}

		if e.queue.Len() == 0 {
			return nil
		}

		if !e.waitUntilDue(e.queue.Peek()) {
			return nil
		}

		e.pauseLock.Lock()

		evt := e.queue.Peek()
		if !e.isDue(evt) {
			// The anchor moved during a pause, or an earlier event arrived.
			e.pauseLock.Unlock()
			continue
		}

		e.queue.Pop()
		e.runEvent(evt)

		e.pauseLock.Unlock()
	}
}

// waitUntilDue sleeps until the earliest event is due. It returns false when
// the engine is stopped while waiting. Newly scheduled events interrupt the
// sleep, because the earliest event may have changed.
func (e *RealTimeEngine) waitUntilDue(evt Event) bool {
	for {
		d := time.Until(e.wallTimeOf(evt.Time()))
		if d <= 0 {
			return true
		}

		timer := time.NewTimer(d)
		select {
		case <-e.stop:
			timer.Stop()
			return false
		case <-e.wake:
			timer.Stop()
			evt = e.queue.Peek()
		case <-timer.C:
			return true
		}
	}
}

func (e *RealTimeEngine) isDue(evt Event) bool {
	return !e.wallTimeOf(evt.Time()).After(time.Now())
}

func (e *RealTimeEngine) wallTimeOf(t VTimeInSec) time.Time {
	e.anchorLock.Lock()
	defer e.anchorLock.Unlock()

	return e.anchor.Add(time.Duration(float64(t) * float64(time.Second)))
}

func (e *RealTimeEngine) runEvent(evt Event) {
	now := e.readNow()
	if evt.Time() < now {
		log.Panicf(
			"cannot run event in the past, evt %s @ %.10f, now %.10f",
			reflect.TypeOf(evt), evt.Time(), now,
		)
	}
	e.writeNow(evt.Time())

	hookCtx := HookCtx{
		Domain: e,
		Pos:    HookPosBeforeEvent,
		Item:   evt,
	}
	e.InvokeHook(hookCtx)

	handler := evt.Handler()
	_ = handler.Handle(evt)

	hookCtx.Pos = HookPosAfterEvent
	e.InvokeHook(hookCtx)
}

// Stop makes Run return after the event in flight, if any, completes.
func (e *RealTimeEngine) Stop() {
	e.stopOnce.Do(func() {
		close(e.stop)
	})
}

// Pause holds event processing. The wall-clock anchor shifts by the length
// of the pause, so event spacing survives across Pause/Continue.
func (e *RealTimeEngine) Pause() {
	e.isPausedLock.Lock()
	defer e.isPausedLock.Unlock()

	if e.isPaused {
		return
	}

	e.pauseLock.Lock()
	e.isPaused = true

	e.anchorLock.Lock()
	e.pausedAt = time.Now()
	e.anchorLock.Unlock()
}

// Continue resumes a paused engine.
func (e *RealTimeEngine) Continue() {
	e.isPausedLock.Lock()
	defer e.isPausedLock.Unlock()

	if !e.isPaused {
		return
	}

	e.anchorLock.Lock()
	e.anchor = e.anchor.Add(time.Since(e.pausedAt))
	e.anchorLock.Unlock()

	e.pauseLock.Unlock()
	e.isPaused = false
}

// CurrentTime returns the time of the event the engine is at.
func (e *RealTimeEngine) CurrentTime() VTimeInSec {
	return e.readNow()
}
