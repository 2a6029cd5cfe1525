package fwk

import "sync"

// HookPosQueueOverflow marks a message rejected because the central message
// queue of a component is full.
var HookPosQueueOverflow = &HookPos{Name: "Queue Overflow"}

// SchedTick is the message a rate group delivers to the SchedIn port of each
// member component. It tells the member to drain the messages that are
// currently waiting in its queue. Context carries the member's position in
// the rate group so one handler can serve several tick sources.
type SchedTick struct {
	MsgMeta

	Context uint32
}

// Meta returns the meta data of the message.
func (t *SchedTick) Meta() *MsgMeta {
	return &t.MsgMeta
}

// Clone returns a cloned SchedTick with a different ID.
func (t *SchedTick) Clone() Msg {
	cloneMsg := *t
	cloneMsg.ID = GetIDGenerator().Generate()

	return &cloneMsg
}

// A QueuedComponent is the base for components that receive messages
// asynchronously and process them later, under an explicit tick.
//
// All asynchronous input ports of the component feed one central
// fixed-capacity FIFO queue. Producers only ever touch the queue, never the
// component's state, so the queue mutex is the single synchronization point
// between a component and the rest of the deployment. Handlers run on the
// drain caller's goroutine, one message at a time, outside the queue lock.
//
// Draining is pull-based: nothing happens until DispatchAvailable or
// DispatchOne is called, normally from the component's SchedIn handler when a
// rate group ticks. A component must have exactly one drain driver.
type QueuedComponent struct {
	*ComponentBase

	lock      sync.Mutex
	queue     Buffer
	overflows uint64

	dispatch MsgHandler
}

// NewQueuedComponent creates the queued base for a component. The dispatch
// function is the component's single message dispatch switch; it receives
// every message popped from the queue.
func NewQueuedComponent(
	name string,
	capacity int,
	dispatch MsgHandler,
) *QueuedComponent {
	c := new(QueuedComponent)
	c.ComponentBase = NewComponentBase(name)
	c.queue = NewBuffer(BuildName(name, "MsgQueue"), capacity)
	c.dispatch = dispatch

	return c
}

// Enqueue places a message at the tail of the central queue. When the queue
// is full the message is rejected: the overflow is counted, hooks fire, and
// the producer gets a SendError. An overflow is never silent.
func (c *QueuedComponent) Enqueue(msg Msg) *SendError {
	c.lock.Lock()

	if !c.queue.CanPush() {
		c.overflows++
		c.lock.Unlock()

		c.InvokeHook(HookCtx{
			Domain: c,
			Pos:    HookPosQueueOverflow,
			Item:   msg,
		})

		return NewSendError("queue full")
	}

	c.queue.Push(msg)
	c.lock.Unlock()

	return nil
}

// MessagesAvailable returns the number of messages waiting in the queue. It
// has no side effects and may be called repeatedly.
func (c *QueuedComponent) MessagesAvailable() int {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.queue.Size()
}

// DispatchOne pops the oldest waiting message and runs the dispatch function
// on it. The handler runs to completion before the next message can be
// popped. Returns false when the queue is empty.
func (c *QueuedComponent) DispatchOne() bool {
	c.lock.Lock()
	item := c.queue.Pop()
	c.lock.Unlock()

	if item == nil {
		return false
	}

	c.dispatch(item.(Msg))

	return true
}

// DispatchAvailable drains the messages that are waiting when the call
// starts: it snapshots the queue depth and dispatches exactly that many
// messages, in arrival order. Messages enqueued while the drain runs stay in
// the queue for the next call, so one tick can never process unboundedly.
// Returns the number of messages dispatched.
func (c *QueuedComponent) DispatchAvailable() int {
	numMsgs := c.MessagesAvailable()

	for i := 0; i < numMsgs; i++ {
		c.DispatchOne()
	}

	return numMsgs
}

// OverflowCount returns how many messages have been rejected because the
// queue was full.
func (c *QueuedComponent) OverflowCount() uint64 {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.overflows
}

// MessageQueue exposes the central queue for registration and monitoring.
func (c *QueuedComponent) MessageQueue() Buffer {
	return c.queue
}
