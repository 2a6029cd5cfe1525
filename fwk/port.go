package fwk

import "fmt"

// HookPosPortMsgSend marks when a message is sent out from the port.
var HookPosPortMsgSend = &HookPos{Name: "Port Msg Send"}

// HookPosPortMsgRecvd marks when an inbound message is accepted by the port.
var HookPosPortMsgRecvd = &HookPos{Name: "Port Msg Recv"}

// A MsgHandler processes one message delivered to a synchronous input port.
// It runs on the goroutine of whoever delivered the message.
type MsgHandler func(msg Msg)

// An Enqueuer accepts messages into a component's central message queue.
type Enqueuer interface {
	Enqueue(msg Msg) *SendError
}

// A Port is owned by a component and is an endpoint for message exchange.
//
// Ports hold no messages themselves. An asynchronous input port hands
// delivered messages to the owning component's central queue; a synchronous
// input port runs a handler inline; an output port forwards messages through
// the connection it is plugged into.
type Port interface {
	Named
	Hookable

	AsRemote() RemotePort

	SetConnection(conn Connection)
	Component() Component

	// For the connection
	Deliver(msg Msg) *SendError

	// For the component
	Send(msg Msg) *SendError
}

type portBase struct {
	HookableBase

	name string
	comp Component
	conn Connection
}

// Name returns the name of the port.
func (p *portBase) Name() string {
	return p.name
}

// AsRemote returns the remote port name.
func (p *portBase) AsRemote() RemotePort {
	return RemotePort(p.name)
}

// SetConnection sets which connection is plugged into this port.
func (p *portBase) SetConnection(conn Connection) {
	if p.conn != nil {
		panicMsg := fmt.Sprintf(
			"connection already set to %s, now connecting to %s",
			p.conn.Name(), conn.Name(),
		)
		panic(panicMsg)
	}

	p.conn = conn
}

// Component returns the owner component of the port.
func (p *portBase) Component() Component {
	return p.comp
}

// An asyncInputPort enqueues delivered messages into the owning component's
// central queue. The messages wait there until the component drains the queue
// on a tick.
type asyncInputPort struct {
	portBase

	sink Enqueuer
}

// NewAsyncInputPort creates a port whose delivered messages are queued in
// sink for later dispatch.
func NewAsyncInputPort(comp Component, sink Enqueuer, name string) Port {
	NameMustBeValid(name)

	p := new(asyncInputPort)
	p.comp = comp
	p.sink = sink
	p.name = name

	return p
}

// Deliver hands the message to the component's queue. A full queue is
// reported to the caller, never dropped silently.
func (p *asyncInputPort) Deliver(msg Msg) *SendError {
	if err := p.sink.Enqueue(msg); err != nil {
		return err
	}

	if p.NumHooks() > 0 {
		p.InvokeHook(HookCtx{
			Domain: p,
			Pos:    HookPosPortMsgRecvd,
			Item:   msg,
		})
	}

	return nil
}

// Send panics. Input ports do not send.
func (p *asyncInputPort) Send(_ Msg) *SendError {
	panic("send on input port " + p.name)
}

// A syncInputPort invokes a handler for every delivered message, on the
// deliverer's goroutine, before Deliver returns.
type syncInputPort struct {
	portBase

	handler MsgHandler
}

// NewSyncInputPort creates a port that handles delivered messages inline.
func NewSyncInputPort(comp Component, h MsgHandler, name string) Port {
	NameMustBeValid(name)

	p := new(syncInputPort)
	p.comp = comp
	p.handler = h
	p.name = name

	return p
}

// Deliver runs the port's handler to completion and then returns.
func (p *syncInputPort) Deliver(msg Msg) *SendError {
	if p.NumHooks() > 0 {
		p.InvokeHook(HookCtx{
			Domain: p,
			Pos:    HookPosPortMsgRecvd,
			Item:   msg,
		})
	}

	p.handler(msg)

	return nil
}

// Send panics. Input ports do not send.
func (p *syncInputPort) Send(_ Msg) *SendError {
	panic("send on input port " + p.name)
}

// An outputPort emits messages through the connection it is plugged into.
type outputPort struct {
	portBase

	required bool
}

// NewOutputPort creates a port that components use to emit messages. Sending
// while unconnected returns a SendError, for ports whose consumer is
// optional.
func NewOutputPort(comp Component, name string) Port {
	NameMustBeValid(name)

	p := new(outputPort)
	p.comp = comp
	p.name = name

	return p
}

// NewRequiredOutputPort creates an output port that must be connected before
// messages flow. Sending while unconnected is a wiring mistake and panics.
func NewRequiredOutputPort(comp Component, name string) Port {
	NameMustBeValid(name)

	p := new(outputPort)
	p.comp = comp
	p.name = name
	p.required = true

	return p
}

// Send forwards a message to the connected destination port. Delivery happens
// on the caller's goroutine; the return value is the delivery outcome.
func (p *outputPort) Send(msg Msg) *SendError {
	p.portMustBeMsgSrc(msg)

	if p.conn == nil {
		if p.required {
			panic("port " + p.name + " is required but not connected")
		}

		return NewSendError("not connected")
	}

	if err := p.conn.Forward(msg); err != nil {
		return err
	}

	if p.NumHooks() > 0 {
		p.InvokeHook(HookCtx{
			Domain: p,
			Pos:    HookPosPortMsgSend,
			Item:   msg,
		})
	}

	return nil
}

// Deliver panics. Output ports do not receive.
func (p *outputPort) Deliver(_ Msg) *SendError {
	panic("deliver on output port " + p.name)
}

func (p *outputPort) portMustBeMsgSrc(msg Msg) {
	if p.AsRemote() != msg.Meta().Src {
		panic("sending port is not msg src")
	}
}
