package command

import (
	"github.com/openfsw/kestrel/events"
	"github.com/openfsw/kestrel/fwk"
)

// A Builder creates dispatchers.
type Builder struct {
	timeTeller    fwk.TimeTeller
	events        *events.Reporter
	sink          Sink
	queueCapacity int
}

// MakeBuilder returns a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		queueCapacity: 16,
	}
}

// WithTimeTeller sets the time source used to stamp completion records.
func (b Builder) WithTimeTeller(tt fwk.TimeTeller) Builder {
	b.timeTeller = tt
	return b
}

// WithEvents sets the reporter the dispatcher posts events through.
func (b Builder) WithEvents(r *events.Reporter) Builder {
	b.events = r
	return b
}

// WithSink sets the completion record sink.
func (b Builder) WithSink(s Sink) Builder {
	b.sink = s
	return b
}

// WithQueueCapacity sets the capacity of the request queue.
func (b Builder) WithQueueCapacity(n int) Builder {
	b.queueCapacity = n
	return b
}

// Build creates a dispatcher with the given name.
func (b Builder) Build(name string) *Dispatcher {
	if b.timeTeller == nil {
		panic("time teller is not given")
	}

	if b.events == nil {
		panic("events reporter is not given")
	}

	d := &Dispatcher{
		timeTeller: b.timeTeller,
		sink:       b.sink,
		routes:     make(map[Opcode]fwk.Port),
		counts:     make(map[Status]uint64),
	}

	d.QueuedComponent = fwk.NewQueuedComponent(
		name, b.queueCapacity, d.dispatch)
	d.ev = b.events.Logger(name)

	d.CmdIn = fwk.NewAsyncInputPort(
		d, d.QueuedComponent, fwk.BuildName(name, "CmdIn"))
	d.AddPort("CmdIn", d.CmdIn)

	d.RespIn = fwk.NewSyncInputPort(
		d, d.handleResponse, fwk.BuildName(name, "RespIn"))
	d.AddPort("RespIn", d.RespIn)

	d.SchedIn = fwk.NewSyncInputPort(
		d, d.handleSched, fwk.BuildName(name, "SchedIn"))
	d.AddPort("SchedIn", d.SchedIn)

	return d
}
