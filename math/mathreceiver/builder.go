package mathreceiver

import (
	"github.com/openfsw/kestrel/events"
	"github.com/openfsw/kestrel/fwk"
	"github.com/openfsw/kestrel/param"
	"github.com/openfsw/kestrel/telemetry"
)

// A Builder can build math receivers.
type Builder struct {
	params        *param.Store
	telemetry     *telemetry.Registry
	events        *events.Reporter
	queueCapacity int
}

// MakeBuilder returns a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		queueCapacity: 16,
	}
}

// WithParams sets the parameter store that holds the FACTOR parameter.
func (b Builder) WithParams(s *param.Store) Builder {
	b.params = s
	return b
}

// WithTelemetry sets the telemetry registry the receiver publishes to.
func (b Builder) WithTelemetry(r *telemetry.Registry) Builder {
	b.telemetry = r
	return b
}

// WithEvents sets the events reporter the receiver posts to.
func (b Builder) WithEvents(r *events.Reporter) Builder {
	b.events = r
	return b
}

// WithQueueCapacity sets the capacity of the central message queue.
func (b Builder) WithQueueCapacity(n int) Builder {
	b.queueCapacity = n
	return b
}

// Build creates a math receiver with the given name and registers its FACTOR
// parameter.
func (b Builder) Build(name string) *Comp {
	if b.params == nil {
		panic("parameter store is not given")
	}

	if b.telemetry == nil {
		panic("telemetry registry is not given")
	}

	if b.events == nil {
		panic("events reporter is not given")
	}

	c := &Comp{params: b.params}
	c.QueuedComponent = fwk.NewQueuedComponent(
		name, b.queueCapacity, c.dispatch)
	c.ev = b.events.Logger(name)

	c.opCh = b.telemetry.Channel(fwk.BuildName(name, "OPERATION"))
	c.factorCh = b.telemetry.Channel(fwk.BuildName(name, "FACTOR"))

	b.params.Register(param.Float32Param{
		ID:       FactorID,
		Name:     "FACTOR",
		Default:  1.0,
		Validate: mustBeFinite,
	}, c)

	c.OpIn = fwk.NewAsyncInputPort(
		c, c.QueuedComponent, fwk.BuildName(name, "OpIn"))
	c.AddPort("OpIn", c.OpIn)

	c.CmdIn = fwk.NewAsyncInputPort(
		c, c.QueuedComponent, fwk.BuildName(name, "CmdIn"))
	c.AddPort("CmdIn", c.CmdIn)

	c.SchedIn = fwk.NewSyncInputPort(
		c, c.handleSched, fwk.BuildName(name, "SchedIn"))
	c.AddPort("SchedIn", c.SchedIn)

	c.ResultOut = fwk.NewRequiredOutputPort(
		c, fwk.BuildName(name, "ResultOut"))
	c.AddPort("ResultOut", c.ResultOut)

	c.RespOut = fwk.NewOutputPort(c, fwk.BuildName(name, "RespOut"))
	c.AddPort("RespOut", c.RespOut)

	return c
}
