package mathsender

import (
	"github.com/openfsw/kestrel/events"
	"github.com/openfsw/kestrel/fwk"
	"github.com/openfsw/kestrel/telemetry"
)

// A Builder can build math senders.
type Builder struct {
	telemetry *telemetry.Registry
	events    *events.Reporter
}

// MakeBuilder returns a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{}
}

// WithTelemetry sets the telemetry registry the sender publishes to.
func (b Builder) WithTelemetry(r *telemetry.Registry) Builder {
	b.telemetry = r
	return b
}

// WithEvents sets the events reporter the sender posts to.
func (b Builder) WithEvents(r *events.Reporter) Builder {
	b.events = r
	return b
}

// Build creates a math sender with the given name.
func (b Builder) Build(name string) *Comp {
	if b.telemetry == nil {
		panic("telemetry registry is not given")
	}

	if b.events == nil {
		panic("events reporter is not given")
	}

	c := &Comp{}
	c.ComponentBase = fwk.NewComponentBase(name)
	c.ev = b.events.Logger(name)

	c.val1Ch = b.telemetry.Channel(fwk.BuildName(name, "VAL1"))
	c.opCh = b.telemetry.Channel(fwk.BuildName(name, "OP"))
	c.val2Ch = b.telemetry.Channel(fwk.BuildName(name, "VAL2"))
	c.resultCh = b.telemetry.Channel(fwk.BuildName(name, "RESULT"))

	c.CmdIn = fwk.NewSyncInputPort(c, c.handleCmd,
		fwk.BuildName(name, "CmdIn"))
	c.AddPort("CmdIn", c.CmdIn)

	c.ResultIn = fwk.NewSyncInputPort(c, c.handleResult,
		fwk.BuildName(name, "ResultIn"))
	c.AddPort("ResultIn", c.ResultIn)

	c.OpOut = fwk.NewRequiredOutputPort(c, fwk.BuildName(name, "OpOut"))
	c.AddPort("OpOut", c.OpOut)

	c.RespOut = fwk.NewOutputPort(c, fwk.BuildName(name, "RespOut"))
	c.AddPort("RespOut", c.RespOut)

	return c
}
