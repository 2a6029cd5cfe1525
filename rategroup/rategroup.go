// Package rategroup implements the periodic drivers of a deployment. A rate
// group is a ticking component that, on every cycle, emits one SchedTick on
// each member port, synchronously, in registration order. Queued components
// connect their SchedIn ports to a rate group and drain their message
// queues when the tick arrives.
package rategroup

import (
	"fmt"
	"log"

	"github.com/openfsw/kestrel/fwk"
)

// A Comp is one rate group.
type Comp struct {
	*fwk.TickingComponent
	fwk.MiddlewareHolder

	cycleLimit uint64
	cycle      uint64
	schedOuts  []fwk.Port
}

// AddSchedOut appends a member port. The port must be connected to the
// SchedIn port of the member before the engine runs. Members are ticked in
// the order they were added; the SchedTick context carries the member's
// position.
func (c *Comp) AddSchedOut() fwk.Port {
	p := fwk.NewRequiredOutputPort(c,
		fwk.BuildNameWithIndex(c.Name(), "SchedOut", len(c.schedOuts)))
	c.AddPort(fmt.Sprintf("SchedOut[%d]", len(c.schedOuts)), p)
	c.schedOuts = append(c.schedOuts, p)

	return p
}

// Cycle returns the number of completed cycles.
func (c *Comp) Cycle() uint64 {
	return c.cycle
}

// Tick runs one cycle.
func (c *Comp) Tick() bool {
	return c.MiddlewareHolder.Tick()
}

type middleware struct {
	*Comp
}

// Tick fans a SchedTick out to every member. Members run their handlers
// inline, so the whole cycle completes before Tick returns. Progress stops
// once the cycle limit is reached.
func (m middleware) Tick() bool {
	if m.cycleLimit > 0 && m.cycle >= m.cycleLimit {
		return false
	}

	m.cycle++

	for i, p := range m.schedOuts {
		tick := &fwk.SchedTick{Context: uint32(i)}
		tick.ID = fwk.GetIDGenerator().Generate()
		tick.Src = p.AsRemote()

		if err := p.Send(tick); err != nil {
			log.Panicf("rate group tick rejected: %s", err.Reason)
		}
	}

	return true
}
