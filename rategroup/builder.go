package rategroup

import "github.com/openfsw/kestrel/fwk"

// A Builder creates rate groups.
type Builder struct {
	engine     fwk.Engine
	freq       fwk.Freq
	cycleLimit uint64
}

// MakeBuilder returns a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		freq: 1 * fwk.Hz,
	}
}

// WithEngine sets the engine that schedules the ticks.
func (b Builder) WithEngine(e fwk.Engine) Builder {
	b.engine = e
	return b
}

// WithFreq sets the tick rate.
func (b Builder) WithFreq(f fwk.Freq) Builder {
	b.freq = f
	return b
}

// WithCycleLimit bounds how many cycles the rate group runs. 0 means
// unbounded. A bounded group stops making progress after the limit, which
// lets a virtual-time engine run out of events and return.
func (b Builder) WithCycleLimit(n uint64) Builder {
	b.cycleLimit = n
	return b
}

// Build creates a rate group with the given name.
func (b Builder) Build(name string) *Comp {
	if b.engine == nil {
		panic("engine is not given")
	}

	c := &Comp{cycleLimit: b.cycleLimit}
	c.TickingComponent = fwk.NewTickingComponent(name, b.engine, b.freq, c)
	c.AddMiddleware(middleware{Comp: c})

	return c
}
