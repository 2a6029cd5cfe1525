// Package telemetry implements the telemetry channels of a deployment:
// named latest-value registers whose every write also records one
// timestamped sample.
package telemetry

import (
	"sort"
	"sync"

	"github.com/openfsw/kestrel/fwk"
)

// A Sample is one recorded channel write.
type Sample struct {
	Time    float64 `json:"time"`
	Channel string  `json:"channel"`
	Value   float64 `json:"value"`
	Text    string  `json:"text"`
}

// A Sink receives every written sample, typically to record it.
type Sink interface {
	RecordSample(s Sample)
}

// A Registry holds the telemetry channels of one deployment.
type Registry struct {
	timeTeller fwk.TimeTeller
	sink       Sink

	lock     sync.Mutex
	channels map[string]*Channel
}

// NewRegistry creates a Registry. The sink may be nil.
func NewRegistry(tt fwk.TimeTeller, sink Sink) *Registry {
	return &Registry{
		timeTeller: tt,
		sink:       sink,
		channels:   make(map[string]*Channel),
	}
}

// Channel returns the channel with the given name, creating it on first use.
// Channel names follow the component naming convention, e.g.
// "Demo.MathSender.VAL1".
func (r *Registry) Channel(name string) *Channel {
	fwk.NameMustBeValid(name)

	r.lock.Lock()
	defer r.lock.Unlock()

	if c, ok := r.channels[name]; ok {
		return c
	}

	c := &Channel{reg: r, name: name}
	r.channels[name] = c

	return c
}

// Latest returns the most recent sample of every channel written so far,
// ordered by channel name.
func (r *Registry) Latest() []Sample {
	r.lock.Lock()
	defer r.lock.Unlock()

	samples := make([]Sample, 0, len(r.channels))
	for _, c := range r.channels {
		if s, ok := c.Latest(); ok {
			samples = append(samples, s)
		}
	}

	sort.Slice(samples, func(i, j int) bool {
		return samples[i].Channel < samples[j].Channel
	})

	return samples
}

// A Channel is one named telemetry point. Every write stamps the engine
// time, replaces the latest value, and hands exactly one sample to the
// registry's sink.
type Channel struct {
	reg  *Registry
	name string

	lock    sync.Mutex
	written bool
	last    Sample
}

// Name returns the channel name.
func (c *Channel) Name() string {
	return c.name
}

// WriteFloat32 updates the channel with a numeric value.
func (c *Channel) WriteFloat32(v float32) {
	c.write(Sample{
		Time:    float64(c.reg.timeTeller.CurrentTime()),
		Channel: c.name,
		Value:   float64(v),
	})
}

// WriteEnum updates the channel with an enumerated value and its text form.
func (c *Channel) WriteEnum(value uint32, text string) {
	c.write(Sample{
		Time:    float64(c.reg.timeTeller.CurrentTime()),
		Channel: c.name,
		Value:   float64(value),
		Text:    text,
	})
}

// Latest returns the most recent sample, if the channel has been written.
func (c *Channel) Latest() (Sample, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.last, c.written
}

func (c *Channel) write(s Sample) {
	c.lock.Lock()
	c.last = s
	c.written = true
	c.lock.Unlock()

	if c.reg.sink != nil {
		c.reg.sink.RecordSample(s)
	}
}
