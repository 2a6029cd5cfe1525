// Package deployment assembles a complete deployment: the engine, the wire,
// the shared services (events, telemetry, parameters, command completion
// records), the monitor, and the registry of every component and port.
package deployment

import (
	"github.com/openfsw/kestrel/command"
	"github.com/openfsw/kestrel/datarecording"
	"github.com/openfsw/kestrel/events"
	"github.com/openfsw/kestrel/fwk"
	"github.com/openfsw/kestrel/monitoring"
	"github.com/openfsw/kestrel/param"
	"github.com/openfsw/kestrel/telemetry"
)

// A Deployment provides the services required to assemble and run a set of
// components.
type Deployment struct {
	id string

	engine fwk.Engine
	wire   *fwk.Wire

	dataRecorder datarecording.DataRecorder
	monitor      *monitoring.Monitor

	params    *param.Store
	events    *events.Reporter
	telemetry *telemetry.Registry

	components    []fwk.Component
	compNameIndex map[string]int
	ports         []fwk.Port
	portNameIndex map[string]int
	plugged       map[string]bool
}

// ID returns the unique ID of the deployment run.
func (d *Deployment) ID() string {
	return d.id
}

// GetEngine returns the engine that drives the deployment.
func (d *Deployment) GetEngine() fwk.Engine {
	return d.engine
}

// GetDataRecorder returns the data recorder used in the deployment.
func (d *Deployment) GetDataRecorder() datarecording.DataRecorder {
	return d.dataRecorder
}

// GetMonitor returns the monitor used in the deployment. It is nil when
// monitoring is disabled.
func (d *Deployment) GetMonitor() *monitoring.Monitor {
	return d.monitor
}

// Params returns the shared parameter store.
func (d *Deployment) Params() *param.Store {
	return d.params
}

// Events returns the shared events reporter.
func (d *Deployment) Events() *events.Reporter {
	return d.events
}

// Telemetry returns the shared telemetry registry.
func (d *Deployment) Telemetry() *telemetry.Registry {
	return d.telemetry
}

// CommandSink returns a sink that records command completions in the
// deployment's database.
func (d *Deployment) CommandSink() command.Sink {
	return completionSink{rec: d.dataRecorder}
}

// RegisterComponent registers a component and all of its ports with the
// deployment. Registering two components with the same name panics.
func (d *Deployment) RegisterComponent(c fwk.Component) {
	compName := c.Name()
	if _, ok := d.compNameIndex[compName]; ok {
		panic("component " + compName + " already registered")
	}

	d.components = append(d.components, c)
	d.compNameIndex[compName] = len(d.components) - 1

	for _, p := range c.Ports() {
		d.registerPort(p)
	}

	if d.monitor != nil {
		d.monitor.RegisterComponent(c)
	}
}

func (d *Deployment) registerPort(p fwk.Port) {
	portName := p.Name()
	if _, ok := d.portNameIndex[portName]; ok {
		panic("port " + portName + " already registered")
	}

	d.ports = append(d.ports, p)
	d.portNameIndex[portName] = len(d.ports) - 1
}

// GetComponentByName returns the component with the given name.
func (d *Deployment) GetComponentByName(name string) fwk.Component {
	i, ok := d.compNameIndex[name]
	if !ok {
		panic("component " + name + " not registered")
	}

	return d.components[i]
}

// GetPortByName returns the port with the given name.
func (d *Deployment) GetPortByName(name string) fwk.Port {
	i, ok := d.portNameIndex[name]
	if !ok {
		panic("port " + name + " not registered")
	}

	return d.ports[i]
}

// Components returns all registered components.
func (d *Deployment) Components() []fwk.Component {
	return d.components
}

// Connect routes messages sent on src to dst. Both ports are plugged into
// the deployment's wire on first use, so one port can carry several
// connections.
func (d *Deployment) Connect(src, dst fwk.Port) {
	d.plugIn(src)
	d.plugIn(dst)
	d.wire.Connect(src, dst)
}

func (d *Deployment) plugIn(p fwk.Port) {
	if d.plugged[p.Name()] {
		return
	}

	d.wire.PlugIn(p)
	d.plugged[p.Name()] = true
}

// Terminate ends the deployment run and makes its records durable.
func (d *Deployment) Terminate() {
	recordRunEnd(d.dataRecorder)
	d.dataRecorder.Close()
}
