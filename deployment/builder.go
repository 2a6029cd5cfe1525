package deployment

import (
	"log"

	"github.com/rs/xid"

	"github.com/openfsw/kestrel/command"
	"github.com/openfsw/kestrel/datarecording"
	"github.com/openfsw/kestrel/events"
	"github.com/openfsw/kestrel/fwk"
	"github.com/openfsw/kestrel/monitoring"
	"github.com/openfsw/kestrel/param"
	"github.com/openfsw/kestrel/telemetry"
)

// Builder can be used to build a deployment.
type Builder struct {
	realTimeEngine bool
	monitorOn      bool
	monitorPort    int
	outputFileName string
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{
		monitorOn: true,
	}
}

// WithRealTimeEngine makes the deployment pace events against the wall
// clock. The default serial engine processes events as fast as possible,
// which is what tests and batch runs want.
func (b Builder) WithRealTimeEngine() Builder {
	b.realTimeEngine = true
	return b
}

// WithoutMonitoring disables the monitoring server.
func (b Builder) WithoutMonitoring() Builder {
	b.monitorOn = false
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

// WithOutputFileName sets the custom output file name for the data recorder.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.outputFileName = filename
	return b
}

func (b Builder) parametersMustBeValid() {
	if !b.monitorOn && b.monitorPort != 0 {
		panic("monitor port cannot be set when monitoring is disabled")
	}
}

// Build builds the deployment.
func (b Builder) Build() *Deployment {
	b.parametersMustBeValid()

	d := &Deployment{
		compNameIndex: make(map[string]int),
		portNameIndex: make(map[string]int),
		plugged:       make(map[string]bool),
	}

	d.id = xid.New().String()

	outputPath := b.outputFileName
	if outputPath == "" {
		outputPath = "kestrel_" + d.id
	}
	d.dataRecorder = datarecording.New(outputPath)
	d.dataRecorder.CreateTable(eventsTable, events.Entry{})
	d.dataRecorder.CreateTable(telemetryTable, telemetry.Sample{})
	d.dataRecorder.CreateTable(commandsTable, command.Completion{})
	recordRunStart(d.dataRecorder, d.id)

	d.engine = fwk.Engine(fwk.NewSerialEngine())
	if b.realTimeEngine {
		d.engine = fwk.NewRealTimeEngine()
	}

	d.wire = fwk.NewWire("Wire")
	d.params = param.NewStore()
	d.events = events.NewReporter(
		d.engine, log.Default(), eventSink{rec: d.dataRecorder})
	d.telemetry = telemetry.NewRegistry(
		d.engine, sampleSink{rec: d.dataRecorder})

	if b.monitorOn {
		d.monitor = monitoring.NewMonitor()
		if b.monitorPort > 0 {
			d.monitor.WithPortNumber(b.monitorPort)
		}
		d.monitor.RegisterEngine(d.engine)
		d.monitor.RegisterDeploymentServices(d.events, d.telemetry, d.params)
		d.monitor.StartServer()
	}

	return d
}
