package deployment

import (
	"github.com/openfsw/kestrel/command"
	"github.com/openfsw/kestrel/datarecording"
	"github.com/openfsw/kestrel/events"
	"github.com/openfsw/kestrel/telemetry"
)

// Table names in the deployment database.
const (
	eventsTable    = "events"
	telemetryTable = "telemetry"
	commandsTable  = "commands"
	runTable       = "run"
)

type eventSink struct {
	rec datarecording.DataRecorder
}

func (s eventSink) RecordEvent(e events.Entry) {
	s.rec.InsertData(eventsTable, e)
}

type sampleSink struct {
	rec datarecording.DataRecorder
}

func (s sampleSink) RecordSample(sample telemetry.Sample) {
	s.rec.InsertData(telemetryTable, sample)
}

type completionSink struct {
	rec datarecording.DataRecorder
}

func (s completionSink) RecordCompletion(c command.Completion) {
	s.rec.InsertData(commandsTable, c)
}
