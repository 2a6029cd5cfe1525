package command

import (
	"fmt"
	"log"
	"sync"

	"github.com/openfsw/kestrel/events"
	"github.com/openfsw/kestrel/fwk"
)

var (
	cmdDispatchedEvent = events.Kind{
		Name:     "CMD_DISPATCHED",
		Severity: events.Diagnostic,
		Format:   "Command 0x%X seq %d dispatched",
	}
	cmdCompletedEvent = events.Kind{
		Name:     "CMD_COMPLETED",
		Severity: events.ActivityLow,
		Format:   "Command 0x%X seq %d completed",
	}
	cmdFailedEvent = events.Kind{
		Name:     "CMD_FAILED",
		Severity: events.WarningHigh,
		Format:   "Command 0x%X seq %d failed: %v",
	}
	invalidOpcodeEvent = events.Kind{
		Name:     "CMD_INVALID_OPCODE",
		Severity: events.WarningHigh,
		Format:   "Invalid opcode 0x%X",
	}
)

// A Dispatcher routes command requests to the components that implement
// them and accounts for their completion responses.
//
// The dispatcher is itself a queued component: requests enqueue on CmdIn
// and are routed when a rate group ticks SchedIn. Responses arrive
// synchronously on RespIn. A request whose opcode has no route, or whose
// destination queue is full, completes locally with an error status, so no
// command ever disappears silently.
type Dispatcher struct {
	*fwk.QueuedComponent

	CmdIn   fwk.Port
	RespIn  fwk.Port
	SchedIn fwk.Port

	timeTeller fwk.TimeTeller
	ev         *events.Logger
	sink       Sink

	routes map[Opcode]fwk.Port

	lock   sync.Mutex
	counts map[Status]uint64
}

// Register adds a route for an opcode and returns the output port that
// carries it. The deployment connects the returned port to the command
// input of the component that implements the opcode. Routes are added
// during deployment build, before messages flow. Registering an opcode
// twice panics.
func (d *Dispatcher) Register(op Opcode) fwk.Port {
	if _, ok := d.routes[op]; ok {
		log.Panicf("opcode 0x%X is already registered", uint32(op))
	}

	p := fwk.NewRequiredOutputPort(d,
		fwk.BuildNameWithIndex(d.Name(), "CmdOut", len(d.routes)))
	d.AddPort(fmt.Sprintf("CmdOut[%d]", len(d.routes)), p)
	d.routes[op] = p

	return p
}

// Counts returns how many commands completed with each status.
func (d *Dispatcher) Counts() map[Status]uint64 {
	d.lock.Lock()
	defer d.lock.Unlock()

	counts := make(map[Status]uint64, len(d.counts))
	for s, n := range d.counts {
		counts[s] = n
	}

	return counts
}

func (d *Dispatcher) dispatch(msg fwk.Msg) {
	req, ok := msg.(Request)
	if !ok {
		log.Panicf("dispatcher cannot route message type %T", msg)
	}

	out, ok := d.routes[req.CmdOpcode()]
	if !ok {
		d.ev.Post(invalidOpcodeEvent, uint32(req.CmdOpcode()))
		d.complete(req.CmdOpcode(), req.CmdSeq(), InvalidOpcode)

		return
	}

	d.ev.Post(cmdDispatchedEvent,
		uint32(req.CmdOpcode()), uint32(req.CmdSeq()))

	req.Meta().Src = out.AsRemote()
	if err := out.Send(req); err != nil {
		d.complete(req.CmdOpcode(), req.CmdSeq(), Busy)
	}
}

func (d *Dispatcher) handleResponse(msg fwk.Msg) {
	rsp, ok := msg.(*Response)
	if !ok {
		log.Panicf("unexpected message type %T on response port", msg)
	}

	d.complete(rsp.Opcode, rsp.Seq, rsp.Status)
}

func (d *Dispatcher) handleSched(msg fwk.Msg) {
	if _, ok := msg.(*fwk.SchedTick); !ok {
		log.Panicf("unexpected message type %T on sched port", msg)
	}

	d.DispatchAvailable()
}

func (d *Dispatcher) complete(op Opcode, seq Seq, st Status) {
	d.lock.Lock()
	d.counts[st]++
	d.lock.Unlock()

	if st == OK {
		d.ev.Post(cmdCompletedEvent, uint32(op), uint32(seq))
	} else {
		d.ev.Post(cmdFailedEvent, uint32(op), uint32(seq), st)
	}

	if d.sink != nil {
		d.sink.RecordCompletion(Completion{
			Time:   float64(d.timeTeller.CurrentTime()),
			Opcode: uint32(op),
			Seq:    uint32(seq),
			Status: st.String(),
		})
	}
}
