// Package mathreceiver implements the working side of the math pipeline: a
// queued component that performs requested operations, scaled by a stored
// FACTOR parameter, when its rate group tells it to drain.
package mathreceiver

import (
	"fmt"
	"log"
	"math"

	"github.com/openfsw/kestrel/command"
	"github.com/openfsw/kestrel/events"
	"github.com/openfsw/kestrel/fwk"
	"github.com/openfsw/kestrel/math/mathop"
	"github.com/openfsw/kestrel/param"
	"github.com/openfsw/kestrel/telemetry"
)

// Opcodes of the commands the receiver serves.
const (
	ClearEventThrottleOpcode command.Opcode = 0x200
	SetFactorOpcode          command.Opcode = 0x201
)

// FactorID identifies the FACTOR parameter in the parameter store.
const FactorID param.ID = 1

// A ClearEventThrottleCmd re-enables the FACTOR_UPDATED event after the
// throttle has silenced it.
type ClearEventThrottleCmd struct {
	fwk.MsgMeta
	command.RequestMeta
}

// Meta returns the meta data of the message.
func (c *ClearEventThrottleCmd) Meta() *fwk.MsgMeta {
	return &c.MsgMeta
}

// Clone returns a cloned ClearEventThrottleCmd with a different ID.
func (c *ClearEventThrottleCmd) Clone() fwk.Msg {
	cloneMsg := *c
	cloneMsg.ID = fwk.GetIDGenerator().Generate()

	return &cloneMsg
}

// A SetFactorCmd stores a new value for the FACTOR parameter.
type SetFactorCmd struct {
	fwk.MsgMeta
	command.RequestMeta

	Value float32
}

// Meta returns the meta data of the message.
func (c *SetFactorCmd) Meta() *fwk.MsgMeta {
	return &c.MsgMeta
}

// Clone returns a cloned SetFactorCmd with a different ID.
func (c *SetFactorCmd) Clone() fwk.Msg {
	cloneMsg := *c
	cloneMsg.ID = fwk.GetIDGenerator().Generate()

	return &cloneMsg
}

var (
	operationPerformedEvent = events.Kind{
		Name:     "OPERATION_PERFORMED",
		Severity: events.ActivityHigh,
		Format:   "Math operation performed: %v",
	}
	factorUpdatedEvent = events.Kind{
		Name:     "FACTOR_UPDATED",
		Severity: events.ActivityHigh,
		Throttle: 3,
		Format:   "Factor updated to %v",
	}
	throttleClearedEvent = events.Kind{
		Name:     "THROTTLE_CLEARED",
		Severity: events.ActivityHigh,
		Format:   "Event throttle cleared",
	}
)

// A Comp is the math receiver. All of its work arrives through the central
// message queue and runs when the rate group ticks SchedIn, so operation
// requests and commands are serialized in arrival order without locking any
// component state.
type Comp struct {
	*fwk.QueuedComponent

	OpIn      fwk.Port
	CmdIn     fwk.Port
	SchedIn   fwk.Port
	ResultOut fwk.Port
	RespOut   fwk.Port

	params   *param.Store
	ev       *events.Logger
	opCh     *telemetry.Channel
	factorCh *telemetry.Channel
}

func (c *Comp) dispatch(msg fwk.Msg) {
	switch m := msg.(type) {
	case *mathop.OpReq:
		c.doOp(m)
	case *ClearEventThrottleCmd:
		c.clearThrottle(m)
	case *SetFactorCmd:
		c.setFactor(m)
	case command.Request:
		c.respond(m.CmdOpcode(), m.CmdSeq(), command.InvalidOpcode)
	default:
		log.Panicf("unexpected message type %T in queue", msg)
	}
}

func (c *Comp) handleSched(msg fwk.Msg) {
	if _, ok := msg.(*fwk.SchedTick); !ok {
		log.Panicf("unexpected message type %T on sched port", msg)
	}

	c.DispatchAvailable()
}

// doOp applies the operation, scales the result by the stored factor, and
// sends the product back to the requester.
func (c *Comp) doOp(req *mathop.OpReq) {
	res, err := mathop.Apply(req.Op, req.Val1, req.Val2)
	if err != nil {
		log.Panicf("cannot perform operation: %s", err)
	}

	res *= c.factor()

	c.ev.Post(operationPerformedEvent, req.Op)
	c.opCh.WriteEnum(uint32(req.Op), req.Op.String())

	rsp := &mathop.OpRsp{Result: res}
	rsp.ID = fwk.GetIDGenerator().Generate()
	rsp.Src = c.ResultOut.AsRemote()

	if err := c.ResultOut.Send(rsp); err != nil {
		log.Panicf("result rejected: %s", err.Reason)
	}
}

func (c *Comp) clearThrottle(cmd *ClearEventThrottleCmd) {
	c.ev.ClearThrottle(factorUpdatedEvent)
	c.ev.Post(throttleClearedEvent)
	c.respond(cmd.CmdOpcode(), cmd.CmdSeq(), command.OK)
}

func (c *Comp) setFactor(cmd *SetFactorCmd) {
	if err := c.params.SetFloat32(FactorID, cmd.Value); err != nil {
		c.respond(cmd.CmdOpcode(), cmd.CmdSeq(), command.ValidationError)
		return
	}

	c.factorCh.WriteFloat32(cmd.Value)
	c.respond(cmd.CmdOpcode(), cmd.CmdSeq(), command.OK)
}

// ParameterUpdated confirms a committed parameter write with an event. The
// store calls it after the new value is in place, so a re-read here always
// sees the committed value.
func (c *Comp) ParameterUpdated(id param.ID) {
	if id != FactorID {
		log.Panicf("unknown parameter %d", id)
	}

	c.ev.Post(factorUpdatedEvent, c.factor())
}

func (c *Comp) factor() float32 {
	v, validity := c.params.Float32(FactorID)
	if validity != param.Valid && validity != param.Default {
		log.Panicf("factor parameter is %s", validity)
	}

	return v
}

func (c *Comp) respond(
	op command.Opcode,
	seq command.Seq,
	st command.Status,
) {
	rsp := &command.Response{Opcode: op, Seq: seq, Status: st}
	rsp.ID = fwk.GetIDGenerator().Generate()
	rsp.Src = c.RespOut.AsRemote()

	c.RespOut.Send(rsp)
}

func mustBeFinite(v float32) error {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("factor must be finite, got %v", v)
	}

	return nil
}
