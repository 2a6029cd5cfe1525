// Package mathsender implements the commanded side of the math pipeline: a
// passive component that accepts the DO_MATH command, forwards the
// operation to the receiving component, and republishes the asynchronous
// result as telemetry.
package mathsender

import (
	"log"

	"github.com/openfsw/kestrel/command"
	"github.com/openfsw/kestrel/events"
	"github.com/openfsw/kestrel/fwk"
	"github.com/openfsw/kestrel/math/mathop"
	"github.com/openfsw/kestrel/telemetry"
)

// DoMathOpcode identifies the DO_MATH command.
const DoMathOpcode command.Opcode = 0x100

// A DoMathCmd asks the sender to request one math operation.
type DoMathCmd struct {
	fwk.MsgMeta
	command.RequestMeta

	Val1 float32
	Op   mathop.MathOp
	Val2 float32
}

// Meta returns the meta data of the message.
func (c *DoMathCmd) Meta() *fwk.MsgMeta {
	return &c.MsgMeta
}

// Clone returns a cloned DoMathCmd with a different ID.
func (c *DoMathCmd) Clone() fwk.Msg {
	cloneMsg := *c
	cloneMsg.ID = fwk.GetIDGenerator().Generate()

	return &cloneMsg
}

var (
	commandRecvEvent = events.Kind{
		Name:     "COMMAND_RECV",
		Severity: events.ActivityLow,
		Format:   "Math command received: %v %v %v",
	}
	resultEvent = events.Kind{
		Name:     "RESULT",
		Severity: events.ActivityHigh,
		Format:   "Math result is %v",
	}
)

// A Comp is the math sender. It is passive: both input ports run their
// handlers inline on the caller's goroutine and no message is ever queued
// in the component.
type Comp struct {
	*fwk.ComponentBase

	CmdIn    fwk.Port
	ResultIn fwk.Port
	OpOut    fwk.Port
	RespOut  fwk.Port

	ev       *events.Logger
	val1Ch   *telemetry.Channel
	opCh     *telemetry.Channel
	val2Ch   *telemetry.Channel
	resultCh *telemetry.Channel
}

func (c *Comp) handleCmd(msg fwk.Msg) {
	switch cmd := msg.(type) {
	case *DoMathCmd:
		c.doMath(cmd)
	case command.Request:
		c.respond(cmd.CmdOpcode(), cmd.CmdSeq(), command.InvalidOpcode)
	default:
		log.Panicf("unexpected message type %T on command port", msg)
	}
}

// doMath publishes the request telemetry, announces the command, forwards
// the operation, and acknowledges acceptance. The acknowledgment does not
// wait for the result: completion means the request was forwarded.
func (c *Comp) doMath(cmd *DoMathCmd) {
	c.val1Ch.WriteFloat32(cmd.Val1)
	c.opCh.WriteEnum(uint32(cmd.Op), cmd.Op.String())
	c.val2Ch.WriteFloat32(cmd.Val2)

	c.ev.Post(commandRecvEvent, cmd.Val1, cmd.Op, cmd.Val2)

	req := &mathop.OpReq{
		Val1: cmd.Val1,
		Op:   cmd.Op,
		Val2: cmd.Val2,
	}
	req.ID = fwk.GetIDGenerator().Generate()
	req.Src = c.OpOut.AsRemote()

	if err := c.OpOut.Send(req); err != nil {
		c.respond(cmd.CmdOpcode(), cmd.CmdSeq(), command.Busy)
		return
	}

	c.respond(cmd.CmdOpcode(), cmd.CmdSeq(), command.OK)
}

func (c *Comp) handleResult(msg fwk.Msg) {
	rsp, ok := msg.(*mathop.OpRsp)
	if !ok {
		log.Panicf("unexpected message type %T on result port", msg)
	}

	c.resultCh.WriteFloat32(rsp.Result)
	c.ev.Post(resultEvent, rsp.Result)
}

// respond is fire and forget: the response port may be left unconnected in
// deployments that do not track completions.
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
