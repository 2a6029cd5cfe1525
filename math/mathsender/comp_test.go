package mathsender

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/openfsw/kestrel/command"
	"github.com/openfsw/kestrel/events"
	"github.com/openfsw/kestrel/fwk"
	"github.com/openfsw/kestrel/math/mathop"
	"github.com/openfsw/kestrel/telemetry"
)

type strangeCmd struct {
	fwk.MsgMeta
	command.RequestMeta
}

func (c *strangeCmd) Meta() *fwk.MsgMeta {
	return &c.MsgMeta
}

func (c *strangeCmd) Clone() fwk.Msg {
	cloneMsg := *c
	cloneMsg.ID = fwk.GetIDGenerator().Generate()

	return &cloneMsg
}

var _ = Describe("Math Sender", func() {
	var (
		engine *fwk.SerialEngine
		reg    *telemetry.Registry
		rep    *events.Reporter
		wire   *fwk.Wire
		sender *Comp

		opReqs []*mathop.OpReq
		resps  []*command.Response
	)

	newCmd := func(
		v1 float32,
		op mathop.MathOp,
		v2 float32,
		seq command.Seq,
	) *DoMathCmd {
		cmd := &DoMathCmd{Val1: v1, Op: op, Val2: v2}
		cmd.ID = fwk.GetIDGenerator().Generate()
		cmd.Opcode = DoMathOpcode
		cmd.Seq = seq

		return cmd
	}

	BeforeEach(func() {
		engine = fwk.NewSerialEngine()
		reg = telemetry.NewRegistry(engine, nil)
		rep = events.NewReporter(engine, nil, nil)
		wire = fwk.NewWire("Wire")

		sender = MakeBuilder().
			WithTelemetry(reg).
			WithEvents(rep).
			Build("MathSender")

		opReqs = nil
		resps = nil

		opSink := fwk.NewSyncInputPort(nil, func(msg fwk.Msg) {
			opReqs = append(opReqs, msg.(*mathop.OpReq))
		}, "MathReceiver.OpIn")
		respSink := fwk.NewSyncInputPort(nil, func(msg fwk.Msg) {
			resps = append(resps, msg.(*command.Response))
		}, "CmdDispatcher.RespIn")

		wire.PlugIn(sender.OpOut)
		wire.PlugIn(sender.RespOut)
		wire.PlugIn(opSink)
		wire.PlugIn(respSink)
		wire.Connect(sender.OpOut, opSink)
		wire.Connect(sender.RespOut, respSink)
	})

	It("should forward the operation and acknowledge immediately", func() {
		sender.CmdIn.Deliver(newCmd(2, mathop.MUL, 3, 5))

		Expect(opReqs).To(HaveLen(1))
		Expect(opReqs[0].Val1).To(Equal(float32(2)))
		Expect(opReqs[0].Op).To(Equal(mathop.MUL))
		Expect(opReqs[0].Val2).To(Equal(float32(3)))

		Expect(resps).To(HaveLen(1))
		Expect(resps[0].Opcode).To(Equal(DoMathOpcode))
		Expect(resps[0].Seq).To(Equal(command.Seq(5)))
		Expect(resps[0].Status).To(Equal(command.OK))
	})

	It("should publish the command arguments as telemetry", func() {
		sender.CmdIn.Deliver(newCmd(2, mathop.MUL, 3, 5))

		latest := reg.Latest()

		Expect(latest).To(HaveLen(3))
		Expect(latest[0].Channel).To(Equal("MathSender.OP"))
		Expect(latest[0].Value).To(Equal(float64(mathop.MUL)))
		Expect(latest[0].Text).To(Equal("MUL"))
		Expect(latest[1].Channel).To(Equal("MathSender.VAL1"))
		Expect(latest[1].Value).To(Equal(2.0))
		Expect(latest[2].Channel).To(Equal("MathSender.VAL2"))
		Expect(latest[2].Value).To(Equal(3.0))
	})

	It("should announce the command with an event", func() {
		sender.CmdIn.Deliver(newCmd(2, mathop.MUL, 3, 5))

		recent := rep.Recent()

		Expect(recent).To(HaveLen(1))
		Expect(recent[0].Component).To(Equal("MathSender"))
		Expect(recent[0].Name).To(Equal("COMMAND_RECV"))
		Expect(recent[0].Severity).To(Equal("ACTIVITY_LO"))
		Expect(recent[0].Message).To(Equal("Math command received: 2 MUL 3"))
	})

	It("should republish the result as telemetry and an event", func() {
		rsp := &mathop.OpRsp{Result: 6}
		rsp.ID = fwk.GetIDGenerator().Generate()

		sender.ResultIn.Deliver(rsp)

		sample, written := reg.Channel("MathSender.RESULT").Latest()
		Expect(written).To(BeTrue())
		Expect(sample.Value).To(Equal(6.0))

		recent := rep.Recent()
		Expect(recent).To(HaveLen(1))
		Expect(recent[0].Name).To(Equal("RESULT"))
		Expect(recent[0].Severity).To(Equal("ACTIVITY_HI"))
		Expect(recent[0].Message).To(Equal("Math result is 6"))
	})

	It("should reject a command it does not understand", func() {
		cmd := &strangeCmd{}
		cmd.ID = fwk.GetIDGenerator().Generate()
		cmd.Opcode = 0x999
		cmd.Seq = 9

		sender.CmdIn.Deliver(cmd)

		Expect(opReqs).To(BeEmpty())
		Expect(resps).To(HaveLen(1))
		Expect(resps[0].Opcode).To(Equal(command.Opcode(0x999)))
		Expect(resps[0].Status).To(Equal(command.InvalidOpcode))
	})

	It("should report Busy when the receiver cannot take the request",
		func() {
			busyWire := fwk.NewWire("BusyWire")
			busySender := MakeBuilder().
				WithTelemetry(reg).
				WithEvents(rep).
				Build("BusySender")

			stub := fwk.NewQueuedComponent("StubReceiver", 0, nil)
			fullPort := fwk.NewAsyncInputPort(stub, stub, "StubReceiver.OpIn")

			var got []*command.Response
			respSink := fwk.NewSyncInputPort(nil, func(msg fwk.Msg) {
				got = append(got, msg.(*command.Response))
			}, "RespSink.In")

			busyWire.PlugIn(busySender.OpOut)
			busyWire.PlugIn(busySender.RespOut)
			busyWire.PlugIn(fullPort)
			busyWire.PlugIn(respSink)
			busyWire.Connect(busySender.OpOut, fullPort)
			busyWire.Connect(busySender.RespOut, respSink)

			busySender.CmdIn.Deliver(newCmd(1, mathop.ADD, 1, 3))

			Expect(got).To(HaveLen(1))
			Expect(got[0].Status).To(Equal(command.Busy))
			Expect(stub.OverflowCount()).To(Equal(uint64(1)))
		})
})
