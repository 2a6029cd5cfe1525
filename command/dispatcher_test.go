package command

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"

	"github.com/openfsw/kestrel/events"
	"github.com/openfsw/kestrel/fwk"
)

type noopCmd struct {
	fwk.MsgMeta
	RequestMeta
}

func (c *noopCmd) Meta() *fwk.MsgMeta {
	return &c.MsgMeta
}

func (c *noopCmd) Clone() fwk.Msg {
	cloneMsg := *c
	cloneMsg.ID = fwk.GetIDGenerator().Generate()

	return &cloneMsg
}

func newNoopCmd(op Opcode, seq Seq) *noopCmd {
	c := &noopCmd{}
	c.ID = fwk.GetIDGenerator().Generate()
	c.Opcode = op
	c.Seq = seq

	return c
}

var _ = Describe("Dispatcher", func() {
	var (
		mockCtrl   *gomock.Controller
		timeTeller *MockTimeTeller
		conn       *MockConnection
		sink       *MockSink
		disp       *Dispatcher
		routePort  fwk.Port
	)

	const opNoop = Opcode(0x10)

	tick := func() {
		t := &fwk.SchedTick{}
		t.ID = fwk.GetIDGenerator().Generate()
		disp.SchedIn.Deliver(t)
	}

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		timeTeller = NewMockTimeTeller(mockCtrl)
		timeTeller.EXPECT().
			CurrentTime().
			Return(fwk.VTimeInSec(3)).
			AnyTimes()
		conn = NewMockConnection(mockCtrl)
		conn.EXPECT().Name().Return("Wire").AnyTimes()
		sink = NewMockSink(mockCtrl)

		disp = MakeBuilder().
			WithTimeTeller(timeTeller).
			WithEvents(events.NewReporter(timeTeller, nil, nil)).
			WithSink(sink).
			Build("CmdDispatcher")

		routePort = disp.Register(opNoop)
		routePort.SetConnection(conn)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should route a queued request when ticked", func() {
		cmd := newNoopCmd(opNoop, 7)
		conn.EXPECT().
			Forward(gomock.Any()).
			Do(func(msg fwk.Msg) {
				Expect(msg).To(BeIdenticalTo(cmd))
				Expect(msg.Meta().Src).To(Equal(routePort.AsRemote()))
			}).
			Return(nil)

		Expect(disp.CmdIn.Deliver(cmd)).To(BeNil())
		Expect(disp.MessagesAvailable()).To(Equal(1))

		tick()

		Expect(disp.MessagesAvailable()).To(Equal(0))
	})

	It("should complete with InvalidOpcode when no route exists", func() {
		cmd := newNoopCmd(0x99, 8)
		sink.EXPECT().RecordCompletion(Completion{
			Time:   3,
			Opcode: 0x99,
			Seq:    8,
			Status: "INVALID_OPCODE",
		})

		disp.CmdIn.Deliver(cmd)
		tick()

		Expect(disp.Counts()[InvalidOpcode]).To(Equal(uint64(1)))
	})

	It("should complete Busy when the destination rejects the request",
		func() {
			cmd := newNoopCmd(opNoop, 9)
			conn.EXPECT().
				Forward(gomock.Any()).
				Return(fwk.NewSendError("queue full"))
			sink.EXPECT().RecordCompletion(Completion{
				Time:   3,
				Opcode: 0x10,
				Seq:    9,
				Status: "BUSY",
			})

			disp.CmdIn.Deliver(cmd)
			tick()

			Expect(disp.Counts()[Busy]).To(Equal(uint64(1)))
		})

	It("should account responses arriving on the response port", func() {
		sink.EXPECT().RecordCompletion(Completion{
			Time:   3,
			Opcode: 0x10,
			Seq:    7,
			Status: "OK",
		})

		rsp := &Response{Opcode: opNoop, Seq: 7, Status: OK}
		rsp.ID = fwk.GetIDGenerator().Generate()
		disp.RespIn.Deliver(rsp)

		Expect(disp.Counts()[OK]).To(Equal(uint64(1)))
	})

	It("should panic when an opcode is registered twice", func() {
		Expect(func() { disp.Register(opNoop) }).To(Panic())
	})

	It("should name route ports by registration order", func() {
		p := disp.Register(0x20)

		Expect(p.Name()).To(Equal("CmdDispatcher.CmdOut[1]"))
	})

	It("should panic on a non-request message in the queue", func() {
		rsp := &Response{}
		rsp.ID = fwk.GetIDGenerator().Generate()
		disp.CmdIn.Deliver(rsp)

		Expect(func() { tick() }).To(Panic())
	})
})
