package fwk

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"
)

type sampleMsg struct {
	MsgMeta

	payload int
}

func (m *sampleMsg) Meta() *MsgMeta {
	return &m.MsgMeta
}

func (m *sampleMsg) Clone() Msg {
	cloneMsg := *m
	cloneMsg.ID = GetIDGenerator().Generate()

	return &cloneMsg
}

var _ = Describe("AsyncInputPort", func() {
	var (
		mockController *gomock.Controller
		comp           *MockComponent
		sink           *MockEnqueuer
		port           Port
	)

	BeforeEach(func() {
		mockController = gomock.NewController(GinkgoT())
		comp = NewMockComponent(mockController)
		sink = NewMockEnqueuer(mockController)
		port = NewAsyncInputPort(comp, sink, "Comp.OpIn")
	})

	AfterEach(func() {
		mockController.Finish()
	})

	It("should return component", func() {
		Expect(port.Component()).To(BeIdenticalTo(comp))
	})

	It("should return name", func() {
		Expect(port.Name()).To(Equal("Comp.OpIn"))
	})

	It("should enqueue delivered messages", func() {
		msg := &sampleMsg{}
		sink.EXPECT().Enqueue(msg).Return(nil)

		errRet := port.Deliver(msg)

		Expect(errRet).To(BeNil())
	})

	It("should propagate the error when the queue is full", func() {
		msg := &sampleMsg{}
		sink.EXPECT().Enqueue(msg).Return(NewSendError("queue full"))

		errRet := port.Deliver(msg)

		Expect(errRet).NotTo(BeNil())
		Expect(errRet.Reason).To(Equal("queue full"))
	})

	It("should panic when sending", func() {
		msg := &sampleMsg{}

		Expect(func() { port.Send(msg) }).To(Panic())
	})
})

var _ = Describe("SyncInputPort", func() {
	var (
		mockController *gomock.Controller
		comp           *MockComponent
		received       []Msg
		port           Port
	)

	BeforeEach(func() {
		mockController = gomock.NewController(GinkgoT())
		comp = NewMockComponent(mockController)
		received = nil
		port = NewSyncInputPort(comp, func(msg Msg) {
			received = append(received, msg)
		}, "Comp.SchedIn")
	})

	AfterEach(func() {
		mockController.Finish()
	})

	It("should run the handler before returning", func() {
		msg := &sampleMsg{}

		errRet := port.Deliver(msg)

		Expect(errRet).To(BeNil())
		Expect(received).To(HaveLen(1))
		Expect(received[0]).To(BeIdenticalTo(msg))
	})

	It("should panic when sending", func() {
		msg := &sampleMsg{}

		Expect(func() { port.Send(msg) }).To(Panic())
	})
})

var _ = Describe("OutputPort", func() {
	var (
		mockController *gomock.Controller
		comp           *MockComponent
		conn           *MockConnection
		port           Port
	)

	BeforeEach(func() {
		mockController = gomock.NewController(GinkgoT())
		comp = NewMockComponent(mockController)
		conn = NewMockConnection(mockController)
		port = NewOutputPort(comp, "Comp.ResultOut")
		port.SetConnection(conn)
	})

	AfterEach(func() {
		mockController.Finish()
	})

	It("should panic if the port is not the msg src", func() {
		msg := &sampleMsg{}

		Expect(func() { port.Send(msg) }).To(Panic())
	})

	It("should panic when setting a second connection", func() {
		anotherConn := NewMockConnection(mockController)
		conn.EXPECT().Name().Return("Wire1").AnyTimes()
		anotherConn.EXPECT().Name().Return("Wire2").AnyTimes()

		Expect(func() { port.SetConnection(anotherConn) }).To(Panic())
	})

	It("should forward through the connection", func() {
		msg := &sampleMsg{}
		msg.Src = port.AsRemote()
		conn.EXPECT().Forward(msg).Return(nil)

		errRet := port.Send(msg)

		Expect(errRet).To(BeNil())
	})

	It("should propagate a delivery failure", func() {
		msg := &sampleMsg{}
		msg.Src = port.AsRemote()
		conn.EXPECT().Forward(msg).Return(NewSendError("queue full"))

		errRet := port.Send(msg)

		Expect(errRet).NotTo(BeNil())
	})

	It("should panic when delivered to", func() {
		msg := &sampleMsg{}

		Expect(func() { port.Deliver(msg) }).To(Panic())
	})

	It("should report not connected when there is no connection", func() {
		loose := NewOutputPort(comp, "Comp.RespOut")
		msg := &sampleMsg{}
		msg.Src = loose.AsRemote()

		errRet := loose.Send(msg)

		Expect(errRet).NotTo(BeNil())
		Expect(errRet.Reason).To(Equal("not connected"))
	})

	It("should panic when a required port is not connected", func() {
		required := NewRequiredOutputPort(comp, "Comp.OpOut")
		msg := &sampleMsg{}
		msg.Src = required.AsRemote()

		Expect(func() { required.Send(msg) }).To(Panic())
	})
})
