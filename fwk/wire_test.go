package fwk

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"
)

var _ = Describe("Wire", func() {
	var (
		mockController *gomock.Controller
		wire           *Wire
		src, dst       *MockPort
	)

	BeforeEach(func() {
		mockController = gomock.NewController(GinkgoT())
		wire = NewWire("Wire")

		src = NewMockPort(mockController)
		src.EXPECT().AsRemote().Return(RemotePort("Sender.OpOut")).AnyTimes()
		src.EXPECT().Name().Return("Sender.OpOut").AnyTimes()
		src.EXPECT().SetConnection(wire).AnyTimes()

		dst = NewMockPort(mockController)
		dst.EXPECT().AsRemote().Return(RemotePort("Receiver.OpIn")).AnyTimes()
		dst.EXPECT().Name().Return("Receiver.OpIn").AnyTimes()
		dst.EXPECT().SetConnection(wire).AnyTimes()
	})

	AfterEach(func() {
		mockController.Finish()
	})

	It("should panic when plugging a port twice", func() {
		wire.PlugIn(src)

		Expect(func() { wire.PlugIn(src) }).To(Panic())
	})

	It("should panic when connecting unplugged ports", func() {
		Expect(func() { wire.Connect(src, dst) }).To(Panic())
	})

	It("should panic when connecting a port to itself", func() {
		wire.PlugIn(src)

		Expect(func() { wire.Connect(src, src) }).To(Panic())
	})

	It("should panic when connecting a source twice", func() {
		wire.PlugIn(src)
		wire.PlugIn(dst)
		wire.Connect(src, dst)

		Expect(func() { wire.Connect(src, dst) }).To(Panic())
	})

	It("should deliver to the routed destination", func() {
		wire.PlugIn(src)
		wire.PlugIn(dst)
		wire.Connect(src, dst)

		msg := &sampleMsg{}
		msg.Src = "Sender.OpOut"
		dst.EXPECT().Deliver(msg).Return(nil)

		errRet := wire.Forward(msg)

		Expect(errRet).To(BeNil())
		Expect(msg.Dst).To(Equal(RemotePort("Receiver.OpIn")))
	})

	It("should propagate the delivery result", func() {
		wire.PlugIn(src)
		wire.PlugIn(dst)
		wire.Connect(src, dst)

		msg := &sampleMsg{}
		msg.Src = "Sender.OpOut"
		dst.EXPECT().Deliver(msg).Return(NewSendError("queue full"))

		errRet := wire.Forward(msg)

		Expect(errRet).NotTo(BeNil())
		Expect(errRet.Reason).To(Equal("queue full"))
	})

	It("should report not connected for an unrouted source", func() {
		wire.PlugIn(src)

		msg := &sampleMsg{}
		msg.Src = "Sender.OpOut"

		errRet := wire.Forward(msg)

		Expect(errRet).NotTo(BeNil())
		Expect(errRet.Reason).To(Equal("not connected"))
	})

	It("should forget routes when unplugging", func() {
		wire.PlugIn(src)
		wire.PlugIn(dst)
		wire.Connect(src, dst)

		wire.Unplug(src)

		msg := &sampleMsg{}
		msg.Src = "Sender.OpOut"
		errRet := wire.Forward(msg)

		Expect(errRet).NotTo(BeNil())
	})
})
