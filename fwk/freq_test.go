package fwk

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Freq", func() {
	It("should get period", func() {
		var f = 10 * Hz
		Expect(f.Period()).To(BeNumerically("==", 0.1))
	})

	It("should get this tick", func() {
		var f = 1 * Hz
		Expect(f.ThisTick(1)).To(BeNumerically("~", 1, 1e-12))
	})

	It("should get this tick, if currTime is not on a tick", func() {
		var f = 10 * Hz
		Expect(f.ThisTick(1.03)).To(BeNumerically("~", 1.1, 1e-12))
	})

	It("should get the next tick", func() {
		var f = 10 * Hz
		Expect(f.NextTick(1.1)).To(BeNumerically("~", 1.2, 1e-12))
	})

	It("should get the next tick, if currTime is not on a tick", func() {
		var f = 10 * Hz
		Expect(f.NextTick(1.03)).To(BeNumerically("~", 1.1, 1e-12))
	})

	It("should get the next tick at high frequency", func() {
		var f = 1 * KHz
		Expect(f.NextTick(0.031)).To(BeNumerically("~", 0.032, 1e-12))
	})

	It("should get the cycle count", func() {
		var f = 10 * Hz
		Expect(f.Cycle(2.5)).To(Equal(uint64(25)))
	})

	It("should get the n cycles later", func() {
		var f = 10 * Hz
		Expect(f.NCyclesLater(12, 1.1)).To(BeNumerically("~", 2.3, 1e-12))
	})

	It("should get the n cycles later, if current time is not on a tick", func() {
		var f = 10 * Hz
		Expect(f.NCyclesLater(12, 1.03)).To(BeNumerically("~", 2.3, 1e-12))
	})

	It("should get the no-earlier-than time, on tick", func() {
		var f = 1 * GHz
		Expect(f.NoEarlierThan(102.00)).To(
			BeNumerically("~", 102.00, 1e-12))
	})

	It("should get the no-earlier-than time, off tick", func() {
		var f = 1 * GHz
		Expect(f.NoEarlierThan(102.0000000011)).To(
			BeNumerically("~", 102.000000002, 1e-12))
	})
})
