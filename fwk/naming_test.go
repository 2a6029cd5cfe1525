package fwk

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Name", func() {
	It("should parse name", func() {
		name := ParseName("Demo.RateGroup[1].SchedOut[0]")
		Expect(name.Tokens[0].ElemName).To(Equal("Demo"))
		Expect(name.Tokens[0].Index).To(BeEmpty())
		Expect(name.Tokens[1].ElemName).To(Equal("RateGroup"))
		Expect(name.Tokens[1].Index).To(Equal([]int{1}))
		Expect(name.Tokens[2].ElemName).To(Equal("SchedOut"))
		Expect(name.Tokens[2].Index).To(Equal([]int{0}))
	})

	It("should panic if the name is empty", func() {
		Expect(func() { NameMustBeValid("") }).To(Panic())
	})

	It("should panic if name include underscore", func() {
		Expect(func() { NameMustBeValid("Math_Sender") }).To(Panic())
	})

	It("should panic if name include dash", func() {
		Expect(func() { NameMustBeValid("Math-Sender") }).To(Panic())
	})

	It("should panic if name is not capitalized CamelCase", func() {
		Expect(func() { NameMustBeValid("mathSender") }).To(Panic())
	})

	It("should have paired square brackets", func() {
		Expect(func() { NameMustBeValid("RateGroup[0") }).To(Panic())
		Expect(func() { NameMustBeValid("RateGroup0]") }).To(Panic())
	})

	It("should panic if element name is empty", func() {
		Expect(func() { NameMustBeValid("Demo..MathSender") }).To(Panic())
	})

	It("should build name", func() {
		Expect(BuildName("", "Demo")).To(Equal("Demo"))
		Expect(BuildName("Demo", "MathSender")).To(Equal("Demo.MathSender"))
	})

	It("should build name with index", func() {
		Expect(BuildNameWithIndex("", "RateGroup", 0)).To(Equal("RateGroup[0]"))
		Expect(BuildNameWithIndex("Demo", "RateGroup", 1)).
			To(Equal("Demo.RateGroup[1]"))
	})
})
