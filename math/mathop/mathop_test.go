package mathop

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Apply", func() {
	It("should add", func() {
		res, err := Apply(ADD, 2, 3)
		Expect(err).ToNot(HaveOccurred())
		Expect(res).To(Equal(float32(5)))
	})

	It("should subtract", func() {
		res, err := Apply(SUB, 2, 3)
		Expect(err).ToNot(HaveOccurred())
		Expect(res).To(Equal(float32(-1)))
	})

	It("should multiply", func() {
		res, err := Apply(MUL, 2, 3)
		Expect(err).ToNot(HaveOccurred())
		Expect(res).To(Equal(float32(6)))
	})

	It("should divide", func() {
		res, err := Apply(DIV, 3, 2)
		Expect(err).ToNot(HaveOccurred())
		Expect(res).To(Equal(float32(1.5)))
	})

	It("should divide by zero per IEEE semantics", func() {
		res, err := Apply(DIV, 1, 0)
		Expect(err).ToNot(HaveOccurred())
		Expect(math.IsInf(float64(res), 1)).To(BeTrue())

		res, err = Apply(DIV, -1, 0)
		Expect(err).ToNot(HaveOccurred())
		Expect(math.IsInf(float64(res), -1)).To(BeTrue())

		res, err = Apply(DIV, 0, 0)
		Expect(err).ToNot(HaveOccurred())
		Expect(math.IsNaN(float64(res))).To(BeTrue())
	})

	It("should reject an unknown operation", func() {
		_, err := Apply(MathOp(42), 1, 2)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("MathOp", func() {
	It("should print and parse each operation", func() {
		for _, op := range []MathOp{ADD, SUB, MUL, DIV} {
			parsed, err := OpFromString(op.String())
			Expect(err).ToNot(HaveOccurred())
			Expect(parsed).To(Equal(op))
		}
	})

	It("should reject an unknown operation name", func() {
		_, err := OpFromString("MOD")
		Expect(err).To(HaveOccurred())
	})
})
