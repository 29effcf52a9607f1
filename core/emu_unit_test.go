package core

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
)

func cInst(text string) Inst {
	inst, err := decode(text)
	Expect(err).NotTo(HaveOccurred())
	return inst
}

var _ = Describe("InstEmulator", func() {
	var (
		ie instEmulator
		s  coreState
	)

	BeforeEach(func() {
		ie = instEmulator{}
		s = coreState{
			RAM: make([]int16, 64),
		}
	})

	Context("Address Instructions", func() {
		It("should load A and advance", func() {
			Expect(ie.RunInst(Inst{IsAddress: true, Value: 42}, &s)).To(Succeed())
			Expect(s.A).To(Equal(int16(42)))
			Expect(s.PC).To(Equal(uint16(1)))
		})
	})

	Context("Compute Instructions", func() {
		It("should read and write memory through A", func() {
			s.A = 10
			s.RAM[10] = 7
			Expect(ie.RunInst(cInst("D=M"), &s)).To(Succeed())
			Expect(s.D).To(Equal(int16(7)))

			Expect(ie.RunInst(cInst("M=M+1"), &s)).To(Succeed())
			Expect(s.RAM[10]).To(Equal(int16(8)))
		})

		It("should write to M at the old A when A is also a destination", func() {
			s.A = 3
			s.RAM[3] = 20
			Expect(ie.RunInst(cInst("AM=M-1"), &s)).To(Succeed())
			Expect(s.A).To(Equal(int16(19)))
			Expect(s.RAM[3]).To(Equal(int16(19)))
		})

		It("should wrap on 16-bit overflow", func() {
			s.D = 32767
			Expect(ie.RunInst(cInst("D=D+1"), &s)).To(Succeed())
			Expect(s.D).To(Equal(int16(-32768)))
		})

		DescribeTable("bitwise and arithmetic computations",
			func(comp string, a, d, m, want int16) {
				s.A = a
				s.D = d
				s.RAM[a] = m
				Expect(ie.RunInst(cInst("D="+comp), &s)).To(Succeed())
				Expect(s.D).To(Equal(want))
			},
			Entry("not D", "!D", int16(1), int16(0), int16(0), int16(-1)),
			Entry("neg M", "-M", int16(2), int16(0), int16(5), int16(-5)),
			Entry("D and M", "D&M", int16(2), int16(0x0F0F), int16(0x00FF), int16(0x000F)),
			Entry("D or A", "D|A", int16(0x30), int16(0x0F), int16(0), int16(0x3F)),
			Entry("M minus D", "M-D", int16(4), int16(3), int16(10), int16(7)),
			Entry("A minus D", "A-D", int16(4), int16(3), int16(0), int16(1)),
		)

		It("should fault on memory outside RAM", func() {
			s.A = 100
			err := ie.RunInst(cInst("D=M"), &s)
			Expect(errors.Is(err, ErrMemoryFault)).To(BeTrue())
		})
	})

	Context("Jumps", func() {
		DescribeTable("conditional jumps",
			func(jump string, d int16, taken bool) {
				s.A = 30
				s.D = d
				s.PC = 5
				Expect(ie.RunInst(cInst("D;"+jump), &s)).To(Succeed())
				if taken {
					Expect(s.PC).To(Equal(uint16(30)))
				} else {
					Expect(s.PC).To(Equal(uint16(6)))
				}
			},
			Entry("JEQ taken", "JEQ", int16(0), true),
			Entry("JEQ not taken", "JEQ", int16(1), false),
			Entry("JGT taken", "JGT", int16(2), true),
			Entry("JGT not taken on zero", "JGT", int16(0), false),
			Entry("JLT taken", "JLT", int16(-2), true),
			Entry("JLT not taken", "JLT", int16(0), false),
			Entry("JGE on zero", "JGE", int16(0), true),
			Entry("JLE on positive", "JLE", int16(1), false),
			Entry("JNE on nonzero", "JNE", int16(-1), true),
			Entry("JMP", "JMP", int16(0), true),
		)
	})
})
