package core

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
	"github.com/sarchlab/akita/v4/sim"
)

func mustAssemble(lines ...string) Program {
	prog, err := Assemble(lines)
	Expect(err).NotTo(HaveOccurred())
	return prog
}

var _ = Describe("Core", func() {
	var (
		engine sim.Engine
		c      *Core
	)

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
		c = NewBuilder().
			WithEngine(engine).
			WithFreq(1 * sim.GHz).
			WithMaxCycles(1000).
			Build("CPU")
	})

	It("should run a program to its end", func() {
		c.LoadProgram(mustAssemble(
			"@2", "D=A", "@3", "D=D+A", "@R0", "M=D",
		))

		Expect(c.Run()).To(Succeed())
		Expect(c.Halted()).To(BeTrue())
		Expect(c.Peek(0)).To(Equal(int16(5)))
		Expect(c.Cycles()).To(Equal(uint64(6)))
	})

	It("should stop in an idle loop", func() {
		c.LoadProgram(mustAssemble(
			"@7", "D=A", "@R1", "M=D",
			"(END)", "@END", "0;JMP",
		))

		Expect(c.Run()).To(Succeed())
		Expect(c.Halted()).To(BeTrue())
		Expect(c.Peek(1)).To(Equal(int16(7)))
		Expect(c.PC()).To(Equal(uint16(5)))
	})

	It("should honour preloaded memory", func() {
		c.Poke(0, 256)
		c.LoadProgram(mustAssemble("@SP", "M=M+1"))

		Expect(c.Run()).To(Succeed())
		Expect(c.Peek(0)).To(Equal(int16(257)))
	})

	It("should give up after the cycle limit", func() {
		c.LoadProgram(mustAssemble(
			"(LOOP)", "@R0", "M=M+1", "@LOOP", "0;JMP",
		))

		err := c.Run()
		Expect(errors.Is(err, ErrCycleLimit)).To(BeTrue())
		Expect(c.Cycles()).To(Equal(uint64(1000)))
	})

	It("should report memory faults with the source line", func() {
		small := NewBuilder().WithMemorySize(16).Build("Small")
		small.LoadProgram(mustAssemble("@100", "D=M"))

		err := small.Run()
		Expect(errors.Is(err, ErrMemoryFault)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("line 2"))
	})

	It("should resolve symbols of the loaded program", func() {
		c.LoadProgram(mustAssemble("@Foo.3", "M=1"))

		addr, ok := c.Symbol("Foo.3")
		Expect(ok).To(BeTrue())
		Expect(addr).To(Equal(uint16(VariableBase)))
		_, ok = c.Symbol("Bar.3")
		Expect(ok).To(BeFalse())
	})

	It("should print its state", func() {
		c.Poke(0, 258)
		c.Poke(256, 11)
		c.Poke(257, -3)

		var buf bytes.Buffer
		PrintState(&buf, c, 256)

		Expect(buf.String()).To(ContainSubstring("CPU"))
		Expect(buf.String()).To(ContainSubstring("11"))
		Expect(buf.String()).To(ContainSubstring("-3"))
	})
})
