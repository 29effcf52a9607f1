// Package core emulates the Hack CPU as an akita ticking component. Each
// tick executes one instruction of the loaded program.
package core

import (
	"github.com/pkg/errors"
	"github.com/sarchlab/akita/v4/sim"
)

// ErrCycleLimit is returned when a run exceeds its instruction budget.
var ErrCycleLimit = errors.New("cycle limit reached")

type Core struct {
	*sim.TickingComponent

	state     coreState
	emu       instEmulator
	maxCycles uint64
	err       error
}

// LoadProgram installs a program and resets the CPU registers. RAM is kept
// so that callers can preload it.
func (c *Core) LoadProgram(prog Program) {
	c.state.Code = prog
	c.state.PC = 0
	c.state.A = 0
	c.state.D = 0
	c.state.Cycles = 0
	c.state.Halted = false
	c.err = nil
}

// Run executes the loaded program until it falls off its end, enters an
// idle loop, faults, or exceeds the cycle limit.
func (c *Core) Run() error {
	c.TickNow()
	if err := c.Engine.Run(); err != nil {
		return errors.Wrap(err, "engine")
	}
	return c.err
}

// Tick runs the program for one cycle.
func (c *Core) Tick() (madeProgress bool) {
	if c.state.Halted || c.err != nil {
		return false
	}

	code := c.state.Code.Insts
	if int(c.state.PC) >= len(code) || isSpinLoop(code, c.state.PC) {
		c.state.Halted = true
		Trace("Halt",
			"Core", c.Name(),
			"PC", c.state.PC,
			"Cycles", c.state.Cycles,
		)
		return false
	}

	if c.maxCycles > 0 && c.state.Cycles >= c.maxCycles {
		c.err = errors.Wrapf(ErrCycleLimit, "%s: %d cycles", c.Name(), c.state.Cycles)
		return false
	}

	inst := code[c.state.PC]
	if err := c.emu.RunInst(inst, &c.state); err != nil {
		c.err = errors.Wrapf(err, "%s: line %d", c.Name(), inst.Line)
		return false
	}
	c.state.Cycles++

	return true
}

// Peek reads a RAM word.
func (c *Core) Peek(addr uint16) int16 {
	if int(addr) >= len(c.state.RAM) {
		panic("Invalid address")
	}
	return c.state.RAM[addr]
}

// Poke writes a RAM word.
func (c *Core) Poke(addr uint16, value int16) {
	if int(addr) >= len(c.state.RAM) {
		panic("Invalid address")
	}
	c.state.RAM[addr] = value
}

// Symbol resolves a predefined, label or variable symbol of the loaded
// program.
func (c *Core) Symbol(name string) (uint16, bool) {
	return c.state.Code.resolve(name)
}

// PC returns the program counter.
func (c *Core) PC() uint16 {
	return c.state.PC
}

// Registers returns the A and D registers.
func (c *Core) Registers() (a, d int16) {
	return c.state.A, c.state.D
}

// Cycles returns the number of instructions executed since the program was
// loaded.
func (c *Core) Cycles() uint64 {
	return c.state.Cycles
}

// Halted reports whether the program has finished.
func (c *Core) Halted() bool {
	return c.state.Halted
}
