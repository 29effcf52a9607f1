// Package verify checks translated VM programs by running them.
//
// Two complementary stages are provided:
//
// 1. Static Lint (lint.go): structural checks on the emitted assembly
//   - STRUCT: duplicate labels, jumps to labels that are never declared
//   - RANGE: address constants the Hack platform cannot load
//   - SYNTAX: lines the assembler rejects
//
// 2. Execution (Session): translate, assemble and run the program on the
//    core emulator, then inspect the stack and the VM segments.
//
// # Memory Layout
//
// A Session seeds the pointer registers before running:
//
//	SP   = 256   stack base
//	LCL  = 300
//	ARG  = 400
//	THIS = 3000
//	THAT = 3010
//
// # Usage Example
//
//	s := verify.NewSession(verify.DefaultLayout)
//	err := s.Run(verify.Module{Name: "Foo", Source: "push constant 7\npush constant 2\nsub"})
//	if err != nil {
//	    panic(err)
//	}
//	fmt.Println(s.StackTop()) // 5
package verify

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/hackvm/api"
	"github.com/sarchlab/hackvm/codegen"
	"github.com/sarchlab/hackvm/core"
	"github.com/sarchlab/hackvm/emit"
	"github.com/sarchlab/hackvm/instr"
)

// Layout holds the initial values of the pointer registers.
type Layout struct {
	SP, LCL, ARG, THIS, THAT int16
}

// DefaultLayout is the layout used by the reference test scripts of the
// Hack platform.
var DefaultLayout = Layout{SP: 256, LCL: 300, ARG: 400, THIS: 3000, THAT: 3010}

// Module is one translation unit.
type Module struct {
	Name   string
	Source string
}

// Translate lowers a module to assembly lines.
func Translate(mod Module) ([]string, error) {
	var buf emit.Buffer

	driver := api.DriverBuilder{}.Build()
	if _, err := driver.Translate(strings.NewReader(mod.Source), mod.Name, &buf); err != nil {
		return buf.Lines(), err
	}

	return buf.Lines(), nil
}

// Session runs translated modules on a fresh emulator.
type Session struct {
	layout    Layout
	maxCycles uint64
	preload   map[uint16]int16

	asm    []string
	issues []Issue
	cpu    *core.Core
}

// NewSession creates a session with the given initial layout.
func NewSession(layout Layout) *Session {
	return &Session{
		layout:    layout,
		maxCycles: 100_000,
		preload:   make(map[uint16]int16),
	}
}

// WithMaxCycles bounds the number of instructions a run may execute.
func (s *Session) WithMaxCycles(cycles uint64) *Session {
	s.maxCycles = cycles
	return s
}

// Set preloads a RAM word before the next run.
func (s *Session) Set(addr uint16, value int16) *Session {
	s.preload[addr] = value
	return s
}

// Run translates the modules in order, concatenates their assembly and
// executes it.
func (s *Session) Run(mods ...Module) error {
	s.asm = nil
	s.issues = nil
	s.cpu = nil

	for _, mod := range mods {
		lines, err := Translate(mod)
		s.asm = append(s.asm, lines...)
		if err != nil {
			return err
		}
	}

	s.issues = RunLint(s.asm)

	prog, err := core.Assemble(s.asm)
	if err != nil {
		return errors.Wrap(err, "assemble")
	}

	s.cpu = core.NewBuilder().
		WithEngine(sim.NewSerialEngine()).
		WithFreq(1 * sim.GHz).
		WithMaxCycles(s.maxCycles).
		Build("Machine")

	s.cpu.Poke(0, s.layout.SP)
	s.cpu.Poke(1, s.layout.LCL)
	s.cpu.Poke(2, s.layout.ARG)
	s.cpu.Poke(3, s.layout.THIS)
	s.cpu.Poke(4, s.layout.THAT)
	for addr, v := range s.preload {
		s.cpu.Poke(addr, v)
	}

	s.cpu.LoadProgram(prog)
	err = s.cpu.Run()
	core.LogState(s.cpu)

	return err
}

// Asm returns the assembly of the last run.
func (s *Session) Asm() []string {
	return s.asm
}

// Issues returns the lint issues of the last run.
func (s *Session) Issues() []Issue {
	return s.issues
}

// CPU returns the emulator of the last run.
func (s *Session) CPU() *core.Core {
	return s.cpu
}

// Peek reads a RAM word after a run.
func (s *Session) Peek(addr uint16) int16 {
	return s.cpu.Peek(addr)
}

// SP returns the stack pointer.
func (s *Session) SP() int16 {
	return s.cpu.Peek(0)
}

// Depth returns how many values sit above the initial stack base.
func (s *Session) Depth() int {
	return int(s.SP()) - int(s.layout.SP)
}

// StackTop returns the most recently pushed value.
func (s *Session) StackTop() int16 {
	return s.cpu.Peek(uint16(s.SP() - 1))
}

// Stack returns the values from the stack base up to SP.
func (s *Session) Stack() []int16 {
	var out []int16
	for addr := s.layout.SP; addr < s.SP(); addr++ {
		out = append(out, s.cpu.Peek(uint16(addr)))
	}
	return out
}

// Segment reads index i of a VM segment as the given module sees it.
// Static cells the module never touched read as zero.
func (s *Session) Segment(module string, seg instr.Segment, i int) int16 {
	switch seg {
	case instr.Constant:
		return int16(i)
	case instr.Temp:
		return s.cpu.Peek(uint16(codegen.TempBase + i))
	case instr.Pointer:
		return s.cpu.Peek(uint16(3 + i))
	case instr.Static:
		addr, ok := s.cpu.Symbol(codegen.StaticSymbol(module, i))
		if !ok {
			return 0
		}
		return s.cpu.Peek(addr)
	}

	base, _ := codegen.BaseRegister(seg)
	reg, _ := s.cpu.Symbol(base)
	return s.cpu.Peek(uint16(int(s.cpu.Peek(reg)) + i))
}
