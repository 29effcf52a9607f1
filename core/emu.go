package core

import (
	"strings"

	"github.com/pkg/errors"
)

// ErrMemoryFault is returned when an instruction touches RAM outside the
// installed memory.
var ErrMemoryFault = errors.New("memory fault")

type coreState struct {
	PC     uint16
	A, D   int16
	RAM    []int16
	Code   Program
	Cycles uint64
	Halted bool
}

type operands struct {
	a, d, m int16
}

var compTable = map[string]func(x operands) int16{
	"0":   func(x operands) int16 { return 0 },
	"1":   func(x operands) int16 { return 1 },
	"-1":  func(x operands) int16 { return -1 },
	"D":   func(x operands) int16 { return x.d },
	"A":   func(x operands) int16 { return x.a },
	"M":   func(x operands) int16 { return x.m },
	"!D":  func(x operands) int16 { return ^x.d },
	"!A":  func(x operands) int16 { return ^x.a },
	"!M":  func(x operands) int16 { return ^x.m },
	"-D":  func(x operands) int16 { return -x.d },
	"-A":  func(x operands) int16 { return -x.a },
	"-M":  func(x operands) int16 { return -x.m },
	"D+1": func(x operands) int16 { return x.d + 1 },
	"A+1": func(x operands) int16 { return x.a + 1 },
	"M+1": func(x operands) int16 { return x.m + 1 },
	"D-1": func(x operands) int16 { return x.d - 1 },
	"A-1": func(x operands) int16 { return x.a - 1 },
	"M-1": func(x operands) int16 { return x.m - 1 },
	"D+A": func(x operands) int16 { return x.d + x.a },
	"A+D": func(x operands) int16 { return x.d + x.a },
	"D+M": func(x operands) int16 { return x.d + x.m },
	"M+D": func(x operands) int16 { return x.d + x.m },
	"D-A": func(x operands) int16 { return x.d - x.a },
	"D-M": func(x operands) int16 { return x.d - x.m },
	"A-D": func(x operands) int16 { return x.a - x.d },
	"M-D": func(x operands) int16 { return x.m - x.d },
	"D&A": func(x operands) int16 { return x.d & x.a },
	"A&D": func(x operands) int16 { return x.d & x.a },
	"D&M": func(x operands) int16 { return x.d & x.m },
	"M&D": func(x operands) int16 { return x.d & x.m },
	"D|A": func(x operands) int16 { return x.d | x.a },
	"A|D": func(x operands) int16 { return x.d | x.a },
	"D|M": func(x operands) int16 { return x.d | x.m },
	"M|D": func(x operands) int16 { return x.d | x.m },
}

type instEmulator struct {
}

// RunInst executes one instruction and advances the program counter.
func (i instEmulator) RunInst(inst Inst, state *coreState) error {
	if inst.IsAddress {
		state.A = int16(inst.Value)
		state.PC++
		return nil
	}

	addr := uint16(state.A)
	x := operands{a: state.A, d: state.D}

	usesM := strings.Contains(inst.Comp, "M")
	writesM := strings.Contains(inst.Dest, "M")
	if (usesM || writesM) && int(addr) >= len(state.RAM) {
		return errors.Wrapf(ErrMemoryFault, "pc=%d %s: address %d", state.PC, inst, addr)
	}
	if usesM {
		x.m = state.RAM[addr]
	}

	comp, ok := compTable[inst.Comp]
	if !ok {
		return errors.Wrapf(ErrSyntax, "pc=%d: unknown computation %q", state.PC, inst.Comp)
	}
	out := comp(x)

	if writesM {
		state.RAM[addr] = out
	}
	if strings.Contains(inst.Dest, "D") {
		state.D = out
	}
	if strings.Contains(inst.Dest, "A") {
		state.A = out
	}

	if i.jumps(inst.Jump, out) {
		state.PC = addr
	} else {
		state.PC++
	}

	return nil
}

func (i instEmulator) jumps(jump string, v int16) bool {
	switch jump {
	case "JGT":
		return v > 0
	case "JEQ":
		return v == 0
	case "JGE":
		return v >= 0
	case "JLT":
		return v < 0
	case "JNE":
		return v != 0
	case "JLE":
		return v <= 0
	case "JMP":
		return true
	default:
		return false
	}
}

// isSpinLoop reports whether the instruction at pc is the closing jump of
// an "(L) @L 0;JMP" idle loop.
func isSpinLoop(code []Inst, pc uint16) bool {
	if pc == 0 || int(pc) >= len(code) {
		return false
	}
	jmp := code[pc]
	load := code[pc-1]
	return !jmp.IsAddress && jmp.Jump == "JMP" && jmp.Dest == "" &&
		load.IsAddress && load.Value == pc-1
}
