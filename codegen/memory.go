package codegen

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/sarchlab/hackvm/instr"
)

// TempBase is the first RAM address of the temp segment.
const TempBase = 5

// TempSize is the number of temp slots.
const TempSize = 8

// ScratchRegister caches the destination address of indirect pops.
const ScratchRegister = "R13"

type addressing int

const (
	immediate addressing = iota // the index is the value
	indirect                    // *(base) + index
	fixed                       // TempBase + index
	register                    // the base register itself
	symbolic                    // one named cell per module and index
)

type segmentInfo struct {
	mode addressing
	base string
}

var segmentTable = map[instr.Segment]segmentInfo{
	instr.Constant: {mode: immediate},
	instr.Local:    {mode: indirect, base: "LCL"},
	instr.Argument: {mode: indirect, base: "ARG"},
	instr.This:     {mode: indirect, base: "THIS"},
	instr.That:     {mode: indirect, base: "THAT"},
	instr.Temp:     {mode: fixed},
	instr.Pointer:  {mode: register},
	instr.Static:   {mode: symbolic},
}

var pointerRegisters = [...]string{"THIS", "THAT"}

// BaseRegister returns the pointer register an indirect segment is based
// at, if any.
func BaseRegister(seg instr.Segment) (string, bool) {
	info, ok := segmentTable[seg]
	if !ok || info.mode != indirect {
		return "", false
	}
	return info.base, true
}

// StaticSymbol names the cell that backs static index i of module.
func StaticSymbol(module string, i int) string {
	return module + "." + strconv.Itoa(i)
}

// push: D=value, *SP=D, SP++
func (w *CodeWriter) push(seg instr.Segment, i int) ([]string, error) {
	info, err := w.lookup(seg, i)
	if err != nil {
		return nil, err
	}

	var lines []string
	switch info.mode {
	case immediate:
		lines = []string{"@" + strconv.Itoa(i), "D=A"}
	case indirect:
		lines = []string{
			"@" + info.base,
			"D=M",
			"@" + strconv.Itoa(i),
			"A=D+A",
			"D=M",
		}
	default:
		lines = []string{"@" + w.directSymbol(seg, i), "D=M"}
	}

	return append(lines, pushD()...), nil
}

// pop: addr=segment+i, SP--, *addr=*SP
func (w *CodeWriter) pop(seg instr.Segment, i int) ([]string, error) {
	if seg == instr.Constant {
		return nil, errors.Wrapf(instr.ErrIllegalOperation,
			"pop constant %d: the constant segment is read-only", i)
	}

	info, err := w.lookup(seg, i)
	if err != nil {
		return nil, err
	}

	if info.mode != indirect {
		lines := popToD()
		return append(lines, "@"+w.directSymbol(seg, i), "M=D"), nil
	}

	lines := []string{
		"@" + info.base,
		"D=M",
		"@" + strconv.Itoa(i),
		"D=D+A",
		"@" + ScratchRegister,
		"M=D",
	}
	lines = append(lines, popToD()...)
	return append(lines,
		"@"+ScratchRegister,
		"A=M",
		"M=D",
	), nil
}

func (w *CodeWriter) lookup(seg instr.Segment, i int) (segmentInfo, error) {
	info, ok := segmentTable[seg]
	if !ok {
		return segmentInfo{}, errors.Wrapf(instr.ErrMalformed, "unknown segment %v", seg)
	}
	if i < 0 {
		return segmentInfo{}, errors.Wrapf(instr.ErrMalformed, "negative index %d", i)
	}
	if info.mode == register && i >= len(pointerRegisters) {
		return segmentInfo{}, errors.Wrapf(instr.ErrIllegalOperation,
			"pointer %d: only 0 (THIS) and 1 (THAT) exist", i)
	}
	return info, nil
}

// directSymbol resolves segments whose cell is known at translation time.
func (w *CodeWriter) directSymbol(seg instr.Segment, i int) string {
	switch segmentTable[seg].mode {
	case fixed:
		return strconv.Itoa(TempBase + i)
	case register:
		return pointerRegisters[i]
	default:
		return StaticSymbol(w.module, i)
	}
}
