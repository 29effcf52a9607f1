package codegen

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/sarchlab/hackvm/instr"
)

// Combining step for binary operators. D holds the later pushed value and M
// the earlier one.
var binaryComp = map[instr.Op]string{
	instr.Add: "D=D+M",
	instr.Sub: "D=M-D",
	instr.And: "D=D&M",
	instr.Or:  "D=D|M",
}

var unaryComp = map[instr.Op]string{
	instr.Neg: "M=-M",
	instr.Not: "M=!M",
}

var compareJump = map[instr.Op]string{
	instr.Eq: "JEQ",
	instr.Gt: "JGT",
	instr.Lt: "JLT",
}

// Boolean words pushed by comparisons.
const (
	TrueWord  = -1
	FalseWord = 0
)

func (w *CodeWriter) arithmetic(op instr.Op) ([]string, error) {
	if comp, ok := binaryComp[op]; ok {
		return binary(comp), nil
	}
	if comp, ok := unaryComp[op]; ok {
		return unary(comp), nil
	}
	if jump, ok := compareJump[op]; ok {
		return w.compare(op, jump), nil
	}
	return nil, errors.Wrapf(instr.ErrMalformed, "unknown operator %v", op)
}

// binary: SP--, D=*SP, SP--, D=*SP op D, *SP=D, SP++
func binary(comp string) []string {
	lines := popToD()
	lines = append(lines,
		"@SP",
		"M=M-1",
		"A=M",
		comp,
	)
	return append(lines, pushD()...)
}

// unary: SP--, *SP=op *SP, SP++
func unary(comp string) []string {
	return []string{
		"@SP",
		"M=M-1",
		"A=M",
		comp,
		"@SP",
		"M=M+1",
	}
}

// compare branches on D = earlier - later and materializes -1 or 0.
func (w *CodeWriter) compare(op instr.Op, jump string) []string {
	id := w.nextLabelID()
	name := strings.ToUpper(op.String())
	trueLabel := fmt.Sprintf("%s.%s_TRUE.%d", w.module, name, id)
	endLabel := fmt.Sprintf("%s.%s_END.%d", w.module, name, id)

	lines := popToD()
	lines = append(lines,
		"@SP",
		"M=M-1",
		"A=M",
		"D=M-D",
		"@"+trueLabel,
		"D;"+jump,
		"@SP",
		"A=M",
		fmt.Sprintf("M=%d", FalseWord),
		"@"+endLabel,
		"0;JMP",
		"("+trueLabel+")",
		"@SP",
		"A=M",
		fmt.Sprintf("M=%d", TrueWord),
		"("+endLabel+")",
		"@SP",
		"M=M+1",
	)
	return lines
}

// popToD: SP--, D=*SP
func popToD() []string {
	return []string{
		"@SP",
		"M=M-1",
		"A=M",
		"D=M",
	}
}

// pushD: *SP=D, SP++
func pushD() []string {
	return []string{
		"@SP",
		"A=M",
		"M=D",
		"@SP",
		"M=M+1",
	}
}
