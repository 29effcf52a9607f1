// Package codegen lowers classified VM instructions into Hack assembly.
//
// A CodeWriter owns the state of one translation unit: the module name used
// to qualify static cells and labels, and a counter that keeps the jump
// targets of comparison commands unique. Translating several files in one
// process requires one CodeWriter per file.
package codegen

import (
	"fmt"
	"regexp"

	"github.com/pkg/errors"
	"github.com/sarchlab/hackvm/instr"
)

// Sink receives the assembly lines of one instruction at a time, in order.
type Sink interface {
	Write(lines []string) error
}

// CodeWriter generates Hack assembly for the instructions of one module.
type CodeWriter struct {
	module   string
	sink     Sink
	annotate bool

	labelCount int
	cmdCount   int
	lineCount  int
}

var modulePattern = regexp.MustCompile(`^[A-Za-z_.$:][A-Za-z0-9_.$:]*$`)

// CheckModule reports whether name can qualify Hack symbols. Static cells and
// labels are built from it, so it must itself be a symbol.
func CheckModule(name string) error {
	if !modulePattern.MatchString(name) {
		return errors.Wrapf(instr.ErrMalformed,
			"module name %q is not a valid symbol", name)
	}
	return nil
}

// NewCodeWriter creates a CodeWriter for the named module. Annotations are
// enabled.
func NewCodeWriter(module string, sink Sink) *CodeWriter {
	return &CodeWriter{
		module:   module,
		sink:     sink,
		annotate: true,
	}
}

// WithAnnotations turns the per-instruction comment line on or off.
func (w *CodeWriter) WithAnnotations(on bool) *CodeWriter {
	w.annotate = on
	return w
}

// Module returns the name that qualifies static cells and labels.
func (w *CodeWriter) Module() string {
	return w.module
}

// CommandCount is the number of instructions written so far.
func (w *CodeWriter) CommandCount() int {
	return w.cmdCount
}

// LineCount is the number of assembly lines written so far, not counting
// annotations.
func (w *CodeWriter) LineCount() int {
	return w.lineCount
}

// Write generates and emits one instruction. On error nothing is emitted.
func (w *CodeWriter) Write(inst instr.Instruction) error {
	lines, err := w.Generate(inst)
	if err != nil {
		return err
	}

	out := lines
	if w.annotate {
		out = make([]string, 0, len(lines)+1)
		out = append(out, w.annotation(inst))
		out = append(out, lines...)
	}

	if err := w.sink.Write(out); err != nil {
		return errors.Wrapf(err, "emit %q", inst.String())
	}

	w.cmdCount++
	w.lineCount += len(lines)

	return nil
}

// WriteArithmetic emits an arithmetic, logical or comparison command.
func (w *CodeWriter) WriteArithmetic(op instr.Op) error {
	return w.Write(instr.Instruction{Kind: instr.Arithmetic, Op: op})
}

// WritePushPop emits a push or pop command.
func (w *CodeWriter) WritePushPop(kind instr.Kind, seg instr.Segment, index int) error {
	if kind != instr.Push && kind != instr.Pop {
		return errors.Wrapf(instr.ErrMalformed, "%v is not push or pop", kind)
	}
	return w.Write(instr.Instruction{Kind: kind, Segment: seg, Index: index})
}

// WriteLabel emits a jump target declaration.
func (w *CodeWriter) WriteLabel(label string) error {
	return w.Write(instr.Instruction{Kind: instr.Label, Label: label})
}

// WriteGoto emits an unconditional jump.
func (w *CodeWriter) WriteGoto(label string) error {
	return w.Write(instr.Instruction{Kind: instr.Goto, Label: label})
}

// WriteIfGoto emits a jump taken when the popped value is not zero.
func (w *CodeWriter) WriteIfGoto(label string) error {
	return w.Write(instr.Instruction{Kind: instr.IfGoto, Label: label})
}

// Generate returns the assembly for one instruction without emitting it or
// an annotation. Comparison commands consume a label number even when the
// lines are never emitted.
func (w *CodeWriter) Generate(inst instr.Instruction) ([]string, error) {
	switch inst.Kind {
	case instr.Arithmetic:
		return w.arithmetic(inst.Op)
	case instr.Push:
		return w.push(inst.Segment, inst.Index)
	case instr.Pop:
		return w.pop(inst.Segment, inst.Index)
	case instr.Label:
		return []string{"(" + w.label(inst.Label) + ")"}, nil
	case instr.Goto:
		return []string{"@" + w.label(inst.Label), "0;JMP"}, nil
	case instr.IfGoto:
		lines := popToD()
		return append(lines, "@"+w.label(inst.Label), "D;JNE"), nil
	default:
		return nil, errors.Wrapf(instr.ErrMalformed, "unsupported command kind %v", inst.Kind)
	}
}

func (w *CodeWriter) annotation(inst instr.Instruction) string {
	text := inst.Raw
	if text == "" {
		text = inst.String()
	}
	return fmt.Sprintf("// [%d] %s", w.cmdCount, text)
}

// label scopes a VM label to the module so that files never share targets.
func (w *CodeWriter) label(name string) string {
	return w.module + "$" + name
}

func (w *CodeWriter) nextLabelID() int {
	id := w.labelCount
	w.labelCount++
	return id
}
