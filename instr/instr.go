// Package instr classifies single lines of VM source into instructions.
package instr

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// ErrMalformed is returned for lines that do not form a known VM command.
var ErrMalformed = errors.New("malformed instruction")

// ErrIllegalOperation is returned for commands that parse but can never be
// executed, such as popping into the constant segment.
var ErrIllegalOperation = errors.New("illegal operation")

// CommentMarker starts a comment that runs to the end of the line.
const CommentMarker = "//"

// Kind tells what family a VM command belongs to.
type Kind int

const (
	Arithmetic Kind = iota
	Push
	Pop
	Label
	Goto
	IfGoto
)

var kindNames = [...]string{
	Arithmetic: "C_ARITHMETIC",
	Push:       "C_PUSH",
	Pop:        "C_POP",
	Label:      "C_LABEL",
	Goto:       "C_GOTO",
	IfGoto:     "C_IF",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Op is one of the nine arithmetic, logical and comparison operators.
type Op int

const (
	Add Op = iota
	Sub
	Neg
	Eq
	Gt
	Lt
	And
	Or
	Not
)

var opNames = [...]string{
	Add: "add",
	Sub: "sub",
	Neg: "neg",
	Eq:  "eq",
	Gt:  "gt",
	Lt:  "lt",
	And: "and",
	Or:  "or",
	Not: "not",
}

var opsByName = func() map[string]Op {
	m := make(map[string]Op, len(opNames))
	for op, name := range opNames {
		m[name] = Op(op)
	}
	return m
}()

func (o Op) String() string {
	if o < 0 || int(o) >= len(opNames) {
		return fmt.Sprintf("Op(%d)", int(o))
	}
	return opNames[o]
}

// ParseOp looks up an operator by its VM mnemonic.
func ParseOp(name string) (Op, bool) {
	op, ok := opsByName[name]
	return op, ok
}

// IsUnary reports whether the operator consumes a single stack value.
func (o Op) IsUnary() bool {
	return o == Neg || o == Not
}

// IsComparison reports whether the operator produces a boolean word.
func (o Op) IsComparison() bool {
	return o == Eq || o == Gt || o == Lt
}

// Instruction is one classified VM command. Only the fields relevant to the
// Kind are set.
type Instruction struct {
	Kind    Kind
	Op      Op      // Arithmetic
	Segment Segment // Push, Pop
	Index   int     // Push, Pop
	Label   string  // Label, Goto, IfGoto

	// Raw is the trimmed source text the instruction was classified from.
	Raw string
}

// Arg1 returns the first operand: the operator name for arithmetic
// commands, the segment name for push and pop, the symbol for branching.
func (i Instruction) Arg1() string {
	switch i.Kind {
	case Arithmetic:
		return i.Op.String()
	case Push, Pop:
		return i.Segment.String()
	default:
		return i.Label
	}
}

// Arg2 returns the index of push and pop commands.
func (i Instruction) Arg2() (int, bool) {
	if i.Kind == Push || i.Kind == Pop {
		return i.Index, true
	}
	return 0, false
}

// String renders the instruction in canonical VM syntax.
func (i Instruction) String() string {
	switch i.Kind {
	case Arithmetic:
		return i.Op.String()
	case Push:
		return fmt.Sprintf("push %s %d", i.Segment, i.Index)
	case Pop:
		return fmt.Sprintf("pop %s %d", i.Segment, i.Index)
	case Label:
		return "label " + i.Label
	case Goto:
		return "goto " + i.Label
	case IfGoto:
		return "if-goto " + i.Label
	default:
		return i.Raw
	}
}

var symbolPattern = regexp.MustCompile(`^[A-Za-z_.:][A-Za-z0-9_.:]*$`)

// Classify turns one line of VM source into an Instruction. The line must
// hold exactly one command; blank and comment-only lines are malformed here
// and are expected to be filtered out by the caller.
func Classify(line string) (Instruction, error) {
	text := StripComment(line)
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return Instruction{}, errors.Wrap(ErrMalformed, "empty command")
	}

	inst := Instruction{Raw: text}
	keyword := fields[0]

	switch keyword {
	case "push", "pop":
		inst.Kind = Push
		if keyword == "pop" {
			inst.Kind = Pop
		}
		if len(fields) != 3 {
			return Instruction{}, errors.Wrapf(ErrMalformed,
				"%q: %s takes a segment and an index", text, keyword)
		}
		seg, err := ParseSegment(fields[1])
		if err != nil {
			return Instruction{}, errors.Wrapf(err, "%q", text)
		}
		index, err := parseIndex(fields[2])
		if err != nil {
			return Instruction{}, errors.Wrapf(err, "%q", text)
		}
		inst.Segment = seg
		inst.Index = index
	case "label", "goto", "if-goto":
		switch keyword {
		case "label":
			inst.Kind = Label
		case "goto":
			inst.Kind = Goto
		default:
			inst.Kind = IfGoto
		}
		if len(fields) != 2 {
			return Instruction{}, errors.Wrapf(ErrMalformed,
				"%q: %s takes one symbol", text, keyword)
		}
		if !symbolPattern.MatchString(fields[1]) {
			return Instruction{}, errors.Wrapf(ErrMalformed,
				"%q: invalid symbol %q", text, fields[1])
		}
		inst.Label = fields[1]
	default:
		op, ok := ParseOp(keyword)
		if !ok {
			return Instruction{}, errors.Wrapf(ErrMalformed,
				"%q: unknown command %q", text, keyword)
		}
		if len(fields) != 1 {
			return Instruction{}, errors.Wrapf(ErrMalformed,
				"%q: %s takes no operands", text, keyword)
		}
		inst.Kind = Arithmetic
		inst.Op = op
	}

	return inst, nil
}

// StripComment removes a trailing comment and surrounding whitespace.
func StripComment(line string) string {
	if i := strings.Index(line, CommentMarker); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}

// IsSkippable reports whether a line carries no command at all.
func IsSkippable(line string) bool {
	trimmed := strings.TrimSpace(line)
	return trimmed == "" || strings.HasPrefix(trimmed, CommentMarker)
}
