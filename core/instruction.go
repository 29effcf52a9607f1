package core

import "fmt"

// Inst is one assembled Hack instruction.
type Inst struct {
	// Address instructions load Value into A. All others are compute
	// instructions made of Dest, Comp and Jump.
	IsAddress bool
	Value     uint16

	Dest string
	Comp string
	Jump string

	// The source text and its line number, for diagnostics.
	Raw  string
	Line int
}

func (i Inst) String() string {
	if i.IsAddress {
		return fmt.Sprintf("@%d", i.Value)
	}

	s := i.Comp
	if i.Dest != "" {
		s = i.Dest + "=" + s
	}
	if i.Jump != "" {
		s += ";" + i.Jump
	}
	return s
}

// Symbols defined by the platform before any program symbol.
var predefinedSymbols = map[string]uint16{
	"SP":     0,
	"LCL":    1,
	"ARG":    2,
	"THIS":   3,
	"THAT":   4,
	"SCREEN": 16384,
	"KBD":    24576,
}

func init() {
	for r := 0; r < 16; r++ {
		predefinedSymbols[fmt.Sprintf("R%d", r)] = uint16(r)
	}
}

// VariableBase is the address of the first variable symbol.
const VariableBase = 16

// MaxAddressValue is the largest constant an address instruction can load.
const MaxAddressValue = 1<<15 - 1

var validJumps = map[string]bool{
	"JGT": true, "JEQ": true, "JGE": true, "JLT": true,
	"JNE": true, "JLE": true, "JMP": true,
}

// IsPredefined reports whether name is a platform symbol.
func IsPredefined(name string) bool {
	_, ok := predefinedSymbols[name]
	return ok
}
