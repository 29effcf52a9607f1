package core

import (
	"bufio"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// ErrSyntax is returned for assembly lines that cannot be assembled.
var ErrSyntax = errors.New("assembly syntax error")

// Program is an assembled Hack program.
type Program struct {
	Insts []Inst

	// Labels maps each label to the address of the instruction it precedes.
	Labels map[string]uint16

	// Variables maps each variable symbol to its RAM address, allocated from
	// VariableBase in order of first use.
	Variables map[string]uint16
}

// Assemble resolves labels and variables and decodes every instruction.
func Assemble(lines []string) (Program, error) {
	prog := Program{
		Labels:    make(map[string]uint16),
		Variables: make(map[string]uint16),
	}

	type pending struct {
		text string
		line int
	}
	var body []pending

	// First pass: collect labels.
	for n, raw := range lines {
		text := cleanLine(raw)
		if text == "" {
			continue
		}

		if strings.HasPrefix(text, "(") {
			if !strings.HasSuffix(text, ")") || len(text) < 3 {
				return Program{}, errors.Wrapf(ErrSyntax, "line %d: bad label %q", n+1, raw)
			}
			name := text[1 : len(text)-1]
			if !isSymbol(name) {
				return Program{}, errors.Wrapf(ErrSyntax, "line %d: bad label %q", n+1, name)
			}
			if _, dup := prog.Labels[name]; dup || IsPredefined(name) {
				return Program{}, errors.Wrapf(ErrSyntax, "line %d: label %q redefined", n+1, name)
			}
			prog.Labels[name] = uint16(len(body))
			continue
		}

		body = append(body, pending{text: text, line: n + 1})
	}

	// Second pass: decode.
	next := uint16(VariableBase)
	for _, p := range body {
		inst, err := decode(p.text)
		if err != nil {
			return Program{}, errors.Wrapf(err, "line %d", p.line)
		}
		inst.Line = p.line
		inst.Raw = p.text

		if inst.IsAddress && inst.Comp != "" {
			sym := inst.Comp
			inst.Comp = ""
			if addr, ok := prog.resolve(sym); ok {
				inst.Value = addr
			} else {
				prog.Variables[sym] = next
				inst.Value = next
				next++
			}
		}

		prog.Insts = append(prog.Insts, inst)
	}

	return prog, nil
}

// LoadProgramFile assembles the Hack assembly file at path.
func LoadProgramFile(path string) (Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return Program{}, errors.Wrap(err, "LoadProgramFile")
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return Program{}, errors.Wrapf(err, "LoadProgramFile %s", path)
	}

	return Assemble(lines)
}

func (p Program) resolve(sym string) (uint16, bool) {
	if addr, ok := predefinedSymbols[sym]; ok {
		return addr, true
	}
	if addr, ok := p.Labels[sym]; ok {
		return addr, true
	}
	addr, ok := p.Variables[sym]
	return addr, ok
}

// decode parses one instruction. Unresolved symbols of address instructions
// are returned in Comp.
func decode(text string) (Inst, error) {
	if strings.HasPrefix(text, "@") {
		operand := text[1:]
		if operand == "" {
			return Inst{}, errors.Wrapf(ErrSyntax, "empty address %q", text)
		}
		if unicode.IsDigit(rune(operand[0])) {
			v, err := strconv.Atoi(operand)
			if err != nil || v > MaxAddressValue {
				return Inst{}, errors.Wrapf(ErrSyntax, "address %q out of range", operand)
			}
			return Inst{IsAddress: true, Value: uint16(v)}, nil
		}
		if !isSymbol(operand) {
			return Inst{}, errors.Wrapf(ErrSyntax, "bad symbol %q", operand)
		}
		return Inst{IsAddress: true, Comp: operand}, nil
	}

	inst := Inst{}
	rest := text
	if i := strings.Index(rest, "="); i >= 0 {
		inst.Dest = rest[:i]
		rest = rest[i+1:]
		if !validDest(inst.Dest) {
			return Inst{}, errors.Wrapf(ErrSyntax, "bad destination %q", inst.Dest)
		}
	}
	if i := strings.Index(rest, ";"); i >= 0 {
		inst.Jump = rest[i+1:]
		rest = rest[:i]
		if !validJumps[inst.Jump] {
			return Inst{}, errors.Wrapf(ErrSyntax, "bad jump %q", inst.Jump)
		}
	}
	inst.Comp = rest
	if _, ok := compTable[inst.Comp]; !ok {
		return Inst{}, errors.Wrapf(ErrSyntax, "bad computation %q", inst.Comp)
	}

	return inst, nil
}

func validDest(dest string) bool {
	if dest == "" || len(dest) > 3 {
		return false
	}
	seen := map[rune]bool{}
	for _, r := range dest {
		if !strings.ContainsRune("AMD", r) || seen[r] {
			return false
		}
		seen[r] = true
	}
	return true
}

func isSymbol(s string) bool {
	if s == "" || unicode.IsDigit(rune(s[0])) {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !strings.ContainsRune("_.$:", r) {
			return false
		}
	}
	return true
}

// cleanLine drops comments and all whitespace.
func cleanLine(line string) string {
	if i := strings.Index(line, "//"); i >= 0 {
		line = line[:i]
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, line)
}
