// Package program reads VM source text and yields its commands one by one.
package program

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/sarchlab/hackvm/instr"
)

// Stream is a forward-only reader over the commands of a VM source. Blank
// and comment lines are skipped; they count toward LineNum but not Count.
type Stream struct {
	scanner *bufio.Scanner
	line    string
	lineNum int
	count   int
}

// NewStream creates a stream reading from r.
func NewStream(r io.Reader) *Stream {
	return &Stream{scanner: bufio.NewScanner(r)}
}

// Next advances to the next command line. It returns false once the input
// is exhausted or a read error occurred; Err tells the two apart.
func (s *Stream) Next() bool {
	for s.scanner.Scan() {
		s.lineNum++
		raw := s.scanner.Text()
		if s.lineNum == 1 {
			raw = strings.TrimPrefix(raw, "\ufeff")
		}
		if instr.IsSkippable(raw) {
			continue
		}
		s.line = strings.TrimSpace(raw)
		s.count++
		return true
	}
	s.line = ""
	return false
}

// Text returns the trimmed text of the current command line.
func (s *Stream) Text() string {
	return s.line
}

// Instruction classifies the current command line. Errors carry the source
// line number.
func (s *Stream) Instruction() (instr.Instruction, error) {
	inst, err := instr.Classify(s.line)
	if err != nil {
		return instr.Instruction{}, errors.Wrapf(err, "line %d", s.lineNum)
	}
	return inst, nil
}

// Err returns the first read error, if any.
func (s *Stream) Err() error {
	return s.scanner.Err()
}

// LineNum is the number of physical lines consumed so far.
func (s *Stream) LineNum() int {
	return s.lineNum
}

// Count is the number of command lines yielded so far.
func (s *Stream) Count() int {
	return s.count
}

// LoadProgram classifies every command read from r.
func LoadProgram(r io.Reader) ([]instr.Instruction, error) {
	var insts []instr.Instruction

	s := NewStream(r)
	for s.Next() {
		inst, err := s.Instruction()
		if err != nil {
			return nil, err
		}
		insts = append(insts, inst)
	}

	if err := s.Err(); err != nil {
		return nil, errors.Wrap(err, "read")
	}

	return insts, nil
}

// LoadProgramFile classifies every command of the VM file at path.
func LoadProgramFile(path string) ([]instr.Instruction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "LoadProgramFile")
	}
	defer f.Close()

	insts, err := LoadProgram(f)
	if err != nil {
		return nil, errors.Wrapf(err, "LoadProgramFile %s", path)
	}
	return insts, nil
}
