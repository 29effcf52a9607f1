package instr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Segment names an addressable region of the VM memory model.
type Segment int

const (
	Constant Segment = iota
	Local
	Argument
	This
	That
	Temp
	Pointer
	Static
)

var segmentNames = [...]string{
	Constant: "constant",
	Local:    "local",
	Argument: "argument",
	This:     "this",
	That:     "that",
	Temp:     "temp",
	Pointer:  "pointer",
	Static:   "static",
}

var segmentsByName = func() map[string]Segment {
	m := make(map[string]Segment, len(segmentNames))
	for seg, name := range segmentNames {
		m[name] = Segment(seg)
	}
	return m
}()

func (s Segment) String() string {
	if s < 0 || int(s) >= len(segmentNames) {
		return fmt.Sprintf("Segment(%d)", int(s))
	}
	return segmentNames[s]
}

// ParseSegment looks up a segment by its VM name.
func ParseSegment(name string) (Segment, error) {
	seg, ok := segmentsByName[name]
	if !ok {
		return 0, errors.Wrapf(ErrMalformed, "unknown segment %q", name)
	}
	return seg, nil
}

// Segments lists every segment in declaration order.
func Segments() []Segment {
	segs := make([]Segment, len(segmentNames))
	for i := range segs {
		segs[i] = Segment(i)
	}
	return segs
}

// MaxIndex is the largest index a push or pop may carry. Indices are loaded
// with a single address instruction, which holds 15 bits.
const MaxIndex = 1<<15 - 1

func parseIndex(tok string) (int, error) {
	if tok == "" || strings.TrimLeft(tok, "0123456789") != "" {
		return 0, errors.Wrapf(ErrMalformed,
			"index %q is not a non-negative integer", tok)
	}

	n, err := strconv.Atoi(tok)
	if err != nil || n > MaxIndex {
		return 0, errors.Wrapf(ErrMalformed,
			"index %s does not fit in 15 bits", tok)
	}
	return n, nil
}
