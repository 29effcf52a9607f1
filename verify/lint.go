package verify

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sarchlab/hackvm/core"
)

// IssueType categorizes lint issues
type IssueType string

const (
	IssueStruct IssueType = "STRUCT" // duplicate or dangling labels
	IssueRange  IssueType = "RANGE"  // constants the platform cannot load
	IssueSyntax IssueType = "SYNTAX" // lines the assembler rejects
)

// Issue represents a single lint issue
type Issue struct {
	Type    IssueType
	Line    int    // 1-based line in the assembly, 0 if not applicable
	Symbol  string // label or constant involved, if any
	Message string
}

func (i Issue) String() string {
	if i.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s", i.Type, i.Line, i.Message)
	}
	return fmt.Sprintf("[%s] %s", i.Type, i.Message)
}

// RunLint performs static checks on generated assembly.
// Returns a list of issues found, or empty list if no issues.
func RunLint(lines []string) []Issue {
	var issues []Issue

	declared := make(map[string]int)
	type jumpRef struct {
		symbol string
		line   int
	}
	var jumps []jumpRef

	var prevAddr string
	var prevLine int
	for n, raw := range lines {
		text := stripAsm(raw)
		if text == "" {
			continue
		}
		line := n + 1

		switch {
		case strings.HasPrefix(text, "("):
			name := strings.TrimSuffix(strings.TrimPrefix(text, "("), ")")
			if first, dup := declared[name]; dup {
				issues = append(issues, Issue{
					Type:    IssueStruct,
					Line:    line,
					Symbol:  name,
					Message: fmt.Sprintf("label %q already declared on line %d", name, first),
				})
				continue
			}
			declared[name] = line
			prevAddr = ""
			continue

		case strings.HasPrefix(text, "@"):
			operand := text[1:]
			if v, err := strconv.Atoi(operand); err == nil {
				if v < 0 || v > core.MaxAddressValue {
					issues = append(issues, Issue{
						Type:    IssueRange,
						Line:    line,
						Symbol:  operand,
						Message: fmt.Sprintf("constant %d does not fit in 15 bits", v),
					})
				}
				prevAddr = ""
			} else {
				prevAddr = operand
				prevLine = line
			}
			continue

		case strings.Contains(text, ";J") && prevAddr != "":
			if !core.IsPredefined(prevAddr) {
				jumps = append(jumps, jumpRef{symbol: prevAddr, line: prevLine})
			}
		}

		prevAddr = ""
	}

	for _, j := range jumps {
		if _, ok := declared[j.symbol]; !ok {
			issues = append(issues, Issue{
				Type:    IssueStruct,
				Line:    j.line,
				Symbol:  j.symbol,
				Message: fmt.Sprintf("jump to undeclared label %q", j.symbol),
			})
		}
	}

	if len(issues) == 0 {
		if _, err := core.Assemble(lines); err != nil {
			issues = append(issues, Issue{
				Type:    IssueSyntax,
				Message: err.Error(),
			})
		}
	}

	return issues
}

func stripAsm(line string) string {
	if i := strings.Index(line, "//"); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}
