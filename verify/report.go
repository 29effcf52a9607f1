package verify

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
)

// VerificationReport represents a complete verification report
type VerificationReport struct {
	Modules       []string
	AsmLines      int
	LintIssues    []Issue
	SimulationErr error
	SimulationOK  bool
	Cycles        uint64
	SP            int16
	Stack         []int16
	Layout        Layout
}

// GenerateReport runs lint and execution, returns a report
func GenerateReport(mods []Module, layout Layout, maxCycles uint64) *VerificationReport {
	report := &VerificationReport{Layout: layout}
	for _, m := range mods {
		report.Modules = append(report.Modules, m.Name)
	}

	s := NewSession(layout).WithMaxCycles(maxCycles)
	report.SimulationErr = s.Run(mods...)
	report.SimulationOK = report.SimulationErr == nil
	report.AsmLines = len(s.Asm())
	report.LintIssues = s.Issues()

	if cpu := s.CPU(); cpu != nil {
		report.Cycles = cpu.Cycles()
		report.SP = s.SP()
		report.Stack = s.Stack()
	}

	return report
}

// WriteReport writes a formatted report to a writer
func (r *VerificationReport) WriteReport(w io.Writer) {
	separator := strings.Repeat("=", 60)

	fmt.Fprintln(w, separator)
	fmt.Fprintln(w, "VM TRANSLATION VERIFICATION REPORT")
	fmt.Fprintln(w, separator)
	fmt.Fprintf(w, "Modules: %s\n", strings.Join(r.Modules, ", "))
	fmt.Fprintf(w, "Assembly lines: %d\n", r.AsmLines)

	fmt.Fprintln(w, "\n"+separator)
	fmt.Fprintln(w, "STAGE 1: STATIC LINT CHECKS")
	fmt.Fprintln(w, separator)

	if len(r.LintIssues) == 0 {
		fmt.Fprintln(w, "No lint issues found")
	} else {
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.AppendHeader(table.Row{"Type", "Line", "Symbol", "Message"})
		for _, issue := range r.LintIssues {
			t.AppendRow(table.Row{issue.Type, issue.Line, issue.Symbol, issue.Message})
		}
		t.Render()
	}

	fmt.Fprintln(w, "\n"+separator)
	fmt.Fprintln(w, "STAGE 2: EXECUTION")
	fmt.Fprintln(w, separator)

	if r.SimulationOK {
		fmt.Fprintf(w, "Halted after %d cycles\n", r.Cycles)
	} else {
		fmt.Fprintf(w, "Execution error: %v\n", r.SimulationErr)
	}

	if r.Cycles > 0 || r.SimulationOK {
		fmt.Fprintf(w, "SP = %d (depth %d)\n", r.SP, int(r.SP)-int(r.Layout.SP))

		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetTitle("Stack")
		t.AppendHeader(table.Row{"Addr", "Value"})
		for i, v := range r.Stack {
			t.AppendRow(table.Row{int(r.Layout.SP) + i, v})
		}
		t.Render()
	}

	fmt.Fprintln(w, "\n"+separator)
	status := "PASSED"
	if !r.Passed() {
		status = "FAILED"
	}
	fmt.Fprintf(w, "RESULT: %s\n", status)
	fmt.Fprintln(w, separator)
}

// Passed reports whether both stages succeeded.
func (r *VerificationReport) Passed() bool {
	return r.SimulationOK && len(r.LintIssues) == 0
}

// SaveReportToFile saves the report to a file
func (r *VerificationReport) SaveReportToFile(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "failed to create report file")
	}

	return errors.Wrapf(r.save(file), "save report %s", filename)
}

func (r *VerificationReport) save(out io.WriteCloser) error {
	w := bufio.NewWriter(out)
	r.WriteReport(w)

	flushErr := w.Flush()
	closeErr := out.Close()
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}
