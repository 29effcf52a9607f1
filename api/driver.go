// Package api defines the driver that translates VM files into Hack
// assembly.
package api

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/sarchlab/hackvm/codegen"
	"github.com/sarchlab/hackvm/instr"
	"github.com/sarchlab/hackvm/program"
)

const (
	// VMExt is the extension of VM source files.
	VMExt = ".vm"
	// AsmExt is the extension of generated assembly files.
	AsmExt = ".asm"
)

// Driver provides the interface to run translations.
type Driver interface {
	// Translate reads VM commands from src and writes the assembly of the
	// named module to sink. It stops at the first error; lines already
	// handed to the sink stay there.
	Translate(src io.Reader, module string, sink codegen.Sink) (Summary, error)

	// TranslateFile translates one .vm file into the .asm file next to it
	// (or into the configured output directory). The output is always
	// closed, even when translation fails.
	TranslateFile(path string) (Summary, error)

	// TranslateFiles translates each file as an independent unit, in order,
	// stopping at the first failure.
	TranslateFiles(paths []string) ([]Summary, error)
}

// Summary describes one finished translation unit.
type Summary struct {
	Module      string
	Input       string
	Output      string
	Commands    int
	SourceLines int
	AsmLines    int
}

type outputSink interface {
	codegen.Sink
	Close() error
}

type sinkFactory interface {
	create(path string) (outputSink, error)
}

type driverImpl struct {
	sinkFactory sinkFactory
	outputDir   string
	annotate    bool
	table       io.Writer
}

// OutputPath returns the assembly path for a VM file, placed in outputDir
// when it is not empty.
func OutputPath(input, outputDir string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)) + AsmExt
	if outputDir != "" {
		return filepath.Join(outputDir, base)
	}
	return filepath.Join(filepath.Dir(input), base)
}

// ModuleName derives the module identity from a VM file name.
func ModuleName(input string) string {
	base := filepath.Base(input)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (d *driverImpl) Translate(
	src io.Reader,
	module string,
	sink codegen.Sink,
) (Summary, error) {
	sum := Summary{Module: module}

	if err := codegen.CheckModule(module); err != nil {
		return sum, err
	}

	cw := codegen.NewCodeWriter(module, sink).WithAnnotations(d.annotate)
	stream := program.NewStream(src)

	var rows []table.Row
	defer func() {
		d.renderTable(module, rows)
	}()

	for stream.Next() {
		inst, err := stream.Instruction()
		if err != nil {
			return d.finish(sum, stream, cw), errors.Wrap(err, module)
		}

		arg2 := ""
		if idx, ok := inst.Arg2(); ok {
			arg2 = strconv.Itoa(idx)
		}
		rows = append(rows, table.Row{stream.LineNum(), inst.Kind, inst.Arg1(), arg2})

		Trace("Command",
			"Module", module,
			"Line", stream.LineNum(),
			"Command", inst.Kind.String(),
			"Arg1", inst.Arg1(),
			"Arg2", arg2,
		)

		if inst.Segment == instr.Temp && inst.Index >= codegen.TempSize &&
			(inst.Kind == instr.Push || inst.Kind == instr.Pop) {
			slog.Warn("temp index outside the temp segment",
				"Module", module, "Line", stream.LineNum(), "Index", inst.Index)
		}

		if err := cw.Write(inst); err != nil {
			return d.finish(sum, stream, cw),
				errors.Wrapf(err, "%s: line %d", module, stream.LineNum())
		}
	}

	if err := stream.Err(); err != nil {
		return d.finish(sum, stream, cw), errors.Wrapf(err, "read %s", module)
	}

	return d.finish(sum, stream, cw), nil
}

func (d *driverImpl) finish(sum Summary, s *program.Stream, cw *codegen.CodeWriter) Summary {
	sum.Commands = cw.CommandCount()
	sum.SourceLines = s.LineNum()
	sum.AsmLines = cw.LineCount()
	return sum
}

func (d *driverImpl) TranslateFile(path string) (sum Summary, err error) {
	module := ModuleName(path)
	out := OutputPath(path, d.outputDir)

	if err := codegen.CheckModule(module); err != nil {
		return Summary{Module: module, Input: path}, errors.Wrap(err, path)
	}

	in, err := os.Open(path)
	if err != nil {
		return Summary{Module: module, Input: path}, errors.Wrap(err, "open")
	}
	defer in.Close()

	sink, err := d.sinkFactory.create(out)
	if err != nil {
		return Summary{Module: module, Input: path, Output: out}, err
	}
	defer func() {
		if closeErr := sink.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	slog.Info("Translate", "Input", path, "Output", out, "Module", module)

	sum, err = d.Translate(in, module, sink)
	sum.Input = path
	sum.Output = out

	if err == nil {
		slog.Info("Translated",
			"Module", module,
			"Commands", sum.Commands,
			"AsmLines", sum.AsmLines,
		)
	}

	return sum, err
}

func (d *driverImpl) TranslateFiles(paths []string) ([]Summary, error) {
	sums := make([]Summary, 0, len(paths))
	for _, p := range paths {
		sum, err := d.TranslateFile(p)
		sums = append(sums, sum)
		if err != nil {
			return sums, err
		}
	}
	return sums, nil
}

func (d *driverImpl) renderTable(module string, rows []table.Row) {
	if d.table == nil {
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(d.table)
	t.SetTitle(module)
	t.AppendHeader(table.Row{"Line", "Command", "Arg1", "Arg2"})
	t.AppendRows(rows)
	t.AppendFooter(table.Row{"", "Processed", len(rows), ""})
	t.Render()
}
