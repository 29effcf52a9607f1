package api

import (
	"io"

	"github.com/sarchlab/hackvm/emit"
)

type fileSinkFactory struct {
}

func (f fileSinkFactory) create(path string) (outputSink, error) {
	return emit.Create(path)
}

// DriverBuilder creates a new instance of Driver.
type DriverBuilder struct {
	outputDir   string
	noAnnotate  bool
	table       io.Writer
	sinkFactory sinkFactory
}

// WithOutputDir places generated .asm files in dir instead of next to their
// sources.
func (b DriverBuilder) WithOutputDir(dir string) DriverBuilder {
	b.outputDir = dir
	return b
}

// WithAnnotations sets whether each instruction is preceded by a comment
// line naming it. Annotations are on by default.
func (b DriverBuilder) WithAnnotations(on bool) DriverBuilder {
	b.noAnnotate = !on
	return b
}

// WithCommandTable renders a table of the parsed commands of each unit to
// w.
func (b DriverBuilder) WithCommandTable(w io.Writer) DriverBuilder {
	b.table = w
	return b
}

// Build creates a driver.
func (b DriverBuilder) Build() Driver {
	d := &driverImpl{
		sinkFactory: b.sinkFactory,
		outputDir:   b.outputDir,
		annotate:    !b.noAnnotate,
		table:       b.table,
	}

	if d.sinkFactory == nil {
		d.sinkFactory = fileSinkFactory{}
	}

	return d
}
