package core

import (
	"github.com/sarchlab/akita/v4/sim"
)

// DefaultMemorySize is the number of RAM words of the Hack platform.
const DefaultMemorySize = 1 << 15

// Builder can create new cores.
type Builder struct {
	engine     sim.Engine
	freq       sim.Freq
	memorySize int
	maxCycles  uint64
}

// WithEngine sets the engine.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the core.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithMemorySize sets the number of RAM words.
func (b Builder) WithMemorySize(words int) Builder {
	if words <= 0 || words > DefaultMemorySize {
		panic("memory size must be between 1 and 32768 words")
	}
	b.memorySize = words
	return b
}

// WithMaxCycles bounds how many instructions a run may execute. Zero means
// no bound.
func (b Builder) WithMaxCycles(cycles uint64) Builder {
	b.maxCycles = cycles
	return b
}

func NewBuilder() Builder {
	return Builder{
		freq:       1 * sim.GHz,
		memorySize: DefaultMemorySize,
		maxCycles:  1_000_000,
	}
}

// Build creates a core.
func (b Builder) Build(name string) *Core {
	engine := b.engine
	if engine == nil {
		engine = sim.NewSerialEngine()
	}

	c := &Core{maxCycles: b.maxCycles}
	c.TickingComponent = sim.NewTickingComponent(name, engine, b.freq, c)
	c.state = coreState{
		RAM: make([]int16, b.memorySize),
	}

	return c
}
