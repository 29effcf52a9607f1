package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/jedib0t/go-pretty/v6/table"
)

// LevelTrace is above Info; the default handler prints it.
const (
	LevelTrace slog.Level = slog.LevelInfo + 1
)

func Trace(msg string, args ...any) {
	slog.Log(context.Background(), LevelTrace, msg, args...)
}

// Pointer registers shown by PrintState, in RAM order.
var pointerNames = []string{"SP", "LCL", "ARG", "THIS", "THAT"}

// PrintState renders the registers, the pointer cells and the words from
// stackBase up to SP.
func PrintState(w io.Writer, c *Core, stackBase uint16) {
	regTable := table.NewWriter()
	regTable.SetOutputMirror(w)
	regTable.SetTitle(fmt.Sprintf("%s @ PC=%d, %d cycles", c.Name(), c.state.PC, c.state.Cycles))

	header := table.Row{"A", "D"}
	row := table.Row{c.state.A, c.state.D}
	for i, name := range pointerNames {
		header = append(header, name)
		row = append(row, c.state.RAM[i])
	}
	regTable.AppendHeader(header)
	regTable.AppendRow(row)
	regTable.Render()

	stackTable := table.NewWriter()
	stackTable.SetOutputMirror(w)
	stackTable.SetTitle("Stack")
	stackTable.AppendHeader(table.Row{"Addr", "Value"})

	sp := uint16(c.state.RAM[0])
	for addr := stackBase; addr < sp && int(addr) < len(c.state.RAM); addr++ {
		stackTable.AppendRow(table.Row{addr, c.state.RAM[addr]})
	}
	stackTable.Render()
}

func LogState(c *Core) {
	slog.Debug("StateCheckpoint",
		"Core", c.Name(),
		"PC", c.state.PC,
		"A", c.state.A,
		"D", c.state.D,
		"SP", c.state.RAM[0],
		"Cycles", c.state.Cycles,
	)
}
