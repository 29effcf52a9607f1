package main

import (
	"github.com/k0kubun/pp/v3"
	"github.com/sarchlab/hackvm/program"
	"github.com/spf13/cobra"
)

var noColor bool

var parseCmd = &cobra.Command{
	Use:   "parse file.vm",
	Short: "Dump the classified commands of a VM file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		insts, err := program.LoadProgramFile(args[0])
		if err != nil {
			return err
		}

		printer := pp.New()
		printer.SetOutput(cmd.OutOrStdout())
		printer.SetColoringEnabled(!noColor)
		printer.Println(insts)

		return nil
	},
}

func init() {
	parseCmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.AddCommand(parseCmd)
}
