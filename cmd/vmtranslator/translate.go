package main

import (
	"fmt"
	"os"

	"github.com/sarchlab/hackvm/api"
	"github.com/spf13/cobra"
)

var (
	outDir     string
	noAnnotate bool
	showTable  bool
)

var translateCmd = &cobra.Command{
	Use:   "translate file.vm|dir ...",
	Short: "Translate VM files into .asm files",
	Long: `Translate writes Foo.asm for every Foo.vm given on the command line.
A directory argument stands for all of its .vm files. Output goes next to
the input unless --out-dir is set.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := expandInputs(args)
		if err != nil {
			return err
		}

		builder := api.DriverBuilder{}.
			WithOutputDir(outDir).
			WithAnnotations(!noAnnotate)
		if showTable {
			builder = builder.WithCommandTable(cmd.OutOrStdout())
		}

		summaries, err := builder.Build().TranslateFiles(files)
		for _, sum := range summaries {
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%d commands, %d lines)\n",
				sum.Input, sum.Output, sum.Commands, sum.AsmLines)
		}

		return err
	},
}

func init() {
	translateCmd.Flags().StringVarP(&outDir, "out-dir", "o", "",
		"directory for the generated .asm files")
	translateCmd.Flags().BoolVar(&noAnnotate, "no-annotate", false,
		"omit the source comment before each command")
	translateCmd.Flags().BoolVar(&showTable, "table", false,
		"print the parsed commands of each file")

	if err := translateCmd.MarkFlagDirname("out-dir"); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	rootCmd.AddCommand(translateCmd)
}
