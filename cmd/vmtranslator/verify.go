package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/sarchlab/hackvm/api"
	"github.com/sarchlab/hackvm/verify"
	"github.com/spf13/cobra"
)

var (
	maxCycles  uint64
	reportFile string
)

var verifyCmd = &cobra.Command{
	Use:   "verify file.vm|dir ...",
	Short: "Translate, lint and run VM files on the Hack emulator",
	Long: `Verify translates the inputs, concatenates their assembly in order,
checks it for structural problems and runs it on an emulated Hack CPU with
the standard test layout (SP=256, LCL=300, ARG=400, THIS=3000, THAT=3010).
The final stack is printed. The command fails if any stage fails.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := expandInputs(args)
		if err != nil {
			return err
		}

		var mods []verify.Module
		for _, f := range files {
			src, err := os.ReadFile(f)
			if err != nil {
				return errors.Wrapf(err, "read %s", f)
			}
			mods = append(mods, verify.Module{
				Name:   api.ModuleName(f),
				Source: string(src),
			})
		}

		report := verify.GenerateReport(mods, verify.DefaultLayout, maxCycles)
		report.WriteReport(cmd.OutOrStdout())

		if reportFile != "" {
			if err := report.SaveReportToFile(reportFile); err != nil {
				return err
			}
		}

		if !report.Passed() {
			return errors.New("verification failed")
		}

		return nil
	},
}

func init() {
	verifyCmd.Flags().Uint64Var(&maxCycles, "max-cycles", 1_000_000,
		"instruction budget of the emulator")
	verifyCmd.Flags().StringVar(&reportFile, "report", "",
		"also write the report to this file")
	rootCmd.AddCommand(verifyCmd)
}
