package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"github.com/sarchlab/hackvm/api"
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "vmtranslator",
	Short: "Translate stack VM programs into Hack assembly",
	Long: `Vmtranslator reads VM source files (push/pop, arithmetic and
branching commands) and writes one Hack assembly file per input.

Each input file is its own translation unit: static variables and generated
labels are named after the file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"log every translated command")
}

func setupLogging(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})

	slog.SetDefault(slog.New(handler))
}

// expandInputs replaces every directory argument with the VM files it
// contains, sorted by name.
func expandInputs(args []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, errors.Wrapf(err, "input %s", arg)
		}

		if !info.IsDir() {
			files = append(files, arg)
			continue
		}

		matches, err := filepath.Glob(filepath.Join(arg, "*"+api.VMExt))
		if err != nil {
			return nil, errors.Wrapf(err, "input %s", arg)
		}
		if len(matches) == 0 {
			return nil, errors.Errorf("no %s files in %s", api.VMExt, arg)
		}

		sort.Strings(matches)
		files = append(files, matches...)
	}

	return files, nil
}
