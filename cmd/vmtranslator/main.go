// Command vmtranslator lowers stack VM programs into Hack assembly.
package main

import (
	"fmt"
	"os"

	"github.com/tebeka/atexit"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
