// Command chainfilectl is a small driver for the bytefile/recordfile/
// streamfile packages: build synthesizes a dataset, inspect reports on
// one, and verify sanity-checks one. The storage core is deliberately
// unopinionated about what sits on top of it; chainfilectl stands in
// for that higher-level consumer.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "chainfilectl [command] (flags)",
	Short: "build, inspect, and verify chainfile datasets",
}

func init() {
	rootCmd.AddCommand(
		buildCmd,
		inspectCmd,
		verifyCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
