// Command navctl inspects navigation graphs and saved sessions without
// starting the interactive navigator.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const (
	exitSuccess = 0
	exitError   = 1
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "navctl:", err)
		os.Exit(exitError)
	}
	os.Exit(exitSuccess)
}

// =============================================================================
// COMMAND TREE
// =============================================================================

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "navctl",
		Short:         "Inspect navigation graphs, deep links and saved sessions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newRoutesCmd(),
		newResolveCmd(),
		newValidateCmd(),
		newSnapshotCmd(),
	)
	return root
}
