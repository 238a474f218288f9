package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pathbind-bench",
		Short: "Synthetic update storms against the pathbind engine",
		Long: `pathbind-bench drives a reactive binding engine with synthetic list
mutations and reports scheduler and reconciler behavior:

  • batches flushed and their sizes
  • contents minted, pooled, and reused
  • fast-path hits (bulk append, bulk clear) vs general passes
  • identity-preserving reorders

Optionally serves the live inspector while the storm runs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		runCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("pathbind-bench %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}
