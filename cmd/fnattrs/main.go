// Package main implements the fnattrs CLI.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"fnattrs/internal/version"
)

var rootCmd = &cobra.Command{
	Use:           "fnattrs",
	Short:         "Lower source function attributes to LLVM attributes",
	Long:          `fnattrs reads function declarations from fnattrs.toml and prints the LLVM attributes the backend attaches to them.`,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setupColor(cmd); err != nil {
			return err
		}
		cleanup, err := setupTracing(cmd)
		if err != nil {
			return err
		}
		traceCleanup = cleanup
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if traceCleanup != nil {
			traceCleanup()
			traceCleanup = nil
		}
	},
}

var traceCleanup func()

// main registers subcommands and persistent flags, then executes the root command.
// If command execution returns an error, the process exits with status code 1.
func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(lowerCmd)
	rootCmd.AddCommand(attrsCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().String("diag-format", "pretty", "diagnostics format (pretty|json)")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of warnings per function (errors are always shown)")
	rootCmd.PersistentFlags().String("trace", "", "write trace events to file (- for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "off", "trace level (off|error|phase|detail|debug)")

	if err := rootCmd.Execute(); err != nil {
		if traceCleanup != nil {
			traceCleanup()
		}
		os.Exit(1)
	}
}

// isTerminal reports whether f is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
