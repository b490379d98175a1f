package cmd

import (
	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

var rootCmd = &cobra.Command{
	Use:   "decoratorc",
	Short: "Lower TC39 Stage 3 decorator syntax to plain ECMAScript",
	Long: `decoratorc rewrites @decorator syntax on JS/TS classes into plain
ECMAScript: decorated classes gain a static initialization block that
calls the inlined _applyDecs runtime helper, and every @decorator token
disappears from the output.`,
	Version: version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
