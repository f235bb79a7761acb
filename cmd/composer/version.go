package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	builddate = "unknown"
	commit    = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Shows the version of composer",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Version:", version)
		fmt.Fprintln(out, "Build Date:", builddate)
		fmt.Fprintln(out, "Commit:", commit)
	},
}
