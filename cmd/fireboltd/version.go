package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fireboltd/fireboltd/pkg/output"
)

// Set by the release pipeline via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		printer := output.New()
		printer.Banner(version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}
