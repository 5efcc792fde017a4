package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fireboltd",
	Short: "On-device Firebolt request gateway",
	Long: `Fireboltd is the on-device Firebolt gateway daemon.

It accepts JSON-RPC requests from applications over a local WebSocket or
bridge transport, authorizes each call against the device's capability and
user-grant policy, validates arguments against the OpenRPC schema, and
dispatches approved calls to in-process handlers, extension channels, or
external brokers.`,
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
