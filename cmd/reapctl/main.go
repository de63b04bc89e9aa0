// Package main provides the reapctl CLI entry point.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "reapctl",
	Short: "Operate the idle Mac mini reaper",
	Long: `reapctl operates the idle Mac mini reaper from the command line.

It can run a one-shot evaluation against the provider API, inspect the
loaded reap policies, and mint trigger tokens for the external scheduler.
All commands output JSON.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Version = Version
}

// printJSON writes v to stdout as indented JSON
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
