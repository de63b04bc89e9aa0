package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hypersec/macjanitor/internal/config"
	"github.com/hypersec/macjanitor/internal/policy"
)

var policiesDir string

func init() {
	policiesCmd.Flags().StringVar(&policiesDir, "dir", config.DefaultPolicyDir, "Directory containing policy YAML files")
	rootCmd.AddCommand(policiesCmd)
}

var policiesCmd = &cobra.Command{
	Use:   "policies",
	Short: "List loaded reap policies",
	Args:  cobra.NoArgs,
	RunE:  runPolicies,
}

func runPolicies(cmd *cobra.Command, args []string) error {
	registry, err := policy.NewRegistry(policy.NewLoader(policiesDir))
	if err != nil {
		return fmt.Errorf("load policies: %w", err)
	}

	return printJSON(map[string]interface{}{
		"policies": registry.List(),
	})
}
