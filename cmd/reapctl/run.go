package main

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/hypersec/macjanitor/internal/config"
	"github.com/hypersec/macjanitor/internal/policy"
	"github.com/hypersec/macjanitor/internal/provider"
	"github.com/hypersec/macjanitor/internal/reaper"
)

var runPolicyName string

func init() {
	runCmd.Flags().StringVar(&runPolicyName, "policy", "", "Policy to evaluate (defaults to REAP_POLICY)")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one evaluation and print the report",
	Long: `Run one evaluation of the fleet against a reap policy and print the
resulting report as JSON. Idle servers ARE deleted; this is the same
evaluation the scheduled service performs, not a preview.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}

	if runPolicyName != "" {
		cfg.PolicyName = runPolicyName
	}

	registry, err := policy.NewRegistry(policy.NewLoader(cfg.PolicyDir))
	if err != nil {
		return fmt.Errorf("load policies: %w", err)
	}

	providerConfig := provider.DefaultConfig(cfg.SecretKey, cfg.Zone)
	if cfg.APIURL != "" {
		providerConfig.BaseURL = cfg.APIURL
	}
	client := provider.NewScalewayClient(providerConfig)

	r := reaper.NewReaper(reaper.DefaultConfig(cfg.PolicyName, cfg.Zone), client, registry, nil)

	report, err := r.Run(context.Background())
	if err != nil {
		return err
	}

	return printJSON(report)
}
