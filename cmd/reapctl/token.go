package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/hypersec/macjanitor/internal/auth"
)

var (
	tokenScheduler string
	tokenTTL       time.Duration
)

func init() {
	tokenCmd.Flags().StringVar(&tokenScheduler, "scheduler", "hourly-cron", "Scheduler name embedded in the token")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 30*24*time.Hour, "Token lifetime")
	rootCmd.AddCommand(tokenCmd)
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a trigger token for the scheduler",
	Long: `Mint a bearer token the external scheduler presents when calling
POST /api/v1/runs. Requires TRIGGER_SECRET in the environment.`,
	Args: cobra.NoArgs,
	RunE: runToken,
}

func runToken(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	secret := os.Getenv("TRIGGER_SECRET")
	if secret == "" {
		return fmt.Errorf("TRIGGER_SECRET is required")
	}

	a := auth.NewAuth(secret, tokenTTL)
	token, err := a.GenerateTriggerToken(tokenScheduler)
	if err != nil {
		return err
	}

	return printJSON(map[string]string{
		"token":      token,
		"scheduler":  tokenScheduler,
		"expires_in": tokenTTL.String(),
	})
}
