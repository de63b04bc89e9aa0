package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/hypersec/macjanitor/internal/config"
	"github.com/hypersec/macjanitor/internal/policy"
	"github.com/hypersec/macjanitor/internal/provider"
	"github.com/hypersec/macjanitor/internal/reaper"
	"github.com/hypersec/macjanitor/internal/store"
)

func main() {
	// Load .env if present, then configuration from environment
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Initialize optional run-history store
	var st *store.Store
	if cfg.DatabaseURL != "" {
		log.Println("Connecting to database...")
		st, err = store.NewStore(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer st.Close()

		if err := st.Migrate(context.Background()); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	// Load reap policies
	registry, err := policy.NewRegistry(policy.NewLoader(cfg.PolicyDir))
	if err != nil {
		log.Fatalf("Failed to load policies: %v", err)
	}

	if !registry.Exists(cfg.PolicyName) {
		log.Fatalf("Policy %q not found in %s", cfg.PolicyName, cfg.PolicyDir)
	}

	// Provider client
	providerConfig := provider.DefaultConfig(cfg.SecretKey, cfg.Zone)
	if cfg.APIURL != "" {
		providerConfig.BaseURL = cfg.APIURL
	}
	client := provider.NewScalewayClient(providerConfig)

	// Create reaper
	reaperConfig := reaper.DefaultConfig(cfg.PolicyName, cfg.Zone)
	reaperConfig.CheckInterval = cfg.Interval

	r := reaper.NewReaper(reaperConfig, client, registry, st)

	// Start reaper loop
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		if err := r.Start(ctx); err != nil && err != context.Canceled {
			log.Printf("Reaper error: %v", err)
		}
	}()

	log.Println("Reaper started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down reaper...")
	cancel()

	log.Println("Shutdown complete")
}
