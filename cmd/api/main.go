package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/hypersec/macjanitor/internal/api"
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
	} else {
		log.Println("DATABASE_URL not set, run history disabled")
	}

	// Load reap policies
	log.Println("Loading reap policies...")
	registry, err := policy.NewRegistry(policy.NewLoader(cfg.PolicyDir))
	if err != nil {
		log.Fatalf("Failed to load policies: %v", err)
	}
	log.Printf("Loaded %d policies (default=%s)", registry.Count(), cfg.PolicyName)

	if !registry.Exists(cfg.PolicyName) {
		log.Fatalf("Default policy %q not found in %s", cfg.PolicyName, cfg.PolicyDir)
	}

	// Provider client
	providerConfig := provider.DefaultConfig(cfg.SecretKey, cfg.Zone)
	if cfg.APIURL != "" {
		providerConfig.BaseURL = cfg.APIURL
	}
	client := provider.NewScalewayClient(providerConfig)

	// Reaper behind the trigger endpoint
	reaperConfig := reaper.DefaultConfig(cfg.PolicyName, cfg.Zone)
	r := reaper.NewReaper(reaperConfig, client, registry, st)

	// API server
	serverConfig := api.DefaultServerConfig()
	serverConfig.Port = cfg.Port
	if cfg.TriggerSecret != "" {
		serverConfig.EnableAuth = true
		serverConfig.TriggerSecret = cfg.TriggerSecret
	}

	log.Printf("Server configured:")
	log.Printf("  Port: %d", serverConfig.Port)
	log.Printf("  Zone: %s", cfg.Zone)
	log.Printf("  Trigger auth enabled: %v", serverConfig.EnableAuth)

	server := api.NewServer(serverConfig, r, registry, st)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), serverConfig.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
