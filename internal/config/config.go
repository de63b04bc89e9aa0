// Package config loads service configuration from the environment. Core
// components never read ambient process state; everything they need arrives
// through the Config struct built here.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Defaults for optional settings
const (
	DefaultZone       = "fr-par-3"
	DefaultPolicyDir  = "policies"
	DefaultPolicyName = "test-mac-prefix"
	DefaultPort       = 8080
	DefaultInterval   = time.Hour
)

// Config holds all service configuration
type Config struct {
	// Provider credentials and placement
	SecretKey string
	Zone      string
	APIURL    string // empty means the production endpoint

	// Policy selection
	PolicyDir  string
	PolicyName string

	// Optional run-history store; empty disables persistence
	DatabaseURL string

	// API server
	Port          int
	TriggerSecret string // empty disables trigger auth

	// Periodic reaper
	Interval time.Duration
}

// Load builds a Config from the environment. The provider secret is the one
// required setting; its absence fails here, before any API call is made.
func Load() (*Config, error) {
	secretKey := os.Getenv("SCALEWAY_SECRET_KEY")
	if secretKey == "" {
		return nil, fmt.Errorf("SCALEWAY_SECRET_KEY is required")
	}

	cfg := &Config{
		SecretKey:     secretKey,
		Zone:          envOr("SCALEWAY_ZONE", DefaultZone),
		APIURL:        os.Getenv("SCALEWAY_API_URL"),
		PolicyDir:     envOr("POLICY_DIR", DefaultPolicyDir),
		PolicyName:    envOr("REAP_POLICY", DefaultPolicyName),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		Port:          DefaultPort,
		TriggerSecret: os.Getenv("TRIGGER_SECRET"),
		Interval:      DefaultInterval,
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", portStr, err)
		}
		cfg.Port = port
	}

	if intervalStr := os.Getenv("REAP_INTERVAL"); intervalStr != "" {
		interval, err := time.ParseDuration(intervalStr)
		if err != nil {
			return nil, fmt.Errorf("invalid REAP_INTERVAL %q: %w", intervalStr, err)
		}
		cfg.Interval = interval
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
