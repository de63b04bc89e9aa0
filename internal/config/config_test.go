package config_test

import (
	"testing"
	"time"

	"github.com/hypersec/macjanitor/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("fails loudly without the provider secret", func(t *testing.T) {
		t.Setenv("SCALEWAY_SECRET_KEY", "")

		_, err := config.Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SCALEWAY_SECRET_KEY")
	})

	t.Run("applies documented defaults", func(t *testing.T) {
		t.Setenv("SCALEWAY_SECRET_KEY", "scw-secret")
		t.Setenv("SCALEWAY_ZONE", "")
		t.Setenv("REAP_POLICY", "")
		t.Setenv("PORT", "")
		t.Setenv("REAP_INTERVAL", "")

		cfg, err := config.Load()
		require.NoError(t, err)

		assert.Equal(t, "scw-secret", cfg.SecretKey)
		assert.Equal(t, "fr-par-3", cfg.Zone)
		assert.Equal(t, "test-mac-prefix", cfg.PolicyName)
		assert.Equal(t, "policies", cfg.PolicyDir)
		assert.Equal(t, 8080, cfg.Port)
		assert.Equal(t, time.Hour, cfg.Interval)
	})

	t.Run("reads overrides", func(t *testing.T) {
		t.Setenv("SCALEWAY_SECRET_KEY", "scw-secret")
		t.Setenv("SCALEWAY_ZONE", "fr-par-1")
		t.Setenv("REAP_POLICY", "auto-delete-tag")
		t.Setenv("PORT", "9090")
		t.Setenv("REAP_INTERVAL", "30m")

		cfg, err := config.Load()
		require.NoError(t, err)

		assert.Equal(t, "fr-par-1", cfg.Zone)
		assert.Equal(t, "auto-delete-tag", cfg.PolicyName)
		assert.Equal(t, 9090, cfg.Port)
		assert.Equal(t, 30*time.Minute, cfg.Interval)
	})

	t.Run("rejects malformed overrides", func(t *testing.T) {
		t.Setenv("SCALEWAY_SECRET_KEY", "scw-secret")
		t.Setenv("PORT", "eighty")

		_, err := config.Load()
		assert.ErrorContains(t, err, "invalid PORT")
	})
}
