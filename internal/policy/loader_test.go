package policy_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hypersec/macjanitor/internal/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader_Load(t *testing.T) {
	loader := policy.NewLoader("../../policies")

	t.Run("loads prefix policy", func(t *testing.T) {
		p, err := loader.Load("test-mac-prefix")
		require.NoError(t, err)

		assert.Equal(t, "test-mac-prefix", p.Name)
		assert.True(t, p.Enabled)
		assert.Equal(t, policy.StrategyNamePrefix, p.Filter.Strategy)
		assert.Equal(t, "hypersec-test-mac-", p.Filter.NamePrefix)
		assert.Equal(t, 5.0, p.Idle.MaxCPUPercent)
		assert.Equal(t, int64(1000), p.Idle.MaxNetworkRxBytes)
		assert.Equal(t, 23.0, p.Idle.MinAgeHours)
	})

	t.Run("loads tag policy", func(t *testing.T) {
		p, err := loader.Load("auto-delete-tag")
		require.NoError(t, err)

		assert.Equal(t, policy.StrategyTag, p.Filter.Strategy)
		assert.Equal(t, "auto-delete", p.Filter.Tag)
		assert.Equal(t, 24.0, p.Idle.MinAgeHours)
	})

	t.Run("fails on unknown policy", func(t *testing.T) {
		_, err := loader.Load("does-not-exist")
		assert.Error(t, err)
	})
}

func writePolicy(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".yaml"), []byte(content), 0644))
}

func TestLoader_Validate(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "prefix strategy without prefix",
			yaml: `
name: broken
description: broken
enabled: true
filter:
  strategy: name-prefix
idle:
  maxCpuPercent: 5
  maxNetworkRxBytes: 1000
  minAgeHours: 23
`,
			wantErr: "requires filter.namePrefix",
		},
		{
			name: "tag strategy without tag",
			yaml: `
name: broken
description: broken
enabled: true
filter:
  strategy: tag
idle:
  maxCpuPercent: 5
  maxNetworkRxBytes: 1000
  minAgeHours: 24
`,
			wantErr: "requires filter.tag",
		},
		{
			name: "strategies are mutually exclusive",
			yaml: `
name: broken
description: broken
enabled: true
filter:
  strategy: name-prefix
  namePrefix: fleet-
  tag: auto-delete
idle:
  maxCpuPercent: 5
  maxNetworkRxBytes: 1000
  minAgeHours: 23
`,
			wantErr: "must not set filter.tag",
		},
		{
			name: "unknown strategy",
			yaml: `
name: broken
description: broken
enabled: true
filter:
  strategy: regex
  namePrefix: fleet-
idle:
  maxCpuPercent: 5
  maxNetworkRxBytes: 1000
  minAgeHours: 23
`,
			wantErr: "validation failed",
		},
		{
			name: "network threshold above active floor",
			yaml: `
name: broken
description: broken
enabled: true
filter:
  strategy: tag
  tag: auto-delete
idle:
  maxCpuPercent: 5
  maxNetworkRxBytes: 5000
  minAgeHours: 24
`,
			wantErr: "maxNetworkRxBytes",
		},
		{
			name: "missing age threshold",
			yaml: `
name: broken
description: broken
enabled: true
filter:
  strategy: tag
  tag: auto-delete
idle:
  maxCpuPercent: 5
  maxNetworkRxBytes: 1000
`,
			wantErr: "validation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writePolicy(t, dir, "broken", tt.yaml)

			loader := policy.NewLoader(dir)
			_, err := loader.Load("broken")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRegistry(t *testing.T) {
	loader := policy.NewLoader("../../policies")
	registry, err := policy.NewRegistry(loader)
	require.NoError(t, err)

	t.Run("loads both shipped variants", func(t *testing.T) {
		assert.Equal(t, 2, registry.Count())
		assert.True(t, registry.Exists("test-mac-prefix"))
		assert.True(t, registry.Exists("auto-delete-tag"))
	})

	t.Run("get returns the named policy", func(t *testing.T) {
		p, err := registry.Get("auto-delete-tag")
		require.NoError(t, err)
		assert.Equal(t, "auto-delete-tag", p.Name)
	})

	t.Run("get fails for unknown policy", func(t *testing.T) {
		_, err := registry.Get("missing")
		assert.Error(t, err)
	})

	t.Run("get fails for disabled policy", func(t *testing.T) {
		dir := t.TempDir()
		writePolicy(t, dir, "disabled", `
name: disabled
description: disabled policy
enabled: false
filter:
  strategy: tag
  tag: auto-delete
idle:
  maxCpuPercent: 5
  maxNetworkRxBytes: 1000
  minAgeHours: 24
`)

		reg, err := policy.NewRegistry(policy.NewLoader(dir))
		require.NoError(t, err)

		_, err = reg.Get("disabled")
		assert.ErrorContains(t, err, "disabled")
		assert.Empty(t, reg.List())
	})
}
