package policy_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/hypersec/macjanitor/internal/policy"
	"github.com/hypersec/macjanitor/pkg/types"
	"github.com/stretchr/testify/assert"
)

func prefixPolicy() *policy.Policy {
	return &policy.Policy{
		Name:        "test-mac-prefix",
		Description: "test",
		Enabled:     true,
		Filter: policy.FilterConfig{
			Strategy:   policy.StrategyNamePrefix,
			NamePrefix: "fleet-mac-",
		},
		Idle: policy.IdleConfig{
			MaxCPUPercent:     5,
			MaxNetworkRxBytes: 1000,
			MinAgeHours:       23,
		},
	}
}

func tagPolicy() *policy.Policy {
	p := prefixPolicy()
	p.Name = "auto-delete-tag"
	p.Filter = policy.FilterConfig{
		Strategy: policy.StrategyTag,
		Tag:      "auto-delete",
	}
	p.Idle.MinAgeHours = 24
	return p
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int64) *int64       { return &v }

func TestEngine_FilterCandidate(t *testing.T) {
	t.Run("prefix strategy matches name prefix", func(t *testing.T) {
		engine := policy.NewEngine(prefixPolicy())

		ok, _ := engine.FilterCandidate(types.ServerRecord{Name: "fleet-mac-07"})
		assert.True(t, ok)
	})

	t.Run("prefix strategy rejects other names", func(t *testing.T) {
		engine := policy.NewEngine(prefixPolicy())

		ok, decision := engine.FilterCandidate(types.ServerRecord{Name: "other-box"})
		assert.False(t, ok)
		assert.Equal(t, types.OutcomeKeepNotCandidate, decision.Outcome)
		assert.Equal(t, "not a candidate (no fleet-mac- prefix)", decision.Reason)
	})

	t.Run("tag strategy matches marker tag", func(t *testing.T) {
		engine := policy.NewEngine(tagPolicy())

		ok, _ := engine.FilterCandidate(types.ServerRecord{
			Name: "anything",
			Tags: []string{"ci", "auto-delete"},
		})
		assert.True(t, ok)
	})

	t.Run("tag strategy rejects servers without marker", func(t *testing.T) {
		engine := policy.NewEngine(tagPolicy())

		ok, decision := engine.FilterCandidate(types.ServerRecord{
			Name: "fleet-mac-07",
			Tags: []string{"ci"},
		})
		assert.False(t, ok)
		assert.Equal(t, types.OutcomeKeepNotCandidate, decision.Outcome)
		assert.Equal(t, "not a candidate (no auto-delete tag)", decision.Reason)
	})
}

func TestEngine_Classify(t *testing.T) {
	server := types.ServerRecord{ID: "srv-1", Name: "fleet-mac-07"}

	tests := []struct {
		name     string
		ageHours float64
		metrics  *types.MetricsSnapshot
		outcome  types.Outcome
	}{
		{
			name:     "idle on all three thresholds",
			ageHours: 25,
			metrics:  &types.MetricsSnapshot{CPUUsageAvg1H: floatPtr(2), NetworkRxBytes1H: intPtr(200)},
			outcome:  types.OutcomeDelete,
		},
		{
			name:     "nil metrics never reads as idle",
			ageHours: 200,
			metrics:  nil,
			outcome:  types.OutcomeKeepMetricsUnavailable,
		},
		{
			name:     "cpu at threshold keeps",
			ageHours: 25,
			metrics:  &types.MetricsSnapshot{CPUUsageAvg1H: floatPtr(5), NetworkRxBytes1H: intPtr(200)},
			outcome:  types.OutcomeKeepActive,
		},
		{
			name:     "network at threshold keeps",
			ageHours: 25,
			metrics:  &types.MetricsSnapshot{CPUUsageAvg1H: floatPtr(2), NetworkRxBytes1H: intPtr(1000)},
			outcome:  types.OutcomeKeepActive,
		},
		{
			name:     "age below threshold keeps even when usage is low",
			ageHours: 10,
			metrics:  &types.MetricsSnapshot{CPUUsageAvg1H: floatPtr(1), NetworkRxBytes1H: intPtr(50)},
			outcome:  types.OutcomeKeepActive,
		},
		{
			name:     "age exactly at threshold deletes",
			ageHours: 23,
			metrics:  &types.MetricsSnapshot{CPUUsageAvg1H: floatPtr(2), NetworkRxBytes1H: intPtr(200)},
			outcome:  types.OutcomeDelete,
		},
		{
			name:     "missing cpu field defaults to busy",
			ageHours: 25,
			metrics:  &types.MetricsSnapshot{NetworkRxBytes1H: intPtr(200)},
			outcome:  types.OutcomeKeepActive,
		},
		{
			name:     "missing network field defaults to active floor",
			ageHours: 25,
			metrics:  &types.MetricsSnapshot{CPUUsageAvg1H: floatPtr(2)},
			outcome:  types.OutcomeKeepActive,
		},
		{
			name:     "empty snapshot defaults keep the server",
			ageHours: 25,
			metrics:  &types.MetricsSnapshot{},
			outcome:  types.OutcomeKeepActive,
		},
	}

	engine := policy.NewEngine(prefixPolicy())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := engine.Classify(server, tt.ageHours, tt.metrics)
			assert.Equal(t, tt.outcome, decision.Outcome)
			assert.Equal(t, server.Name, decision.ServerName)
		})
	}

	t.Run("active reason reports observed cpu and age", func(t *testing.T) {
		decision := engine.Classify(server, 10.04, &types.MetricsSnapshot{
			CPUUsageAvg1H:    floatPtr(1),
			NetworkRxBytes1H: intPtr(50),
		})
		assert.Equal(t, "active (CPU:1%, age:10.0h)", decision.Reason)
	})

	t.Run("classification is a pure function of its inputs", func(t *testing.T) {
		metrics := &types.MetricsSnapshot{CPUUsageAvg1H: floatPtr(2), NetworkRxBytes1H: intPtr(200)}

		first := engine.Classify(server, 25, metrics)
		second := engine.Classify(server, 25, metrics)
		assert.Equal(t, first, second)
	})
}

func TestEngine_ClassifyUsesOffsetAwareAge(t *testing.T) {
	engine := policy.NewEngine(prefixPolicy())

	// Created 25h ago in a +02:00 zone; the offset must not skew the age.
	now := time.Now()
	server := types.ServerRecord{
		ID:        "srv-1",
		Name:      "fleet-mac-07",
		CreatedAt: now.Add(-25 * time.Hour).In(time.FixedZone("CEST", 2*3600)),
	}

	age := server.AgeHours(now)
	decision := engine.Classify(server, age, &types.MetricsSnapshot{
		CPUUsageAvg1H:    floatPtr(2),
		NetworkRxBytes1H: intPtr(200),
	})

	assert.Equal(t, types.OutcomeDelete, decision.Outcome)
	assert.Equal(t, fmt.Sprintf("idle %.1fh", age), decision.Reason)
}
