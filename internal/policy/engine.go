package policy

import (
	"fmt"
	"strings"

	"github.com/hypersec/macjanitor/pkg/types"
)

// Engine evaluates servers against a single reap policy. It is a pure
// decision engine: it never talks to the provider and holds no state between
// calls, so identical inputs always yield identical decisions.
type Engine struct {
	policy *Policy
}

// NewEngine creates a new policy engine
func NewEngine(policy *Policy) *Engine {
	return &Engine{
		policy: policy,
	}
}

// Policy returns the policy this engine evaluates
func (e *Engine) Policy() *Policy {
	return e.policy
}

// FilterCandidate checks whether a server is eligible for idle evaluation.
// Non-candidates get a final KEEP_NOT_CANDIDATE decision naming the missing
// criterion; they must never reach the metrics or delete calls.
func (e *Engine) FilterCandidate(server types.ServerRecord) (bool, types.Decision) {
	switch e.policy.Filter.Strategy {
	case StrategyTag:
		if !server.HasTag(e.policy.Filter.Tag) {
			return false, keep(server, types.OutcomeKeepNotCandidate,
				fmt.Sprintf("not a candidate (no %s tag)", e.policy.Filter.Tag))
		}
	default:
		if !strings.HasPrefix(server.Name, e.policy.Filter.NamePrefix) {
			return false, keep(server, types.OutcomeKeepNotCandidate,
				fmt.Sprintf("not a candidate (no %s prefix)", e.policy.Filter.NamePrefix))
		}
	}

	return true, types.Decision{}
}

// Classify applies the idle predicate to a candidate. A nil snapshot means
// metrics could not be fetched; that is never treated as idle. Metric fields
// missing from an available snapshot default to busy values, so partial data
// keeps the server too.
func (e *Engine) Classify(server types.ServerRecord, ageHours float64, metrics *types.MetricsSnapshot) types.Decision {
	if metrics == nil {
		return keep(server, types.OutcomeKeepMetricsUnavailable, "metrics unavailable")
	}

	cpu := DefaultCPUPercent
	if metrics.CPUUsageAvg1H != nil {
		cpu = *metrics.CPUUsageAvg1H
	}

	rx := int64(DefaultNetworkRxBytes)
	if metrics.NetworkRxBytes1H != nil {
		rx = *metrics.NetworkRxBytes1H
	}

	idle := cpu < e.policy.Idle.MaxCPUPercent &&
		rx < e.policy.Idle.MaxNetworkRxBytes &&
		ageHours >= e.policy.Idle.MinAgeHours

	if !idle {
		return keep(server, types.OutcomeKeepActive,
			fmt.Sprintf("active (CPU:%g%%, age:%.1fh)", cpu, ageHours))
	}

	return types.Decision{
		ServerID:   server.ID,
		ServerName: server.Name,
		Outcome:    types.OutcomeDelete,
		Reason:     fmt.Sprintf("idle %.1fh", ageHours),
	}
}

func keep(server types.ServerRecord, outcome types.Outcome, reason string) types.Decision {
	return types.Decision{
		ServerID:   server.ID,
		ServerName: server.Name,
		Outcome:    outcome,
		Reason:     reason,
	}
}
