// Package reaper runs the idle-evaluation loop: list inventory, filter
// candidates, fetch metrics, classify, delete what qualifies, and report
// every server's outcome.
package reaper

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/hypersec/macjanitor/internal/policy"
	"github.com/hypersec/macjanitor/internal/provider"
	"github.com/hypersec/macjanitor/internal/store"
	"github.com/hypersec/macjanitor/pkg/types"
)

// Config holds reaper configuration
type Config struct {
	ReaperID      string
	PolicyName    string
	Zone          string
	CheckInterval time.Duration
}

// DefaultConfig returns default reaper configuration. The hourly interval
// matches the provider's metrics window; each run re-fetches inventory and
// metrics fresh, so a failed run is simply retried by the next tick.
func DefaultConfig(policyName, zone string) *Config {
	hostname, _ := os.Hostname()
	return &Config{
		ReaperID:      fmt.Sprintf("%s-%s", hostname, uuid.New().String()[:8]),
		PolicyName:    policyName,
		Zone:          zone,
		CheckInterval: time.Hour,
	}
}

// Reaper evaluates the server fleet against a reap policy and deletes idle
// servers. It keeps no state between runs; every decision is recomputed from
// a fresh inventory and metrics snapshot.
type Reaper struct {
	config   *Config
	client   provider.Client
	registry *policy.Registry
	store    *store.Store // nil disables run history
	cancel   context.CancelFunc
}

// NewReaper creates a new reaper instance. st may be nil when run history
// persistence is not configured.
func NewReaper(config *Config, client provider.Client, registry *policy.Registry, st *store.Store) *Reaper {
	return &Reaper{
		config:   config,
		client:   client,
		registry: registry,
		store:    st,
	}
}

// Run evaluates the fleet against the configured default policy
func (r *Reaper) Run(ctx context.Context) (*types.RunReport, error) {
	return r.RunPolicy(ctx, r.config.PolicyName)
}

// RunPolicy evaluates the fleet against a named policy. An inventory fetch
// failure is fatal for the run; per-server metrics and delete failures are
// recorded in the report and never abort the remaining servers.
func (r *Reaper) RunPolicy(ctx context.Context, policyName string) (*types.RunReport, error) {
	pol, err := r.registry.Get(policyName)
	if err != nil {
		return nil, fmt.Errorf("resolve policy: %w", err)
	}

	servers, err := r.client.ListServers(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch inventory: %w", err)
	}

	engine := policy.NewEngine(pol)
	now := time.Now()
	report := types.NewRunReport(now)

	for _, server := range servers {
		report.Record(r.evaluateServer(ctx, engine, server, now))
	}

	log.Printf("Run complete (policy=%s, servers=%d, deleted=%d, kept=%d)",
		policyName, len(servers), len(report.Deleted), len(report.Kept))

	if r.store != nil {
		r.persist(ctx, policyName, report)
	}

	return report, nil
}

// evaluateServer produces the final decision for a single server. Each
// server is evaluated independently; nothing here is shared across servers
// except the report ordering.
func (r *Reaper) evaluateServer(ctx context.Context, engine *policy.Engine, server types.ServerRecord, now time.Time) types.Decision {
	ok, decision := engine.FilterCandidate(server)
	if !ok {
		return decision
	}

	metrics, err := r.client.GetServerMetrics(ctx, server.ID)
	if err != nil {
		if !errors.Is(err, provider.ErrMetricsUnavailable) {
			log.Printf("Metrics fetch failed for %s: %v", server.Name, err)
		}
		metrics = nil
	}

	age := server.AgeHours(now)
	decision = engine.Classify(server, age, metrics)
	if decision.Outcome != types.OutcomeDelete {
		return decision
	}

	return r.executeDelete(ctx, server, age)
}

// executeDelete issues the provider delete for an idle server. 200 and 204
// acknowledge the delete; anything else keeps the server with the status
// code in the reason, and the run continues.
func (r *Reaper) executeDelete(ctx context.Context, server types.ServerRecord, age float64) types.Decision {
	status, err := r.client.DeleteServer(ctx, server.ID)
	if err != nil {
		log.Printf("Delete request failed for %s: %v", server.Name, err)
		return types.Decision{
			ServerID:   server.ID,
			ServerName: server.Name,
			Outcome:    types.OutcomeKeepDeleteFailed,
			Reason:     "delete failed - request error",
		}
	}

	if status != http.StatusOK && status != http.StatusNoContent {
		return types.Decision{
			ServerID:   server.ID,
			ServerName: server.Name,
			Outcome:    types.OutcomeKeepDeleteFailed,
			Reason:     fmt.Sprintf("delete failed - %d", status),
		}
	}

	log.Printf("Deleted idle server %s (age=%.1fh)", server.Name, age)

	return types.Decision{
		ServerID:   server.ID,
		ServerName: server.Name,
		Outcome:    types.OutcomeDelete,
		Reason:     fmt.Sprintf("idle %.1fh, deleted", age),
	}
}

// persist writes the run report to the history store. Persistence is an
// audit trail only; a failure here never fails the run.
func (r *Reaper) persist(ctx context.Context, policyName string, report *types.RunReport) {
	record := &types.RunRecord{
		ID:         types.GenerateRunID(),
		PolicyName: policyName,
		Zone:       r.config.Zone,
		Deleted:    report.Deleted,
		Kept:       report.Kept,
		RunAt:      report.Timestamp,
	}

	if err := r.store.Runs.Create(ctx, record); err != nil {
		log.Printf("Failed to persist run %s: %v", record.ID, err)
	}
}

// Start runs the reaper immediately and then on every tick until the context
// is cancelled
func (r *Reaper) Start(ctx context.Context) error {
	ctx, r.cancel = context.WithCancel(ctx)

	log.Printf("Reaper %s starting (policy=%s, zone=%s, interval=%s)",
		r.config.ReaperID, r.config.PolicyName, r.config.Zone, r.config.CheckInterval)

	r.runScheduled(ctx)

	ticker := time.NewTicker(r.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("Reaper %s shutting down", r.config.ReaperID)
			return ctx.Err()

		case <-ticker.C:
			r.runScheduled(ctx)
		}
	}
}

// Stop stops the reaper loop gracefully
func (r *Reaper) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
}

func (r *Reaper) runScheduled(ctx context.Context) {
	if _, err := r.Run(ctx); err != nil {
		log.Printf("Reaper run failed: %v", err)
	}
}
