// Package provider talks to the cloud provider's Apple Silicon compute API:
// inventory listing, per-server usage metrics, and server deletion.
package provider

import (
	"context"
	"errors"

	"github.com/hypersec/macjanitor/pkg/types"
)

// ErrMetricsUnavailable indicates the provider could not serve metrics for a
// server. Callers must treat it as "no data", never as "idle".
var ErrMetricsUnavailable = errors.New("metrics unavailable")

// Client is the provider surface the reaper consumes
type Client interface {
	// ListServers returns the full server inventory for the configured zone
	ListServers(ctx context.Context) ([]types.ServerRecord, error)

	// GetServerMetrics returns last-hour usage metrics for one server.
	// Returns ErrMetricsUnavailable when the provider answers with a
	// non-success status.
	GetServerMetrics(ctx context.Context, serverID string) (*types.MetricsSnapshot, error)

	// DeleteServer deletes a server and returns the raw HTTP status code so
	// the caller can interpret partial failures without aborting.
	DeleteServer(ctx context.Context, serverID string) (int, error)
}
