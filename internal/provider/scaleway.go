package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/hypersec/macjanitor/pkg/types"
)

// DefaultBaseURL is the production API endpoint
const DefaultBaseURL = "https://api.scaleway.com"

const authTokenHeader = "X-Auth-Token"

// Config holds provider client configuration
type Config struct {
	BaseURL        string
	SecretKey      string
	Zone           string
	RequestTimeout time.Duration
	RequestsPerSec float64
}

// DefaultConfig returns default client configuration for a zone
func DefaultConfig(secretKey, zone string) *Config {
	return &Config{
		BaseURL:        DefaultBaseURL,
		SecretKey:      secretKey,
		Zone:           zone,
		RequestTimeout: 15 * time.Second,
		RequestsPerSec: 10,
	}
}

// ScalewayClient implements Client against the Apple Silicon API
type ScalewayClient struct {
	config  *Config
	http    *http.Client
	limiter *rate.Limiter
}

// NewScalewayClient creates a new provider client
func NewScalewayClient(config *Config) *ScalewayClient {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}

	return &ScalewayClient{
		config:  config,
		http:    &http.Client{Timeout: config.RequestTimeout},
		limiter: rate.NewLimiter(rate.Limit(config.RequestsPerSec), 1),
	}
}

// serversURL builds the zone-scoped servers endpoint, optionally with a
// trailing path segment
func (c *ScalewayClient) serversURL(suffix string) string {
	return fmt.Sprintf("%s/apple-silicon/v1alpha1/zones/%s/servers%s",
		c.config.BaseURL, c.config.Zone, suffix)
}

func (c *ScalewayClient) do(ctx context.Context, method, url string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set(authTokenHeader, c.config.SecretKey)

	return c.http.Do(req)
}

// serverPayload mirrors the provider's server representation on the wire
type serverPayload struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	CreatedAt string   `json:"created_at"`
	Tags      []string `json:"tags"`
}

// ListServers returns the full inventory for the configured zone
func (c *ScalewayClient) ListServers(ctx context.Context) ([]types.ServerRecord, error) {
	resp, err := c.do(ctx, http.MethodGet, c.serversURL(""))
	if err != nil {
		return nil, fmt.Errorf("list servers: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list servers: unexpected status %d", resp.StatusCode)
	}

	var body struct {
		Servers []serverPayload `json:"servers"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode server list: %w", err)
	}

	servers := make([]types.ServerRecord, 0, len(body.Servers))
	for _, s := range body.Servers {
		// created_at is zone-qualified ISO-8601; RFC3339 parsing keeps
		// the offset so age math stays correct.
		createdAt, err := time.Parse(time.RFC3339, s.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at for server %s: %w", s.ID, err)
		}

		servers = append(servers, types.ServerRecord{
			ID:        s.ID,
			Name:      s.Name,
			CreatedAt: createdAt,
			Tags:      s.Tags,
		})
	}

	return servers, nil
}

// GetServerMetrics returns last-hour usage metrics for one server
func (c *ScalewayClient) GetServerMetrics(ctx context.Context, serverID string) (*types.MetricsSnapshot, error) {
	resp, err := c.do(ctx, http.MethodGet, c.serversURL("/"+serverID+"/metrics"))
	if err != nil {
		return nil, fmt.Errorf("get metrics for %s: %w", serverID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("metrics status %d for %s: %w", resp.StatusCode, serverID, ErrMetricsUnavailable)
	}

	var snapshot types.MetricsSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("decode metrics for %s: %w", serverID, err)
	}

	return &snapshot, nil
}

// DeleteServer deletes a server and returns the raw HTTP status code
func (c *ScalewayClient) DeleteServer(ctx context.Context, serverID string) (int, error) {
	resp, err := c.do(ctx, http.MethodDelete, c.serversURL("/"+serverID))
	if err != nil {
		return 0, fmt.Errorf("delete server %s: %w", serverID, err)
	}
	defer resp.Body.Close()

	return resp.StatusCode, nil
}
