package types

import "time"

// ServerRecord is an immutable snapshot of one Apple Silicon server as
// returned by the provider inventory call.
type ServerRecord struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	Tags      []string  `json:"tags"`
}

// AgeHours returns the server age at the given instant, in hours.
// CreatedAt carries its own zone offset from RFC3339 parsing, so the
// subtraction is correct regardless of the provider's local timezone.
func (s ServerRecord) AgeHours(now time.Time) float64 {
	return now.Sub(s.CreatedAt).Hours()
}

// HasTag reports whether the server carries the given tag.
func (s ServerRecord) HasTag(tag string) bool {
	for _, t := range s.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// MetricsSnapshot holds one server's usage metrics over the last hour.
// Fields are pointers: a field missing from an otherwise-available snapshot
// is distinct from a zero reading, and the classifier substitutes "busy"
// defaults for missing fields so partial data never triggers a deletion.
type MetricsSnapshot struct {
	CPUUsageAvg1H    *float64 `json:"cpu_usage_avg_1h"`
	NetworkRxBytes1H *int64   `json:"network_rx_bytes_1h"`
}
