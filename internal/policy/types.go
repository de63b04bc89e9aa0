package policy

// FilterStrategy selects how candidate servers are identified. The two
// strategies are mutually exclusive alternatives: a policy matches either by
// server name prefix or by marker tag, never both.
type FilterStrategy string

const (
	StrategyNamePrefix FilterStrategy = "name-prefix"
	StrategyTag        FilterStrategy = "tag"
)

// Policy represents a complete reap policy loaded from YAML
type Policy struct {
	Name        string       `yaml:"name" json:"name" validate:"required"`
	Description string       `yaml:"description" json:"description" validate:"required"`
	Enabled     bool         `yaml:"enabled" json:"enabled"`
	Filter      FilterConfig `yaml:"filter" json:"filter" validate:"required"`
	Idle        IdleConfig   `yaml:"idle" json:"idle" validate:"required"`
}

// FilterConfig defines how candidate servers are selected
type FilterConfig struct {
	Strategy   FilterStrategy `yaml:"strategy" json:"strategy" validate:"required,oneof=name-prefix tag"`
	NamePrefix string         `yaml:"namePrefix" json:"name_prefix,omitempty"`
	Tag        string         `yaml:"tag" json:"tag,omitempty"`
}

// IdleConfig defines the idle thresholds. A candidate is idle only when all
// three hold at once: CPU below MaxCPUPercent, network RX below
// MaxNetworkRxBytes, and age at or above MinAgeHours.
type IdleConfig struct {
	MaxCPUPercent     float64 `yaml:"maxCpuPercent" json:"max_cpu_percent" validate:"required,gt=0,lte=100"`
	MaxNetworkRxBytes int64   `yaml:"maxNetworkRxBytes" json:"max_network_rx_bytes" validate:"required,gt=0"`
	MinAgeHours       float64 `yaml:"minAgeHours" json:"min_age_hours" validate:"required,gt=0"`
}

// Defaults substituted when a metric field is missing from an otherwise
// available snapshot. Both sit above the shipped thresholds, so partial data
// always reads as active.
const (
	DefaultCPUPercent     = 100.0
	DefaultNetworkRxBytes = 1000
)
