package policy

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Loader loads reap policies from YAML files
type Loader struct {
	policiesDir string
	validate    *validator.Validate
}

// NewLoader creates a new policy loader
func NewLoader(policiesDir string) *Loader {
	return &Loader{
		policiesDir: policiesDir,
		validate:    validator.New(),
	}
}

// Load loads a single policy by name
func (l *Loader) Load(name string) (*Policy, error) {
	filename := filepath.Join(l.policiesDir, name+".yaml")

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read policy file %s: %w", filename, err)
	}

	var policy Policy
	if err := yaml.Unmarshal(data, &policy); err != nil {
		return nil, fmt.Errorf("parse policy YAML %s: %w", filename, err)
	}

	if err := l.Validate(&policy); err != nil {
		return nil, fmt.Errorf("validate policy %s: %w", name, err)
	}

	return &policy, nil
}

// LoadAll loads all policies from the policies directory
func (l *Loader) LoadAll() ([]*Policy, error) {
	entries, err := os.ReadDir(l.policiesDir)
	if err != nil {
		return nil, fmt.Errorf("read policies directory: %w", err)
	}

	policies := []*Policy{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		if !strings.HasSuffix(entry.Name(), ".yaml") && !strings.HasSuffix(entry.Name(), ".yml") {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), ".yaml")
		name = strings.TrimSuffix(name, ".yml")

		policy, err := l.Load(name)
		if err != nil {
			return nil, fmt.Errorf("load policy %s: %w", name, err)
		}

		policies = append(policies, policy)
	}

	if len(policies) == 0 {
		return nil, fmt.Errorf("no policies found in %s", l.policiesDir)
	}

	return policies, nil
}

// Validate validates a policy against the schema
func (l *Loader) Validate(policy *Policy) error {
	if err := l.validate.Struct(policy); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	// Additional custom validations

	// 1. Each strategy requires its own match field and forbids the other's
	switch policy.Filter.Strategy {
	case StrategyNamePrefix:
		if policy.Filter.NamePrefix == "" {
			return fmt.Errorf("name-prefix strategy requires filter.namePrefix")
		}
		if policy.Filter.Tag != "" {
			return fmt.Errorf("name-prefix strategy must not set filter.tag")
		}
	case StrategyTag:
		if policy.Filter.Tag == "" {
			return fmt.Errorf("tag strategy requires filter.tag")
		}
		if policy.Filter.NamePrefix != "" {
			return fmt.Errorf("tag strategy must not set filter.namePrefix")
		}
	}

	// 2. Thresholds must sit at or below the missing-metric defaults,
	//    otherwise a partial snapshot could read as idle
	if policy.Idle.MaxCPUPercent > DefaultCPUPercent {
		return fmt.Errorf("maxCpuPercent (%g) must be <= %g", policy.Idle.MaxCPUPercent, DefaultCPUPercent)
	}
	if policy.Idle.MaxNetworkRxBytes > DefaultNetworkRxBytes {
		return fmt.Errorf("maxNetworkRxBytes (%d) must be <= %d", policy.Idle.MaxNetworkRxBytes, DefaultNetworkRxBytes)
	}

	return nil
}
