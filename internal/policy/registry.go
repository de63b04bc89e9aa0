package policy

import (
	"fmt"
	"sync"
)

// Registry provides fast in-memory access to reap policies
type Registry struct {
	mu       sync.RWMutex
	policies map[string]*Policy // keyed by policy name
	loader   *Loader
}

// NewRegistry creates a new policy registry and loads all policies
func NewRegistry(loader *Loader) (*Registry, error) {
	r := &Registry{
		policies: make(map[string]*Policy),
		loader:   loader,
	}

	if err := r.Reload(); err != nil {
		return nil, fmt.Errorf("initial policy load: %w", err)
	}

	return r, nil
}

// Get retrieves a policy by name
func (r *Registry) Get(name string) (*Policy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	policy, exists := r.policies[name]
	if !exists {
		return nil, fmt.Errorf("policy not found: %s", name)
	}

	if !policy.Enabled {
		return nil, fmt.Errorf("policy disabled: %s", name)
	}

	return policy, nil
}

// List returns all enabled policies
func (r *Registry) List() []*Policy {
	r.mu.RLock()
	defer r.mu.RUnlock()

	policies := make([]*Policy, 0, len(r.policies))
	for _, policy := range r.policies {
		if policy.Enabled {
			policies = append(policies, policy)
		}
	}

	return policies
}

// Exists checks if a policy exists and is enabled
func (r *Registry) Exists(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	policy, exists := r.policies[name]
	return exists && policy.Enabled
}

// Reload reloads all policies from disk
func (r *Registry) Reload() error {
	policies, err := r.loader.LoadAll()
	if err != nil {
		return fmt.Errorf("load policies: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.policies = make(map[string]*Policy)
	for _, policy := range policies {
		r.policies[policy.Name] = policy
	}

	return nil
}

// Count returns the total number of policies (including disabled)
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.policies)
}
