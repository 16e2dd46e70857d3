package vault

import (
	"fmt"
	"sync"
)

// Registry holds the vault for each configured network.
type Registry struct {
	mu     sync.RWMutex
	vaults map[string]Vault
}

func NewRegistry() *Registry {
	return &Registry{vaults: make(map[string]Vault)}
}

// Register adds a vault for its network. Registering the same network twice
// is a wiring bug and returns an error.
func (r *Registry) Register(v Vault) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := v.NetworkID()
	if id == "" {
		return fmt.Errorf("vault has empty network id")
	}
	if _, ok := r.vaults[id]; ok {
		return fmt.Errorf("vault for network %s already registered", id)
	}
	r.vaults[id] = v
	return nil
}

// Get returns the vault serving networkID.
func (r *Registry) Get(networkID string) (Vault, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.vaults[networkID]
	if !ok {
		return nil, fmt.Errorf("no vault registered for network %s", networkID)
	}
	return v, nil
}

// NetworkIDs lists all registered networks.
func (r *Registry) NetworkIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.vaults))
	for id := range r.vaults {
		ids = append(ids, id)
	}
	return ids
}
