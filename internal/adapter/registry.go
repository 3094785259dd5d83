package adapter

import (
	"fmt"
	"sort"
	"sync"

	"nbrsnap/internal/domain"
	"nbrsnap/internal/extract"
)

// Registry maps vendor tags to drivers
type Registry struct {
	mu      sync.RWMutex
	drivers map[domain.Vendor]Driver
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{drivers: make(map[domain.Vendor]Driver)}
}

// Register adds a client and its extractor under the client's vendor tag
func (r *Registry) Register(client DeviceClient, fn extract.Func) error {
	if client == nil || fn == nil {
		return fmt.Errorf("register: client and extractor are required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	vendor := client.Vendor()
	if _, exists := r.drivers[vendor]; exists {
		return fmt.Errorf("driver for %s already registered", vendor)
	}
	r.drivers[vendor] = Driver{Client: client, Extract: fn}
	return nil
}

// Lookup returns the driver for a vendor tag
func (r *Registry) Lookup(vendor domain.Vendor) (Driver, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.drivers[vendor]
	return d, ok
}

// Vendors lists the registered vendor tags in sorted order
func (r *Registry) Vendors() []domain.Vendor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	vendors := make([]domain.Vendor, 0, len(r.drivers))
	for v := range r.drivers {
		vendors = append(vendors, v)
	}
	sort.Slice(vendors, func(i, j int) bool { return vendors[i] < vendors[j] })
	return vendors
}
