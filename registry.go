package capsule

import (
	"reflect"
	"sync"
)

// registry is the keyed store of registrations. Writes overwrite: the last
// registration for a slot wins.
type registry struct {
	mu      sync.RWMutex
	entries map[serviceKey]*Registration
}

func newRegistry() *registry {
	return &registry{
		entries: make(map[serviceKey]*Registration),
	}
}

// register stores reg under its slot and reports whether a prior
// registration was overwritten.
func (r *registry) register(reg *Registration) bool {
	k := reg.key()

	r.mu.Lock()
	defer r.mu.Unlock()

	_, replaced := r.entries[k]
	r.entries[k] = reg

	return replaced
}

func (r *registry) get(k serviceKey) (*Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.entries[k]

	return reg, ok
}

func (r *registry) isRegistered(k serviceKey) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.entries[k]

	return ok
}

// allFor returns every registration whose service type matches, across all
// keys. Order is unspecified.
func (r *registry) allFor(service reflect.Type) []*Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var regs []*Registration

	for k, reg := range r.entries {
		if k.Type == service {
			regs = append(regs, reg)
		}
	}

	return regs
}

func (r *registry) clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = make(map[serviceKey]*Registration)
}
