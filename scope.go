package capsule

import (
	"sync"

	"go.uber.org/multierr"
)

// Scope is a bounded-lifetime cache for scoped instances. A scope is created
// empty, populated lazily while it is the container's current scope, and
// disposed when it ends. Scopes hold no reference to the container; the
// container decides which scope is current.
type Scope struct {
	mu        sync.Mutex
	instances map[serviceKey]any
}

func newScope() *Scope {
	return &Scope{
		instances: make(map[serviceKey]any),
	}
}

func (s *Scope) instance(k serviceKey) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.instances[k]

	return v, ok
}

// store caches v under k and returns the cached value. When a concurrent
// resolution already stored an instance for k, the first one wins and is
// returned instead.
func (s *Scope) store(k serviceKey, v any) any {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.instances[k]; ok {
		return existing
	}

	s.instances[k] = v

	return v
}

// Dispose invokes Dispose on every held instance implementing Disposable,
// then drops the cache. Disposal is best-effort: one failing instance never
// prevents the others from being disposed. The aggregated failures are
// returned.
func (s *Scope) Dispose() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error

	for _, instance := range s.instances {
		if disposable, ok := instance.(Disposable); ok {
			err = multierr.Append(err, disposable.Dispose())
		}
	}

	s.instances = make(map[serviceKey]any)

	return err
}
