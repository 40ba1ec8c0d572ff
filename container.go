package capsule

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/zap"
)

// Container is the inversion-of-control container. It owns the registration
// registry, the singleton cache, and the current scope, and implements the
// resolution algorithm.
//
// Registration and resolution are safe for concurrent use. The current scope
// is a single shared slot: callers resolving scoped services from multiple
// goroutines must serialize BeginScope/EndScope around their own units of
// work (for example one scope per request, switched in around that request's
// resolutions).
type Container struct {
	registry *registry
	log      *zap.Logger

	mu         sync.RWMutex
	singletons map[serviceKey]any
	scope      *Scope
}

// Register registers a service type with an implementation type. A nil impl
// registers the service type to itself. The lifetime defaults to transient.
//
//	c.Register(capsule.TypeOf[Logger](), capsule.TypeOf[*ConsoleLogger](), capsule.Singleton())
//	c.Register(capsule.TypeOf[*UserService](), nil)
func (c *Container) Register(service, impl reflect.Type, opts ...RegisterOption) *Container {
	return c.add(newRegistration(service, impl, nil, nil, nil, opts))
}

// RegisterKeyed registers an implementation type under a discriminator key,
// allowing multiple producers for the same service type to coexist.
//
//	c.RegisterKeyed(capsule.TypeOf[PaymentService](), "paypal", capsule.TypeOf[*PayPalService]())
//	c.RegisterKeyed(capsule.TypeOf[PaymentService](), "stripe", capsule.TypeOf[*StripeService]())
func (c *Container) RegisterKeyed(service reflect.Type, key any, impl reflect.Type, opts ...RegisterOption) *Container {
	return c.add(newRegistration(service, impl, nil, nil, key, opts))
}

// RegisterInstance registers a pre-built instance. Instances are always
// singletons.
func (c *Container) RegisterInstance(service reflect.Type, instance any) *Container {
	return c.add(newRegistration(service, nil, instance, nil, nil, []RegisterOption{Singleton()}))
}

// RegisterKeyedInstance registers a pre-built instance under a key.
func (c *Container) RegisterKeyedInstance(service reflect.Type, key, instance any) *Container {
	return c.add(newRegistration(service, nil, instance, nil, key, []RegisterOption{Singleton()}))
}

// RegisterFactory registers a factory function. The factory's parameters are
// resolved from the container by type before each invocation; it returns T
// or (T, error). The lifetime defaults to transient.
func (c *Container) RegisterFactory(service reflect.Type, factory any, opts ...RegisterOption) *Container {
	return c.add(newRegistration(service, nil, nil, factory, nil, opts))
}

// RegisterKeyedFactory registers a factory function under a key.
func (c *Container) RegisterKeyedFactory(service reflect.Type, key any, factory any, opts ...RegisterOption) *Container {
	return c.add(newRegistration(service, nil, nil, factory, key, opts))
}

func (c *Container) add(reg *Registration) *Container {
	if replaced := c.registry.register(reg); replaced {
		c.log.Warn("registration overwritten",
			zap.String("service", reg.key().String()),
			zap.Stringer("lifetime", reg.Lifetime))
	}

	c.log.Debug("service registered",
		zap.String("service", reg.key().String()),
		zap.Stringer("lifetime", reg.Lifetime),
		zap.Stringer("strategy", reg.strategy))

	return c
}

// Resolve produces an instance for the service type, or fails with one of
// the typed errors (see errors.go).
func (c *Container) Resolve(service reflect.Type) (any, error) {
	return c.resolveTop(serviceKey{Type: service})
}

// ResolveKeyed produces an instance for the service type registered under
// the given key.
func (c *Container) ResolveKeyed(service reflect.Type, key any) (any, error) {
	return c.resolveTop(serviceKey{Type: service, Key: key})
}

// TryResolve resolves the service type, reporting false instead of failing
// when it is not registered. Every other failure kind still propagates.
func (c *Container) TryResolve(service reflect.Type) (any, bool, error) {
	return c.tryResolveTop(serviceKey{Type: service})
}

// TryResolveKeyed is the keyed variant of TryResolve.
func (c *Container) TryResolveKeyed(service reflect.Type, key any) (any, bool, error) {
	return c.tryResolveTop(serviceKey{Type: service, Key: key})
}

func (c *Container) resolveTop(k serviceKey) (any, error) {
	// Each top-level call owns a fresh stack, so concurrent resolutions
	// cannot see each other's in-flight constructions and later calls never
	// inherit stale cycle-detection state.
	st := &resolutionStack{}

	return c.resolveInternal(st, k)
}

func (c *Container) tryResolveTop(k serviceKey) (any, bool, error) {
	instance, err := c.resolveTop(k)
	if errors.Is(err, ErrNotRegistered) {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, err
	}

	return instance, true, nil
}

// resolveInternal is the single resolution procedure: cycle check, registry
// lookup, lifetime dispatch.
func (c *Container) resolveInternal(st *resolutionStack, k serviceKey) (any, error) {
	if st.contains(k) {
		st.push(k)

		return nil, &CircularDependencyError{Chain: st.chain()}
	}

	st.push(k)
	defer st.popIfTop(k)

	reg, ok := c.registry.get(k)
	if !ok {
		return nil, &NotRegisteredError{Service: k.Type, Key: k.Key}
	}

	return c.instantiate(st, reg)
}

// instantiate applies the lifetime policy around construction.
func (c *Container) instantiate(st *resolutionStack, reg *Registration) (any, error) {
	k := reg.key()

	switch reg.Lifetime {
	case LifetimeSingleton:
		c.mu.RLock()
		cached, ok := c.singletons[k]
		c.mu.RUnlock()

		if ok {
			return cached, nil
		}

		// Construct outside the lock: construction recurses back into the
		// container. A raced construction is resolved by the double check
		// below; the first stored instance wins.
		instance, err := c.construct(st, reg)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		defer c.mu.Unlock()

		if cached, ok := c.singletons[k]; ok {
			return cached, nil
		}

		c.singletons[k] = instance

		return instance, nil

	case LifetimeScoped:
		c.mu.RLock()
		scope := c.scope
		c.mu.RUnlock()

		if scope == nil {
			return nil, &ScopeError{
				Reason: fmt.Sprintf("no active scope while resolving scoped service %s", k),
			}
		}

		if cached, ok := scope.instance(k); ok {
			return cached, nil
		}

		instance, err := c.construct(st, reg)
		if err != nil {
			return nil, err
		}

		return scope.store(k, instance), nil

	case LifetimeTransient:
		return c.construct(st, reg)

	default:
		return nil, &InvalidRegistrationError{
			Reason: fmt.Sprintf("unknown lifetime %d for %s", reg.Lifetime, k),
		}
	}
}

// ResolveAll builds an instance for every registration of the service type,
// keyed and unkeyed alike. Registrations that fail to construct are skipped;
// the call itself never fails. Order is unspecified.
func (c *Container) ResolveAll(service reflect.Type) []any {
	regs := c.registry.allFor(service)
	instances := make([]any, 0, len(regs))

	for _, reg := range regs {
		st := &resolutionStack{}

		instance, err := c.instantiate(st, reg)
		if err != nil {
			c.log.Warn("skipping unresolvable registration",
				zap.String("service", reg.key().String()),
				zap.Error(err))

			continue
		}

		instances = append(instances, instance)
	}

	return instances
}

// IsRegistered reports whether an unkeyed registration exists for the
// service type.
func (c *Container) IsRegistered(service reflect.Type) bool {
	return c.registry.isRegistered(serviceKey{Type: service})
}

// IsRegisteredKeyed reports whether a registration exists for the service
// type under the given key.
func (c *Container) IsRegisteredKeyed(service reflect.Type, key any) bool {
	return c.registry.isRegistered(serviceKey{Type: service, Key: key})
}

// CreateScope returns a new empty scope. The scope is not current until
// passed to BeginScope.
func (c *Container) CreateScope() *Scope {
	return newScope()
}

// BeginScope makes the given scope current, creating one when scope is nil.
// A previously current scope is replaced but not disposed; its owner remains
// responsible for ending it.
func (c *Container) BeginScope(scope *Scope) *Scope {
	if scope == nil {
		scope = newScope()
	}

	c.mu.Lock()
	c.scope = scope
	c.mu.Unlock()

	return scope
}

// EndScope disposes the current scope, if any, and clears the current slot.
func (c *Container) EndScope() {
	c.mu.Lock()
	scope := c.scope
	c.scope = nil
	c.mu.Unlock()

	if scope == nil {
		return
	}

	if err := scope.Dispose(); err != nil {
		c.log.Warn("scope disposal failed", zap.Error(err))
	}
}

// Clear empties the registry and the singleton cache and disposes the
// current scope. The container is usable again afterwards, as if freshly
// created.
func (c *Container) Clear() {
	c.registry.clear()

	c.mu.Lock()
	c.singletons = make(map[serviceKey]any)
	scope := c.scope
	c.scope = nil
	c.mu.Unlock()

	if scope != nil {
		if err := scope.Dispose(); err != nil {
			c.log.Warn("scope disposal failed", zap.Error(err))
		}
	}

	c.log.Debug("container cleared")
}
