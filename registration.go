package capsule

import (
	"fmt"
	"reflect"
)

// Registration describes how the container produces values for one
// (service type, key) slot. Registrations are immutable once created:
// the production strategy is derived at construction time and never
// changes afterwards.
type Registration struct {
	// ServiceType is the contract this registration satisfies.
	ServiceType reflect.Type

	// ImplType is the concrete type instantiated for type-strategy
	// registrations. Nil unless the type strategy is active.
	ImplType reflect.Type

	// Instance is the pre-built value for instance-strategy registrations.
	Instance any

	// Factory is the factory function for factory-strategy registrations.
	Factory any

	// Lifetime is the caching policy for produced instances.
	Lifetime Lifetime

	// Key is the optional discriminator. Nil means unkeyed.
	Key any

	strategy strategy
}

// newRegistration builds a registration, deriving the active strategy with
// fixed precedence: instance > factory > implementation type. When none is
// supplied the service type is registered to itself.
func newRegistration(service, impl reflect.Type, instance, factory, key any, opts []RegisterOption) *Registration {
	if service == nil {
		panic("capsule: service type cannot be nil")
	}

	reg := &Registration{
		ServiceType: service,
		ImplType:    impl,
		Instance:    instance,
		Factory:     factory,
		Lifetime:    LifetimeTransient,
		Key:         key,
	}

	for _, opt := range opts {
		opt(reg)
	}

	switch {
	case instance != nil:
		reg.strategy = strategyInstance
	case factory != nil:
		reg.strategy = strategyFactory
	case impl != nil:
		reg.strategy = strategyType
	default:
		reg.ImplType = service
		reg.strategy = strategyType
	}

	return reg
}

// key returns the registry slot this registration occupies.
func (r *Registration) key() serviceKey {
	return serviceKey{Type: r.ServiceType, Key: r.Key}
}

func (r *Registration) String() string {
	return fmt.Sprintf("Registration(%s, lifetime=%s, strategy=%s)", r.key(), r.Lifetime, r.strategy)
}
