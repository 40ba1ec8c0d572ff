// Package capsule provides an inversion-of-control container for Go.
//
// A Container maps service identifiers (reflect.Type values) to recipes for
// producing instances: a pre-built value, a factory function, or an
// implementation type whose tagged fields are injected. Services carry one of
// three lifetimes (transient, scoped, singleton) and may be registered under
// discriminator keys so several producers of the same contract coexist.
//
// Basic usage:
//
//	c := capsule.New()
//	capsule.RegisterType[Logger, *ConsoleLogger](c, capsule.Singleton())
//	capsule.RegisterFunc[*UserService](c, func(l Logger) *UserService {
//	    return &UserService{log: l}
//	})
//
//	svc, err := capsule.Resolve[*UserService](c)
package capsule

// Disposable is the capability interface for services that hold resources.
// Scoped instances implementing it are disposed when their scope ends.
type Disposable interface {
	Dispose() error
}

// New creates an empty container.
func New(opts ...Option) *Container {
	c := &Container{
		registry:   newRegistry(),
		singletons: make(map[serviceKey]any),
		log:        defaultLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}
