package capsule

import "go.uber.org/zap"

// Option configures a container at construction time.
type Option func(*Container)

// WithLogger sets the structured logger the container uses for registration
// and resolution diagnostics. The default logger discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(c *Container) {
		if log != nil {
			c.log = log
		}
	}
}

func defaultLogger() *zap.Logger {
	return zap.NewNop()
}

// RegisterOption configures a single registration.
type RegisterOption func(*Registration)

// WithLifetime sets the registration's lifetime.
func WithLifetime(l Lifetime) RegisterOption {
	return func(r *Registration) {
		r.Lifetime = l
	}
}

// Singleton caches one instance for the container's lifetime.
func Singleton() RegisterOption {
	return WithLifetime(LifetimeSingleton)
}

// Scoped caches one instance per active scope.
func Scoped() RegisterOption {
	return WithLifetime(LifetimeScoped)
}

// Transient creates a fresh instance on each resolution (the default).
func Transient() RegisterOption {
	return WithLifetime(LifetimeTransient)
}
