package capsule

// Lifetime controls how instances produced for a registration are cached.
// It affects caching only; the construction strategy is independent.
type Lifetime int

const (
	// LifetimeTransient creates a fresh instance on every resolution.
	// This is the default.
	LifetimeTransient Lifetime = iota

	// LifetimeScoped caches one instance per active scope.
	LifetimeScoped

	// LifetimeSingleton caches one instance for the container's lifetime.
	LifetimeSingleton
)

func (l Lifetime) String() string {
	switch l {
	case LifetimeTransient:
		return "transient"
	case LifetimeScoped:
		return "scoped"
	case LifetimeSingleton:
		return "singleton"
	default:
		return "unknown"
	}
}

// strategy identifies how a registration produces values. It is derived once
// when the registration is created and never changes afterwards.
type strategy int

const (
	strategyType strategy = iota
	strategyInstance
	strategyFactory
)

func (s strategy) String() string {
	switch s {
	case strategyType:
		return "type"
	case strategyInstance:
		return "instance"
	case strategyFactory:
		return "factory"
	default:
		return "unknown"
	}
}
