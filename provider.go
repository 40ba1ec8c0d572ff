package capsule

import (
	"errors"
	"sync"
)

// Errors returned by the process-wide default container.
var (
	// ErrAlreadyConfigured is returned when Configure is called twice.
	ErrAlreadyConfigured = errors.New("default container is already configured")

	// ErrNotConfigured is returned when the default container is used
	// before Configure.
	ErrNotConfigured = errors.New("default container is not configured; call Configure first")
)

// defaultProvider guards the process-wide container. Prefer passing a
// *Container explicitly; the default exists for hosts that want one
// configured container for process lifetime.
var defaultProvider struct {
	mu         sync.Mutex
	container  *Container
	configured bool
}

// Configure creates the process-wide default container and hands it to the
// configuration function for registration. It fails with
// ErrAlreadyConfigured on a second call; use ResetDefault between tests.
func Configure(configure func(*Container), opts ...Option) error {
	defaultProvider.mu.Lock()
	defer defaultProvider.mu.Unlock()

	if defaultProvider.configured {
		return ErrAlreadyConfigured
	}

	c := New(opts...)
	configure(c)

	defaultProvider.container = c
	defaultProvider.configured = true

	return nil
}

// Configured reports whether the default container has been configured.
func Configured() bool {
	defaultProvider.mu.Lock()
	defer defaultProvider.mu.Unlock()

	return defaultProvider.configured
}

// Default returns the configured process-wide container.
func Default() (*Container, error) {
	defaultProvider.mu.Lock()
	defer defaultProvider.mu.Unlock()

	if !defaultProvider.configured || defaultProvider.container == nil {
		return nil, ErrNotConfigured
	}

	return defaultProvider.container, nil
}

// MustDefault returns the configured container or panics.
func MustDefault() *Container {
	c, err := Default()
	if err != nil {
		panic("capsule: " + err.Error())
	}

	return c
}

// ResetDefault discards the default container so Configure can run again.
// Intended for test isolation.
func ResetDefault() {
	defaultProvider.mu.Lock()
	defer defaultProvider.mu.Unlock()

	defaultProvider.container = nil
	defaultProvider.configured = false
}

// Service resolves service T from the default container.
func Service[T any]() (T, error) {
	c, err := Default()
	if err != nil {
		var zero T

		return zero, err
	}

	return Resolve[T](c)
}

// ServiceKeyed resolves service T under a key from the default container.
func ServiceKeyed[T any](key any) (T, error) {
	c, err := Default()
	if err != nil {
		var zero T

		return zero, err
	}

	return ResolveKeyed[T](c, key)
}

// TryService resolves service T from the default container, reporting false
// when it is not registered.
func TryService[T any]() (T, bool, error) {
	c, err := Default()
	if err != nil {
		var zero T

		return zero, false, err
	}

	return TryResolve[T](c)
}
