package capsule

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Sentinel errors for errors.Is checks. The typed errors below match their
// corresponding sentinel, so callers can branch on the failure kind without
// unpacking the concrete type.
var (
	// ErrNotRegistered matches resolution failures for unregistered slots.
	ErrNotRegistered = errors.New("service is not registered")

	// ErrCircularDependency matches cycle-detection failures.
	ErrCircularDependency = errors.New("circular dependency detected")

	// ErrInvalidRegistration matches registrations that cannot produce values.
	ErrInvalidRegistration = errors.New("invalid registration")

	// ErrNoActiveScope matches scoped resolutions attempted without a scope.
	ErrNoActiveScope = errors.New("no active scope")
)

// NotRegisteredError is returned when no registration exists for the
// requested service type and key.
type NotRegisteredError struct {
	Service reflect.Type
	Key     any
}

func (e *NotRegisteredError) Error() string {
	if e.Key == nil {
		return fmt.Sprintf("service %s is not registered", e.Service)
	}

	return fmt.Sprintf("service %s with key '%v' is not registered", e.Service, e.Key)
}

func (e *NotRegisteredError) Is(target error) bool {
	return target == ErrNotRegistered
}

// CircularDependencyError is returned when a resolution re-enters a slot
// already under construction. Chain holds the formatted registration keys
// from the first request down to the repeated one.
type CircularDependencyError struct {
	Chain []string
}

func (e *CircularDependencyError) Error() string {
	return fmt.Sprintf("circular dependency detected: %s", strings.Join(e.Chain, " -> "))
}

func (e *CircularDependencyError) Is(target error) bool {
	return target == ErrCircularDependency
}

// InvalidRegistrationError is returned when a registration cannot be wired:
// a nil or malformed factory, an uninstantiable implementation type, or a
// dependency slot that cannot be filled.
type InvalidRegistrationError struct {
	Reason string
}

func (e *InvalidRegistrationError) Error() string {
	return fmt.Sprintf("invalid registration: %s", e.Reason)
}

func (e *InvalidRegistrationError) Is(target error) bool {
	return target == ErrInvalidRegistration
}

// ScopeError is returned when a scoped-lifetime resolution is attempted
// while no scope is current on the container.
type ScopeError struct {
	Reason string
}

func (e *ScopeError) Error() string {
	return fmt.Sprintf("scope error: %s", e.Reason)
}

func (e *ScopeError) Is(target error) bool {
	return target == ErrNoActiveScope
}
