package capsule

import "fmt"

// RegisterType registers implementation I for service S. Use a pointer type
// parameter for implementations constructed behind a pointer:
//
//	capsule.RegisterType[Logger, *ConsoleLogger](c, capsule.Singleton())
func RegisterType[S, I any](c *Container, opts ...RegisterOption) *Container {
	return c.Register(TypeOf[S](), TypeOf[I](), opts...)
}

// RegisterKeyedType registers implementation I for service S under a key.
func RegisterKeyedType[S, I any](c *Container, key any, opts ...RegisterOption) *Container {
	return c.RegisterKeyed(TypeOf[S](), key, TypeOf[I](), opts...)
}

// RegisterValue registers a pre-built instance for service S.
func RegisterValue[S any](c *Container, instance S) *Container {
	return c.RegisterInstance(TypeOf[S](), instance)
}

// RegisterKeyedValue registers a pre-built instance for service S under a key.
func RegisterKeyedValue[S any](c *Container, key any, instance S) *Container {
	return c.RegisterKeyedInstance(TypeOf[S](), key, instance)
}

// RegisterFunc registers a factory for service S. The factory's parameters
// are resolved from the container; it returns S or (S, error).
func RegisterFunc[S any](c *Container, factory any, opts ...RegisterOption) *Container {
	return c.RegisterFactory(TypeOf[S](), factory, opts...)
}

// RegisterKeyedFunc registers a factory for service S under a key.
func RegisterKeyedFunc[S any](c *Container, key any, factory any, opts ...RegisterOption) *Container {
	return c.RegisterKeyedFactory(TypeOf[S](), key, factory, opts...)
}

// Resolve resolves service T with type safety.
func Resolve[T any](c *Container) (T, error) {
	return typed[T](c.Resolve(TypeOf[T]()))
}

// ResolveKeyed resolves service T registered under the given key.
func ResolveKeyed[T any](c *Container, key any) (T, error) {
	return typed[T](c.ResolveKeyed(TypeOf[T](), key))
}

// TryResolve resolves service T, reporting false instead of failing when it
// is not registered. Other failure kinds still propagate.
func TryResolve[T any](c *Container) (T, bool, error) {
	return tryTyped[T](c.TryResolve(TypeOf[T]()))
}

// TryResolveKeyed is the keyed variant of TryResolve.
func TryResolveKeyed[T any](c *Container, key any) (T, bool, error) {
	return tryTyped[T](c.TryResolveKeyed(TypeOf[T](), key))
}

// Must resolves service T or panics. Use only during startup wiring.
func Must[T any](c *Container) T {
	instance, err := Resolve[T](c)
	if err != nil {
		panic(fmt.Sprintf("capsule: failed to resolve %s: %v", TypeOf[T](), err))
	}

	return instance
}

// MustKeyed resolves service T under a key or panics.
func MustKeyed[T any](c *Container, key any) T {
	instance, err := ResolveKeyed[T](c, key)
	if err != nil {
		panic(fmt.Sprintf("capsule: failed to resolve %s with key '%v': %v", TypeOf[T](), key, err))
	}

	return instance
}

// All builds every registration of service T, keyed and unkeyed alike.
// Registrations that fail to construct are skipped.
func All[T any](c *Container) []T {
	raw := c.ResolveAll(TypeOf[T]())
	instances := make([]T, 0, len(raw))

	for _, instance := range raw {
		if t, ok := instance.(T); ok {
			instances = append(instances, t)
		}
	}

	return instances
}

func typed[T any](instance any, err error) (T, error) {
	var zero T

	if err != nil {
		return zero, err
	}

	t, ok := instance.(T)
	if !ok {
		return zero, &InvalidRegistrationError{
			Reason: fmt.Sprintf("service %s resolved to incompatible %T", TypeOf[T](), instance),
		}
	}

	return t, nil
}

func tryTyped[T any](instance any, ok bool, err error) (T, bool, error) {
	var zero T

	if err != nil || !ok {
		return zero, false, err
	}

	t, typeOK := instance.(T)
	if !typeOK {
		return zero, false, &InvalidRegistrationError{
			Reason: fmt.Sprintf("service %s resolved to incompatible %T", TypeOf[T](), instance),
		}
	}

	return t, true, nil
}
