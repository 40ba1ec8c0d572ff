package capsule

import (
	"fmt"
	"reflect"
	"strings"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// construct produces a new value for reg, dispatching on the registration's
// strategy. It never consults caches; lifetime policy lives in instantiate.
func (c *Container) construct(st *resolutionStack, reg *Registration) (any, error) {
	switch reg.strategy {
	case strategyInstance:
		return reg.Instance, nil
	case strategyFactory:
		return c.invokeFactory(st, reg)
	case strategyType:
		return c.constructType(st, reg)
	default:
		return nil, &InvalidRegistrationError{
			Reason: fmt.Sprintf("unknown strategy %d for %s", reg.strategy, reg.key()),
		}
	}
}

// invokeFactory resolves each declared parameter of the factory function by
// its type (unkeyed), then calls it. A trailing variadic parameter is not a
// dependency slot and is left empty. The factory may return T or (T, error);
// a factory error propagates to the resolve caller unchanged.
func (c *Container) invokeFactory(st *resolutionStack, reg *Registration) (any, error) {
	if reg.Factory == nil {
		return nil, &InvalidRegistrationError{
			Reason: fmt.Sprintf("factory for %s is nil", reg.key()),
		}
	}

	fn := reflect.ValueOf(reg.Factory)
	fnType := fn.Type()

	if fnType.Kind() != reflect.Func {
		return nil, &InvalidRegistrationError{
			Reason: fmt.Sprintf("factory for %s must be a function, got %T", reg.key(), reg.Factory),
		}
	}

	if err := validateFactoryResults(fnType, reg.key()); err != nil {
		return nil, err
	}

	numIn := fnType.NumIn()
	if fnType.IsVariadic() {
		numIn--
	}

	args := make([]reflect.Value, 0, numIn)

	for i := 0; i < numIn; i++ {
		paramType := fnType.In(i)

		dep, err := c.resolveInternal(st, serviceKey{Type: paramType})
		if err != nil {
			return nil, err
		}

		arg, err := assignableValue(dep, paramType)
		if err != nil {
			return nil, &InvalidRegistrationError{
				Reason: fmt.Sprintf("factory for %s: parameter %d: %v", reg.key(), i, err),
			}
		}

		args = append(args, arg)
	}

	results := fn.Call(args)

	if len(results) == 2 && !results[1].IsNil() {
		return nil, results[1].Interface().(error)
	}

	return results[0].Interface(), nil
}

// validateFactoryResults enforces the T or (T, error) factory shape.
func validateFactoryResults(fnType reflect.Type, k serviceKey) error {
	switch fnType.NumOut() {
	case 1:
		if fnType.Out(0) == errorType {
			return &InvalidRegistrationError{
				Reason: fmt.Sprintf("factory for %s must return a value, not only an error", k),
			}
		}
	case 2:
		if fnType.Out(1) != errorType {
			return &InvalidRegistrationError{
				Reason: fmt.Sprintf("factory for %s: second return value must be error", k),
			}
		}
	default:
		return &InvalidRegistrationError{
			Reason: fmt.Sprintf("factory for %s must return T or (T, error)", k),
		}
	}

	return nil
}

// constructType instantiates an implementation type, resolving each tagged
// dependency field recursively. The implementation must be a struct or a
// pointer to struct; the dependency slots are the fields carrying an inject
// tag, in declaration order.
func (c *Container) constructType(st *resolutionStack, reg *Registration) (any, error) {
	impl := reg.ImplType
	if impl == nil {
		return nil, &InvalidRegistrationError{
			Reason: fmt.Sprintf("implementation type for %s is nil", reg.key()),
		}
	}

	elem := impl
	byPointer := false

	if elem.Kind() == reflect.Ptr {
		elem = elem.Elem()
		byPointer = true
	}

	if elem.Kind() != reflect.Struct {
		return nil, &InvalidRegistrationError{
			Reason: fmt.Sprintf("implementation type %s for %s is not a struct or pointer to struct", impl, reg.key()),
		}
	}

	value := reflect.New(elem)

	if err := c.injectFields(st, value.Elem()); err != nil {
		return nil, err
	}

	if byPointer {
		return value.Interface(), nil
	}

	return value.Elem().Interface(), nil
}

// injectFields fills the inject-tagged fields of a freshly constructed
// struct value. An optional field whose type is not registered keeps its
// declared default (the zero value it was constructed with).
func (c *Container) injectFields(st *resolutionStack, value reflect.Value) error {
	structType := value.Type()

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)

		tag, ok := field.Tag.Lookup("inject")
		if !ok {
			continue
		}

		opts := parseInjectTag(tag)
		if opts.skip {
			continue
		}

		if !field.IsExported() {
			return &InvalidRegistrationError{
				Reason: fmt.Sprintf("field %s.%s carries an inject tag but is not exported", structType, field.Name),
			}
		}

		k := serviceKey{Type: field.Type}
		if opts.key != "" {
			k.Key = opts.key
		}

		if opts.optional && !c.registry.isRegistered(k) {
			continue
		}

		dep, err := c.resolveInternal(st, k)
		if err != nil {
			return err
		}

		fieldValue, err := assignableValue(dep, field.Type)
		if err != nil {
			return &InvalidRegistrationError{
				Reason: fmt.Sprintf("field %s.%s: %v", structType, field.Name, err),
			}
		}

		value.Field(i).Set(fieldValue)
	}

	return nil
}

// assignableValue converts a resolved dependency to a reflect.Value
// assignable to the target type.
func assignableValue(dep any, target reflect.Type) (reflect.Value, error) {
	if dep == nil {
		return reflect.Zero(target), nil
	}

	value := reflect.ValueOf(dep)
	if !value.Type().AssignableTo(target) {
		return reflect.Value{}, fmt.Errorf("resolved %T is not assignable to %s", dep, target)
	}

	return value, nil
}

// tagOptions holds the parsed form of an inject tag.
type tagOptions struct {
	skip     bool
	optional bool
	key      string
}

// parseInjectTag parses an inject struct tag. Supported forms:
//   - `inject:""`                 required dependency
//   - `inject:"optional"`         injected only when registered
//   - `inject:"key=NAME"`         resolved under the given key
//   - `inject:"optional,key=NAME"` combined
//   - `inject:"-"`                 never injected
func parseInjectTag(tag string) tagOptions {
	opts := tagOptions{}

	if tag == "" {
		return opts
	}

	if tag == "-" {
		opts.skip = true

		return opts
	}

	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)

		switch {
		case part == "optional":
			opts.optional = true
		case strings.HasPrefix(part, "key="):
			opts.key = strings.TrimPrefix(part, "key=")
		}
	}

	return opts
}
