package capsule

import (
	"fmt"
	"reflect"
)

// serviceKey identifies one registration slot: a service type plus an
// optional discriminator key. A nil Key is itself a valid, distinct slot
// (the "unkeyed" registration).
type serviceKey struct {
	Type reflect.Type
	Key  any
}

func (k serviceKey) String() string {
	name := "<nil>"
	if k.Type != nil {
		name = k.Type.String()
	}

	if k.Key == nil {
		return name
	}

	return fmt.Sprintf("%s(key=%v)", name, k.Key)
}

// TypeOf returns the service identifier for T. Use a pointer type parameter
// for implementations constructed behind a pointer:
//
//	capsule.TypeOf[Logger]()         // interface contract
//	capsule.TypeOf[*ConsoleLogger]() // concrete implementation
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
