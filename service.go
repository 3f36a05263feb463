package initorder

import (
	"fmt"
	"reflect"
)

// ServiceRegistry allows registration and retrieval of services
type ServiceRegistry map[string]any

// ServiceProvider defines a service with metadata
type ServiceProvider struct {
	Name        string
	Description string
	Instance    any
}

// assignService stores service in target, a non-nil pointer. The target's
// element may be an interface the service implements, a type the service
// is assignable to, or the value a pointer service points at.
func assignService(name string, service any, target any) error {
	dst := reflect.ValueOf(target)
	if dst.Kind() != reflect.Ptr || dst.IsNil() {
		return ErrTargetNotPointer
	}
	if service == nil {
		return fmt.Errorf("%w: %s", ErrServiceNil, name)
	}

	src := reflect.ValueOf(service)
	want := dst.Elem().Type()
	switch {
	case src.Type().AssignableTo(want):
		dst.Elem().Set(src)
	case src.Kind() == reflect.Ptr && !src.IsNil() && src.Elem().Type().AssignableTo(want):
		dst.Elem().Set(src.Elem())
	default:
		return fmt.Errorf("%w: service '%s' of type %s cannot be assigned to %s",
			ErrServiceIncompatible, name, src.Type(), want)
	}
	return nil
}
