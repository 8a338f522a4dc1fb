package serial

import (
	"fmt"
	"reflect"
)

// UnsupportedTypeError reports a value kind that has no JSON form (chan, func, complex).
type UnsupportedTypeError struct {
	Type reflect.Type
}

func (e *UnsupportedTypeError) Error() string {
	return "serial: unsupported type: " + e.Type.String()
}

// CycleError reports a pointer, map or slice that refers back to itself.
type CycleError struct {
	Type reflect.Type
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("serial: encountered a cycle via %s", e.Type)
}

// MarshalerError wraps a failure from a type's own MarshalJSON or MarshalText.
type MarshalerError struct {
	Type reflect.Type
	Err  error
}

func (e *MarshalerError) Error() string {
	return fmt.Sprintf("serial: error calling marshaler for type %s: %v", e.Type, e.Err)
}

func (e *MarshalerError) Unwrap() error { return e.Err }
