package script

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrUnexpectedEntityType = errors.New("unexpected entity type")
)

// ArgumentError reports an absent name or value for a property.
type ArgumentError struct {
	Name string
	Err  error
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("script: property %q: %v", e.Name, e.Err)
}

func (e *ArgumentError) Unwrap() error { return e.Err }

// EntityTypeError reports a KindOther value the serializer could not write.
// It matches ErrUnexpectedEntityType and unwraps to the serializer's error.
type EntityTypeError struct {
	Name string
	Err  error
}

func (e *EntityTypeError) Error() string {
	return fmt.Sprintf("script: %s: failed to write property %q to string: %v", ErrUnexpectedEntityType, e.Name, e.Err)
}

func (e *EntityTypeError) Unwrap() error { return e.Err }

func (e *EntityTypeError) Is(target error) bool { return target == ErrUnexpectedEntityType }
