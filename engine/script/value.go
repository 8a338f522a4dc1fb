package script

import (
	"fmt"
	"math"
	"reflect"
)

// Kind is the formatting category of a Value.
type Kind uint8

const (
	kindInvalid Kind = iota
	KindInteger
	KindBoolean
	KindString
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindBoolean:
		return "boolean"
	case KindString:
		return "string"
	case KindOther:
		return "other"
	}
	return "invalid"
}

// Value is a property value tagged with its Kind. The zero Value is absent
// and is rejected by the generator.
type Value struct {
	kind Kind
	i    int64
	b    bool
	s    string
	obj  any
}

func Int(v int64) Value     { return Value{kind: KindInteger, i: v} }
func Bool(v bool) Value     { return Value{kind: KindBoolean, b: v} }
func String(v string) Value { return Value{kind: KindString, s: v} }

// Object wraps an arbitrary value that is rendered as JSON text. Object(nil),
// and typed nils such as a nil pointer, map or slice, return the zero Value.
func Object(v any) Value {
	if isNil(v) {
		return Value{}
	}
	return Value{kind: KindOther, obj: v}
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsZero() bool { return v.kind == kindInvalid }

// Interface returns the wrapped Go value.
func (v Value) Interface() any {
	switch v.kind {
	case KindInteger:
		return v.i
	case KindBoolean:
		return v.b
	case KindString:
		return v.s
	case KindOther:
		return v.obj
	}
	return nil
}

// ValueOf classifies x, checking integer, boolean and string in that order and
// treating everything else as KindOther. Named types (type Label string) are
// not unwrapped and land in KindOther. Unsigned integers above math.MaxInt64
// are KindOther too. Typed nils are invalid arguments.
func ValueOf(x any) (Value, error) {
	switch v := x.(type) {
	case nil:
		return Value{}, fmt.Errorf("%w: nil value", ErrInvalidArgument)
	case Value:
		if v.IsZero() {
			return Value{}, fmt.Errorf("%w: zero value", ErrInvalidArgument)
		}
		return v, nil
	case int:
		return Int(int64(v)), nil
	case int8:
		return Int(int64(v)), nil
	case int16:
		return Int(int64(v)), nil
	case int32:
		return Int(int64(v)), nil
	case int64:
		return Int(v), nil
	case uint8:
		return Int(int64(v)), nil
	case uint16:
		return Int(int64(v)), nil
	case uint32:
		return Int(int64(v)), nil
	case uint:
		if uint64(v) <= math.MaxInt64 {
			return Int(int64(v)), nil
		}
	case uint64:
		if v <= math.MaxInt64 {
			return Int(int64(v)), nil
		}
	case bool:
		return Bool(v), nil
	case string:
		return String(v), nil
	}
	if isNil(x) {
		return Value{}, fmt.Errorf("%w: nil %T", ErrInvalidArgument, x)
	}
	return Object(x), nil
}
