// Package serial encodes arbitrary Go values as JSON text under an explicit
// visibility policy: a struct field is written only when it carries a struct
// tag for the configured key. Untagged fields are never discovered
// automatically. Types implementing json.Marshaler or encoding.TextMarshaler
// always encode themselves.
//
// A Serializer is configured once by New and is safe for concurrent use.
package serial

import (
	"bytes"
	"encoding"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"unsafe"

	"github.com/goccy/go-json"
)

// DefaultTagKey is the struct tag consulted when no WithTagKey option is given.
const DefaultTagKey = "json"

// Serializer turns values into JSON text. The zero value is not usable; call New.
type Serializer struct {
	tagKey     string
	escapeHTML bool
}

// Option configures a Serializer at construction time.
type Option func(*Serializer)

// WithTagKey sets the struct tag that marks a field as visible.
func WithTagKey(key string) Option {
	return func(s *Serializer) {
		if key != "" {
			s.tagKey = key
		}
	}
}

// WithHTMLEscape toggles escaping of <, > and & inside JSON strings (default off).
func WithHTMLEscape(on bool) Option {
	return func(s *Serializer) { s.escapeHTML = on }
}

// New creates a Serializer.
func New(opts ...Option) *Serializer {
	s := &Serializer{tagKey: DefaultTagKey}
	for _, o := range opts {
		o(s)
	}
	return s
}

// TagKey returns the struct tag consulted for field visibility.
func (s *Serializer) TagKey() string { return s.tagKey }

// Marshal returns the JSON encoding of v.
func (s *Serializer) Marshal(v any) ([]byte, error) {
	e := &encoder{s: s, seen: make(map[visit]struct{})}
	if err := e.value(reflect.ValueOf(v)); err != nil {
		return nil, err
	}
	return e.buf.Bytes(), nil
}

// MarshalString is Marshal returning a string.
func (s *Serializer) MarshalString(v any) (string, error) {
	b, err := s.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

var (
	marshalerType     = reflect.TypeFor[json.Marshaler]()
	textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()
)

// visit identifies a reference-typed value currently on the encode path.
type visit struct {
	ptr unsafe.Pointer
	typ reflect.Type
	n   int
}

type encoder struct {
	s    *Serializer
	buf  bytes.Buffer
	seen map[visit]struct{}
}

func (e *encoder) leaf(v any) error {
	var (
		b   []byte
		err error
	)
	if e.s.escapeHTML {
		b, err = json.Marshal(v)
	} else {
		b, err = json.MarshalNoEscape(v)
	}
	if err != nil {
		return err
	}
	e.buf.Write(b)
	return nil
}

// enter marks a reference as being encoded and reports a cycle if it already is.
func (e *encoder) enter(k visit) error {
	if _, ok := e.seen[k]; ok {
		return &CycleError{Type: k.typ}
	}
	e.seen[k] = struct{}{}
	return nil
}

func (e *encoder) leave(k visit) { delete(e.seen, k) }

func (e *encoder) value(v reflect.Value) error {
	if !v.IsValid() {
		e.buf.WriteString("null")
		return nil
	}
	if ok, err := e.marshaler(v); ok || err != nil {
		return err
	}

	switch v.Kind() {
	case reflect.Bool:
		e.buf.WriteString(strconv.FormatBool(v.Bool()))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		e.buf.WriteString(strconv.FormatInt(v.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		e.buf.WriteString(strconv.FormatUint(v.Uint(), 10))
	case reflect.Float32:
		return e.leaf(float32(v.Float()))
	case reflect.Float64:
		return e.leaf(v.Float())
	case reflect.String:
		return e.leaf(v.String())
	case reflect.Interface:
		if v.IsNil() {
			e.buf.WriteString("null")
			return nil
		}
		return e.value(v.Elem())
	case reflect.Pointer:
		if v.IsNil() {
			e.buf.WriteString("null")
			return nil
		}
		k := visit{ptr: v.UnsafePointer(), typ: v.Type()}
		if err := e.enter(k); err != nil {
			return err
		}
		defer e.leave(k)
		return e.value(v.Elem())
	case reflect.Map:
		return e.mapValue(v)
	case reflect.Slice:
		if v.IsNil() {
			e.buf.WriteString("null")
			return nil
		}
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return e.leaf(v.Bytes())
		}
		k := visit{ptr: v.UnsafePointer(), typ: v.Type(), n: v.Len()}
		if err := e.enter(k); err != nil {
			return err
		}
		defer e.leave(k)
		return e.array(v)
	case reflect.Array:
		return e.array(v)
	case reflect.Struct:
		return e.structValue(v)
	default:
		return &UnsupportedTypeError{Type: v.Type()}
	}
	return nil
}

// marshaler encodes v through its own MarshalJSON or MarshalText when it has one.
func (e *encoder) marshaler(v reflect.Value) (bool, error) {
	t := v.Type()
	if (t.Kind() == reflect.Pointer || t.Kind() == reflect.Interface) && v.IsNil() {
		return false, nil
	}
	target := v
	switch {
	case t.Implements(marshalerType) || t.Implements(textMarshalerType):
	case v.CanAddr() && (reflect.PointerTo(t).Implements(marshalerType) || reflect.PointerTo(t).Implements(textMarshalerType)):
		target = v.Addr()
	default:
		return false, nil
	}
	if !target.CanInterface() {
		return false, nil
	}

	switch m := target.Interface().(type) {
	case json.Marshaler:
		b, err := m.MarshalJSON()
		if err != nil {
			return true, &MarshalerError{Type: t, Err: err}
		}
		var compact bytes.Buffer
		if err := json.Compact(&compact, b); err != nil {
			return true, &MarshalerError{Type: t, Err: err}
		}
		e.buf.Write(compact.Bytes())
	case encoding.TextMarshaler:
		b, err := m.MarshalText()
		if err != nil {
			return true, &MarshalerError{Type: t, Err: err}
		}
		return true, e.leaf(string(b))
	}
	return true, nil
}

func (e *encoder) array(v reflect.Value) error {
	e.buf.WriteByte('[')
	for i := 0; i < v.Len(); i++ {
		if i > 0 {
			e.buf.WriteByte(',')
		}
		if err := e.value(v.Index(i)); err != nil {
			return err
		}
	}
	e.buf.WriteByte(']')
	return nil
}

type mapEntry struct {
	key string
	val reflect.Value
}

func (e *encoder) mapValue(v reflect.Value) error {
	if v.IsNil() {
		e.buf.WriteString("null")
		return nil
	}
	k := visit{ptr: v.UnsafePointer(), typ: v.Type()}
	if err := e.enter(k); err != nil {
		return err
	}
	defer e.leave(k)

	entries := make([]mapEntry, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		key, err := mapKey(iter.Key())
		if err != nil {
			return err
		}
		entries = append(entries, mapEntry{key: key, val: iter.Value()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })

	e.buf.WriteByte('{')
	for i, en := range entries {
		if i > 0 {
			e.buf.WriteByte(',')
		}
		if err := e.leaf(en.key); err != nil {
			return err
		}
		e.buf.WriteByte(':')
		if err := e.value(en.val); err != nil {
			return err
		}
	}
	e.buf.WriteByte('}')
	return nil
}

func mapKey(k reflect.Value) (string, error) {
	if k.Kind() == reflect.String {
		return k.String(), nil
	}
	if k.CanInterface() {
		if tm, ok := k.Interface().(encoding.TextMarshaler); ok {
			if k.Kind() == reflect.Pointer && k.IsNil() {
				return "", nil
			}
			b, err := tm.MarshalText()
			if err != nil {
				return "", &MarshalerError{Type: k.Type(), Err: err}
			}
			return string(b), nil
		}
	}
	switch k.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(k.Uint(), 10), nil
	}
	return "", &UnsupportedTypeError{Type: k.Type()}
}

func (e *encoder) structValue(v reflect.Value) error {
	e.buf.WriteByte('{')
	first := true
	for _, f := range e.s.fields(v.Type()) {
		fv, ok := fieldByIndex(v, f.index)
		if !ok || (f.omitEmpty && isEmpty(fv)) {
			continue
		}
		if !first {
			e.buf.WriteByte(',')
		}
		first = false
		if err := e.leaf(f.name); err != nil {
			return err
		}
		e.buf.WriteByte(':')
		if err := e.value(fv); err != nil {
			return err
		}
	}
	e.buf.WriteByte('}')
	return nil
}

// fieldByIndex walks index through embedded structs, reporting false when it
// crosses a nil embedded pointer.
func fieldByIndex(v reflect.Value, index []int) (reflect.Value, bool) {
	for i, x := range index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return reflect.Value{}, false
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v, true
}

type field struct {
	name      string
	index     []int
	depth     int
	omitEmpty bool
}

// fields lists the visible fields of struct type t in declaration order.
// Tagged fields of untagged embedded structs are promoted; on a name clash the
// shallowest field wins.
func (s *Serializer) fields(t reflect.Type) []field {
	var all []field
	s.collect(t, nil, 0, &all, map[reflect.Type]bool{})

	best := make(map[string]int, len(all))
	for i, f := range all {
		if j, ok := best[f.name]; !ok || f.depth < all[j].depth {
			best[f.name] = i
		}
	}
	out := make([]field, 0, len(best))
	for i, f := range all {
		if best[f.name] == i {
			out = append(out, f)
		}
	}
	return out
}

func (s *Serializer) collect(t reflect.Type, prefix []int, depth int, out *[]field, visiting map[reflect.Type]bool) {
	if visiting[t] {
		return
	}
	visiting[t] = true
	defer delete(visiting, t)

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag, tagged := sf.Tag.Lookup(s.tagKey)
		if tag == "-" {
			continue
		}
		index := append(append([]int(nil), prefix...), i)

		if sf.Anonymous && !tagged {
			ft := sf.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				s.collect(ft, index, depth+1, out, visiting)
			}
			continue
		}
		if !tagged || !sf.IsExported() {
			continue
		}

		name, opts, _ := strings.Cut(tag, ",")
		if name == "" {
			name = sf.Name
		}
		*out = append(*out, field{
			name:      name,
			index:     index,
			depth:     depth,
			omitEmpty: hasOption(opts, "omitempty"),
		})
	}
}

func hasOption(opts, want string) bool {
	for opts != "" {
		var o string
		o, opts, _ = strings.Cut(opts, ",")
		if o == want {
			return true
		}
	}
	return false
}

func isEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Interface, reflect.Pointer:
		return v.IsNil()
	}
	return false
}
