package script

import (
	"fmt"

	"github.com/WessleyAI/wessley-gremlin/pkg/fn"
	"github.com/WessleyAI/wessley-gremlin/pkg/serial"
)

// Serializer writes a KindOther value as JSON text. *serial.Serializer
// satisfies it.
type Serializer interface {
	Marshal(v any) ([]byte, error)
}

// Generator formats values into script fragments. It holds no mutable state
// and is safe for concurrent use as long as its Serializer is.
type Generator struct {
	ser Serializer
}

// New creates a Generator that serializes KindOther values with s.
func New(s Serializer) *Generator {
	if s == nil {
		s = serial.New()
	}
	return &Generator{ser: s}
}

// NewDefault creates a Generator backed by a tag-only serial.Serializer.
func NewDefault() *Generator {
	return New(serial.New())
}

// GenerateProperties returns one property() fragment per entry of props, in
// iteration order. The first failing entry aborts the call and no fragments
// are returned.
func (g *Generator) GenerateProperties(props *Properties) ([]string, error) {
	return g.properties(props).Unwrap()
}

func (g *Generator) properties(props *Properties) fn.Result[[]string] {
	if props == nil {
		return fn.Errf[[]string]("script: nil properties: %w", ErrInvalidArgument)
	}
	results := make([]fn.Result[string], 0, props.Len())
	for name, v := range props.All() {
		r := fn.FromPair(g.Generate(TemplateProperty, name, v))
		results = append(results, r)
		if r.IsErr() {
			break
		}
	}
	return fn.Collect(results)
}

// GeneratePropertiesMap is GenerateProperties over an unordered map; fragments
// come out sorted by property name.
func (g *Generator) GeneratePropertiesMap(m map[string]any) ([]string, error) {
	props, err := PropertiesFromMap(m)
	if err != nil {
		return nil, err
	}
	return g.GenerateProperties(props)
}

// GenerateHas returns the has() fragment for name and v.
func (g *Generator) GenerateHas(name string, v Value) (string, error) {
	return g.Generate(TemplateHas, name, v)
}

// GenerateHasOf classifies x with ValueOf and returns its has() fragment.
func (g *Generator) GenerateHasOf(name string, x any) (string, error) {
	v, err := ValueOf(x)
	if err != nil {
		return "", &ArgumentError{Name: name, Err: err}
	}
	return g.GenerateHas(name, v)
}

// Generate renders a single fragment of family t.
func (g *Generator) Generate(t Template, name string, v Value) (string, error) {
	if name == "" {
		return "", &ArgumentError{Name: name, Err: fmt.Errorf("%w: empty name", ErrInvalidArgument)}
	}
	ts := t.set()

	switch v.kind {
	case KindInteger:
		return fmt.Sprintf(ts.number, name, v.i), nil
	case KindBoolean:
		return fmt.Sprintf(ts.boolean, name, v.b), nil
	case KindString:
		return fmt.Sprintf(ts.str, name, v.s), nil
	case KindOther:
		text, err := g.ser.Marshal(v.obj)
		if err != nil {
			return "", &EntityTypeError{Name: name, Err: err}
		}
		return fmt.Sprintf(ts.str, name, text), nil
	default:
		return "", &ArgumentError{Name: name, Err: fmt.Errorf("%w: no value", ErrInvalidArgument)}
	}
}
