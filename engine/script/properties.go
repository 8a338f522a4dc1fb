package script

import (
	"iter"
	"maps"
	"slices"
)

// Properties is an insertion-ordered set of named values. The zero value is
// an empty set ready to use.
type Properties struct {
	names  []string
	values map[string]Value
}

// NewProperties creates an empty Properties.
func NewProperties() *Properties {
	return &Properties{values: make(map[string]Value)}
}

// PropertiesFromMap classifies every entry of m with ValueOf. Go maps have no
// iteration order, so entries are ordered by name.
func PropertiesFromMap(m map[string]any) (*Properties, error) {
	p := NewProperties()
	for _, name := range slices.Sorted(maps.Keys(m)) {
		v, err := ValueOf(m[name])
		if err != nil {
			return nil, &ArgumentError{Name: name, Err: err}
		}
		p.Set(name, v)
	}
	return p, nil
}

// Set stores v under name. Replacing an existing name keeps its position.
func (p *Properties) Set(name string, v Value) *Properties {
	if p.values == nil {
		p.values = make(map[string]Value)
	}
	if _, ok := p.values[name]; !ok {
		p.names = append(p.names, name)
	}
	p.values[name] = v
	return p
}

func (p *Properties) Get(name string) (Value, bool) {
	v, ok := p.values[name]
	return v, ok
}

func (p *Properties) Len() int { return len(p.names) }

// Names returns the property names in insertion order.
func (p *Properties) Names() []string { return slices.Clone(p.names) }

// All iterates over the properties in insertion order.
func (p *Properties) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for _, name := range p.names {
			if !yield(name, p.values[name]) {
				return
			}
		}
	}
}
