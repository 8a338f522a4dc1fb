package script

// Fragment templates. Downstream traversal assembly depends on this text byte
// for byte. Each takes the property name then the value.
const (
	PropertyStringTemplate  = "property('%s', '%s')"
	PropertyNumberTemplate  = "property('%s', %d)"
	PropertyBooleanTemplate = "property('%s', %t)"

	HasStringTemplate  = "has('%s', '%s')"
	HasNumberTemplate  = "has('%s', %d)"
	HasBooleanTemplate = "has('%s', %t)"
)

// Template identifies a fragment family.
type Template uint8

const (
	TemplateProperty Template = iota + 1
	TemplateHas
)

func (t Template) String() string {
	switch t {
	case TemplateProperty:
		return "property"
	case TemplateHas:
		return "has"
	}
	return "unknown"
}

type templateSet struct {
	str, number, boolean string
}

func (t Template) set() templateSet {
	if t == TemplateHas {
		return templateSet{str: HasStringTemplate, number: HasNumberTemplate, boolean: HasBooleanTemplate}
	}
	return templateSet{str: PropertyStringTemplate, number: PropertyNumberTemplate, boolean: PropertyBooleanTemplate}
}
