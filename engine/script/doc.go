// Package script renders typed property values as Gremlin script fragments.
//
// Two fragment families are produced: property assignment
// (property('name', value)) and predicate filtering (has('name', value)).
// Integers and booleans are embedded as raw literals, strings are single
// quoted, and any other value is serialized to JSON and embedded as a quoted
// string. Names and string values are not escaped; callers supply text that is
// already safe to embed.
//
//	g := script.NewDefault()
//	frag, err := g.GenerateHas("age", script.Int(30)) // has('age', 30)
package script
