package script

import (
	"context"

	"github.com/WessleyAI/wessley-gremlin/pkg/fn"
)

// Predicate is a single has() input.
type Predicate struct {
	Name  string
	Value Value
}

// PropertiesStage wraps GenerateProperties as a traced pipeline stage.
func PropertiesStage(g *Generator) fn.Stage[*Properties, []string] {
	return fn.TracedStage("script.properties", fn.Stage[*Properties, []string](
		func(_ context.Context, p *Properties) fn.Result[[]string] {
			return g.properties(p)
		}))
}

// HasStage wraps GenerateHas as a traced pipeline stage.
func HasStage(g *Generator) fn.Stage[Predicate, string] {
	return fn.TracedStage("script.has", fn.Stage[Predicate, string](
		func(_ context.Context, p Predicate) fn.Result[string] {
			return fn.FromPair(g.GenerateHas(p.Name, p.Value))
		}))
}
