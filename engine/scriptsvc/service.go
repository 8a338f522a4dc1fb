package scriptsvc

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/WessleyAI/wessley-gremlin/engine/script"
	"github.com/WessleyAI/wessley-gremlin/pkg/fn"
)

// Service turns wire requests into script fragments.
type Service struct {
	log        *slog.Logger
	metrics    *Metrics
	properties fn.Stage[PropertiesRequest, outcome]
	has        fn.Stage[HasRequest, outcome]
}

// outcome is a generated batch along with the value kinds that produced it.
type outcome struct {
	fragments []string
	kinds     []script.Kind
}

// New creates a Service around gen. logger and metrics may be nil.
func New(gen *script.Generator, logger *slog.Logger, metrics *Metrics) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		log:        logger,
		metrics:    metrics,
		properties: propertiesPipeline(gen),
		has:        hasPipeline(gen),
	}
}

func propertiesPipeline(gen *script.Generator) fn.Stage[PropertiesRequest, outcome] {
	generate := script.PropertiesStage(gen)
	decode := fn.Stage[PropertiesRequest, *script.Properties](
		func(_ context.Context, req PropertiesRequest) fn.Result[*script.Properties] {
			return fn.FromPair(decodeProperties(req.Properties))
		})
	return fn.Then(decode, fn.Stage[*script.Properties, outcome](
		func(ctx context.Context, props *script.Properties) fn.Result[outcome] {
			return fn.MapResult(generate(ctx, props), func(frags []string) outcome {
				kinds := make([]script.Kind, 0, props.Len())
				for _, v := range props.All() {
					kinds = append(kinds, v.Kind())
				}
				return outcome{fragments: frags, kinds: kinds}
			})
		}))
}

func hasPipeline(gen *script.Generator) fn.Stage[HasRequest, outcome] {
	generate := script.HasStage(gen)
	decode := fn.Stage[HasRequest, script.Predicate](
		func(_ context.Context, req HasRequest) fn.Result[script.Predicate] {
			v, err := decodeValue(req.Value)
			if err != nil {
				return fn.Err[script.Predicate](&script.ArgumentError{Name: req.Name, Err: err})
			}
			return fn.Ok(script.Predicate{Name: req.Name, Value: v})
		})
	return fn.Then(decode, fn.Stage[script.Predicate, outcome](
		func(ctx context.Context, p script.Predicate) fn.Result[outcome] {
			return fn.MapResult(generate(ctx, p), func(frag string) outcome {
				return outcome{fragments: []string{frag}, kinds: []script.Kind{p.Value.Kind()}}
			})
		}))
}

// Properties returns the property() fragments for req in request order.
func (s *Service) Properties(ctx context.Context, req PropertiesRequest) ([]string, error) {
	defer s.metrics.observe("properties", time.Now())

	out, err := s.properties(ctx, req).Unwrap()
	if err != nil {
		return nil, s.fail(ctx, "properties", err)
	}
	s.record(script.TemplateProperty, out.kinds)
	return out.fragments, nil
}

// Has returns the has() fragment for req.
func (s *Service) Has(ctx context.Context, req HasRequest) (string, error) {
	defer s.metrics.observe("has", time.Now())

	out, err := s.has(ctx, req).Unwrap()
	if err != nil {
		return "", s.fail(ctx, "has", err)
	}
	s.record(script.TemplateHas, out.kinds)
	return out.fragments[0], nil
}

func (s *Service) record(t script.Template, kinds []script.Kind) {
	for _, k := range kinds {
		s.metrics.fragment(t.String(), k.String())
	}
}

func (s *Service) fail(ctx context.Context, op string, err error) error {
	code := errorCode(err)
	s.metrics.failure(code)
	s.log.WarnContext(ctx, "script generation failed", "op", op, "code", code, "err", err)
	return err
}

// errorCode classifies err into one of the Code* constants.
func errorCode(err error) string {
	switch {
	case errors.Is(err, script.ErrUnexpectedEntityType):
		return CodeUnexpectedEntityType
	case errors.Is(err, script.ErrInvalidArgument):
		return CodeInvalidArgument
	}
	return CodeInternal
}

func errorResponse(err error) Response {
	return Response{Error: err.Error(), Code: errorCode(err)}
}
