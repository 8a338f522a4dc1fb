package scriptsvc

import (
	"context"

	"github.com/nats-io/nats.go"

	"github.com/WessleyAI/wessley-gremlin/pkg/natsutil"
)

// DefaultSubjectPrefix is the subject root used when Serve is given none.
const DefaultSubjectPrefix = "gremlin.script"

// Serve answers PropertiesRequest on <prefix>.properties and HasRequest on
// <prefix>.has. Subscriptions join queue group queue when it is non-empty.
// The caller owns the returned subscriptions.
func (s *Service) Serve(nc *nats.Conn, prefix, queue string) ([]*nats.Subscription, error) {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}

	props, err := natsutil.Handle(nc, prefix+".properties", queue,
		func(ctx context.Context, req PropertiesRequest) Response {
			frags, err := s.Properties(ctx, req)
			if err != nil {
				return errorResponse(err)
			}
			return Response{Fragments: frags}
		}, s.malformed)
	if err != nil {
		return nil, err
	}

	has, err := natsutil.Handle(nc, prefix+".has", queue,
		func(ctx context.Context, req HasRequest) Response {
			frag, err := s.Has(ctx, req)
			if err != nil {
				return errorResponse(err)
			}
			return Response{Fragment: frag}
		}, s.malformed)
	if err != nil {
		s.unsubscribe(props)
		return nil, err
	}
	return []*nats.Subscription{props, has}, nil
}

func (s *Service) unsubscribe(subs ...*nats.Subscription) {
	for _, sub := range subs {
		if err := sub.Unsubscribe(); err != nil {
			s.log.Warn("nats unsubscribe failed", "subject", sub.Subject, "err", err)
		}
	}
}

func (s *Service) malformed(err error) Response {
	s.metrics.failure(CodeMalformedRequest)
	s.log.Warn("malformed nats request", "err", err)
	return Response{Error: "invalid request body", Code: CodeMalformedRequest}
}
