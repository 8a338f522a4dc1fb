// Package natsutil provides typed NATS request/reply helpers with
// OpenTelemetry trace propagation through message headers.
package natsutil

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
)

// natsHeaderCarrier adapts nats.Msg headers for OTel TextMapCarrier.
type natsHeaderCarrier nats.Msg

func (c *natsHeaderCarrier) Get(key string) string {
	if c.Header == nil {
		return ""
	}
	return c.Header.Get(key)
}

func (c *natsHeaderCarrier) Set(key, val string) {
	if c.Header == nil {
		c.Header = make(nats.Header)
	}
	c.Header.Set(key, val)
}

func (c *natsHeaderCarrier) Keys() []string {
	if c.Header == nil {
		return nil
	}
	keys := make([]string, 0, len(c.Header))
	for k := range c.Header {
		keys = append(keys, k)
	}
	return keys
}

// Handle subscribes to subject and answers each request with the JSON
// encoding of handler's response. When queue is non-empty the subscription
// joins that queue group. Payloads that fail to decode are answered with
// onDecodeErr(err). Messages without a reply subject are dropped.
func Handle[Req, Resp any](nc *nats.Conn, subject, queue string, handler func(context.Context, Req) Resp, onDecodeErr func(error) Resp) (*nats.Subscription, error) {
	cb := func(msg *nats.Msg) {
		if msg.Reply == "" {
			return
		}
		ctx := otel.GetTextMapPropagator().Extract(context.Background(), (*natsHeaderCarrier)(msg))

		var resp Resp
		var req Req
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			resp = onDecodeErr(err)
		} else {
			resp = handler(ctx, req)
		}

		data, err := json.Marshal(resp)
		if err != nil {
			return
		}
		reply := &nats.Msg{Subject: msg.Reply, Data: data}
		otel.GetTextMapPropagator().Inject(ctx, (*natsHeaderCarrier)(reply))
		_ = msg.RespondMsg(reply)
	}
	if queue == "" {
		return nc.Subscribe(subject, cb)
	}
	return nc.QueueSubscribe(subject, queue, cb)
}

// Request sends a JSON-encoded request and decodes the response. The wait is
// bounded by ctx and by timeout; a zero timeout uses nats.DefaultTimeout.
func Request[Req, Resp any](ctx context.Context, nc *nats.Conn, subject string, req Req, timeout time.Duration) (Resp, error) {
	var zero Resp
	data, err := json.Marshal(req)
	if err != nil {
		return zero, err
	}
	if timeout <= 0 {
		timeout = nats.DefaultTimeout
	}
	msg := &nats.Msg{
		Subject: subject,
		Data:    data,
	}
	otel.GetTextMapPropagator().Inject(ctx, (*natsHeaderCarrier)(msg))
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	resp, err := nc.RequestMsgWithContext(ctx, msg)
	if err != nil {
		return zero, err
	}
	var result Resp
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return zero, err
	}
	return result, nil
}
