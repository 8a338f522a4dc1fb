package scriptsvc

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/WessleyAI/wessley-gremlin/engine/script"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T, gen *script.Generator) (*Service, *Metrics) {
	t.Helper()
	if gen == nil {
		gen = script.NewDefault()
	}
	m := NewMetrics(prometheus.NewRegistry())
	return New(gen, discardLogger(), m), m
}

func post(t *testing.T, h http.Handler, path, body string) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body)))
	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return rec, resp
}

func TestPropertiesEndpoint(t *testing.T) {
	svc, m := newTestService(t, nil)
	body := `{"properties":[
		{"name":"name","value":"Alice"},
		{"name":"age","value":30},
		{"name":"active","value":true},
		{"name":"address","value":{"city":"Oslo"}}
	]}`
	rec, resp := post(t, svc.Routes(), "/api/scripts/properties", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	want := []string{
		"property('name', 'Alice')",
		"property('age', 30)",
		"property('active', true)",
		`property('address', '{"city":"Oslo"}')`,
	}
	if diff := cmp.Diff(want, resp.Fragments); diff != "" {
		t.Fatalf("fragments mismatch (-want +got):\n%s", diff)
	}
	if got := testutil.ToFloat64(m.fragments.WithLabelValues("property", "integer")); got != 1 {
		t.Fatalf("expected 1 integer property fragment, got %v", got)
	}
	if got := testutil.ToFloat64(m.fragments.WithLabelValues("property", "other")); got != 1 {
		t.Fatalf("expected 1 other property fragment, got %v", got)
	}
}

func TestHasEndpoint(t *testing.T) {
	svc, m := newTestService(t, nil)
	rec, resp := post(t, svc.Routes(), "/api/scripts/has", `{"name":"age","value":30}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if resp.Fragment != "has('age', 30)" {
		t.Fatalf("unexpected fragment %q", resp.Fragment)
	}
	if got := testutil.ToFloat64(m.fragments.WithLabelValues("has", "integer")); got != 1 {
		t.Fatalf("expected 1 has fragment, got %v", got)
	}
}

func TestEndpointErrors(t *testing.T) {
	svc, m := newTestService(t, nil)
	h := svc.Routes()

	tests := []struct {
		name, path, body string
		status           int
		code             string
	}{
		{"malformed", "/api/scripts/has", "not json", http.StatusBadRequest, CodeMalformedRequest},
		{"null value", "/api/scripts/has", `{"name":"x","value":null}`, http.StatusBadRequest, CodeInvalidArgument},
		{"missing name", "/api/scripts/has", `{"value":1}`, http.StatusBadRequest, CodeInvalidArgument},
		{"missing value in list", "/api/scripts/properties", `{"properties":[{"name":"a","value":1},{"name":"b"}]}`, http.StatusBadRequest, CodeInvalidArgument},
		{"duplicate name", "/api/scripts/properties", `{"properties":[{"name":"a","value":1},{"name":"a","value":2}]}`, http.StatusBadRequest, CodeInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := post(t, h, tt.path, tt.body)
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rec.Code)
			}
			if resp.Code != tt.code || resp.Error == "" {
				t.Fatalf("unexpected error response %+v", resp)
			}
			if len(resp.Fragments) != 0 || resp.Fragment != "" {
				t.Fatalf("error response must not carry fragments: %+v", resp)
			}
		})
	}
	if got := testutil.ToFloat64(m.failures.WithLabelValues(CodeInvalidArgument)); got != 4 {
		t.Fatalf("expected 4 invalid argument failures, got %v", got)
	}
}

type failingSerializer struct{}

func (failingSerializer) Marshal(any) ([]byte, error) { return nil, errors.New("cannot encode") }

func TestUnexpectedEntityTypeMapsTo422(t *testing.T) {
	svc, m := newTestService(t, script.New(failingSerializer{}))
	rec, resp := post(t, svc.Routes(), "/api/scripts/properties",
		`{"properties":[{"name":"ok","value":1},{"name":"doc","value":{"a":1}}]}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if resp.Code != CodeUnexpectedEntityType || len(resp.Fragments) != 0 {
		t.Fatalf("unexpected response %+v", resp)
	}
	if got := testutil.ToFloat64(m.failures.WithLabelValues(CodeUnexpectedEntityType)); got != 1 {
		t.Fatalf("expected 1 failure, got %v", got)
	}
}

func TestHealth(t *testing.T) {
	svc, _ := newTestService(t, nil)
	rec := httptest.NewRecorder()
	svc.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestServiceWithoutMetrics(t *testing.T) {
	svc := New(script.NewDefault(), nil, nil)
	frags, err := svc.Properties(context.Background(), PropertiesRequest{Properties: []Property{
		{Name: "a", Value: json.RawMessage(`1`)},
	}})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"property('a', 1)"}, frags); diff != "" {
		t.Fatalf("fragments mismatch (-want +got):\n%s", diff)
	}
}
