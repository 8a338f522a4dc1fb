// Package scriptsvc exposes the script generator to out-of-process callers
// over HTTP and NATS request/reply.
package scriptsvc

import "github.com/goccy/go-json"

// Property is one named value on the wire. Value holds raw JSON: integral
// numbers become integers, true/false booleans, strings strings, and any other
// JSON (fractions, objects, arrays) is embedded as JSON text.
type Property struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
}

// PropertiesRequest asks for one property() fragment per entry, in order.
type PropertiesRequest struct {
	Properties []Property `json:"properties"`
}

// HasRequest asks for a single has() fragment.
type HasRequest struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
}

// Response carries either fragments or an error. Code is one of the Code* constants.
type Response struct {
	Fragments []string `json:"fragments,omitempty"`
	Fragment  string   `json:"fragment,omitempty"`
	Error     string   `json:"error,omitempty"`
	Code      string   `json:"code,omitempty"`
}

const (
	CodeInvalidArgument      = "invalid_argument"
	CodeUnexpectedEntityType = "unexpected_entity_type"
	CodeMalformedRequest     = "malformed_request"
	CodeInternal             = "internal"
)
