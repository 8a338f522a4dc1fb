package scriptsvc

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/WessleyAI/wessley-gremlin/engine/script"
)

// decodeValue maps a raw JSON value onto a script.Value.
func decodeValue(raw json.RawMessage) (script.Value, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return script.Value{}, fmt.Errorf("%w: missing value", script.ErrInvalidArgument)
	}

	switch raw[0] {
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return script.Value{}, err
		}
		return script.Bool(b), nil
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return script.Value{}, err
		}
		return script.String(s), nil
	}
	if n, err := strconv.ParseInt(string(raw), 10, 64); err == nil {
		return script.Int(n), nil
	}
	return script.Object(raw), nil
}

// decodeProperties keeps the request order. A name may appear only once so
// every entry yields exactly one fragment.
func decodeProperties(in []Property) (*script.Properties, error) {
	props := script.NewProperties()
	for _, p := range in {
		if _, dup := props.Get(p.Name); dup {
			return nil, &script.ArgumentError{Name: p.Name, Err: fmt.Errorf("%w: duplicate property", script.ErrInvalidArgument)}
		}
		v, err := decodeValue(p.Value)
		if err != nil {
			return nil, &script.ArgumentError{Name: p.Name, Err: err}
		}
		props.Set(p.Name, v)
	}
	return props, nil
}
