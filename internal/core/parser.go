package core

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Object is a decoded top-level JSON object together with the exact bytes
// it was decoded from.
type Object struct {
	Raw    []byte
	Fields map[string]json.RawMessage
}

// Has reports whether the object carries a top-level key.
func (o Object) Has(key string) bool {
	_, ok := o.Fields[key]
	return ok
}

// ParseObject turns model output into an object. Clean JSON is decoded
// directly; otherwise the first balanced {...} in the text is decoded. A
// truncated object fails rather than being guessed at.
func ParseObject(raw string) (Object, error) {
	trimmed := strings.TrimSpace(raw)

	if obj, err := decodeObject(trimmed); err == nil {
		return obj, nil
	}

	candidate, ok := firstBalancedObject(trimmed)
	if !ok {
		return Object{}, &ParseError{Reason: ReasonNoObject, Raw: raw}
	}

	obj, err := decodeObject(candidate)
	if err != nil {
		return Object{}, &ParseError{Reason: ReasonMalformed, Raw: raw, Err: err}
	}
	return obj, nil
}

// decodeObject strictly decodes s, accepting only a JSON object.
func decodeObject(s string) (Object, error) {
	data := []byte(s)
	if !bytes.HasPrefix(data, []byte("{")) {
		return Object{}, &ParseError{Reason: ReasonMalformed}
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Object{}, err
	}
	return Object{Raw: data, Fields: fields}, nil
}
