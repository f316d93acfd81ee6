// Package normalize turns the raw attribute blob of an event into a uniform
// string map. Two notations are accepted: a brace-delimited JSON object and a
// pipe-delimited KEY=VALUE|KEY=VALUE list. Anything else yields an empty map.
package normalize

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Kind tags which notation a blob was parsed from.
type Kind int

const (
	KindEmpty Kind = iota
	KindStructured
	KindKeyValue
)

func (k Kind) String() string {
	switch k {
	case KindStructured:
		return "structured"
	case KindKeyValue:
		return "key_value"
	default:
		return "empty"
	}
}

// Payload is the tagged result of parsing one blob.
type Payload struct {
	Kind   Kind
	Fields Attributes
}

// Attributes returns the parsed fields, never nil.
func (p Payload) Attributes() Attributes {
	if p.Fields == nil {
		return Attributes{}
	}
	return p.Fields
}

// Parse tries the structured notation first, then key-value. It never fails.
func Parse(blob string) Payload {
	trimmed := strings.TrimSpace(blob)
	if trimmed == "" {
		return Payload{Kind: KindEmpty}
	}
	if strings.HasPrefix(trimmed, "{") {
		if fields, ok := parseStructured(trimmed); ok {
			return Payload{Kind: KindStructured, Fields: fields}
		}
	}
	if fields, ok := parseKeyValue(trimmed); ok {
		return Payload{Kind: KindKeyValue, Fields: fields}
	}
	return Payload{Kind: KindEmpty}
}

// Normalize is Parse(blob).Attributes().
func Normalize(blob string) Attributes {
	return Parse(blob).Attributes()
}

func parseStructured(s string) (Attributes, bool) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, false
	}
	// Trailing garbage after the object means this was not a structured blob.
	if dec.More() {
		return nil, false
	}
	out := make(Attributes, len(raw))
	for k, v := range raw {
		if str, ok := stringify(v); ok {
			out[k] = str
		}
	}
	return out, true
}

func stringify(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case bool:
		return strconv.FormatBool(t), true
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return strconv.FormatInt(i, 10), true
		}
		if f, err := t.Float64(); err == nil {
			return strconv.FormatFloat(f, 'f', -1, 64), true
		}
		return t.String(), true
	default:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(t); err != nil {
			return "", false
		}
		return strings.TrimRight(buf.String(), "\n"), true
	}
}

func parseKeyValue(s string) (Attributes, bool) {
	if !strings.Contains(s, "=") {
		return nil, false
	}
	out := Attributes{}
	for _, item := range strings.Split(s, "|") {
		key, value, ok := strings.Cut(item, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		out[key] = strings.TrimSpace(value)
	}
	return out, len(out) > 0
}
