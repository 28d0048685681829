package codec

import (
	"bytes"
	"encoding/json"
	"io"
)

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// DecodeObject splits a JSON object into its keys, in document order, and
// their raw values. Anything but an object, or a repeated key, fails with
// model.ErrSchemaMismatch.
func DecodeObject(raw json.RawMessage) ([]string, map[string]json.RawMessage, error) {
	return orderedObject(raw)
}

// orderedObject decodes a JSON object while keeping its key order, which the
// standard map decoding discards. Duplicate keys are rejected.
func orderedObject(raw json.RawMessage) ([]string, map[string]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, mismatch("expected an object: %v", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, mismatch("expected an object, got %s", tokenName(tok))
	}

	var (
		keys   []string
		values = make(map[string]json.RawMessage)
	)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, mismatch("read object key: %v", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, mismatch("expected an object key, got %s", tokenName(tok))
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, nil, mismatch("read value of %q: %v", key, err)
		}
		if _, exists := values[key]; exists {
			return nil, nil, mismatch("duplicate key %q", key)
		}
		keys = append(keys, key)
		values[key] = value
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, mismatch("unterminated object: %v", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, nil, mismatch("trailing data after object")
	}
	return keys, values, nil
}

func tokenName(tok json.Token) string {
	switch v := tok.(type) {
	case json.Delim:
		if v == '[' {
			return "an array"
		}
		return string(v)
	case string:
		return "a string"
	case bool:
		return "a boolean"
	case float64, json.Number:
		return "a number"
	case nil:
		return "null"
	default:
		return "an unexpected token"
	}
}

func decodeString(raw json.RawMessage) (string, error) {
	if isNull(raw) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", mismatch("expected a string")
	}
	return s, nil
}

// encodeObject writes ordered key/value pairs as a compact JSON object.
func encodeObject(keys []string, value func(key string) any) (json.RawMessage, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for idx, key := range keys {
		if idx > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(value(key))
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
