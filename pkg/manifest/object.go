package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

var errNotObject = errors.New("not a JSON object")

// member is one key of a JSON object with its undecoded value.
type member struct {
	Key   string
	Value json.RawMessage
}

// object is a JSON object that remembers the order of its keys.
type object []member

// decodeObject parses data as a single JSON object. It fails with
// errNotObject when data is valid JSON of another kind.
func decodeObject(data []byte) (object, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		if !json.Valid(data) {
			return nil, fmt.Errorf("invalid JSON")
		}
		return nil, errNotObject
	}

	obj := object{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("object key is %T, not a string", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		obj = append(obj, member{Key: key, Value: raw})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after top-level object")
	}
	return obj, nil
}

// get returns the value of the last member named key, matching how
// encoding/json resolves duplicate keys.
func (o object) get(key string) (json.RawMessage, bool) {
	for i := len(o) - 1; i >= 0; i-- {
		if o[i].Key == key {
			return o[i].Value, true
		}
	}
	return nil, false
}

// set replaces the value of every member named key. It reports whether
// any member matched.
func (o object) set(key string, value json.RawMessage) bool {
	found := false
	for i := range o {
		if o[i].Key == key {
			o[i].Value = value
			found = true
		}
	}
	return found
}

// MarshalJSON encodes the members in order without escaping HTML
// characters in keys.
func (o object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	buf.WriteByte('{')
	for i, m := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := enc.Encode(m.Key); err != nil {
			return nil, err
		}
		buf.Truncate(buf.Len() - 1) // Encode appends a newline
		buf.WriteByte(':')
		buf.Write(m.Value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// clone returns a copy of o whose members can be replaced without
// affecting o.
func (o object) clone() object {
	return append(object(nil), o...)
}
