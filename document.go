package replay

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
)

// document is a JSON object kept as raw field values in stored key order.
type document struct {
	keys   []string
	fields map[string]json.RawMessage
}

func newDocument() *document {
	return &document{fields: make(map[string]json.RawMessage)}
}

// parseDocument reads a single JSON object. A repeated key keeps its first
// position and its last value.
func parseDocument(data []byte) (*document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if tok != json.Delim('{') {
		return nil, errors.New("not a JSON object")
	}

	d := newDocument()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, errors.New("malformed object key")
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		d.set(key, raw)
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after object")
	}
	return d, nil
}

func (d *document) set(key string, raw json.RawMessage) {
	if _, ok := d.fields[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.fields[key] = raw
}

// has reports whether key holds a non-null value.
func (d *document) has(key string) bool {
	raw, ok := d.fields[key]
	return ok && !bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// decode unmarshals key into v and reports whether it held a value of v's type.
func (d *document) decode(key string, v any) bool {
	if !d.has(key) {
		return false
	}
	return json.Unmarshal(d.fields[key], v) == nil
}

// MarshalJSON writes the fields in key order. Values are written as
// stored; json.Marshal compacts and HTML-escapes the result.
func (d *document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range d.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(d.fields[key])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
