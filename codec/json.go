package codec

import (
	"bytes"
	"encoding/json"
)

// JSON encodes with encoding/json. Indent, when set, pretty-prints.
// Decode uses json.Number so integers wider than 53 bits survive.
type JSON[V any] struct {
	Indent string
}

func (c JSON[V]) Encode(v V) ([]byte, error) {
	if c.Indent != "" {
		return json.MarshalIndent(v, "", c.Indent)
	}
	return json.Marshal(v)
}

func (JSON[V]) Decode(b []byte) (V, error) {
	var v V
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	err := dec.Decode(&v)
	return v, err
}
