package framekit

import "fmt"

// JSONCodec encodes payloads as JSON. The engine is chosen at build time:
// encoding/json by default, goccy/go-json with the json_goccy tag and
// segmentio/encoding with json_segmentio.
type JSONCodec struct{}

func (c *JSONCodec) Marshal(v interface{}) ([]byte, error) {
	b, err := jsonEngine.marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.Name(), err)
	}
	return b, nil
}

func (c *JSONCodec) Unmarshal(data []byte, v interface{}) error {
	if err := jsonEngine.unmarshal(data, v); err != nil {
		return fmt.Errorf("%s: %w", c.Name(), err)
	}
	return nil
}

// Name reports the engine, e.g. "json-goccy"
func (c *JSONCodec) Name() string { return "json-" + jsonEngine.name }

type jsonFuncs struct {
	name      string
	marshal   func(v interface{}) ([]byte, error)
	unmarshal func(data []byte, v interface{}) error
}
