//go:build json_goccy

package framekit

import "github.com/goccy/go-json"

// Payloads never end up inside HTML, so escaping is skipped.
var jsonEngine = jsonFuncs{
	name:      "goccy",
	marshal:   func(v interface{}) ([]byte, error) { return json.MarshalNoEscape(v) },
	unmarshal: func(data []byte, v interface{}) error { return json.UnmarshalNoEscape(data, v) },
}
