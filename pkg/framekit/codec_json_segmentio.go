//go:build json_segmentio

package framekit

import "github.com/segmentio/encoding/json"

var jsonEngine = jsonFuncs{
	name:      "segmentio",
	marshal:   json.Marshal,
	unmarshal: json.Unmarshal,
}
