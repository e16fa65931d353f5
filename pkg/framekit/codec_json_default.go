//go:build !json_goccy && !json_segmentio

package framekit

import "encoding/json"

var jsonEngine = jsonFuncs{
	name:      "stdlib",
	marshal:   json.Marshal,
	unmarshal: json.Unmarshal,
}
