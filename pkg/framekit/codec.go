package framekit

import (
	"fmt"
	"strings"
)

// Codec turns application values into frame payloads and back. Frames carry
// raw bytes; a codec is only involved through Conn.SendValue and Conn.Decode.
type Codec interface {
	Marshal(v interface{}) ([]byte, error)
	Unmarshal(data []byte, v interface{}) error
	Name() string
}

// CodecType names a payload codec in configuration
type CodecType string

const (
	CodecJSON        CodecType = "json"
	CodecMessagePack CodecType = "msgpack"
)

// ParseCodecType normalizes a configured codec name. An empty name selects
// JSON.
func ParseCodecType(s string) (CodecType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return CodecJSON, nil
	case "msgpack", "messagepack":
		return CodecMessagePack, nil
	default:
		return "", fmt.Errorf("unknown codec type: %s", s)
	}
}

// NewCodec creates the codec registered under codecType
func NewCodec(codecType CodecType) (Codec, error) {
	t, err := ParseCodecType(string(codecType))
	if err != nil {
		return nil, err
	}
	if t == CodecMessagePack {
		return &MessagePackCodec{}, nil
	}
	return &JSONCodec{}, nil
}
