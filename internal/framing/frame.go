// Package framing implements a profile driven binary frame codec: a message id
// and opaque payload are wrapped in optional start bytes, a small header and an
// optional Fletcher16 footer, and recovered again from whole buffers or from a
// fragmented, possibly corrupted byte stream.
package framing

import "fmt"

// Header holds the raw header fields of a frame. Fields the profile does not
// carry are ignored on encode and left zero on decode.
type Header struct {
	Sequence    uint8
	SystemID    uint8
	ComponentID uint8
	PackageID   uint8
	MsgID       uint8
}

// ID combines package id and msg id as (package_id << 8) | msg_id. The codec
// never applies this itself; it is one convention callers may use.
func (h Header) ID() uint16 {
	return uint16(h.PackageID)<<8 | uint16(h.MsgID)
}

// LengthFunc reports the fixed payload length of a message id for profiles
// without a length field. ok is false for ids the schema does not know.
type LengthFunc func(msgID uint8) (n int, ok bool)

// Frame is one message to be encoded or one that was decoded.
type Frame struct {
	Header  Header
	Payload []byte
}

// NewFrame creates a frame for msgID with no multiplexing fields set.
func NewFrame(msgID uint8, payload []byte) *Frame {
	return &Frame{
		Header:  Header{MsgID: msgID},
		Payload: payload,
	}
}

// Marshal encodes the frame with profile p.
func (f *Frame) Marshal(p *Profile) ([]byte, error) {
	return Encode(p, f.Header, f.Payload)
}

// UnmarshalFrame decodes the frame at the start of data. Trailing bytes past
// the end of the frame are ignored.
func UnmarshalFrame(p *Profile, data []byte, lookup LengthFunc) (*Frame, error) {
	res, err := Parse(p, data, lookup)
	if err != nil {
		return nil, err
	}
	return &Frame{Header: res.Header, Payload: res.Payload}, nil
}

// Result is the outcome of a decode step. When Valid is false no other field
// carries meaning.
type Result struct {
	Valid   bool
	Header  Header
	Payload []byte
	// Size is the number of wire bytes the frame occupied.
	Size int
}

func (r Result) MsgID() uint8    { return r.Header.MsgID }
func (r Result) PayloadLen() int { return len(r.Payload) }

// Frame converts a valid result into a Frame.
func (r Result) Frame() *Frame {
	return &Frame{Header: r.Header, Payload: r.Payload}
}

func (r Result) String() string {
	if !r.Valid {
		return "invalid"
	}
	return fmt.Sprintf("msg=%d pkg=%d seq=%d len=%d", r.Header.MsgID, r.Header.PackageID, r.Header.Sequence, len(r.Payload))
}
