// Package framekit exposes the profile driven frame codec together with the
// plumbing needed to run it over sockets: configuration, logging, payload
// codecs, stream metrics, framed connections and a message router.
package framekit

import (
	"github.com/YuminosukeSato/framekit/internal/framing"
	"github.com/YuminosukeSato/framekit/internal/protocol"
)

type (
	Profile        = framing.Profile
	ProfileOptions = framing.ProfileOptions
	Header         = framing.Header
	Frame          = framing.Frame
	Result         = framing.Result
	LengthFunc     = framing.LengthFunc
	State          = framing.State
	Decoder        = framing.Decoder
	DecoderOption  = framing.DecoderOption
	Reader         = framing.Reader
)

// Canonical wire profiles.
var (
	Standard = framing.Standard
	Sensor   = framing.Sensor
	IPC      = framing.IPC
	Bulk     = framing.Bulk
	Network  = framing.Network
)

var (
	ErrInvalidProfile       = framing.ErrInvalidProfile
	ErrPayloadTooLarge      = framing.ErrPayloadTooLarge
	ErrBufferTooShort       = framing.ErrBufferTooShort
	ErrInvalidStartBytes    = framing.ErrInvalidStartBytes
	ErrUnknownMessageLength = framing.ErrUnknownMessageLength
	ErrTruncated            = framing.ErrTruncated
	ErrChecksumMismatch     = framing.ErrChecksumMismatch
)

// NewProfile builds a custom wire profile.
func NewProfile(name string, opts ProfileOptions) (*Profile, error) {
	return framing.NewProfile(name, opts)
}

// Profiles lists the canonical profiles.
func Profiles() []*Profile { return framing.Profiles() }

// LookupProfile finds a canonical profile by name.
func LookupProfile(name string) (*Profile, bool) { return framing.LookupProfile(name) }

// Encode builds one frame.
func Encode(p *Profile, h Header, payload []byte) ([]byte, error) {
	return framing.Encode(p, h, payload)
}

// Validate checks and extracts the frame at the start of buf.
func Validate(p *Profile, buf []byte, lookup LengthFunc) Result {
	return framing.Validate(p, buf, lookup)
}

// Parse is Validate with the rejection reason.
func Parse(p *Profile, buf []byte, lookup LengthFunc) (Result, error) {
	return framing.Parse(p, buf, lookup)
}

// NewDecoder returns a byte-at-a-time stream decoder.
func NewDecoder(p *Profile, lookup LengthFunc, opts ...DecoderOption) *Decoder {
	return framing.NewDecoder(p, lookup, opts...)
}

// NewReader returns a chunk accumulating stream reader.
func NewReader(p *Profile, lookup LengthFunc, opts ...DecoderOption) *Reader {
	return framing.NewReader(p, lookup, opts...)
}

// WithRejectHandler reports bytes the decoder discards, and why.
func WithRejectHandler(fn func(reason error, dropped int)) DecoderOption {
	return framing.WithRejectHandler(fn)
}

type (
	Registry    = protocol.Registry
	MessageSpec = protocol.MessageSpec
)

// NewRegistry builds a message registry for lengthless profiles.
func NewRegistry(specs ...MessageSpec) (*Registry, error) {
	return protocol.NewRegistry(specs...)
}
