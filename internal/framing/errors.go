package framing

import "errors"

var (
	ErrInvalidProfile       = errors.New("framing: invalid profile")
	ErrPayloadTooLarge      = errors.New("framing: payload too large for length field")
	ErrBufferTooShort       = errors.New("framing: buffer shorter than frame overhead")
	ErrInvalidStartBytes    = errors.New("framing: invalid start bytes")
	ErrUnknownMessageLength = errors.New("framing: unknown message length")
	ErrTruncated            = errors.New("framing: truncated frame")
	ErrChecksumMismatch     = errors.New("framing: checksum mismatch")
)
