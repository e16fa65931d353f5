package framing

import "fmt"

// EncodedLen is the wire size of a frame carrying n payload bytes.
func EncodedLen(p *Profile, n int) int {
	return p.Overhead() + n
}

// Encode builds a complete frame. It fails only when the profile has a
// length field too narrow for payload; payloads are never truncated.
func Encode(p *Profile, h Header, payload []byte) ([]byte, error) {
	b, err := AppendEncode(make([]byte, 0, EncodedLen(p, len(payload))), p, h, payload)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// AppendEncode appends the encoded frame to dst.
func AppendEncode(dst []byte, p *Profile, h Header, payload []byte) ([]byte, error) {
	if limit, bounded := p.MaxPayload(); bounded && len(payload) > limit {
		return dst, fmt.Errorf("%w: %d bytes, max %d", ErrPayloadTooLarge, len(payload), limit)
	}

	dst = append(dst, p.start[:p.startLen]...)
	sumFrom := len(dst)

	for _, f := range p.fields[:p.numFields] {
		switch f {
		case fieldSequence:
			dst = append(dst, h.Sequence)
		case fieldSystemID:
			dst = append(dst, h.SystemID)
		case fieldComponentID:
			dst = append(dst, h.ComponentID)
		case fieldLengthLo:
			dst = append(dst, byte(len(payload)))
		case fieldLengthHi:
			dst = append(dst, byte(len(payload)>>8))
		case fieldPackageID:
			dst = append(dst, h.PackageID)
		case fieldMsgID:
			dst = append(dst, h.MsgID)
		}
	}
	dst = append(dst, payload...)

	if p.footerSize > 0 {
		c0, c1 := Checksum(dst[sumFrom:])
		dst = append(dst, c0, c1)
	}
	return dst, nil
}
