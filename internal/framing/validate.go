package framing

// Validate checks that buf starts with one complete, intact frame. It never
// mutates buf; the returned payload aliases it.
func Validate(p *Profile, buf []byte, lookup LengthFunc) Result {
	res, _ := Parse(p, buf, lookup)
	return res
}

// Parse is Validate with the reason for rejection.
func Parse(p *Profile, buf []byte, lookup LengthFunc) (Result, error) {
	if len(buf) < p.Overhead() {
		return Result{}, ErrBufferTooShort
	}
	for i := 0; i < p.startLen; i++ {
		if buf[i] != p.start[i] {
			return Result{}, ErrInvalidStartBytes
		}
	}

	var (
		h      Header
		length int
	)
	off := p.startLen
	for _, f := range p.fields[:p.numFields] {
		b := buf[off]
		off++
		switch f {
		case fieldSequence:
			h.Sequence = b
		case fieldSystemID:
			h.SystemID = b
		case fieldComponentID:
			h.ComponentID = b
		case fieldLengthLo:
			length = int(b)
		case fieldLengthHi:
			length |= int(b) << 8
		case fieldPackageID:
			h.PackageID = b
		case fieldMsgID:
			h.MsgID = b
		}
	}

	if !p.HasLength() {
		n, ok := lookupLength(lookup, h.MsgID)
		if !ok {
			return Result{}, ErrUnknownMessageLength
		}
		length = n
	}

	total := p.Overhead() + length
	if len(buf) < total {
		return Result{}, ErrTruncated
	}
	if p.footerSize > 0 && !verifyFooter(buf[:total], p.startLen) {
		return Result{}, ErrChecksumMismatch
	}

	return Result{
		Valid:   true,
		Header:  h,
		Payload: buf[p.headerSize : p.headerSize+length : p.headerSize+length],
		Size:    total,
	}, nil
}

func lookupLength(lookup LengthFunc, msgID uint8) (int, bool) {
	if lookup == nil {
		return 0, false
	}
	n, ok := lookup(msgID)
	if !ok || n < 0 {
		return 0, false
	}
	return n, true
}
