package framing

// State is the position of a Decoder inside the current frame.
type State uint8

const (
	StateLookingForStart1 State = iota
	StateLookingForStart2
	StateParsingHeader
	StateParsingPayload
	StateParsingFooter
)

func (s State) String() string {
	switch s {
	case StateLookingForStart1:
		return "looking-for-start1"
	case StateLookingForStart2:
		return "looking-for-start2"
	case StateParsingHeader:
		return "parsing-header"
	case StateParsingPayload:
		return "parsing-payload"
	case StateParsingFooter:
		return "parsing-footer"
	default:
		return "unknown"
	}
}

// RejectFunc is told about every run of bytes the decoder throws away, with
// the reason. It runs synchronously inside DecodeByte.
type RejectFunc func(reason error, dropped int)

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// WithRejectHandler installs fn as the decoder's reject hook.
func WithRejectHandler(fn RejectFunc) DecoderOption {
	return func(d *Decoder) {
		d.onReject = fn
	}
}

// Decoder recovers frames from a byte stream one byte at a time. It
// resynchronizes on its own after garbage, truncation or corruption. A
// Decoder must not be used from more than one goroutine at a time.
type Decoder struct {
	profile  *Profile
	lookup   LengthFunc
	onReject RejectFunc

	state            State
	buf              []byte
	cursor           int
	header           Header
	length           int
	payloadRemaining int
	footerRemaining  int
}

// NewDecoder returns a decoder for profile p. lookup may be nil when p has a
// length field.
func NewDecoder(p *Profile, lookup LengthFunc, opts ...DecoderOption) *Decoder {
	d := &Decoder{
		profile: p,
		lookup:  lookup,
		buf:     make([]byte, 0, p.Overhead()+64),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.Reset()
	return d
}

// Profile returns the profile the decoder was built for.
func (d *Decoder) Profile() *Profile { return d.profile }

func (d *Decoder) State() State { return d.state }

// Pending is the number of bytes held for the frame in progress.
func (d *Decoder) Pending() int { return len(d.buf) }

// Reset drops any partial frame. Profiles without start bytes begin directly
// in StateParsingHeader.
func (d *Decoder) Reset() {
	d.buf = d.buf[:0]
	d.cursor = 0
	d.header = Header{}
	d.length = 0
	d.payloadRemaining = 0
	d.footerRemaining = 0
	if d.profile.startLen == 0 {
		d.state = StateParsingHeader
	} else {
		d.state = StateLookingForStart1
	}
}

// Decode feeds p through DecodeByte and returns every valid frame it yields.
func (d *Decoder) Decode(p []byte) []Result {
	var out []Result
	for _, b := range p {
		if res := d.DecodeByte(b); res.Valid {
			out = append(out, res)
		}
	}
	return out
}

// DecodeByte consumes exactly one byte. The result is valid only for the
// byte that completes an intact frame; bytes that are merely accumulated and
// bytes that complete a corrupt frame both yield an invalid result.
func (d *Decoder) DecodeByte(b byte) Result {
	p := d.profile

	switch d.state {
	case StateLookingForStart1:
		if b != p.start[0] {
			d.reject(ErrInvalidStartBytes, 1)
			return Result{}
		}
		d.buf = append(d.buf[:0], b)
		if p.startLen == 2 {
			d.state = StateLookingForStart2
		} else {
			d.beginHeader()
		}

	case StateLookingForStart2:
		switch {
		case b == p.start[1]:
			d.buf = append(d.buf, b)
			d.beginHeader()
		case b == p.start[0]:
			d.reject(ErrInvalidStartBytes, len(d.buf))
			d.buf = append(d.buf[:0], b)
		default:
			d.reject(ErrInvalidStartBytes, len(d.buf)+1)
			d.Reset()
		}

	case StateParsingHeader:
		d.buf = append(d.buf, b)
		return d.headerByte(b)

	case StateParsingPayload:
		d.buf = append(d.buf, b)
		d.payloadRemaining--
		if d.payloadRemaining == 0 {
			if d.footerRemaining > 0 {
				d.state = StateParsingFooter
			} else {
				return d.complete()
			}
		}

	case StateParsingFooter:
		d.buf = append(d.buf, b)
		d.footerRemaining--
		if d.footerRemaining == 0 {
			return d.complete()
		}
	}
	return Result{}
}

func (d *Decoder) beginHeader() {
	d.state = StateParsingHeader
	d.cursor = 0
}

func (d *Decoder) headerByte(b byte) Result {
	p := d.profile

	switch p.fields[d.cursor] {
	case fieldSequence:
		d.header.Sequence = b
	case fieldSystemID:
		d.header.SystemID = b
	case fieldComponentID:
		d.header.ComponentID = b
	case fieldLengthLo:
		d.length = int(b)
	case fieldLengthHi:
		d.length |= int(b) << 8
	case fieldPackageID:
		d.header.PackageID = b
	case fieldMsgID:
		d.header.MsgID = b
	}
	d.cursor++
	if d.cursor < p.numFields {
		return Result{}
	}

	if !p.HasLength() {
		n, ok := lookupLength(d.lookup, d.header.MsgID)
		if !ok {
			d.reject(ErrUnknownMessageLength, len(d.buf))
			d.Reset()
			return Result{}
		}
		d.length = n
	}
	d.payloadRemaining = d.length
	d.footerRemaining = p.footerSize

	switch {
	case d.payloadRemaining > 0:
		d.state = StateParsingPayload
	case d.footerRemaining > 0:
		d.state = StateParsingFooter
	default:
		return d.complete()
	}
	return Result{}
}

func (d *Decoder) complete() Result {
	p := d.profile
	if p.footerSize > 0 && !verifyFooter(d.buf, p.startLen) {
		d.reject(ErrChecksumMismatch, len(d.buf))
		d.Reset()
		return Result{}
	}

	payload := make([]byte, d.length)
	copy(payload, d.buf[p.headerSize:p.headerSize+d.length])
	res := Result{
		Valid:   true,
		Header:  d.header,
		Payload: payload,
		Size:    len(d.buf),
	}
	d.Reset()
	return res
}

func (d *Decoder) reject(reason error, dropped int) {
	if d.onReject != nil && dropped > 0 {
		d.onReject(reason, dropped)
	}
}
