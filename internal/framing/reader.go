package framing

// Reader buffers arbitrarily sized chunks and drains whole frames from them.
// Like Decoder it is not safe for concurrent use.
type Reader struct {
	dec   *Decoder
	queue []byte
	off   int
}

// NewReader wraps a fresh Decoder for p.
func NewReader(p *Profile, lookup LengthFunc, opts ...DecoderOption) *Reader {
	return &Reader{dec: NewDecoder(p, lookup, opts...)}
}

// Decoder exposes the underlying state machine.
func (r *Reader) Decoder() *Decoder { return r.dec }

// Push queues b for decoding. b is copied.
func (r *Reader) Push(b []byte) {
	if r.off > 0 && r.off == len(r.queue) {
		r.queue = r.queue[:0]
		r.off = 0
	} else if r.off > 0 && r.off >= cap(r.queue)/2 {
		n := copy(r.queue, r.queue[r.off:])
		r.queue = r.queue[:n]
		r.off = 0
	}
	r.queue = append(r.queue, b...)
}

// Write is Push in io.Writer form; it never fails.
func (r *Reader) Write(b []byte) (int, error) {
	r.Push(b)
	return len(b), nil
}

// Next feeds queued bytes to the decoder until a frame completes. ok is false
// once the queue runs dry; decoder state carries over to the next Push.
func (r *Reader) Next() (res Result, ok bool) {
	for r.off < len(r.queue) {
		b := r.queue[r.off]
		r.off++
		if res = r.dec.DecodeByte(b); res.Valid {
			return res, true
		}
	}
	r.queue = r.queue[:0]
	r.off = 0
	return Result{}, false
}

// Buffered is the number of queued bytes not yet fed to the decoder.
func (r *Reader) Buffered() int { return len(r.queue) - r.off }

// Reset discards queued bytes and any partial frame.
func (r *Reader) Reset() {
	r.queue = r.queue[:0]
	r.off = 0
	r.dec.Reset()
}
