package framing

import (
	"errors"
	"fmt"
	"io"
)

const (
	// DefaultReadSize is the default chunk size read from the stream (4KB)
	DefaultReadSize = 4 * 1024
)

// Framer handles framing of messages over a stream
type Framer struct {
	rw       io.ReadWriter
	profile  *Profile
	reader   *Reader
	readBuf  []byte
	writeBuf []byte
}

// NewFramer creates a new framer with the default read size
func NewFramer(rw io.ReadWriter, p *Profile, lookup LengthFunc, opts ...DecoderOption) *Framer {
	return NewFramerWithReadSize(rw, p, lookup, DefaultReadSize, opts...)
}

// NewFramerWithReadSize creates a new framer reading at most readSize bytes per call
func NewFramerWithReadSize(rw io.ReadWriter, p *Profile, lookup LengthFunc, readSize int, opts ...DecoderOption) *Framer {
	if readSize <= 0 {
		readSize = DefaultReadSize
	}
	return &Framer{
		rw:      rw,
		profile: p,
		reader:  NewReader(p, lookup, opts...),
		readBuf: make([]byte, readSize),
	}
}

// Profile returns the wire profile in use
func (f *Framer) Profile() *Profile { return f.profile }

// WriteMessage writes a framed message
func (f *Framer) WriteMessage(h Header, payload []byte) (int, error) {
	buf, err := AppendEncode(f.writeBuf[:0], f.profile, h, payload)
	if err != nil {
		return 0, err
	}
	f.writeBuf = buf

	n, err := f.rw.Write(buf)
	if err != nil {
		return n, fmt.Errorf("failed to write frame: %w", err)
	}
	return n, nil
}

// WriteFrame writes a frame
func (f *Framer) WriteFrame(frame *Frame) error {
	_, err := f.WriteMessage(frame.Header, frame.Payload)
	return err
}

// ReadFrame blocks until a valid frame arrives. Corrupt frames and garbage are
// skipped. io.EOF is returned when the stream ends between frames and
// io.ErrUnexpectedEOF when it ends inside one.
func (f *Framer) ReadFrame() (Result, error) {
	for {
		if res, ok := f.reader.Next(); ok {
			return res, nil
		}

		n, err := f.rw.Read(f.readBuf)
		if n > 0 {
			f.reader.Push(f.readBuf[:n])
			continue
		}
		if err == nil {
			continue
		}
		if errors.Is(err, io.EOF) {
			if f.midFrame() {
				return Result{}, io.ErrUnexpectedEOF
			}
			return Result{}, io.EOF
		}
		return Result{}, fmt.Errorf("failed to read frame: %w", err)
	}
}

// midFrame reports whether the decoder holds bytes of an unfinished frame.
func (f *Framer) midFrame() bool {
	return f.reader.Decoder().Pending() > 0
}
