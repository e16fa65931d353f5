package framing

import (
	"bytes"
	"errors"
	"io"
	"net"
	"testing"
	"testing/iotest"
	"time"
)

type readWriter struct {
	io.Reader
	io.Writer
}

func TestFramer_WriteMessage(t *testing.T) {
	var buf bytes.Buffer
	framer := NewFramer(&buf, Standard, nil)

	n, err := framer.WriteMessage(Header{MsgID: 1}, []byte{0xAA, 0xBB})
	if err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}
	want := []byte{0x90, 0x71, 0x02, 0x01, 0xAA, 0xBB, 0x68, 0x1A}
	if n != len(want) || !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("wrote %d bytes % x, want % x", n, buf.Bytes(), want)
	}

	if _, err := framer.WriteMessage(Header{}, make([]byte, 300)); !errors.Is(err, ErrPayloadTooLarge) {
		t.Errorf("oversized payload error = %v, want ErrPayloadTooLarge", err)
	}
	if buf.Len() != len(want) {
		t.Errorf("failed write must not emit bytes, buffer has %d", buf.Len())
	}
}

func TestFramer_ReadFrame(t *testing.T) {
	tests := []struct {
		name string
		wrap func(io.Reader) io.Reader
	}{
		{"whole buffer", func(r io.Reader) io.Reader { return r }},
		{"one byte reads", iotest.OneByteReader},
		{"half reads", iotest.HalfReader},
		{"data with eof", iotest.DataErrReader},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var wire bytes.Buffer
			w := NewFramer(&wire, Network, nil)
			for i := 0; i < 3; i++ {
				f := &Frame{Header: Header{Sequence: uint8(i), MsgID: 10}, Payload: bytes.Repeat([]byte{byte(i)}, i*100)}
				if err := w.WriteFrame(f); err != nil {
					t.Fatalf("WriteFrame() error = %v", err)
				}
			}
			wire.Write([]byte{0x01, 0x02})

			r := NewFramerWithReadSize(readWriter{Reader: tt.wrap(&wire), Writer: io.Discard}, Network, nil, 16)
			for i := 0; i < 3; i++ {
				res, err := r.ReadFrame()
				if err != nil {
					t.Fatalf("ReadFrame() %d error = %v", i, err)
				}
				if res.Header.Sequence != uint8(i) || len(res.Payload) != i*100 {
					t.Errorf("frame %d = %v", i, res)
				}
			}
			if _, err := r.ReadFrame(); !errors.Is(err, io.EOF) {
				t.Errorf("trailing garbage then EOF: error = %v, want io.EOF", err)
			}
		})
	}
}

func TestFramer_ReadFrameUnexpectedEOF(t *testing.T) {
	data := mustEncode(t, Bulk, Header{MsgID: 1}, []byte("cut short"))
	r := NewFramer(readWriter{Reader: bytes.NewReader(data[:8]), Writer: io.Discard}, Bulk, nil)

	if _, err := r.ReadFrame(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("error = %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestFramer_ReadError(t *testing.T) {
	boom := errors.New("boom")
	r := NewFramer(readWriter{Reader: iotest.ErrReader(boom), Writer: io.Discard}, Standard, nil)

	if _, err := r.ReadFrame(); !errors.Is(err, boom) {
		t.Errorf("error = %v, want wrapped boom", err)
	}
}

func TestFramer_OverPipe(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	lookup := fixedLengths(map[uint8]int{1: 4, 2: 0})
	sender := NewFramer(client, Sensor, lookup)
	receiver := NewFramer(server, Sensor, lookup)

	done := make(chan error, 1)
	go func() {
		if _, err := sender.WriteMessage(Header{MsgID: 1}, []byte("ping")); err != nil {
			done <- err
			return
		}
		_, err := sender.WriteMessage(Header{MsgID: 2}, nil)
		done <- err
	}()

	_ = server.SetReadDeadline(time.Now().Add(2 * time.Second))
	first, err := receiver.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	second, err := receiver.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	if string(first.Payload) != "ping" || second.MsgID() != 2 {
		t.Errorf("got %v and %v", first, second)
	}
	if err := <-done; err != nil {
		t.Errorf("sender error = %v", err)
	}
}
