package framing

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncode(t *testing.T) {
	t.Run("standard scenario", func(t *testing.T) {
		got := mustEncode(t, Standard, Header{MsgID: 1}, []byte{0xAA, 0xBB})
		want := []byte{0x90, 0x71, 0x02, 0x01, 0xAA, 0xBB, 0x68, 0x1A}
		if !bytes.Equal(got, want) {
			t.Errorf("Encode = % x, want % x", got, want)
		}
	})

	t.Run("ipc scenario", func(t *testing.T) {
		got := mustEncode(t, IPC, Header{MsgID: 7}, []byte{1, 2, 3})
		if want := []byte{7, 1, 2, 3}; !bytes.Equal(got, want) {
			t.Errorf("Encode = % x, want % x", got, want)
		}
	})

	t.Run("sensor has start byte and no footer", func(t *testing.T) {
		got := mustEncode(t, Sensor, Header{MsgID: 3}, []byte{9})
		if want := []byte{0x70, 3, 9}; !bytes.Equal(got, want) {
			t.Errorf("Encode = % x, want % x", got, want)
		}
	})

	t.Run("bulk writes little endian length then package id", func(t *testing.T) {
		payload := bytes.Repeat([]byte{0x11}, 0x0102)
		got := mustEncode(t, Bulk, Header{PackageID: 4, MsgID: 5}, payload)
		if want := []byte{0x90, 0x74, 0x02, 0x01, 4, 5}; !bytes.Equal(got[:6], want) {
			t.Errorf("header = % x, want % x", got[:6], want)
		}
		if len(got) != EncodedLen(Bulk, len(payload)) {
			t.Errorf("length = %d, want %d", len(got), EncodedLen(Bulk, len(payload)))
		}
	})

	t.Run("network field order", func(t *testing.T) {
		h := Header{Sequence: 0x51, SystemID: 0x52, ComponentID: 0x53, PackageID: 0x54, MsgID: 0x55}
		got := mustEncode(t, Network, h, []byte{0xEE})
		want := []byte{0x90, 0x78, 0x51, 0x52, 0x53, 0x01, 0x00, 0x54, 0x55, 0xEE}
		if !bytes.Equal(got[:len(want)], want) {
			t.Errorf("frame = % x, want prefix % x", got, want)
		}
		c0, c1 := Checksum(got[2 : len(got)-2])
		if got[len(got)-2] != c0 || got[len(got)-1] != c1 {
			t.Errorf("footer = % x, want %02x %02x", got[len(got)-2:], c0, c1)
		}
	})

	t.Run("fields the profile lacks are not written", func(t *testing.T) {
		h := Header{Sequence: 1, SystemID: 2, ComponentID: 3, PackageID: 4, MsgID: 5}
		got := mustEncode(t, IPC, h, nil)
		if want := []byte{5}; !bytes.Equal(got, want) {
			t.Errorf("Encode = % x, want % x", got, want)
		}
	})

	t.Run("custom subset keeps fixed order", func(t *testing.T) {
		p := MustProfile("custom", ProfileOptions{
			StartBytes:     []byte{0xC0},
			HasComponentID: true,
			HasSequence:    true,
			HasPackageID:   true,
			LengthWidth:    1,
		})
		got := mustEncode(t, p, Header{Sequence: 0xA1, ComponentID: 0xA3, PackageID: 0xA4, MsgID: 0xA5}, []byte{0xFF})
		want := []byte{0xC0, 0xA1, 0xA3, 0x01, 0xA4, 0xA5, 0xFF}
		if !bytes.Equal(got, want) {
			t.Errorf("Encode = % x, want % x", got, want)
		}
	})
}

func TestEncodePayloadTooLarge(t *testing.T) {
	tests := []struct {
		profile *Profile
		size    int
		wantErr bool
	}{
		{Standard, 255, false},
		{Standard, 256, true},
		{Bulk, 65535, false},
		{Network, 65536, true},
		{IPC, 70000, false},
	}

	for _, tt := range tests {
		b, err := Encode(tt.profile, Header{MsgID: 1}, make([]byte, tt.size))
		if (err != nil) != tt.wantErr {
			t.Errorf("%s/%d: error = %v, wantErr %v", tt.profile.Name(), tt.size, err, tt.wantErr)
			continue
		}
		if tt.wantErr {
			if !errors.Is(err, ErrPayloadTooLarge) {
				t.Errorf("%s/%d: error = %v, want ErrPayloadTooLarge", tt.profile.Name(), tt.size, err)
			}
			if b != nil {
				t.Errorf("%s/%d: failed encode returned %d bytes", tt.profile.Name(), tt.size, len(b))
			}
		}
	}
}

func TestAppendEncodeAppends(t *testing.T) {
	prefix := []byte("prev")
	out, err := AppendEncode(prefix, Standard, Header{MsgID: 2}, []byte{1})
	if err != nil {
		t.Fatalf("AppendEncode failed: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("prev")) {
		t.Errorf("prefix lost: % x", out)
	}
	if res := Validate(Standard, out[4:], nil); !res.Valid || res.MsgID() != 2 {
		t.Errorf("appended frame did not validate: %v", res)
	}
}

func TestFrameMarshal(t *testing.T) {
	f := NewFrame(9, []byte("hello"))
	f.Header.PackageID = 2

	data, err := f.Marshal(Bulk)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	decoded, err := UnmarshalFrame(Bulk, data, nil)
	if err != nil {
		t.Fatalf("UnmarshalFrame failed: %v", err)
	}
	if decoded.Header != f.Header {
		t.Errorf("header mismatch: got %+v, want %+v", decoded.Header, f.Header)
	}
	if !bytes.Equal(decoded.Payload, f.Payload) {
		t.Errorf("payload mismatch: got %q, want %q", decoded.Payload, f.Payload)
	}
	if decoded.Header.ID() != 0x0209 {
		t.Errorf("ID() = %#04x, want 0x0209", decoded.Header.ID())
	}
}
