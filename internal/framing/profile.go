package framing

import (
	"fmt"
	"strings"
)

// field tags one header byte. The order a profile lays them out in is fixed:
// sequence, system id, component id, length (low byte first), package id, msg id.
type field uint8

const (
	fieldSequence field = iota
	fieldSystemID
	fieldComponentID
	fieldLengthLo
	fieldLengthHi
	fieldPackageID
	fieldMsgID
)

const maxHeaderFields = 7

// ProfileOptions selects the optional parts of a wire format.
type ProfileOptions struct {
	// StartBytes holds 0, 1 or 2 literal bytes that open every frame.
	StartBytes []byte
	// LengthWidth is 0 (payload length comes from a LengthFunc), 1 or 2.
	LengthWidth    int
	HasPackageID   bool
	HasSequence    bool
	HasSystemID    bool
	HasComponentID bool
	// HasChecksum appends a two byte Fletcher16 footer.
	HasChecksum bool
}

// Profile is an immutable description of one concrete wire format. A single
// Profile may be shared by any number of encoders and decoders.
type Profile struct {
	name       string
	start      [2]byte
	startLen   int
	opts       ProfileOptions
	headerSize int
	footerSize int
	fields     [maxHeaderFields]field
	numFields  int
}

// NewProfile validates opts and precomputes the header layout.
func NewProfile(name string, opts ProfileOptions) (*Profile, error) {
	if len(opts.StartBytes) > 2 {
		return nil, fmt.Errorf("%w: %d start bytes, at most 2 allowed", ErrInvalidProfile, len(opts.StartBytes))
	}
	if opts.LengthWidth < 0 || opts.LengthWidth > 2 {
		return nil, fmt.Errorf("%w: length width %d, want 0, 1 or 2", ErrInvalidProfile, opts.LengthWidth)
	}

	p := &Profile{name: name, startLen: len(opts.StartBytes)}
	copy(p.start[:], opts.StartBytes)
	p.opts = opts
	p.opts.StartBytes = append([]byte(nil), opts.StartBytes...)

	add := func(f field) {
		p.fields[p.numFields] = f
		p.numFields++
	}
	if opts.HasSequence {
		add(fieldSequence)
	}
	if opts.HasSystemID {
		add(fieldSystemID)
	}
	if opts.HasComponentID {
		add(fieldComponentID)
	}
	if opts.LengthWidth >= 1 {
		add(fieldLengthLo)
	}
	if opts.LengthWidth == 2 {
		add(fieldLengthHi)
	}
	if opts.HasPackageID {
		add(fieldPackageID)
	}
	add(fieldMsgID)

	p.headerSize = p.startLen + p.numFields
	if opts.HasChecksum {
		p.footerSize = ChecksumSize
	}
	return p, nil
}

// MustProfile is like NewProfile but panics on invalid options. It is meant
// for package level profile definitions.
func MustProfile(name string, opts ProfileOptions) *Profile {
	p, err := NewProfile(name, opts)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Profile) Name() string { return p.name }

// StartBytes returns a copy of the literal frame opener.
func (p *Profile) StartBytes() []byte {
	return append([]byte(nil), p.start[:p.startLen]...)
}

// HeaderSize counts bytes from frame start through the msg id byte.
func (p *Profile) HeaderSize() int { return p.headerSize }
func (p *Profile) FooterSize() int { return p.footerSize }
func (p *Profile) HasLength() bool { return p.opts.LengthWidth > 0 }
func (p *Profile) LengthWidth() int { return p.opts.LengthWidth }
func (p *Profile) HasPackageID() bool { return p.opts.HasPackageID }
func (p *Profile) HasSequence() bool { return p.opts.HasSequence }
func (p *Profile) HasSystemID() bool { return p.opts.HasSystemID }
func (p *Profile) HasComponentID() bool { return p.opts.HasComponentID }
func (p *Profile) HasChecksum() bool { return p.footerSize > 0 }

// Overhead is the frame size of an empty payload.
func (p *Profile) Overhead() int { return p.headerSize + p.footerSize }

// MaxPayload reports the largest payload the length field can describe.
// Lengthless profiles are unbounded here; their limit is whatever the
// message schema says.
func (p *Profile) MaxPayload() (n int, bounded bool) {
	switch p.opts.LengthWidth {
	case 1:
		return 0xFF, true
	case 2:
		return 0xFFFF, true
	default:
		return 0, false
	}
}

// Options returns a copy of the options the profile was built from.
func (p *Profile) Options() ProfileOptions {
	o := p.opts
	o.StartBytes = p.StartBytes()
	return o
}

func (p *Profile) String() string {
	return fmt.Sprintf("%s(start=% x header=%d footer=%d)", p.name, p.start[:p.startLen], p.headerSize, p.footerSize)
}

// Canonical profiles.
var (
	Standard = MustProfile("standard", ProfileOptions{
		StartBytes:  []byte{0x90, 0x71},
		LengthWidth: 1,
		HasChecksum: true,
	})
	Sensor = MustProfile("sensor", ProfileOptions{
		StartBytes: []byte{0x70},
	})
	IPC = MustProfile("ipc", ProfileOptions{})
	Bulk = MustProfile("bulk", ProfileOptions{
		StartBytes:   []byte{0x90, 0x74},
		LengthWidth:  2,
		HasPackageID: true,
		HasChecksum:  true,
	})
	Network = MustProfile("network", ProfileOptions{
		StartBytes:     []byte{0x90, 0x78},
		LengthWidth:    2,
		HasPackageID:   true,
		HasSequence:    true,
		HasSystemID:    true,
		HasComponentID: true,
		HasChecksum:    true,
	})
)

var canonical = []*Profile{Standard, Sensor, IPC, Bulk, Network}

// Profiles lists the canonical profiles.
func Profiles() []*Profile {
	return append([]*Profile(nil), canonical...)
}

// LookupProfile finds a canonical profile by case-insensitive name.
func LookupProfile(name string) (*Profile, bool) {
	for _, p := range canonical {
		if strings.EqualFold(p.name, strings.TrimSpace(name)) {
			return p, true
		}
	}
	return nil, false
}
