package framing

import "hash"

// ChecksumSize is the number of footer bytes a checksummed profile appends.
const ChecksumSize = 2

// Fletcher16 is the two-accumulator running checksum carried in frame footers.
// Both accumulators wrap modulo 256. It implements hash.Hash; Sum appends c0
// then c1, which is the on-wire footer order.
type Fletcher16 struct {
	c0, c1 byte
}

var _ hash.Hash = (*Fletcher16)(nil)

// NewFletcher16 returns a zeroed checksum.
func NewFletcher16() *Fletcher16 {
	return &Fletcher16{}
}

// Write folds p into the running sums. It never fails.
func (f *Fletcher16) Write(p []byte) (int, error) {
	c0, c1 := f.c0, f.c1
	for _, b := range p {
		c0 += b
		c1 += c0
	}
	f.c0, f.c1 = c0, c1
	return len(p), nil
}

// WriteByte folds a single byte into the running sums.
func (f *Fletcher16) WriteByte(b byte) error {
	f.c0 += b
	f.c1 += f.c0
	return nil
}

// Sum appends the footer bytes to b.
func (f *Fletcher16) Sum(b []byte) []byte {
	return append(b, f.c0, f.c1)
}

// Sum16 returns both accumulators.
func (f *Fletcher16) Sum16() (c0, c1 byte) {
	return f.c0, f.c1
}

func (f *Fletcher16) Reset() { f.c0, f.c1 = 0, 0 }
func (f *Fletcher16) Size() int { return ChecksumSize }
func (f *Fletcher16) BlockSize() int { return 1 }

// Checksum computes the footer pair over p.
func Checksum(p []byte) (c0, c1 byte) {
	var f Fletcher16
	_, _ = f.Write(p)
	return f.Sum16()
}

// verifyFooter checks the footer of frame, a complete frame whose checksummed
// range starts at offset start.
func verifyFooter(frame []byte, start int) bool {
	n := len(frame)
	c0, c1 := Checksum(frame[start : n-ChecksumSize])
	return frame[n-2] == c0 && frame[n-1] == c1
}
