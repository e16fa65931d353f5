package framing

import (
	"math/rand"
)

func fixedLengths(m map[uint8]int) LengthFunc {
	return func(id uint8) (int, bool) {
		n, ok := m[id]
		return n, ok
	}
}

// garbage returns n pseudo random bytes that never contain the first start
// byte of p, so they cannot open a frame by accident.
func garbage(p *Profile, n int, seed int64) []byte {
	rng := rand.New(rand.NewSource(seed))
	out := make([]byte, 0, n)
	for len(out) < n {
		b := byte(rng.Intn(256))
		if p.startLen > 0 && b == p.start[0] {
			continue
		}
		out = append(out, b)
	}
	return out
}

func mustEncode(t interface {
	Helper()
	Fatalf(string, ...any)
}, p *Profile, h Header, payload []byte) []byte {
	t.Helper()
	b, err := Encode(p, h, payload)
	if err != nil {
		t.Fatalf("Encode(%s) failed: %v", p.Name(), err)
	}
	return b
}
