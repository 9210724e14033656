package id

import (
	"crypto/rand"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// Generator hands out unique message identifiers.
type Generator interface {
	Next() string
}

// GeneratorFunc adapts a plain function to Generator.
type GeneratorFunc func() string

// Next calls f.
func (f GeneratorFunc) Next() string { return f() }

// Sequence is a monotonic counter rendered as "<prefix><n>".
type Sequence struct {
	prefix string
	n      atomic.Int64
}

// NewSequence returns a Sequence starting at 1.
func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: prefix}
}

// Next returns the next identifier in the sequence.
func (s *Sequence) Next() string {
	return s.prefix + strconv.FormatInt(s.n.Add(1), 10)
}

// Crockford's Base32 (excludes I, L, O, U)
const ulidEncoding = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// ULIDGenerator produces ULIDs. Identifiers created within the same
// millisecond carry an incrementing counter so they still sort in
// creation order.
type ULIDGenerator struct {
	mu      sync.Mutex
	now     func() time.Time
	lastMs  int64
	counter uint16
}

// NewULIDGenerator returns a generator using the wall clock.
func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{now: time.Now}
}

// Next returns a new ULID.
func (g *ULIDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock().UnixMilli()
	if now == g.lastMs {
		g.counter++
		if g.counter == 0 {
			// counter wrapped, wait for the next millisecond
			for now == g.lastMs {
				time.Sleep(time.Millisecond)
				now = g.clock().UnixMilli()
			}
			g.lastMs = now
		}
	} else {
		g.lastMs = now
		g.counter = 0
	}

	return encodeULID(now, g.counter)
}

func (g *ULIDGenerator) clock() time.Time {
	if g.now == nil {
		return time.Now()
	}
	return g.now()
}

// encodeULID writes 48 bits of timestamp followed by 80 bits of randomness.
// The counter occupies the top 16 random bits so same-millisecond IDs sort.
func encodeULID(ms int64, counter uint16) string {
	var entropy [10]byte
	_, _ = rand.Read(entropy[:])
	entropy[0] = byte(counter >> 8)
	entropy[1] = byte(counter)

	out := make([]byte, 26)
	for i := 9; i >= 0; i-- {
		out[i] = ulidEncoding[ms&0x1F]
		ms >>= 5
	}

	// 80 random bits as 16 base32 characters, most significant first.
	var acc uint64
	bits := 0
	pos := 10
	for _, b := range entropy {
		acc = acc<<8 | uint64(b)
		bits += 8
		for bits >= 5 {
			bits -= 5
			out[pos] = ulidEncoding[(acc>>uint(bits))&0x1F]
			pos++
		}
	}

	return string(out)
}

// IsValidULID reports whether s is a syntactically valid ULID.
func IsValidULID(s string) bool {
	if len(s) != 26 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if decodeULIDChar(s[i]) < 0 {
			return false
		}
	}
	return true
}

// ULIDTime extracts the timestamp encoded in a ULID.
func ULIDTime(s string) (time.Time, error) {
	if !IsValidULID(s) {
		return time.Time{}, fmt.Errorf("invalid ULID: %q", s)
	}

	var ms int64
	for i := 0; i < 10; i++ {
		ms = ms<<5 | int64(decodeULIDChar(s[i]))
	}
	return time.UnixMilli(ms), nil
}

func decodeULIDChar(c byte) int {
	for i := 0; i < len(ulidEncoding); i++ {
		if ulidEncoding[i] == c {
			return i
		}
	}
	return -1
}
