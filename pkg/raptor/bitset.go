package raptor

import "math/bits"

// Bitset is a dense, word-packed bitset over a zero-based index space,
// used for marked_rp, marked_sp and routes_valides (spec.md §3). The
// bit-twiddling shape (word/offset split, on/off/test helpers) follows
// the teacher's CH bit-offset helpers, repurposed here over a plain
// linear index instead of cell-relative offsets.
type Bitset struct {
	words []uint64
	n     int
}

func NewBitset(n int) *Bitset {
	return &Bitset{
		words: make([]uint64, (n+63)/64),
		n:     n,
	}
}

func (b *Bitset) Len() int { return b.n }

func (b *Bitset) Set(i int) {
	b.words[i>>6] |= 1 << uint(i&63)
}

func (b *Bitset) Clear(i int) {
	b.words[i>>6] &^= 1 << uint(i&63)
}

func (b *Bitset) Test(i int) bool {
	return b.words[i>>6]&(1<<uint(i&63)) != 0
}

// Reset clears every bit.
func (b *Bitset) Reset() {
	for i := range b.words {
		b.words[i] = 0
	}
}

// Count returns the number of set bits.
func (b *Bitset) Count() int {
	c := 0
	for _, w := range b.words {
		c += bits.OnesCount64(w)
	}
	return c
}

// ForEach calls f for every set bit, in ascending order. The pack's
// foot-path table iteration relies on this ascending guarantee (spec.md
// §9 "Foot-path table iteration").
func (b *Bitset) ForEach(f func(i int)) {
	for wi, w := range b.words {
		for w != 0 {
			tz := bits.TrailingZeros64(w)
			f(wi*64 + tz)
			w &= w - 1
		}
	}
}

// Resize grows the bitset to hold at least n bits, preserving existing
// bits and clearing new ones. Shrinking is a no-op on capacity (only
// the reported length changes) to let sessions reuse the backing array
// across queries with different-sized timetables safely.
func (b *Bitset) Resize(n int) {
	need := (n + 63) / 64
	if need > len(b.words) {
		grown := make([]uint64, need)
		copy(grown, b.words)
		b.words = grown
	}
	b.n = n
}
