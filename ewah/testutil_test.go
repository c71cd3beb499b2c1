package ewah

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

// randomPositions returns sorted distinct positions below size. Positions
// come in bursts so generated bitmaps contain runs of ones and zeros as well
// as literal words.
func randomPositions(rnd *rand.Rand, size uint64) []uint64 {
	var out []uint64
	for pos := uint64(0); pos < size; {
		switch rnd.Intn(4) {
		case 0: // gap of whole words
			pos += uint64(rnd.Intn(5)+1) * 64
		case 1: // dense burst
			n := uint64(rnd.Intn(200))
			for end := min(pos+n, size); pos < end; pos++ {
				out = append(out, pos)
			}
		default: // sparse bits
			pos += uint64(rnd.Intn(40))
			if pos < size {
				out = append(out, pos)
				pos++
			}
		}
	}
	return out
}

// build sets positions on a new bitmap and pads it to size.
func build(t *testing.T, positions []uint64, size uint64) *Bitmap {
	t.Helper()
	b := New()
	for _, p := range positions {
		require.NoError(t, b.Set(p))
	}
	require.True(t, b.SetSizeInBits(size))
	return b
}

func intersect(a, b []uint64) []uint64 {
	in := toSet(b)
	var out []uint64
	for _, p := range a {
		if in[p] {
			out = append(out, p)
		}
	}
	return out
}

func union(a, b []uint64, limit uint64) []uint64 {
	set := toSet(a)
	for _, p := range b {
		set[p] = true
	}
	var out []uint64
	for p := range set {
		if p < limit {
			out = append(out, p)
		}
	}
	slices.Sort(out)
	return out
}

func difference(a, b []uint64) []uint64 {
	in := toSet(b)
	var out []uint64
	for _, p := range a {
		if !in[p] {
			out = append(out, p)
		}
	}
	return out
}

func toSet(positions []uint64) map[uint64]bool {
	set := make(map[uint64]bool, len(positions))
	for _, p := range positions {
		set[p] = true
	}
	return set
}

// wordPositions expands a sequence of full words to the positions of their
// set bits.
func wordPositions(words []uint64) []uint64 {
	var out []uint64
	for i, w := range words {
		for c := uint64(0); c < 64; c++ {
			if w&(1<<c) != 0 {
				out = append(out, uint64(i)*64+c)
			}
		}
	}
	return out
}

// requirePositions checks a bitmap's content through every read path.
func requirePositions(t *testing.T, expected []uint64, b *Bitmap) {
	t.Helper()
	got := b.Positions()
	if len(expected) == 0 {
		require.Empty(t, got)
	} else {
		require.Equal(t, expected, got)
	}
	require.Equal(t, uint64(len(expected)), b.Cardinality(), "cardinality")

	var iterated []uint64
	for p := range b.All() {
		iterated = append(iterated, p)
	}
	require.Equal(t, got, iterated, "iterator")
	requireWellFormed(t, b)
}

// requireWellFormed checks the encoding invariants: the segments tile the
// buffer, span exactly the logical size and the open header is the last,
// non-empty one.
func requireWellFormed(t *testing.T, b *Bitmap) {
	t.Helper()
	layout, err := scanSegments(b.buf)
	require.NoError(t, err)
	require.Equal(t, wordsFor(b.sizeInBits), layout.span, "span")
	require.Equal(t, layout.last, b.rlw.Position(), "open segment must be the last one")
	if b.sizeInBits > 0 {
		require.Equal(t, layout.last, layout.lastUsed, "open segment must hold the last word")
	}
}
