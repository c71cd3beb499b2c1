package ewah

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"ewah/internal/rlw"

	"github.com/stretchr/testify/require"
)

const literal = uint64(0x8000000000000011)

func TestNewBitmap(t *testing.T) {
	b := New()
	require.Equal(t, uint64(0), b.SizeInBits())
	require.Equal(t, 8, b.SizeInBytes())
	require.Equal(t, DefaultOptions.BufferSize, b.buf.Cap())
	require.Equal(t, uint64(0), b.Cardinality())
	require.Empty(t, b.Positions())

	b = New(WithBufferSize(4))
	require.Equal(t, 4, b.buf.Cap())
}

func TestAddReturnsWordsWritten(t *testing.T) {
	b := New()
	require.Equal(t, 0, b.Add(0), "zero run extends the initial header")
	require.Equal(t, 0, b.Add(0))
	require.Equal(t, 1, b.Add(literal))
	require.Equal(t, 1, b.Add(^uint64(0)), "a run after literals needs a new header")
	require.Equal(t, 0, b.Add(^uint64(0)))
	require.Equal(t, 1, b.Add(0), "a different run bit needs a new header")

	require.Equal(t, uint64(6*64), b.SizeInBits())
	require.Equal(t, 4*8, b.SizeInBytes())
	requirePositions(t, wordPositions([]uint64{0, 0, literal, ^uint64(0), ^uint64(0), 0}), b)
}

func TestAddBits(t *testing.T) {
	b := New()
	b.Add(literal)
	b.AddBits(^uint64(0), 10)
	require.Equal(t, uint64(74), b.SizeInBits())

	expected := append(wordPositions([]uint64{literal}), 64, 65, 66, 67, 68, 69, 70, 71, 72, 73)
	requirePositions(t, expected, b)

	require.Equal(t, 0, b.AddBits(literal, 0))
	require.Equal(t, uint64(74), b.SizeInBits())

	require.Panics(t, func() { b.AddBits(0, 65) })
	require.Panics(t, func() { b.AddBits(0, -1) })
}

func TestAddAfterPartialWordAligns(t *testing.T) {
	b := New()
	b.AddBits(1, 3)
	b.Add(1)
	require.Equal(t, uint64(128), b.SizeInBits())
	requirePositions(t, []uint64{0, 64}, b)
}

func TestAddStreamOfEmptyWords(t *testing.T) {
	b := New()
	require.Equal(t, 0, b.AddStreamOfEmptyWords(false, 0))
	require.Equal(t, 0, b.AddStreamOfEmptyWords(false, 3))
	require.Equal(t, 0, b.AddStreamOfEmptyWords(false, 2))
	require.Equal(t, 1, b.AddStreamOfEmptyWords(true, 2))
	b.Add(literal)
	require.Equal(t, 1, b.AddStreamOfEmptyWords(true, 1))

	require.Equal(t, uint64(9*64), b.SizeInBits())
	var expected []uint64
	for p := uint64(5 * 64); p < 7*64; p++ {
		expected = append(expected, p)
	}
	expected = append(expected, 7*64, 7*64+4, 7*64+63)
	for p := uint64(8 * 64); p < 9*64; p++ {
		expected = append(expected, p)
	}
	requirePositions(t, expected, b)
}

func TestAddStreamOfEmptyWordsSaturatesRunLength(t *testing.T) {
	n := rlw.LargestRunningLengthCount + 5
	b := New()
	require.Equal(t, 1, b.AddStreamOfEmptyWords(true, n))
	require.Equal(t, n*64, b.SizeInBits())
	require.Equal(t, 2*8, b.SizeInBytes())
	require.Equal(t, n*64, b.Cardinality())

	var runs []uint64
	b.Segments(func(s Segment) bool {
		runs = append(runs, s.RunningLength)
		return true
	})
	require.Equal(t, []uint64{rlw.LargestRunningLengthCount, 5}, runs)

	it := b.Iterator()
	for want := uint64(0); want < 100; want++ {
		p, ok := it.Next()
		require.True(t, ok)
		require.Equal(t, want, p)
	}
	requireWellFormed(t, b)
}

func TestAddStreamOfDirtyWords(t *testing.T) {
	words := []uint64{literal, 3, 1 << 40}
	b := New()
	b.Add(0)
	require.Equal(t, 3, b.AddStreamOfDirtyWords(words))
	require.Equal(t, 0, b.AddStreamOfDirtyWords(nil))
	require.Equal(t, uint64(4*64), b.SizeInBits())

	words[0] = 0
	requirePositions(t, wordPositions([]uint64{0, literal, 3, 1 << 40}), b)
}

func TestSetRoundTrip(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		size := uint64(rnd.Intn(5000) + 1)
		positions := randomPositions(rnd, size)
		b := New()
		for _, p := range positions {
			require.NoError(t, b.Set(p))
		}
		requirePositions(t, positions, b)
		if len(positions) > 0 {
			require.Equal(t, positions[len(positions)-1]+1, b.SizeInBits())
		}
	}
}

func TestSetRejectsNonIncreasingPositions(t *testing.T) {
	b := New()
	require.NoError(t, b.Set(10))

	err := b.Set(10)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrNotMonotonic))

	require.ErrorIs(t, b.Set(3), ErrNotMonotonic)
	requirePositions(t, []uint64{10}, b)

	b.Add(0)
	require.ErrorIs(t, b.Set(100), ErrNotMonotonic)
	require.NoError(t, b.Set(128))
}

func TestSetCollapsesFullLiteralIntoRun(t *testing.T) {
	b := New()
	for i := uint64(0); i < 64; i++ {
		require.NoError(t, b.Set(i))
	}
	require.Equal(t, 8, b.SizeInBytes(), "a full word lives in the header's run")
	require.True(t, b.rlw.RunningBit())
	require.Equal(t, uint64(1), b.rlw.RunningLength())
	require.Equal(t, uint64(0), b.rlw.LiteralWords())

	// A full literal behind other literals needs its own header.
	b = New()
	require.NoError(t, b.Set(1))
	for i := uint64(64); i < 128; i++ {
		require.NoError(t, b.Set(i))
	}
	require.Equal(t, 3*8, b.SizeInBytes())
	var segments []Segment
	b.Segments(func(s Segment) bool {
		segments = append(segments, s)
		return true
	})
	require.Len(t, segments, 2)
	require.Equal(t, []uint64{2}, segments[0].Literals)
	require.True(t, segments[1].RunningBit)
	require.Equal(t, uint64(1), segments[1].RunningLength)
	requireWellFormed(t, b)
}

func TestSetInsidePartialRunWord(t *testing.T) {
	b := New()
	b.AddBits(0, 10)
	require.NoError(t, b.Set(20))
	requirePositions(t, []uint64{20}, b)
	require.Equal(t, uint64(21), b.SizeInBits())

	b = New()
	b.AddBits(^uint64(0), 64)
	b.AddBits(0, 10)
	require.NoError(t, b.Set(64+63))
	require.NoError(t, b.Set(200))
	requirePositions(t, append(wordPositions([]uint64{^uint64(0)}), 127, 200), b)
}

func TestSetManyConsecutiveBits(t *testing.T) {
	const n = 11000000
	b := New()
	for i := uint64(0); i < n; i++ {
		require.NoError(t, b.Set(i))
	}
	require.Equal(t, uint64(n), b.SizeInBits())
	require.Equal(t, uint64(n), b.Cardinality())
	require.Equal(t, 8, b.SizeInBytes())

	positions := b.Positions()
	require.Len(t, positions, n)
	require.Equal(t, uint64(n-1), positions[n-1])
}

func TestSetSingleHighBit(t *testing.T) {
	b := New()
	require.NoError(t, b.Set(math.MaxInt32))
	require.Equal(t, uint64(1), b.Cardinality())
	require.Equal(t, []uint64{math.MaxInt32}, b.Positions())
	require.Equal(t, uint64(math.MaxInt32+1), b.SizeInBits())
	require.Equal(t, 2*8, b.SizeInBytes(), "the leading zeros must be a run")
}

func TestSetSizeInBits(t *testing.T) {
	b := New()
	require.NoError(t, b.Set(5))
	require.True(t, b.SetSizeInBits(6))
	require.True(t, b.SetSizeInBits(1000))
	require.Equal(t, uint64(1000), b.SizeInBits())
	require.False(t, b.SetSizeInBits(999))
	require.Equal(t, uint64(1000), b.SizeInBits())
	requirePositions(t, []uint64{5}, b)

	require.ErrorIs(t, b.Set(999), ErrNotMonotonic)
	require.NoError(t, b.Set(1000))
	requirePositions(t, []uint64{5, 1000}, b)
}

func TestNot(t *testing.T) {
	rnd := rand.New(rand.NewSource(2))
	for i := 0; i < 30; i++ {
		size := uint64(rnd.Intn(3000) + 1)
		positions := randomPositions(rnd, size)
		b := build(t, positions, size)

		b.Not()
		in := toSet(positions)
		var complement []uint64
		for p := uint64(0); p < size; p++ {
			if !in[p] {
				complement = append(complement, p)
			}
		}
		requirePositions(t, complement, b)
		require.Equal(t, size, b.SizeInBits())

		b.Not()
		requirePositions(t, positions, b)
	}
}

func TestNotSplitsTrailingRunOfOnes(t *testing.T) {
	b := New()
	b.AddBits(0, 10)
	b.Not()
	requirePositions(t, []uint64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, b)

	b.Not()
	requirePositions(t, nil, b)
}

func TestNotEmpty(t *testing.T) {
	b := New()
	b.Not()
	requirePositions(t, nil, b)
	require.Equal(t, uint64(0), b.SizeInBits())
}

func TestClone(t *testing.T) {
	b := New()
	require.NoError(t, b.Set(3))
	require.NoError(t, b.Set(300))

	c := b.Clone()
	require.Equal(t, b.Positions(), c.Positions())
	require.Equal(t, b.SizeInBits(), c.SizeInBits())
	require.Equal(t, b.buf.Words(), c.buf.Words())

	require.NoError(t, c.Set(400))
	c.Not()
	requirePositions(t, []uint64{3, 300}, b)
	require.Equal(t, uint64(301), b.SizeInBits())
}

func TestEqual(t *testing.T) {
	// Same content, different encodings and sizes.
	a := New()
	a.Add(0)
	a.Add(^uint64(0))

	b := New()
	b.AddStreamOfDirtyWords([]uint64{0, ^uint64(0)})
	b.AddStreamOfEmptyWords(false, 4)

	require.NotEqual(t, a.buf.Words(), b.buf.Words())
	require.True(t, a.Equal(b))
	require.True(t, b.Equal(a))

	require.NoError(t, b.Set(1000))
	require.False(t, a.Equal(b))
	require.False(t, b.Equal(a))

	require.True(t, New().Equal(New()))
}

func TestSetLargestPositionOverflows(t *testing.T) {
	b := New()
	err := b.Set(math.MaxUint64)
	require.ErrorIs(t, err, ErrSizeOverflow)
	require.Equal(t, uint64(0), b.SizeInBits())
	requirePositions(t, nil, b)

	require.NoError(t, b.Set(5))
	requirePositions(t, []uint64{5}, b)
}

func TestAddStreamOfEmptyWordsOverflowPanics(t *testing.T) {
	b := New()
	require.Panics(t, func() { b.AddStreamOfEmptyWords(true, 1<<58) })
	require.Equal(t, uint64(0), b.SizeInBits())
	requirePositions(t, nil, b)
}

func TestAppendPastLargestSizePanics(t *testing.T) {
	// Only the size matters here: the guards run before anything is encoded.
	b := New()
	b.sizeInBits = math.MaxUint64 - 100

	require.Panics(t, func() { b.Add(0) })
	require.Panics(t, func() { b.AddBits(0, 64) })
	require.Panics(t, func() { b.AddStreamOfEmptyWords(false, 1) })
	require.Panics(t, func() { b.AddStreamOfDirtyWords([]uint64{1}) })
	require.Equal(t, uint64(math.MaxUint64-100), b.SizeInBits())
	require.Equal(t, 8, b.SizeInBytes())
}
