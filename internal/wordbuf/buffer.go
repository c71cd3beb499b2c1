package wordbuf

import "fmt"

// Buffer is a growable array of 64-bit words. len(words) is the number of
// words in use and cap(words) is the allocated capacity, which doubles
// whenever an append would overflow it.
type Buffer struct {
	words []uint64
}

// New returns an empty buffer with room for capacity words.
func New(capacity int) *Buffer {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer{words: make([]uint64, 0, capacity)}
}

// NewFromWords wraps words as the used region of a buffer with the given
// capacity. The slice is copied; capacity below len(words) is raised to it.
func NewFromWords(words []uint64, capacity int) *Buffer {
	if capacity < len(words) {
		capacity = len(words)
	}
	b := New(capacity)
	b.words = append(b.words, words...)
	return b
}

// Len returns the number of words in use.
func (b *Buffer) Len() int {
	return len(b.words)
}

// Cap returns the allocated capacity in words.
func (b *Buffer) Cap() int {
	return cap(b.words)
}

// Get returns the word at index i.
func (b *Buffer) Get(i int) uint64 {
	b.check(i)
	return b.words[i]
}

// Set overwrites the word at index i.
func (b *Buffer) Set(i int, w uint64) {
	b.check(i)
	b.words[i] = w
}

// Push appends a single word.
func (b *Buffer) Push(w uint64) {
	b.reserve(1)
	b.words = append(b.words, w)
}

// PushRange appends a copy of src.
func (b *Buffer) PushRange(src []uint64) {
	if len(src) == 0 {
		return
	}
	b.reserve(len(src))
	b.words = append(b.words, src...)
}

// Truncate shrinks the used region to n words. Released slots are zeroed.
func (b *Buffer) Truncate(n int) {
	if n < 0 || n > len(b.words) {
		panic(fmt.Sprintf("wordbuf: truncate to %d out of range [0, %d]", n, len(b.words)))
	}
	clear(b.words[n:])
	b.words = b.words[:n]
}

// Slice returns words [from, to) without copying. The result aliases the
// buffer and is only valid until the next append.
func (b *Buffer) Slice(from, to int) []uint64 {
	if from < 0 || to < from || to > len(b.words) {
		panic(fmt.Sprintf("wordbuf: slice [%d:%d] out of range [0, %d]", from, to, len(b.words)))
	}
	return b.words[from:to:to]
}

// Words returns the used region without copying.
func (b *Buffer) Words() []uint64 {
	return b.words
}

// Clone returns a deep copy with the same length and capacity.
func (b *Buffer) Clone() *Buffer {
	return NewFromWords(b.words, cap(b.words))
}

// reserve doubles the capacity until n more words fit.
func (b *Buffer) reserve(n int) {
	need := len(b.words) + n
	if need <= cap(b.words) {
		return
	}
	newCap := cap(b.words)
	if newCap == 0 {
		newCap = 1
	}
	for newCap < need {
		newCap *= 2
	}
	grown := make([]uint64, len(b.words), newCap)
	copy(grown, b.words)
	b.words = grown
}

func (b *Buffer) check(i int) {
	if i < 0 || i >= len(b.words) {
		panic(fmt.Sprintf("wordbuf: index %d out of range [0, %d)", i, len(b.words)))
	}
}
