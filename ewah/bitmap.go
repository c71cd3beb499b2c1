// Package ewah implements EWAH (Enhanced Word-Aligned Hybrid) compressed
// bitmaps.
//
// A bitmap is a sequence of segments. Each segment is a header word holding
// a run of identical all-zero or all-one words, followed by literal words
// stored verbatim. Bitmaps are built by appending in increasing position
// order and are combined with And, Or and AndNot without decompressing.
//
// A Bitmap is not safe for concurrent mutation. Concurrent readers of a
// bitmap nobody is writing are fine.
package ewah

import (
	"fmt"
	"math"
	"math/bits"

	"ewah/internal/rlw"
	"ewah/internal/wordbuf"
)

const (
	wordInBits = rlw.WordInBits
	maxWords   = math.MaxUint64 / wordInBits // whole words a size in bits can hold
)

// Bitmap is an EWAH compressed bitmap. The zero value is not usable; call
// New.
type Bitmap struct {
	buf        *wordbuf.Buffer
	rlw        rlw.RunningLengthWord // header of the last (open) segment
	sizeInBits uint64
}

// New returns an empty bitmap: a single zero header and no bits.
func New(optFns ...Option) *Bitmap {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	buf := wordbuf.New(opts.BufferSize)
	buf.Push(0)
	return &Bitmap{
		buf: buf,
		rlw: rlw.NewRunningLengthWord(buf, 0),
	}
}

// SizeInBits returns the number of logical bits represented.
func (b *Bitmap) SizeInBits() uint64 {
	return b.sizeInBits
}

// SizeInBytes returns the size of the encoded words in bytes.
func (b *Bitmap) SizeInBytes() int {
	return b.buf.Len() * 8
}

// Add appends a full 64-bit word and returns the number of words written to
// the buffer (0 when an existing run was extended).
func (b *Bitmap) Add(word uint64) int {
	return b.AddBits(word, wordInBits)
}

// AddBits appends a word of which only the low bitsThatMatter bits are
// meaningful, typically the final partial word of a bitmap. The remaining
// bits are cleared. It returns the number of words written to the buffer.
func (b *Bitmap) AddBits(word uint64, bitsThatMatter int) int {
	if bitsThatMatter < 0 || bitsThatMatter > wordInBits {
		panic(fmt.Sprintf("ewah: bitsThatMatter %d out of range [0, %d]", bitsThatMatter, wordInBits))
	}
	if bitsThatMatter == 0 {
		return 0
	}
	if bitsThatMatter < wordInBits {
		word &= lowBits(uint64(bitsThatMatter))
	}
	b.growAligned(uint64(bitsThatMatter))
	return b.addWord(word)
}

// AddStreamOfEmptyWords appends n words that are all ones (v) or all zeros,
// extending the open run where possible. It returns the number of words
// written to the buffer. It panics if the size in bits would overflow.
func (b *Bitmap) AddStreamOfEmptyWords(v bool, n uint64) int {
	if n == 0 {
		return 0
	}
	b.growWords(n)
	return b.addEmptyRun(v, n)
}

// AddStreamOfDirtyWords appends words verbatim as literal words. It returns
// the number of words written to the buffer, including any headers opened
// because a segment's literal count filled up. It panics if the size in
// bits would overflow.
func (b *Bitmap) AddStreamOfDirtyWords(words []uint64) int {
	if len(words) == 0 {
		return 0
	}
	b.growWords(uint64(len(words)))
	return b.addLiteralRun(words)
}

// Set sets the bit at position i. Positions must be set in increasing
// order: i must not be below SizeInBits. The largest uint64 is rejected
// because the size would not fit.
func (b *Bitmap) Set(i uint64) error {
	if i < b.sizeInBits {
		return fmt.Errorf("set %d with size %d: %w", i, b.sizeInBits, ErrNotMonotonic)
	}
	if i == math.MaxUint64 {
		return fmt.Errorf("set %d: %w", i, ErrSizeOverflow)
	}

	word := i / wordInBits
	bit := i % wordInBits
	used := wordsFor(b.sizeInBits)

	if word < used {
		b.setInLastWord(bit)
	} else {
		b.addEmptyRun(false, word-used)
		b.addLiteralWord(1 << bit)
	}
	b.sizeInBits = i + 1
	return nil
}

// SetSizeInBits grows the logical size to n, padding with zeros. It returns
// false, leaving the bitmap unchanged, if n is below the current size.
func (b *Bitmap) SetSizeInBits(n uint64) bool {
	if n < b.sizeInBits {
		return false
	}
	used := wordsFor(b.sizeInBits)
	need := wordsFor(n)
	b.addEmptyRun(false, need-used)
	b.sizeInBits = n
	return true
}

// Not complements every bit below SizeInBits in place.
func (b *Bitmap) Not() {
	c := rlw.NewCursor(b.buf)
	for c.HasNext() {
		h := c.Next()
		h.SetRunningBit(!h.RunningBit())
		off := c.DirtyWordsOffset()
		for j := off; j < c.Offset(); j++ {
			b.buf.Set(j, ^b.buf.Get(j))
		}
	}
	b.clearTail()
}

// Clone returns a deep copy of b.
func (b *Bitmap) Clone() *Bitmap {
	buf := b.buf.Clone()
	return &Bitmap{
		buf:        buf,
		rlw:        rlw.NewRunningLengthWord(buf, b.rlw.Position()),
		sizeInBits: b.sizeInBits,
	}
}

// Cardinality returns the number of set bits.
func (b *Bitmap) Cardinality() uint64 {
	var count uint64
	c := rlw.NewCursor(b.buf)
	for c.HasNext() {
		h := c.Next()
		if h.RunningBit() {
			count += wordInBits * h.RunningLength()
		}
		for _, w := range b.buf.Slice(c.DirtyWordsOffset(), c.Offset()) {
			count += uint64(bits.OnesCount64(w))
		}
	}
	return count
}

// Positions returns the positions of all set bits in increasing order.
func (b *Bitmap) Positions() []uint64 {
	var out []uint64
	var pos uint64
	c := rlw.NewCursor(b.buf)
	for c.HasNext() {
		h := c.Next()
		rl := h.RunningLength() * wordInBits
		if h.RunningBit() {
			for end := pos + rl; pos < end; pos++ {
				out = append(out, pos)
			}
		} else {
			pos += rl
		}
		for _, w := range b.buf.Slice(c.DirtyWordsOffset(), c.Offset()) {
			for w != 0 {
				out = append(out, pos+uint64(bits.TrailingZeros64(w)))
				w &= w - 1
			}
			pos += wordInBits
		}
	}
	for len(out) > 0 && out[len(out)-1] >= b.sizeInBits {
		out = out[:len(out)-1]
	}
	return out
}

// Equal reports whether b and other have the same set bits, regardless of
// how each is segmented or of their logical sizes.
func (b *Bitmap) Equal(other *Bitmap) bool {
	i, j := b.Iterator(), other.Iterator()
	for {
		p, ok := i.Next()
		q, ok2 := j.Next()
		if ok != ok2 || p != q {
			return false
		}
		if !ok {
			return true
		}
	}
}

// setInLastWord sets a bit in the last encoded word, which is partially
// meaningful.
func (b *Bitmap) setInLastWord(bit uint64) {
	if lit := b.rlw.LiteralWords(); lit > 0 {
		last := b.buf.Len() - 1
		w := b.buf.Get(last) | 1<<bit
		if w != ^uint64(0) {
			b.buf.Set(last, w)
			return
		}
		// The literal filled up: fold it back into a run of ones.
		b.buf.Truncate(last)
		b.rlw.SetLiteralWords(lit - 1)
		b.addEmptyWord(true)
		return
	}

	// The last word is the tail of the open run.
	if b.rlw.RunningBit() {
		return
	}
	b.rlw.SetRunningLength(b.rlw.RunningLength() - 1)
	b.addLiteralWord(1 << bit)
}

// clearTail clears the bits of the last word at or beyond sizeInBits.
func (b *Bitmap) clearTail() {
	r := b.sizeInBits % wordInBits
	if r == 0 {
		return
	}
	mask := lowBits(r)
	if b.rlw.LiteralWords() > 0 {
		last := b.buf.Len() - 1
		b.buf.Set(last, b.buf.Get(last)&mask)
		return
	}
	if b.rlw.RunningBit() && b.rlw.RunningLength() > 0 {
		b.rlw.SetRunningLength(b.rlw.RunningLength() - 1)
		b.addLiteralWord(mask)
	}
}

// growAligned rounds a partial sizeInBits up to the next word boundary and
// adds n bits. It panics, leaving the size alone, on overflow.
func (b *Bitmap) growAligned(n uint64) {
	used := wordsFor(b.sizeInBits)
	if used > maxWords || n > math.MaxUint64-used*wordInBits {
		panic(fmt.Sprintf("ewah: appending %d bits to size %d overflows", n, b.sizeInBits))
	}
	b.sizeInBits = used*wordInBits + n
}

func (b *Bitmap) growWords(n uint64) {
	if n > maxWords {
		panic(fmt.Sprintf("ewah: appending %d words to size %d overflows", n, b.sizeInBits))
	}
	b.growAligned(n * wordInBits)
}

// wordsFor returns the number of words holding n bits.
func wordsFor(n uint64) uint64 {
	w := n / wordInBits
	if n%wordInBits != 0 {
		w++
	}
	return w
}

// The helpers below append encoded words without touching sizeInBits.

func (b *Bitmap) addWord(w uint64) int {
	switch w {
	case 0:
		return b.addEmptyWord(false)
	case ^uint64(0):
		return b.addEmptyWord(true)
	default:
		return b.addLiteralWord(w)
	}
}

func (b *Bitmap) addEmptyWord(v bool) int {
	noLiteral := b.rlw.LiteralWords() == 0
	runLen := b.rlw.RunningLength()
	if noLiteral && runLen == 0 {
		b.rlw.SetRunningBit(v)
	}
	if noLiteral && b.rlw.RunningBit() == v && runLen < rlw.LargestRunningLengthCount {
		b.rlw.SetRunningLength(runLen + 1)
		return 0
	}
	b.openSegment()
	b.rlw.SetRunningBit(v)
	b.rlw.SetRunningLength(1)
	return 1
}

func (b *Bitmap) addLiteralWord(w uint64) int {
	n := b.rlw.LiteralWords()
	if n >= rlw.LargestLiteralCount {
		b.openSegment()
		b.rlw.SetLiteralWords(1)
		b.buf.Push(w)
		return 2
	}
	b.rlw.SetLiteralWords(n + 1)
	b.buf.Push(w)
	return 1
}

func (b *Bitmap) addEmptyRun(v bool, n uint64) int {
	added := 0
	for n > 0 {
		noLiteral := b.rlw.LiteralWords() == 0
		runLen := b.rlw.RunningLength()
		if noLiteral && runLen == 0 {
			b.rlw.SetRunningBit(v)
		}
		var chunk uint64
		if noLiteral && b.rlw.RunningBit() == v && runLen < rlw.LargestRunningLengthCount {
			chunk = min(n, rlw.LargestRunningLengthCount-runLen)
			b.rlw.SetRunningLength(runLen + chunk)
		} else {
			b.openSegment()
			added++
			chunk = min(n, rlw.LargestRunningLengthCount)
			b.rlw.SetRunningBit(v)
			b.rlw.SetRunningLength(chunk)
		}
		n -= chunk
	}
	return added
}

func (b *Bitmap) addLiteralRun(words []uint64) int {
	added := 0
	for len(words) > 0 {
		n := b.rlw.LiteralWords()
		if n >= rlw.LargestLiteralCount {
			b.openSegment()
			added++
			n = 0
		}
		chunk := min(uint64(len(words)), rlw.LargestLiteralCount-n)
		b.rlw.SetLiteralWords(n + chunk)
		b.buf.PushRange(words[:chunk])
		added += int(chunk)
		words = words[chunk:]
	}
	return added
}

// openSegment appends a zero header and makes it the open segment.
func (b *Bitmap) openSegment() {
	b.buf.Push(0)
	b.rlw.SetPosition(b.buf.Len() - 1)
}

func lowBits(n uint64) uint64 {
	return (1 << n) - 1
}
