package ewah

import (
	"iter"
	"math/bits"

	"ewah/internal/rlw"
	"ewah/internal/wordbuf"
)

// positionIterator decodes one segment at a time, holding only the
// remainder of the current run and literal word.
type positionIterator struct {
	buf    *wordbuf.Buffer
	cursor *rlw.Cursor
	size   uint64

	pos     uint64 // position of the next undecoded word's first bit
	runLeft uint64 // positions left in the current run of ones
	litOff  int    // index of the next literal word
	litLeft int    // literal words left in the current segment
	cur     uint64 // undrained bits of the current literal word
	curBase uint64 // position of bit 0 of cur
	done    bool
}

var _ PositionIterator = (*positionIterator)(nil)

// Iterator returns a lazy iterator over the set bit positions.
func (b *Bitmap) Iterator() PositionIterator {
	return &positionIterator{
		buf:    b.buf,
		cursor: rlw.NewCursor(b.buf),
		size:   b.sizeInBits,
	}
}

// All returns the set bit positions as a range-over-func sequence.
func (b *Bitmap) All() iter.Seq[uint64] {
	return func(yield func(uint64) bool) {
		it := b.Iterator()
		for {
			p, ok := it.Next()
			if !ok || !yield(p) {
				return
			}
		}
	}
}

func (it *positionIterator) Next() (uint64, bool) {
	for !it.done {
		if it.cur != 0 {
			p := it.curBase + uint64(bits.TrailingZeros64(it.cur))
			it.cur &= it.cur - 1
			return it.emit(p)
		}
		if it.runLeft > 0 {
			p := it.pos
			it.pos++
			it.runLeft--
			return it.emit(p)
		}
		if it.litLeft > 0 {
			it.cur = it.buf.Get(it.litOff)
			it.curBase = it.pos
			it.pos += wordInBits
			it.litOff++
			it.litLeft--
			continue
		}
		if !it.cursor.HasNext() {
			it.done = true
			break
		}
		h := it.cursor.Next()
		if h.RunningBit() {
			it.runLeft = h.RunningLength() * wordInBits
		} else {
			it.pos += h.RunningLength() * wordInBits
		}
		it.litOff = it.cursor.DirtyWordsOffset()
		it.litLeft = int(h.LiteralWords())
	}
	return 0, false
}

// emit hands out p unless it lies past the logical size.
func (it *positionIterator) emit(p uint64) (uint64, bool) {
	if p >= it.size {
		it.done = true
		return 0, false
	}
	return p, true
}
