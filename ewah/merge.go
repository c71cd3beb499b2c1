package ewah

import (
	"ewah/internal/rlw"
	"ewah/internal/wordbuf"
)

// mergeOp describes a boolean operation for the lock-step merge.
type mergeOp struct {
	// absorbing is the run bit that decides the result on its own: false
	// for AND, true for OR. A run of the other bit is the identity.
	absorbing bool
	word      func(x, y uint64) uint64
}

var (
	andOp = mergeOp{absorbing: false, word: func(x, y uint64) uint64 { return x & y }}
	orOp  = mergeOp{absorbing: true, word: func(x, y uint64) uint64 { return x | y }}
)

// And returns the intersection of b and other. Neither input is modified.
// The result has b's logical size; other is treated as zero past its own.
func (b *Bitmap) And(other *Bitmap) *Bitmap {
	return merge(b, other, andOp)
}

// Or returns the union of b and other. Neither input is modified. The
// result has b's logical size, so bits of other beyond it are dropped.
func (b *Bitmap) Or(other *Bitmap) *Bitmap {
	return merge(b, other, orOp)
}

// AndNot returns the bits of b that are not set in other. It works on a
// private negated copy of other; neither input is modified.
func (b *Bitmap) AndNot(other *Bitmap) *Bitmap {
	neg := other.Clone()
	// Pad the copy first so that bits of b past other's size survive.
	neg.SetSizeInBits(b.sizeInBits)
	neg.Not()
	return b.And(neg)
}

// mergeSide is one input of a merge: a cursor over its segments and a
// snapshot of how much of the current segment is still unconsumed.
type mergeSide struct {
	buf    *wordbuf.Buffer
	cursor *rlw.Cursor
	rlw    rlw.BufferedRunningLengthWord
}

func newMergeSide(b *Bitmap) *mergeSide {
	return &mergeSide{buf: b.buf, cursor: rlw.NewCursor(b.buf)}
}

// live loads segments until the current one has words left. It returns
// false once the input is exhausted.
func (s *mergeSide) live() bool {
	for s.rlw.Size() == 0 {
		if !s.cursor.HasNext() {
			return false
		}
		h := s.cursor.Next()
		s.rlw = rlw.NewBufferedRunningLengthWord(h.Value())
	}
	return true
}

// literals returns the next n unconsumed literal words. Unconsumed literals
// are always a suffix of the segment.
func (s *mergeSide) literals(n uint64) []uint64 {
	off := s.cursor.Offset() - int(s.rlw.LiteralWords())
	return s.buf.Slice(off, off+int(n))
}

func (s *mergeSide) discard(n uint64) {
	s.rlw.DiscardFirstWords(n)
}

// merge walks both inputs in lock step. Each round the side whose current
// segment has fewer words left is the prey and is consumed entirely; the
// predator gives up the same number of words.
func merge(a, b *Bitmap, op mergeOp) *Bitmap {
	out := New()
	x, y := newMergeSide(a), newMergeSide(b)

	for x.live() && y.live() {
		prey, predator := y, x
		if x.rlw.Size() < y.rlw.Size() {
			prey, predator = x, y
		}

		// Prey run against whatever the predator holds.
		if preyRL := prey.rlw.RunningLength(); preyRL > 0 {
			if prey.rlw.RunningBit() == op.absorbing {
				out.addEmptyRun(op.absorbing, preyRL)
			} else {
				predRL := min(predator.rlw.RunningLength(), preyRL)
				out.addEmptyRun(predator.rlw.RunningBit(), predRL)
				out.addLiteralRun(predator.literals(preyRL - predRL))
			}
			prey.discard(preyRL)
			predator.discard(preyRL)
		}

		// Predator run against prey literals.
		preyLit, predRL := prey.rlw.LiteralWords(), predator.rlw.RunningLength()
		if preyLit > 0 && predRL > 0 {
			n := min(preyLit, predRL)
			if predator.rlw.RunningBit() == op.absorbing {
				out.addEmptyRun(op.absorbing, n)
			} else {
				out.addLiteralRun(prey.literals(n))
			}
			prey.discard(n)
			predator.discard(n)
		}

		// Literal against literal.
		if preyLit = prey.rlw.LiteralWords(); preyLit > 0 {
			pw, qw := prey.literals(preyLit), predator.literals(preyLit)
			for k := range pw {
				out.addWord(op.word(pw[k], qw[k]))
			}
			prey.discard(preyLit)
			predator.discard(preyLit)
		}
	}

	// Whatever is left of a meets implicit zeros. Leftovers of b lie past
	// the result's size.
	for x.live() {
		if op.absorbing {
			out.addEmptyRun(x.rlw.RunningBit(), x.rlw.RunningLength())
			out.addLiteralRun(x.literals(x.rlw.LiteralWords()))
		} else {
			out.addEmptyRun(false, x.rlw.Size())
		}
		x.discard(x.rlw.Size())
	}

	out.sizeInBits = a.sizeInBits
	out.clearTail()
	return out
}
