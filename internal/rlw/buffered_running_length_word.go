package rlw

// BufferedRunningLengthWord is a detached copy of a header. Merges use it
// to track how much of a segment has been consumed without touching the
// bitmap the header was read from.
type BufferedRunningLengthWord struct {
	val uint64
}

// NewBufferedRunningLengthWord snapshots the header word h.
func NewBufferedRunningLengthWord(h uint64) BufferedRunningLengthWord {
	return BufferedRunningLengthWord{val: h}
}

// Value returns the current (possibly consumed) header word.
func (b *BufferedRunningLengthWord) Value() uint64 { return b.val }

func (b *BufferedRunningLengthWord) RunningBit() bool { return RunningBit(b.val) }

func (b *BufferedRunningLengthWord) SetRunningBit(v bool) { b.val = WithRunningBit(b.val, v) }

func (b *BufferedRunningLengthWord) RunningLength() uint64 { return RunningLength(b.val) }

func (b *BufferedRunningLengthWord) SetRunningLength(n uint64) {
	b.val = WithRunningLength(b.val, n)
}

func (b *BufferedRunningLengthWord) LiteralWords() uint64 { return LiteralWords(b.val) }

func (b *BufferedRunningLengthWord) SetLiteralWords(n uint64) {
	b.val = WithLiteralWords(b.val, n)
}

// Size returns RunningLength() + LiteralWords().
func (b *BufferedRunningLengthWord) Size() uint64 { return Size(b.val) }

// DiscardFirstWords consumes n words from the front of the snapshot. It
// panics if the snapshot holds fewer than n words.
func (b *BufferedRunningLengthWord) DiscardFirstWords(n uint64) {
	b.val = DiscardFirstWords(b.val, n)
}

func (b *BufferedRunningLengthWord) String() string { return Format(b.val) }
