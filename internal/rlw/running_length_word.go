package rlw

import "ewah/internal/wordbuf"

// RunningLengthWord is a live view of a header stored in a word buffer.
// Reads and writes go through to the buffer, so mutations are visible to
// whoever owns it. The view holds an index, not a slice, and stays valid
// across buffer growth.
type RunningLengthWord struct {
	buf *wordbuf.Buffer
	pos int
}

// NewRunningLengthWord binds a view to the header at index pos of buf.
func NewRunningLengthWord(buf *wordbuf.Buffer, pos int) RunningLengthWord {
	return RunningLengthWord{buf: buf, pos: pos}
}

// Position returns the buffer index of the header.
func (r *RunningLengthWord) Position() int { return r.pos }

// SetPosition rebinds the view to another header in the same buffer.
func (r *RunningLengthWord) SetPosition(pos int) { r.pos = pos }

// Value returns the raw header word.
func (r *RunningLengthWord) Value() uint64 { return r.buf.Get(r.pos) }

func (r *RunningLengthWord) RunningBit() bool { return RunningBit(r.Value()) }

func (r *RunningLengthWord) SetRunningBit(b bool) {
	r.buf.Set(r.pos, WithRunningBit(r.Value(), b))
}

func (r *RunningLengthWord) RunningLength() uint64 { return RunningLength(r.Value()) }

func (r *RunningLengthWord) SetRunningLength(n uint64) {
	r.buf.Set(r.pos, WithRunningLength(r.Value(), n))
}

func (r *RunningLengthWord) LiteralWords() uint64 { return LiteralWords(r.Value()) }

func (r *RunningLengthWord) SetLiteralWords(n uint64) {
	r.buf.Set(r.pos, WithLiteralWords(r.Value(), n))
}

// Size returns RunningLength() + LiteralWords().
func (r *RunningLengthWord) Size() uint64 { return Size(r.Value()) }

// DiscardFirstWords consumes n words from the front of the segment in place.
// It panics if the segment holds fewer than n words.
func (r *RunningLengthWord) DiscardFirstWords(n uint64) {
	r.buf.Set(r.pos, DiscardFirstWords(r.Value(), n))
}

func (r *RunningLengthWord) String() string { return Format(r.Value()) }
