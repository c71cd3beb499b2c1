package rlw

import "ewah/internal/wordbuf"

// Cursor walks the segments of an encoded buffer front to back. It is
// forward-only; callers that stop partway through a segment track that with
// a BufferedRunningLengthWord instead.
type Cursor struct {
	rlw     RunningLengthWord
	size    int
	pointer int
}

// NewCursor positions a cursor at the first header of buf. Words appended
// to buf after this call are not visited.
func NewCursor(buf *wordbuf.Buffer) *Cursor {
	return &Cursor{
		rlw:  NewRunningLengthWord(buf, 0),
		size: buf.Len(),
	}
}

// HasNext reports whether unread words remain.
func (c *Cursor) HasNext() bool {
	return c.pointer < c.size
}

// Next returns a live view of the current header and moves past the header
// and its literal words.
func (c *Cursor) Next() RunningLengthWord {
	c.rlw.SetPosition(c.pointer)
	c.pointer += int(c.rlw.LiteralWords()) + 1
	return c.rlw
}

// DirtyWordsOffset returns the buffer index of the first literal word of the
// segment last returned by Next.
func (c *Cursor) DirtyWordsOffset() int {
	return c.pointer - int(c.rlw.LiteralWords())
}

// Offset returns the buffer index just past the segment last returned by
// Next.
func (c *Cursor) Offset() int {
	return c.pointer
}
