package ewah

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	"ewah/internal/common"
	"ewah/internal/rlw"
	"ewah/internal/wordbuf"
)

// WriteBitmap serializes a bitmap to a writer.
// Format (big-endian):
//
//	[int32: sizeInBits][int32: used words][int32: capacity words][int64 x used: words]
//
// Returns the number of bytes written.
func WriteBitmap(w io.Writer, b *Bitmap) (int, error) {
	if b.sizeInBits > math.MaxInt32 || b.buf.Cap() > math.MaxInt32 {
		return 0, fmt.Errorf("size %d bits, capacity %d words: %w", b.sizeInBits, b.buf.Cap(), ErrTooLarge)
	}
	total := 0

	for _, v := range []int{int(b.sizeInBits), b.buf.Len(), b.buf.Cap()} {
		n, err := common.WriteInt32(w, int32(v))
		total += n
		if err != nil {
			return total, err
		}
	}

	n, err := common.WriteUint64s(w, b.buf.Words())
	total += n
	if err != nil {
		return total, err
	}

	return total, nil
}

// ReadBitmap deserializes a bitmap written by WriteBitmap. The returned
// bitmap accepts further appends.
func ReadBitmap(r io.Reader) (*Bitmap, error) {
	var header [3]int32
	for i := range header {
		v, err := common.ReadInt32(r)
		if err != nil {
			return nil, fmt.Errorf("read header: %w", noEOF(err, i > 0))
		}
		header[i] = v
	}
	sizeInBits, used, capacity := header[0], header[1], header[2]

	switch {
	case sizeInBits < 0 || used < 0 || capacity < 0:
		return nil, fmt.Errorf("negative header field (%d, %d, %d): %w", sizeInBits, used, capacity, ErrInvalidFormat)
	case used == 0:
		return nil, fmt.Errorf("no header word: %w", ErrInvalidFormat)
	case capacity < used:
		return nil, fmt.Errorf("capacity %d below %d used words: %w", capacity, used, ErrInvalidFormat)
	}

	words, err := common.ReadUint64s(r, int(used))
	if err != nil {
		return nil, fmt.Errorf("read %d words: %w", used, noEOF(err, true))
	}

	// The capacity field is a hint; cap what a hostile stream can allocate.
	alloc := min(int(capacity), 2*int(used)+DefaultOptions.BufferSize)
	buf := wordbuf.NewFromWords(words, alloc)
	layout, err := scanSegments(buf)
	if err != nil {
		return nil, err
	}
	want := wordsFor(uint64(sizeInBits))
	if layout.span > want {
		return nil, fmt.Errorf("segments span %d words, size %d bits needs %d: %w",
			layout.span, sizeInBits, want, ErrInvalidFormat)
	}

	// Writers may leave empty headers at the end or cover fewer words than
	// the size. Drop the empty headers so the open segment holds the last
	// word, then zero-extend.
	last, end := 0, 1
	if layout.lastUsed >= 0 {
		last = layout.lastUsed
		end = last + int(rlw.LiteralWords(buf.Get(last))) + 1
	}
	buf.Truncate(end)

	b := &Bitmap{
		buf:        buf,
		rlw:        rlw.NewRunningLengthWord(buf, last),
		sizeInBits: uint64(sizeInBits),
	}
	b.addEmptyRun(false, want-layout.span)
	b.clearTail()
	return b, nil
}

// segmentLayout summarizes a walk over the headers of an encoded buffer.
type segmentLayout struct {
	span     uint64 // logical words covered by all segments
	last     int    // index of the last header
	lastUsed int    // index of the last header spanning any words, -1 if none
}

// scanSegments checks that the segments tile the buffer exactly.
func scanSegments(buf *wordbuf.Buffer) (segmentLayout, error) {
	layout := segmentLayout{lastUsed: -1}
	for pos := 0; pos < buf.Len(); {
		h := buf.Get(pos)
		lit := rlw.LiteralWords(h)
		if uint64(buf.Len()-pos-1) < lit {
			return segmentLayout{}, fmt.Errorf("segment at word %d has %d literal words, only %d remain: %w",
				pos, lit, buf.Len()-pos-1, ErrInvalidFormat)
		}
		if rlw.Size(h) > 0 {
			layout.lastUsed = pos
		}
		layout.span += rlw.Size(h)
		layout.last = pos
		pos += int(lit) + 1
	}
	return layout, nil
}

// noEOF turns a bare EOF partway through a stream into ErrUnexpectedEOF.
func noEOF(err error, started bool) error {
	if started && errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

// MarshalBinary implements encoding.BinaryMarshaler using the WriteBitmap
// format.
func (b *Bitmap) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := WriteBitmap(&buf, b); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. Trailing bytes
// are rejected.
func (b *Bitmap) UnmarshalBinary(data []byte) error {
	r := bytes.NewReader(data)
	decoded, err := ReadBitmap(r)
	if err != nil {
		return err
	}
	if r.Len() != 0 {
		return fmt.Errorf("%d trailing bytes: %w", r.Len(), ErrInvalidFormat)
	}
	*b = *decoded
	return nil
}
