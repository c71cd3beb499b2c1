package ewah

import (
	"fmt"
	"strings"

	"ewah/internal/rlw"
)

// Segment is a decoded header plus its literal words.
type Segment struct {
	RunningBit    bool
	RunningLength uint64

	// Literals aliases the bitmap's buffer and must not be modified or
	// retained past the next mutation.
	Literals []uint64
}

// Words returns the number of logical words the segment spans.
func (s Segment) Words() uint64 {
	return s.RunningLength + uint64(len(s.Literals))
}

// Segments calls fn for every segment in order until fn returns false.
func (b *Bitmap) Segments(fn func(Segment) bool) {
	c := rlw.NewCursor(b.buf)
	for c.HasNext() {
		h := c.Next()
		seg := Segment{
			RunningBit:    h.RunningBit(),
			RunningLength: h.RunningLength(),
			Literals:      b.buf.Slice(c.DirtyWordsOffset(), c.Offset()),
		}
		if !fn(seg) {
			return
		}
	}
}

// Stats summarizes the encoding of a bitmap.
type Stats struct {
	SizeInBits    uint64 `json:"sizeInBits"`
	SizeInBytes   int    `json:"sizeInBytes"`
	CapacityWords int    `json:"capacityWords"`
	Segments      int    `json:"segments"`
	ZeroRunWords  uint64 `json:"zeroRunWords"`
	OneRunWords   uint64 `json:"oneRunWords"`
	LiteralWords  uint64 `json:"literalWords"`
	Cardinality   uint64 `json:"cardinality"`
}

// UncompressedBytes returns the size of the same bits as a plain bitset.
func (s Stats) UncompressedBytes() uint64 {
	return wordsFor(s.SizeInBits) * 8
}

// Stats walks the bitmap once and reports its encoding.
func (b *Bitmap) Stats() Stats {
	st := Stats{
		SizeInBits:    b.sizeInBits,
		SizeInBytes:   b.SizeInBytes(),
		CapacityWords: b.buf.Cap(),
	}
	b.Segments(func(s Segment) bool {
		st.Segments++
		if s.RunningBit {
			st.OneRunWords += s.RunningLength
		} else {
			st.ZeroRunWords += s.RunningLength
		}
		st.LiteralWords += uint64(len(s.Literals))
		return true
	})
	st.Cardinality = b.Cardinality()
	return st
}

// String dumps the segment structure, one run line and one literal line
// per segment.
func (b *Bitmap) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "EWAHCompressedBitmap, size in bits = %d, size in words = %d\n", b.sizeInBits, b.buf.Len())
	b.Segments(func(s Segment) bool {
		if s.RunningBit {
			fmt.Fprintf(&sb, "%d 1x11\n", s.RunningLength)
		} else {
			fmt.Fprintf(&sb, "%d 0x00\n", s.RunningLength)
		}
		fmt.Fprintf(&sb, "%d dirties\n", len(s.Literals))
		return true
	})
	return sb.String()
}
