// Package render formats bitmaps for terminals.
package render

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"ewah/ewah"
	"ewah/internal/common"
)

var (
	zeroRunColor = color.New(color.FgBlue)
	oneRunColor  = color.New(color.FgGreen)
	literalColor = color.New(color.FgYellow)
	titleColor   = color.New(color.Bold)
)

// Segments writes one line per segment: its index, first word, run and
// literal count. With words set, every literal is printed in hex below its
// segment.
func Segments(w io.Writer, b *ewah.Bitmap, words bool) error {
	if _, err := titleColor.Fprintf(w, "size in bits = %d, size in words = %d\n",
		b.SizeInBits(), b.SizeInBytes()/8); err != nil {
		return err
	}

	var err error
	var i int
	var word uint64
	b.Segments(func(s ewah.Segment) bool {
		c, kind := zeroRunColor, "0x00"
		if s.RunningBit {
			c, kind = oneRunColor, "1x11"
		}
		if _, err = fmt.Fprintf(w, "#%-5d @%-10d ", i, word); err != nil {
			return false
		}
		if _, err = c.Fprintf(w, "run %s x %-10d", kind, s.RunningLength); err != nil {
			return false
		}
		if _, err = literalColor.Fprintf(w, " literals %d\n", len(s.Literals)); err != nil {
			return false
		}
		if words {
			for k, lit := range s.Literals {
				addr := word + s.RunningLength + uint64(k)
				if _, err = literalColor.Fprintf(w, "    @%-10d %016x\n", addr, lit); err != nil {
					return false
				}
			}
		}
		i++
		word += s.Words()
		return true
	})
	return err
}

// Stats writes a summary of the encoding of a bitmap.
func Stats(w io.Writer, name string, st ewah.Stats) error {
	ratio := 0.0
	if u := st.UncompressedBytes(); u > 0 {
		ratio = float64(st.SizeInBytes) / float64(u)
	}
	if _, err := titleColor.Fprintln(w, name); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w,
		"  size in bits    %d\n"+
			"  cardinality     %d\n"+
			"  encoded         %s (%d words, capacity %d)\n"+
			"  uncompressed    %s\n"+
			"  ratio           %.3f\n"+
			"  segments        %d\n"+
			"  run words       %d zero, %d one\n"+
			"  literal words   %d\n",
		st.SizeInBits,
		st.Cardinality,
		common.HumanBytes(uint64(st.SizeInBytes)), st.SizeInBytes/8, st.CapacityWords,
		common.HumanBytes(st.UncompressedBytes()),
		ratio,
		st.Segments,
		st.ZeroRunWords, st.OneRunWords,
		st.LiteralWords,
	)
	return err
}
