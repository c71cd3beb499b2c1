package rlw

import "fmt"

// A header ("running length word") packs three fields into one uint64:
//
//	bit 0       running bit
//	bits 1-32   running length, in words
//	bits 33-63  number of literal words following the header
const (
	WordInBits        = 64
	RunningLengthBits = 32
	LiteralBits       = WordInBits - 1 - RunningLengthBits
)

const (
	LargestLiteralCount       uint64 = (1 << LiteralBits) - 1
	LargestRunningLengthCount uint64 = (1 << RunningLengthBits) - 1

	shiftedLargestRunningLengthCount    uint64 = LargestRunningLengthCount << 1
	notShiftedLargestRunningLengthCount uint64 = ^shiftedLargestRunningLengthCount
	runningLengthPlusRunningBit         uint64 = (1 << (RunningLengthBits + 1)) - 1
)

// RunningBit reports the value repeated by the header's run.
func RunningBit(h uint64) bool {
	return h&1 != 0
}

// WithRunningBit returns h with its running bit replaced.
func WithRunningBit(h uint64, b bool) uint64 {
	if b {
		return h | 1
	}
	return h &^ 1
}

// RunningLength returns the number of run words encoded by h.
func RunningLength(h uint64) uint64 {
	return (h >> 1) & LargestRunningLengthCount
}

// WithRunningLength returns h with its running length replaced. The running
// bit and literal count are left untouched.
func WithRunningLength(h uint64, n uint64) uint64 {
	if n > LargestRunningLengthCount {
		panic(fmt.Sprintf("rlw: running length %d exceeds %d", n, LargestRunningLengthCount))
	}
	return (h & notShiftedLargestRunningLengthCount) | (n << 1)
}

// LiteralWords returns the number of literal words that follow h.
func LiteralWords(h uint64) uint64 {
	return h >> (1 + RunningLengthBits)
}

// WithLiteralWords returns h with its literal word count replaced. The
// running bit and running length are left untouched.
func WithLiteralWords(h uint64, n uint64) uint64 {
	if n > LargestLiteralCount {
		panic(fmt.Sprintf("rlw: literal word count %d exceeds %d", n, LargestLiteralCount))
	}
	return (h & runningLengthPlusRunningBit) | (n << (1 + RunningLengthBits))
}

// Size returns the number of logical words spanned by the segment h heads.
func Size(h uint64) uint64 {
	return RunningLength(h) + LiteralWords(h)
}

// DiscardFirstWords consumes n logical words from the front of the segment,
// taking them from the run first and the literal words after that.
func DiscardFirstWords(h uint64, n uint64) uint64 {
	rl := RunningLength(h)
	if rl >= n {
		return WithRunningLength(h, rl-n)
	}
	n -= rl
	lit := LiteralWords(h)
	if lit < n {
		panic(fmt.Sprintf("rlw: cannot discard %d words from segment of size %d", n+rl, rl+lit))
	}
	return WithLiteralWords(WithRunningLength(h, 0), lit-n)
}

// Format renders h for debugging.
func Format(h uint64) string {
	return fmt.Sprintf("running bit = %t running length = %d number of lit. words %d",
		RunningBit(h), RunningLength(h), LiteralWords(h))
}
