package ewah

// PositionIterator produces the positions of set bits in increasing order.
// Next returns false once the positions are exhausted. An iterator is
// single pass; create a new one to start over. Mutating the bitmap while an
// iterator is live is unsupported.
type PositionIterator interface {
	Next() (uint64, bool)
}
