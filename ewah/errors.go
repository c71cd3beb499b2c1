package ewah

import "errors"

var (
	// ErrNotMonotonic is returned by Set when a position is not beyond every
	// bit already present.
	ErrNotMonotonic = errors.New("ewah: bits must be set in increasing order")

	// ErrSizeOverflow is returned by Set when the logical size would not fit
	// in 64 bits.
	ErrSizeOverflow = errors.New("ewah: size in bits overflows")

	// ErrInvalidFormat is returned when a serialized bitmap is malformed.
	ErrInvalidFormat = errors.New("ewah: invalid serialized bitmap")

	// ErrTooLarge is returned when a bitmap cannot be represented in the
	// serialized format's 32-bit counters.
	ErrTooLarge = errors.New("ewah: bitmap too large to serialize")
)
