package ewah

type Options struct {
	// BufferSize is the initial capacity, in 64-bit words, of a new bitmap.
	BufferSize int
}

var DefaultOptions = Options{
	BufferSize: 512,
}

type Option func(*Options)

func WithBufferSize(words int) Option {
	return func(o *Options) {
		o.BufferSize = words
	}
}
