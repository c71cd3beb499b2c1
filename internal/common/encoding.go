package common

import (
	"encoding/binary"
	"io"
)

// Integers are big-endian, matching the established EWAH stream layout.

func WriteInt32(w io.Writer, v int32) (int, error) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(v))
	return w.Write(buf[:])
}

func ReadInt32(r io.Reader) (int32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(buf[:])), nil
}

func WriteUint64(w io.Writer, v uint64) (int, error) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	return w.Write(buf[:])
}

func ReadUint64(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}

// WriteUint64s writes words back to back in a single Write call.
func WriteUint64s(w io.Writer, words []uint64) (int, error) {
	if len(words) == 0 {
		return 0, nil
	}
	buf := make([]byte, 8*len(words))
	for i, v := range words {
		binary.BigEndian.PutUint64(buf[8*i:], v)
	}
	return w.Write(buf)
}

// readChunkWords bounds how many words ReadUint64s buffers ahead of the
// data actually received.
const readChunkWords = 4096

// ReadUint64s reads exactly n words. Memory grows with the words read, not
// with n, so a bogus count on a short stream fails with ErrUnexpectedEOF.
func ReadUint64s(r io.Reader, n int) ([]uint64, error) {
	if n == 0 {
		return nil, nil
	}
	words := make([]uint64, 0, min(n, readChunkWords))
	buf := make([]byte, 8*min(n, readChunkWords))
	for len(words) < n {
		chunk := buf[:8*min(n-len(words), readChunkWords)]
		if _, err := io.ReadFull(r, chunk); err != nil {
			if err == io.EOF && len(words) > 0 {
				err = io.ErrUnexpectedEOF
			}
			return nil, err
		}
		for i := 0; i < len(chunk); i += 8 {
			words = append(words, binary.BigEndian.Uint64(chunk[i:]))
		}
	}
	return words, nil
}
