package construct

import (
	"encoding/binary"
	"io"

	"golang.org/x/exp/constraints"
)

var (
	BE binary.ByteOrder = binary.BigEndian
	LE binary.ByteOrder = binary.LittleEndian
	// Order is the byte order new Reader and Writer values start with.
	// Constructs without their own Order use the Stream's order instead,
	// which WithByteOrder sets and which defaults to BE.
	Order = BE
)

const bufferSize = 4096

var (
	empty   [bufferSize]byte
	discard [bufferSize]byte
)

// discardBytes skips n bytes from r, reusing a shared scratch buffer for
// small skips to avoid allocating on the hot alignment/padding paths.
func discardBytes(r io.Reader, n int64) (int64, error) {
	if n == 0 {
		return 0, nil
	}
	if n < 0 {
		return 0, ErrDiscardNegative
	}
	if n <= bufferSize {
		skip, err := r.Read(discard[:n])
		return int64(skip), err
	}
	return io.CopyN(io.Discard, r, n)
}

// roundup rounds n up to the nearest multiple of align.
func roundup[T constraints.Integer](n, align T) T { return (n + (align - 1)) &^ (align - 1) }
