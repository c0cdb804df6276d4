package bitbuffer

import (
	"errors"
	"fmt"
)

// ErrShortRead is returned when a read runs past the end of the row.
var ErrShortRead = errors.New("bitbuffer: read past end of row")

// Reader consumes a row MSB-first: the first bit read becomes the highest
// order bit of the returned value.
type Reader struct {
	row Row
	pos int
}

// NewReader returns a reader positioned at the first bit of row.
func NewReader(row Row) *Reader {
	return &Reader{row: row}
}

// Remaining returns the number of unread bits.
func (r *Reader) Remaining() int { return r.row.Len() - r.pos }

// ReadBit returns the next bit.
func (r *Reader) ReadBit() (int, error) {
	if r.Remaining() < 1 {
		return 0, ErrShortRead
	}
	bit := r.row.Bit(r.pos)
	r.pos++
	return bit, nil
}

// ReadBits reads n bits (at most 64) as an unsigned big-endian value.
func (r *Reader) ReadBits(n int) (uint64, error) {
	if n < 0 || n > 64 {
		return 0, fmt.Errorf("bitbuffer: cannot read %d bits at once", n)
	}
	if r.Remaining() < n {
		return 0, fmt.Errorf("%w: want %d bits, have %d", ErrShortRead, n, r.Remaining())
	}
	var v uint64
	for i := 0; i < n; i++ {
		v = v<<1 | uint64(r.row.Bit(r.pos+i))
	}
	r.pos += n
	return v, nil
}

// Skip advances past n bits.
func (r *Reader) Skip(n int) error {
	if n < 0 || r.Remaining() < n {
		return fmt.Errorf("%w: skip %d bits, have %d", ErrShortRead, n, r.Remaining())
	}
	r.pos += n
	return nil
}
