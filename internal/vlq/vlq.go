// Package vlq implements [Variable-length quantity] encoding, the base-128
// representation of unsigned integers used by BER for long-form tag numbers
// and for the subidentifiers of an OBJECT IDENTIFIER. Each octet contributes
// seven bits, most significant group first, with the 0x80 bit marking
// continuation.
//
// [Variable-length quantity]: https://en.wikipedia.org/wiki/Variable-length_quantity
package vlq

import (
	"errors"
	"io"
)

var (
	// ErrNotMinimal indicates a VLQ with leading zero padding octets.
	ErrNotMinimal = errors.New("vlq is not minimally encoded")
	// ErrOverflow indicates a VLQ that exceeds the given bit budget.
	ErrOverflow = errors.New("vlq too large")
)

// Read parses a VLQ from r. X.690 requires VLQs to be minimally encoded, so a
// leading 0x80 octet results in [ErrNotMinimal]. Values that do not fit into
// maxBits bits result in [ErrOverflow]; maxBits must be at most 64.
//
// Read only consumes octets belonging to the encoded value. If r returns
// io.EOF on the first read the returned error is io.EOF as well; an io.EOF on
// any later octet becomes io.ErrUnexpectedEOF.
func Read(r io.ByteReader, maxBits int) (uint64, error) {
	b, err := r.ReadByte()
	if err != nil {
		// io.EOF stays io.EOF
		return 0, err
	}
	if b == 0x80 {
		return 0, ErrNotMinimal
	}

	v := uint64(b & 0x7f)
	for b&0x80 != 0 {
		if v>>(64-7) != 0 {
			return 0, ErrOverflow
		}
		if b, err = r.ReadByte(); err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return 0, err
		}
		v = v<<7 | uint64(b&0x7f)
	}
	if maxBits < 64 && v>>maxBits != 0 {
		return 0, ErrOverflow
	}
	return v, nil
}

// Len returns the number of octets needed to encode n as a VLQ.
func Len(n uint64) int {
	l := 1
	for n >>= 7; n > 0; n >>= 7 {
		l++
	}
	return l
}

// Append appends the VLQ encoding of n to dst and returns the extended slice.
func Append(dst []byte, n uint64) []byte {
	for i := Len(n) - 1; i > 0; i-- {
		dst = append(dst, byte(n>>(i*7))|0x80)
	}
	return append(dst, byte(n)&0x7f)
}
