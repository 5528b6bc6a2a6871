package x690

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kishorkunal-raj/asn1"
	"github.com/kishorkunal-raj/asn1/tlv"
)

// BitString represents the ASN.1 BIT STRING type. The bits are packed into
// bytes with the number of unused (pad) bits of the final byte recorded. The
// content octets consist of the pad count followed by the packed bits; DER
// additionally requires the pad bits themselves to be zero and that
// normalisation is applied on output.
type BitString struct {
	bytes    []byte
	padBits  int
	segments []*BitString // non-nil iff decoded from a constructed encoding
	indef    bool
}

// NewBitString returns a BIT STRING with the given packed bits. padBits is
// the number of unused bits in the final byte and must be between 0 and 7; it
// must be 0 if b is empty.
func NewBitString(b []byte, padBits int) (*BitString, error) {
	if padBits < 0 || padBits > 7 {
		return nil, fmt.Errorf("%w: pad bits must be in range [0,7]", asn1.ErrInvalidArgument)
	}
	if len(b) == 0 && padBits != 0 {
		return nil, fmt.Errorf("%w: empty BIT STRING cannot have pad bits", asn1.ErrInvalidArgument)
	}
	return &BitString{bytes: b, padBits: padBits}, nil
}

// newBitStringContent validates decoded BIT STRING content octets.
func newBitStringContent(b []byte) (*BitString, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("%w: empty BIT STRING contents", asn1.ErrStructure)
	}
	s, err := NewBitString(b[1:], int(b[0]))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid BIT STRING pad count %d", asn1.ErrStructure, b[0])
	}
	return s, nil
}

// newSegmentedBitString joins decoded segments. Only the final segment may
// carry pad bits.
func newSegmentedBitString(segments []*BitString, indef bool) (*BitString, error) {
	var b []byte
	pad := 0
	for i, s := range segments {
		if s.padBits != 0 && i != len(segments)-1 {
			return nil, fmt.Errorf("%w: BIT STRING segment with pad bits before final segment", asn1.ErrStructure)
		}
		b = append(b, s.bytes...)
		pad = s.padBits
	}
	return &BitString{bytes: b, padBits: pad, segments: segments, indef: indef}, nil
}

// Bytes returns the packed bits of s. The returned slice must not be
// modified.
func (s *BitString) Bytes() []byte { return s.bytes }

// PadBits returns the number of unused bits in the final byte.
func (s *BitString) PadBits() int { return s.padBits }

// Len returns the number of bits in s.
func (s *BitString) Len() int {
	return len(s.bytes)*8 - s.padBits
}

// At returns the bit at the given index. At panics if the index is out of
// range.
func (s *BitString) At(i int) int {
	if i < 0 || i >= s.Len() {
		panic("index out of range")
	}
	return int(s.bytes[i/8]>>(7-uint(i%8))) & 1
}

// RightAlign returns a slice where the padding bits are at the beginning. The
// slice may share memory with the bit string.
func (s *BitString) RightAlign() []byte {
	shift := uint(s.padBits)
	if shift == 0 || len(s.bytes) == 0 {
		return s.bytes
	}
	a := make([]byte, len(s.bytes))
	a[0] = s.bytes[0] >> shift
	for i := 1; i < len(s.bytes); i++ {
		a[i] = s.bytes[i-1] << (8 - shift)
		a[i] |= s.bytes[i] >> shift
	}
	return a
}

// ToPrimitive implements [Value].
func (s *BitString) ToPrimitive() (Primitive, error) { return s, nil }

// ToDER returns the canonical form of s: segments collapsed and the unused
// bits of the final byte cleared.
func (s *BitString) ToDER() Primitive {
	if s.segments == nil && !s.indef && !s.dirtyPad() {
		return s
	}
	return &BitString{bytes: s.maskedBytes(), padBits: s.padBits}
}

// ToDL returns the collapsed primitive form of s. The pad bit contents are
// preserved.
func (s *BitString) ToDL() Primitive {
	if s.segments == nil && !s.indef {
		return s
	}
	return &BitString{bytes: s.bytes, padBits: s.padBits}
}

// dirtyPad reports whether any unused bit of the final byte is set.
func (s *BitString) dirtyPad() bool {
	if s.padBits == 0 || len(s.bytes) == 0 {
		return false
	}
	return s.bytes[len(s.bytes)-1]&(1<<uint(s.padBits)-1) != 0
}

// maskedBytes returns the packed bits with the unused bits cleared.
func (s *BitString) maskedBytes() []byte {
	if !s.dirtyPad() {
		return s.bytes
	}
	b := make([]byte, len(s.bytes))
	copy(b, s.bytes)
	b[len(b)-1] &^= 1<<uint(s.padBits) - 1
	return b
}

// Equal reports whether other is a BIT STRING with the same bits. Unused pad
// bits do not participate in the comparison.
func (s *BitString) Equal(other Primitive) bool {
	o, ok := other.(*BitString)
	return ok && s.padBits == o.padBits && string(s.maskedBytes()) == string(o.maskedBytes())
}

// Hash implements [Primitive].
func (s *BitString) Hash() uint32 {
	return hashBytes(uint32(asn1.TagBitString)^uint32(s.padBits)<<8, s.maskedBytes())
}

// String formats s into a readable binary representation, grouped into bytes.
func (s *BitString) String() string {
	var sb strings.Builder
	for i, b := range s.bytes {
		if i > 0 {
			sb.WriteByte(' ')
		}
		n := 8
		if i == len(s.bytes)-1 {
			n -= s.padBits
			b >>= uint(s.padBits)
		}
		v := strconv.FormatUint(uint64(b), 2)
		sb.WriteString(strings.Repeat("0", n-len(v)))
		sb.WriteString(v)
	}
	return sb.String()
}

func (s *BitString) header(enc Encoding) tlv.Header {
	tag := asn1.Tag{Class: asn1.ClassUniversal, Number: asn1.TagBitString}
	if enc == BER && s.segments != nil {
		return headerForLen(tag, s.indef, enc, s.contentLen(enc))
	}
	return tlv.Header{Tag: tag, Length: 1 + len(s.bytes)}
}

func (s *BitString) contentLen(enc Encoding) int {
	if enc == BER && s.segments != nil {
		n := 0
		for _, seg := range s.segments {
			n += encodedLen(seg, enc)
		}
		return n
	}
	return 1 + len(s.bytes)
}

func (s *BitString) encodeContent(e *tlv.Encoder, w io.Writer, enc Encoding) error {
	if enc == BER && s.segments != nil {
		for _, seg := range s.segments {
			if err := encodePrimitive(e, seg, enc); err != nil {
				return err
			}
		}
		return nil
	}
	b := s.bytes
	if enc == DER {
		b = s.maskedBytes()
	}
	if err := writeContent(w, []byte{byte(s.padBits)}); err != nil {
		return err
	}
	return writeContent(w, b)
}
