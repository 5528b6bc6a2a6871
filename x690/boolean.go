package x690

import (
	"io"

	"github.com/kishorkunal-raj/asn1"
	"github.com/kishorkunal-raj/asn1/tlv"
)

// Boolean represents the ASN.1 BOOLEAN type. BER permits any non-zero content
// octet for TRUE; the decoded octet is preserved so that BER re-encoding
// round-trips, while DER always writes the canonical 0xFF.
type Boolean struct {
	value byte
}

// NewBoolean returns a BOOLEAN with the canonical content octet for v.
func NewBoolean(v bool) *Boolean {
	if v {
		return &Boolean{value: 0xff}
	}
	return &Boolean{}
}

// Bool returns the truth value.
func (b *Boolean) Bool() bool {
	return b.value != 0
}

// ToPrimitive implements [Value].
func (b *Boolean) ToPrimitive() (Primitive, error) { return b, nil }

// ToDER returns the canonical form of b with content octet 0xFF or 0x00.
func (b *Boolean) ToDER() Primitive {
	if b.value == 0 || b.value == 0xff {
		return b
	}
	return &Boolean{value: 0xff}
}

// ToDL returns b. The DL form preserves the decoded content octet.
func (b *Boolean) ToDL() Primitive { return b }

// Equal reports whether other is a BOOLEAN with the same truth value.
func (b *Boolean) Equal(other Primitive) bool {
	o, ok := other.(*Boolean)
	return ok && b.Bool() == o.Bool()
}

// Hash implements [Primitive].
func (b *Boolean) Hash() uint32 {
	if b.Bool() {
		return hashBytes(uint32(asn1.TagBoolean), []byte{0xff})
	}
	return hashBytes(uint32(asn1.TagBoolean), []byte{0})
}

// String returns "TRUE" or "FALSE".
func (b *Boolean) String() string {
	if b.Bool() {
		return "TRUE"
	}
	return "FALSE"
}

func (b *Boolean) header(enc Encoding) tlv.Header {
	return tlv.Header{Tag: asn1.Tag{Class: asn1.ClassUniversal, Number: asn1.TagBoolean}, Length: 1}
}

func (b *Boolean) contentLen(Encoding) int { return 1 }

func (b *Boolean) encodeContent(_ *tlv.Encoder, w io.Writer, enc Encoding) error {
	v := b.value
	if enc == DER && v != 0 {
		v = 0xff
	}
	return writeContent(w, []byte{v})
}
