package x690

import (
	"io"

	"github.com/kishorkunal-raj/asn1"
	"github.com/kishorkunal-raj/asn1/tlv"
)

// Null represents the ASN.1 NULL type. Its encoding carries no content
// octets.
type Null struct{}

// NewNull returns a NULL value.
func NewNull() *Null { return &Null{} }

// ToPrimitive implements [Value].
func (n *Null) ToPrimitive() (Primitive, error) { return n, nil }

// ToDER returns n.
func (n *Null) ToDER() Primitive { return n }

// ToDL returns n.
func (n *Null) ToDL() Primitive { return n }

// Equal reports whether other is NULL as well.
func (n *Null) Equal(other Primitive) bool {
	_, ok := other.(*Null)
	return ok
}

// Hash implements [Primitive].
func (n *Null) Hash() uint32 {
	return hashBytes(uint32(asn1.TagNull), nil)
}

// String returns "NULL".
func (n *Null) String() string { return "NULL" }

func (n *Null) header(Encoding) tlv.Header {
	return tlv.Header{Tag: asn1.Tag{Class: asn1.ClassUniversal, Number: asn1.TagNull}}
}

func (n *Null) contentLen(Encoding) int { return 0 }

func (n *Null) encodeContent(*tlv.Encoder, io.Writer, Encoding) error { return nil }
