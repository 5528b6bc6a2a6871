package x690

import (
	"io"
	"strings"

	"github.com/kishorkunal-raj/asn1"
	"github.com/kishorkunal-raj/asn1/tlv"
)

// Sequence represents the ASN.1 SEQUENCE and SEQUENCE OF types: an ordered
// collection of primitives. A sequence decoded from an indefinite-length
// encoding reproduces that form when re-encoded as BER.
type Sequence struct {
	elements []Primitive
	indef    bool
}

// NewSequence returns a SEQUENCE of the given elements. Elements must not be
// nil.
func NewSequence(elements ...Primitive) *Sequence {
	checkElements(elements)
	return &Sequence{elements: elements}
}

// checkElements guards constructed types against nil children.
func checkElements(els []Primitive) {
	for _, el := range els {
		if el == nil {
			panic("x690: nil element")
		}
	}
}

// Len returns the number of elements of s.
func (s *Sequence) Len() int { return len(s.elements) }

// At returns the element at the given index. At panics if the index is out
// of range.
func (s *Sequence) At(i int) Primitive { return s.elements[i] }

// Elements returns the elements of s. The returned slice must not be
// modified.
func (s *Sequence) Elements() []Primitive { return s.elements }

// ToPrimitive implements [Value].
func (s *Sequence) ToPrimitive() (Primitive, error) { return s, nil }

// ToDER returns the canonical form of s with all elements converted to their
// DER forms.
func (s *Sequence) ToDER() Primitive {
	return &Sequence{elements: convertElements(s.elements, Primitive.ToDER)}
}

// ToDL returns the definite-length form of s.
func (s *Sequence) ToDL() Primitive {
	return &Sequence{elements: convertElements(s.elements, Primitive.ToDL)}
}

// convertElements maps a per-element conversion over els.
func convertElements(els []Primitive, conv func(Primitive) Primitive) []Primitive {
	out := make([]Primitive, len(els))
	for i, el := range els {
		out[i] = conv(el)
	}
	return out
}

// Equal reports whether other is a SEQUENCE with pointwise equal elements.
func (s *Sequence) Equal(other Primitive) bool {
	o, ok := other.(*Sequence)
	if !ok || len(s.elements) != len(o.elements) {
		return false
	}
	for i, el := range s.elements {
		if !el.Equal(o.elements[i]) {
			return false
		}
	}
	return true
}

// Hash implements [Primitive].
func (s *Sequence) Hash() uint32 {
	h := uint32(asn1.TagSequence) ^ 2166136261
	for _, el := range s.elements {
		h = h*31 + el.Hash()
	}
	return h
}

// String returns a readable representation of s.
func (s *Sequence) String() string {
	return elementsString("SEQUENCE", s.elements)
}

func elementsString(name string, els []Primitive) string {
	var b strings.Builder
	b.WriteString(name)
	b.WriteString(" {")
	for i, el := range els {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(el.String())
	}
	b.WriteString("}")
	return b.String()
}

func (s *Sequence) header(enc Encoding) tlv.Header {
	tag := asn1.Tag{Class: asn1.ClassUniversal, Number: asn1.TagSequence}
	return headerForLen(tag, s.indef, enc, s.contentLen(enc))
}

func (s *Sequence) contentLen(enc Encoding) int {
	return contentsLen(s.elements, enc)
}

func (s *Sequence) encodeContent(e *tlv.Encoder, _ io.Writer, enc Encoding) error {
	return encodeElements(e, s.elements, enc)
}
