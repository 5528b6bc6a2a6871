package x690

import (
	"bytes"
	"io"
	"slices"

	"github.com/kishorkunal-raj/asn1"
	"github.com/kishorkunal-raj/asn1/tlv"
)

// Set represents the ASN.1 SET and SET OF types: a collection of primitives
// without meaningful order. Insertion order is preserved and reproduced by
// the BER and DL encodings; DER sorts the elements into ascending
// lexicographic order of their own DER encodings as required by X.690 11.6.
type Set struct {
	elements []Primitive
	indef    bool
}

// NewSet returns a SET of the given elements. Elements must not be nil.
func NewSet(elements ...Primitive) *Set {
	checkElements(elements)
	return &Set{elements: elements}
}

// Len returns the number of elements of s.
func (s *Set) Len() int { return len(s.elements) }

// At returns the element at the given index in insertion order. At panics if
// the index is out of range.
func (s *Set) At(i int) Primitive { return s.elements[i] }

// Elements returns the elements of s in insertion order. The returned slice
// must not be modified.
func (s *Set) Elements() []Primitive { return s.elements }

// ToPrimitive implements [Value].
func (s *Set) ToPrimitive() (Primitive, error) { return s, nil }

// ToDER returns the canonical form of s: elements converted to DER and
// sorted by their encodings.
func (s *Set) ToDER() Primitive {
	return &Set{elements: sortedByDER(convertElements(s.elements, Primitive.ToDER))}
}

// ToDL returns the definite-length form of s. Element order is preserved.
func (s *Set) ToDL() Primitive {
	return &Set{elements: convertElements(s.elements, Primitive.ToDL)}
}

// sortedByDER returns the elements sorted into ascending lexicographic order
// of their DER encodings. The sort is stable so equal encodings keep their
// relative order.
func sortedByDER(els []Primitive) []Primitive {
	sorted := slices.Clone(els)
	encodings := make(map[Primitive][]byte, len(sorted))
	for _, el := range sorted {
		encodings[el] = derEncoding(el)
	}
	slices.SortStableFunc(sorted, func(a, b Primitive) int {
		return bytes.Compare(encodings[a], encodings[b])
	})
	return sorted
}

// Equal reports whether other is a SET with the same elements, regardless of
// insertion order.
func (s *Set) Equal(other Primitive) bool {
	o, ok := other.(*Set)
	if !ok || len(s.elements) != len(o.elements) {
		return false
	}
	a := sortedByDER(s.elements)
	b := sortedByDER(o.elements)
	for i := range a {
		if !a[i].ToDER().Equal(b[i].ToDER()) {
			return false
		}
	}
	return true
}

// Hash implements [Primitive]. The hash is independent of insertion order.
func (s *Set) Hash() uint32 {
	h := uint32(asn1.TagSet) ^ 2166136261
	for _, el := range s.elements {
		h ^= el.Hash()
	}
	return h
}

// String returns a readable representation of s.
func (s *Set) String() string {
	return elementsString("SET", s.elements)
}

func (s *Set) header(enc Encoding) tlv.Header {
	tag := asn1.Tag{Class: asn1.ClassUniversal, Number: asn1.TagSet}
	return headerForLen(tag, s.indef, enc, s.contentLen(enc))
}

func (s *Set) contentLen(enc Encoding) int {
	return contentsLen(s.elements, enc)
}

func (s *Set) encodeContent(e *tlv.Encoder, _ io.Writer, enc Encoding) error {
	els := s.elements
	if enc == DER {
		els = sortedByDER(els)
	}
	return encodeElements(e, els, enc)
}
