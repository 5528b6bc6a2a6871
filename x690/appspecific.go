package x690

import (
	"bytes"
	"fmt"
	"io"

	"github.com/kishorkunal-raj/asn1"
	"github.com/kishorkunal-raj/asn1/tlv"
)

// ApplicationSpecific represents a value carrying an APPLICATION class tag.
// Without schema knowledge such a value is an opaque container: the primitive
// form holds raw content octets, the constructed form holds the decoded child
// values. Unlike CONTEXT tagged values, APPLICATION values are never
// subjected to the explicit-tagging heuristic during decoding, which keeps
// their round-trip byte-exact.
type ApplicationSpecific struct {
	tagNo    uint
	contents []byte      // primitive form
	elements []Primitive // constructed form
	indef    bool
}

// NewApplicationSpecific returns a primitive APPLICATION value with the given
// content octets.
func NewApplicationSpecific(tagNo uint, contents []byte) *ApplicationSpecific {
	return &ApplicationSpecific{tagNo: tagNo, contents: contents}
}

// NewApplicationSpecificConstructed returns a constructed APPLICATION value
// with the given children. Elements must not be nil.
func NewApplicationSpecificConstructed(tagNo uint, elements ...Primitive) *ApplicationSpecific {
	checkElements(elements)
	if elements == nil {
		elements = []Primitive{}
	}
	return &ApplicationSpecific{tagNo: tagNo, elements: elements}
}

// TagNo returns the tag number of a.
func (a *ApplicationSpecific) TagNo() uint { return a.tagNo }

// IsConstructed reports whether a uses the constructed encoding.
func (a *ApplicationSpecific) IsConstructed() bool { return a.elements != nil }

// Contents returns the content octets of a primitive APPLICATION value, or
// nil for the constructed form. The returned slice must not be modified.
func (a *ApplicationSpecific) Contents() []byte { return a.contents }

// Elements returns the children of a constructed APPLICATION value, or nil
// for the primitive form. The returned slice must not be modified.
func (a *ApplicationSpecific) Elements() []Primitive { return a.elements }

// ToPrimitive implements [Value].
func (a *ApplicationSpecific) ToPrimitive() (Primitive, error) { return a, nil }

// ToDER returns the canonical form of a.
func (a *ApplicationSpecific) ToDER() Primitive {
	if a.elements == nil {
		return a
	}
	return &ApplicationSpecific{tagNo: a.tagNo, elements: convertElements(a.elements, Primitive.ToDER)}
}

// ToDL returns the definite-length form of a.
func (a *ApplicationSpecific) ToDL() Primitive {
	if a.elements == nil {
		return a
	}
	return &ApplicationSpecific{tagNo: a.tagNo, elements: convertElements(a.elements, Primitive.ToDL)}
}

// Equal reports whether other is an APPLICATION value with the same tag and
// equal contents.
func (a *ApplicationSpecific) Equal(other Primitive) bool {
	o, ok := other.(*ApplicationSpecific)
	if !ok || a.tagNo != o.tagNo || a.IsConstructed() != o.IsConstructed() {
		return false
	}
	if !a.IsConstructed() {
		return bytes.Equal(a.contents, o.contents)
	}
	if len(a.elements) != len(o.elements) {
		return false
	}
	for i, el := range a.elements {
		if !el.Equal(o.elements[i]) {
			return false
		}
	}
	return true
}

// Hash implements [Primitive].
func (a *ApplicationSpecific) Hash() uint32 {
	if !a.IsConstructed() {
		return hashBytes(uint32(a.tagNo)*7919, a.contents)
	}
	h := uint32(a.tagNo) * 7919
	for _, el := range a.elements {
		h = h*31 + el.Hash()
	}
	return h
}

// String returns the tag in bracket notation followed by the contents.
func (a *ApplicationSpecific) String() string {
	s := "[" + tagText(asn1.ClassApplication, a.tagNo) + "]"
	if a.IsConstructed() {
		return s + elementsString("", a.elements)
	}
	return s + fmt.Sprintf("#%X", a.contents)
}

func (a *ApplicationSpecific) header(enc Encoding) tlv.Header {
	tag := asn1.Tag{Class: asn1.ClassApplication, Number: a.tagNo}
	if a.IsConstructed() {
		return headerForLen(tag, a.indef, enc, a.contentLen(enc))
	}
	return tlv.Header{Tag: tag, Length: len(a.contents)}
}

func (a *ApplicationSpecific) contentLen(enc Encoding) int {
	if a.IsConstructed() {
		return contentsLen(a.elements, enc)
	}
	return len(a.contents)
}

func (a *ApplicationSpecific) encodeContent(e *tlv.Encoder, w io.Writer, enc Encoding) error {
	if a.IsConstructed() {
		return encodeElements(e, a.elements, enc)
	}
	return writeContent(w, a.contents)
}
