package x690

import (
	"fmt"
	"io"
	"strings"

	"github.com/kishorkunal-raj/asn1"
	"github.com/kishorkunal-raj/asn1/tlv"
)

// External represents the ASN.1 EXTERNAL type: a value whose abstract syntax
// is identified by reference. The direct reference, indirect reference and
// data value descriptor are optional; the encoding discriminator selects how
// the content is interpreted.
type External struct {
	directReference     *ObjectIdentifier
	indirectReference   *Integer
	dataValueDescriptor Primitive
	encoding            int
	externalContent     Primitive
}

// EXTERNAL encoding discriminator values, see X.690 8.18.
const (
	// ExternalSingleASN1Type denotes content carrying a nested ASN.1 value.
	ExternalSingleASN1Type = 0
	// ExternalOctetAligned denotes content carried as an OCTET STRING.
	ExternalOctetAligned = 1
	// ExternalArbitrary denotes content carried as a BIT STRING.
	ExternalArbitrary = 2
)

// NewExternal returns an EXTERNAL value. direct, indirect and descriptor may
// be nil; encoding must be 0, 1 or 2 and content must not be nil.
func NewExternal(direct *ObjectIdentifier, indirect *Integer, descriptor Primitive, encoding int, content Primitive) (*External, error) {
	if encoding < ExternalSingleASN1Type || encoding > ExternalArbitrary {
		return nil, fmt.Errorf("%w: invalid encoding value %d", asn1.ErrInvalidArgument, encoding)
	}
	if content == nil {
		return nil, fmt.Errorf("%w: nil external content", asn1.ErrInvalidArgument)
	}
	return &External{
		directReference:     direct,
		indirectReference:   indirect,
		dataValueDescriptor: descriptor,
		encoding:            encoding,
		externalContent:     content,
	}, nil
}

// newExternalFromElements builds an EXTERNAL from the decoded contents of its
// constructed encoding: an optional OBJECT IDENTIFIER, an optional INTEGER,
// an optional descriptor that is anything but a tagged value, and a mandatory
// final tagged value whose tag number selects the encoding.
func newExternalFromElements(els []Primitive) (*External, error) {
	e := &External{}
	i := 0
	next := func() (Primitive, error) {
		if i >= len(els) {
			return nil, fmt.Errorf("%w: too few values in EXTERNAL", asn1.ErrStructure)
		}
		el := els[i]
		i++
		return el, nil
	}

	el, err := next()
	if err != nil {
		return nil, err
	}
	if oid, ok := el.(*ObjectIdentifier); ok {
		e.directReference = oid
		if el, err = next(); err != nil {
			return nil, err
		}
	}
	if n, ok := el.(*Integer); ok {
		e.indirectReference = n
		if el, err = next(); err != nil {
			return nil, err
		}
	}
	if _, ok := el.(*TaggedObject); !ok {
		e.dataValueDescriptor = el
		if el, err = next(); err != nil {
			return nil, err
		}
	}

	tagged, ok := el.(*TaggedObject)
	if !ok {
		return nil, fmt.Errorf("%w: no tagged value in EXTERNAL", asn1.ErrStructure)
	}
	if i != len(els) {
		return nil, fmt.Errorf("%w: unexpected values after EXTERNAL content", asn1.ErrStructure)
	}
	if tagged.TagNo() > ExternalArbitrary {
		return nil, fmt.Errorf("%w: invalid EXTERNAL encoding value %d", asn1.ErrStructure, tagged.TagNo())
	}
	e.encoding = int(tagged.TagNo())
	e.externalContent = tagged.Inner()
	return e, nil
}

// DirectReference returns the direct reference OBJECT IDENTIFIER, or nil.
func (e *External) DirectReference() *ObjectIdentifier { return e.directReference }

// IndirectReference returns the indirect reference INTEGER, or nil.
func (e *External) IndirectReference() *Integer { return e.indirectReference }

// DataValueDescriptor returns the data value descriptor, or nil.
func (e *External) DataValueDescriptor() Primitive { return e.dataValueDescriptor }

// EncodingType returns the encoding discriminator: 0 for single-ASN1-type, 1
// for octet-aligned, 2 for arbitrary.
func (e *External) EncodingType() int { return e.encoding }

// ExternalContent returns the content value.
func (e *External) ExternalContent() Primitive { return e.externalContent }

// elements returns the encoded fields of e in order, terminating in the
// explicitly tagged content.
func (e *External) elements() []Primitive {
	var els []Primitive
	if e.directReference != nil {
		els = append(els, e.directReference)
	}
	if e.indirectReference != nil {
		els = append(els, e.indirectReference)
	}
	if e.dataValueDescriptor != nil {
		els = append(els, e.dataValueDescriptor)
	}
	tagged, err := NewTaggedObject(true, asn1.ClassContextSpecific, uint(e.encoding), e.externalContent)
	if err != nil {
		panic("x690: " + err.Error())
	}
	return append(els, tagged)
}

// ToPrimitive implements [Value].
func (e *External) ToPrimitive() (Primitive, error) { return e, nil }

// ToDER returns the canonical form of e with all fields converted.
func (e *External) ToDER() Primitive {
	return e.convert(Primitive.ToDER)
}

// ToDL returns the definite-length form of e.
func (e *External) ToDL() Primitive {
	return e.convert(Primitive.ToDL)
}

func (e *External) convert(conv func(Primitive) Primitive) Primitive {
	out := &External{encoding: e.encoding, externalContent: conv(e.externalContent)}
	if e.directReference != nil {
		out.directReference = conv(e.directReference).(*ObjectIdentifier)
	}
	if e.indirectReference != nil {
		out.indirectReference = conv(e.indirectReference).(*Integer)
	}
	if e.dataValueDescriptor != nil {
		out.dataValueDescriptor = conv(e.dataValueDescriptor)
	}
	return out
}

// Equal reports whether other is an EXTERNAL with pointwise equal fields.
func (e *External) Equal(other Primitive) bool {
	o, ok := other.(*External)
	if !ok || e.encoding != o.encoding {
		return false
	}
	if (e.directReference == nil) != (o.directReference == nil) ||
		e.directReference != nil && !e.directReference.Equal(o.directReference) {
		return false
	}
	if (e.indirectReference == nil) != (o.indirectReference == nil) ||
		e.indirectReference != nil && !e.indirectReference.Equal(o.indirectReference) {
		return false
	}
	if (e.dataValueDescriptor == nil) != (o.dataValueDescriptor == nil) ||
		e.dataValueDescriptor != nil && !e.dataValueDescriptor.Equal(o.dataValueDescriptor) {
		return false
	}
	return e.externalContent.Equal(o.externalContent)
}

// Hash implements [Primitive].
func (e *External) Hash() uint32 {
	var h uint32
	if e.directReference != nil {
		h = e.directReference.Hash()
	}
	if e.indirectReference != nil {
		h ^= e.indirectReference.Hash()
	}
	if e.dataValueDescriptor != nil {
		h ^= e.dataValueDescriptor.Hash()
	}
	return h ^ e.externalContent.Hash()
}

// String returns a readable representation of e.
func (e *External) String() string {
	var b strings.Builder
	b.WriteString("EXTERNAL {")
	if e.directReference != nil {
		b.WriteString("direct-reference " + e.directReference.String() + ", ")
	}
	if e.indirectReference != nil {
		b.WriteString("indirect-reference " + e.indirectReference.String() + ", ")
	}
	if e.dataValueDescriptor != nil {
		b.WriteString("data-value-descriptor " + e.dataValueDescriptor.String() + ", ")
	}
	fmt.Fprintf(&b, "encoding %d: %s}", e.encoding, e.externalContent)
	return b.String()
}

func (e *External) header(enc Encoding) tlv.Header {
	tag := asn1.Tag{Class: asn1.ClassUniversal, Number: asn1.TagExternal}
	return headerForLen(tag, false, enc, e.contentLen(enc))
}

func (e *External) contentLen(enc Encoding) int {
	return contentsLen(e.elements(), enc)
}

func (e *External) encodeContent(out *tlv.Encoder, _ io.Writer, enc Encoding) error {
	return encodeElements(out, e.elements(), enc)
}
