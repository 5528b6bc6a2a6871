package x690

import (
	"fmt"
	"io"
	"strconv"

	"github.com/kishorkunal-raj/asn1"
	"github.com/kishorkunal-raj/asn1/tlv"
)

// TaggedObject represents an ASN.1 value preceded by a [n] tag of the
// APPLICATION, CONTEXT or PRIVATE class.
//
// A tagged value decoded without schema knowledge is inherently ambiguous: an
// implicitly tagged value may appear to be explicitly tagged. If the object
// has been decoded from a stream, IsExplicit returning false is authoritative
// while IsExplicit returning true depends on the context under which the
// value was read; use LoadExplicit or LoadImplicit to resolve the ambiguity
// when the schema is known.
type TaggedObject struct {
	tagClass asn1.Class
	tagNo    uint
	explicit bool
	inner    Primitive

	// constructed records the encoded form of the wrapper. For explicit
	// tagging this is necessarily true; for implicit tagging it usually
	// follows the inner value but can differ after LoadImplicit reinterprets
	// a constructed encoding.
	constructed bool

	// innerTLV reports that the contents of the wrapper are the complete TLV
	// of inner even though the wrapper is marked implicit. This arises only
	// from LoadImplicit on a constructed encoding and keeps re-encoding
	// byte-identical to the input.
	innerTLV bool

	indef bool
}

// NewTaggedObject returns a tagged object wrapping inner. The tag class must
// be APPLICATION, CONTEXT or PRIVATE. If inner is a [Choice], the tagging
// style is forced to explicit in accordance with the ASN.1 encoding rules.
func NewTaggedObject(explicit bool, class asn1.Class, tagNo uint, inner Primitive) (*TaggedObject, error) {
	if inner == nil {
		return nil, fmt.Errorf("%w: nil inner object", asn1.ErrInvalidArgument)
	}
	if !class.IsValid() || class == asn1.ClassUniversal {
		return nil, fmt.Errorf("%w: invalid tag class %d", asn1.ErrInvalidArgument, class)
	}
	if _, ok := inner.(Choice); ok {
		explicit = true
	}
	return &TaggedObject{
		tagClass:    class,
		tagNo:       tagNo,
		explicit:    explicit,
		inner:       inner,
		constructed: explicit || inner.header(DL).Constructed,
	}, nil
}

// NewContextTagged returns a tagged object of the CONTEXT class, the most
// common case.
func NewContextTagged(explicit bool, tagNo uint, inner Primitive) (*TaggedObject, error) {
	return NewTaggedObject(explicit, asn1.ClassContextSpecific, tagNo, inner)
}

// TagClass returns the class of the wrapper tag.
func (t *TaggedObject) TagClass() asn1.Class { return t.tagClass }

// TagNo returns the number of the wrapper tag.
func (t *TaggedObject) TagNo() uint { return t.tagNo }

// IsExplicit reports whether the wrapper uses explicit tagging. See the type
// documentation for the limits of this information on decoded values.
func (t *TaggedObject) IsExplicit() bool { return t.explicit }

// Inner returns the wrapped value.
func (t *TaggedObject) Inner() Primitive { return t.inner }

// LoadExplicit returns the inner value under the assertion that the wrapper
// is explicitly tagged. Explicit tags must use the constructed encoding
// (X.690 8.14.2); asserting explicit tagging on a primitive wrapper is a
// structure error.
func (t *TaggedObject) LoadExplicit() (Primitive, error) {
	if !t.constructed {
		return nil, fmt.Errorf("%w: explicit tags must be constructed", asn1.ErrStructure)
	}
	return t.inner, nil
}

// LoadImplicit reinterprets the contents of the wrapper as a value of the
// given universal base tag. constructed must match the encoded form of the
// wrapper.
//
// On a constructed wrapper the contents form a stream of complete TLVs:
// SEQUENCE and SET collect all of them, OCTET STRING joins all of them as
// segments (each must be an OCTET STRING), while any other base tag requires
// a single value carrying that tag. On a primitive wrapper the content octets
// are reinterpreted directly; base tags that always use the constructed
// encoding are rejected and base tags this schema-free core cannot decode
// surface [asn1.ErrUnimplemented].
func (t *TaggedObject) LoadImplicit(baseTag uint, constructed bool) (*TaggedObject, error) {
	if constructed != t.constructed {
		return nil, fmt.Errorf("%w: constructed bit mismatch on implicit interpretation", asn1.ErrStructure)
	}
	if t.constructed {
		return t.loadImplicitConstructed(baseTag)
	}
	oct, ok := t.inner.(*OctetString)
	if !ok {
		// a user-built implicit wrapper already carries its decoded value
		if h := t.inner.header(DL); h.Tag.Class != asn1.ClassUniversal || h.Tag.Number != baseTag {
			return nil, fmt.Errorf("%w: contents carry tag %s, not base tag %d", asn1.ErrStructure, h.Tag, baseTag)
		}
		return t.implicitAround(t.inner, false)
	}
	switch baseTag {
	case asn1.TagSequence, asn1.TagSet, asn1.TagExternal:
		return nil, fmt.Errorf("%w: base tag %d requires a constructed encoding", asn1.ErrStructure, baseTag)
	}
	inner, err := decodePrimitiveContent(baseTag, oct.Bytes())
	if err != nil {
		return nil, err
	}
	return t.implicitAround(inner, false)
}

// loadImplicitConstructed reinterprets a constructed wrapper whose contents
// have already been materialised.
func (t *TaggedObject) loadImplicitConstructed(baseTag uint) (*TaggedObject, error) {
	elements := t.contentElements()
	switch baseTag {
	case asn1.TagSequence:
		return t.implicitAround(NewSequence(elements...), false)
	case asn1.TagSet:
		return t.implicitAround(NewSet(elements...), false)
	case asn1.TagOctetString:
		segments := make([]*OctetString, len(elements))
		for i, el := range elements {
			seg, ok := el.(*OctetString)
			if !ok {
				return nil, fmt.Errorf("%w: segment of constructed OCTET STRING has wrong type", asn1.ErrStructure)
			}
			segments[i] = seg
		}
		return t.implicitAround(newSegmentedOctetString(segments, t.indef), false)
	}
	if len(elements) != 1 {
		return nil, fmt.Errorf("%w: implicit base tag %d requires a single value, got %d", asn1.ErrStructure, baseTag, len(elements))
	}
	el := elements[0]
	h := el.header(DL)
	if h.Tag.Class != asn1.ClassUniversal || h.Tag.Number != baseTag {
		return nil, fmt.Errorf("%w: contents carry tag %s, not base tag %d", asn1.ErrStructure, h.Tag, baseTag)
	}
	return t.implicitAround(el, true)
}

// contentElements returns the TLVs forming the contents of a constructed
// wrapper.
func (t *TaggedObject) contentElements() []Primitive {
	if t.explicit || t.innerTLV {
		return []Primitive{t.inner}
	}
	if seq, ok := t.inner.(*Sequence); ok {
		return seq.Elements()
	}
	return []Primitive{t.inner}
}

// implicitAround derives an implicitly tagged wrapper around inner keeping
// the wire form of t.
func (t *TaggedObject) implicitAround(inner Primitive, innerTLV bool) (*TaggedObject, error) {
	if _, ok := inner.(Choice); ok {
		return nil, fmt.Errorf("%w: CHOICE cannot be implicitly tagged", asn1.ErrStructure)
	}
	return &TaggedObject{
		tagClass:    t.tagClass,
		tagNo:       t.tagNo,
		explicit:    false,
		inner:       inner,
		constructed: t.constructed,
		innerTLV:    innerTLV,
		indef:       t.indef,
	}, nil
}

// ToPrimitive implements [Value].
func (t *TaggedObject) ToPrimitive() (Primitive, error) { return t, nil }

// ToDER returns the canonical form of t with the inner value converted.
func (t *TaggedObject) ToDER() Primitive {
	return &TaggedObject{
		tagClass:    t.tagClass,
		tagNo:       t.tagNo,
		explicit:    t.explicit,
		inner:       t.inner.ToDER(),
		constructed: t.constructed,
		innerTLV:    t.innerTLV,
	}
}

// ToDL returns the definite-length form of t.
func (t *TaggedObject) ToDL() Primitive {
	return &TaggedObject{
		tagClass:    t.tagClass,
		tagNo:       t.tagNo,
		explicit:    t.explicit,
		inner:       t.inner.ToDL(),
		constructed: t.constructed,
		innerTLV:    t.innerTLV,
	}
}

// Equal reports whether other is a tagged object with the same tag, the same
// tagging style and a DER-equal inner value.
func (t *TaggedObject) Equal(other Primitive) bool {
	o, ok := other.(*TaggedObject)
	return ok &&
		t.tagClass == o.tagClass &&
		t.tagNo == o.tagNo &&
		t.explicit == o.explicit &&
		t.inner.Equal(o.inner)
}

// Hash implements [Primitive].
func (t *TaggedObject) Hash() uint32 {
	mark := uint32(0xf0)
	if t.explicit {
		mark = 0x0f
	}
	return uint32(t.tagClass)*7919 ^ uint32(t.tagNo) ^ mark ^ t.inner.Hash()
}

// String returns the tag in bracket notation followed by the inner value.
func (t *TaggedObject) String() string {
	return "[" + tagText(t.tagClass, t.tagNo) + "]" + t.inner.String()
}

// tagText renders the class prefix and number of a tag the way ASN.1
// notation does.
func tagText(class asn1.Class, tagNo uint) string {
	n := strconv.FormatUint(uint64(tagNo), 10)
	switch class {
	case asn1.ClassApplication:
		return "APPLICATION " + n
	case asn1.ClassContextSpecific:
		return "CONTEXT " + n
	case asn1.ClassPrivate:
		return "PRIVATE " + n
	}
	return n
}

// bodyTLV reports whether the contents of the wrapper are the complete TLV of
// the inner value (as opposed to its bare content octets).
func (t *TaggedObject) bodyTLV() bool {
	return t.explicit || t.innerTLV
}

func (t *TaggedObject) header(enc Encoding) tlv.Header {
	tag := asn1.Tag{Class: t.tagClass, Number: t.tagNo}
	constructed := true
	if !t.bodyTLV() {
		// implicit tagging follows the encoded form of the inner value,
		// which may differ between variants (e.g. segmented strings)
		constructed = t.inner.header(enc).Constructed
	}
	h := tlv.Header{Tag: tag, Constructed: constructed, Length: t.contentLen(enc)}
	if t.indef && enc == BER && constructed {
		h.Length = tlv.LengthIndefinite
	}
	return h
}

func (t *TaggedObject) contentLen(enc Encoding) int {
	if t.bodyTLV() {
		return encodedLen(t.inner, enc)
	}
	return t.inner.contentLen(enc)
}

func (t *TaggedObject) encodeContent(e *tlv.Encoder, w io.Writer, enc Encoding) error {
	if t.bodyTLV() {
		return encodePrimitive(e, t.inner, enc)
	}
	// implicit tagging: the identifier of the inner value is replaced by the
	// wrapper tag, only its contents are written
	return t.inner.encodeContent(e, w, enc)
}
