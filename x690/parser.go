package x690

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/kishorkunal-raj/asn1"
	"github.com/kishorkunal-raj/asn1/tlv"
)

// StreamParser is a pull-style reader materialising ASN.1 values from an
// octet stream. ReadObject returns primitive values fully materialised;
// constructed values are surfaced as sub-parsers bound to the contents of the
// value, which defers reading for large or indefinite-length inputs.
//
// A parser owns its octet source and is not safe for concurrent use. While a
// sub-parser is live its parent cannot be advanced; a sub-parser becomes
// exhausted when its contents have been fully consumed, which returns control
// to the parent.
type StreamParser struct {
	c parserCore
	s stream
}

// NewStreamParser returns a parser reading from r.
func NewStreamParser(r io.Reader) *StreamParser {
	return NewStreamParserLimit(r, -1)
}

// NewStreamParserLimit returns a parser reading from r that refuses to
// materialise more than limit content octets in total, guarding against
// oversized length headers. A negative limit means no limit.
func NewStreamParserLimit(r io.Reader, limit int) *StreamParser {
	p := &StreamParser{s: stream{d: tlv.NewDecoder(r), budget: limit}}
	p.c.s = &p.s
	return p
}

// SetMaxDepth configures the maximum nesting depth of data values, counted
// as in [tlv.Decoder.SetMaxDepth]. The default is [tlv.DefaultMaxDepth].
func (p *StreamParser) SetMaxDepth(n int) {
	p.s.d.SetMaxDepth(n)
}

// ReadObject reads the next data value from the stream. Primitive encodings
// are returned fully materialised; constructed encodings are returned as
// [*ConstructedParser] or [*TaggedParser]. At the end of the stream
// ReadObject returns [io.EOF].
func (p *StreamParser) ReadObject() (Value, error) {
	return p.c.readObject()
}

// stream is the shared state of a parser tree: the TLV decoder and the
// remaining materialisation budget.
type stream struct {
	d      *tlv.Decoder
	budget int // < 0 means unlimited
}

// take reserves n content octets from the materialisation budget.
func (s *stream) take(n int) error {
	if s.budget < 0 {
		return nil
	}
	if n > s.budget {
		return fmt.Errorf("%w: materialisation budget exhausted", asn1.ErrLimitExceeded)
	}
	s.budget -= n
	return nil
}

// parserCore implements the shared mechanics of the root parser and all
// sub-parsers. Each core consumes the data values at one nesting level;
// reading a constructed value creates a child core that must be exhausted
// before this core may continue.
type parserCore struct {
	s         *stream
	h         tlv.Header // header that opened this core; zero for the root
	parent    *parserCore
	child     *parserCore
	exhausted bool
}

// indef reports whether this core reads the contents of an indefinite-length
// encoding.
func (c *parserCore) indef() bool {
	return c.h.Length == tlv.LengthIndefinite
}

// readObject reads the next data value at this nesting level. At the end of
// the contents io.EOF is returned and the core becomes exhausted.
func (c *parserCore) readObject() (Value, error) {
	if c.exhausted {
		return nil, fmt.Errorf("%w: read past end of data value", asn1.ErrStreamExhausted)
	}
	if c.child != nil {
		return nil, fmt.Errorf("%w: sub-parser has not been exhausted", asn1.ErrChildActive)
	}

	h, val, err := c.s.d.ReadHeader()
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, err
	}
	if h.IsEndOfContents() {
		c.exhausted = true
		if c.parent != nil {
			c.parent.child = nil
		}
		return nil, io.EOF
	}

	if !h.Constructed {
		contents, err := readValue(c.s, val, h.Length)
		if err != nil {
			return nil, err
		}
		if h.Tag.Class == asn1.ClassUniversal {
			return decodePrimitiveContent(h.Tag.Number, contents)
		}
		return createPrimitive(h.Tag.Class, h.Tag.Number, contents), nil
	}

	child := &parserCore{s: c.s, h: h, parent: c}
	c.child = child
	if h.Tag.Class == asn1.ClassUniversal {
		return &ConstructedParser{c: child, as: h.Tag.Number}, nil
	}
	return &TaggedParser{c: child}, nil
}

// readAll consumes the remaining data values at this nesting level,
// materialising each of them.
func (c *parserCore) readAll() ([]Primitive, error) {
	var els []Primitive
	for {
		v, err := c.readObject()
		if err == io.EOF {
			return els, nil
		}
		if err != nil {
			return nil, err
		}
		p, err := v.ToPrimitive()
		if err != nil {
			return nil, err
		}
		els = append(els, p)
	}
}

// readValue materialises the contents of a primitive encoding.
func readValue(s *stream, val io.ReadCloser, n int) ([]byte, error) {
	if err := s.take(n); err != nil {
		return nil, err
	}
	b := make([]byte, n)
	if n > 0 {
		if _, err := io.ReadFull(val, b); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil, fmt.Errorf("%w: unexpected end of stream", asn1.ErrMalformedLength)
			}
			return nil, err
		}
	}
	return b, val.Close()
}

// ConstructedParser reads the contents of a constructed data value carrying
// a universal tag, one child value at a time.
type ConstructedParser struct {
	c  *parserCore
	as uint // universal tag number the contents materialise as
}

// Tag returns the tag of the constructed value this parser reads.
func (p *ConstructedParser) Tag() asn1.Tag { return p.c.h.Tag }

// ReadObject reads the next child value. At the end of the contents io.EOF
// is returned and the parser is exhausted.
func (p *ConstructedParser) ReadObject() (Value, error) {
	return p.c.readObject()
}

// ToPrimitive consumes the remaining contents and materialises the
// constructed value. Failures to read the underlying stream are reported as
// parse errors.
func (p *ConstructedParser) ToPrimitive() (Primitive, error) {
	els, err := p.c.readAll()
	if err != nil {
		return nil, asParseError(err)
	}
	return materialiseUniversal(p.as, els, p.c.indef())
}

// TaggedParser reads the contents of a constructed data value carrying an
// APPLICATION, CONTEXT or PRIVATE class tag. Without schema knowledge the
// parser cannot know whether the tag is explicit or implicit; LoadExplicit
// and LoadImplicit let a caller with schema knowledge choose, while
// ToPrimitive materialises the value with the heuristics of schema-free
// decoding.
type TaggedParser struct {
	c *parserCore
}

// TagClass returns the class of the wrapper tag.
func (p *TaggedParser) TagClass() asn1.Class { return p.c.h.Tag.Class }

// TagNo returns the number of the wrapper tag.
func (p *TaggedParser) TagNo() uint { return p.c.h.Tag.Number }

// IsConstructed reports whether the wrapper uses the constructed encoding.
func (p *TaggedParser) IsConstructed() bool { return p.c.h.Constructed }

// LoadExplicit reads the contents as a complete TLV under the assertion of
// explicit tagging and returns the single contained value.
func (p *TaggedParser) LoadExplicit() (Value, error) {
	if !p.c.h.Constructed {
		return nil, fmt.Errorf("%w: explicit tags must be constructed", asn1.ErrStructure)
	}
	return p.c.readObject()
}

// LoadImplicit reinterprets the contents as a value of the given universal
// base tag. Schema-free reinterpretation is only possible for the SEQUENCE,
// SET and OCTET STRING base tags; other base tags surface
// [asn1.ErrUnimplemented] and should be decoded explicitly by the caller.
func (p *TaggedParser) LoadImplicit(baseTag uint, constructed bool) (Value, error) {
	if constructed != p.c.h.Constructed {
		return nil, fmt.Errorf("%w: constructed bit mismatch on implicit interpretation", asn1.ErrStructure)
	}
	switch baseTag {
	case asn1.TagSequence, asn1.TagSet, asn1.TagOctetString:
		return &ConstructedParser{c: p.c, as: baseTag}, nil
	}
	return nil, fmt.Errorf("%w: implicit interpretation of base tag %d", asn1.ErrUnimplemented, baseTag)
}

// ToPrimitive consumes the remaining contents and materialises the tagged
// value. Failures to read the underlying stream are reported as parse
// errors.
func (p *TaggedParser) ToPrimitive() (Primitive, error) {
	els, err := p.c.readAll()
	if err != nil {
		return nil, asParseError(err)
	}
	return createConstructed(p.c.h.Tag.Class, p.c.h.Tag.Number, p.c.indef(), els)
}

// Parse materialises the single data value encoded in b. Trailing data after
// the value is rejected.
func Parse(b []byte) (Primitive, error) {
	p := NewStreamParser(bytes.NewReader(b))
	v, err := p.ReadObject()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty input", asn1.ErrStructure)
	}
	if err != nil {
		return nil, err
	}
	prim, err := v.ToPrimitive()
	if err != nil {
		return nil, err
	}
	switch _, err = p.ReadObject(); err {
	case io.EOF:
	case nil:
		return nil, fmt.Errorf("%w: trailing data after data value", asn1.ErrStructure)
	default:
		return nil, err
	}
	return prim, nil
}

// materialiseUniversal builds the tree node for a constructed universal
// encoding from its decoded contents.
func materialiseUniversal(tagNo uint, els []Primitive, indef bool) (Primitive, error) {
	switch tagNo {
	case asn1.TagSequence:
		s := NewSequence(els...)
		s.indef = indef
		return s, nil
	case asn1.TagSet:
		s := NewSet(els...)
		s.indef = indef
		return s, nil
	case asn1.TagOctetString:
		segments := make([]*OctetString, len(els))
		for i, el := range els {
			seg, ok := el.(*OctetString)
			if !ok {
				return nil, fmt.Errorf("%w: segment of constructed OCTET STRING has wrong type", asn1.ErrStructure)
			}
			segments[i] = seg
		}
		return newSegmentedOctetString(segments, indef), nil
	case asn1.TagBitString:
		segments := make([]*BitString, len(els))
		for i, el := range els {
			seg, ok := el.(*BitString)
			if !ok {
				return nil, fmt.Errorf("%w: segment of constructed BIT STRING has wrong type", asn1.ErrStructure)
			}
			segments[i] = seg
		}
		return newSegmentedBitString(segments, indef)
	case asn1.TagExternal:
		return newExternalFromElements(els)
	}
	return nil, fmt.Errorf("%w: constructed encoding of universal tag %d", asn1.ErrUnimplemented, tagNo)
}

// decodePrimitiveContent builds the tree node for a primitive universal
// encoding from its content octets.
func decodePrimitiveContent(tagNo uint, b []byte) (Primitive, error) {
	switch tagNo {
	case asn1.TagBoolean:
		if len(b) != 1 {
			return nil, fmt.Errorf("%w: BOOLEAN contents must be a single octet", asn1.ErrStructure)
		}
		return &Boolean{value: b[0]}, nil
	case asn1.TagInteger:
		return newIntegerBytes(b)
	case asn1.TagEnumerated:
		return newEnumeratedBytes(b)
	case asn1.TagBitString:
		return newBitStringContent(b)
	case asn1.TagOctetString:
		return NewOctetString(b), nil
	case asn1.TagNull:
		if len(b) != 0 {
			return nil, fmt.Errorf("%w: NULL contents must be empty", asn1.ErrStructure)
		}
		return NewNull(), nil
	case asn1.TagOID:
		return newOIDContent(b)
	case asn1.TagRelativeOID:
		return newRelativeOIDContent(b)
	case asn1.TagUTF8String, asn1.TagNumericString, asn1.TagPrintableString,
		asn1.TagIA5String, asn1.TagVisibleString, asn1.TagGeneralString,
		asn1.TagGraphicString, asn1.TagVideotexString, asn1.TagTeletexString,
		asn1.TagBMPString, asn1.TagUniversalString, asn1.TagObjectDescriptor:
		return newStringContent(tagNo, b)
	case asn1.TagUTCTime:
		return newUTCTimeString(string(b))
	case asn1.TagGeneralizedTime:
		return newGeneralizedTimeString(string(b))
	case asn1.TagSequence, asn1.TagSet, asn1.TagExternal:
		return nil, fmt.Errorf("%w: universal tag %d must use the constructed encoding", asn1.ErrStructure, tagNo)
	}
	return nil, fmt.Errorf("%w: universal tag %d", asn1.ErrUnimplemented, tagNo)
}

// createConstructed builds the tree node for a constructed non-universal
// encoding. APPLICATION class values become opaque [ApplicationSpecific]
// containers. For the other classes a single child is treated as an
// explicitly tagged value; any other number of children is wrapped into a
// SEQUENCE under an implicit tag.
func createConstructed(class asn1.Class, tagNo uint, indef bool, els []Primitive) (Primitive, error) {
	if els == nil {
		els = []Primitive{}
	}
	if class == asn1.ClassApplication {
		return &ApplicationSpecific{tagNo: tagNo, elements: els, indef: indef}, nil
	}

	var t *TaggedObject
	var err error
	if len(els) == 1 {
		t, err = NewTaggedObject(true, class, tagNo, els[0])
	} else {
		t, err = NewTaggedObject(false, class, tagNo, NewSequence(els...))
	}
	if err != nil {
		return nil, err
	}
	t.indef = indef
	return t, nil
}

// createPrimitive builds the tree node for a primitive non-universal
// encoding. A primitive encoding is necessarily implicit; the contents are
// wrapped as an OCTET STRING (or kept as an opaque APPLICATION container).
func createPrimitive(class asn1.Class, tagNo uint, contents []byte) Primitive {
	if class == asn1.ClassApplication {
		return NewApplicationSpecific(tagNo, contents)
	}
	return &TaggedObject{
		tagClass: class,
		tagNo:    tagNo,
		inner:    NewOctetString(contents),
	}
}

// kindErrors are the classification sentinels of the asn1 package.
var kindErrors = []error{
	asn1.ErrMalformedHeader,
	asn1.ErrMalformedLength,
	asn1.ErrStructure,
	asn1.ErrInvalidArgument,
	asn1.ErrUnimplemented,
	asn1.ErrStreamExhausted,
	asn1.ErrChildActive,
	asn1.ErrLimitExceeded,
}

// asParseError converts stream I/O failures during materialisation into a
// parse error. The caller has committed to an in-memory view of the value;
// classified errors are passed through unchanged.
func asParseError(err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range kindErrors {
		if errors.Is(err, kind) {
			return err
		}
	}
	return fmt.Errorf("%w: reading stream: %w", asn1.ErrStructure, err)
}
