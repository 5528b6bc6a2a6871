// Package x690 implements the semantic layer of the ASN.1 encoding rules
// defined in [Rec. ITU-T X.690]: an immutable in-memory tree of ASN.1 values
// that can be serialised using the Basic Encoding Rules (BER), the
// Distinguished Encoding Rules (DER) and the definite-length variant of BER
// (DL).
//
// # Primitives
//
// Every node of the tree implements the [Primitive] interface. Primitives are
// immutable after construction; a constructed value exclusively owns its
// children and trees can be shared freely across goroutines for reading. The
// target encoding is a parameter of the serialisation pass: the same tree can
// be written as BER, DL or DER via [Encode] or [Marshal]. Values decoded from
// an indefinite-length encoding remember that fact and reproduce it when
// re-encoded as BER; [Primitive.ToDL] and [Primitive.ToDER] return variants
// of a value that have been normalised for the respective encoding rules.
//
// Equality of primitives is defined on the DER form: two primitives are equal
// iff their DER encodings are byte-equal. The Equal methods short-circuit on
// structural equality without serialising. [TaggedObject] is the exception:
// its equality also compares the tagging style and the inner value, so two
// tagged objects with identical encodings can compare unequal.
//
// # Decoding
//
// Two entrypoints materialise encoded values. [Parse] decodes a byte slice
// into a fully materialised tree. [StreamParser] reads from an [io.Reader]
// and defers the contents of constructed values to sub-parsers, which is
// useful for large or indefinite-length inputs. Both accept any valid BER
// (and therefore also DL and DER) input.
//
// Decoding is schema-free: it operates purely on the tag/length/value
// structure. A tagged value therefore cannot know whether its surrounding
// schema intended explicit or implicit tagging; see [TaggedObject] for the
// operations resolving this ambiguity.
//
// [Rec. ITU-T X.690]: https://www.itu.int/rec/T-REC-X.690
package x690

import (
	"bytes"
	"fmt"
	"io"

	"github.com/kishorkunal-raj/asn1"
	"github.com/kishorkunal-raj/asn1/tlv"
)

// Encoding selects one of the supported encoding rule variants for a
// serialisation pass.
type Encoding uint8

const (
	// BER is the permissive form: constructed values decoded from an
	// indefinite-length encoding are written back as indefinite and segmented
	// strings keep their segments.
	BER Encoding = iota
	// DL restricts BER to definite lengths: all lengths are definite and
	// segmented strings are collapsed. Element order is preserved.
	DL
	// DER is the canonical form used for signing: DL plus sorted SET
	// elements, canonical BOOLEAN and normalised BIT STRING padding.
	DER
)

// String returns the conventional name of e.
func (e Encoding) String() string {
	switch e {
	case BER:
		return "BER"
	case DL:
		return "DL"
	case DER:
		return "DER"
	}
	return "Encoding(" + fmt.Sprint(uint8(e)) + ")"
}

// Value is an ASN.1 data value produced by a parser. It is either an already
// materialised [Primitive] or a sub-parser bound to the contents of a
// constructed encoding ([*ConstructedParser], [*TaggedParser]).
type Value interface {
	// ToPrimitive returns the fully materialised form of the value. On a
	// Primitive this is the identity. On a sub-parser this consumes the
	// remaining contents; failures to read the underlying stream are
	// reported as parse errors.
	ToPrimitive() (Primitive, error)
}

// Primitive is an ASN.1 value: a node of an immutable tree that can be
// serialised using any of the [Encoding] variants. The set of implementations
// is fixed by this package.
type Primitive interface {
	Value
	fmt.Stringer

	// ToDER returns the canonical DER form of the value. The result may be
	// the receiver if it is already canonical.
	ToDER() Primitive

	// ToDL returns the definite-length form of the value: indefinite-length
	// memory is cleared and segmented strings are collapsed, but element
	// order and scalar contents are preserved.
	ToDL() Primitive

	// Equal reports whether the DER encodings of the two values are
	// byte-equal. It short-circuits on structure without serialising. For
	// a [TaggedObject] the tagging style and the inner value are compared
	// as well, see [TaggedObject.Equal].
	Equal(other Primitive) bool

	// Hash returns a stable hash consistent with Equal.
	Hash() uint32

	// header returns the TLV header of the value under enc, including the
	// encoded content length (or tlv.LengthIndefinite).
	header(enc Encoding) tlv.Header

	// contentLen returns the number of content octets of the value under
	// enc. Unlike the header length this is always finite.
	contentLen(enc Encoding) int

	// encodeContent writes the content octets. For primitive encodings the
	// bytes are written to w; constructed values write their children
	// through e.
	encodeContent(e *tlv.Encoder, w io.Writer, enc Encoding) error
}

// Choice marks primitives that represent an ASN.1 CHOICE: values that select
// one of several alternatives at encoding time. ASN.1 forbids implicit
// tagging of a CHOICE, so wrapping a Choice in a [TaggedObject] always
// results in explicit tagging.
type Choice interface {
	Primitive
	choiceAlternatives()
}

// Encode writes the encoding of p under enc to w.
func Encode(w io.Writer, p Primitive, enc Encoding) error {
	if p == nil {
		return fmt.Errorf("%w: nil primitive", asn1.ErrInvalidArgument)
	}
	return encodePrimitive(tlv.NewEncoder(w), p, enc)
}

// Marshal returns the encoding of p under enc.
func Marshal(p Primitive, enc Encoding) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil primitive", asn1.ErrInvalidArgument)
	}
	buf := bytes.NewBuffer(make([]byte, 0, encodedLen(p, enc)))
	if err := Encode(buf, p, enc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// encodePrimitive writes the complete TLV of p through e.
func encodePrimitive(e *tlv.Encoder, p Primitive, enc Encoding) error {
	h := p.header(enc)
	w, err := e.WriteHeader(h)
	if err != nil {
		return err
	}
	if !h.Constructed {
		return p.encodeContent(nil, w, enc)
	}
	if err = p.encodeContent(e, nil, enc); err != nil {
		return err
	}
	_, err = e.WriteHeader(tlv.EndOfContents)
	return err
}

// encodedLen returns the total number of octets of the encoding of p under
// enc, including header and, for indefinite-length values, the
// end-of-contents octets.
func encodedLen(p Primitive, enc Encoding) int {
	h := p.header(enc)
	n := h.EncodedLen() + p.contentLen(enc)
	if h.Length == tlv.LengthIndefinite {
		n += 2
	}
	return n
}

// contentsLen sums the encoded lengths of the given children under enc.
func contentsLen(els []Primitive, enc Encoding) int {
	n := 0
	for _, el := range els {
		n += encodedLen(el, enc)
	}
	return n
}

// encodeElements writes the complete TLVs of the given children through e.
func encodeElements(e *tlv.Encoder, els []Primitive, enc Encoding) error {
	for _, el := range els {
		if err := encodePrimitive(e, el, enc); err != nil {
			return err
		}
	}
	return nil
}

// writeContent writes primitive content octets to the value writer handed out
// by the TLV encoder. The writer is nil for empty contents.
func writeContent(w io.Writer, b []byte) error {
	if len(b) == 0 {
		return nil
	}
	_, err := w.Write(b)
	return err
}

// derEncoding returns the DER encoding of p. Serialising a well-formed tree
// into a memory buffer cannot fail.
func derEncoding(p Primitive) []byte {
	b, err := Marshal(p, DER)
	if err != nil {
		panic("x690: " + err.Error())
	}
	return b
}

// headerForLen builds the header of a constructed value, using the
// indefinite-length form when indef is set and BER is selected.
func headerForLen(tag asn1.Tag, indef bool, enc Encoding, length int) tlv.Header {
	h := tlv.Header{Tag: tag, Constructed: true, Length: length}
	if indef && enc == BER {
		h.Length = tlv.LengthIndefinite
	}
	return h
}

// hashBytes is a small FNV-1a style mix used by the Hash implementations.
func hashBytes(seed uint32, b []byte) uint32 {
	h := seed ^ 2166136261
	for _, c := range b {
		h = (h ^ uint32(c)) * 16777619
	}
	return h
}
