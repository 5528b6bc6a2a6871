package x690

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kishorkunal-raj/asn1"
	"github.com/kishorkunal-raj/asn1/internal/vlq"
	"github.com/kishorkunal-raj/asn1/tlv"
)

// ObjectIdentifier represents the ASN.1 OBJECT IDENTIFIER type. The semantics
// of object identifiers are specified in [Rec. ITU-T X.660]. The value is
// stored both as its arcs and as the encoded content octets.
//
// [Rec. ITU-T X.660]: https://www.itu.int/rec/T-REC-X.660
type ObjectIdentifier struct {
	arcs  []uint64
	bytes []byte
}

// NewObjectIdentifier returns an OBJECT IDENTIFIER with the given arcs. An
// OID has at least two arcs; the first arc must be 0, 1 or 2 and the second
// arc must be below 40 unless the first arc is 2.
func NewObjectIdentifier(arcs ...uint64) (*ObjectIdentifier, error) {
	if len(arcs) < 2 {
		return nil, fmt.Errorf("%w: OBJECT IDENTIFIER needs at least two arcs", asn1.ErrInvalidArgument)
	}
	if arcs[0] > 2 {
		return nil, fmt.Errorf("%w: first arc must be 0, 1 or 2", asn1.ErrInvalidArgument)
	}
	if arcs[0] < 2 && arcs[1] >= 40 {
		return nil, fmt.Errorf("%w: second arc must be below 40", asn1.ErrInvalidArgument)
	}
	b := vlq.Append(nil, arcs[0]*40+arcs[1])
	for _, arc := range arcs[2:] {
		b = vlq.Append(b, arc)
	}
	return &ObjectIdentifier{arcs: arcs, bytes: b}, nil
}

// newOIDContent parses decoded OBJECT IDENTIFIER content octets.
func newOIDContent(b []byte) (*ObjectIdentifier, error) {
	subs, err := parseSubidentifiers(b)
	if err != nil || len(subs) == 0 {
		return nil, fmt.Errorf("%w: invalid OBJECT IDENTIFIER contents", asn1.ErrStructure)
	}
	arcs := make([]uint64, 0, len(subs)+1)
	switch first := subs[0]; {
	case first < 40:
		arcs = append(arcs, 0, first)
	case first < 80:
		arcs = append(arcs, 1, first-40)
	default:
		arcs = append(arcs, 2, first-80)
	}
	arcs = append(arcs, subs[1:]...)
	return &ObjectIdentifier{arcs: arcs, bytes: b}, nil
}

// parseSubidentifiers splits content octets into base-128 subidentifiers.
func parseSubidentifiers(b []byte) ([]uint64, error) {
	r := bytes.NewReader(b)
	var subs []uint64
	for r.Len() > 0 {
		v, err := vlq.Read(r, 64)
		if err != nil {
			return nil, err
		}
		subs = append(subs, v)
	}
	return subs, nil
}

// Arcs returns the arcs of oid. The returned slice must not be modified.
func (oid *ObjectIdentifier) Arcs() []uint64 { return oid.arcs }

// ToPrimitive implements [Value].
func (oid *ObjectIdentifier) ToPrimitive() (Primitive, error) { return oid, nil }

// ToDER returns oid. OBJECT IDENTIFIER contents are already canonical.
func (oid *ObjectIdentifier) ToDER() Primitive { return oid }

// ToDL returns oid.
func (oid *ObjectIdentifier) ToDL() Primitive { return oid }

// Equal reports whether other is an OBJECT IDENTIFIER with the same arcs.
func (oid *ObjectIdentifier) Equal(other Primitive) bool {
	o, ok := other.(*ObjectIdentifier)
	return ok && bytes.Equal(oid.bytes, o.bytes)
}

// Hash implements [Primitive].
func (oid *ObjectIdentifier) Hash() uint32 {
	return hashBytes(uint32(asn1.TagOID), oid.bytes)
}

// String returns the dot-separated notation of oid.
func (oid *ObjectIdentifier) String() string {
	return dottedNotation(oid.arcs)
}

func dottedNotation(arcs []uint64) string {
	var s strings.Builder
	s.Grow(32)
	for i, v := range arcs {
		if i > 0 {
			s.WriteByte('.')
		}
		s.WriteString(strconv.FormatUint(v, 10))
	}
	return s.String()
}

func (oid *ObjectIdentifier) header(Encoding) tlv.Header {
	return tlv.Header{Tag: asn1.Tag{Class: asn1.ClassUniversal, Number: asn1.TagOID}, Length: len(oid.bytes)}
}

func (oid *ObjectIdentifier) contentLen(Encoding) int { return len(oid.bytes) }

func (oid *ObjectIdentifier) encodeContent(_ *tlv.Encoder, w io.Writer, _ Encoding) error {
	return writeContent(w, oid.bytes)
}

// RelativeOID represents the ASN.1 RELATIVE-OID type: a suffix of an object
// identifier. Unlike [ObjectIdentifier] the arcs carry no special first-arc
// semantics.
type RelativeOID struct {
	arcs  []uint64
	bytes []byte
}

// NewRelativeOID returns a RELATIVE-OID with the given arcs.
func NewRelativeOID(arcs ...uint64) (*RelativeOID, error) {
	if len(arcs) == 0 {
		return nil, fmt.Errorf("%w: RELATIVE-OID needs at least one arc", asn1.ErrInvalidArgument)
	}
	var b []byte
	for _, arc := range arcs {
		b = vlq.Append(b, arc)
	}
	return &RelativeOID{arcs: arcs, bytes: b}, nil
}

// newRelativeOIDContent parses decoded RELATIVE-OID content octets.
func newRelativeOIDContent(b []byte) (*RelativeOID, error) {
	subs, err := parseSubidentifiers(b)
	if err != nil || len(subs) == 0 {
		return nil, fmt.Errorf("%w: invalid RELATIVE-OID contents", asn1.ErrStructure)
	}
	return &RelativeOID{arcs: subs, bytes: b}, nil
}

// Arcs returns the arcs of oid. The returned slice must not be modified.
func (oid *RelativeOID) Arcs() []uint64 { return oid.arcs }

// ToPrimitive implements [Value].
func (oid *RelativeOID) ToPrimitive() (Primitive, error) { return oid, nil }

// ToDER returns oid.
func (oid *RelativeOID) ToDER() Primitive { return oid }

// ToDL returns oid.
func (oid *RelativeOID) ToDL() Primitive { return oid }

// Equal reports whether other is a RELATIVE-OID with the same arcs.
func (oid *RelativeOID) Equal(other Primitive) bool {
	o, ok := other.(*RelativeOID)
	return ok && bytes.Equal(oid.bytes, o.bytes)
}

// Hash implements [Primitive].
func (oid *RelativeOID) Hash() uint32 {
	return hashBytes(uint32(asn1.TagRelativeOID), oid.bytes)
}

// String returns the dot-separated notation of oid.
func (oid *RelativeOID) String() string {
	return dottedNotation(oid.arcs)
}

func (oid *RelativeOID) header(Encoding) tlv.Header {
	return tlv.Header{Tag: asn1.Tag{Class: asn1.ClassUniversal, Number: asn1.TagRelativeOID}, Length: len(oid.bytes)}
}

func (oid *RelativeOID) contentLen(Encoding) int { return len(oid.bytes) }

func (oid *RelativeOID) encodeContent(_ *tlv.Encoder, w io.Writer, _ Encoding) error {
	return writeContent(w, oid.bytes)
}
