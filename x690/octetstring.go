package x690

import (
	"fmt"
	"io"

	"github.com/kishorkunal-raj/asn1"
	"github.com/kishorkunal-raj/asn1/tlv"
)

// OctetString represents the ASN.1 OCTET STRING type. BER permits a
// constructed encoding where the value is segmented into nested octet
// strings; a decoded segmented string remembers its segments so that BER
// re-encoding reproduces them. DL and DER always use the collapsed primitive
// form.
type OctetString struct {
	bytes    []byte
	segments []*OctetString // non-nil iff decoded from a constructed encoding
	indef    bool
}

// NewOctetString returns an OCTET STRING with the given content octets.
func NewOctetString(b []byte) *OctetString {
	return &OctetString{bytes: b}
}

// newSegmentedOctetString joins decoded segments into a single octet string
// that retains its constructed BER form.
func newSegmentedOctetString(segments []*OctetString, indef bool) *OctetString {
	n := 0
	for _, s := range segments {
		n += len(s.bytes)
	}
	b := make([]byte, 0, n)
	for _, s := range segments {
		b = append(b, s.bytes...)
	}
	return &OctetString{bytes: b, segments: segments, indef: indef}
}

// Bytes returns the content octets of s. For a segmented string this is the
// concatenation of all segments. The returned slice must not be modified.
func (s *OctetString) Bytes() []byte { return s.bytes }

// Len returns the number of content octets of s.
func (s *OctetString) Len() int { return len(s.bytes) }

// ToPrimitive implements [Value].
func (s *OctetString) ToPrimitive() (Primitive, error) { return s, nil }

// ToDER returns the collapsed primitive form of s.
func (s *OctetString) ToDER() Primitive { return s.ToDL() }

// ToDL returns the collapsed primitive form of s.
func (s *OctetString) ToDL() Primitive {
	if s.segments == nil && !s.indef {
		return s
	}
	return &OctetString{bytes: s.bytes}
}

// Equal reports whether other is an OCTET STRING with the same content
// octets, regardless of segmentation.
func (s *OctetString) Equal(other Primitive) bool {
	o, ok := other.(*OctetString)
	return ok && string(s.bytes) == string(o.bytes)
}

// Hash implements [Primitive].
func (s *OctetString) Hash() uint32 {
	return hashBytes(uint32(asn1.TagOctetString), s.bytes)
}

// String returns a hexadecimal representation of s.
func (s *OctetString) String() string {
	return fmt.Sprintf("#%X", s.bytes)
}

func (s *OctetString) header(enc Encoding) tlv.Header {
	tag := asn1.Tag{Class: asn1.ClassUniversal, Number: asn1.TagOctetString}
	if enc == BER && s.segments != nil {
		return headerForLen(tag, s.indef, enc, s.contentLen(enc))
	}
	return tlv.Header{Tag: tag, Length: len(s.bytes)}
}

func (s *OctetString) contentLen(enc Encoding) int {
	if enc == BER && s.segments != nil {
		n := 0
		for _, seg := range s.segments {
			n += encodedLen(seg, enc)
		}
		return n
	}
	return len(s.bytes)
}

func (s *OctetString) encodeContent(e *tlv.Encoder, w io.Writer, enc Encoding) error {
	if enc == BER && s.segments != nil {
		for _, seg := range s.segments {
			if err := encodePrimitive(e, seg, enc); err != nil {
				return err
			}
		}
		return nil
	}
	return writeContent(w, s.bytes)
}
