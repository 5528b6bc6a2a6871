package x690

import (
	"fmt"
	"io"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/kishorkunal-raj/asn1"
	"github.com/kishorkunal-raj/asn1/tlv"
)

// String represents the ASN.1 restricted character string types as well as
// ObjectDescriptor. The ASN.1 type is identified by its universal tag number;
// the value is held as a Go string. For BMPString and UniversalString the
// content octets use UTF-16BE and UTF-32BE respectively, all other types
// store their bytes verbatim.
type String struct {
	tag   uint
	str   string
	bytes []byte // content octets
}

// NewUTF8String returns a UTF8String. s must be valid UTF-8.
func NewUTF8String(s string) (*String, error) {
	if !utf8.ValidString(s) {
		return nil, fmt.Errorf("%w: invalid UTF-8", asn1.ErrInvalidArgument)
	}
	return newRawString(asn1.TagUTF8String, s), nil
}

// NewNumericString returns a NumericString. s may only contain the digits
// 0-9 and space.
func NewNumericString(s string) (*String, error) {
	for i := 0; i < len(s); i++ {
		if !isNumeric(s[i]) {
			return nil, fmt.Errorf("%w: invalid NumericString character %q", asn1.ErrInvalidArgument, s[i])
		}
	}
	return newRawString(asn1.TagNumericString, s), nil
}

// NewPrintableString returns a PrintableString. s may only contain characters
// of the ASN.1 printable set.
func NewPrintableString(s string) (*String, error) {
	for i := 0; i < len(s); i++ {
		if !isPrintable(s[i]) {
			return nil, fmt.Errorf("%w: invalid PrintableString character %q", asn1.ErrInvalidArgument, s[i])
		}
	}
	return newRawString(asn1.TagPrintableString, s), nil
}

// NewIA5String returns an IA5String. s may only contain ASCII characters.
func NewIA5String(s string) (*String, error) {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return nil, fmt.Errorf("%w: invalid IA5String character", asn1.ErrInvalidArgument)
		}
	}
	return newRawString(asn1.TagIA5String, s), nil
}

// NewVisibleString returns a VisibleString. s may only contain visible ASCII
// characters.
func NewVisibleString(s string) (*String, error) {
	for i := 0; i < len(s); i++ {
		if s[i] < ' ' || s[i] >= 0x7f {
			return nil, fmt.Errorf("%w: invalid VisibleString character", asn1.ErrInvalidArgument)
		}
	}
	return newRawString(asn1.TagVisibleString, s), nil
}

// NewGeneralString returns a GeneralString. The character set is not
// validated.
func NewGeneralString(s string) *String { return newRawString(asn1.TagGeneralString, s) }

// NewGraphicString returns a GraphicString. The character set is not
// validated.
func NewGraphicString(s string) *String { return newRawString(asn1.TagGraphicString, s) }

// NewVideotexString returns a VideotexString. The character set is not
// validated.
func NewVideotexString(s string) *String { return newRawString(asn1.TagVideotexString, s) }

// NewT61String returns a T61String (TeletexString). The character set is not
// validated.
func NewT61String(s string) *String { return newRawString(asn1.TagT61String, s) }

// NewObjectDescriptor returns an ObjectDescriptor, whose underlying type is
// GraphicString.
func NewObjectDescriptor(s string) *String { return newRawString(asn1.TagObjectDescriptor, s) }

// NewBMPString returns a BMPString. s must be valid UTF-8 and may only
// contain characters of the Basic Multilingual Plane.
func NewBMPString(s string) (*String, error) {
	if !utf8.ValidString(s) {
		return nil, fmt.Errorf("%w: invalid UTF-8", asn1.ErrInvalidArgument)
	}
	units := make([]byte, 0, 2*len(s))
	for _, r := range s {
		if r > 0xffff || r >= 0xd800 && r < 0xe000 {
			return nil, fmt.Errorf("%w: character outside the Basic Multilingual Plane", asn1.ErrInvalidArgument)
		}
		units = append(units, byte(r>>8), byte(r))
	}
	return &String{tag: asn1.TagBMPString, str: s, bytes: units}, nil
}

// NewUniversalString returns a UniversalString. s must be valid UTF-8.
func NewUniversalString(s string) (*String, error) {
	if !utf8.ValidString(s) {
		return nil, fmt.Errorf("%w: invalid UTF-8", asn1.ErrInvalidArgument)
	}
	units := make([]byte, 0, 4*len(s))
	for _, r := range s {
		units = append(units, byte(r>>24), byte(r>>16), byte(r>>8), byte(r))
	}
	return &String{tag: asn1.TagUniversalString, str: s, bytes: units}, nil
}

func newRawString(tag uint, s string) *String {
	return &String{tag: tag, str: s, bytes: []byte(s)}
}

// newStringContent decodes content octets of the string type identified by
// tag.
func newStringContent(tag uint, b []byte) (*String, error) {
	switch tag {
	case asn1.TagUTF8String:
		if !utf8.Valid(b) {
			return nil, fmt.Errorf("%w: invalid UTF-8 in UTF8String", asn1.ErrStructure)
		}
	case asn1.TagNumericString:
		for _, c := range b {
			if !isNumeric(c) {
				return nil, fmt.Errorf("%w: invalid NumericString character %q", asn1.ErrStructure, c)
			}
		}
	case asn1.TagPrintableString:
		for _, c := range b {
			if !isPrintable(c) {
				return nil, fmt.Errorf("%w: invalid PrintableString character %q", asn1.ErrStructure, c)
			}
		}
	case asn1.TagIA5String:
		for _, c := range b {
			if c >= utf8.RuneSelf {
				return nil, fmt.Errorf("%w: invalid IA5String character", asn1.ErrStructure)
			}
		}
	case asn1.TagBMPString:
		if len(b)%2 != 0 {
			return nil, fmt.Errorf("%w: odd number of BMPString content octets", asn1.ErrStructure)
		}
		units := make([]uint16, len(b)/2)
		for i := range units {
			units[i] = uint16(b[2*i])<<8 | uint16(b[2*i+1])
		}
		return &String{tag: tag, str: string(utf16.Decode(units)), bytes: b}, nil
	case asn1.TagUniversalString:
		if len(b)%4 != 0 {
			return nil, fmt.Errorf("%w: UniversalString content octets not a multiple of four", asn1.ErrStructure)
		}
		runes := make([]rune, len(b)/4)
		for i := range runes {
			runes[i] = rune(uint32(b[4*i])<<24 | uint32(b[4*i+1])<<16 | uint32(b[4*i+2])<<8 | uint32(b[4*i+3]))
		}
		return &String{tag: tag, str: string(runes), bytes: b}, nil
	}
	return &String{tag: tag, str: string(b), bytes: b}, nil
}

// isNumeric reports whether b can appear in an ASN.1 NumericString.
func isNumeric(b byte) bool {
	return '0' <= b && b <= '9' || b == ' '
}

// isPrintable reports whether b is in the ASN.1 PrintableString set. The
// characters '*' and '&' are also accepted, reflecting their widespread use
// in deployed certificates despite not being technically allowed.
func isPrintable(b byte) bool {
	return 'a' <= b && b <= 'z' ||
		'A' <= b && b <= 'Z' ||
		'0' <= b && b <= '9' ||
		'\'' <= b && b <= ')' ||
		'+' <= b && b <= '/' ||
		b == ' ' || b == ':' || b == '=' || b == '?' ||
		b == '*' || b == '&'
}

// TagNumber returns the universal tag number identifying the ASN.1 type of
// s.
func (s *String) TagNumber() uint { return s.tag }

// Value returns the string value of s.
func (s *String) Value() string { return s.str }

// ToPrimitive implements [Value].
func (s *String) ToPrimitive() (Primitive, error) { return s, nil }

// ToDER returns s. String contents are already canonical.
func (s *String) ToDER() Primitive { return s }

// ToDL returns s.
func (s *String) ToDL() Primitive { return s }

// Equal reports whether other is a string of the same ASN.1 type with the
// same contents.
func (s *String) Equal(other Primitive) bool {
	o, ok := other.(*String)
	return ok && s.tag == o.tag && string(s.bytes) == string(o.bytes)
}

// Hash implements [Primitive].
func (s *String) Hash() uint32 {
	return hashBytes(uint32(s.tag), s.bytes)
}

// String returns the string value of s.
func (s *String) String() string { return s.str }

func (s *String) header(Encoding) tlv.Header {
	return tlv.Header{Tag: asn1.Tag{Class: asn1.ClassUniversal, Number: s.tag}, Length: len(s.bytes)}
}

func (s *String) contentLen(Encoding) int { return len(s.bytes) }

func (s *String) encodeContent(_ *tlv.Encoder, w io.Writer, _ Encoding) error {
	return writeContent(w, s.bytes)
}
