// Package tlv implements streaming encoding and decoding of the
// tag-length-value (TLV) format used by the Basic Encoding Rules (BER) and
// related encoding rules as specified in [Rec. ITU-T X.690].
// See also “[A Layman's Guide to a Subset of ASN.1, BER, and DER]”.
//
// The [Encoder] and [Decoder] types are used to encode or decode a stream of
// TLV headers and their values. This package deals with the syntactic layer
// of the X.690 encoding rules while the x690 package deals with the semantic
// layer, the in-memory tree of ASN.1 values.
//
// # Headers and Values
//
// Each data value is encoded using a tag-length-value format. The tag and
// length (we call them a header) are represented by the [Header] type. Values
// can use the primitive or constructed encoding. The contents of primitive
// values are accessed through an [io.ReadCloser] handed out alongside the
// header. Values using the constructed encoding are followed by more encoded
// values and end either implicitly (definite-length encoding) or explicitly
// (indefinite length).
//
// The end of a constructed element is signalled by a zero [Header] (see
// [EndOfContents]). The [Encoder] and [Decoder] types expect and produce an
// end-of-contents marker at the end of every constructed encoding, regardless
// of whether it uses the definite or indefinite-length encoding. They
// maintain an internal state to validate that the sequence of TLVs forms a
// valid encoding.
//
// [Rec. ITU-T X.690]: https://www.itu.int/rec/T-REC-X.690
// [A Layman's Guide to a Subset of ASN.1, BER, and DER]: http://luca.ntop.org/Teaching/Appunti/asn1.html
package tlv

import (
	"math"
	"math/bits"
	"strconv"

	"github.com/kishorkunal-raj/asn1"
	"github.com/kishorkunal-raj/asn1/internal/vlq"
)

// EndOfContents is the end-of-contents marker signalling the end of a
// constructed element. It is the zero [Header] value; its encoded form is the
// two octets 0x00 0x00.
var EndOfContents = Header{}

// LengthIndefinite when used as a magic number for the length of a [Header]
// indicates that the data value is encoded using the constructed
// indefinite-length format.
const LengthIndefinite = -1

// DefaultMaxDepth is the default limit on the nesting depth of data values
// accepted by a [Decoder]; see [Decoder.SetMaxDepth].
const DefaultMaxDepth = 64

// CombinedLength returns the length of a data value encoding (not including
// its header) consisting of data value encodings of the specified lengths. If
// any of the passed lengths are [LengthIndefinite] or the result does not fit
// into the int type, the result is [LengthIndefinite].
func CombinedLength(ls ...int) int {
	sum := 0
	for _, l := range ls {
		if l == LengthIndefinite {
			return LengthIndefinite
		}
		if l > math.MaxInt-sum { // overflow
			return LengthIndefinite
		}
		sum += l
	}
	return sum
}

// Header represents a TLV header. The [Header.Length] may be
// [LengthIndefinite] if an indefinite-length encoding is used. It is invalid
// to use the indefinite-length encoding when [Header.Constructed] = false.
type Header struct {
	Tag         asn1.Tag
	Constructed bool
	Length      int
}

// IsEndOfContents reports whether h is the end-of-contents marker.
func (h Header) IsEndOfContents() bool {
	return h == Header{}
}

// EncodedLen returns the number of octets of the encoded form of h: the
// identifier octets plus the length octets. The value octets and, for the
// indefinite-length encoding, the end-of-contents octets are not included.
func (h Header) EncodedLen() int {
	n := 1
	if h.Tag.Number >= 0x1f {
		n += vlq.Len(uint64(h.Tag.Number))
	}
	n++
	if h.Length >= 0x80 {
		n += (bits.Len(uint(h.Length)) + 7) / 8
	}
	return n
}

// append encodes h into dst. The caller is responsible for making sure that h
// is a valid header.
func (h Header) append(dst []byte) []byte {
	b := byte(h.Tag.Class) << 6
	if h.Constructed {
		b |= 0x20
	}
	if h.Tag.Number < 0x1f {
		dst = append(dst, b|byte(h.Tag.Number))
	} else {
		dst = vlq.Append(append(dst, b|0x1f), uint64(h.Tag.Number))
	}

	switch {
	case h.Length == LengthIndefinite:
		dst = append(dst, 0x80)
	case h.Length < 0x80:
		dst = append(dst, byte(h.Length))
	default:
		numBytes := (bits.Len(uint(h.Length)) + 7) / 8
		dst = append(dst, 0x80|byte(numBytes))
		for ; numBytes > 0; numBytes-- {
			dst = append(dst, byte(h.Length>>uint((numBytes-1)*8)))
		}
	}
	return dst
}

// String returns a string representation of h.
func (h Header) String() string {
	if h.IsEndOfContents() {
		return "EndOfContents"
	}
	s := h.Tag.String()
	if h.Constructed {
		s += "/c"
	} else {
		s += "/p"
	}
	return s + ":" + strconv.Itoa(h.Length)
}
