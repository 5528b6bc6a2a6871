package x690

import (
	"bytes"
	"fmt"
	"io"
	"math/big"

	"github.com/kishorkunal-raj/asn1"
	"github.com/kishorkunal-raj/asn1/tlv"
)

// Integer represents the ASN.1 INTEGER type. The value is stored as its
// content octets, the minimal two's-complement form required by X.690 8.3.
// Arithmetic on integers is out of scope; use the Big accessor to work with
// the numeric value.
type Integer struct {
	bytes []byte
}

// NewInteger returns an INTEGER with the given value.
func NewInteger(v int64) *Integer {
	return NewIntegerBig(big.NewInt(v))
}

// NewIntegerBig returns an INTEGER with the given value.
func NewIntegerBig(v *big.Int) *Integer {
	return &Integer{bytes: twosComplement(v)}
}

// newIntegerBytes validates decoded INTEGER content octets. X.690 8.3.2
// requires the minimal form in BER as well as in DER.
func newIntegerBytes(b []byte) (*Integer, error) {
	if err := checkMinimalInt(b); err != nil {
		return nil, err
	}
	return &Integer{bytes: b}, nil
}

func checkMinimalInt(b []byte) error {
	if len(b) == 0 {
		return fmt.Errorf("%w: empty INTEGER contents", asn1.ErrStructure)
	}
	if len(b) > 1 && (b[0] == 0 && b[1]&0x80 == 0 || b[0] == 0xff && b[1]&0x80 != 0) {
		return fmt.Errorf("%w: INTEGER not minimally encoded", asn1.ErrStructure)
	}
	return nil
}

// twosComplement returns the minimal two's-complement content octets of v.
func twosComplement(v *big.Int) []byte {
	if v.Sign() >= 0 {
		b := v.Bytes()
		if len(b) == 0 || b[0]&0x80 != 0 {
			b = append([]byte{0}, b...)
		}
		return b
	}
	n := 1
	for new(big.Int).Lsh(minusOne, uint(8*n-1)).Cmp(v) > 0 {
		n++
	}
	m := new(big.Int).Lsh(big.NewInt(1), uint(8*n))
	return m.Add(m, v).Bytes()
}

var minusOne = big.NewInt(-1)

// fromTwosComplement interprets content octets as a signed value.
func fromTwosComplement(b []byte) *big.Int {
	v := new(big.Int).SetBytes(b)
	if len(b) > 0 && b[0]&0x80 != 0 {
		m := new(big.Int).Lsh(big.NewInt(1), uint(8*len(b)))
		v.Sub(v, m)
	}
	return v
}

// Big returns the numeric value of i.
func (i *Integer) Big() *big.Int {
	return fromTwosComplement(i.bytes)
}

// Int64 returns the numeric value of i. The second return value reports
// whether the value fits into an int64.
func (i *Integer) Int64() (int64, bool) {
	if len(i.bytes) > 8 {
		return 0, false
	}
	return i.Big().Int64(), true
}

// Bytes returns the content octets of i. The returned slice must not be
// modified.
func (i *Integer) Bytes() []byte { return i.bytes }

// ToPrimitive implements [Value].
func (i *Integer) ToPrimitive() (Primitive, error) { return i, nil }

// ToDER returns i. INTEGER contents are already canonical.
func (i *Integer) ToDER() Primitive { return i }

// ToDL returns i.
func (i *Integer) ToDL() Primitive { return i }

// Equal reports whether other is an INTEGER with the same value.
func (i *Integer) Equal(other Primitive) bool {
	o, ok := other.(*Integer)
	return ok && bytes.Equal(i.bytes, o.bytes)
}

// Hash implements [Primitive].
func (i *Integer) Hash() uint32 {
	return hashBytes(uint32(asn1.TagInteger), i.bytes)
}

// String returns the decimal representation of i.
func (i *Integer) String() string {
	return i.Big().String()
}

func (i *Integer) header(Encoding) tlv.Header {
	return tlv.Header{Tag: asn1.Tag{Class: asn1.ClassUniversal, Number: asn1.TagInteger}, Length: len(i.bytes)}
}

func (i *Integer) contentLen(Encoding) int { return len(i.bytes) }

func (i *Integer) encodeContent(_ *tlv.Encoder, w io.Writer, _ Encoding) error {
	return writeContent(w, i.bytes)
}

// Enumerated represents the ASN.1 ENUMERATED type. Its content octets follow
// the same rules as INTEGER.
type Enumerated struct {
	bytes []byte
}

// NewEnumerated returns an ENUMERATED with the given value.
func NewEnumerated(v int64) *Enumerated {
	return &Enumerated{bytes: twosComplement(big.NewInt(v))}
}

// newEnumeratedBytes validates decoded ENUMERATED content octets.
func newEnumeratedBytes(b []byte) (*Enumerated, error) {
	if err := checkMinimalInt(b); err != nil {
		return nil, err
	}
	return &Enumerated{bytes: b}, nil
}

// Int64 returns the numeric value of e. The second return value reports
// whether the value fits into an int64.
func (e *Enumerated) Int64() (int64, bool) {
	if len(e.bytes) > 8 {
		return 0, false
	}
	return fromTwosComplement(e.bytes).Int64(), true
}

// ToPrimitive implements [Value].
func (e *Enumerated) ToPrimitive() (Primitive, error) { return e, nil }

// ToDER returns e.
func (e *Enumerated) ToDER() Primitive { return e }

// ToDL returns e.
func (e *Enumerated) ToDL() Primitive { return e }

// Equal reports whether other is an ENUMERATED with the same value.
func (e *Enumerated) Equal(other Primitive) bool {
	o, ok := other.(*Enumerated)
	return ok && bytes.Equal(e.bytes, o.bytes)
}

// Hash implements [Primitive].
func (e *Enumerated) Hash() uint32 {
	return hashBytes(uint32(asn1.TagEnumerated), e.bytes)
}

// String returns the decimal representation of e.
func (e *Enumerated) String() string {
	return fromTwosComplement(e.bytes).String()
}

func (e *Enumerated) header(Encoding) tlv.Header {
	return tlv.Header{Tag: asn1.Tag{Class: asn1.ClassUniversal, Number: asn1.TagEnumerated}, Length: len(e.bytes)}
}

func (e *Enumerated) contentLen(Encoding) int { return len(e.bytes) }

func (e *Enumerated) encodeContent(_ *tlv.Encoder, w io.Writer, _ Encoding) error {
	return writeContent(w, e.bytes)
}
