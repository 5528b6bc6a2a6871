package x690

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kishorkunal-raj/asn1"
	"github.com/kishorkunal-raj/asn1/tlv"
)

// UTCTime represents the ASN.1 UTCTime type. Only dates between 1950 and
// 2049 can be represented. The decoded time string is preserved so that BER
// and DL re-encoding round-trips; DER output uses the canonical
// YYMMDDHHMMSSZ form.
type UTCTime struct {
	str string
}

// utcTimeLayouts are the representations permitted by X.680 section 47.
var utcTimeLayouts = []string{
	"060102150405Z",
	"0601021504Z",
	"060102150405-0700",
	"0601021504-0700",
}

// NewUTCTime returns a UTCTime for the given instant, truncated to seconds.
func NewUTCTime(t time.Time) (*UTCTime, error) {
	t = t.UTC()
	if y := t.Year(); y < 1950 || y >= 2050 {
		return nil, fmt.Errorf("%w: year %d outside UTCTime range", asn1.ErrInvalidArgument, y)
	}
	return &UTCTime{str: t.Format("060102150405") + "Z"}, nil
}

// newUTCTimeString validates a decoded UTCTime string.
func newUTCTimeString(s string) (*UTCTime, error) {
	t := &UTCTime{str: s}
	if _, err := t.Time(); err != nil {
		return nil, err
	}
	return t, nil
}

// TimeString returns the time string exactly as encoded.
func (t *UTCTime) TimeString() string { return t.str }

// Time returns the instant represented by t. Two-digit years are interpreted
// in the range 1950 to 2049.
func (t *UTCTime) Time() (time.Time, error) {
	for _, layout := range utcTimeLayouts {
		tt, err := time.Parse(layout, t.str)
		if err != nil {
			continue
		}
		// Go resolves two-digit years into [1969,2068]; X.690 mandates
		// [1950,2049].
		if y := tt.Year(); y >= 2050 {
			tt = tt.AddDate(-100, 0, 0)
		} else if y < 1950 {
			tt = tt.AddDate(100, 0, 0)
		}
		return tt, nil
	}
	return time.Time{}, fmt.Errorf("%w: invalid UTCTime %q", asn1.ErrStructure, t.str)
}

// canonical returns the DER form of the time string: seconds present and
// zone designator Z.
func (t *UTCTime) canonical() string {
	tt, err := t.Time()
	if err != nil {
		return t.str
	}
	return tt.UTC().Format("060102150405") + "Z"
}

// ToPrimitive implements [Value].
func (t *UTCTime) ToPrimitive() (Primitive, error) { return t, nil }

// ToDER returns the canonical form of t.
func (t *UTCTime) ToDER() Primitive {
	if c := t.canonical(); c != t.str {
		return &UTCTime{str: c}
	}
	return t
}

// ToDL returns t.
func (t *UTCTime) ToDL() Primitive { return t }

// Equal reports whether other is a UTCTime denoting the same instant.
func (t *UTCTime) Equal(other Primitive) bool {
	o, ok := other.(*UTCTime)
	return ok && t.canonical() == o.canonical()
}

// Hash implements [Primitive].
func (t *UTCTime) Hash() uint32 {
	return hashBytes(uint32(asn1.TagUTCTime), []byte(t.canonical()))
}

// String returns the time string of t.
func (t *UTCTime) String() string { return t.str }

func (t *UTCTime) header(enc Encoding) tlv.Header {
	return tlv.Header{Tag: asn1.Tag{Class: asn1.ClassUniversal, Number: asn1.TagUTCTime}, Length: t.contentLen(enc)}
}

func (t *UTCTime) contentLen(enc Encoding) int {
	if enc == DER {
		return len(t.canonical())
	}
	return len(t.str)
}

func (t *UTCTime) encodeContent(_ *tlv.Encoder, w io.Writer, enc Encoding) error {
	s := t.str
	if enc == DER {
		s = t.canonical()
	}
	return writeContent(w, []byte(s))
}

// GeneralizedTime represents the ASN.1 GeneralizedTime type. The decoded
// time string is preserved so that BER and DL re-encoding round-trips; DER
// output uses the canonical form with seconds, a fraction without trailing
// zeros, and the zone designator Z.
type GeneralizedTime struct {
	str string
}

// generalizedTimeLayouts are the supported representations. Fractional hours
// and minutes permitted by X.680 section 46 are not supported.
var generalizedTimeLayouts = []string{
	"20060102150405.999999999Z",
	"20060102150405.999999999-0700",
	"20060102150405.999999999",
	"200601021504Z",
	"200601021504-0700",
	"200601021504",
	"2006010215Z",
	"2006010215-0700",
	"2006010215",
}

// NewGeneralizedTime returns a GeneralizedTime for the given instant in its
// canonical form.
func NewGeneralizedTime(t time.Time) (*GeneralizedTime, error) {
	t = t.UTC()
	if y := t.Year(); y < 1 || y > 9999 {
		return nil, fmt.Errorf("%w: year %d outside GeneralizedTime range", asn1.ErrInvalidArgument, y)
	}
	return &GeneralizedTime{str: formatGeneralized(t)}, nil
}

// formatGeneralized renders the canonical DER form of t, trimming trailing
// fraction zeros.
func formatGeneralized(t time.Time) string {
	s := t.Format("20060102150405")
	if t.Nanosecond() > 0 {
		frac := t.Format(".999999999")
		s += strings.TrimRight(frac, "0")
	}
	return s + "Z"
}

// newGeneralizedTimeString validates a decoded GeneralizedTime string.
func newGeneralizedTimeString(s string) (*GeneralizedTime, error) {
	t := &GeneralizedTime{str: s}
	if _, err := t.Time(); err != nil {
		return nil, err
	}
	return t, nil
}

// TimeString returns the time string exactly as encoded.
func (t *GeneralizedTime) TimeString() string { return t.str }

// Time returns the instant represented by t. A time string without a zone
// designator is interpreted as UTC.
func (t *GeneralizedTime) Time() (time.Time, error) {
	for _, layout := range generalizedTimeLayouts {
		if tt, err := time.Parse(layout, t.str); err == nil {
			return tt, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: invalid GeneralizedTime %q", asn1.ErrStructure, t.str)
}

// canonical returns the DER form of the time string.
func (t *GeneralizedTime) canonical() string {
	tt, err := t.Time()
	if err != nil {
		return t.str
	}
	return formatGeneralized(tt.UTC())
}

// ToPrimitive implements [Value].
func (t *GeneralizedTime) ToPrimitive() (Primitive, error) { return t, nil }

// ToDER returns the canonical form of t.
func (t *GeneralizedTime) ToDER() Primitive {
	if c := t.canonical(); c != t.str {
		return &GeneralizedTime{str: c}
	}
	return t
}

// ToDL returns t.
func (t *GeneralizedTime) ToDL() Primitive { return t }

// Equal reports whether other is a GeneralizedTime denoting the same
// instant.
func (t *GeneralizedTime) Equal(other Primitive) bool {
	o, ok := other.(*GeneralizedTime)
	return ok && t.canonical() == o.canonical()
}

// Hash implements [Primitive].
func (t *GeneralizedTime) Hash() uint32 {
	return hashBytes(uint32(asn1.TagGeneralizedTime), []byte(t.canonical()))
}

// String returns the time string of t.
func (t *GeneralizedTime) String() string { return t.str }

func (t *GeneralizedTime) header(enc Encoding) tlv.Header {
	return tlv.Header{Tag: asn1.Tag{Class: asn1.ClassUniversal, Number: asn1.TagGeneralizedTime}, Length: t.contentLen(enc)}
}

func (t *GeneralizedTime) contentLen(enc Encoding) int {
	if enc == DER {
		return len(t.canonical())
	}
	return len(t.str)
}

func (t *GeneralizedTime) encodeContent(_ *tlv.Encoder, w io.Writer, enc Encoding) error {
	s := t.str
	if enc == DER {
		s = t.canonical()
	}
	return writeContent(w, []byte(s))
}
