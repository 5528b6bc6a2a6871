package tlv

import (
	"math"
	"testing"

	"github.com/kishorkunal-raj/asn1"
)

func TestHeader_EncodedLen(t *testing.T) {
	tt := map[string]struct {
		h    Header
		want int
	}{
		"ShortTagShortLength": {Header{tagInteger, false, 1}, 2},
		"Indefinite":          {Header{tagSequence, true, LengthIndefinite}, 2},
		"LongLength":          {Header{tagOctetString, false, 128}, 3},
		"TwoByteLength":       {Header{tagOctetString, false, 256}, 4},
		"LongTag":             {Header{asn1.Tag{Class: asn1.ClassContextSpecific, Number: 1000}, false, 0}, 4},
	}
	for name, tc := range tt {
		t.Run(name, func(t *testing.T) {
			if got := tc.h.EncodedLen(); got != tc.want {
				t.Errorf("EncodedLen() = %d, want %d", got, tc.want)
			}
			if got := len(tc.h.append(nil)); got != tc.want {
				t.Errorf("len(append()) = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestCombinedLength(t *testing.T) {
	if got := CombinedLength(1, 2, 3); got != 6 {
		t.Errorf("CombinedLength(1, 2, 3) = %d, want 6", got)
	}
	if got := CombinedLength(1, LengthIndefinite); got != LengthIndefinite {
		t.Errorf("CombinedLength with indefinite = %d, want %d", got, LengthIndefinite)
	}
	if got := CombinedLength(math.MaxInt, 1); got != LengthIndefinite {
		t.Errorf("CombinedLength overflow = %d, want %d", got, LengthIndefinite)
	}
}

func TestHeader_String(t *testing.T) {
	if got := (Header{}).String(); got != "EndOfContents" {
		t.Errorf("String() = %q", got)
	}
	if got := (Header{tagSequence, true, 3}).String(); got != "[UNIVERSAL 16]/c:3" {
		t.Errorf("String() = %q", got)
	}
}
