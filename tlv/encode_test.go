package tlv

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/kishorkunal-raj/asn1"
)

// TestEncoder_WriteHeader drives an Encoder through a sequence of headers and
// values and compares the produced bytes.
//
//   - A Header value is passed to WriteHeader.
//   - A []byte value is written to the writer returned by the preceding
//     WriteHeader call.
func TestEncoder_WriteHeader(t *testing.T) {
	tt := map[string]struct {
		steps []any
		want  []byte
	}{
		"SingleValue": {
			[]any{Header{tagInteger, false, 1}, []byte{0x15}},
			[]byte{0x02, 0x01, 0x15},
		},
		"ConstructedDefinite": {
			[]any{Header{tagSequence, true, 3}, Header{tagInteger, false, 1}, []byte{0x15}, EndOfContents},
			[]byte{0x30, 0x03, 0x02, 0x01, 0x15},
		},
		"ConstructedIndefinite": {
			[]any{Header{tagSequence, true, LengthIndefinite}, Header{tagInteger, false, 1}, []byte{0x15}, EndOfContents},
			[]byte{0x30, 0x80, 0x02, 0x01, 0x15, 0x00, 0x00},
		},
		"EmptyValue": {
			[]any{Header{tagOctetString, false, 0}},
			[]byte{0x04, 0x00},
		},
		"LongFormTag": {
			[]any{Header{asn1.Tag{Class: asn1.ClassContextSpecific, Number: 1000}, false, 1}, []byte{0xaa}},
			[]byte{0x9f, 0x87, 0x68, 0x01, 0xaa},
		},
		"LongFormLength": {
			[]any{Header{tagOctetString, false, 128}, make([]byte, 128)},
			append([]byte{0x04, 0x81, 0x80}, make([]byte, 128)...),
		},
	}

	for name, tc := range tt {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			e := NewEncoder(&buf)
			var val io.Writer
			for i, step := range tc.steps {
				switch step := step.(type) {
				case Header:
					w, err := e.WriteHeader(step)
					if err != nil {
						t.Fatalf("step %d: WriteHeader() error: %v", i, err)
					}
					val = w
				case []byte:
					if val == nil {
						t.Fatalf("step %d: no value writer", i)
					}
					if _, err := val.Write(step); err != nil {
						t.Fatalf("step %d: writing value: %v", i, err)
					}
					val = nil
				}
			}
			if !bytes.Equal(buf.Bytes(), tc.want) {
				t.Errorf("encoded bytes = % X, want % X", buf.Bytes(), tc.want)
			}
		})
	}
}

func TestEncoder_Errors(t *testing.T) {
	tt := map[string]struct {
		steps   []any
		wantErr error
	}{
		"IndefinitePrimitive": {
			[]any{Header{tagOctetString, false, LengthIndefinite}},
			asn1.ErrMalformedLength,
		},
		"EOCAtRoot": {
			[]any{EndOfContents},
			asn1.ErrMalformedHeader,
		},
		"ValueExceedsParent": {
			[]any{Header{tagSequence, true, 3}, Header{tagInteger, false, 4}},
			asn1.ErrMalformedLength,
		},
		"UnderfullConstructed": {
			[]any{Header{tagSequence, true, 3}, EndOfContents},
			asn1.ErrInvalidArgument,
		},
		"ReservedTag": {
			[]any{Header{asn1.Tag{Class: asn1.ClassUniversal, Number: asn1.TagReserved}, true, 2}},
			asn1.ErrMalformedHeader,
		},
	}

	for name, tc := range tt {
		t.Run(name, func(t *testing.T) {
			e := NewEncoder(&bytes.Buffer{})
			var err error
			for _, step := range tc.steps {
				if h, ok := step.(Header); ok {
					if _, err = e.WriteHeader(h); err != nil {
						break
					}
				}
			}
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestEncoder_ValueTooLong(t *testing.T) {
	e := NewEncoder(&bytes.Buffer{})
	w, err := e.WriteHeader(Header{tagOctetString, false, 2})
	if err != nil {
		t.Fatalf("WriteHeader() error: %v", err)
	}
	if _, err = w.Write([]byte{1, 2, 3}); !errors.Is(err, asn1.ErrInvalidArgument) {
		t.Fatalf("Write() error = %v, want %v", err, asn1.ErrInvalidArgument)
	}
}

func TestEncoder_RoundTrip(t *testing.T) {
	input := []byte{0x30, 0x80, 0x02, 0x01, 0x15, 0x30, 0x03, 0x02, 0x01, 0x03, 0x00, 0x00}
	d := NewDecoder(bytes.NewReader(input))
	var buf bytes.Buffer
	e := NewEncoder(&buf)
	for {
		h, val, err := d.ReadHeader()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("ReadHeader() error: %v", err)
		}
		w, err := e.WriteHeader(h)
		if err != nil {
			t.Fatalf("WriteHeader(%v) error: %v", h, err)
		}
		if val != nil {
			if _, err = io.Copy(w, io.Reader(val)); err != nil {
				t.Fatalf("copying value: %v", err)
			}
			if err = val.Close(); err != nil {
				t.Fatalf("closing value: %v", err)
			}
		}
	}
	if !bytes.Equal(buf.Bytes(), input) {
		t.Errorf("re-encoded bytes = % X, want % X", buf.Bytes(), input)
	}
}
