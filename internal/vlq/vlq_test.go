package vlq

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestRead(t *testing.T) {
	tt := map[string]struct {
		input   []byte
		maxBits int
		want    uint64
		wantErr error
	}{
		"Zero":          {[]byte{0x00}, 64, 0, nil},
		"SingleByte":    {[]byte{0x7f}, 64, 127, nil},
		"TwoBytes":      {[]byte{0x87, 0x68}, 64, 1000, nil},
		"FiveBytes":     {[]byte{0x87, 0xff, 0xff, 0xff, 0x7f}, 31, 1<<31 - 1, nil},
		"NotMinimal":    {[]byte{0x80, 0x01}, 64, 0, ErrNotMinimal},
		"Overflow31Bit": {[]byte{0x88, 0x80, 0x80, 0x80, 0x00}, 31, 0, ErrOverflow},
		"Truncated":     {[]byte{0x87}, 64, 0, io.ErrUnexpectedEOF},
		"Empty":         {nil, 64, 0, io.EOF},
	}
	for name, tc := range tt {
		t.Run(name, func(t *testing.T) {
			got, err := Read(bytes.NewReader(tc.input), tc.maxBits)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("Read() error = %v, want %v", err, tc.wantErr)
			}
			if err == nil && got != tc.want {
				t.Errorf("Read() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestAppend(t *testing.T) {
	tt := map[string]struct {
		value uint64
		want  []byte
	}{
		"Zero":       {0, []byte{0x00}},
		"SingleByte": {127, []byte{0x7f}},
		"TwoBytes":   {1000, []byte{0x87, 0x68}},
		"Large":      {1<<31 - 1, []byte{0x87, 0xff, 0xff, 0xff, 0x7f}},
	}
	for name, tc := range tt {
		t.Run(name, func(t *testing.T) {
			got := Append(nil, tc.value)
			if !bytes.Equal(got, tc.want) {
				t.Errorf("Append() = % X, want % X", got, tc.want)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	for _, v := range []uint64{0, 1, 127, 128, 300, 16383, 16384, 1<<31 - 1, 1<<63 - 1} {
		b := Append(nil, v)
		if got := Len(v); got != len(b) {
			t.Errorf("Len(%d) = %d, want %d", v, got, len(b))
		}
		got, err := Read(bytes.NewReader(b), 64)
		if err != nil {
			t.Fatalf("Read(Append(%d)) error: %v", v, err)
		}
		if got != v {
			t.Errorf("Read(Append(%d)) = %d", v, got)
		}
	}
}
