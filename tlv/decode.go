package tlv

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"github.com/kishorkunal-raj/asn1"
	"github.com/kishorkunal-raj/asn1/internal/vlq"
)

// byteReader combines the reader interfaces required by [Decoder].
type byteReader interface {
	io.Reader
	io.ByteReader
}

// byteReaderFunc is a function that reads a single byte from an underlying
// byte stream. It implements [io.ByteReader].
type byteReaderFunc func() (byte, error)

func (f byteReaderFunc) ReadByte() (byte, error) { return f() }

var errTruncated = fmt.Errorf("%w: truncated data value", asn1.ErrMalformedLength)

//region valueReader

// valueReader represents a primitive TLV value. It implements [io.Reader],
// [io.ByteReader] and [io.Closer]. At the end of the value valueReader
// returns [io.EOF]. Note that this only indicates the end of a single value,
// not the end of the corresponding [Decoder] stream. If the underlying reader
// returns [io.EOF] before the value has been read completely,
// [io.ErrUnexpectedEOF] is returned.
//
// Errors from the underlying reader may be wrapped before being returned.
type valueReader struct {
	d *Decoder
	n int // remaining number of bytes
}

// valid indicates whether v is bound to a decoder.
func (v *valueReader) valid() bool {
	return v.d != nil
}

// Len returns the number of bytes in the unread portion of the value.
func (v *valueReader) Len() int {
	return v.n
}

// Read implements [io.Reader].
func (v *valueReader) Read(p []byte) (int, error) {
	if v.d == nil {
		return 0, errClosed
	}
	if v.n == 0 {
		return 0, io.EOF
	}
	if len(p) > v.n {
		p = p[:v.n]
	}
	n, err := v.d.br.Read(p)
	v.n -= n
	v.d.advance(n)
	if err != nil && err != io.EOF {
		err = &ioError{"read", err}
	}
	if v.n == 0 {
		// if the underlying reader returns io.EOF together with the final
		// bytes of the value we can pass the EOF through.
		return n, err
	}
	return n, noEOF(err)
}

// ReadByte implements [io.ByteReader].
func (v *valueReader) ReadByte() (byte, error) {
	if v.d == nil {
		return 0, errClosed
	}
	if v.n == 0 {
		return 0, io.EOF
	}
	b, err := v.d.br.ReadByte()
	if err != nil {
		if err == io.EOF {
			return 0, io.ErrUnexpectedEOF
		}
		return 0, &ioError{"read", err}
	}
	v.n--
	v.d.advance(1)
	return b, nil
}

// Close discards any remaining bytes in the unread portion of v and returns
// control over the stream to the decoder. If v has been read to EOF, calling
// Close never returns an error.
func (v *valueReader) Close() error {
	if v.d == nil {
		return errClosed
	}
	if v.n > 0 {
		if _, err := io.Copy(io.Discard, struct{ io.Reader }{v}); err != nil {
			return err
		}
	}
	d := v.d
	v.d = nil
	d.pop()
	return nil
}

//endregion

//region Decoder

// Decoder is a streaming decoder for the TLV format used by the ASN.1
// encoding rules BER, DER and DL. It reads a stream of top-level
// tag-length-value constructs and validates that the sequence of headers and
// values forms a valid encoding.
type Decoder struct {
	state
	br       byteReader
	val      valueReader // reused, saves allocations
	maxDepth int
}

// NewDecoder creates a new Decoder reading from r. If r does not implement
// [io.ByteReader], the Decoder does its own buffering and may read beyond the
// end of the current top-level data value.
func NewDecoder(r io.Reader) *Decoder {
	d := new(Decoder)
	d.Reset(r)
	return d
}

// Reset resets the state of d to read from r. Reset reuses internal buffers
// of d which may save allocations compared to [NewDecoder].
func (d *Decoder) Reset(r io.Reader) {
	d.state.reset()
	if br, ok := r.(byteReader); ok {
		d.br = br
	} else {
		d.br = bufio.NewReader(r)
	}
	d.val.d = nil
	if d.maxDepth == 0 {
		d.maxDepth = DefaultMaxDepth
	}
}

// SetMaxDepth configures the maximum nesting depth of data values accepted by
// d: a data value, primitive or constructed, that is enclosed by n or more
// values is rejected with [asn1.ErrLimitExceeded]. The default is
// [DefaultMaxDepth].
func (d *Decoder) SetMaxDepth(n int) {
	d.maxDepth = n
}

// ReadHeader reads the next TLV header from the input. At the end of
// constructed values a header equal to [EndOfContents] is returned, for both
// definite and indefinite-length encodings. If the TLV structure is invalid,
// a [*SyntaxError] wrapping one of the asn1 error kinds is returned.
//
// The second return value is non-nil iff the decoded header indicates the
// primitive encoding. The [io.ReadCloser] reads the contents of the primitive
// value; it also implements [io.ByteReader] and Len() int. Close must be
// called before the next call to ReadHeader.
//
// At the end of the input ReadHeader returns [io.EOF]. An EOF inside an
// unfinished data value is reported as a syntax error instead.
func (d *Decoder) ReadHeader() (Header, io.ReadCloser, error) {
	if d.val.valid() {
		return Header{}, nil, errValueOpen
	}

	// Definite-length constructed values end implicitly.
	if !d.root() && d.curr.Length != LengthIndefinite && d.curr.Remaining() == 0 {
		d.pop()
		return EndOfContents, nil, nil
	}

	start := d.offset
	h, err := d.decodeHeader()
	if err != nil {
		if err == io.EOF {
			if d.root() {
				return Header{}, nil, io.EOF
			}
			err = fmt.Errorf("%w: unexpected end of stream", asn1.ErrMalformedLength)
		}
		if _, ok := err.(*ioError); ok {
			return h, nil, err
		}
		return h, nil, &SyntaxError{Err: err, ByteOffset: start, Header: d.curr.Header}
	}

	if h.IsEndOfContents() {
		d.pop()
		return h, nil, nil
	}

	if d.depth() >= d.maxDepth {
		err = fmt.Errorf("%w: nesting deeper than %d", asn1.ErrLimitExceeded, d.maxDepth)
		return h, nil, &SyntaxError{Err: err, ByteOffset: start, Header: d.curr.Header}
	}
	d.push(h, start)
	if h.Constructed {
		return h, nil, nil
	}
	d.val = valueReader{d, h.Length}
	return h, &d.val, nil
}

// decodeHeader decodes a TLV header from d and validates it against the
// current decoder state. The returned error wraps the asn1 error kind
// classifying the failure.
func (d *Decoder) decodeHeader() (Header, error) {
	b, err := d.readByte()
	if err != nil {
		// io.EOF stays io.EOF so the caller can detect a clean end of input.
		return Header{}, err
	}
	h := Header{
		Tag:         asn1.Tag{Class: asn1.Class(b >> 6), Number: uint(b & 0x1f)},
		Constructed: b&0x20 != 0,
	}

	// If the bottom five bits are set, the tag number follows in base-128.
	if b&0x1f == 0x1f {
		n, err := vlq.Read(byteReaderFunc(d.readByte), 31)
		switch {
		case err == io.EOF || err == io.ErrUnexpectedEOF:
			return h, fmt.Errorf("%w: truncated identifier octets", asn1.ErrMalformedHeader)
		case err == vlq.ErrNotMinimal:
			return h, fmt.Errorf("%w: tag number with leading zero octets", asn1.ErrMalformedHeader)
		case err == vlq.ErrOverflow:
			return h, fmt.Errorf("%w: tag number larger than %d", asn1.ErrMalformedHeader, asn1.MaxTagNumber)
		case err != nil:
			return h, err
		}
		h.Tag.Number = uint(n)
	}

	if b, err = d.readByte(); err != nil {
		return h, lengthErr(err)
	}
	switch {
	case b&0x80 == 0:
		// The length is encoded in the bottom 7 bits.
		h.Length = int(b)
	case b == 0x80:
		h.Length = LengthIndefinite
	case b == 0xff:
		return h, fmt.Errorf("%w: reserved length octet", asn1.ErrMalformedLength)
	default:
		// Bottom 7 bits give the number of length bytes to follow.
		for numBytes := int(b & 0x7f); numBytes > 0; numBytes-- {
			if b, err = d.readByte(); err != nil {
				return h, lengthErr(err)
			}
			if h.Length > math.MaxInt>>8 {
				return h, fmt.Errorf("%w: length too large", asn1.ErrMalformedLength)
			}
			h.Length = h.Length<<8 | int(b)
		}
	}

	switch {
	case h.IsEndOfContents():
		// The end-of-contents marker coincides with the zero header. It is
		// only valid at the end of an indefinite-length value.
		if d.root() || d.curr.Length != LengthIndefinite {
			return h, errUnexpectedEOC
		}
	case h.Tag.Class == asn1.ClassUniversal && h.Tag.Number == asn1.TagReserved:
		return h, errInvalidEOC
	case !h.Constructed && h.Length == LengthIndefinite:
		return h, fmt.Errorf("%w: indefinite length on primitive encoding", asn1.ErrMalformedLength)
	default:
		if rem := d.curr.Remaining(); rem != LengthIndefinite && h.Length > rem {
			return h, fmt.Errorf("%w: data value exceeds parent", asn1.ErrMalformedLength)
		}
	}
	return h, nil
}

// lengthErr classifies an error that occurred while reading length octets.
func lengthErr(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return fmt.Errorf("%w: truncated length octets", asn1.ErrMalformedLength)
	}
	return err
}

// readByte reads a single header byte from the underlying reader of d,
// charging it against the surrounding data value.
func (d *Decoder) readByte() (byte, error) {
	if d.curr.Remaining() == 0 {
		return 0, errTruncated
	}
	b, err := d.br.ReadByte()
	if err != nil {
		if err == io.EOF {
			return 0, err
		}
		return 0, &ioError{"read", err}
	}
	d.advance(1)
	return b, nil
}

// Skip discards the remainder of the current data value. If a primitive value
// is currently open, only that value is discarded. If the current value is
// constructed, everything until the matching end of contents is skipped.
func (d *Decoder) Skip() error {
	if d.val.valid() {
		return d.val.Close()
	}
	if d.root() || !d.curr.Constructed {
		return nil
	}
	depth := d.depth()
	for d.depth() >= depth {
		_, val, err := d.ReadHeader()
		if err != nil {
			return err
		}
		if val != nil {
			if err = val.Close(); err != nil {
				return err
			}
		}
	}
	return nil
}

// DataValueOffset returns the input byte offset where the current data value
// starts. This is the first byte of the identifier octets of the current
// value.
func (d *Decoder) DataValueOffset() int64 {
	return d.curr.Start
}

// InputOffset returns the current input byte offset. The number of bytes
// actually read from the underlying [io.Reader] may be larger due to internal
// buffering effects.
func (d *Decoder) InputOffset() int64 {
	return d.offset
}

// StackDepth returns the number of nested TLVs at the current location of d.
// The depth is zero-indexed, where zero represents the (virtual) top-level
// TLV.
func (d *Decoder) StackDepth() int { return d.depth() }

// StackIndex returns the header at the specified stack level. It must be a
// number between 0 and [Decoder.StackDepth], inclusive. The header at level 0
// represents the top level and is not present in the input data.
func (d *Decoder) StackIndex(i int) Header {
	if i == len(d.stack) {
		return d.curr.Header
	}
	return d.stack[i].Header
}

//endregion
