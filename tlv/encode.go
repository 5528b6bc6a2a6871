package tlv

import (
	"bufio"
	"fmt"
	"io"

	"github.com/kishorkunal-raj/asn1"
)

// byteWriter combines the writer interfaces required by [Encoder].
type byteWriter interface {
	io.Writer
	io.ByteWriter
}

//region valueWriter

// valueWriter represents a primitive TLV value for writing. It implements
// [io.Writer] and [io.ByteWriter]. The writer is restricted to write exactly
// n bytes, corresponding to the declared length of the value.
type valueWriter struct {
	e *Encoder
	n int // remaining number of bytes
}

// valid indicates whether w is bound to an encoder.
func (w *valueWriter) valid() bool {
	return w.e != nil
}

// Len returns the number of bytes in the unwritten portion of the value.
func (w *valueWriter) Len() int {
	return w.n
}

// Write implements [io.Writer]. Writing more bytes than the declared length
// of the value fails.
func (w *valueWriter) Write(p []byte) (int, error) {
	if w.e == nil {
		return 0, errClosed
	}
	if len(p) > w.n {
		return 0, errValueTooLong
	}
	n, err := w.e.wr.Write(p)
	w.n -= n
	w.e.advance(n)
	if err != nil {
		return n, &ioError{"write", err}
	}
	if n < len(p) {
		return n, &ioError{"write", io.ErrShortWrite}
	}
	return n, w.e.valueDone(w)
}

// WriteByte implements [io.ByteWriter].
func (w *valueWriter) WriteByte(b byte) error {
	if w.e == nil {
		return errClosed
	}
	if w.n == 0 {
		return errValueTooLong
	}
	if err := w.e.wr.WriteByte(b); err != nil {
		return &ioError{"write", err}
	}
	w.n--
	w.e.advance(1)
	return w.e.valueDone(w)
}

//endregion

//region Encoder

var errValueTooLong = fmt.Errorf("%w: value exceeds declared length", asn1.ErrInvalidArgument)

// Encoder is a streaming encoder for the TLV format used by the ASN.1
// encoding rules BER, DER and DL. It writes a stream of top-level
// tag-length-value constructs and validates that the written sequence of
// headers and values forms a valid encoding.
type Encoder struct {
	state
	wr      byteWriter
	buf     *bufio.Writer // non-nil iff wr does its own buffering
	val     valueWriter   // reused, saves allocations
	scratch [16]byte      // header encoding buffer
}

// NewEncoder creates a new [Encoder] writing to w. If w does not implement
// [io.ByteWriter], the Encoder does its own buffering; the buffer is flushed
// at the end of each top-level data value.
func NewEncoder(w io.Writer) *Encoder {
	e := new(Encoder)
	e.Reset(w)
	return e
}

// Reset resets the state of e to write to w. Reset reuses internal buffers of
// e which may save allocations compared to [NewEncoder].
func (e *Encoder) Reset(w io.Writer) {
	e.state.reset()
	if bw, ok := w.(byteWriter); ok {
		e.wr = bw
		e.buf = nil
	} else {
		e.buf = bufio.NewWriter(w)
		e.wr = e.buf
	}
	e.val.e = nil
}

// WriteHeader writes the next TLV header to the output. At the end of every
// constructed value [EndOfContents] must be written, for both definite and
// indefinite-length encodings; the marker octets themselves are only emitted
// for indefinite lengths. Encoder validates that h is valid at the current
// position in the TLV structure.
//
// When h indicates the primitive encoding, WriteHeader returns an [io.Writer]
// that must be used to write exactly h.Length content bytes before the next
// call to WriteHeader. The returned writer also implements [io.ByteWriter].
// If h.Length is zero the value is complete immediately and the returned
// writer is nil.
func (e *Encoder) WriteHeader(h Header) (io.Writer, error) {
	if e.val.valid() {
		return nil, errValueOpen
	}
	start := e.offset
	if err := e.writeHeader(h); err != nil {
		if _, ok := err.(*ioError); ok {
			return nil, err
		}
		return nil, &SyntaxError{Err: err, ByteOffset: e.offset, Header: e.curr.Header}
	}

	if h.IsEndOfContents() {
		e.pop()
		if e.root() && e.buf != nil {
			if err := e.buf.Flush(); err != nil {
				return nil, &ioError{"write", err}
			}
		}
		return nil, nil
	}

	e.push(h, start)
	if h.Constructed {
		return nil, nil
	}
	e.val = valueWriter{e, h.Length}
	if h.Length == 0 {
		// a zero-length value is complete as soon as its header is written
		if err := e.valueDone(&e.val); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return &e.val, nil
}

// writeHeader validates h against the current encoder state and writes its
// encoded form. The returned error wraps the asn1 error kind classifying the
// failure.
func (e *Encoder) writeHeader(h Header) error {
	if h.IsEndOfContents() {
		switch {
		case e.root() || !e.curr.Constructed:
			return errUnexpectedEOC
		case e.curr.Length != LengthIndefinite && e.curr.Remaining() != 0:
			return fmt.Errorf("%w: constructed value not fully written", asn1.ErrInvalidArgument)
		}
		if e.curr.Length != LengthIndefinite {
			return nil // definite-length values end implicitly
		}
		return e.flush(EndOfContents.append(e.scratch[:0]))
	}

	if h.Tag.Class == asn1.ClassUniversal && h.Tag.Number == asn1.TagReserved {
		return errInvalidEOC
	}
	if !h.Constructed && h.Length == LengthIndefinite {
		return fmt.Errorf("%w: indefinite length on primitive encoding", asn1.ErrMalformedLength)
	}
	if h.Tag.Number > asn1.MaxTagNumber {
		return fmt.Errorf("%w: tag number larger than %d", asn1.ErrMalformedHeader, asn1.MaxTagNumber)
	}
	if rem := e.curr.Remaining(); rem != LengthIndefinite && h.Length != LengthIndefinite {
		if total := CombinedLength(h.EncodedLen(), h.Length); total == LengthIndefinite || total > rem {
			return fmt.Errorf("%w: data value exceeds parent", asn1.ErrMalformedLength)
		}
	}

	return e.flush(h.append(e.scratch[:0]))
}

// flush writes encoded header bytes to the underlying writer, charging them
// against the surrounding data value.
func (e *Encoder) flush(b []byte) error {
	n, err := e.wr.Write(b)
	e.advance(n)
	if err != nil {
		return &ioError{"write", err}
	}
	return nil
}

// valueDone gets called when a primitive data value has been fully written. e
// updates its state accordingly.
func (e *Encoder) valueDone(w *valueWriter) error {
	if w.n != 0 {
		return nil
	}
	w.e = nil
	e.pop()
	if e.root() && e.buf != nil {
		if err := e.buf.Flush(); err != nil {
			return &ioError{"write", err}
		}
	}
	return nil
}

// OutputOffset returns the current output byte offset. The number of bytes
// actually written to the underlying [io.Writer] may be less than this offset
// due to internal buffering effects.
func (e *Encoder) OutputOffset() int64 {
	return e.offset
}

// StackDepth returns the depth of nested constructed TLVs that have been
// opened and not yet closed by WriteHeader. The depth is zero-indexed, where
// zero represents the (virtual) top-level TLV.
func (e *Encoder) StackDepth() int { return e.depth() }

// StackIndex returns the header at the specified stack level. It must be a
// number between 0 and [Encoder.StackDepth], inclusive.
func (e *Encoder) StackIndex(i int) Header {
	if i == len(e.stack) {
		return e.curr.Header
	}
	return e.stack[i].Header
}

//endregion
