package tlv

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/kishorkunal-raj/asn1"
)

var (
	errUnexpectedEOC = fmt.Errorf("%w: unexpected end of contents", asn1.ErrMalformedHeader)
	errInvalidEOC    = fmt.Errorf("%w: invalid end of contents", asn1.ErrMalformedHeader)
	errValueOpen     = fmt.Errorf("%w: value not closed", asn1.ErrChildActive)
	errClosed        = errors.New("tlv: value closed")
)

// ioError represents an error that occurred when reading from or writing to
// an underlying data stream.
type ioError struct {
	action string // either "read" or "write"
	err    error
}

func (e *ioError) Unwrap() error { return e.err }
func (e *ioError) Error() string { return e.action + " error: " + e.err.Error() }

// SyntaxError represents an error in the TLV encoding. The error value
// contains the location of the error within the stream as well as the
// [Header] of the surrounding data value. SyntaxError values wrap one of the
// error kinds of the asn1 package, so they can be classified with
// [errors.Is].
type SyntaxError struct {
	Err error // underlying error, usually wrapping an asn1 kind

	// ByteOffset is the location of the error. The location is usually the
	// start of the TLV header containing the error.
	ByteOffset int64

	// Header is the TLV header of the constructed value whose contents were
	// malformed.
	Header Header
}

func (e *SyntaxError) Unwrap() error { return e.Err }

func (e *SyntaxError) Error() string {
	b := []byte("tlv: syntax error")
	if !e.Header.IsEndOfContents() {
		b = append(b, " within "...)
		b = append(b, e.Header.String()...)
	}
	if e.ByteOffset > 0 {
		b = strconv.AppendInt(append(b, " at offset "...), e.ByteOffset, 10)
	}
	if e.Err != nil {
		b = append(b, ": "...)
		b = append(b, e.Err.Error()...)
	}
	return string(b)
}

// noEOF returns err, unless err == io.EOF, in which case it returns
// io.ErrUnexpectedEOF.
func noEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
