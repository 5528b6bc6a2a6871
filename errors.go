package asn1

import "errors"

// These sentinel errors classify every failure surfaced by the encoding
// layers. Errors returned by the tlv and x690 packages wrap one of these
// kinds, so callers can match them with [errors.Is] without depending on the
// concrete error type that carries location details.
var (
	// ErrMalformedHeader indicates illegal identifier octets or an invalid
	// long-form tag number encoding.
	ErrMalformedHeader = errors.New("asn1: malformed header")

	// ErrMalformedLength indicates invalid length octets: the reserved length
	// byte, an indefinite length on a primitive encoding, or a length
	// extending past the end of the stream or the surrounding data value.
	ErrMalformedLength = errors.New("asn1: malformed length")

	// ErrStructure indicates that the TLV syntax is valid but the sequence of
	// data values violates the structure of the type being decoded.
	ErrStructure = errors.New("asn1: structure error")

	// ErrInvalidArgument indicates an invalid value passed to a constructor,
	// such as a nil inner object or a universal tag class on a tagged object.
	ErrInvalidArgument = errors.New("asn1: invalid argument")

	// ErrUnimplemented indicates an implicit reinterpretation for a base tag
	// that cannot be decoded without schema knowledge.
	ErrUnimplemented = errors.New("asn1: unimplemented")

	// ErrStreamExhausted indicates a read on a parser whose data value has
	// already been consumed.
	ErrStreamExhausted = errors.New("asn1: parser exhausted")

	// ErrChildActive indicates an attempt to advance a parser while a
	// sub-parser lent to the caller has not been exhausted.
	ErrChildActive = errors.New("asn1: child parser active")

	// ErrLimitExceeded indicates that a configured size or depth budget was
	// exceeded while reading.
	ErrLimitExceeded = errors.New("asn1: limit exceeded")
)
