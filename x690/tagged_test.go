package x690

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kishorkunal-raj/asn1"
)

// testChoice is a CHOICE stand-in for testing the tagging rules. It behaves
// like its selected alternative.
type testChoice struct {
	Primitive
}

func (testChoice) choiceAlternatives() {}

func TestNewTaggedObject(t *testing.T) {
	_, err := NewTaggedObject(true, asn1.ClassContextSpecific, 0, nil)
	assert.ErrorIs(t, err, asn1.ErrInvalidArgument)

	_, err = NewTaggedObject(true, asn1.ClassUniversal, 0, NewNull())
	assert.ErrorIs(t, err, asn1.ErrInvalidArgument)

	_, err = NewTaggedObject(true, asn1.Class(7), 0, NewNull())
	assert.ErrorIs(t, err, asn1.ErrInvalidArgument)

	to, err := NewContextTagged(false, 2, NewOctetString([]byte{1}))
	require.NoError(t, err)
	assert.Equal(t, asn1.ClassContextSpecific, to.TagClass())
	assert.Equal(t, uint(2), to.TagNo())
	assert.False(t, to.IsExplicit())
}

// Implicit tagging of a CHOICE is forbidden, the tagging style is forced to
// explicit.
func TestChoiceForcesExplicit(t *testing.T) {
	to, err := NewContextTagged(false, 1, testChoice{NewInteger(3)})
	require.NoError(t, err)
	assert.True(t, to.IsExplicit())
}

// Explicitly tagged wrappers contain the complete TLV of the inner value,
// implicitly tagged wrappers only its content octets with the identifier
// rewritten.
func TestTaggingLaw(t *testing.T) {
	inner := NewOctetString([]byte{0xab, 0xcd})
	innerTLV, err := Marshal(inner, DER)
	require.NoError(t, err)

	explicit, err := NewContextTagged(true, 3, inner)
	require.NoError(t, err)
	b, err := Marshal(explicit, DER)
	require.NoError(t, err)
	assert.Equal(t, append([]byte{0xa3, 0x04}, innerTLV...), b)

	implicit, err := NewContextTagged(false, 3, inner)
	require.NoError(t, err)
	b, err = Marshal(implicit, DER)
	require.NoError(t, err)
	assert.Equal(t, append([]byte{0x83, 0x02}, innerTLV[2:]...), b)

	// implicit tagging of a constructed value keeps the constructed bit
	seq := NewSequence(NewInteger(1), NewInteger(2))
	seqTLV, err := Marshal(seq, DER)
	require.NoError(t, err)
	implicitSeq, err := NewContextTagged(false, 3, seq)
	require.NoError(t, err)
	b, err = Marshal(implicitSeq, DER)
	require.NoError(t, err)
	assert.Equal(t, append([]byte{0xa3, 0x06}, seqTLV[2:]...), b)
}

// Decoding a context tag wrapping a single TLV yields an explicit tagged
// object; the caller can reinterpret it as implicit when the schema says so.
func TestScenarioTaggedObject(t *testing.T) {
	input := []byte{0xa3, 0x03, 0x02, 0x01, 0x05}
	p := mustParse(t, input)
	to, ok := p.(*TaggedObject)
	require.True(t, ok)
	assert.Equal(t, asn1.ClassContextSpecific, to.TagClass())
	assert.Equal(t, uint(3), to.TagNo())
	assert.True(t, to.IsExplicit())

	inner, err := to.LoadExplicit()
	require.NoError(t, err)
	v, _ := inner.(*Integer).Int64()
	assert.Equal(t, int64(5), v)

	// re-encoding reproduces the input
	b, err := Marshal(to, BER)
	require.NoError(t, err)
	assert.Equal(t, input, b)

	// implicit interpretation keeps the bytes but flips the tagging style
	imp, err := to.LoadImplicit(asn1.TagInteger, true)
	require.NoError(t, err)
	assert.False(t, imp.IsExplicit())
	v, _ = imp.Inner().(*Integer).Int64()
	assert.Equal(t, int64(5), v)
	b, err = Marshal(imp, BER)
	require.NoError(t, err)
	assert.Equal(t, input, b)
	b, err = Marshal(imp, DER)
	require.NoError(t, err)
	assert.Equal(t, input, b)

	// the explicit flag participates in equality even when the encodings
	// coincide
	assert.False(t, to.Equal(imp))
}

func TestLoadImplicit(t *testing.T) {
	// implicit SEQUENCE: all content TLVs become elements
	p := mustParse(t, []byte{0xa3, 0x06, 0x02, 0x01, 0x01, 0x02, 0x01, 0x02}).(*TaggedObject)
	assert.False(t, p.IsExplicit())
	imp, err := p.LoadImplicit(asn1.TagSequence, true)
	require.NoError(t, err)
	seq, ok := imp.Inner().(*Sequence)
	require.True(t, ok)
	assert.Equal(t, 2, seq.Len())

	// constructed bit must match
	_, err = p.LoadImplicit(asn1.TagSequence, false)
	assert.ErrorIs(t, err, asn1.ErrStructure)

	// implicit interpretation of a primitive wrapper decodes the content
	// octets
	prim := mustParse(t, []byte{0x83, 0x01, 0x05}).(*TaggedObject)
	assert.False(t, prim.IsExplicit())
	imp, err = prim.LoadImplicit(asn1.TagInteger, false)
	require.NoError(t, err)
	v, _ := imp.Inner().(*Integer).Int64()
	assert.Equal(t, int64(5), v)
	b, err := Marshal(imp, DER)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x83, 0x01, 0x05}, b)

	// base tags that require a constructed encoding are rejected on a
	// primitive wrapper
	_, err = prim.LoadImplicit(asn1.TagSequence, false)
	assert.ErrorIs(t, err, asn1.ErrStructure)

	// tag mismatch inside a constructed wrapper
	single := mustParse(t, []byte{0xa3, 0x03, 0x02, 0x01, 0x05}).(*TaggedObject)
	_, err = single.LoadImplicit(asn1.TagBoolean, true)
	assert.ErrorIs(t, err, asn1.ErrStructure)
}

func TestLoadExplicitRequiresConstructed(t *testing.T) {
	prim := mustParse(t, []byte{0x83, 0x01, 0x05}).(*TaggedObject)
	_, err := prim.LoadExplicit()
	assert.ErrorIs(t, err, asn1.ErrStructure)
}

func TestTaggedEqualityAndHash(t *testing.T) {
	a, err := NewContextTagged(true, 3, NewInteger(5))
	require.NoError(t, err)
	b, err := NewContextTagged(true, 3, NewInteger(5))
	require.NoError(t, err)
	c, err := NewContextTagged(true, 4, NewInteger(5))
	require.NoError(t, err)
	d, err := NewTaggedObject(true, asn1.ClassPrivate, 3, NewInteger(5))
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Hash(), b.Hash())
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(d))
	assert.False(t, a.Equal(NewInteger(5)))
}

func TestTaggedString(t *testing.T) {
	a, err := NewContextTagged(true, 3, NewInteger(5))
	require.NoError(t, err)
	assert.Equal(t, "[CONTEXT 3]5", a.String())

	b, err := NewTaggedObject(false, asn1.ClassPrivate, 1, NewOctetString([]byte{0xab}))
	require.NoError(t, err)
	assert.Equal(t, "[PRIVATE 1]#AB", b.String())

	app := NewApplicationSpecific(2, []byte{0x01})
	assert.Equal(t, "[APPLICATION 2]#01", app.String())
}

// APPLICATION class values stay opaque containers: a single child does not
// trigger the explicit-tagging heuristic and the round-trip is byte-exact.
func TestApplicationSpecificRoundTrip(t *testing.T) {
	input := []byte{0x64, 0x03, 0x02, 0x01, 0x09}
	p := mustParse(t, input)
	app, ok := p.(*ApplicationSpecific)
	require.True(t, ok)
	assert.True(t, app.IsConstructed())
	require.Len(t, app.Elements(), 1)

	b, err := Marshal(p, BER)
	require.NoError(t, err)
	assert.Equal(t, input, b)

	prim := mustParse(t, []byte{0x44, 0x02, 0xca, 0xfe})
	app, ok = prim.(*ApplicationSpecific)
	require.True(t, ok)
	assert.False(t, app.IsConstructed())
	assert.Equal(t, []byte{0xca, 0xfe}, app.Contents())
}

func TestTaggedLongFormTagNumber(t *testing.T) {
	to, err := NewContextTagged(true, 1000, NewNull())
	require.NoError(t, err)
	b, err := Marshal(to, DER)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xbf, 0x87, 0x68, 0x02, 0x05, 0x00}, b)

	got := mustParse(t, b).(*TaggedObject)
	assert.Equal(t, uint(1000), got.TagNo())
	assert.True(t, to.Equal(got))
}
