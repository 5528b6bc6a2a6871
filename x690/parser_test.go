package x690

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kishorkunal-raj/asn1"
)

func TestStreamParser_Primitives(t *testing.T) {
	p := NewStreamParser(bytes.NewReader([]byte{0x02, 0x01, 0x15, 0x01, 0x01, 0xff}))

	v, err := p.ReadObject()
	require.NoError(t, err)
	i, ok := v.(*Integer)
	require.True(t, ok)
	got, _ := i.Int64()
	assert.Equal(t, int64(0x15), got)

	v, err = p.ReadObject()
	require.NoError(t, err)
	b, ok := v.(*Boolean)
	require.True(t, ok)
	assert.True(t, b.Bool())

	_, err = p.ReadObject()
	assert.Equal(t, io.EOF, err)
}

func TestStreamParser_SubParser(t *testing.T) {
	p := NewStreamParser(bytes.NewReader([]byte{0x30, 0x06, 0x02, 0x01, 0x01, 0x02, 0x01, 0x02}))

	v, err := p.ReadObject()
	require.NoError(t, err)
	sub, ok := v.(*ConstructedParser)
	require.True(t, ok)

	// the parent blocks while the sub-parser is live
	_, err = p.ReadObject()
	assert.ErrorIs(t, err, asn1.ErrChildActive)

	v, err = sub.ReadObject()
	require.NoError(t, err)
	_, ok = v.(*Integer)
	require.True(t, ok)

	v, err = sub.ReadObject()
	require.NoError(t, err)
	_, ok = v.(*Integer)
	require.True(t, ok)

	_, err = sub.ReadObject()
	assert.Equal(t, io.EOF, err)

	// exhausting the sub-parser returns control to the parent
	_, err = p.ReadObject()
	assert.Equal(t, io.EOF, err)

	// reads past exhaustion are protocol violations
	_, err = sub.ReadObject()
	assert.ErrorIs(t, err, asn1.ErrStreamExhausted)
}

func TestStreamParser_Materialise(t *testing.T) {
	p := NewStreamParser(bytes.NewReader([]byte{0x30, 0x80, 0x02, 0x01, 0x01, 0x02, 0x01, 0x02, 0x00, 0x00}))
	v, err := p.ReadObject()
	require.NoError(t, err)
	sub, ok := v.(*ConstructedParser)
	require.True(t, ok)

	prim, err := sub.ToPrimitive()
	require.NoError(t, err)
	seq, ok := prim.(*Sequence)
	require.True(t, ok)
	assert.Equal(t, 2, seq.Len())

	// materialisation exhausts the sub-parser and unblocks the parent
	_, err = p.ReadObject()
	assert.Equal(t, io.EOF, err)
}

func TestStreamParser_TaggedParser(t *testing.T) {
	p := NewStreamParser(bytes.NewReader([]byte{0xa3, 0x03, 0x02, 0x01, 0x05}))
	v, err := p.ReadObject()
	require.NoError(t, err)
	tp, ok := v.(*TaggedParser)
	require.True(t, ok)
	assert.Equal(t, asn1.ClassContextSpecific, tp.TagClass())
	assert.Equal(t, uint(3), tp.TagNo())
	assert.True(t, tp.IsConstructed())

	inner, err := tp.LoadExplicit()
	require.NoError(t, err)
	i, ok := inner.(*Integer)
	require.True(t, ok)
	got, _ := i.Int64()
	assert.Equal(t, int64(5), got)

	_, err = tp.LoadExplicit()
	assert.Equal(t, io.EOF, err)
}

func TestStreamParser_TaggedMaterialise(t *testing.T) {
	p := NewStreamParser(bytes.NewReader([]byte{0xa3, 0x03, 0x02, 0x01, 0x05}))
	v, err := p.ReadObject()
	require.NoError(t, err)
	tp := v.(*TaggedParser)

	prim, err := tp.ToPrimitive()
	require.NoError(t, err)
	to, ok := prim.(*TaggedObject)
	require.True(t, ok)
	assert.True(t, to.IsExplicit())
}

func TestStreamParser_LoadImplicit(t *testing.T) {
	p := NewStreamParser(bytes.NewReader([]byte{0xa3, 0x06, 0x02, 0x01, 0x01, 0x02, 0x01, 0x02}))
	v, err := p.ReadObject()
	require.NoError(t, err)
	tp := v.(*TaggedParser)

	impl, err := tp.LoadImplicit(asn1.TagSequence, true)
	require.NoError(t, err)
	prim, err := impl.ToPrimitive()
	require.NoError(t, err)
	seq, ok := prim.(*Sequence)
	require.True(t, ok)
	assert.Equal(t, 2, seq.Len())
}

func TestStreamParser_LoadImplicitUnsupported(t *testing.T) {
	p := NewStreamParser(bytes.NewReader([]byte{0xa3, 0x03, 0x02, 0x01, 0x05}))
	v, err := p.ReadObject()
	require.NoError(t, err)
	tp := v.(*TaggedParser)

	_, err = tp.LoadImplicit(asn1.TagBoolean, true)
	assert.ErrorIs(t, err, asn1.ErrUnimplemented)

	_, err = tp.LoadImplicit(asn1.TagSequence, false)
	assert.ErrorIs(t, err, asn1.ErrStructure)
}

func TestStreamParser_SegmentedOctetString(t *testing.T) {
	input := []byte{0x24, 0x80, 0x04, 0x01, 0xaa, 0x04, 0x01, 0xbb, 0x00, 0x00}
	p := mustParse(t, input)
	oct, ok := p.(*OctetString)
	require.True(t, ok)
	assert.Equal(t, []byte{0xaa, 0xbb}, oct.Bytes())

	// BER keeps the segmented form, DL and DER collapse it
	ber, err := Marshal(p, BER)
	require.NoError(t, err)
	assert.Equal(t, input, ber)
	dl, err := Marshal(p, DL)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x04, 0x02, 0xaa, 0xbb}, dl)
	der, err := Marshal(p.ToDL(), DER)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x04, 0x02, 0xaa, 0xbb}, der)
}

func TestStreamParser_SegmentedBitString(t *testing.T) {
	input := []byte{0x23, 0x80, 0x03, 0x02, 0x00, 0xaa, 0x03, 0x02, 0x04, 0xb0, 0x00, 0x00}
	p := mustParse(t, input)
	bits, ok := p.(*BitString)
	require.True(t, ok)
	assert.Equal(t, 12, bits.Len())

	dl, err := Marshal(p, DL)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x03, 0x03, 0x04, 0xaa, 0xb0}, dl)

	// pad bits are only allowed on the final segment
	bad := []byte{0x23, 0x80, 0x03, 0x02, 0x04, 0xa0, 0x03, 0x02, 0x00, 0xaa, 0x00, 0x00}
	_, err = Parse(bad)
	assert.ErrorIs(t, err, asn1.ErrStructure)
}

func TestScenarioIndefiniteOnPrimitive(t *testing.T) {
	_, err := Parse([]byte{0x83, 0x80, 0x02, 0x01, 0x05})
	assert.ErrorIs(t, err, asn1.ErrMalformedLength)

	// a constructed indefinite value without end-of-contents is truncated
	_, err = Parse([]byte{0xa3, 0x80, 0x02, 0x01, 0x05})
	assert.ErrorIs(t, err, asn1.ErrMalformedLength)
}

func TestStreamParser_Limit(t *testing.T) {
	p := NewStreamParserLimit(bytes.NewReader([]byte{0x04, 0x03, 0x01, 0x02, 0x03}), 2)
	_, err := p.ReadObject()
	assert.ErrorIs(t, err, asn1.ErrLimitExceeded)
}

func TestStreamParser_Depth(t *testing.T) {
	p := NewStreamParser(bytes.NewReader([]byte{0x30, 0x04, 0x30, 0x02, 0x30, 0x00}))
	p.SetMaxDepth(2)
	v, err := p.ReadObject()
	require.NoError(t, err)
	sub := v.(*ConstructedParser)
	_, err = sub.ToPrimitive()
	assert.ErrorIs(t, err, asn1.ErrLimitExceeded)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse(nil)
	assert.ErrorIs(t, err, asn1.ErrStructure)

	_, err = Parse([]byte{0x02, 0x01, 0x01, 0x02, 0x01, 0x02})
	assert.ErrorIs(t, err, asn1.ErrStructure)

	// REAL uses a primitive universal tag this core does not materialise
	_, err = Parse([]byte{0x09, 0x01, 0x00})
	assert.ErrorIs(t, err, asn1.ErrUnimplemented)

	// SEQUENCE must use the constructed encoding
	_, err = Parse([]byte{0x10, 0x01, 0x00})
	assert.ErrorIs(t, err, asn1.ErrStructure)

	// length runs past the end of the input
	_, err = Parse([]byte{0x04, 0x05, 0x01})
	assert.ErrorIs(t, err, asn1.ErrMalformedLength)
}

func TestStreamParser_NestedTagged(t *testing.T) {
	// [1]{ [2]{ [3]{ INTEGER 7 } } }
	input := []byte{0xa1, 0x07, 0xa2, 0x05, 0xa3, 0x03, 0x02, 0x01, 0x07}
	p := mustParse(t, input)
	outer, ok := p.(*TaggedObject)
	require.True(t, ok)
	assert.True(t, outer.IsExplicit())
	middle, ok := outer.Inner().(*TaggedObject)
	require.True(t, ok)
	inner, ok := middle.Inner().(*TaggedObject)
	require.True(t, ok)
	v, _ := inner.Inner().(*Integer).Int64()
	assert.Equal(t, int64(7), v)

	b, err := Marshal(p, DER)
	require.NoError(t, err)
	assert.Equal(t, input, b)
}
