package construct

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var myBitfields = &BitFields{Specs: []BitField{
	Bit("foo", 1),
	BitPadding(3),
	Bit("bar", 3),
	Bit("overflow", 4),
}}

func TestBitFieldsSizeof(t *testing.T) {
	n, err := SizeofValue(myBitfields)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestBitFieldsBuildPacksAcrossByteBoundary(t *testing.T) {
	rec := NewRecord().Set("foo", uint64(1)).Set("bar", uint64(0b101)).Set("overflow", uint64(0b1111))
	out, err := Build(myBitfields, rec)
	require.NoError(t, err)
	// foo=1 -> top bit; bar=101 sits in bits 11..9; overflow=1111 crosses
	// the byte boundary, filling bits 8..5; the bottom 5 bits are unused padding.
	assert.Equal(t, []byte{0x8B, 0xE0}, out)
}

func TestBitFieldsMissingFieldTreatedAsZero(t *testing.T) {
	full := NewRecord().Set("foo", uint64(0)).Set("bar", uint64(0b101)).Set("overflow", uint64(0b1111))
	partial := NewRecord().Set("bar", uint64(0b101)).Set("overflow", uint64(0b1111))

	outFull, err := Build(myBitfields, full)
	require.NoError(t, err)
	outPartial, err := Build(myBitfields, partial)
	require.NoError(t, err)
	assert.Equal(t, outFull, outPartial)
}

func TestBitFieldsParse(t *testing.T) {
	v, err := Parse(myBitfields, []byte{0x8B, 0xE0})
	require.NoError(t, err)
	rec := v.(*Record)

	foo, _ := rec.Get("foo")
	bar, _ := rec.Get("bar")
	overflow, _ := rec.Get("overflow")
	assert.Equal(t, uint64(1), foo)
	assert.Equal(t, uint64(0b101), bar)
	assert.Equal(t, uint64(0b1111), overflow)

	_, isPresent := rec.Get("_")
	assert.False(t, isPresent)
}

func TestBitFieldsEmbeddedInStruct(t *testing.T) {
	s := &Struct{Fields: []Field{
		{Name: "something", Con: Uint16},
		{Name: "", Con: Embedded{Inner: myBitfields}},
	}}
	n, err := SizeofValue(s)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	data := []byte{0x33, 0x44, 0x8B, 0xE0}
	v, err := Parse(s, data)
	require.NoError(t, err)
	rec := v.(*Record)
	something, _ := rec.Get("something")
	assert.Equal(t, uint16(0x3344), something)
	foo, _ := rec.Get("foo")
	assert.Equal(t, uint64(1), foo)
}

func TestBitFieldsOutOfRange(t *testing.T) {
	rec := NewRecord().Set("foo", uint64(0b11)).Set("bar", uint64(0b101)).Set("overflow", uint64(0b1111))
	_, err := Build(myBitfields, rec)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestParseBitFieldSpec(t *testing.T) {
	fields, err := ParseBitFieldSpec("foo:1,:3,bar:3,overflow:4")
	require.NoError(t, err)
	assert.Equal(t, []BitField{
		{Name: "foo", Width: 1},
		{Name: "", Width: 3},
		{Name: "bar", Width: 3},
		{Name: "overflow", Width: 4},
	}, fields)

	bf := NewBitFields(fields...)
	n, err := SizeofValue(bf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = ParseBitFieldSpec("bad:x")
	assert.Error(t, err)
}
