package construct

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPass(t *testing.T) {
	v, err := Parse(Pass{}, []byte{1, 2, 3})
	require.NoError(t, err)
	assert.Nil(t, v)

	out, err := Build(Pass{}, nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestFlag(t *testing.T) {
	v, err := Parse(Flag{}, []byte{0x01})
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = Parse(Flag{}, []byte{0x00})
	require.NoError(t, err)
	assert.Equal(t, false, v)

	out, err := Build(Flag{}, true)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01}, out)

	_, err = Parse(Flag{}, nil)
	assert.ErrorIs(t, err, ErrUnexpectedEnd)
}

func TestBytesFixed(t *testing.T) {
	b := Bytes{N: Lit(3)}
	v, err := Parse(b, []byte{0xde, 0xad, 0xbe, 0xef})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe}, v)

	out, err := Build(b, []byte{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, out)

	_, err = Build(b, []byte{1, 2})
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestGreedyBytes(t *testing.T) {
	v, err := Parse(GreedyBytes{}, []byte{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, v)

	_, err = SizeofValue(GreedyBytes{})
	assert.ErrorIs(t, err, ErrSizeofUnknown)
}

func TestIntegerRoundTrip(t *testing.T) {
	out, err := Build(Uint32, uint32(0x01020304))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, out) // big-endian default

	v, err := Parse(Uint32, out)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x01020304), v)

	out, err = Build(Uint16LE, uint16(0xBEEF))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xEF, 0xBE}, out)

	out, err = Build(Uint16, uint16(0xBEEF), WithByteOrder(LE))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xEF, 0xBE}, out)

	v, err = Parse(Int16, []byte{0xff, 0xff})
	require.NoError(t, err)
	assert.Equal(t, int16(-1), v)
}

func TestIntegerSize(t *testing.T) {
	n, err := SizeofValue(Uint64)
	require.NoError(t, err)
	assert.Equal(t, 8, n)
}

func TestFloatRoundTrip(t *testing.T) {
	out, err := Build(Float32, float32(3.5))
	require.NoError(t, err)
	v, err := Parse(Float32, out)
	require.NoError(t, err)
	assert.Equal(t, float32(3.5), v)

	_, err = Build(Float32, float64(1))
	assert.ErrorIs(t, err, ErrAdapterFailure)
}

func TestPadding(t *testing.T) {
	p := Padding{N: Lit(3)}
	out, err := Build(p, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0}, out)

	v, err := Parse(p, []byte{0xff, 0xff, 0xff, 0x01})
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestConst(t *testing.T) {
	c := Const{Value: []byte("GIF8")}
	v, err := Parse(c, []byte("GIF8"))
	require.NoError(t, err)
	assert.Equal(t, []byte("GIF8"), v)

	_, err = Parse(c, []byte("JPEG"))
	assert.ErrorIs(t, err, ErrConstMismatch)

	out, err := Build(c, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("GIF8"), out)
}
