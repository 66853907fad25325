package construct

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRaise(t *testing.T) {
	sentinel := errors.New("boom")
	_, err := Parse(Raise{Err: sentinel}, nil)
	assert.ErrorIs(t, err, sentinel)
}

func TestIf(t *testing.T) {
	c := If{
		Cond: func(ctx *Context) bool { v, _ := ctx.Get("hasBody"); return v == true },
		Then: Uint8,
		Else: Pass{},
	}
	v, err := Parse(c, []byte{9}, WithContextValue("hasBody", true))
	require.NoError(t, err)
	assert.Equal(t, uint8(9), v)

	v, err = Parse(c, []byte{9}, WithContextValue("hasBody", false))
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestSwitch(t *testing.T) {
	sw := Switch{
		Key: func(ctx *Context) any { v, _ := ctx.Get("kind"); return v },
		Cases: []Case{
			{Value: "int", Con: Uint8},
			{Value: "str", Con: CString{Enc: UTF8}},
		},
	}
	v, err := Parse(sw, []byte{42}, WithContextValue("kind", "int"))
	require.NoError(t, err)
	assert.Equal(t, uint8(42), v)

	_, err = Parse(sw, []byte{42}, WithContextValue("kind", "nope"))
	assert.ErrorIs(t, err, ErrSwitchNoMatch)
}

func TestEnum(t *testing.T) {
	e := Enum{
		Inner:  Uint8,
		ToName: map[any]string{uint8(0): "off", uint8(1): "on"},
		ToRaw:  map[string]any{"off": uint8(0), "on": uint8(1)},
	}
	v, err := Parse(e, []byte{1})
	require.NoError(t, err)
	assert.Equal(t, "on", v)

	out, err := Build(e, "off")
	require.NoError(t, err)
	assert.Equal(t, []byte{0}, out)

	_, err = Parse(e, []byte{2})
	assert.ErrorIs(t, err, ErrUnknownEnumValue)

	_, err = Build(e, "unknown")
	assert.ErrorIs(t, err, ErrUnknownEnumLabel)
}
