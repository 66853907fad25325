package construct

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTell(t *testing.T) {
	s := &Struct{Fields: []Field{
		{Name: "a", Con: Uint16},
		{Name: "pos", Con: Tell{}},
	}}
	v, err := Parse(s, []byte{1, 0, 0xff})
	require.NoError(t, err)
	rec := v.(*Record)
	pos, _ := rec.Get("pos")
	assert.Equal(t, int64(2), pos)
}

func TestOffsetRestoresPosition(t *testing.T) {
	s := &Struct{Fields: []Field{
		{Name: "ptr", Con: Uint8},
		{Name: "section", Con: Offset{
			At:    func(ctx *Context) (int64, error) { v, _ := ctx.Get("ptr"); return int64(v.(uint8)), nil },
			Inner: Uint16LE,
		}},
		{Name: "after", Con: Uint8},
	}}
	// ptr=3, bytes[3:5] hold the section, then "after" reads byte[1]
	// (position right after ptr, since Offset restores position).
	data := []byte{3, 0xaa, 0x00, 0x34, 0x12, 0x00}
	v, err := Parse(s, data)
	require.NoError(t, err)
	rec := v.(*Record)
	sec, _ := rec.Get("section")
	assert.Equal(t, uint16(0x1234), sec)
	after, _ := rec.Get("after")
	assert.Equal(t, uint8(0xaa), after)
}
