package construct

import (
	"hash"
	"hash/crc32"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func crc32Hasher() hash.Hash { return crc32.NewIEEE() }

func TestChecksumRoundTrip(t *testing.T) {
	s := &Struct{Fields: []Field{
		{Name: "body", Con: Bytes{N: Lit(4)}},
		{Name: "crc", Con: Checksum{
			Field:  Bytes{N: Lit(4)},
			Hasher: crc32Hasher,
			Over: func(ctx *Context) ([]byte, error) {
				v, _ := ctx.Get("body")
				return v.([]byte), nil
			},
		}},
	}}

	rec := NewRecord().Set("body", []byte{1, 2, 3, 4})
	out, err := Build(s, rec)
	require.NoError(t, err)

	v, err := Parse(s, out)
	require.NoError(t, err)
	got := v.(*Record)
	crc, _ := got.Get("crc")
	assert.Len(t, crc.([]byte), 4)

	corrupted := append([]byte(nil), out...)
	corrupted[0] ^= 0xff
	_, err = Parse(s, corrupted)
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}
