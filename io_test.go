package construct

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopReadCloser struct {
	io.Reader
	closed bool
}

func (c *nopReadCloser) Close() error {
	c.closed = true
	return nil
}

func TestParseReaderRoundTripsThroughBufferedReader(t *testing.T) {
	r := strings.NewReader("hi")
	v, err := ParseReader(Bytes{N: Lit(2)}, r)
	require.NoError(t, err)
	assert.Equal(t, []byte("hi"), v)
}

func TestParseReaderLimitRejectsOversizedInput(t *testing.T) {
	r := strings.NewReader("hello world")
	_, err := ParseReaderLimit(Bytes{N: Lit(11)}, r, 4)
	assert.Error(t, err)
}

func TestPeekTagDoesNotConsume(t *testing.T) {
	r := strings.NewReader("+OK\r\n")
	tag, replay, err := PeekTag(r, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte("+"), tag)

	v, err := ParseReader(respMessage, replay)
	require.NoError(t, err)
	got := v.(*Record)
	data, _ := got.Get("data")
	assert.Equal(t, "OK", data)
}

func TestParseReadCloserClosesSource(t *testing.T) {
	rc := &nopReadCloser{Reader: strings.NewReader("hi")}
	v, err := ParseReadCloser(Bytes{N: Lit(2)}, rc)
	require.NoError(t, err)
	assert.Equal(t, []byte("hi"), v)
	assert.True(t, rc.closed)
}

func TestBuildWriterFlushesThroughBufferedWriter(t *testing.T) {
	var buf bytes.Buffer
	err := BuildWriter(Bytes{N: Lit(3)}, []byte("abc"), &buf)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), buf.Bytes())
}

func TestBuildWriterIntoPreallocatedBytesWriter(t *testing.T) {
	bw := NewBytesWriter(make([]byte, 3))
	err := BuildWriter(Bytes{N: Lit(3)}, []byte("xyz"), bw)
	require.NoError(t, err)
	assert.Equal(t, []byte("xyz"), bw.Bytes())
}
