package construct

import (
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- BMP: a minimal bitmap file header, grounded on rpi_eeprom.py's style
// of fixed-layout headers; the stored pixelOffset is parsed as a plain
// field and not followed. ---

var bmpHeader = &Struct{Fields: []Field{
	{Name: "magic", Con: Const{Value: []byte("BM")}},
	{Name: "fileSize", Con: Uint32},
	{Name: "reserved", Con: Padding{N: Lit(4)}},
	{Name: "pixelOffset", Con: Uint32},
	{Name: "width", Con: Int32},
	{Name: "height", Con: Int32},
	{Name: "planes", Con: Uint16},
	{Name: "bitCount", Con: Uint16},
}}

func TestBMPFileHeaderRoundTrip(t *testing.T) {
	rec := NewRecord().
		Set("magic", []byte("BM")).
		Set("fileSize", uint32(70)).
		Set("pixelOffset", uint32(54)).
		Set("width", int32(2)).
		Set("height", int32(2)).
		Set("planes", uint16(1)).
		Set("bitCount", uint16(24))

	out, err := Build(bmpHeader, rec)
	require.NoError(t, err)
	require.Len(t, out, 26)

	n, err := SizeofValue(bmpHeader)
	require.NoError(t, err)
	assert.Equal(t, 26, n)

	v, err := Parse(bmpHeader, out)
	require.NoError(t, err)
	got := v.(*Record)
	fs, _ := got.Get("fileSize")
	assert.Equal(t, uint32(70), fs)
	bc, _ := got.Get("bitCount")
	assert.Equal(t, uint16(24), bc)
}

// bmpRecord is the literal scenario 1 declaration: signature = Const(b"BMP"),
// width/height = Integer(1), and a pixel payload sized from context, the
// shape Contextual exists for (spec §4.4/§8 scenario 1).
var bmpRecord = &Struct{Fields: []Field{
	{Name: "signature", Con: Const{Value: []byte("BMP")}},
	{Name: "width", Con: Uint8},
	{Name: "height", Con: Uint8},
	{Name: "pixels", Con: Contextual{Resolve: func(ctx *Context) (Construct, error) {
		w, ok := ctx.Get("width")
		if !ok {
			return nil, fmt.Errorf("%w: pixels needs width in context", ErrAdapterFailure)
		}
		h, ok := ctx.Get("height")
		if !ok {
			return nil, fmt.Errorf("%w: pixels needs height in context", ErrAdapterFailure)
		}
		wi, err := toInt(w)
		if err != nil {
			return nil, err
		}
		hi, err := toInt(h)
		if err != nil {
			return nil, err
		}
		return Bytes{N: Lit(wi * hi)}, nil
	}}},
}}

func TestScenarioBMPRecord(t *testing.T) {
	data := []byte("BMP\x03\x02\x07\x08\t\x0b\x0c\r")

	v, err := Parse(bmpRecord, data)
	require.NoError(t, err)
	rec := v.(*Record)
	sig, _ := rec.Get("signature")
	assert.Equal(t, []byte("BMP"), sig)
	width, _ := rec.Get("width")
	assert.Equal(t, uint8(3), width)
	height, _ := rec.Get("height")
	assert.Equal(t, uint8(2), height)
	pixels, _ := rec.Get("pixels")
	assert.Equal(t, []byte("\x07\x08\t\x0b\x0c\r"), pixels)

	out, err := Build(bmpRecord, rec)
	require.NoError(t, err)
	assert.Equal(t, data, out)

	n, err := SizeofValue(bmpRecord, WithContextValue("width", 10), WithContextValue("height", 10))
	require.NoError(t, err)
	assert.Equal(t, 105, n)
}

// --- RESP: the Redis serialization protocol, grounded on
// examples/redis.py's Message/BulkString/Array. Array's element
// construct is the not-yet-defined Message itself, so it is reached
// through Lazy rather than a direct reference. ---

var respInteger = Adapted{
	Inner: Line{Enc: UTF8},
	Adapter: AdapterFunc{
		DecodeFunc: func(raw any, _ *Context) (any, error) { return strconv.Atoi(raw.(string)) },
		EncodeFunc: func(v any, _ *Context) (any, error) { return strconv.Itoa(v.(int)), nil },
	},
}

var respBulkStringBody = &Struct{Fields: []Field{
	{Name: "length", Con: respInteger},
	{Name: "data", Con: If{
		Cond: func(ctx *Context) bool { n, _ := ctx.Get("length"); return n.(int) != -1 },
		// Contextual(Bytes, length), verbatim per spec §8 scenario 3.
		Then: Contextual{Resolve: func(ctx *Context) (Construct, error) {
			n, _ := ctx.Get("length")
			return Bytes{N: Lit(n.(int))}, nil
		}},
	}},
	{Name: "ending", Con: If{
		Cond: func(ctx *Context) bool { n, _ := ctx.Get("length"); return n.(int) != -1 },
		Then: Const{Value: []byte("\r\n")},
	}},
}}

var respBulkString = Adapted{
	Inner: respBulkStringBody,
	Adapter: AdapterFunc{
		DecodeFunc: func(raw any, _ *Context) (any, error) {
			rec := raw.(*Record)
			length, _ := rec.Get("length")
			if length.(int) == -1 {
				return nil, nil
			}
			data, _ := rec.Get("data")
			return data, nil
		},
		EncodeFunc: func(v any, _ *Context) (any, error) {
			if v == nil {
				return NewRecord().Set("length", -1), nil
			}
			data := v.([]byte)
			return NewRecord().Set("length", len(data)).Set("data", data).Set("ending", []byte("\r\n")), nil
		},
	},
}

var respArrayBody = &Struct{Fields: []Field{
	{Name: "length", Con: respInteger},
	{Name: "data", Con: If{
		Cond: func(ctx *Context) bool { n, _ := ctx.Get("length"); return n.(int) != -1 },
		Then: RepeatExactly(func(ctx *Context) (int, error) {
			n, _ := ctx.Get("length")
			return n.(int), nil
		}, &Lazy{Resolve: func() Construct { return respMessage }}),
	}},
}}

var respArray = Adapted{
	Inner: respArrayBody,
	Adapter: AdapterFunc{
		DecodeFunc: func(raw any, _ *Context) (any, error) {
			rec := raw.(*Record)
			length, _ := rec.Get("length")
			if length.(int) == -1 {
				return nil, nil
			}
			data, _ := rec.Get("data")
			return data, nil
		},
		EncodeFunc: func(v any, _ *Context) (any, error) {
			if v == nil {
				return NewRecord().Set("length", -1), nil
			}
			items := v.([]any)
			return NewRecord().Set("length", len(items)).Set("data", items), nil
		},
	},
}

// RedisError wraps a RESP Error ('-') message's text so it round-trips as
// a distinct Go value from a Simple String ('+'), per spec §8 scenario 4's
// worked example (["Foo", RedisError("Bar")]).
type RedisError struct {
	Message string
}

func (e RedisError) Error() string { return e.Message }

var respError = Adapted{
	Inner: Line{Enc: UTF8},
	Adapter: AdapterFunc{
		DecodeFunc: func(raw any, _ *Context) (any, error) { return RedisError{Message: raw.(string)}, nil },
		EncodeFunc: func(v any, _ *Context) (any, error) { return v.(RedisError).Message, nil },
	},
}

// respMessage is the RESP frame dispatcher: a one-byte type tag followed
// by a type-specific payload, the exact shape Neumenon-glyph's telnet
// option parsing also uses (tag byte + type-dependent body).
var respMessage Construct = &Struct{Fields: []Field{
	{Name: "type", Con: Uint8},
	{Name: "data", Con: Switch{
		Key: func(ctx *Context) any { v, _ := ctx.Get("type"); return v },
		Cases: []Case{
			{Value: uint8('+'), Con: Line{Enc: UTF8}},
			{Value: uint8('-'), Con: respError},
			{Value: uint8(':'), Con: respInteger},
			{Value: uint8('$'), Con: respBulkString},
			{Value: uint8('*'), Con: respArray},
		},
	}},
}}

func TestScenarioRESPSimpleString(t *testing.T) {
	rec := NewRecord().Set("type", uint8('+')).Set("data", "PONG")
	out, err := Build(respMessage, rec)
	require.NoError(t, err)
	assert.Equal(t, []byte("+PONG\r\n"), out)

	v, err := Parse(respMessage, out)
	require.NoError(t, err)
	got := v.(*Record)
	data, _ := got.Get("data")
	assert.Equal(t, "PONG", data)
}

func TestScenarioRESPBulkString(t *testing.T) {
	rec := NewRecord().Set("type", uint8('$')).Set("data", []byte("hello"))
	out, err := Build(respMessage, rec)
	require.NoError(t, err)
	assert.Equal(t, []byte("$5\r\nhello\r\n"), out)

	v, err := Parse(respMessage, out)
	require.NoError(t, err)
	got := v.(*Record)
	data, _ := got.Get("data")
	assert.Equal(t, []byte("hello"), data)

	// Null bulk string: "$-1\r\n"
	nilRec := NewRecord().Set("type", uint8('$')).Set("data", nil)
	out, err = Build(respMessage, nilRec)
	require.NoError(t, err)
	assert.Equal(t, []byte("$-1\r\n"), out)
}

func TestScenarioRESPSimpleError(t *testing.T) {
	rec := NewRecord().Set("type", uint8('-')).Set("data", RedisError{Message: "Bar"})
	out, err := Build(respMessage, rec)
	require.NoError(t, err)
	assert.Equal(t, []byte("-Bar\r\n"), out)

	v, err := Parse(respMessage, out)
	require.NoError(t, err)
	got := v.(*Record)
	data, _ := got.Get("data")
	assert.Equal(t, RedisError{Message: "Bar"}, data)
}

func TestScenarioRESPRecursiveArray(t *testing.T) {
	// *2\r\n*3\r\n:1\r\n:2\r\n:3\r\n*2\r\n+Foo\r\n-Bar\r\n -- an array of an
	// array of integers and an array of a simple string and an error,
	// verbatim per spec §8 scenario 4.
	inner := []any{
		NewRecord().Set("type", uint8('*')).Set("data", []any{
			NewRecord().Set("type", uint8(':')).Set("data", 1),
			NewRecord().Set("type", uint8(':')).Set("data", 2),
			NewRecord().Set("type", uint8(':')).Set("data", 3),
		}),
		NewRecord().Set("type", uint8('*')).Set("data", []any{
			NewRecord().Set("type", uint8('+')).Set("data", "Foo"),
			NewRecord().Set("type", uint8('-')).Set("data", RedisError{Message: "Bar"}),
		}),
	}
	rec := NewRecord().Set("type", uint8('*')).Set("data", inner)
	out, err := Build(respMessage, rec)
	require.NoError(t, err)
	assert.Equal(t, []byte("*2\r\n*3\r\n:1\r\n:2\r\n:3\r\n*2\r\n+Foo\r\n-Bar\r\n"), out)

	v, err := Parse(respMessage, out)
	require.NoError(t, err)
	got := v.(*Record)
	data, _ := got.Get("data")
	items := data.([]any)
	require.Len(t, items, 2)

	numbers := items[0].(*Record)
	numbersData, _ := numbers.Get("data")
	numberItems := numbersData.([]any)
	require.Len(t, numberItems, 3)
	first := numberItems[0].(*Record)
	fData, _ := first.Get("data")
	assert.Equal(t, 1, fData)

	mixed := items[1].(*Record)
	mixedData, _ := mixed.Get("data")
	mixedItems := mixedData.([]any)
	require.Len(t, mixedItems, 2)
	str := mixedItems[0].(*Record)
	strData, _ := str.Get("data")
	assert.Equal(t, "Foo", strData)
	redisErr := mixedItems[1].(*Record)
	redisErrData, _ := redisErr.Get("data")
	assert.Equal(t, RedisError{Message: "Bar"}, redisErrData)
}

func TestScenarioPrefixedWindowEnforcement(t *testing.T) {
	p := Prefixed{LengthField: Uint16LE, Inner: Uint8}
	_, err := Parse(p, []byte{2, 0, 1, 2})
	assert.ErrorIs(t, err, ErrFramingError)

	ok := Prefixed{LengthField: Uint16LE, Inner: Uint16LE}
	v, err := Parse(ok, []byte{2, 0, 0xff, 0xee})
	require.NoError(t, err)
	assert.Equal(t, uint16(0xeeff), v)
}

func TestScenarioBitFields(t *testing.T) {
	// Declaration [("a",3),("b",5)]; parse(b"\xA5") (1010 0101) -> {a:5, b:5};
	// build({a:5,b:5}) -> b"\xA5"; build({a:8,b:0}) fails with OutOfRange.
	// Verbatim per spec §8 scenario 6.
	ab := NewBitFields(Bit("a", 3), Bit("b", 5))

	v, err := Parse(ab, []byte{0xA5})
	require.NoError(t, err)
	rec := v.(*Record)
	a, _ := rec.Get("a")
	b, _ := rec.Get("b")
	assert.Equal(t, uint64(5), a)
	assert.Equal(t, uint64(5), b)

	out, err := Build(ab, NewRecord().Set("a", uint64(5)).Set("b", uint64(5)))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xA5}, out)

	_, err = Build(ab, NewRecord().Set("a", uint64(8)).Set("b", uint64(0)))
	assert.ErrorIs(t, err, ErrOutOfRange)
}
