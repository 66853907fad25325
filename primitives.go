package construct

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// Pass is the no-op construct: it parses to nil, consumes nothing on
// build, and has size 0. Grounded on structures.py's Pass singleton.
type Pass struct{}

func (Pass) parse(*Stream, *Context) (any, error)        { return nil, nil }
func (Pass) build(*Stream, *Context, any) (any, error)   { return nil, nil }
func (Pass) sizeof(*Context) (int, error)                { return 0, nil }
func (Pass) embedded() bool                              { return false }

// Flag reads/writes a single byte as a bool: zero is false, anything else
// is true on parse; build always emits 0x00 or 0x01. Grounded on
// structures.py's Flag.
type Flag struct{}

func (Flag) parse(s *Stream, _ *Context) (any, error) {
	b, err := s.readByte()
	if err != nil {
		return nil, err
	}
	return b != 0, nil
}

func (Flag) build(s *Stream, _ *Context, v any) (any, error) {
	b, ok := v.(bool)
	if !ok {
		return nil, fmt.Errorf("%w: Flag requires a bool, got %T", ErrAdapterFailure, v)
	}
	var raw byte
	if b {
		raw = 1
	}
	if err := s.write([]byte{raw}); err != nil {
		return nil, err
	}
	return b, nil
}

func (Flag) sizeof(*Context) (int, error) { return 1, nil }
func (Flag) embedded() bool               { return false }

// Bytes reads/writes a fixed number of raw bytes, n resolved at parse/build
// time via resolveLength so it may be a literal or a Context-dependent
// function. Grounded on structures.py's Bytes.
type Bytes struct {
	N Length
}

// Length is how every length-bearing construct (Bytes, String, Padding,
// Padded, and Repeat's item Count) accepts either a
// literal size or a value computed from the in-progress Context, mirroring
// the original Python library's "this or a lambda" convention.
type Length func(ctx *Context) (int, error)

// Lit wraps a literal length as a Length.
func Lit(n int) Length { return func(*Context) (int, error) { return n, nil } }

func resolveLength(l Length, ctx *Context) (int, error) {
	if l == nil {
		return 0, fmt.Errorf("%w: no length provided", ErrSizeofUnknown)
	}
	return l(ctx)
}

func (b Bytes) parse(s *Stream, ctx *Context) (any, error) {
	n, err := resolveLength(b.N, ctx)
	if err != nil {
		return nil, err
	}
	return s.read(n)
}

func (b Bytes) build(s *Stream, ctx *Context, v any) (any, error) {
	raw, ok := v.([]byte)
	if !ok {
		return nil, fmt.Errorf("%w: Bytes requires a []byte, got %T", ErrAdapterFailure, v)
	}
	n, err := resolveLength(b.N, ctx)
	if err != nil {
		return nil, err
	}
	if len(raw) != n {
		return nil, fmt.Errorf("%w: Bytes expected %d byte(s), got %d", ErrLengthMismatch, n, len(raw))
	}
	if err := s.write(raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (b Bytes) sizeof(ctx *Context) (int, error) { return resolveLength(b.N, ctx) }
func (Bytes) embedded() bool                     { return false }

// GreedyBytes reads all remaining bytes in the stream on parse, and writes
// whatever []byte it's given on build with no length check. Grounded on
// structures.py's GreedyBytes singleton.
type GreedyBytes struct{}

func (GreedyBytes) parse(s *Stream, _ *Context) (any, error) {
	return s.read(s.remaining())
}

func (GreedyBytes) build(s *Stream, _ *Context, v any) (any, error) {
	raw, ok := v.([]byte)
	if !ok {
		return nil, fmt.Errorf("%w: GreedyBytes requires a []byte, got %T", ErrAdapterFailure, v)
	}
	if err := s.write(raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (GreedyBytes) sizeof(*Context) (int, error) {
	return 0, fmt.Errorf("%w: GreedyBytes has no fixed size", ErrSizeofUnknown)
}
func (GreedyBytes) embedded() bool { return false }

// intWidth identifies one of the fixed-width integer kinds Integer
// supports, and whether it is sign-extended on parse.
type intWidth struct {
	bytes  int
	signed bool
}

var (
	widthU8  = intWidth{1, false}
	widthU16 = intWidth{2, false}
	widthU32 = intWidth{4, false}
	widthU64 = intWidth{8, false}
	widthI8  = intWidth{1, true}
	widthI16 = intWidth{2, true}
	widthI32 = intWidth{4, true}
	widthI64 = intWidth{8, true}
)

// Integer reads/writes a fixed-width integer, parsing to one of Go's
// uintN/intN types and accepting the same on build. Endian is a per-construct
// declaration (spec §4.3): when Order is nil it falls back to the enclosing
// Stream's configured order, which itself defaults to big-endian (§6,
// "Integers default to unsigned big-endian unless otherwise declared"), so a
// single Struct can freely mix Uint16BE and Uint16LE fields. Grounded on
// structures.py's Int8ul/Int16ub/... family, collapsed into one generic
// construct parameterized by width+signedness+order the way the teacher's
// Reader/Writer expose one ReadUintN per width plus a WithByteOrder override.
type Integer struct {
	width intWidth
	Order binary.ByteOrder
}

func (n Integer) order(s *Stream) binary.ByteOrder {
	if n.Order != nil {
		return n.Order
	}
	return s.order
}

var (
	// Uint8/Uint16/Uint32/Uint64 parse/build unsigned integers in the
	// Stream's byte order (big-endian unless WithByteOrder says otherwise).
	Uint8  = Integer{width: widthU8}
	Uint16 = Integer{width: widthU16}
	Uint32 = Integer{width: widthU32}
	Uint64 = Integer{width: widthU64}

	// Int8/Int16/Int32/Int64 parse/build signed integers in the Stream's
	// byte order (big-endian unless WithByteOrder says otherwise).
	Int8  = Integer{width: widthI8}
	Int16 = Integer{width: widthI16}
	Int32 = Integer{width: widthI32}
	Int64 = Integer{width: widthI64}

	// BE/LE variant pairs let a Struct mix endianness field by field.
	Uint16BE = Integer{width: widthU16, Order: BE}
	Uint16LE = Integer{width: widthU16, Order: LE}
	Uint32BE = Integer{width: widthU32, Order: BE}
	Uint32LE = Integer{width: widthU32, Order: LE}
	Uint64BE = Integer{width: widthU64, Order: BE}
	Uint64LE = Integer{width: widthU64, Order: LE}
	Int16BE  = Integer{width: widthI16, Order: BE}
	Int16LE  = Integer{width: widthI16, Order: LE}
	Int32BE  = Integer{width: widthI32, Order: BE}
	Int32LE  = Integer{width: widthI32, Order: LE}
	Int64BE  = Integer{width: widthI64, Order: BE}
	Int64LE  = Integer{width: widthI64, Order: LE}
)

func (n Integer) parse(s *Stream, _ *Context) (any, error) {
	raw, err := s.read(n.width.bytes)
	if err != nil {
		return nil, err
	}
	return decodeInt(n.order(s), n.width, raw), nil
}

func decodeInt(order binary.ByteOrder, w intWidth, raw []byte) any {
	switch w.bytes {
	case 1:
		if w.signed {
			return int8(raw[0])
		}
		return raw[0]
	case 2:
		u := order.Uint16(raw)
		if w.signed {
			return int16(u)
		}
		return u
	case 4:
		u := order.Uint32(raw)
		if w.signed {
			return int32(u)
		}
		return u
	default:
		u := order.Uint64(raw)
		if w.signed {
			return int64(u)
		}
		return u
	}
}

func (n Integer) build(s *Stream, _ *Context, v any) (any, error) {
	u, err := toUint64(v)
	if err != nil {
		return nil, err
	}
	order := n.order(s)
	raw := make([]byte, n.width.bytes)
	switch n.width.bytes {
	case 1:
		raw[0] = byte(u)
	case 2:
		order.PutUint16(raw, uint16(u))
	case 4:
		order.PutUint32(raw, uint32(u))
	default:
		order.PutUint64(raw, u)
	}
	if err := s.write(raw); err != nil {
		return nil, err
	}
	return v, nil
}

// toUint64 accepts any Go integer kind and returns its bit pattern,
// the conversion Integer.build needs to treat signed and unsigned
// inputs uniformly before splitting into bytes.
func toUint64(v any) (uint64, error) {
	switch n := v.(type) {
	case uint8:
		return uint64(n), nil
	case uint16:
		return uint64(n), nil
	case uint32:
		return uint64(n), nil
	case uint64:
		return n, nil
	case uint:
		return uint64(n), nil
	case int8:
		return uint64(uint8(n)), nil
	case int16:
		return uint64(uint16(n)), nil
	case int32:
		return uint64(uint32(n)), nil
	case int64:
		return uint64(n), nil
	case int:
		return uint64(n), nil
	default:
		return 0, fmt.Errorf("%w: Integer requires an integer value, got %T", ErrAdapterFailure, v)
	}
}

func (n Integer) sizeof(*Context) (int, error) { return n.width.bytes, nil }
func (Integer) embedded() bool                 { return false }

// Float32/Float64 read/write IEEE-754 floats. Like Integer, Order is a
// per-construct declaration defaulting to the enclosing Stream's order
// (itself big-endian by default, spec §4.3/§6). Grounded on
// structures.py's Float32b/Float64b.
type Float struct {
	bytes int
	Order binary.ByteOrder
}

var (
	Float32   = Float{bytes: 4}
	Float64   = Float{bytes: 8}
	Float32BE = Float{bytes: 4, Order: BE}
	Float32LE = Float{bytes: 4, Order: LE}
	Float64BE = Float{bytes: 8, Order: BE}
	Float64LE = Float{bytes: 8, Order: LE}
)

func (f Float) order(s *Stream) binary.ByteOrder {
	if f.Order != nil {
		return f.Order
	}
	return s.order
}

func (f Float) parse(s *Stream, _ *Context) (any, error) {
	raw, err := s.read(f.bytes)
	if err != nil {
		return nil, err
	}
	order := f.order(s)
	if f.bytes == 4 {
		return math.Float32frombits(order.Uint32(raw)), nil
	}
	return math.Float64frombits(order.Uint64(raw)), nil
}

func (f Float) build(s *Stream, _ *Context, v any) (any, error) {
	order := f.order(s)
	raw := make([]byte, f.bytes)
	switch n := v.(type) {
	case float32:
		if f.bytes != 4 {
			return nil, fmt.Errorf("%w: Float64 requires a float64, got float32", ErrAdapterFailure)
		}
		order.PutUint32(raw, math.Float32bits(n))
	case float64:
		if f.bytes != 8 {
			return nil, fmt.Errorf("%w: Float32 requires a float32, got float64", ErrAdapterFailure)
		}
		order.PutUint64(raw, math.Float64bits(n))
	default:
		return nil, fmt.Errorf("%w: Float requires a float value, got %T", ErrAdapterFailure, v)
	}
	if err := s.write(raw); err != nil {
		return nil, err
	}
	return v, nil
}

func (f Float) sizeof(*Context) (int, error) { return f.bytes, nil }
func (Float) embedded() bool                 { return false }

// Padding writes/consumes n bytes of filler (Fill, 0x00 by default, on
// build; ignored on parse), the fixed-width complement to Aligned's dynamic
// padding.
// Grounded on structures.py's Padding.
type Padding struct {
	N    Length
	Fill byte
}

func (p Padding) parse(s *Stream, ctx *Context) (any, error) {
	n, err := resolveLength(p.N, ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.read(n); err != nil {
		return nil, err
	}
	return nil, nil
}

func (p Padding) build(s *Stream, ctx *Context, _ any) (any, error) {
	n, err := resolveLength(p.N, ctx)
	if err != nil {
		return nil, err
	}
	if p.Fill == 0 {
		return nil, s.writeZeros(n)
	}
	return nil, s.write(bytes.Repeat([]byte{p.Fill}, n))
}

func (p Padding) sizeof(ctx *Context) (int, error) { return resolveLength(p.N, ctx) }
func (Padding) embedded() bool                     { return false }

// Const asserts that Value is present on parse (failing with
// ErrConstMismatch otherwise) and always writes Value on build, ignoring
// whatever the caller passed in. Grounded on structures.py's Const.
type Const struct {
	Value []byte
}

func (c Const) parse(s *Stream, _ *Context) (any, error) {
	raw, err := s.read(len(c.Value))
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(raw, c.Value) {
		return nil, fmt.Errorf("%w: expected % x, got % x", ErrConstMismatch, c.Value, raw)
	}
	return raw, nil
}

func (c Const) build(s *Stream, _ *Context, _ any) (any, error) {
	if err := s.write(c.Value); err != nil {
		return nil, err
	}
	return c.Value, nil
}

func (c Const) sizeof(*Context) (int, error) { return len(c.Value), nil }
func (Const) embedded() bool                 { return false }
