package construct

import (
	"bytes"
	"fmt"
	"unicode/utf16"
)

// Encoding identifies a text codec a string construct encodes/decodes
// through. Grounded on structures.py's StringEncoded, which accepts any
// codec name Python's codecs module knows; Go has no equivalent registry,
// so this module supports the handful of encodings the original's own
// examples exercise.
type Encoding int

const (
	UTF8 Encoding = iota
	UTF16LE
	UTF16BE
)

func encodeText(enc Encoding, s string) []byte {
	switch enc {
	case UTF16LE, UTF16BE:
		units := utf16.Encode([]rune(s))
		raw := make([]byte, len(units)*2)
		order := LE
		if enc == UTF16BE {
			order = BE
		}
		for i, u := range units {
			order.PutUint16(raw[i*2:], u)
		}
		return raw
	default:
		return []byte(s)
	}
}

func decodeText(enc Encoding, raw []byte) (string, error) {
	switch enc {
	case UTF16LE, UTF16BE:
		if len(raw)%2 != 0 {
			return "", fmt.Errorf("%w: odd byte length %d for UTF-16", ErrFramingError, len(raw))
		}
		order := LE
		if enc == UTF16BE {
			order = BE
		}
		units := make([]uint16, len(raw)/2)
		for i := range units {
			units[i] = order.Uint16(raw[i*2:])
		}
		return string(utf16.Decode(units)), nil
	default:
		return string(raw), nil
	}
}

// String reads/writes a fixed-length text field, the text-codec analogue
// of Bytes. Grounded on structures.py:1072 (StringEncoded) / 1153 (String).
type String struct {
	N   Length
	Enc Encoding
}

func (s String) parse(st *Stream, ctx *Context) (any, error) {
	n, err := resolveLength(s.N, ctx)
	if err != nil {
		return nil, err
	}
	raw, err := st.read(n)
	if err != nil {
		return nil, err
	}
	return decodeText(s.Enc, raw)
}

func (s String) build(st *Stream, ctx *Context, v any) (any, error) {
	str, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("%w: String requires a string, got %T", ErrAdapterFailure, v)
	}
	raw := encodeText(s.Enc, str)
	n, err := resolveLength(s.N, ctx)
	if err != nil {
		return nil, err
	}
	if len(raw) != n {
		return nil, fmt.Errorf("%w: String declared %d byte(s), encoded value is %d", ErrLengthMismatch, n, len(raw))
	}
	if err := st.write(raw); err != nil {
		return nil, err
	}
	return str, nil
}

func (s String) sizeof(ctx *Context) (int, error) { return resolveLength(s.N, ctx) }
func (String) embedded() bool                     { return false }

// PascalString is a length-prefixed string: LengthField gives the byte
// count of the encoded text that follows, a thin String-flavored
// specialization of Prefixed. Grounded on structures.py:1216.
type PascalString struct {
	LengthField Construct
	Enc         Encoding
}

func (p PascalString) asPrefixed() Prefixed {
	return Prefixed{
		LengthField: p.LengthField,
		Inner: Adapted{
			Inner: GreedyBytes{},
			Adapter: AdapterFunc{
				DecodeFunc: func(raw any, _ *Context) (any, error) { return decodeText(p.Enc, raw.([]byte)) },
				EncodeFunc: func(v any, _ *Context) (any, error) { return encodeText(p.Enc, v.(string)), nil },
			},
		},
	}
}

func (p PascalString) parse(s *Stream, ctx *Context) (any, error) {
	return p.asPrefixed().parse(s, ctx)
}
func (p PascalString) build(s *Stream, ctx *Context, v any) (any, error) {
	return p.asPrefixed().build(s, ctx, v)
}
func (p PascalString) sizeof(ctx *Context) (int, error) { return p.asPrefixed().sizeof(ctx) }
func (PascalString) embedded() bool                     { return false }

// CString reads bytes up to and including a null terminator, exposing the
// text without the terminator; build appends the terminator. Grounded on
// structures.py:1285.
type CString struct {
	Enc Encoding
}

func (c CString) parse(s *Stream, _ *Context) (any, error) {
	var buf []byte
	for {
		b, err := s.readByte()
		if err != nil {
			return nil, fmt.Errorf("%w: CString missing null terminator", ErrFramingError)
		}
		if b == 0 {
			break
		}
		buf = append(buf, b)
	}
	return decodeText(c.Enc, buf)
}

func (c CString) build(s *Stream, _ *Context, v any) (any, error) {
	str, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("%w: CString requires a string, got %T", ErrAdapterFailure, v)
	}
	raw := encodeText(c.Enc, str)
	if bytes.IndexByte(raw, 0) >= 0 {
		return nil, fmt.Errorf("%w: CString value contains an embedded null byte", ErrAdapterFailure)
	}
	if err := s.write(raw); err != nil {
		return nil, err
	}
	if err := s.write([]byte{0}); err != nil {
		return nil, err
	}
	return str, nil
}

func (c CString) sizeof(*Context) (int, error) {
	return 0, fmt.Errorf("%w: CString's length isn't known without a value", ErrSizeofUnknown)
}
func (CString) embedded() bool { return false }

// Line reads/writes a CRLF-terminated line of text, the framing RESP-style
// protocols use throughout examples/redis.py. Parse fails with
// ErrFramingError if no CRLF is found before the stream ends; build always
// appends "\r\n".
type Line struct {
	Enc Encoding
}

func (l Line) parse(s *Stream, _ *Context) (any, error) {
	var buf []byte
	for {
		b, err := s.readByte()
		if err != nil {
			return nil, fmt.Errorf("%w: Line missing CRLF terminator", ErrFramingError)
		}
		if b == '\r' {
			nb, err := s.readByte()
			if err != nil || nb != '\n' {
				return nil, fmt.Errorf("%w: Line saw bare CR without LF", ErrFramingError)
			}
			break
		}
		buf = append(buf, b)
	}
	return decodeText(l.Enc, buf)
}

func (l Line) build(s *Stream, _ *Context, v any) (any, error) {
	str, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("%w: Line requires a string, got %T", ErrAdapterFailure, v)
	}
	raw := encodeText(l.Enc, str)
	if err := s.write(raw); err != nil {
		return nil, err
	}
	if err := s.write([]byte("\r\n")); err != nil {
		return nil, err
	}
	return str, nil
}

func (l Line) sizeof(*Context) (int, error) {
	return 0, fmt.Errorf("%w: Line's length isn't known without a value", ErrSizeofUnknown)
}
func (Line) embedded() bool { return false }
