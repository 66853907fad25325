package construct

import (
	"fmt"
	"reflect"
)

// Adapter transforms a value between its "on-the-wire" shape and its
// "in-context" shape: Decode turns a freshly parsed value into the value
// callers see, Encode turns a caller-supplied value back into what the
// inner construct should build. Grounded on structures.py's Adapted
// (itself built from _decode/_encode hooks on a Tunnel).
type Adapter interface {
	Decode(raw any, ctx *Context) (any, error)
	Encode(v any, ctx *Context) (any, error)
}

// AdapterFunc pairs are a convenience for the common case of two plain
// functions rather than a named Adapter type.
type AdapterFunc struct {
	DecodeFunc func(raw any, ctx *Context) (any, error)
	EncodeFunc func(v any, ctx *Context) (any, error)
}

func (a AdapterFunc) Decode(raw any, ctx *Context) (any, error) { return a.DecodeFunc(raw, ctx) }
func (a AdapterFunc) Encode(v any, ctx *Context) (any, error)   { return a.EncodeFunc(v, ctx) }

// Adapted wraps Inner, running Adapter.Decode over whatever Inner parses
// and Adapter.Encode over whatever value the caller builds before handing
// it to Inner. Grounded on structures.py:783.
type Adapted struct {
	Inner   Construct
	Adapter Adapter
}

func (a Adapted) parse(s *Stream, ctx *Context) (any, error) {
	raw, err := a.Inner.parse(s, ctx)
	if err != nil {
		return nil, err
	}
	v, err := a.Adapter.Decode(raw, ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrAdapterFailure, err)
	}
	return v, nil
}

func (a Adapted) build(s *Stream, ctx *Context, v any) (any, error) {
	raw, err := a.Adapter.Encode(v, ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrAdapterFailure, err)
	}
	if _, err := a.Inner.build(s, ctx, raw); err != nil {
		return nil, err
	}
	return v, nil
}

func (a Adapted) sizeof(ctx *Context) (int, error) { return a.Inner.sizeof(ctx) }
func (Adapted) embedded() bool                     { return false }

// Prefixed reads a length (via LengthField, an Integer-shaped construct)
// then carves exactly that many bytes into a window for Inner, requiring
// Inner to consume the window fully (ErrFramingError otherwise), stricter
// than the original Python PrefixedArray/Prefixed, which silently ignores
// leftover bytes in the window (structures.py:837). On build, Inner is run
// against a scratch sub-stream so its encoded length can be measured and
// written as the prefix before the payload.
type Prefixed struct {
	LengthField Construct
	Inner       Construct
}

func (p Prefixed) parse(s *Stream, ctx *Context) (any, error) {
	rawLen, err := p.LengthField.parse(s, ctx)
	if err != nil {
		return nil, err
	}
	n, err := toInt(rawLen)
	if err != nil {
		return nil, err
	}
	win, err := s.window(n)
	if err != nil {
		return nil, err
	}
	v, err := p.Inner.parse(win, ctx)
	if err != nil {
		return nil, err
	}
	if win.remaining() > 0 {
		return nil, fmt.Errorf("%w: %d byte(s) left unconsumed in a %d-byte window", ErrFramingError, win.remaining(), n)
	}
	return v, nil
}

func (p Prefixed) build(s *Stream, ctx *Context, v any) (any, error) {
	sub := s.subBuild()
	if _, err := p.Inner.build(sub, ctx, v); err != nil {
		return nil, err
	}
	payload := sub.bytes()
	if _, err := p.LengthField.build(s, ctx, lenValueLike(p.LengthField, len(payload))); err != nil {
		return nil, err
	}
	if err := s.write(payload); err != nil {
		return nil, err
	}
	return v, nil
}

func (p Prefixed) sizeof(ctx *Context) (int, error) {
	lenSize, err := p.LengthField.sizeof(ctx)
	if err != nil {
		return 0, err
	}
	innerSize, err := p.Inner.sizeof(ctx)
	if err != nil {
		return 0, err
	}
	return lenSize + innerSize, nil
}

func (Prefixed) embedded() bool { return false }

// lenValueLike produces a length value matching the Go type LengthField
// expects to build (its Integer width's natural type), so callers can
// write Prefixed{LengthField: Uint16, ...} without worrying about which
// integer type Uint16.build wants.
func lenValueLike(lengthField Construct, n int) any {
	integer, ok := lengthField.(Integer)
	if !ok {
		return uint64(n)
	}
	switch integer.width {
	case widthU8:
		return uint8(n)
	case widthU16:
		return uint16(n)
	case widthU32:
		return uint32(n)
	default:
		return uint64(n)
	}
}

func toInt(v any) (int, error) {
	u, err := toUint64(v)
	if err != nil {
		return 0, err
	}
	return int(u), nil
}

// Padded forces Inner into exactly N bytes: on parse, a window of N bytes
// is carved and Inner reads from it, with any unread trailing bytes
// silently discarded (no ErrFramingError, unlike Prefixed: a truncated
// tail is the point of fixed padding, not an error). On build, Inner's
// output is measured and the window is filled out to N with zero bytes,
// failing with ErrLengthMismatch if Inner's encoding overruns N. Grounded
// on structures.py:899.
type Padded struct {
	N     Length
	Inner Construct
}

func (p Padded) parse(s *Stream, ctx *Context) (any, error) {
	n, err := resolveLength(p.N, ctx)
	if err != nil {
		return nil, err
	}
	win, err := s.window(n)
	if err != nil {
		return nil, err
	}
	return p.Inner.parse(win, ctx)
}

func (p Padded) build(s *Stream, ctx *Context, v any) (any, error) {
	n, err := resolveLength(p.N, ctx)
	if err != nil {
		return nil, err
	}
	sub := s.subBuild()
	if _, err := p.Inner.build(sub, ctx, v); err != nil {
		return nil, err
	}
	payload := sub.bytes()
	if len(payload) > n {
		return nil, fmt.Errorf("%w: padded field declared %d byte(s), inner encoded %d", ErrLengthMismatch, n, len(payload))
	}
	if err := s.write(payload); err != nil {
		return nil, err
	}
	if err := s.writeZeros(n - len(payload)); err != nil {
		return nil, err
	}
	return v, nil
}

func (p Padded) sizeof(ctx *Context) (int, error) { return resolveLength(p.N, ctx) }
func (Padded) embedded() bool                     { return false }

// Aligned pads the *current stream position* up to the next multiple of
// Modulus before delegating to Inner, unlike the teacher's list.go, which
// pads *after* each item, Aligned aligns the start of Inner's own encoding
// (spec.md's wording: "round the stream position up, then run the inner
// construct"). Sizeof is always ErrSizeofUnknown since the padding amount
// depends on a stream position no Context carries. Grounded on
// structures.py:1009, roundup arithmetic reused from oy3o-codec/util.go.
type Aligned struct {
	Modulus int
	Inner   Construct
}

func (a Aligned) parse(s *Stream, ctx *Context) (any, error) {
	if err := a.skip(s); err != nil {
		return nil, err
	}
	return a.Inner.parse(s, ctx)
}

func (a Aligned) build(s *Stream, ctx *Context, v any) (any, error) {
	if err := a.skip(s); err != nil {
		return nil, err
	}
	return a.Inner.build(s, ctx, v)
}

func (a Aligned) skip(s *Stream) error {
	if a.Modulus <= 1 {
		return nil
	}
	pos := s.tell()
	target := roundup(pos, int64(a.Modulus))
	pad := int(target - pos)
	if pad == 0 {
		return nil
	}
	if s.parsing() {
		_, err := s.read(pad)
		return err
	}
	return s.writeZeros(pad)
}

func (a Aligned) sizeof(*Context) (int, error) {
	return 0, fmt.Errorf("%w: Aligned's padding depends on stream position, not context", ErrSizeofUnknown)
}
func (Aligned) embedded() bool { return false }

// Repeat runs Inner against the stream repeatedly, stopping either when
// Count items have been produced (if Count is non-nil) or, greedily, the
// first time Inner fails cleanly (stream position unchanged, §4.12). In
// greedy mode a failure that had already advanced the stream is returned
// as an error rather than ending the sequence; with Count set, any failure
// is returned. RepeatExactly is Repeat with Count
// always set. Simplified from the original's start/stop/until range
// (structures.py's Range) per spec.md §4.5/§9; Until supplements it for
// the predicate-driven stopping condition the original also offered.
type Repeat struct {
	Count Length // nil: greedy, stop on first clean parse failure
	Until func(item any, ctx *Context) bool
	Inner Construct
}

// RepeatExactly runs Inner exactly N times, propagating any failure
// (unlike greedy Repeat, a short read here is always an error).
func RepeatExactly(n Length, inner Construct) Repeat {
	return Repeat{Count: n, Inner: inner}
}

func (r Repeat) parse(s *Stream, ctx *Context) (any, error) {
	var items []any
	if r.Count != nil {
		n, err := resolveLength(r.Count, ctx)
		if err != nil {
			return nil, err
		}
		for i := 0; i < n; i++ {
			item, err := r.Inner.parse(s, ctx)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
			if r.Until != nil && r.Until(item, ctx) {
				break
			}
		}
		return items, nil
	}

	for {
		m := s.save()
		item, err := r.Inner.parse(s, ctx)
		if err != nil {
			if s.tell() != int64(m.pos) {
				return nil, err
			}
			s.rewind(m)
			break
		}
		items = append(items, item)
		if r.Until != nil && r.Until(item, ctx) {
			break
		}
	}
	return items, nil
}

func (r Repeat) build(s *Stream, ctx *Context, v any) (any, error) {
	items, err := toSlice(v)
	if err != nil {
		return nil, err
	}
	if r.Count != nil {
		n, err := resolveLength(r.Count, ctx)
		if err != nil {
			return nil, err
		}
		if len(items) != n {
			return nil, fmt.Errorf("%w: expected %d item(s), got %d", ErrLengthMismatch, n, len(items))
		}
	}
	out := make([]any, len(items))
	for i, item := range items {
		built, err := r.Inner.build(s, ctx, item)
		if err != nil {
			return nil, err
		}
		out[i] = built
	}
	return out, nil
}

func (r Repeat) sizeof(ctx *Context) (int, error) {
	if r.Count == nil {
		return 0, fmt.Errorf("%w: Repeat with no Count has no fixed size", ErrSizeofUnknown)
	}
	n, err := resolveLength(r.Count, ctx)
	if err != nil {
		return 0, err
	}
	innerSize, err := r.Inner.sizeof(ctx)
	if err != nil {
		return 0, err
	}
	return n * innerSize, nil
}

func (Repeat) embedded() bool { return false }

// toSlice accepts either []any or any concrete slice type (via a small
// reflection-free fast path plus a reflection fallback) so callers can
// build from a natural Go slice without wrapping it in []any by hand.
func toSlice(v any) ([]any, error) {
	switch s := v.(type) {
	case nil:
		return nil, nil
	case []any:
		return s, nil
	default:
		return reflectToSlice(v)
	}
}

// reflectToSlice converts a concrete Go slice (e.g. []uint32, []*Record)
// into []any by reflection, the fallback path for Repeat.build callers
// that pass a natural slice type instead of []any.
func reflectToSlice(v any) ([]any, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return nil, fmt.Errorf("%w: Repeat requires a slice, got %T", ErrAdapterFailure, v)
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}
