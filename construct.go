package construct

import (
	"encoding/binary"
	"fmt"
)

// Construct is the common interface every declarative element implements,
// the Go rendition of the original Python library's Construct base class
// (original_source/structures.py). A Construct has no mutable state of its
// own: all state that changes from call to call lives in the *Stream and
// *Context passed into it, so a single Construct value is safe to build
// once and reuse for any number of concurrent Parse/Build/Sizeof calls.
type Construct interface {
	// parse reads a value from s, using ctx for cross-field lookups and
	// recording any field this construct contributes under its own name.
	parse(s *Stream, ctx *Context) (any, error)

	// build writes v to s, using ctx the same way parse does, and returns
	// the value actually committed (adapters may normalize it).
	build(s *Stream, ctx *Context, v any) (any, error)

	// sizeof reports the encoded size in bytes under ctx, or an error
	// wrapping ErrSizeofUnknown if the size cannot be determined without
	// data (e.g. a Repeat with no count, or a value-dependent adapter).
	sizeof(ctx *Context) (int, error)

	// embedded reports whether this construct's fields should be merged
	// into the enclosing Struct's own Record/Context rather than nested
	// under a single field name (§4.1's Embedded marker).
	embedded() bool
}

// PathError is the error type every exported entrypoint returns on
// failure: it records where in the construct tree (dotted field path) and
// at what stream offset the failure occurred, then wraps the underlying
// sentinel from errors.go so callers can still errors.Is/As against it.
type PathError struct {
	Path string
	Pos  int64
	Err  error
}

func (e *PathError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("construct: at offset %d: %s", e.Pos, e.Err)
	}
	return fmt.Sprintf("construct: %s: at offset %d: %s", e.Path, e.Pos, e.Err)
}

func (e *PathError) Unwrap() error { return e.Err }

// prefixPath prepends name to an existing PathError's path, building the
// dotted path up as the error unwinds through nested Structs, or wraps a
// plain error into a fresh PathError if one isn't already in hand.
func prefixPath(name string, pos int64, err error) error {
	if err == nil {
		return nil
	}
	if pe, ok := err.(*PathError); ok {
		if name == "" {
			return pe
		}
		if pe.Path == "" {
			pe.Path = name
		} else {
			pe.Path = name + "." + pe.Path
		}
		return pe
	}
	return &PathError{Path: name, Pos: pos, Err: err}
}

// Option configures a top-level Parse/Build/Sizeof call.
type Option func(*options)

type options struct {
	order      binary.ByteOrder
	strictEnd  bool
	debug      bool
	initialCtx map[string]any
}

func defaultOptions() *options {
	return &options{order: BE}
}

// WithByteOrder sets the Stream-wide fallback byte order that Integer and
// Float fields use when they don't declare their own Order (e.g. Uint16
// rather than Uint16BE/Uint16LE). Defaults to big-endian per spec §6. A
// construct's own declared Order always takes precedence over this option,
// which is how a single Struct mixes endianness across fields.
func WithByteOrder(order binary.ByteOrder) Option {
	return func(o *options) { o.order = order }
}

// WithStrictEnd requires Parse to consume the entire input; by default,
// trailing bytes after a successful top-level parse are ignored, mirroring
// the original library's permissive default.
func WithStrictEnd() Option {
	return func(o *options) { o.strictEnd = true }
}

// WithDebug toggles the default behavior of any Debug construct in the
// tree that was built with a nil Log: enabled, it reports DebugEvents to
// DefaultDebugLog (stderr); disabled (the default), such Debug constructs
// report nothing. A Debug built with its own Log callback always reports
// to that callback regardless of this option.
func WithDebug(enabled bool) Option {
	return func(o *options) { o.debug = enabled }
}

// WithContextValue seeds the root Context with a value, the mechanism a
// caller uses to pass external parameters (a protocol version, a
// previously-negotiated key length) into the top of a construct tree.
func WithContextValue(name string, v any) Option {
	return func(o *options) {
		if o.initialCtx == nil {
			o.initialCtx = make(map[string]any)
		}
		o.initialCtx[name] = v
	}
}

// debugContextKey is the well-known context key Debug consults when it
// was built with a nil Log, letting WithDebug toggle the default sink
// without threading an *options value through the Construct interface.
const debugContextKey = "__construct_debug__"

func newRootContext(o *options) *Context {
	ctx := NewContext()
	ctx.Set(debugContextKey, o.debug)
	for k, v := range o.initialCtx {
		ctx.Set(k, v)
	}
	return ctx
}

// Parse decodes data against c, returning the parsed value (typically a
// *Record for Struct-shaped constructs, or a primitive Go value for leaf
// constructs). Every error returned is a *PathError wrapping one of the
// sentinels in errors.go.
func Parse(c Construct, data []byte, opts ...Option) (any, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	s := newParseStream(data, o.order)
	ctx := newRootContext(o)
	v, err := c.parse(s, ctx)
	if err != nil {
		return nil, prefixPath("", s.tell(), err)
	}
	if o.strictEnd && s.remaining() > 0 {
		return nil, prefixPath("", s.tell(), fmt.Errorf("%w: %d byte(s) left over", ErrUnexpectedEnd, s.remaining()))
	}
	return v, nil
}

// Build encodes v against c and returns the resulting bytes.
func Build(c Construct, v any, opts ...Option) ([]byte, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	s := newBuildStream(o.order)
	ctx := newRootContext(o)
	if _, err := c.build(s, ctx, v); err != nil {
		return nil, prefixPath("", s.tell(), err)
	}
	return s.bytes(), nil
}

// SizeofValue reports the encoded size of c in bytes, independent of any
// particular value, under the context seeded by opts. It returns an error
// wrapping ErrSizeofUnknown if c's size depends on data that isn't
// available from context alone (a Repeat with no declared count, a
// variable-length string, and so on).
func SizeofValue(c Construct, opts ...Option) (int, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	ctx := newRootContext(o)
	n, err := c.sizeof(ctx)
	if err != nil {
		return 0, prefixPath("", 0, err)
	}
	return n, nil
}
