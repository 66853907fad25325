package construct

import (
	"fmt"

	"github.com/puzpuzpuz/xsync/v4"
)

// Field is one named member of a Struct declaration, pairing a field name
// with the Construct that parses/builds it. Grounded on structures.py's
// Struct(**subcons) kwargs, rendered as an explicit slice since Go has no
// ordered-kwargs equivalent and spec.md's Record requires declaration
// order to be preserved.
type Field struct {
	Name string
	Con  Construct
}

// fieldNameSets caches, per *Struct value, whether its Fields slice has
// already been checked for duplicate names -- avoiding a full rescan on
// every parse/build of a Struct built once and reused many times, the
// same amortization oy3o-codec/fixed.go applies to reflect.Type lookups
// via its own xsync.Map-backed sizeCache.
var fieldNameSets = xsync.NewMap[*Struct, struct{}]()

// Struct parses/builds an ordered sequence of named fields into/from a
// *Record, threading a child Context scope so later fields can read
// earlier ones (§4.4's Contextual is the escape hatch for fields whose
// shape, not just length, is only known once an earlier sibling has been
// parsed). Grounded on structures.py:1406 and examples/redis.py's
// Message/BulkString.
type Struct struct {
	Fields []Field
}

// NewStruct builds a Struct and rejects duplicate field names immediately,
// panicking the way the teacher's own constructors panic on
// misuse-of-API conditions (ForwardSeekCloser/ForwardSeeker called with a
// nil io.Reader, in seeker.go) rather than deferring the check to the
// first Parse/Build call. Prefer this over a
// bare &Struct{...} literal when field names come from a fixed,
// programmer-authored declaration rather than being assembled dynamically.
func NewStruct(fields ...Field) *Struct {
	st := &Struct{Fields: fields}
	if err := st.checkDuplicates(); err != nil {
		panic(fmt.Sprintf("construct: %s", err))
	}
	return st
}

func (st *Struct) checkDuplicates() error {
	if _, ok := fieldNameSets.Load(st); ok {
		return nil
	}
	seen := make(map[string]struct{}, len(st.Fields))
	for _, f := range st.Fields {
		if f.Con != nil && f.Con.embedded() {
			continue
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateField, f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	fieldNameSets.Store(st, struct{}{})
	return nil
}

func (st *Struct) parse(s *Stream, ctx *Context) (any, error) {
	if err := st.checkDuplicates(); err != nil {
		return nil, err
	}
	child := ctx.child()
	rec := NewRecord()
	for _, f := range st.Fields {
		v, err := f.Con.parse(s, child)
		if err != nil {
			return nil, prefixPath(f.Name, s.tell(), err)
		}
		if f.Con.embedded() {
			if sub, ok := v.(*Record); ok {
				for _, k := range sub.Keys() {
					sv, _ := sub.Get(k)
					rec.Set(k, sv)
					child.Set(k, sv)
				}
			}
			continue
		}
		rec.Set(f.Name, v)
		child.Set(f.Name, v)
	}
	return rec, nil
}

func (st *Struct) build(s *Stream, ctx *Context, v any) (any, error) {
	if err := st.checkDuplicates(); err != nil {
		return nil, err
	}
	rec, ok := v.(*Record)
	if !ok {
		return nil, fmt.Errorf("%w: Struct requires a *Record, got %T", ErrAdapterFailure, v)
	}
	child := ctx.child()
	out := NewRecord()
	for _, f := range st.Fields {
		if f.Con.embedded() {
			built, err := f.Con.build(s, child, rec)
			if err != nil {
				return nil, prefixPath(f.Name, s.tell(), err)
			}
			if sub, ok := built.(*Record); ok {
				for _, k := range sub.Keys() {
					sv, _ := sub.Get(k)
					out.Set(k, sv)
					child.Set(k, sv)
				}
			}
			continue
		}
		fv, _ := rec.Get(f.Name)
		built, err := f.Con.build(s, child, fv)
		if err != nil {
			return nil, prefixPath(f.Name, s.tell(), err)
		}
		out.Set(f.Name, built)
		child.Set(f.Name, built)
	}
	return out, nil
}

func (st *Struct) sizeof(ctx *Context) (int, error) {
	child := ctx.child()
	total := 0
	for _, f := range st.Fields {
		n, err := f.Con.sizeof(child)
		if err != nil {
			return 0, prefixPath(f.Name, 0, err)
		}
		total += n
	}
	return total, nil
}

func (*Struct) embedded() bool { return false }

// Embedded marks Inner for flattening (§4.1): its Struct-shaped result is
// merged directly into the enclosing Struct's Record/Context instead of
// nested under one field name. Grounded on structures.py's "Embedded"
// wrapper (applied as `Embedded(subcon)` in a Struct's kwargs).
type Embedded struct {
	Inner Construct
}

func (e Embedded) parse(s *Stream, ctx *Context) (any, error) { return e.Inner.parse(s, ctx) }
func (e Embedded) build(s *Stream, ctx *Context, v any) (any, error) {
	return e.Inner.build(s, ctx, v)
}
func (e Embedded) sizeof(ctx *Context) (int, error) { return e.Inner.sizeof(ctx) }
func (Embedded) embedded() bool                     { return true }

// Contextual is the late-binding wrapper of §4.4: Resolve is invoked with
// the current context at the start of every parse/build/sizeof call, and
// the Construct it returns is used for that one call only -- it is never
// cached, so two calls against different contexts may resolve to entirely
// different inner constructs (different integer width, different
// endianness, a different field shape altogether). Grounded on
// original_source/structures.py:1546, which resolves Contextual(Integer,
// lambda ctx: (ctx['length'], 'big')) this way on every invocation.
type Contextual struct {
	Resolve func(ctx *Context) (Construct, error)
}

func (c Contextual) parse(s *Stream, ctx *Context) (any, error) {
	inner, err := c.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	return inner.parse(s, ctx)
}

func (c Contextual) build(s *Stream, ctx *Context, v any) (any, error) {
	inner, err := c.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	return inner.build(s, ctx, v)
}

func (c Contextual) sizeof(ctx *Context) (int, error) {
	inner, err := c.Resolve(ctx)
	if err != nil {
		return 0, err
	}
	return inner.sizeof(ctx)
}

func (Contextual) embedded() bool { return false }

// Computed derives its value from Context rather than the stream: parse
// consumes no bytes and calls Fn; build also calls Fn and ignores whatever
// value the caller supplied (a computed field is always authoritative),
// which is a deliberate REDESIGN vs. the original library's Computed,
// which only computes a value when the user-supplied obj is None
// (structures.py:1775) -- spec.md §4.8 calls for "the computed value
// always wins" so round-tripping a parsed Record back through build
// can't accidentally diverge from what the other fields actually encode.
type Computed struct {
	Fn func(ctx *Context) (any, error)
}

func (c Computed) parse(_ *Stream, ctx *Context) (any, error) { return c.Fn(ctx) }
func (c Computed) build(_ *Stream, ctx *Context, _ any) (any, error) {
	return c.Fn(ctx)
}
func (Computed) sizeof(*Context) (int, error) { return 0, nil }
func (Computed) embedded() bool               { return false }
