package construct

import "sync"

// Lazy defers resolving Inner until first use, the indirection a
// self-referential grammar needs: examples/redis.py's Array embeds a
// RepeatExactly of `message`, but `message` is itself defined in terms of
// Array (through Message's Switch), so neither can be a plain top-level
// value without one referring to the other before it exists. Lazy breaks
// the cycle by holding a Resolve func that is only called the first time
// the construct is used (parse/build/sizeof/embedded), by which point every
// package-level var has been initialized. The resolution runs once, guarded
// by a sync.Once, so a shared Lazy is safe under concurrent calls.
type Lazy struct {
	Resolve func() Construct
	once    sync.Once
	cached  Construct
}

func (l *Lazy) inner() Construct {
	l.once.Do(func() { l.cached = l.Resolve() })
	return l.cached
}

func (l *Lazy) parse(s *Stream, ctx *Context) (any, error) { return l.inner().parse(s, ctx) }
func (l *Lazy) build(s *Stream, ctx *Context, v any) (any, error) {
	return l.inner().build(s, ctx, v)
}
func (l *Lazy) sizeof(ctx *Context) (int, error) { return l.inner().sizeof(ctx) }
func (l *Lazy) embedded() bool                   { return l.inner().embedded() }
