package construct

// Context is a chain of scopes, one per enclosing aggregate, mirroring the
// original Python library's Context(ChainMap) (original_source/structures.py).
// Lookup walks parent-ward; writes always target the innermost scope. Field
// order is tracked alongside the map because spec's Record value type is
// insertion-ordered and Go map iteration order is not.
type Context struct {
	parent *Context
	root   *Context
	keys   []string
	values map[string]any
}

// NewContext returns a fresh root scope, the context a top-level Parse/Build
// call starts from.
func NewContext() *Context {
	ctx := &Context{values: make(map[string]any)}
	ctx.root = ctx
	return ctx
}

// child pushes a new scope whose parent is c, the operation every
// non-embedded aggregate performs on entry.
func (c *Context) child() *Context {
	return &Context{parent: c, root: c.root, values: make(map[string]any)}
}

// Get looks up name, walking from this scope toward the root. The second
// return value is false if no enclosing scope has ever set name.
func (c *Context) Get(name string) (any, bool) {
	for cur := c; cur != nil; cur = cur.parent {
		if v, ok := cur.values[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Set writes name into this scope (not any ancestor), the operation a
// Struct performs as each field finishes parsing/building.
func (c *Context) Set(name string, v any) {
	if _, exists := c.values[name]; !exists {
		c.keys = append(c.keys, name)
	}
	c.values[name] = v
}

// Keys returns the field names set directly in this scope, in insertion order.
func (c *Context) Keys() []string {
	return append([]string(nil), c.keys...)
}

// Parent returns the enclosing scope, or nil at the root.
func (c *Context) Parent() *Context {
	return c.parent
}

// Root returns the outermost scope of the chain c belongs to.
func (c *Context) Root() *Context {
	return c.root
}

// Record is the ordered field-name -> value mapping a Struct parses into
// and expects on build; see aggregate.go.
type Record struct {
	keys   []string
	values map[string]any
}

// NewRecord returns an empty, ordered record.
func NewRecord() *Record {
	return &Record{values: make(map[string]any)}
}

// Set assigns name, appending it to the key order the first time it's seen.
func (r *Record) Set(name string, v any) *Record {
	if _, exists := r.values[name]; !exists {
		r.keys = append(r.keys, name)
	}
	r.values[name] = v
	return r
}

// Get returns the value stored under name and whether it was present.
func (r *Record) Get(name string) (any, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Keys returns the field names in declaration/insertion order.
func (r *Record) Keys() []string {
	return append([]string(nil), r.keys...)
}

// Len reports the number of fields in the record.
func (r *Record) Len() int { return len(r.keys) }
