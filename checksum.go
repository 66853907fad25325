package construct

import (
	"bytes"
	"fmt"
	"hash"
)

// Checksum computes Hasher() over the bytes Over(ctx) selects, comparing
// it on parse against the bytes Field reads (failing with
// ErrChecksumMismatch on mismatch) and writing the computed digest via
// Field on build. Grounded on structures.py:2291's Checksum, which takes
// any hashlib-compatible callable; this module takes a hash.Hash
// constructor for the same reason -- no pack repo offers a better-fitting
// checksum abstraction than the stdlib's own hash.Hash, so this is one of
// the few constructs built directly on the standard library.
type Checksum struct {
	Field  Construct // typically Bytes{N: Lit(hasher().Size())}
	Hasher func() hash.Hash
	Over   func(ctx *Context) ([]byte, error)
}

func (c Checksum) digest(ctx *Context) ([]byte, error) {
	data, err := c.Over(ctx)
	if err != nil {
		return nil, err
	}
	h := c.Hasher()
	h.Write(data)
	return h.Sum(nil), nil
}

func (c Checksum) parse(s *Stream, ctx *Context) (any, error) {
	raw, err := c.Field.parse(s, ctx)
	if err != nil {
		return nil, err
	}
	got, ok := raw.([]byte)
	if !ok {
		return nil, fmt.Errorf("%w: Checksum's Field must parse to []byte, got %T", ErrAdapterFailure, raw)
	}
	want, err := c.digest(ctx)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(got, want) {
		return nil, fmt.Errorf("%w: computed % x, stream held % x", ErrChecksumMismatch, want, got)
	}
	return got, nil
}

func (c Checksum) build(s *Stream, ctx *Context, _ any) (any, error) {
	digest, err := c.digest(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := c.Field.build(s, ctx, digest); err != nil {
		return nil, err
	}
	return digest, nil
}

func (c Checksum) sizeof(ctx *Context) (int, error) { return c.Field.sizeof(ctx) }
func (Checksum) embedded() bool                     { return false }
