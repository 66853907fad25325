package construct

import (
	"fmt"
	"os"
	"time"
)

// DebugEvent is what Debug reports to its Log callback: the field's
// entry/exit stream positions and how long the inner construct took.
// REDESIGNED from structures.py:2340's Debug, which drops into a pdb
// post-mortem shell on failure -- a non-goal for a library with no
// interactive terminal to drop into. This is the entry/exit
// position-and-duration capture spec.md asks for in its place.
type DebugEvent struct {
	Mode     string // "parse" or "build"
	Start    int64
	End      int64
	Duration time.Duration
	Err      error
}

// DefaultDebugLog writes a DebugEvent to stderr, the sink a Debug with a
// nil Log falls back to when the top-level call passed WithDebug(true).
func DefaultDebugLog(e DebugEvent) {
	status := "ok"
	if e.Err != nil {
		status = e.Err.Error()
	}
	fmt.Fprintf(os.Stderr, "construct: %s [%d:%d] %s (%s)\n", e.Mode, e.Start, e.End, status, e.Duration)
}

// Debug wraps Inner, reporting a DebugEvent to Log after every
// parse/build attempt (success or failure) without altering Inner's
// result or error. A nil Log only reports through DefaultDebugLog when
// the top-level call enabled WithDebug(true).
type Debug struct {
	Inner Construct
	Log   func(DebugEvent)
}

func (d Debug) sink(ctx *Context) func(DebugEvent) {
	if d.Log != nil {
		return d.Log
	}
	if enabled, _ := ctx.Get(debugContextKey); enabled == true {
		return DefaultDebugLog
	}
	return nil
}

func (d Debug) parse(s *Stream, ctx *Context) (any, error) {
	start := s.tell()
	t0 := nowFunc()
	v, err := d.Inner.parse(s, ctx)
	if log := d.sink(ctx); log != nil {
		log(DebugEvent{Mode: "parse", Start: start, End: s.tell(), Duration: nowFunc().Sub(t0), Err: err})
	}
	return v, err
}

func (d Debug) build(s *Stream, ctx *Context, v any) (any, error) {
	start := s.tell()
	t0 := nowFunc()
	built, err := d.Inner.build(s, ctx, v)
	if log := d.sink(ctx); log != nil {
		log(DebugEvent{Mode: "build", Start: start, End: s.tell(), Duration: nowFunc().Sub(t0), Err: err})
	}
	return built, err
}

func (d Debug) sizeof(ctx *Context) (int, error) { return d.Inner.sizeof(ctx) }
func (Debug) embedded() bool                     { return false }

// nowFunc is a seam for tests to stub out wall-clock time.
var nowFunc = time.Now
