package construct

import "fmt"

// Tell reports the current stream position as an int64, consuming no
// bytes -- the read-side half of structures.py:2178's Tell/Pointer pair.
// It is most often paired with Computed so a struct field can record
// where in the stream a later Offset-governed section begins.
type Tell struct{}

func (Tell) parse(s *Stream, _ *Context) (any, error)      { return s.tell(), nil }
func (Tell) build(s *Stream, _ *Context, _ any) (any, error) { return s.tell(), nil }
func (Tell) sizeof(*Context) (int, error)                    { return 0, nil }
func (Tell) embedded() bool                                  { return false }

// Offset jumps to an absolute position (given by At, a value or a
// Context-derived function) before running Inner, then restores the
// stream to the position it was at before the jump -- the "pointer"
// pattern structures.py:2214 implements for formats (BMP, ELF, rpi_eeprom)
// whose header carries offsets to sections stored out of line. Grounded
// on structures.py's Pointer / Offset.
type Offset struct {
	At    func(ctx *Context) (int64, error)
	Inner Construct
}

func (o Offset) parse(s *Stream, ctx *Context) (any, error) {
	at, err := o.At(ctx)
	if err != nil {
		return nil, err
	}
	origin := s.tell()
	if err := s.seek(at); err != nil {
		return nil, err
	}
	v, err := o.Inner.parse(s, ctx)
	if seekErr := s.seek(origin); seekErr != nil && err == nil {
		return nil, seekErr
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (o Offset) build(s *Stream, ctx *Context, v any) (any, error) {
	at, err := o.At(ctx)
	if err != nil {
		return nil, err
	}
	origin := s.tell()
	if err := s.seek(at); err != nil {
		return nil, err
	}
	built, err := o.Inner.build(s, ctx, v)
	if seekErr := s.seek(origin); seekErr != nil && err == nil {
		return nil, seekErr
	}
	if err != nil {
		return nil, err
	}
	return built, nil
}

func (o Offset) sizeof(*Context) (int, error) {
	return 0, fmt.Errorf("%w: Offset writes out-of-line, it has no inline size", ErrSizeofUnknown)
}
func (Offset) embedded() bool { return false }
