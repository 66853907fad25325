package construct

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Stream is the seekable byte source/sink spec §4.2 describes, built on
// top of the teacher's BytesReader (parse side) and a growable analogue of
// its BytesWriter (build side, growBuffer below). A single Stream is either
// a parse stream or a build stream, never both; exactly one of r/gw is set.
//
// The teacher's own *Reader/*Writer (reader.go/writer.go) are deliberately
// not reused as the direct backing here: their sticky first-error semantics
// are right for a single top-level read/write session, but wrong for
// Repeat's "probe the child, rewind on clean failure, keep going" contract
// (§4.12) -- a poisoned Reader can never serve another field afterwards.
// Operating directly on BytesReader (which carries no error state, only a
// position) makes position-based mark/rewind exact and cheap.
type Stream struct {
	r     *BytesReader
	gw    *growBuffer
	order binary.ByteOrder
}

func newParseStream(data []byte, order binary.ByteOrder) *Stream {
	return &Stream{r: NewBytesReader(data), order: order}
}

func newBuildStream(order binary.ByteOrder) *Stream {
	return &Stream{gw: newGrowBuffer(), order: order}
}

func (s *Stream) parsing() bool { return s.r != nil }

// mark is the transactional save point §4.12 requires at every construct
// boundary: parse side is a read position, build side is a (position,
// high-water-mark) pair.
type mark struct {
	pos    int
	length int // build side only
}

func (s *Stream) save() mark {
	if s.parsing() {
		return mark{pos: s.r.N}
	}
	return mark{pos: s.gw.pos, length: s.gw.length}
}

// rewind restores the stream to a previously saved mark, the "undo" half of
// the transactional contract: a failing construct leaves the stream exactly
// as it found it.
func (s *Stream) rewind(m mark) {
	if s.parsing() {
		s.r.N = m.pos
		return
	}
	s.gw.pos = m.pos
	s.gw.length = m.length
}

// tell reports the current position, the operation Offset/Tell need.
func (s *Stream) tell() int64 {
	if s.parsing() {
		return int64(s.r.N)
	}
	return int64(s.gw.pos)
}

// seek moves to an absolute position. Parse streams can seek anywhere
// within (or just past) the buffer; build streams can seek anywhere, with
// Offset responsible for restoring the prior position afterwards.
func (s *Stream) seek(abs int64) error {
	if abs < 0 {
		return ErrInvalidSeek
	}
	if s.parsing() {
		s.r.N = int(abs)
		return nil
	}
	s.gw.pos = int(abs)
	s.gw.ensure(0)
	if s.gw.pos > s.gw.length {
		s.gw.length = s.gw.pos
	}
	return nil
}

// read consumes exactly n bytes, failing with ErrUnexpectedEnd if the
// stream doesn't have them.
func (s *Stream) read(n int) ([]byte, error) {
	if !s.parsing() {
		panic("construct: read called on a build stream")
	}
	if n == 0 {
		return nil, nil
	}
	if s.r.Available() < n {
		return nil, fmt.Errorf("%w: expected %d byte(s), found %d", ErrUnexpectedEnd, n, s.r.Available())
	}
	buf := make([]byte, n)
	_, _ = io.ReadFull(s.r, buf)
	return buf, nil
}

// readByte consumes a single byte.
func (s *Stream) readByte() (byte, error) {
	if !s.parsing() {
		panic("construct: readByte called on a build stream")
	}
	b, err := s.r.ReadByte()
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrUnexpectedEnd, err)
	}
	return b, nil
}

// remaining reports how many parse bytes are left in the stream.
func (s *Stream) remaining() int {
	if !s.parsing() {
		panic("construct: remaining called on a build stream")
	}
	return s.r.Available()
}

// write appends p at the current build position.
func (s *Stream) write(p []byte) error {
	if s.parsing() {
		panic("construct: write called on a parse stream")
	}
	if len(p) == 0 {
		return nil
	}
	s.gw.write(p)
	return nil
}

// writeZeros appends n zero bytes, used by Padding, Padded's trailing
// fill, and Aligned's skip-forward.
func (s *Stream) writeZeros(n int) error {
	if n <= 0 {
		return nil
	}
	if s.parsing() {
		panic("construct: writeZeros called on a parse stream")
	}
	s.gw.writeZeros(n)
	return nil
}

// window carves the next n bytes of a parse stream into their own
// independent Stream, the mechanism Prefixed and Padded use to stop a
// child construct from reading past its declared boundary (§4.5). The
// returned stream owns a private copy, so nothing the child does can
// affect the parent's position beyond the n bytes already consumed here.
func (s *Stream) window(n int) (*Stream, error) {
	data, err := s.read(n)
	if err != nil {
		return nil, err
	}
	return newParseStream(data, s.order), nil
}

// subBuild opens an independent build stream for a child construct whose
// encoding must be measured or post-processed (length-prefixed, padded to
// a fixed size) before being appended to s.
func (s *Stream) subBuild() *Stream {
	return newBuildStream(s.order)
}

// bytes returns everything written to a build stream so far.
func (s *Stream) bytes() []byte {
	if s.parsing() {
		panic("construct: bytes called on a parse stream")
	}
	return s.gw.bytes()
}

// growBuffer is a growable analogue of the teacher's BytesWriter
// (writer_bytes.go): same B/N-style fields, but Write grows the backing
// slice instead of returning io.ErrShortWrite, and position can move
// backwards (for Offset) without losing already-written bytes ahead of it.
type growBuffer struct {
	b      []byte
	pos    int
	length int // high-water mark; bytes() returns b[:length]
}

func newGrowBuffer() *growBuffer {
	return &growBuffer{}
}

func (g *growBuffer) ensure(n int) {
	need := g.pos + n
	if need <= len(g.b) {
		return
	}
	grown := make([]byte, need)
	copy(grown, g.b)
	g.b = grown
}

func (g *growBuffer) write(p []byte) {
	g.ensure(len(p))
	copy(g.b[g.pos:], p)
	g.pos += len(p)
	if g.pos > g.length {
		g.length = g.pos
	}
}

func (g *growBuffer) writeZeros(n int) {
	g.ensure(n)
	for i := 0; i < n; i++ {
		g.b[g.pos+i] = 0
	}
	g.pos += n
	if g.pos > g.length {
		g.length = g.pos
	}
}

func (g *growBuffer) bytes() []byte {
	return g.b[:g.length]
}
