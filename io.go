package construct

import (
	"bytes"
	"io"
)

// ParseReader drains r through the teacher's buffered Reader into memory,
// then runs Parse against the result. Grounded on oy3o-codec/reader.go's
// NewReaderSize + Reader.WriteTo, the same buffered-drain shape the teacher
// uses for any one-shot io.Reader consumer. Uses an explicit buffer size
// rather than NewReader's default of 0, which NewReaderSize rejects with
// ErrSizeTooSmall for any reader type not already backed by a buffer.
func ParseReader(c Construct, r io.Reader, opts ...Option) (any, error) {
	rdr, err := NewReaderSize(r, bufferSize)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := rdr.WriteTo(&buf); err != nil {
		return nil, err
	}
	return Parse(c, buf.Bytes(), opts...)
}

// ParseReaderLimit is ParseReader bounded to at most maxBytes, guarding
// against an unbounded or hostile io.Reader before any construct runs.
// Grounded on oy3o-codec/reader_limit.go's LimitedReader.
func ParseReaderLimit(c Construct, r io.Reader, maxBytes int64, opts ...Option) (any, error) {
	return ParseReader(c, LimitReader(r, maxBytes), opts...)
}

// ParseReadCloser is ParseReader for a caller holding an io.ReadCloser
// (an *os.File, an http.Response.Body), closing rc once it has been fully
// drained. Grounded on oy3o-codec/seeker.go's ForwardSeekCloser, which
// gives rc a forward-only Seek so reader.go's buffered Reader can treat it
// the same as any other source.
func ParseReadCloser(c Construct, rc io.ReadCloser, opts ...Option) (any, error) {
	defer rc.Close()
	return ParseReader(c, ForwardSeekCloser(rc), opts...)
}

// PeekTag looks at the first n bytes of r without consuming them from the
// returned reader, letting a caller choose which Construct to Parse with
// (e.g. dispatch on a RESP type byte) before committing to a full read.
// Grounded on oy3o-codec/reader_peek.go's PeekableReader.
func PeekTag(r io.Reader, n int) ([]byte, io.Reader, error) {
	pr := PeekReader(r)
	tag, err := pr.Peek(n)
	return tag, pr, err
}

// BuildWriter builds v against c and flushes the result to w through the
// teacher's buffered Writer. Grounded on oy3o-codec/writer.go's NewWriter
// + Writer.Write/Flush.
func BuildWriter(c Construct, v any, w io.Writer, opts ...Option) error {
	out, err := Build(c, v, opts...)
	if err != nil {
		return err
	}
	wr, err := NewWriter(w)
	if err != nil {
		return err
	}
	if _, err := wr.Write(out); err != nil {
		return err
	}
	return wr.Flush()
}
