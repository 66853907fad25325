package construct

import "errors"

// Stream-level errors, grounded on the teacher's sticky-error Reader/Writer.
var (
	// ErrNilIO indicates that NewReader/NewWriter was called with a nil io.Reader/io.Writer.
	ErrNilIO = errors.New("construct: NewReader/NewWriter called with a nil io.Reader/io.Writer")

	// ErrSizeTooSmall indicates a size conflict with bufio.
	ErrSizeTooSmall = errors.New("construct: NewReaderSize with a size smaller than 16 conflicts with bufio")

	// ErrAlreadyBuffered indicates that NewReader/NewWriter was called with an
	// already-buffered reader/writer, which would lead to unpredictable
	// behavior and performance issues.
	ErrAlreadyBuffered = errors.New("construct: reader or writer is already buffered")

	// ErrWriteToNil indicates a WriteTo operation was attempted on a nil io.Writer.
	ErrWriteToNil = errors.New("construct: WriteTo called with a nil io.Writer")

	// ErrReadToNil indicates a ReadTo operation was attempted on a nil io.ReaderFrom.
	ErrReadToNil = errors.New("construct: ReadTo called with a nil io.ReaderFrom")

	// ErrInvalidSeek indicates a seek was attempted to an invalid position.
	ErrInvalidSeek = errors.New("construct: seek to an invalid position")

	// ErrUnsupportedNegativeSeek indicates a backward seek was attempted on a forward-only seeker.
	ErrUnsupportedNegativeSeek = errors.New("construct: unsupported negative offset for forward-only seeker")

	// ErrInvalidWhence indicates that an invalid 'whence' parameter was provided to a Seek operation.
	ErrInvalidWhence = errors.New("construct: unsupported whence for forward-only seeker")

	// ErrInvalidWrite indicates that an io.Writer returned an invalid (negative) count from Write.
	ErrInvalidWrite = errors.New("construct: writer returned invalid count from Write")

	// ErrInvalidRead indicates that an io.Reader returned an invalid (negative or out of bounds) count from Read.
	ErrInvalidRead = errors.New("construct: reader returned invalid count from Read")

	// ErrDiscardNegative indicates a discard operation was attempted with a negative byte count.
	ErrDiscardNegative = errors.New("construct: cannot discard a negative number of bytes")
)

// Construct-level error taxonomy (spec §7). Every error surfaced to a
// top-level Parse/Build/Sizeof caller wraps one of these via *PathError,
// so callers can test with errors.Is regardless of where in the construct
// tree the failure occurred.
var (
	// ErrUnexpectedEnd means the stream was exhausted before the required
	// bytes could be read, or (under WithStrictEnd) that bytes remained
	// after a top-level parse completed.
	ErrUnexpectedEnd = errors.New("construct: unexpected end of stream")

	// ErrConstMismatch means Const's literal bytes differed from the stream.
	ErrConstMismatch = errors.New("construct: const mismatch")

	// ErrLengthMismatch means a declared length or item count disagreed with
	// the provided value on build, or an inner encoding overran a Padded
	// field. An unconsumed Prefixed window is ErrFramingError instead.
	ErrLengthMismatch = errors.New("construct: length mismatch")

	// ErrOutOfRange means an integer or bit-field value exceeded its declared width.
	ErrOutOfRange = errors.New("construct: value out of range")

	// ErrFramingError means Line lacked a CRLF terminator, or a
	// PascalString/Prefixed framing was inconsistent.
	ErrFramingError = errors.New("construct: framing error")

	// ErrSwitchNoMatch means a Switch selector produced an unhandled value with no default.
	ErrSwitchNoMatch = errors.New("construct: no matching case")

	// ErrUnknownEnumValue means Enum's parse saw a raw value with no mapped label.
	ErrUnknownEnumValue = errors.New("construct: unknown enum value")

	// ErrUnknownEnumLabel means Enum's build saw a label with no mapped raw value.
	ErrUnknownEnumLabel = errors.New("construct: unknown enum label")

	// ErrChecksumMismatch means a Checksum field failed verification on parse.
	ErrChecksumMismatch = errors.New("construct: checksum mismatch")

	// ErrAdapterFailure marks an error returned by a user-supplied transform
	// (its message is included) or a build value of the wrong Go type. A
	// panic inside a transform is not recovered.
	ErrAdapterFailure = errors.New("construct: adapter transform failed")

	// ErrSizeofUnknown means Sizeof could not be computed under the supplied context.
	ErrSizeofUnknown = errors.New("construct: sizeof unknown")

	// ErrDuplicateField means a Struct declaration listed the same field name twice.
	ErrDuplicateField = errors.New("construct: duplicate field name")
)
