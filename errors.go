package ministream

import "errors"

// Sentinel errors for common failure modes, matched with errors.Is.
var (
	// ErrModeConflict indicates Encoding and ObjectMode were both set.
	ErrModeConflict = errors.New("ministream: encoding and objectMode are mutually exclusive")

	// ErrWriteAfterEnd indicates Write was called after End.
	ErrWriteAfterEnd = errors.New("ministream: write after end")

	// ErrNonContiguousWrite indicates a chunk that is not a byte buffer,
	// byte slice, or string was written to a non-Object stream.
	ErrNonContiguousWrite = errors.New("ministream: non-contiguous data written to non-object stream")

	// ErrConcatObjectMode indicates Concat was called on an Object-mode
	// stream.
	ErrConcatObjectMode = errors.New("ministream: cannot concat in object mode")

	// ErrUnsupportedEncoding indicates an Encoding value with no registered
	// decoder.
	ErrUnsupportedEncoding = errors.New("ministream: unsupported encoding")

	// ErrIterationDestroyed is returned by Next, Collect, Concat, and
	// Promise when the Stream was destroyed mid-iteration rather than
	// reaching a normal end.
	ErrIterationDestroyed = errors.New("ministream: stream destroyed during iteration")
)

// StreamErrorCode identifies well-known error conditions reported through
// the error event as a small set of well-known code strings.
type StreamErrorCode string

// ErrStreamDestroyed is the code attached to the error event emitted when
// Write is called on an already-destroyed Stream.
const ErrStreamDestroyed StreamErrorCode = "ERR_STREAM_DESTROYED"

// StreamError is emitted via the error event for failures that carry a
// well-known code rather than a synchronous panic/return.
type StreamError struct {
	Code StreamErrorCode
	Err  error
}

func (e *StreamError) Error() string {
	if e.Err != nil {
		return string(e.Code) + ": " + e.Err.Error()
	}
	return string(e.Code)
}

func (e *StreamError) Unwrap() error { return e.Err }

func newStreamDestroyedError() *StreamError {
	return &StreamError{Code: ErrStreamDestroyed, Err: errors.New("cannot call write after a stream was destroyed")}
}
