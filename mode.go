package ministream

import "context"

// Mode is the payload shape a Stream was constructed with. It is fixed for
// the lifetime of the Stream; there is no operation to change it.
type Mode int

const (
	// ModeBytes streams contiguous byte buffers. The size metric used for
	// Buffer accounting and backpressure is total byte length.
	ModeBytes Mode = iota
	// ModeText streams decoded strings in a fixed encoding. The size metric
	// is rune (character) count, not byte length.
	ModeText
	// ModeObject streams arbitrary opaque values. The size metric is item
	// count: every object counts as exactly one unit of buffer length.
	ModeObject
)

func (m Mode) String() string {
	switch m {
	case ModeBytes:
		return "bytes"
	case ModeText:
		return "text"
	case ModeObject:
		return "object"
	default:
		return "unknown"
	}
}

// TextEncoding names a supported Text-mode encoding. The zero value selects
// UTF-8.
type TextEncoding string

// Supported Text-mode encodings.
const (
	EncodingUTF8    TextEncoding = "utf-8"
	EncodingUTF16LE TextEncoding = "utf-16le"
	EncodingUTF16BE TextEncoding = "utf-16be"
)

// Options configures a new Stream. The zero value selects a synchronous
// Bytes-mode stream with no cancellation signal.
type Options struct {
	// Async, when true, defers all data/end emissions to the next turn of
	// a per-stream dispatch goroutine instead of invoking them inline
	// within Write/End.
	Async bool

	// Context is the external cancellation signal.
	// If already Done() at construction, the Stream aborts immediately.
	// A nil Context means the Stream can never be aborted this way.
	Context context.Context

	// Encoding selects Text mode. Mutually exclusive with ObjectMode.
	Encoding TextEncoding

	// ObjectMode selects Object mode. Mutually exclusive with Encoding.
	ObjectMode bool
}
