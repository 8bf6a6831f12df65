// Package ministream implements a minimal, synchronous-by-default
// byte/string/object streaming primitive for in-process producer→consumer
// pipelines, modeled after the write/buffer/flowing-paused/endish state
// machine, with no file, socket, or cross-process surface: every
// operation is in-process object manipulation.
package ministream

import (
	"context"
	"fmt"
	"sync"
)

// Stream is the state machine at the center of this package. It accepts
// writes from a producer, buffers them internally when no consumer is
// attached, and emits them to one or more consumers (event subscribers or
// piped destinations) as soon as consumers appear.
//
// Stream is not safe for unsynchronized concurrent mutation from multiple
// goroutines any more than a plain Go map is: the mutex inside it only
// exists to give the callback/re-entrancy guarantees a single-threaded
// cooperative model assumes, not to promise lock-free concurrent access.
// The common producer-goroutine /
// consumer-goroutine shape works correctly because every mutating method
// takes the lock for its critical section and releases it before invoking
// any user callback, pipe write, or downstream End call.
type Stream struct {
	mu sync.Mutex

	mode     Mode
	encoding TextEncoding
	async    bool

	buf *Buffer
	dec *decoder // non-nil only in ModeText

	events *emitter
	pipes []*pipeRecord

	// Observable boolean flags.
	writable   bool
	readable   bool
	destroyed  bool
	aborted    bool
	emittedEnd bool
	hasSignal  bool // true when constructed with a cancellation Context

	// Endish lifecycle flags.
	eof            bool
	emittingEnd    bool
	closed         bool
	finishFired    bool
	prefinishFired bool

	// Consumption mode. flowing/paused are independent
	// booleans, not a two-state enum: both false is the "undetermined"
	// state a freshly constructed stream starts in.
	flowing   bool
	paused    bool
	discarded bool

	dataListeners int

	lastErr    error
	haveLastErr bool

	// Async "next turn" deferral queue (Design Notes §9): a small
	// per-stream FIFO drained by one dedicated goroutine, started lazily
	// on first use and stopped at Destroy.
	deferCh   chan func()
	deferStop chan struct{}
	deferOnce sync.Once

	doneCh chan struct{} // closed exactly once, at Destroy

	// iterWaiters holds pending asynchronous iteration waiters. They are
	// notified directly by emitData/finishEnd/emitErrorEvent/Destroy,
	// bypassing the public event registry entirely, so that a consumer's
	// RemoveAllListeners call can never strand an in-flight Next call
	// (Design Notes' open question on removeAllListeners during
	// iteration: the public listener count is cleared, but iteration's
	// own one-shot subscriptions are a separate channel and stay valid).
	iterWaiters []*iterWaiter

	// closeHook is a subclass-style extension point: if set, Destroy
	// invokes it before tearing down, unless Close has already latched.
	closeHook func()
}

// New constructs a Stream per opts. Encoding and ObjectMode are mutually
// exclusive; setting both is a usage error, returned rather than panicked
// (see DESIGN.md).
func New(opts Options) (*Stream, error) {
	if opts.Encoding != "" && opts.ObjectMode {
		return nil, fmt.Errorf("%w", ErrModeConflict)
	}

	mode := ModeBytes
	switch {
	case opts.ObjectMode:
		mode = ModeObject
	case opts.Encoding != "":
		mode = ModeText
	}

	var dec *decoder
	if mode == ModeText {
		enc, ok := lookupEncoding(opts.Encoding)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, opts.Encoding)
		}
		dec = newDecoder(enc)
	}

	s := &Stream{
		mode:     mode,
		encoding: opts.Encoding,
		async:    opts.Async,
		buf:      newBuffer(mode),
		dec:      dec,
		events:   newEmitter(),
		writable: true,
		readable: true,
		doneCh:   make(chan struct{}),
	}

	if opts.Context != nil {
		s.hasSignal = true
		if opts.Context.Err() != nil {
			s.abort(opts.Context.Err())
		} else {
			go s.watchContext(opts.Context)
		}
	}

	return s, nil
}

func (s *Stream) watchContext(ctx context.Context) {
	select {
	case <-ctx.Done():
		s.abort(ctx.Err())
	case <-s.doneCh:
	}
}

// Mode reports the payload shape this Stream was constructed with.
func (s *Stream) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Writable reports whether the producer may still call Write.
func (s *Stream) Writable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writable
}

// Readable reports whether data events may still fire.
func (s *Stream) Readable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readable
}

// Destroyed reports whether Destroy has been called.
func (s *Stream) Destroyed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.destroyed
}

// Aborted reports whether the Stream was torn down via its cancellation
// signal rather than an explicit Destroy or producer-side error.
func (s *Stream) Aborted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aborted
}

// EmittedEnd reports whether the end event has fired.
func (s *Stream) EmittedEnd() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.emittedEnd
}

// Flowing reports whether the Stream is currently in the flowing
// consumption mode, including flowing-discarded.
func (s *Stream) Flowing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flowing
}

// Paused reports whether the Stream is currently in the paused
// consumption mode.
func (s *Stream) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// Discarded reports whether the Stream is flowing but has no attached
// consumer, so emitted data is dropped rather than buffered or delivered
//.
func (s *Stream) Discarded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.discarded
}

// BufferLength returns the current cached aggregate size of the internal
// Buffer.
func (s *Stream) BufferLength() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Len()
}

// SetCloseHook installs the subclass extension point Design Notes calls
// "close()": Destroy invokes it once, before tearing down, provided Close
// has not already latched. It exists so embedders can release external
// resources at destruction without subclassing (Go has no inheritance).
func (s *Stream) SetCloseHook(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeHook = fn
}

// Pause switches the Stream to the paused consumption mode: no further
// auto-emission happens until Resume or a new consumer arrives.
func (s *Stream) Pause() {
	s.mu.Lock()
	s.flowing = false
	s.paused = true
	s.discarded = false
	s.mu.Unlock()
}

// Resume switches the Stream to the flowing consumption mode and drains
// any buffered data.
func (s *Stream) Resume() {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return
	}
	hadConsumer := s.dataListeners > 0 || len(s.pipes) > 0 || len(s.iterWaiters) > 0
	s.flowing = true
	s.paused = false
	if !hadConsumer {
		s.discarded = true
	}
	bufNonEmpty := !s.buf.Empty()
	eof := s.eof
	s.mu.Unlock()

	switch {
	case bufNonEmpty:
		s.flushBuffer()
	case eof:
		s.endishCheck()
	default:
		s.Emit(EventDrain)
	}
}

// flushBuffer drains every buffered item as a data emission, in FIFO
// order, without emitting a trailing drain of its own: Resume fires that
// separately once the buffer is confirmed empty.
func (s *Stream) flushBuffer() {
	for {
		s.mu.Lock()
		item, ok := s.buf.shift()
		s.mu.Unlock()
		if !ok {
			return
		}
		s.Emit(EventData, item)
	}
}

// deferTask schedules fn to run on the next turn of this Stream's
// per-stream dispatch goroutine (async mode only). In sync mode fn runs
// inline. FIFO order is preserved among deferrals on the same Stream.
func (s *Stream) deferTask(fn func()) {
	if !s.async {
		fn()
		return
	}
	s.deferOnce.Do(s.startDeferLoop)
	select {
	case s.deferCh <- fn:
	case <-s.deferStop:
	}
}

func (s *Stream) startDeferLoop() {
	s.deferCh = make(chan func(), 256)
	s.deferStop = make(chan struct{})
	go func() {
		for {
			select {
			case fn := <-s.deferCh:
				fn()
			case <-s.deferStop:
				return
			}
		}
	}()
}

func (s *Stream) stopDeferLoop() {
	if s.deferStop != nil {
		close(s.deferStop)
	}
}

// EmitError implements ErrorReceiver so an upstream error-proxying pipe
// record can forward a source error onto this Stream as if it were its
// own.
func (s *Stream) EmitError(err error) {
	s.Emit(EventError, err)
}
