package ministream

// WriteOption configures one Write call.
type WriteOption func(*writeOptions)

type writeOptions struct {
	encoding TextEncoding
	cb       func()
}

// WithWriteEncoding names the encoding a string chunk is converted to
// bytes in before it enters the Stream; in Text mode those bytes are then
// decoded with the Stream's own encoding, unless the two encodings match
// and no partial codepoint is pending, in which case the string is kept
// as-is. It is meaningful only for string chunks; it defaults to utf-8.
func WithWriteEncoding(enc TextEncoding) WriteOption {
	return func(o *writeOptions) { o.encoding = enc }
}

// WithWriteCallback registers a one-shot callback invoked once this write
// has been fully processed: synchronously in sync mode, on the next turn
// of the async deferral queue otherwise.
func WithWriteCallback(cb func()) WriteOption {
	return func(o *writeOptions) { o.cb = cb }
}

// Write accepts one chunk of data, satisfying the plain Writable contract
//. Its shape must match the Stream's configured Mode: []byte
// or string for Bytes/Text, anything for Object. The boolean result
// mirrors the current flowing flag; a producer SHOULD pause further
// writes when it comes back false. Use WriteChunk
// for per-call encoding or completion callback options.
func (s *Stream) Write(chunk any) (bool, error) {
	return s.WriteChunk(chunk)
}

// WriteChunk is Write with per-call options: an explicit source encoding
// for this chunk (WithWriteEncoding) and/or a completion callback
// (WithWriteCallback).
func (s *Stream) WriteChunk(chunk any, opts ...WriteOption) (bool, error) {
	var wo writeOptions
	wo.encoding = EncodingUTF8
	for _, o := range opts {
		o(&wo)
	}

	s.mu.Lock()

	if s.aborted {
		s.mu.Unlock()
		return false, nil
	}

	if s.eof {
		s.mu.Unlock()
		return false, ErrWriteAfterEnd
	}

	if s.destroyed {
		s.mu.Unlock()
		s.Emit(EventError, newStreamDestroyedError())
		return true, nil
	}

	if s.mode == ModeObject {
		return s.writeObjectLocked(chunk, wo)
	}
	return s.writeDataLocked(chunk, wo)
}

// writeObjectLocked implements the Object-mode write branch. s.mu is
// held on entry and always released before returning.
func (s *Stream) writeObjectLocked(chunk any, wo writeOptions) (bool, error) {
	flowing := s.flowing
	if flowing {
		s.mu.Unlock()
		s.Emit(EventData, chunk)
	} else {
		s.buf.push(chunk)
		nonEmpty := !s.buf.Empty()
		s.mu.Unlock()
		if nonEmpty {
			s.Emit(EventReadable)
		}
	}
	s.runCallback(wo.cb)
	return flowing, nil
}

// writeDataLocked implements the Bytes/Text write branch. s.mu is
// held on entry and always released before returning.
func (s *Stream) writeDataLocked(chunk any, wo writeOptions) (bool, error) {
	// Fast path: a string chunk already in the stream's own encoding, with
	// no partial codepoint pending in the decoder, skips the decode round
	// trip entirely.
	if s.mode == ModeText {
		if str, ok := chunk.(string); ok {
			sameEncoding := wo.encoding == "" || wo.encoding == s.encoding ||
				(wo.encoding == EncodingUTF8 && s.encoding == "")
			if sameEncoding && !s.dec.HasPending() {
				if str == "" {
					return s.emitReadableOnlyLocked(wo)
				}
				return s.emitOrBufferLocked(str, wo)
			}
		}
	}

	raw, err := normalizeChunk(chunk, wo.encoding)
	if err != nil {
		s.mu.Unlock()
		return false, err
	}

	if len(raw) == 0 {
		return s.emitReadableOnlyLocked(wo)
	}

	if s.mode == ModeText {
		text := s.dec.Write(raw)
		if text == "" {
			// Entire chunk absorbed as a partial codepoint; nothing to
			// emit yet, but the write still counts as accepted.
			flowing := s.flowing
			s.mu.Unlock()
			s.runCallback(wo.cb)
			return flowing, nil
		}
		return s.emitOrBufferLocked(text, wo)
	}
	return s.emitOrBufferLocked(raw, wo)
}

// emitReadableOnlyLocked handles a zero-length chunk: it never enters the
// pipeline, but still fires readable if the buffer already held data
//. s.mu is held on entry and released before return.
func (s *Stream) emitReadableOnlyLocked(wo writeOptions) (bool, error) {
	wasEmpty := s.buf.Empty()
	flowing := s.flowing
	s.mu.Unlock()
	if !wasEmpty {
		s.Emit(EventReadable)
	}
	s.runCallback(wo.cb)
	return flowing, nil
}

// emitOrBufferLocked is the shared tail of the Bytes/Text write path: flush
// any already-buffered items before this one if flowing (preserving FIFO),
// then either emit directly or push to the Buffer.
// s.mu is held on entry and always released before returning.
func (s *Stream) emitOrBufferLocked(item any, wo writeOptions) (bool, error) {
	flowing := s.flowing
	if flowing && !s.buf.Empty() {
		s.mu.Unlock()
		s.flushBuffer()
		s.mu.Lock()
		flowing = s.flowing
	}

	if flowing {
		s.mu.Unlock()
		s.Emit(EventData, item)
	} else {
		s.buf.push(item)
		nonEmpty := !s.buf.Empty()
		s.mu.Unlock()
		if nonEmpty {
			s.Emit(EventReadable)
		}
	}
	s.runCallback(wo.cb)
	return flowing, nil
}

func (s *Stream) runCallback(cb func()) {
	if cb == nil {
		return
	}
	s.deferTask(cb)
}

// normalizeChunk implements the non-Object chunk normalization: byte
// buffers pass through unchanged; strings are converted to bytes in enc
// (the declared write encoding, from WithWriteEncoding); anything else is
// a usage error.
func normalizeChunk(chunk any, enc TextEncoding) ([]byte, error) {
	switch v := chunk.(type) {
	case []byte:
		return v, nil
	case string:
		return encodeString(enc, v)
	default:
		return nil, ErrNonContiguousWrite
	}
}

// End signals that no more data will be written. If args[0] is present it
// is written first, exactly as a trailing Write call. End never blocks on
// downstream consumers; it returns once eof has been latched and the
// endish check (possibly deferred to async) has been scheduled.
func (s *Stream) End(args ...any) error {
	if len(args) > 0 && args[0] != nil {
		if _, err := s.Write(args[0]); err != nil {
			return err
		}
	}

	s.mu.Lock()
	if s.eof {
		s.mu.Unlock()
		return nil
	}
	s.eof = true
	s.writable = false
	flowing := s.flowing
	paused := s.paused
	s.mu.Unlock()

	if flowing || !paused {
		s.endishCheck()
	}
	return nil
}
