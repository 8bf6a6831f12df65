package ministream

// Emit dispatches ev to registered handlers, applying the per-event
// override table below. It is exported because pipe records, iteration,
// and embedders all need to drive it directly, not just the Stream's own
// write/read/destroy internals.
func (s *Stream) Emit(ev string, args ...any) bool {
	switch ev {
	case EventData:
		return s.emitData(args)
	case EventEnd:
		return s.emitEnd()
	case EventClose:
		return s.emitClose()
	case EventError:
		return s.emitErrorEvent(args)
	case EventResume:
		ok := s.dispatch(ev, args...)
		s.endishCheck()
		return ok
	case EventFinish, EventPrefinish:
		ok := s.dispatch(ev, args...)
		s.mu.Lock()
		s.events.removeAll(ev)
		if ev == EventFinish {
			s.finishFired = true
		} else {
			s.prefinishFired = true
		}
		s.mu.Unlock()
		return ok
	default:
		ok := s.dispatch(ev, args...)
		s.endishCheck()
		return ok
	}
}

// dispatch is the raw "emit to all handlers" primitive, gated only by the
// destroyed short-circuit: once destroyed, only error, close, and the
// internal destroy marker still fire.
func (s *Stream) dispatch(ev string, args ...any) bool {
	s.mu.Lock()
	if s.destroyed && ev != EventError && ev != EventClose && ev != evtDestroy {
		s.mu.Unlock()
		return false
	}
	handlers := s.events.snapshot(ev)
	s.mu.Unlock()

	for _, h := range handlers {
		h(args...)
	}
	return len(handlers) > 0
}

func (s *Stream) emitData(args []any) bool {
	if len(args) == 0 {
		return false
	}
	chunk := args[0]

	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return false
	}
	if s.mode != ModeObject && isFalsyChunk(chunk) {
		s.mu.Unlock()
		return false
	}
	async := s.async
	discarded := s.discarded
	pipes := append([]*pipeRecord(nil), s.pipes...)
	handlers := s.events.snapshot(EventData)
	s.mu.Unlock()

	run := func() {
		for _, p := range pipes {
			p.write(s, chunk)
		}
		if !discarded {
			for _, h := range handlers {
				h(chunk)
			}
		}
		s.notifyIterWaiters(iterOutcome{item: chunk})
		s.endishCheck()
	}

	if async {
		s.deferTask(run)
		return true
	}
	run()
	return true
}

func isFalsyChunk(chunk any) bool {
	switch v := chunk.(type) {
	case nil:
		return true
	case []byte:
		return len(v) == 0
	case string:
		return v == ""
	default:
		return false
	}
}

// emitErrorEvent latches the payload
// as "last error", always emit on the internal error channel, emit the
// public error event unless a cancellation signal is present and nobody
// is listening, then run the endish check.
func (s *Stream) emitErrorEvent(args []any) bool {
	var err error
	if len(args) > 0 {
		err, _ = args[0].(error)
	}

	s.mu.Lock()
	s.lastErr = err
	s.haveLastErr = true
	hasErrorListeners := s.events.count(EventError) > 0
	suppressedBySignal := s.hasSignal && !hasErrorListeners
	s.mu.Unlock()

	s.dispatch(evtInternalError, err)
	s.notifyIterWaiters(iterOutcome{err: err})

	var ok bool
	if !suppressedBySignal {
		ok = s.dispatch(EventError, err)
	}
	s.endishCheck()
	return ok
}

func (s *Stream) emitClose() bool {
	s.mu.Lock()
	s.closed = true
	ready := s.emittedEnd || s.destroyed
	s.mu.Unlock()

	if !ready {
		return false
	}

	ok := s.dispatch(EventClose)

	s.mu.Lock()
	s.events.removeAll(EventClose)
	s.mu.Unlock()
	return ok
}

// endishCheck is the fixed check run after many operations.
// It fires the closing sequence (end, prefinish, finish, close) iff not
// already emitting end, not already emitted, not destroyed, the buffer is
// empty, and eof is set.
func (s *Stream) endishCheck() {
	s.mu.Lock()
	ready := !s.emittingEnd && !s.emittedEnd && !s.destroyed && s.buf.Empty() && s.eof
	if ready {
		s.emittingEnd = true
	}
	s.mu.Unlock()

	if !ready {
		return
	}

	s.Emit(EventEnd)
	s.Emit(EventPrefinish)
	s.Emit(EventFinish)

	s.mu.Lock()
	closed := s.closed
	s.emittingEnd = false
	s.mu.Unlock()

	if closed {
		s.Emit(EventClose)
	}
}

// emitEnd implements the end-emission procedure.
func (s *Stream) emitEnd() bool {
	s.mu.Lock()
	if s.emittedEnd {
		s.mu.Unlock()
		return false
	}
	s.emittedEnd = true
	s.readable = false
	async := s.async
	s.mu.Unlock()

	finish := func() {
		s.finishEnd()
	}
	if async {
		s.deferTask(finish)
		return true
	}
	finish()
	return true
}

func (s *Stream) finishEnd() {
	if s.mode == ModeText && s.dec != nil {
		s.mu.Lock()
		final := s.dec.End()
		discarded := s.discarded
		pipes := append([]*pipeRecord(nil), s.pipes...)
		s.mu.Unlock()

		if final != "" {
			for _, p := range pipes {
				p.write(s, final)
			}
			if !discarded {
				s.dispatch(EventData, final)
			}
			s.notifyIterWaiters(iterOutcome{item: final})
		}
	}

	s.mu.Lock()
	pipes := append([]*pipeRecord(nil), s.pipes...)
	s.pipes = nil
	s.mu.Unlock()

	for _, p := range pipes {
		p.closeDownstream(s)
	}

	s.dispatch(EventEnd)
	s.notifyIterWaiters(iterOutcome{done: true})

	s.mu.Lock()
	s.events.removeAll(EventEnd)
	s.mu.Unlock()
}
