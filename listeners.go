package ministream

// On registers fn for event ev and returns a handle usable with Off. It
// implements a handful of registration overrides: subscribing to data,
// readable, an already-fired endish event, or error-with-a-latched-
// last-error each carries their own immediate side effect.
func (s *Stream) On(ev string, fn Listener) int {
	s.mu.Lock()
	id := s.events.on(ev, fn)

	switch ev {
	case EventData:
		s.discarded = false
		s.dataListeners++
		hadPipes := len(s.pipes) > 0
		flowing := s.flowing
		s.mu.Unlock()
		if !hadPipes && !flowing {
			s.Resume()
		}
		return id

	case EventReadable:
		nonEmpty := !s.buf.Empty()
		s.mu.Unlock()
		if nonEmpty {
			fn()
		}
		return id

	case EventEnd, EventFinish, EventPrefinish:
		fired := (ev == EventEnd && s.emittedEnd) ||
			(ev == EventFinish && s.finishFired) ||
			(ev == EventPrefinish && s.prefinishFired)
		s.mu.Unlock()
		if fired {
			fn()
			s.mu.Lock()
			s.events.removeAll(ev)
			s.mu.Unlock()
		}
		return id

	case EventError:
		lastErr, have := s.lastErr, s.haveLastErr
		async := s.async
		s.mu.Unlock()
		if have {
			if async {
				s.deferTask(func() { fn(lastErr) })
			} else {
				fn(lastErr)
			}
		}
		return id

	default:
		s.mu.Unlock()
		return id
	}
}

// Off removes the registration identified by id for event ev, then, if ev
// is data, re-evaluates whether the stream should fall back to paused
//.
func (s *Stream) Off(ev string, id int) {
	s.mu.Lock()
	s.events.off(ev, id)
	if ev != EventData {
		s.mu.Unlock()
		return
	}
	if s.dataListeners > 0 {
		s.dataListeners--
	}
	s.clearFlowingIfAbandonedLocked()
	s.mu.Unlock()
}

// RemoveAllDataListeners drops every data subscriber and re-evaluates the
// consumption mode, exactly as repeated Off(EventData, id) calls would.
func (s *Stream) RemoveAllDataListeners() {
	s.mu.Lock()
	s.events.removeAll(EventData)
	s.dataListeners = 0
	s.clearFlowingIfAbandonedLocked()
	s.mu.Unlock()
}

// RemoveAllListeners drops every subscriber for every event and
// re-evaluates the consumption mode the same way dropping all data
// listeners would.
func (s *Stream) RemoveAllListeners() {
	s.mu.Lock()
	s.events.removeEverything()
	s.dataListeners = 0
	s.clearFlowingIfAbandonedLocked()
	s.mu.Unlock()
}

// clearFlowingIfAbandonedLocked implements the implicit-pause rule: with
// no data listeners, no pipes, and not already in the explicit discarded
// state, flowing is cleared. s.mu must already be held.
func (s *Stream) clearFlowingIfAbandonedLocked() {
	if s.dataListeners == 0 && len(s.pipes) == 0 && len(s.iterWaiters) == 0 && !s.discarded {
		s.flowing = false
	}
}

// Close requests the close event: it latches closed and, if end has
// already fired (or the stream is already destroyed), emits close right
// away; otherwise close is deferred until the endish check fires it
//.
func (s *Stream) Close() {
	s.Emit(EventClose)
}

// Pipe attaches dest as a downstream consumer. It returns dest so calls
// can be chained.
func (s *Stream) Pipe(dest Writable, opts ...PipeOption) Writable {
	po := pipeOptions{end: true}
	for _, o := range opts {
		o(&po)
	}
	if isProcessOutputSink(dest) {
		po.end = false
	}

	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return dest
	}
	s.discarded = false

	if s.emittedEnd {
		s.mu.Unlock()
		if po.end {
			_ = dest.End()
		}
		return dest
	}

	async := s.async
	s.mu.Unlock()

	// newPipeRecord subscribes on s (for error proxying) and on dest, so it
	// must run without s.mu held.
	rec := newPipeRecord(s, dest, po)

	s.mu.Lock()
	s.pipes = append(s.pipes, rec)
	s.mu.Unlock()

	if async {
		s.deferTask(s.Resume)
	} else {
		s.Resume()
	}
	return dest
}

// Unpipe detaches dest, if it is currently piped, and re-evaluates the
// consumption mode.
func (s *Stream) Unpipe(dest Writable) {
	s.mu.Lock()
	idx := -1
	for i, rec := range s.pipes {
		if rec.dest == dest {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	rec := s.pipes[idx]
	s.pipes = append(s.pipes[:idx], s.pipes[idx+1:]...)
	s.mu.Unlock()

	rec.detach(s)

	s.mu.Lock()
	s.clearFlowingIfAbandonedLocked()
	s.mu.Unlock()
}
