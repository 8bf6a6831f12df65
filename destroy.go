package ministream

import "fmt"

// Destroy tears the Stream down immediately: it stops accepting writes,
// stops emitting data, and detaches every pipe without ending
// destinations. With a nil err it fires the internal destroy marker;
// otherwise err becomes the Stream's last error and is reported on the
// error channel instead, before teardown completes.
func (s *Stream) Destroy(err error) {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		if err != nil {
			s.Emit(EventError, err)
		} else {
			s.dispatch(evtDestroy, err)
		}
		return
	}
	s.destroyed = true
	s.discarded = true
	s.writable = false
	s.readable = false
	s.buf = newBuffer(s.mode)
	hook := s.closeHook
	alreadyClosed := s.closed
	pipes := append([]*pipeRecord(nil), s.pipes...)
	s.pipes = nil
	s.mu.Unlock()

	if hook != nil && !alreadyClosed {
		hook()
	}

	for _, p := range pipes {
		p.detach(s)
	}

	if err != nil {
		s.Emit(EventError, err)
	} else {
		s.dispatch(evtDestroy, err)
	}
	s.notifyIterWaiters(iterOutcome{err: ErrIterationDestroyed})

	s.teardown()
}

// abort is Destroy's rendering of the external cancellation signal: it
// marks the Stream aborted, emits the abort event with the signal's
// reason, then destroys the Stream with that same reason as its error
//.
func (s *Stream) abort(reason error) {
	s.mu.Lock()
	if s.aborted || s.destroyed {
		s.mu.Unlock()
		return
	}
	s.aborted = true
	s.mu.Unlock()

	s.Emit(EventAbort, reason)
	s.Destroy(fmt.Errorf("%w", reason))
}

// teardown releases resources that outlive the mutex-guarded state:
// stopping the async deferral goroutine and closing doneCh exactly once
// so any watchContext goroutine exits.
func (s *Stream) teardown() {
	s.mu.Lock()
	doneCh := s.doneCh
	s.mu.Unlock()

	s.stopDeferLoop()

	select {
	case <-doneCh:
	default:
		close(doneCh)
	}

	s.mu.Lock()
	s.events.removeEverything()
	s.mu.Unlock()
}

// LastError returns the most recently latched error payload, if any
//, and whether one has ever been
// recorded.
func (s *Stream) LastError() (error, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr, s.haveLastErr
}
