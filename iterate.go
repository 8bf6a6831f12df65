package ministream

import "context"

// iterOutcome is the payload delivered to a pending asynchronous
// iteration waiter.
type iterOutcome struct {
	item any
	done bool
	err  error
}

// iterWaiter is a one-shot subscription used only by Next. It is
// delivered directly by emitData/finishEnd/emitErrorEvent/Destroy,
// independent of the public event registry (see Stream.iterWaiters).
type iterWaiter struct {
	ch chan iterOutcome
}

func (s *Stream) registerIterWaiter() *iterWaiter {
	w := &iterWaiter{ch: make(chan iterOutcome, 1)}
	s.mu.Lock()
	s.iterWaiters = append(s.iterWaiters, w)
	flowing := s.flowing
	s.mu.Unlock()
	if !flowing {
		s.Resume()
	}
	return w
}

func (s *Stream) unregisterIterWaiter(w *iterWaiter) {
	s.mu.Lock()
	for i, c := range s.iterWaiters {
		if c == w {
			s.iterWaiters = append(s.iterWaiters[:i], s.iterWaiters[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
}

// notifyIterWaiters delivers o to every pending waiter and clears the
// list; each waiter is one-shot by construction. Delivering an item also
// pauses the stream in the same critical section, so a write that follows
// is buffered for the next Next call rather than emitted with no waiter
// left to receive it.
func (s *Stream) notifyIterWaiters(o iterOutcome) {
	s.mu.Lock()
	waiters := s.iterWaiters
	s.iterWaiters = nil
	if len(waiters) > 0 && !o.done && o.err == nil {
		s.flowing = false
		s.paused = true
		s.discarded = false
	}
	s.mu.Unlock()

	for _, w := range waiters {
		select {
		case w.ch <- o:
		default:
		}
	}
}

// shiftBuffered removes and returns exactly one already-buffered item
// without coalescing, preserving per-write chunk granularity. It is the
// iteration-side counterpart to Read, which coalesces before splitting.
func (s *Stream) shiftBuffered() (any, bool) {
	s.mu.Lock()
	item, ok := s.buf.shift()
	empty := s.buf.Empty()
	eof := s.eof
	s.mu.Unlock()
	if !ok {
		return nil, false
	}
	s.Emit(EventData, item)
	if empty && !eof {
		s.Emit(EventDrain)
	}
	s.endishCheck()
	return item, true
}

// Iter returns a range-over-func sequence that drains whatever is
// currently buffered or arrives synchronously, stopping as soon as a Read
// would return nothing. Breaking out of the range pauses the stream.
func (s *Stream) Iter() func(yield func(any) bool) {
	return func(yield func(any) bool) {
		s.mu.Lock()
		s.discarded = false
		s.mu.Unlock()

		for {
			item, ok := s.Read()
			if !ok {
				return
			}
			if !yield(item) {
				s.Pause()
				return
			}
		}
	}
}

// Next blocks until the next item is available, the stream reaches end,
// errors, is destroyed, or ctx is done. ok is false once iteration is
// over; err, if non-nil, explains why (including ErrIterationDestroyed).
//
// Next's own subscription is internal to the Stream, not the public event
// registry, so a concurrent RemoveAllListeners call on the Stream can
// never strand a pending Next call: the asymmetry between the cleared
// public listener count and iteration continuing to work is deliberate,
// not a bug.
func (s *Stream) Next(ctx context.Context) (item any, ok bool, err error) {
	s.mu.Lock()
	s.discarded = false
	destroyed := s.destroyed
	buffered := !s.buf.Empty()
	eof := s.eof
	s.mu.Unlock()

	if destroyed {
		return nil, false, ErrIterationDestroyed
	}
	if buffered {
		v, got := s.shiftBuffered()
		return v, got, nil
	}
	if eof {
		return nil, false, nil
	}

	w := s.registerIterWaiter()
	defer s.unregisterIterWaiter(w)

	select {
	case o := <-w.ch:
		if o.err != nil {
			return nil, false, o.err
		}
		if o.done {
			return nil, false, nil
		}
		s.Pause()
		return o.item, true, nil
	case <-ctx.Done():
		s.Pause()
		return nil, false, ctx.Err()
	}
}
