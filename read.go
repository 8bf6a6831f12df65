package ministream

// Read implements the explicit pull side. With no argument
// it returns the entire head item; with n it returns a prefix of size n
// (Bytes/Text only — Object mode ignores n and always returns one item).
// It returns (nil, false) when there is nothing available to return.
func (s *Stream) Read(n ...int) (any, bool) {
	s.mu.Lock()

	if s.destroyed {
		s.mu.Unlock()
		return nil, false
	}

	// An explicit read is itself evidence of a consumer: it clears the
	// flowing-discarded latch even though it does not, by itself, change
	// flowing/paused.
	s.discarded = false

	if s.buf.Empty() {
		s.mu.Unlock()
		s.endishCheck()
		return nil, false
	}

	if s.mode == ModeObject {
		item, _ := s.buf.shift()
		empty := s.buf.Empty()
		eof := s.eof
		s.mu.Unlock()
		s.Emit(EventData, item)
		if empty && !eof {
			s.Emit(EventDrain)
		}
		s.endishCheck()
		return item, true
	}

	want := -1
	if len(n) > 0 {
		want = n[0]
	}
	if want == 0 || want > s.buf.Len() {
		s.mu.Unlock()
		s.endishCheck()
		return nil, false
	}

	s.buf.coalesce()

	var item any
	if want < 0 {
		item, _ = s.buf.shift()
	} else {
		item = s.splitHeadLocked(want)
	}

	empty := s.buf.Empty()
	eof := s.eof
	s.mu.Unlock()

	s.Emit(EventData, item)
	if empty && !eof {
		s.Emit(EventDrain)
	}
	s.endishCheck()
	return item, true
}

// splitHeadLocked removes a prefix of size want from the (already
// coalesced, so single-item) Buffer head, returning that prefix and
// pushing the remaining non-empty suffix back as the new head. s.mu is
// held throughout; it does not unlock.
func (s *Stream) splitHeadLocked(want int) any {
	head, _ := s.buf.shift()
	switch v := head.(type) {
	case []byte:
		prefix := v[:want:want]
		if suffix := v[want:]; len(suffix) > 0 {
			s.buf.unshift(suffix)
		}
		return prefix
	case string:
		runes := []rune(v)
		prefix := string(runes[:want])
		if suffix := string(runes[want:]); suffix != "" {
			s.buf.unshift(suffix)
		}
		return prefix
	default:
		return head
	}
}
