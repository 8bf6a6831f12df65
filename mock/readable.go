package mock

import "github.com/gostreams/ministream"

// Interface compliance check.
var _ ministream.Readable = (*Readable)(nil)

// Readable is a test double for ministream.Readable. PauseFn and ResumeFn
// are nil-safe no-ops; PipeFn panics when nil to catch missing setup,
// mirroring the rest of this package's convention for the method under
// test in a given scenario.
type Readable struct {
	PauseFn  func()
	ResumeFn func()
	PipeFn   func(dest ministream.Writable, opts ...ministream.PipeOption) ministream.Writable
	OnFn     func(event string, fn ministream.Listener) int
	OffFn    func(event string, id int)
}

// Pause delegates to PauseFn. No-op when PauseFn is not set.
func (r *Readable) Pause() {
	if r.PauseFn != nil {
		r.PauseFn()
	}
}

// Resume delegates to ResumeFn. No-op when ResumeFn is not set.
func (r *Readable) Resume() {
	if r.ResumeFn != nil {
		r.ResumeFn()
	}
}

// Pipe delegates to PipeFn.
func (r *Readable) Pipe(dest ministream.Writable, opts ...ministream.PipeOption) ministream.Writable {
	return r.PipeFn(dest, opts...)
}

// On delegates to OnFn. Returns 0 when OnFn is not set.
func (r *Readable) On(event string, fn ministream.Listener) int {
	if r.OnFn == nil {
		return 0
	}
	return r.OnFn(event, fn)
}

// Off delegates to OffFn. No-op when OffFn is not set.
func (r *Readable) Off(event string, id int) {
	if r.OffFn != nil {
		r.OffFn(event, id)
	}
}
