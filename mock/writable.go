// Package mock provides test doubles for ministream's Readable and
// Writable collaborator contracts.
package mock

import "github.com/gostreams/ministream"

// Interface compliance check.
var _ ministream.Writable = (*Writable)(nil)

// Writable is a test double for ministream.Writable. Set the function
// fields for the methods you need. WriteFn panics when nil to catch
// missing setup; EndFn, OnFn, and OffFn are nil-safe because test code
// commonly pipes into a Writable without caring about those calls.
type Writable struct {
	WriteFn func(chunk any) (bool, error)
	EndFn   func(args ...any) error
	OnFn    func(event string, fn ministream.Listener) int
	OffFn   func(event string, id int)
}

// Write delegates to WriteFn.
func (w *Writable) Write(chunk any) (bool, error) {
	return w.WriteFn(chunk)
}

// End delegates to EndFn. Returns nil when EndFn is not set.
func (w *Writable) End(args ...any) error {
	if w.EndFn == nil {
		return nil
	}
	return w.EndFn(args...)
}

// On delegates to OnFn. Returns 0 when OnFn is not set.
func (w *Writable) On(event string, fn ministream.Listener) int {
	if w.OnFn == nil {
		return 0
	}
	return w.OnFn(event, fn)
}

// Off delegates to OffFn. No-op when OffFn is not set.
func (w *Writable) Off(event string, id int) {
	if w.OffFn != nil {
		w.OffFn(event, id)
	}
}
