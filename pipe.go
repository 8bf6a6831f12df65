package ministream

// pipeOptions configures one Pipe call.
type pipeOptions struct {
	end         bool
	proxyErrors bool
}

// PipeOption configures a single Pipe call.
type PipeOption func(*pipeOptions)

// WithEnd overrides the default end-propagation behavior. The default is
// true, except when the destination is recognized as the host's stdout or
// stderr sink, where it is forced false regardless of WithEnd.
func WithEnd(end bool) PipeOption {
	return func(o *pipeOptions) { o.end = end }
}

// WithProxyErrors makes the pipe record also subscribe to the source's
// error event and re-emit each error on the destination. Default false.
func WithProxyErrors(proxy bool) PipeOption {
	return func(o *pipeOptions) { o.proxyErrors = proxy }
}

// ErrorReceiver is implemented by a Writable that can accept a forwarded
// error from an upstream pipe record's error-proxying variant. *Stream
// implements it.
type ErrorReceiver interface {
	EmitError(err error)
}

// pipeRecord is a binding from a Stream to one downstream Writable, with
// two variants: plain and error-proxying. It holds a non-owning reference
// to dest: unpipe/end removes the subscription but never destroys dest,
// except that End() on dest is called when opts.end is true.
type pipeRecord struct {
	dest       Writable
	opts       pipeOptions
	drainSubID int
	hasDrain   bool
	errorSubID int
	hasError   bool
}

// newPipeRecord wires up a pipe record: it subscribes to dest's drain
// event so a slowed-down destination can resume the source, and, when
// proxyErrors is set, subscribes to src's error event to re-emit on dest.
func newPipeRecord(src *Stream, dest Writable, opts pipeOptions) *pipeRecord {
	p := &pipeRecord{dest: dest, opts: opts}
	p.drainSubID = dest.On(EventDrain, func(args ...any) {
		src.Resume()
	})
	p.hasDrain = true
	if opts.proxyErrors {
		p.errorSubID = src.On(EventError, func(args ...any) {
			if len(args) == 0 {
				return
			}
			err, _ := args[0].(error)
			if r, ok := p.dest.(ErrorReceiver); ok {
				r.EmitError(err)
			}
		})
		p.hasError = true
	}
	return p
}

// detach removes the drain (and, if present, error-proxy) subscriptions.
// It does not touch dest itself.
func (p *pipeRecord) detach(src *Stream) {
	if p.hasDrain {
		p.dest.Off(EventDrain, p.drainSubID)
		p.hasDrain = false
	}
	if p.hasError {
		src.Off(EventError, p.errorSubID)
		p.hasError = false
	}
}

// write forwards one item to dest. If dest reports backpressure (Write
// returns false), the source pauses itself.
func (p *pipeRecord) write(src *Stream, item any) {
	ok, _ := p.dest.Write(item)
	if !ok {
		src.Pause()
	}
}

// closeDownstream detaches this record and, if opts.end was requested,
// ends dest exactly once.
func (p *pipeRecord) closeDownstream(src *Stream) {
	p.detach(src)
	if p.opts.end {
		_ = p.dest.End()
	}
}
