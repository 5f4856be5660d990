package cart

import (
	"context"
	"sync"
)

type opKind int

const (
	opAdd opKind = iota
	opUpdate
	opRemove
	opClear
	opReplace
)

func (k opKind) String() string {
	switch k {
	case opAdd:
		return "add"
	case opUpdate:
		return "update"
	case opRemove:
		return "remove"
	case opClear:
		return "clear"
	case opReplace:
		return "replace"
	}
	return "unknown"
}

// op is one pending server write. seq is the cart version the write belongs to;
// its response is only adopted while the cart is still at that version.
type op struct {
	kind       opKind
	seq        uint64
	epoch      uint64
	customerID string
	line       Line
	lines      []Line
	done       chan error
}

func (p *op) finish(err error) {
	if p.done != nil {
		p.done <- err
	}
}

// outbox is a FIFO of server writes drained by a single worker goroutine.
type outbox struct {
	mu      sync.Mutex
	pending []*op
	busy    bool
	closed  bool
	waiters []chan struct{}
	wake    chan struct{}
	stopped chan struct{}
}

func newOutbox() *outbox {
	return &outbox{
		wake:    make(chan struct{}, 1),
		stopped: make(chan struct{}),
	}
}

// run executes ops one at a time until close is called.
func (o *outbox) run(exec func(*op)) {
	defer close(o.stopped)
	for {
		o.mu.Lock()
		if len(o.pending) == 0 {
			o.busy = false
			o.releaseWaitersLocked()
			closed := o.closed
			o.mu.Unlock()
			if closed {
				return
			}
			<-o.wake
			continue
		}
		p := o.pending[0]
		o.pending[0] = nil
		o.pending = o.pending[1:]
		o.busy = true
		o.mu.Unlock()

		exec(p)
	}
}

func (o *outbox) push(p *op) error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return ErrStoreClosed
	}
	o.pending = append(o.pending, p)
	o.mu.Unlock()
	o.signal()
	return nil
}

func (o *outbox) signal() {
	select {
	case o.wake <- struct{}{}:
	default:
	}
}

// drop discards queued ops. An op already in flight still completes.
func (o *outbox) drop() []*op {
	o.mu.Lock()
	defer o.mu.Unlock()
	dropped := o.pending
	o.pending = nil
	if !o.busy {
		o.releaseWaitersLocked()
	}
	return dropped
}

func (o *outbox) idle() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.pending) == 0 && !o.busy
}

// wait blocks until the queue is empty and nothing is in flight.
func (o *outbox) wait(ctx context.Context) error {
	o.mu.Lock()
	if len(o.pending) == 0 && !o.busy {
		o.mu.Unlock()
		return nil
	}
	ch := make(chan struct{})
	o.waiters = append(o.waiters, ch)
	o.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (o *outbox) releaseWaitersLocked() {
	for _, ch := range o.waiters {
		close(ch)
	}
	o.waiters = nil
}

// close stops the worker after the in-flight op and returns ops never sent.
func (o *outbox) close() []*op {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		<-o.stopped
		return nil
	}
	o.closed = true
	dropped := o.pending
	o.pending = nil
	o.mu.Unlock()
	o.signal()
	<-o.stopped
	return dropped
}
