package launch

import (
	"context"
	"sync"
)

// Observer counts live processes.
//
// Every change of the live count is reported to the callbacks registered
// with OnCountChanged, in order, from the goroutine that caused it.
type Observer struct {
	mu        sync.Mutex
	live      map[*Process]struct{}
	listeners []func(int)
	idle      chan struct{}
}

// NewObserver returns an Observer with no processes.
func NewObserver() *Observer {
	idle := make(chan struct{})
	close(idle)
	return &Observer{
		live: make(map[*Process]struct{}),
		idle: idle,
	}
}

// OnCountChanged registers fn to receive the live count after each change.
func (o *Observer) OnCountChanged(fn func(int)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.listeners = append(o.listeners, fn)
}

// Count returns the number of live processes.
func (o *Observer) Count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.live)
}

// Track adds p to the live set until it exits.
func (o *Observer) Track(p *Process) {
	o.mu.Lock()
	if _, ok := o.live[p]; ok {
		o.mu.Unlock()
		return
	}
	if len(o.live) == 0 {
		o.idle = make(chan struct{})
	}
	o.live[p] = struct{}{}
	n, listeners := len(o.live), o.listeners
	o.mu.Unlock()
	notify(listeners, n)

	go func() {
		<-p.Done()
		o.untrack(p)
	}()
}

func (o *Observer) untrack(p *Process) {
	o.mu.Lock()
	delete(o.live, p)
	n, listeners := len(o.live), o.listeners
	var idle chan struct{}
	if n == 0 {
		idle = o.idle
	}
	o.mu.Unlock()
	notify(listeners, n)

	// Waiters wake only after listeners have seen the final count.
	if idle != nil {
		close(idle)
	}
}

func notify(listeners []func(int), n int) {
	for _, fn := range listeners {
		fn(n)
	}
}

// Wait blocks until no tracked process is alive or ctx is done.
func (o *Observer) Wait(ctx context.Context) error {
	o.mu.Lock()
	idle := o.idle
	o.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
